package psxcore

import (
	"context"
	"testing"
)

// BenchmarkDispatchHotLoop measures the native dispatch path, using
// ClosureEmitter bodies that replay the cached interpreter's stepping,
// against a tight branch loop, the same shape of workload the block cache
// exists to avoid re-decoding every iteration of.
func BenchmarkDispatchHotLoop(b *testing.B) {
	bus := NewRAMBus()
	bus.LoadAt(0, assembleProgram(
		asmADDIU(RegT0, RegT0, 1),
		asmADDI(RegT1, RegT1, -1),
		asmBNE(RegT1, RegZero, -4), // target = branch_addr(8) + 8 + offset*4 = 0, loops back to the top
		asmADDIU(RegV0, RegZero, 1),
		asmSYSCALL(),
	))

	for i := 0; i < b.N; i++ {
		core := NewReferenceCore(bus, 0)
		core.setGPR(RegT1, 64)
		core.SetDowncount(1 << 16)
		cache := NewBlockCache(bus, ClosureEmitter{}, DiscardLogger())
		d := NewDispatcher(core, bus, cache, true, DiscardLogger())
		d.Run(context.Background())
	}
}
