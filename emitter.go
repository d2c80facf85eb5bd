// emitter.go - host-code emission (stand-in for an out-of-scope JIT backend)
//
// Per spec §1 the real native-code emitter's internals are out of scope;
// this file defines the contract and two implementations that let the
// dispatcher, cache and tests exercise both the "native" and
// "interpreter-fallback-after-emitter-failure" paths described in spec §7.

package psxcore

// NativeEmitter turns a decoded instruction list into a NativeFunc. A
// real implementation would write executable host machine code into a
// buffer and return a function pointer into it, per spec §9's "Design
// Notes"; this core treats that as an external collaborator and only
// defines the contract.
type NativeEmitter interface {
	Emit(key BlockKey, instructions []CodeBlockInstruction) (NativeFunc, error)
}

// ClosureEmitter "emits" a block by closing over its decoded instruction
// slice and replaying the same per-instruction dispatch the cached
// interpreter uses. It never fails, and its output is observably
// equivalent to the cached interpreter path (spec P5), which is what lets
// this core be tested without a real JIT backend.
type ClosureEmitter struct{}

// Emit implements NativeEmitter.
func (ClosureEmitter) Emit(_ BlockKey, instructions []CodeBlockInstruction) (NativeFunc, error) {
	body := append([]CodeBlockInstruction(nil), instructions...)
	return func(core CPUCore, _ Bus) bool {
		return runInstructionList(core, body)
	}, nil
}

// NoEmitter always fails, exercising the "emitter failure keeps the block,
// falls back to cached interpreter" contract from spec §7.
type NoEmitter struct{}

// Emit implements NativeEmitter.
func (NoEmitter) Emit(key BlockKey, _ []CodeBlockInstruction) (NativeFunc, error) {
	return nil, emitterFailedFor(key)
}

// runInstructionList is the shared per-instruction stepping logic used by
// both the cached interpreter (dispatcher.go) and ClosureEmitter's native
// bodies, so the two paths are provably identical rather than merely
// parallel implementations of the same spec prose. Returns true if the
// block ran to completion without an exception.
func runInstructionList(core CPUCore, instructions []CodeBlockInstruction) bool {
	shadow := core.Shadow()

	for _, cbi := range instructions {
		core.SetDowncount(core.Downcount() - 1)

		shadow.CurrentInstruction = cbi.Instruction
		shadow.CurrentInstructionPC = core.PC()
		shadow.CurrentInstructionInBranchDS = cbi.InBranchDelaySlot
		shadow.CurrentInstructionWasBranchTkn = shadow.BranchWasTaken
		shadow.BranchWasTaken = false
		shadow.ExceptionRaised = false

		core.SetPC(core.NPC())
		core.SetNPC(core.NPC() + 4)

		core.ExecuteInstruction()

		shadow.LoadDelayReg = shadow.NextLoadDelayReg
		shadow.NextLoadDelayReg = NoLoadDelayReg
		shadow.LoadDelayOldValue = shadow.NextLoadDelayOldValue
		shadow.NextLoadDelayOldValue = 0

		if shadow.ExceptionRaised {
			shadow.NextInstructionIsBranchDS = false
			return false
		}
	}

	shadow.NextInstructionIsBranchDS = false
	return true
}
