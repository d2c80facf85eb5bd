// dispatcher.go - the outer fetch/lookup/execute loop
//
// One-to-one port of original_source/src/core/cpu_code_cache.cpp's
// CodeCache::Execute / InterpretCachedBlock / InterpretUncachedBlock,
// restructured the way the teacher's own CPU.Execute() caches hot locals
// and runs a single flat loop (cpu_ie32.go), per spec §4.4.

package psxcore

import (
	"context"
	"log/slog"
)

// Dispatcher drives a CPUCore against a Bus and BlockCache. It holds no
// state of its own beyond those three references and the recompiler
// toggle - everything else lives in the cache (current-block tracking) or
// the core (registers, downcount).
type Dispatcher struct {
	core  CPUCore
	bus   Bus
	cache *BlockCache
	log   *slog.Logger

	useNative bool
}

// NewDispatcher builds a dispatcher. useNative selects whether blocks with
// a compiled native body run through it, or always through the cached
// interpreter regardless of whether a native body exists - the "process-
// wide boolean" from spec §9's design notes, here a constructor parameter
// rather than a package-level mutable flag.
func NewDispatcher(core CPUCore, bus Bus, cache *BlockCache, useNative bool, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{core: core, bus: bus, cache: cache, useNative: useNative, log: log}
}

// Run executes guest code until the core's downcount goes negative or ctx
// is cancelled. Cancellation is observed only between block executions,
// never mid-block, per spec §5 ("the dispatcher does not interrupt a block
// mid-execution").
func (d *Dispatcher) Run(ctx context.Context) {
	for d.core.Downcount() >= 0 {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if d.core.HasPendingInterrupt() {
			d.core.DispatchInterrupt()
		}

		keyPC := d.bus.Unmirror(d.core.PC() & PhysMask)
		block, err := d.cache.GetOrCompile(keyPC, d.core.InUserMode())
		if err != nil {
			d.log.Debug("empty decode, falling back to uncached interpreter", "pc", keyPC, "error", err)
			d.interpretUncached()
			continue
		}

		d.cache.BeginExecution(block)
		if d.useNative && block.Native != nil {
			block.Native(d.core, d.bus)
		} else {
			d.interpretCached(block)
		}
		if d.cache.EndExecution() {
			// The block flushed itself mid-execution (self-modifying
			// code writing into its own page); its memory, including any
			// native body, stays live until now (invariant I4).
			d.log.Warn("destroying self-flushed block", "pc", block.PC())
		}
	}
}

// interpretCached runs block's decoded instructions one at a time against
// d.core, sharing runInstructionList with ClosureEmitter so both paths are
// observably equivalent (spec P5).
func (d *Dispatcher) interpretCached(block *CodeBlock) {
	runInstructionList(d.core, block.Instructions)
}

// interpretUncached executes instruction-by-instruction when no cached
// block is available - block boundaries on non-cacheable memory, or an
// empty-decode fallback (spec §4.4's "Uncached interpretation").
func (d *Dispatcher) interpretUncached() {
	shadow := d.core.Shadow()
	inBranchDelaySlot := false

	for {
		d.core.SetDowncount(d.core.Downcount() - 1)

		shadow.CurrentInstruction = shadow.NextInstruction
		shadow.CurrentInstructionPC = d.core.PC()
		shadow.CurrentInstructionInBranchDS = shadow.NextInstructionIsBranchDS
		shadow.CurrentInstructionWasBranchTkn = shadow.BranchWasTaken
		shadow.NextInstructionIsBranchDS = false
		shadow.BranchWasTaken = false
		shadow.ExceptionRaised = false

		d.core.SetPC(d.core.NPC())
		d.core.SetNPC(d.core.NPC() + 4)

		if !d.core.FetchInstruction() {
			break
		}

		d.core.ExecuteInstruction()

		shadow.LoadDelayReg = shadow.NextLoadDelayReg
		shadow.NextLoadDelayReg = NoLoadDelayReg
		shadow.LoadDelayOldValue = shadow.NextLoadDelayOldValue
		shadow.NextLoadDelayOldValue = 0

		if shadow.ExceptionRaised || inBranchDelaySlot {
			break
		}
		isExit, isBranch := IsExitBlock(shadow.CurrentInstruction)
		if isExit && !isBranch {
			break
		}
		if isExit && isBranch {
			inBranchDelaySlot = true
		}
	}
}
