// decoder.go - basic-block discovery from a starting guest PC
//
// One-to-one port of original_source/src/core/cpu_code_cache.cpp's
// CodeCache::CompileBlock, per spec §4.2.

package psxcore

// CompileBlock walks guest instructions starting at pc until the block
// terminates, per spec §4.2:
//
//  1. Fetch a word via bus. Stop (keeping whatever has been collected so
//     far) if the address is not cacheable, the fetch fails, or the
//     encoding is invalid.
//  2. Classify the instruction and build a CodeBlockInstruction carrying
//     delay-slot flags computed from the previous step's carry.
//  3. If the instruction is a branch/jump exit, collect exactly one more
//     (its delay slot) and stop; if it is a trap-class exit, stop
//     immediately.
//  4. Advance pc by 4 and repeat.
//
// An empty result is reported via ErrEmptyDecode; the caller must fall
// back to uncached interpretation for that dispatch iteration.
func CompileBlock(bus Bus, startPC uint32, userMode bool) ([]CodeBlockInstruction, error) {
	var instructions []CodeBlockInstruction

	pc := startPC
	inBranchDelaySlot := false
	inLoadDelaySlot := false

	for {
		if !bus.IsCacheable(pc) {
			break
		}
		word, err := bus.ReadWord(pc)
		if err != nil {
			break
		}
		if !IsValidEncoding(word) {
			break
		}

		cbi := CodeBlockInstruction{
			Instruction:       word,
			PC:                pc,
			InBranchDelaySlot: inBranchDelaySlot,
			InLoadDelaySlot:   inLoadDelaySlot,
			CanTrap:           CanTrap(word, userMode),
		}

		// The next instruction's load-delay flag is driven by this one.
		inLoadDelaySlot = IsLoadDelaying(word)

		instructions = append(instructions, cbi)
		pc += 4

		// If we just emitted the branch delay slot, the block is done.
		if inBranchDelaySlot {
			break
		}

		isExit, isBranch := IsExitBlock(word)
		if isExit {
			if isBranch {
				// One more instruction (the delay slot) and then stop.
				inBranchDelaySlot = true
				continue
			}
			// Trap-class exit (SYSCALL/BREAK): stop immediately.
			break
		}
	}

	if len(instructions) == 0 {
		return nil, emptyDecodeAt(startPC)
	}
	return instructions, nil
}
