package psxcore

import "testing"

func TestIsExitBlock(t *testing.T) {
	cases := []struct {
		name       string
		instr      Word
		wantExit   bool
		wantBranch bool
	}{
		{"beq", asmBEQ(0, 0, 1), true, true},
		{"bne", asmBNE(1, 2, 1), true, true},
		{"j", encodeJ(OpJ, 0x1000), true, true},
		{"jal", encodeJ(OpJAL, 0x1000), true, true},
		{"jr", encodeR(8, 0, 0, 0, FnJR), true, true},
		{"jalr", encodeR(8, 0, 31, 0, FnJALR), true, true},
		{"syscall", asmSYSCALL(), true, false},
		{"break", encodeR(0, 0, 0, 0, FnBREAK), true, false},
		{"addiu", asmADDIU(8, 0, 5), false, false},
		{"add", asmADD(10, 8, 9), false, false},
		{"nop", asmNOP(), false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			isExit, isBranch := IsExitBlock(tc.instr)
			if isExit != tc.wantExit || isBranch != tc.wantBranch {
				t.Fatalf("IsExitBlock(%#x) = (%v,%v), want (%v,%v)",
					uint32(tc.instr), isExit, isBranch, tc.wantExit, tc.wantBranch)
			}
		})
	}
}

func TestCanTrap(t *testing.T) {
	cases := []struct {
		name     string
		instr    Word
		user     bool
		wantTrap bool
	}{
		{"lw", asmLW(8, 9, 0), false, true},
		{"sw", asmSW(8, 9, 0), false, true},
		{"addi", asmADDI(8, 9, 1), false, true},
		{"addiu-no-trap", asmADDIU(8, 9, 1), false, false},
		{"add", asmADD(8, 9, 10), false, true},
		{"addu-no-trap", encodeR(9, 10, 8, 0, FnADDU), false, false},
		{"syscall", asmSYSCALL(), false, true},
		{"lwc2-kernel", asmLWC2(0, 8, 0), false, false},
		{"lwc2-user", asmLWC2(0, 8, 0), true, true},
		{"cop0-user", encodeI(OpCOP0, 0, 0, 0), true, true},
		{"cop0-kernel", encodeI(OpCOP0, 0, 0, 0), false, false},
		{"cop1-user-no-trap", encodeI(OpCOP1, 0, 0, 0), true, false},
		{"sll-no-trap", encodeR(0, 8, 9, 4, FnSLL), false, false},
		{"jr-no-trap", encodeR(8, 0, 0, 0, FnJR), false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTrap(tc.instr, tc.user); got != tc.wantTrap {
				t.Fatalf("CanTrap(%#x, user=%v) = %v, want %v", uint32(tc.instr), tc.user, got, tc.wantTrap)
			}
		})
	}
}

func TestIsLoadDelaying(t *testing.T) {
	if !IsLoadDelaying(asmLW(8, 9, 0)) {
		t.Fatal("LW should be load-delaying")
	}
	if IsLoadDelaying(encodeI(OpLWL, 8, 9, 0)) {
		t.Fatal("LWL merges with the existing register value, not load-delaying")
	}
	if IsLoadDelaying(asmADDIU(8, 0, 1)) {
		t.Fatal("ADDIU is never load-delaying")
	}
}

func TestIsValidEncoding(t *testing.T) {
	if !IsValidEncoding(asmNOP()) {
		t.Fatal("NOP must be a valid encoding")
	}
	reserved := Word(invalidPrimaryOpcode << 26)
	if IsValidEncoding(reserved) {
		t.Fatal("the reserved primary opcode must be rejected")
	}
}
