// asm_test_helpers_test.go - tiny instruction encoders for building test programs

package psxcore

func encodeI(op, rs, rt uint32, imm int32) Word {
	return Word(op<<26 | rs<<21 | rt<<16 | uint32(uint16(imm)))
}

func encodeR(rs, rt, rd, shamt, funct uint32) Word {
	return Word(rs<<21 | rt<<16 | rd<<11 | shamt<<6 | funct)
}

func encodeJ(op, target uint32) Word {
	return Word(op<<26 | (target>>2)&0x03FFFFFF)
}

func asmADDIU(rt, rs uint32, imm int32) Word { return encodeI(OpADDIU, rs, rt, imm) }
func asmADDI(rt, rs uint32, imm int32) Word  { return encodeI(OpADDI, rs, rt, imm) }
func asmADD(rd, rs, rt uint32) Word          { return encodeR(rs, rt, rd, 0, FnADD) }
func asmSUB(rd, rs, rt uint32) Word          { return encodeR(rs, rt, rd, 0, FnSUB) }
func asmSYSCALL() Word                       { return encodeR(0, 0, 0, 0, FnSYSCALL) }
func asmBEQ(rs, rt uint32, offset int32) Word { return encodeI(OpBEQ, rs, rt, offset) }
func asmBNE(rs, rt uint32, offset int32) Word { return encodeI(OpBNE, rs, rt, offset) }
func asmLWC2(rt, rs uint32, imm int32) Word  { return encodeI(OpLWC2, rs, rt, imm) }
func asmSW(rt, rs uint32, imm int32) Word    { return encodeI(OpSW, rs, rt, imm) }
func asmLW(rt, rs uint32, imm int32) Word    { return encodeI(OpLW, rs, rt, imm) }
func asmNOP() Word                           { return NOPWord }

func putWord(ram []byte, offset uint32, w Word) {
	ram[offset] = byte(w)
	ram[offset+1] = byte(w >> 8)
	ram[offset+2] = byte(w >> 16)
	ram[offset+3] = byte(w >> 24)
}

// assembleProgram little-endian-encodes words into a byte slice suitable
// for RAMBus.LoadAt.
func assembleProgram(words ...Word) []byte {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		putWord(buf, uint32(i*4), w)
	}
	return buf
}
