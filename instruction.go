// instruction.go - MIPS R3000A instruction word field extraction and opcodes

package psxcore

// Word is a raw 32-bit little-endian guest instruction as it sits in RAM.
// Field layout follows the standard MIPS-I encoding: a 6-bit primary opcode,
// then either R-type (rs/rt/rd/shamt/funct), I-type (rs/rt/immediate) or
// J-type (26-bit target) depending on that opcode.
type Word uint32

// Opcode returns the 6-bit primary opcode (bits 31-26).
func (w Word) Opcode() uint32 { return uint32(w) >> 26 }

// Funct returns the 6-bit function field (bits 5-0), meaningful only when
// Opcode() == OpSpecial.
func (w Word) Funct() uint32 { return uint32(w) & 0x3F }

// Rs returns the 5-bit source register field (bits 25-21).
func (w Word) Rs() uint32 { return (uint32(w) >> 21) & 0x1F }

// Rt returns the 5-bit target register field (bits 20-16).
func (w Word) Rt() uint32 { return (uint32(w) >> 16) & 0x1F }

// Rd returns the 5-bit destination register field (bits 15-11).
func (w Word) Rd() uint32 { return (uint32(w) >> 11) & 0x1F }

// Shamt returns the 5-bit shift amount field (bits 10-6).
func (w Word) Shamt() uint32 { return (uint32(w) >> 6) & 0x1F }

// Imm16 returns the 16-bit immediate field, zero-extended.
func (w Word) Imm16() uint32 { return uint32(w) & 0xFFFF }

// SImm16 returns the 16-bit immediate field, sign-extended.
func (w Word) SImm16() int32 { return int32(int16(uint16(w))) }

// Target returns the 26-bit jump target field.
func (w Word) Target() uint32 { return uint32(w) & 0x03FFFFFF }

// Primary opcodes referenced by the classifier and the reference
// interpreter. Not an exhaustive MIPS-I opcode map - only the opcodes this
// core's classifier and scenarios in spec §8 need to name.
const (
	OpSpecial = 0x00 // funct-coded R-type instructions (JR, JALR, ADD, SUB, SYSCALL, BREAK, ...)
	OpRegimm  = 0x01 // BLTZ/BGEZ family, coded in Rt
	OpJ       = 0x02
	OpJAL     = 0x03
	OpBEQ     = 0x04
	OpBNE     = 0x05
	OpBLEZ    = 0x06
	OpBGTZ    = 0x07
	OpADDI    = 0x08
	OpADDIU   = 0x09
	OpANDI    = 0x0C
	OpORI     = 0x0D
	OpXORI    = 0x0E
	OpLUI     = 0x0F
	OpCOP0    = 0x10
	OpCOP1    = 0x11 // PSX has no FPU - treated as a no-op coprocessor
	OpCOP2    = 0x12 // GTE
	OpCOP3    = 0x13 // unused on PSX - treated as a no-op coprocessor
	OpLB      = 0x20
	OpLH      = 0x21
	OpLWL     = 0x22
	OpLW      = 0x23
	OpLBU     = 0x24
	OpLHU     = 0x25
	OpLWR     = 0x26
	OpSB      = 0x28
	OpSH      = 0x29
	OpSWL     = 0x2A
	OpSW      = 0x2B
	OpSWR     = 0x2E
	OpLWC1    = 0x31
	OpLWC2    = 0x32
	OpLWC3    = 0x33
	OpSWC1    = 0x39
	OpSWC2    = 0x3A
	OpSWC3    = 0x3B
)

// SPECIAL-coded funct values.
const (
	FnSLL     = 0x00
	FnSRL     = 0x02
	FnSRA     = 0x03
	FnSLLV    = 0x04
	FnSRLV    = 0x06
	FnSRAV    = 0x07
	FnJR      = 0x08
	FnJALR    = 0x09
	FnSYSCALL = 0x0C
	FnBREAK   = 0x0D
	FnMFHI    = 0x10
	FnMTHI    = 0x11
	FnMFLO    = 0x12
	FnMTLO    = 0x13
	FnMULT    = 0x18
	FnMULTU   = 0x19
	FnDIV     = 0x1A
	FnDIVU    = 0x1B
	FnADD     = 0x20
	FnADDU    = 0x21
	FnSUB     = 0x22
	FnSUBU    = 0x23
	FnAND     = 0x24
	FnOR      = 0x25
	FnXOR     = 0x26
	FnNOR     = 0x27
	FnSLT     = 0x2A
	FnSLTU    = 0x2B
)

// REGIMM-coded rt values.
const (
	RtBLTZ = 0x00
	RtBGEZ = 0x01
)

// NOPWord is the canonical zero-valued no-op instruction.
const NOPWord Word = 0
