package cpu

import "beta/mask"

// An Inst is one decoded instruction word.
//
// Every instruction is 32 bits, laid out as:
//
//	31..26  opcode
//	25..21  Rc (destination)
//	20..16  Ra (first source)
//	15..11  Rb (second source)
//	15..0   16-bit signed literal (overlaps Rb)
//
// The literal is sign-extended to 32 bits at decode time; whether Rb or the
// literal is meaningful depends on the opcode's Format.
type Inst struct {
	Word    uint32 // the raw word; HALT requires it to be exactly zero
	Opcode  byte
	Ra      byte
	Rb      byte
	Rc      byte
	Literal int32
}

// Decode splits an instruction word into its fields. Pure; it never touches
// machine state.
func Decode(word uint32) Inst {
	return Inst{
		Word:    word,
		Opcode:  byte(mask.Field(word, 26, 6)),
		Rc:      byte(mask.Field(word, 21, 5)),
		Ra:      byte(mask.Field(word, 16, 5)),
		Rb:      byte(mask.Field(word, 11, 5)),
		Literal: mask.SignExtend16(mask.Field(word, 0, 16)),
	}
}

// A Format tells the executor how an instruction's operands are read (and
// therefore which effective address the user-mode guard must check), and
// tells the disassembler how to render its arguments.
type Format int

const (
	FormatNone     Format = iota // HALT()
	FormatMem                    // LD(Ra, lit, Rc)
	FormatStore                  // ST(Rc, lit, Ra)
	FormatJump                   // JMP(Ra, Rc)
	FormatBranch                 // BEQ/BNE(Ra, lit, Rc)
	FormatRelative               // LDR(lit, Rc); STR when the target is kernel memory
	FormatOp                     // OP(Ra, Rb, Rc)
	FormatOpC                    // OPC(Ra, lit, Rc)
)

// An Opcode couples a 6-bit opcode value with its mnemonic, operand Format
// and implementation. Register and literal variants of the ALU operations
// share an implementation and differ only in Format, which selects the
// second operand before dispatch.
type Opcode struct {
	Format      Format
	Instruction func(c *Computer, i Inst)
	Name        string
}

// Opcodes maps every assigned opcode value. Values absent from the map are
// invalid: the executor skips them, the disassembler renders INVALID.
var Opcodes = map[byte]Opcode{
	0x00: {Instruction: (*Computer).HALT, Name: "HALT", Format: FormatNone},

	0x18: {Instruction: (*Computer).LD, Name: "LD", Format: FormatMem},
	0x19: {Instruction: (*Computer).ST, Name: "ST", Format: FormatStore},
	0x1B: {Instruction: (*Computer).JMP, Name: "JMP", Format: FormatJump},
	0x1D: {Instruction: (*Computer).BEQ, Name: "BEQ", Format: FormatBranch},
	0x1E: {Instruction: (*Computer).BNE, Name: "BNE", Format: FormatBranch},
	0x1F: {Instruction: (*Computer).LDR, Name: "LDR", Format: FormatRelative},

	0x20: {Instruction: (*Computer).ADD, Name: "ADD", Format: FormatOp},
	0x21: {Instruction: (*Computer).SUB, Name: "SUB", Format: FormatOp},
	0x22: {Instruction: (*Computer).MUL, Name: "MUL", Format: FormatOp},
	0x23: {Instruction: (*Computer).DIV, Name: "DIV", Format: FormatOp},
	0x24: {Instruction: (*Computer).CMPEQ, Name: "CMPEQ", Format: FormatOp},
	0x25: {Instruction: (*Computer).CMPLT, Name: "CMPLT", Format: FormatOp},
	0x26: {Instruction: (*Computer).CMPLE, Name: "CMPLE", Format: FormatOp},
	0x28: {Instruction: (*Computer).AND, Name: "AND", Format: FormatOp},
	0x29: {Instruction: (*Computer).OR, Name: "OR", Format: FormatOp},
	0x2A: {Instruction: (*Computer).XOR, Name: "XOR", Format: FormatOp},
	0x2C: {Instruction: (*Computer).SHL, Name: "SHL", Format: FormatOp},
	0x2D: {Instruction: (*Computer).SHR, Name: "SHR", Format: FormatOp},
	0x2E: {Instruction: (*Computer).SRA, Name: "SRA", Format: FormatOp},

	0x30: {Instruction: (*Computer).ADD, Name: "ADDC", Format: FormatOpC},
	0x31: {Instruction: (*Computer).SUB, Name: "SUBC", Format: FormatOpC},
	0x32: {Instruction: (*Computer).MUL, Name: "MULC", Format: FormatOpC},
	0x33: {Instruction: (*Computer).DIV, Name: "DIVC", Format: FormatOpC},
	0x34: {Instruction: (*Computer).CMPEQ, Name: "CMPEQC", Format: FormatOpC},
	0x35: {Instruction: (*Computer).CMPLT, Name: "CMPLTC", Format: FormatOpC},
	0x36: {Instruction: (*Computer).CMPLE, Name: "CMPLEC", Format: FormatOpC},
	0x38: {Instruction: (*Computer).AND, Name: "ANDC", Format: FormatOpC},
	0x39: {Instruction: (*Computer).OR, Name: "ORC", Format: FormatOpC},
	0x3A: {Instruction: (*Computer).XOR, Name: "XORC", Format: FormatOpC},
	0x3C: {Instruction: (*Computer).SHL, Name: "SHLC", Format: FormatOpC},
	0x3D: {Instruction: (*Computer).SHR, Name: "SHRC", Format: FormatOpC},
	0x3E: {Instruction: (*Computer).SRA, Name: "SRAC", Format: FormatOpC},
}
