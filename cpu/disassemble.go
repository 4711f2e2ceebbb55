package cpu

import (
	"errors"
	"fmt"
)

// ErrInvalidInstruction is returned by Disassemble for an opcode-0 word that
// is not exactly zero, or for an unassigned opcode.
var ErrInvalidInstruction = errors.New("cpu: invalid instruction")

// Disassemble renders one instruction word in its canonical form. It is a
// pure function; it shares the opcode table with the executor, so the two
// cannot drift. Invalid words render as "INVALID" with a non-nil error.
func Disassemble(word uint32) (string, error) {
	i := Decode(word)
	op, ok := Opcodes[i.Opcode]
	if !ok {
		return "INVALID", ErrInvalidInstruction
	}

	switch op.Format {
	case FormatNone:
		// HALT is the only instruction with no argument, and only the
		// exact zero word encodes it.
		if word != 0 {
			return "INVALID", ErrInvalidInstruction
		}
		return "HALT()", nil
	case FormatMem:
		return fmt.Sprintf("%s(%s, %d, %s)", op.Name, regName(i.Ra), i.Literal, regName(i.Rc)), nil
	case FormatStore:
		return fmt.Sprintf("%s(%s, %d, %s)", op.Name, regName(i.Rc), i.Literal, regName(i.Ra)), nil
	case FormatJump:
		return fmt.Sprintf("%s(%s, %s)", op.Name, regName(i.Ra), regName(i.Rc)), nil
	case FormatBranch:
		return fmt.Sprintf("%s(%s, %d, %s)", op.Name, regName(i.Ra), i.Literal, regName(i.Rc)), nil
	case FormatRelative:
		return fmt.Sprintf("%s(%d, %s)", op.Name, i.Literal, regName(i.Rc)), nil
	case FormatOp:
		return fmt.Sprintf("%s(%s, %s, %s)", op.Name, regName(i.Ra), regName(i.Rb), regName(i.Rc)), nil
	case FormatOpC:
		return fmt.Sprintf("%s(%s, %d, %s)", op.Name, regName(i.Ra), i.Literal, regName(i.Rc)), nil
	}
	return "INVALID", ErrInvalidInstruction
}

// regName renders a register index, using the assembler names for the
// special registers.
func regName(r byte) string {
	switch r {
	case BP:
		return "BP"
	case LP:
		return "LP"
	case SP:
		return "SP"
	case XP:
		return "XP"
	}
	return fmt.Sprintf("R%d", r)
}
