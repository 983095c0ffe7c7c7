package cpu

import (
	"errors"
)

// alu applies an ALU operation to the register file or the flags.
func (cpu *Cpu) alu(op Opcode, a, b uint8) {
	ra := cpu.reg(a)
	rb := cpu.reg(b)

	result, flags := doAlu(op, *ra, *rb)
	switch op {
	case OP_CMP:
		cpu.Flags = flags
	default:
		*ra = result
	}
}

// doAlu performs the requested ALU action, returning the output value
// and, for CMP, the new flags.
func doAlu(op Opcode, input uint8, value uint8) (output uint8, flags uint8) {
	switch op {
	case OP_ADD:
		output = input + value
	case OP_MUL:
		output = input * value
	case OP_CMP:
		switch {
		case input < value:
			flags = FL_LT
		case input == value:
			flags = FL_EQ
		default:
			flags = FL_GT
		}
	default:
		panic(errors.Join(ErrAluInternal, ErrOpcode{Code: op}))
	}

	return
}
