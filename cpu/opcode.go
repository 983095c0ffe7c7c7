package cpu

import (
	"fmt"
)

// Opcode is the first byte of an instruction.
//
// Bit layout: AABCDDDD
//   - AA:   number of operand bytes that follow (0, 1 or 2)
//   - B:    instruction is handled by the ALU
//   - C:    instruction sets the PC itself
//   - DDDD: instruction identifier
type Opcode uint8

const (
	OP_HLT  = Opcode(0b00000001) // hlt
	OP_RET  = Opcode(0b00010001) // ret
	OP_PUSH = Opcode(0b01000101) // push
	OP_POP  = Opcode(0b01000110) // pop
	OP_PRN  = Opcode(0b01000111) // prn
	OP_CALL = Opcode(0b01010000) // call
	OP_JMP  = Opcode(0b01010100) // jmp
	OP_JEQ  = Opcode(0b01010101) // jeq
	OP_JNE  = Opcode(0b01010110) // jne
	OP_LDI  = Opcode(0b10000010) // ldi
	OP_ADD  = Opcode(0b10100000) // add
	OP_MUL  = Opcode(0b10100010) // mul
	OP_CMP  = Opcode(0b10100111) // cmp
)

const (
	opSizeShift = 6
	opAluBit    = 1 << 5
	opSetsPcBit = 1 << 4
)

// Operand kinds, used by the assembler and disassembler.
type Operand int

const (
	OPERAND_REG = Operand(iota) // register index
	OPERAND_IMM                 // immediate byte
)

// Size returns the number of operand bytes that follow the opcode.
func (op Opcode) Size() int {
	return int(op >> opSizeShift)
}

// SetsPc returns true if the handler is responsible for the PC.
func (op Opcode) SetsPc() bool {
	return (op & opSetsPcBit) != 0
}

// IsAlu returns true if the opcode is an ALU operation.
func (op Opcode) IsAlu() bool {
	return (op & opAluBit) != 0
}

// Valid returns true if the opcode is part of the instruction set.
func (op Opcode) Valid() bool {
	_, ok := instructions[op]
	return ok
}

// Mnemonic returns the lower-case mnemonic, or the empty string for an
// opcode that is not part of the instruction set.
func (op Opcode) Mnemonic() string {
	inst, ok := instructions[op]
	if !ok {
		return ""
	}
	return inst.Name
}

// Operands returns the kinds of the operands of a valid opcode.
func (op Opcode) Operands() []Operand {
	return instructions[op].Operands
}

// String returns the mnemonic, or a hex byte for unknown opcodes.
func (op Opcode) String() string {
	name := op.Mnemonic()
	if name == "" {
		return fmt.Sprintf("0x%02x", uint8(op))
	}
	return name
}

// LookupMnemonic finds the opcode for a mnemonic.
func LookupMnemonic(name string) (op Opcode, ok bool) {
	op, ok = mnemonicMap[name]
	return
}

// Disassemble decodes the instruction at addr, returning its text
// and its length in bytes.
func Disassemble(mem []uint8, addr uint8) (text string, size int) {
	fetch := func(offset int) uint8 {
		return mem[(int(addr)+offset)%len(mem)]
	}

	op := Opcode(fetch(0))
	size = op.Size() + 1

	if !op.Valid() {
		text = fmt.Sprintf(".byte 0x%02x", uint8(op))
		size = 1
		return
	}

	text = op.String()
	for n, kind := range op.Operands() {
		value := fetch(1 + n)
		sep := " "
		if n > 0 {
			sep = ", "
		}
		switch kind {
		case OPERAND_REG:
			text += fmt.Sprintf("%vr%d", sep, value&REG_MASK)
		case OPERAND_IMM:
			text += fmt.Sprintf("%v0x%02x", sep, value)
		}
	}

	return
}
