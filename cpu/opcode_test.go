package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeDecode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op     Opcode
		name   string
		size   int
		setsPc bool
		isAlu  bool
	}){
		{OP_HLT, "hlt", 0, false, false},
		{OP_RET, "ret", 0, true, false},
		{OP_PUSH, "push", 1, false, false},
		{OP_POP, "pop", 1, false, false},
		{OP_PRN, "prn", 1, false, false},
		{OP_CALL, "call", 1, true, false},
		{OP_JMP, "jmp", 1, true, false},
		{OP_JEQ, "jeq", 1, true, false},
		{OP_JNE, "jne", 1, true, false},
		{OP_LDI, "ldi", 2, false, false},
		{OP_ADD, "add", 2, false, true},
		{OP_MUL, "mul", 2, false, true},
		{OP_CMP, "cmp", 2, false, true},
	}

	assert.Equal(len(table), len(instructions))

	for _, entry := range table {
		assert.True(entry.op.Valid(), entry.name)
		assert.Equal(entry.name, entry.op.String())
		assert.Equal(entry.size, entry.op.Size(), entry.name)
		assert.Equal(entry.size, len(entry.op.Operands()), entry.name)
		assert.Equal(entry.setsPc, entry.op.SetsPc(), entry.name)
		assert.Equal(entry.isAlu, entry.op.IsAlu(), entry.name)

		op, ok := LookupMnemonic(entry.name)
		assert.True(ok)
		assert.Equal(entry.op, op)
	}
}

func TestOpcodeUnknown(t *testing.T) {
	assert := assert.New(t)

	op := Opcode(0b10010011)
	assert.False(op.Valid())
	assert.Equal("", op.Mnemonic())
	assert.Equal("0x93", op.String())
	assert.Equal(2, op.Size())
	assert.True(op.SetsPc())

	_, ok := LookupMnemonic("nop")
	assert.False(ok)
}

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)

	mem := []uint8{
		0x82, 0x00, 0x08, // ldi r0, 8
		0xa0, 0x00, 0x01, // add r0, r1
		0x47, 0x0f, // prn r7 (masked)
		0x11, // ret
		0x99, // ???
	}

	table := [](struct {
		addr uint8
		text string
		size int
	}){
		{0, "ldi r0, 0x08", 3},
		{3, "add r0, r1", 3},
		{6, "prn r7", 2},
		{8, "ret", 1},
		{9, ".byte 0x99", 1},
	}

	for _, entry := range table {
		text, size := Disassemble(mem, entry.addr)
		assert.Equal(entry.text, text)
		assert.Equal(entry.size, size)
	}

	// Operands wrap around the end of memory.
	wrap := make([]uint8, MEMORY_SIZE)
	wrap[0xff] = uint8(OP_LDI)
	wrap[0x00] = 2
	wrap[0x01] = 0x10
	text, size := Disassemble(wrap, 0xff)
	assert.Equal("ldi r2, 0x10", text)
	assert.Equal(3, size)
}
