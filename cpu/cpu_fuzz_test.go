package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzCpu(f *testing.F) {
	for op := range instructions {
		f.Add(uint8(op), uint8(0), uint8(1), uint8(0x20), FL_EQ, false)
		f.Add(uint8(op), uint8(7), uint8(0xff), uint8(0xfe), FL_LT, true)
	}
	f.Add(uint8(0x00), uint8(0), uint8(0), uint8(0), uint8(0), false)
	f.Add(uint8(0xff), uint8(0), uint8(0), uint8(0xff), FL_GT, true)

	f.Fuzz(func(t *testing.T, opcode, a, b, pc, flags uint8, linked bool) {
		assert := assert.New(t)

		cpu := NewCpu()
		cpu.Pc = pc
		cpu.Flags = flags
		cpu.Link = 0x5a
		cpu.Linked = linked
		for n := range 7 {
			cpu.Register[n] = uint8(0x11 * (n + 1))
		}
		out := &printed{}
		cpu.Output = out

		op := Opcode(opcode)
		before := *cpu
		err := cpu.Execute(op, a, b)

		if !op.Valid() {
			assert.ErrorIs(err, ErrOpcodeInvalid)
			assert.Equal(before.Register, cpu.Register)
			assert.Equal(before.Memory, cpu.Memory)
			assert.Equal(pc, cpu.Pc)
			return
		}

		if op == OP_RET && !linked {
			assert.ErrorIs(err, ErrLinkEmpty)
			assert.Equal(pc, cpu.Pc)
			return
		}

		assert.NoError(err)

		if !op.SetsPc() {
			assert.Equal(pc+uint8(op.Size()+1), cpu.Pc)
		}

		if op != OP_CMP {
			assert.Equal(flags, cpu.Flags)
		} else {
			assert.Contains([]uint8{FL_LT, FL_GT, FL_EQ}, cpu.Flags)
		}

		switch op {
		case OP_PUSH:
			assert.Equal(before.Sp()-1, cpu.Sp())
		case OP_POP:
			if a&REG_MASK != REG_SP {
				assert.Equal(before.Sp()+1, cpu.Sp())
			}
		case OP_PRN:
			assert.Equal(printed{before.Register[a&REG_MASK]}, *out)
		case OP_HLT:
			assert.True(cpu.Halted)
		default:
			assert.False(cpu.Halted)
		}
	})
}
