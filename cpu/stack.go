package cpu

// Push decrements SP, then stores register reg at the new top of stack.
// SP wraps from 0x00 to 0xff.
func (cpu *Cpu) Push(reg uint8) {
	cpu.Register[REG_SP]--
	cpu.Write(cpu.Sp(), *cpu.reg(reg))
}

// Pop loads register reg from the top of stack, zeroes the cell, then
// increments SP. SP wraps from 0xff to 0x00.
func (cpu *Cpu) Pop(reg uint8) {
	sp := cpu.Sp()
	*cpu.reg(reg) = cpu.Read(sp)
	cpu.Write(sp, 0)
	cpu.Register[REG_SP]++
}

// Peek returns the top of stack without removing it.
func (cpu *Cpu) Peek() uint8 {
	return cpu.Read(cpu.Sp())
}
