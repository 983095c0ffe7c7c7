package cpu

// Handler executes an instruction given its two raw operand bytes.
// Operands an instruction does not use are ignored.
type Handler func(cpu *Cpu, a, b uint8) error

// Instruction is an entry of the dispatch table.
type Instruction struct {
	Name     string    // Assembler mnemonic.
	Operands []Operand // Operand kinds, len() == Opcode.Size().
	Handler  Handler
}

var (
	operandsR  = []Operand{OPERAND_REG}
	operandsRR = []Operand{OPERAND_REG, OPERAND_REG}
	operandsRI = []Operand{OPERAND_REG, OPERAND_IMM}
)

// instructions is the dispatch table, keyed by opcode byte.
var instructions = map[Opcode]Instruction{
	OP_HLT:  {"hlt", nil, (*Cpu).opHlt},
	OP_LDI:  {"ldi", operandsRI, (*Cpu).opLdi},
	OP_PRN:  {"prn", operandsR, (*Cpu).opPrn},
	OP_ADD:  {"add", operandsRR, func(cpu *Cpu, a, b uint8) error { cpu.alu(OP_ADD, a, b); return nil }},
	OP_MUL:  {"mul", operandsRR, func(cpu *Cpu, a, b uint8) error { cpu.alu(OP_MUL, a, b); return nil }},
	OP_CMP:  {"cmp", operandsRR, func(cpu *Cpu, a, b uint8) error { cpu.alu(OP_CMP, a, b); return nil }},
	OP_PUSH: {"push", operandsR, (*Cpu).opPush},
	OP_POP:  {"pop", operandsR, (*Cpu).opPop},
	OP_CALL: {"call", operandsR, (*Cpu).opCall},
	OP_RET:  {"ret", nil, (*Cpu).opRet},
	OP_JMP:  {"jmp", operandsR, (*Cpu).opJmp},
	OP_JEQ:  {"jeq", operandsR, (*Cpu).opJeq},
	OP_JNE:  {"jne", operandsR, (*Cpu).opJne},
}

// mnemonicMap is the reverse of the dispatch table.
var mnemonicMap = func() map[string]Opcode {
	names := make(map[string]Opcode, len(instructions))
	for op, inst := range instructions {
		names[inst.Name] = op
	}
	return names
}()

// reg returns a pointer to the register selected by an operand.
func (cpu *Cpu) reg(operand uint8) *uint8 {
	return &cpu.Register[operand&REG_MASK]
}

func (cpu *Cpu) opHlt(a, b uint8) error {
	cpu.Halted = true
	return nil
}

func (cpu *Cpu) opLdi(a, b uint8) error {
	*cpu.reg(a) = b
	return nil
}

func (cpu *Cpu) opPrn(a, b uint8) error {
	if cpu.Output == nil {
		return nil
	}
	return cpu.Output.Print(*cpu.reg(a))
}

func (cpu *Cpu) opPush(a, b uint8) error {
	cpu.Push(a)
	return nil
}

func (cpu *Cpu) opPop(a, b uint8) error {
	cpu.Pop(a)
	return nil
}

// opCall saves the address of the following instruction. Only one
// return address is held, so a nested call replaces the pending one.
func (cpu *Cpu) opCall(a, b uint8) error {
	cpu.Link = cpu.Pc + 2
	cpu.Linked = true
	cpu.Pc = *cpu.reg(a)
	return nil
}

func (cpu *Cpu) opRet(a, b uint8) error {
	if !cpu.Linked {
		return ErrLinkEmpty
	}
	cpu.Pc = cpu.Link
	cpu.Link = 0
	cpu.Linked = false
	return nil
}

func (cpu *Cpu) opJmp(a, b uint8) error {
	cpu.Pc = *cpu.reg(a)
	return nil
}

func (cpu *Cpu) opJeq(a, b uint8) error {
	cpu.branch(cpu.Flags&FL_EQ != 0, a)
	return nil
}

func (cpu *Cpu) opJne(a, b uint8) error {
	cpu.branch(cpu.Flags&(FL_LT|FL_GT) != 0, a)
	return nil
}

// branch jumps to the address in register a when taken, otherwise steps
// over the two byte conditional jump.
func (cpu *Cpu) branch(taken bool, a uint8) {
	if taken {
		cpu.Pc = *cpu.reg(a)
	} else {
		cpu.Pc += 2
	}
}
