package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/ls8/io"
)

const (
	MEMORY_SIZE    = 256  // Bytes of addressable memory.
	REGISTER_COUNT = 8    // General purpose registers.
	REG_MASK       = 0x7  // Mask applied to register operands.
	REG_SP         = 7    // Register used as the stack pointer.
	SP_INIT        = 0xf3 // Initial stack pointer.
)

// Flag register bits: 00000LGE
const (
	FL_EQ = uint8(0b001) // Equal
	FL_GT = uint8(0b010) // Greater-than
	FL_LT = uint8(0b100) // Less-than
)

var _cpu_defines = map[string]string{
	"SP":      fmt.Sprintf("%v", REG_SP),
	"SP_INIT": fmt.Sprintf("%#x", SP_INIT),
	"FL_EQ":   fmt.Sprintf("%#x", FL_EQ),
	"FL_GT":   fmt.Sprintf("%#x", FL_GT),
	"FL_LT":   fmt.Sprintf("%#x", FL_LT),
}

// State of the execution loop.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_RUNNING = State(0) // running
	STATE_HALTED  = State(1) // halted
)

// Output receives the values emitted by PRN.
type Output io.Output

// Cpu is the LS-8 machine state and its execution engine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   [MEMORY_SIZE]uint8    // Main memory.
	Register [REGISTER_COUNT]uint8 // Register bank, R7 is the stack pointer.
	Pc       uint8                 // Address of the next instruction.
	Flags    uint8                 // Condition flags set by CMP.
	Link     uint8                 // Return address saved by CALL.
	Linked   bool                  // Set while Link holds a pending return.
	Halted   bool                  // Set by HLT.

	Output Output // Destination of PRN, may be nil.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a new CPU in its initial state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears memory, registers and flags.
// - Sets the stack pointer to SP_INIT.
// - Drops any pending return link.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Memory[:])
	clear(cpu.Register[:])
	cpu.Register[REG_SP] = SP_INIT
	cpu.Pc = 0
	cpu.Flags = 0
	cpu.Link = 0
	cpu.Linked = false
	cpu.Halted = false
	cpu.Ticks = 0
}

// State returns the execution loop state.
func (cpu *Cpu) State() State {
	if cpu.Halted {
		return STATE_HALTED
	}
	return STATE_RUNNING
}

// Load copies a memory image to memory, starting at address 0.
func (cpu *Cpu) Load(image []uint8) (err error) {
	if len(image) > len(cpu.Memory) {
		err = ErrProgramTooLarge
		return
	}

	copy(cpu.Memory[:], image)

	return
}

// Read returns the memory cell at addr.
func (cpu *Cpu) Read(addr uint8) uint8 {
	return cpu.Memory[addr]
}

// Write sets the memory cell at addr.
func (cpu *Cpu) Write(addr uint8, value uint8) {
	cpu.Memory[addr] = value
}

// Sp returns the stack pointer.
func (cpu *Cpu) Sp() uint8 {
	return cpu.Register[REG_SP]
}

// Tick executes a single instruction.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	if cpu.Verbose {
		log.Print(cpu.Trace())
	}

	op := Opcode(cpu.Read(cpu.Pc))
	a := cpu.Read(cpu.Pc + 1)
	b := cpu.Read(cpu.Pc + 2)

	err = cpu.Execute(op, a, b)
	if err != nil {
		return
	}

	cpu.Ticks++

	return
}

// Execute dispatches a single decoded instruction with its operands,
// then advances the PC unless the instruction set it.
func (cpu *Cpu) Execute(op Opcode, a, b uint8) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode{Addr: cpu.Pc, Code: op}, err)
		}
	}()

	inst, ok := instructions[op]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	err = inst.Handler(cpu, a, b)
	if err != nil {
		return
	}

	if !op.SetsPc() {
		cpu.Pc += uint8(op.Size() + 1)
	}

	return
}

// Run executes instructions until HLT, an error, or limit instructions
// have executed. A limit of zero or less runs without bound.
func (cpu *Cpu) Run(limit int) (err error) {
	for steps := 0; !cpu.Halted; steps++ {
		if limit > 0 && steps >= limit {
			err = ErrStepLimit
			return
		}

		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Trace returns a single line of the CPU state: PC, the next three
// memory bytes, and all registers.
func (cpu *Cpu) Trace() (text string) {
	text = fmt.Sprintf("TRACE: %02X | %02X %02X %02X |",
		cpu.Pc,
		cpu.Read(cpu.Pc),
		cpu.Read(cpu.Pc+1),
		cpu.Read(cpu.Pc+2),
	)

	for _, reg := range cpu.Register {
		text += fmt.Sprintf(" %02X", reg)
	}

	inst, _ := Disassemble(cpu.Memory[:], cpu.Pc)
	text += " | " + inst

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"pc",
		"fl",
		"r0", "r1", "r2", "r3", "r4", "r5", "r6", "sp",
		"top",
		"link",
		"state",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%02X", cpu.Pc)
		case "fl":
			strval = fmt.Sprintf("%03b", cpu.Flags)
		case "r0", "r1", "r2", "r3", "r4", "r5", "r6":
			val := cpu.Register[byte(reg[1]-'0')]
			strval = fmt.Sprintf("%02X", val)
		case "sp":
			strval = fmt.Sprintf("%02X", cpu.Sp())
		case "top":
			strval = fmt.Sprintf("%02X", cpu.Peek())
		case "link":
			if cpu.Linked {
				strval = fmt.Sprintf("%02X", cpu.Link)
			} else {
				strval = "--"
			}
		case "state":
			strval = cpu.State().String()
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}
