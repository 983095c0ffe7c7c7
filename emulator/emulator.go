// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/io"
)

var _emulator_defines = map[string]string{
	"ROM_SIZE": fmt.Sprintf("%v", io.ROM_SIZE),
}

// Emulator state. CPU + program image + output tape.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the assembled program, may be empty.

	Rom  io.Rom  // Memory image loaded on reset.
	Tape io.Tape // Destination of PRN.

	Limit int // Maximum instructions per Run, zero for no limit.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Cpu.Output = &emu.Tape

	return
}

// Defines returns the emulator and CPU defines, ordered by name.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Defines(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset the emulator state.
// - If a program is assembled, it replaces the rom image.
// - Resets the CPU and loads the rom image at address 0.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = false

	if len(emu.Program.Statements) != 0 {
		emu.Rom.Data = emu.Program.Binary()
		emu.Rom.Comment = make(map[int]string, len(emu.Program.Statements))
		for _, st := range emu.Program.Statements {
			emu.Rom.Comment[st.Addr] = fmt.Sprintf("%v: %v", st.LineNo, strings.Join(st.Words, " "))
		}
	}

	emu.Cpu.Reset()
	emu.Tape.Rewind()

	err = emu.Cpu.Load(emu.Rom.Data)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: loaded %v bytes", len(emu.Rom.Data))
	}

	emu.Cpu.Verbose = emu.Verbose

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() int {
	return int(emu.Cpu.Pc)
}

// LineNo returns the source line number for the current instruction,
// or zero when the program was not assembled.
func (emu *Emulator) LineNo() int {
	return emu.Program.LineNo(emu.Cpu.Pc)
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	if emu.Cpu.Halted {
		done = true
		return
	}

	lineno := emu.LineNo()
	addr := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Addr: addr, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	done = emu.Cpu.Halted

	return
}

// Run ticks until the program halts, faults, or exceeds Limit.
func (emu *Emulator) Run() (err error) {
	for steps := 0; ; steps++ {
		if emu.Limit > 0 && steps >= emu.Limit {
			err = &ErrRuntime{
				LineNo: emu.LineNo(),
				Addr:   emu.Cpu.Pc,
				Err:    cpu.ErrStepLimit,
			}
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}

// Faulted returns true if err was caused by the running program rather
// than by the emulator's environment.
func Faulted(err error) bool {
	return errors.Is(err, cpu.ErrOpcodeInvalid) ||
		errors.Is(err, cpu.ErrLinkEmpty) ||
		errors.Is(err, cpu.ErrStepLimit)
}
