package cpu

import (
	"iter"
)

// Statement is a line of assembled code with its source location and
// generated bytes.
type Statement struct {
	LineNo    int
	Addr      int
	Words     []string
	Codes     []uint8
	LinkLabel string // Label to resolve into Codes[LinkIndex].
	LinkIndex int
}

type Program struct {
	Statements []Statement
}

type Debug struct {
	*Statement
	Index int
}

// Debug finds the statement that generated the byte at addr.
func (prog *Program) Debug(addr uint8) (dbg Debug) {
	for n, st := range prog.Statements {
		if int(addr) >= st.Addr && int(addr) < st.Addr+len(st.Codes) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(addr) - st.Addr,
			}
			break
		}
	}

	return
}

// LineNo returns the source line for addr, or 0 if none.
func (prog *Program) LineNo(addr uint8) int {
	dbg := prog.Debug(addr)
	if dbg.Statement == nil {
		return 0
	}
	return dbg.LineNo
}

// Len returns the number of bytes in the program.
func (prog *Program) Len() (size int) {
	for _, st := range prog.Statements {
		size = max(size, st.Addr+len(st.Codes))
	}
	return
}

// Binary returns the memory image of the program.
func (prog *Program) Binary() (bins []uint8) {
	bins = make([]uint8, prog.Len())
	for addr, code := range prog.Codes() {
		bins[addr] = code
	}

	return
}

// Codes iterates over every byte of the program with its address.
func (prog *Program) Codes() iter.Seq2[int, uint8] {
	return func(yield func(addr int, code uint8) bool) {
		for _, st := range prog.Statements {
			for n, code := range st.Codes {
				if !yield(st.Addr+n, code) {
					return
				}
			}
		}
	}
}
