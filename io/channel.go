// Package io provides the collaborators that connect an LS-8 CPU to the
// outside world: the Rom loader for the binary text program format, and
// the Tape and Capture outputs that receive the values printed by PRN.
package io

// Output receives the values printed by the CPU, one per PRN, in
// execution order.
type Output interface {
	Print(value uint8) error
}

// Capture records printed values in memory.
type Capture struct {
	Values []uint8
}

var _ Output = (*Capture)(nil)

// Print appends a value.
func (cc *Capture) Print(value uint8) error {
	cc.Values = append(cc.Values, value)
	return nil
}

// Rewind discards all captured values.
func (cc *Capture) Rewind() {
	cc.Values = nil
}
