package io

import (
	"fmt"
	"io"
)

// Tape writes each printed value as a decimal line to an io.Writer.
type Tape struct {
	Output io.Writer

	Count int // Values written since the last rewind.
}

var _ Output = (*Tape)(nil)

// Rewind resets the value counter. The writer itself cannot be rewound.
func (tc *Tape) Rewind() {
	tc.Count = 0
}

// Print writes a value followed by a newline.
func (tc *Tape) Print(value uint8) (err error) {
	if tc.Output == nil {
		err = ErrTapeMissing
		return
	}

	_, err = fmt.Fprintf(tc.Output, "%d\n", value)
	if err != nil {
		return
	}

	tc.Count++

	return
}
