package io

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Rom errors
	ErrRomFull   = errors.New(f("rom full"))
	ErrRomDigits = errors.New(f("not a binary byte"))

	// Tape errors
	ErrTapeMissing = errors.New(f("tape output missing"))
)

// ErrRomSyntax indicates the line of a rom image that failed to parse.
type ErrRomSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrRomSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrRomSyntax) Unwrap() error {
	return err.Err
}
