package io

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken")
}

func TestTapePrint(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	tape := &Tape{Output: out}

	for _, value := range []uint8{72, 0, 255} {
		assert.NoError(tape.Print(value))
	}

	assert.Equal("72\n0\n255\n", out.String())
	assert.Equal(3, tape.Count)

	tape.Rewind()
	assert.Equal(0, tape.Count)
}

func TestTapeErrors(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{}
	assert.ErrorIs(tape.Print(1), ErrTapeMissing)

	tape.Output = brokenWriter{}
	assert.Error(tape.Print(1))
	assert.Equal(0, tape.Count)
}

func TestCapture(t *testing.T) {
	assert := assert.New(t)

	capture := &Capture{}
	var out Output = capture

	assert.NoError(out.Print(1))
	assert.NoError(out.Print(2))
	assert.Equal([]uint8{1, 2}, capture.Values)

	capture.Rewind()
	assert.Empty(capture.Values)
}
