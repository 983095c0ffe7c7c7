package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ROM_SIZE is the largest image a Rom can hold.
const ROM_SIZE = 256

// Rom is a program image in the LS-8 binary text format.
//
// Each line holds at most one byte, written as eight binary digits.
// Text after a '#' is a comment. Lines that do not start with a binary
// digit once trimmed are ignored.
type Rom struct {
	Data    []uint8        // Image, loaded at address 0.
	Comment map[int]string // Optional per-address comments for Write.
}

// Rewind discards the image.
func (rc *Rom) Rewind() {
	rc.Data = nil
	clear(rc.Comment)
}

// Parse reads an image, replacing any prior contents.
func (rc *Rom) Parse(input io.Reader) (err error) {
	scanner := bufio.NewScanner(input)

	var lineno int
	var text string

	defer func() {
		if err != nil {
			err = &ErrRomSyntax{LineNo: lineno, Line: text, Err: err}
		}
	}()

	rc.Rewind()

	for scanner.Scan() {
		text = scanner.Text()
		lineno++

		line, _, _ := strings.Cut(text, "#")
		line = strings.TrimSpace(line)
		if len(line) == 0 || (line[0] != '0' && line[0] != '1') {
			continue
		}

		if len(line) > 8 {
			line = line[:8]
		}

		var value uint64
		value, err = strconv.ParseUint(line, 2, 8)
		if err != nil {
			err = ErrRomDigits
			return
		}

		if len(rc.Data) == ROM_SIZE {
			err = ErrRomFull
			return
		}

		rc.Data = append(rc.Data, uint8(value))
	}

	err = scanner.Err()

	return
}

// Write emits the image in the binary text format, one byte per line,
// with any comments.
func (rc *Rom) Write(output io.Writer) (err error) {
	w := bufio.NewWriter(output)

	for addr, data := range rc.Data {
		line := fmt.Sprintf("%08b", data)
		comment, ok := rc.Comment[addr]
		if ok && len(comment) != 0 {
			line += " # " + comment
		}
		_, err = fmt.Fprintln(w, line)
		if err != nil {
			return
		}
	}

	err = w.Flush()

	return
}
