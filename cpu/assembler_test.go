package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(t *testing.T, program ...string) (prog *Program, err error) {
	asm := &Assembler{}
	prog, err = asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Statements))
	assert.Equal(0, prog.Len())

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("256", asm.Equate["MEMORY_SIZE"])
}

func TestAssemblerMultiply(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		"; print 8*9",
		"LDI R0,8",
		"LDI R1,9",
		"MUL R0,R1",
		"PRN R0 ; 72",
		"HLT",
	)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	expected := []Statement{
		{2, 0, []string{"LDI", "R0", "8"}, []uint8{0x82, 0x00, 0x08}, "", 0},
		{3, 3, []string{"LDI", "R1", "9"}, []uint8{0x82, 0x01, 0x09}, "", 0},
		{4, 6, []string{"MUL", "R0", "R1"}, []uint8{0xa2, 0x00, 0x01}, "", 0},
		{5, 9, []string{"PRN", "R0"}, []uint8{0x47, 0x00}, "", 0},
		{6, 11, []string{"HLT"}, []uint8{0x01}, "", 0},
	}
	assert.Equal(expected, prog.Statements)

	assert.Equal([]uint8{
		0x82, 0x00, 0x08,
		0x82, 0x01, 0x09,
		0xa2, 0x00, 0x01,
		0x47, 0x00,
		0x01,
	}, prog.Binary())
}

func TestAssemblerAllInstructions(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		"hlt",
		"ret",
		"push r1",
		"pop r2",
		"prn r3",
		"call r4",
		"jmp r5",
		"jeq r6",
		"jne sp",
		"ldi r0 0xff",
		"add r0 r1",
		"mul r2 r3",
		"cmp r4 r5",
	)
	assert.NoError(err)

	assert.Equal([]uint8{
		0x01,
		0x11,
		0x45, 0x01,
		0x46, 0x02,
		0x47, 0x03,
		0x50, 0x04,
		0x54, 0x05,
		0x55, 0x06,
		0x56, 0x07,
		0x82, 0x00, 0xff,
		0xa0, 0x00, 0x01,
		0xa2, 0x02, 0x03,
		0xa7, 0x04, 0x05,
	}, prog.Binary())
}

func TestAssemblerLabel(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		"ldi r2, Target",
		"jmp r2",
		".byte 0xff, End",
		"Target: Again:",
		"hlt",
		"End:",
	)
	assert.NoError(err)

	assert.Equal([]uint8{
		0x82, 0x02, 0x07,
		0x54, 0x02,
		0xff, 0x08,
		0x01,
	}, prog.Binary())

	assert.Equal(0, prog.Statements[0].Addr)
	assert.Equal("Target", prog.Statements[0].LinkLabel)
	assert.Equal(2, prog.Statements[0].LinkIndex)
	assert.Equal("End", prog.Statements[2].LinkLabel)
	assert.Equal(1, prog.Statements[2].LinkIndex)
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "0x10")
	program := []string{
		".equ COUNT 3",
		".equ COUNTER r3",
		"start: ldi COUNTER $(COUNT * 4 + 1)",
		"ldi r1 'A'",
		"ldi r2 -1",
		"ldi r4 $(start + BASE)",
		"ldi r5 0b1010",
		"ldi r6 $(LINENO)",
		"ldi r0 '\\n'",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)

	assert.Equal([]uint8{
		0x82, 0x03, 13,
		0x82, 0x01, 65,
		0x82, 0x02, 0xff,
		0x82, 0x04, 0x10,
		0x82, 0x05, 10,
		0x82, 0x06, 8,
		0x82, 0x00, 10,
	}, prog.Binary())
	assert.Equal("r3", asm.Equate["COUNTER"])
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		".macro SET2 ra rb v",
		"ldi ra v",
		"ldi rb v",
		".endm",
		".macro SPIN",
		"@loop: ldi r6 @loop",
		"jmp r6",
		".endm",
		"SET2 r0 r1 7",
		"SET2 r2 r3 $(2 * 4)",
		"SPIN",
		"SPIN",
	)
	assert.NoError(err)

	assert.Equal([]uint8{
		0x82, 0x00, 7,
		0x82, 0x01, 7,
		0x82, 0x02, 8,
		0x82, 0x03, 8,
		0x82, 0x06, 12,
		0x54, 0x06,
		0x82, 0x06, 17,
		0x54, 0x06,
	}, prog.Binary())

	assert.Equal(2, prog.Statements[0].LineNo)
	assert.Equal(3, prog.Statements[1].LineNo)
}

func TestAssemblerErrors(t *testing.T) {
	// A label just past the end of memory.
	past_end := []string{"ldi r0 End"}
	for range MEMORY_SIZE - 3 {
		past_end = append(past_end, ".byte 0")
	}
	past_end = append(past_end, "End:")

	table := [](struct {
		name    string
		program []string
		lineno  int
		err     error
	}){
		{"instruction", []string{"hlt", "nop"}, 2, ErrInstructionInvalid},
		{"register", []string{"ldi r8 1"}, 1, ErrRegisterInvalid},
		{"missing", []string{"ldi r0"}, 1, ErrOpcodeValueMissing},
		{"extra", []string{"hlt r0"}, 1, ErrOpcodeExtraArgs},
		{"range", []string{"ldi r0 256"}, 1, ErrValueRange},
		{"range_expr", []string{"ldi r0 $(100 * 3)"}, 1, ErrValueRange},
		{"number", []string{".byte 12ab"}, 1, ErrParseNumber("12ab")},
		{"label_missing", []string{"ldi r0 nowhere"}, 1, ErrLabelMissing("nowhere")},
		{"label_dup", []string{"a: hlt", "a: hlt"}, 2, ErrLabelDuplicate},
		{"equ_dup", []string{".equ A 1", ".equ A 2"}, 2, ErrEquateDuplicate},
		{"equ_syntax", []string{".equ A"}, 1, ErrEquateSyntax},
		{"endm", []string{".endm"}, 1, ErrMacroLonelyEndm},
		{"macro", []string{".macro M", "hlt"}, 2, ErrMacroLonely},
		{"macro_nest", []string{".macro M", ".macro N"}, 2, ErrMacroNesting},
		{"macro_args", []string{".macro M a", "ldi r0 a", ".endm", "M"}, 4, ErrMacroSyntax},
		{"byte_missing", []string{".byte"}, 1, ErrOpcodeValueMissing},
		{"label_range", past_end, 1, ErrValueRange},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := assemble(t, entry.program...)
			assert.ErrorIs(err, entry.err)

			var se *ErrSyntax
			if assert.True(errors.As(err, &se)) {
				assert.Equal(entry.lineno, se.LineNo)
			}
		})
	}
}

func TestAssemblerMacroError(t *testing.T) {
	assert := assert.New(t)

	_, err := assemble(t,
		".macro BAD",
		"ldi r9 1",
		".endm",
		"BAD",
	)
	assert.ErrorIs(err, ErrRegisterInvalid)

	var me *ErrMacro
	assert.True(errors.As(err, &me))
	assert.Equal("BAD", me.Macro)
	assert.Equal(2, me.Line)

	var se *ErrSyntax
	if assert.True(errors.As(err, &se)) {
		assert.Equal(4, se.LineNo)
		assert.Equal("BAD", se.Line)
		assert.False(errors.As(se.Err, &se))
	}
}

func TestAssemblerCharComment(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		"ldi r0 ';' ; semicolon",
		"ldi r1 'x';x",
		"ldi r2 '\\\\' ; backslash",
	)
	assert.NoError(err)
	assert.Equal([]uint8{
		0x82, 0x00, ';',
		0x82, 0x01, 'x',
		0x82, 0x02, '\\',
	}, prog.Binary())

	assert.Equal("ldi r0 ';' ", stripComment("ldi r0 ';' ; semicolon"))
	assert.Equal("hlt", stripComment("hlt"))
}

func TestAssemblerPartialStatement(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader("hlt\n.byte 1, 2, 12ab"))
	assert.ErrorIs(err, ErrParseNumber("12ab"))
	assert.Equal(1, len(asm.Statement))
	assert.Equal(1, asm.currentAddr())
}

func TestAssemblerTooLarge(t *testing.T) {
	assert := assert.New(t)

	lines := make([]string, MEMORY_SIZE+1)
	for n := range lines {
		lines[n] = "hlt"
	}

	_, err := assemble(t, lines...)
	assert.ErrorIs(err, ErrProgramTooLarge)

	prog, err := assemble(t, lines[1:]...)
	assert.NoError(err)
	assert.Equal(MEMORY_SIZE, prog.Len())
}

func TestAssemblerRegisterIndex(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("SP", "7")

	prog, err := asm.Parse(strings.NewReader("push SP\npop 3\nprn sp"))
	assert.NoError(err)
	assert.Equal([]uint8{0x45, 0x07, 0x46, 0x03, 0x47, 0x07}, prog.Binary())

	_, err = asm.Parse(strings.NewReader("pop 8"))
	assert.ErrorIs(err, ErrRegisterInvalid)
}
