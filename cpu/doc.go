// Package cpu implements the processor and assembler for the LS-8 system.
//
// The CPU consists of 256 bytes of memory, eight 8-bit registers (r0-r7,
// with r7 the stack pointer), a program counter, a flags register set by
// CMP, and a single return link used by CALL and RET.
//
// Instructions are one opcode byte followed by up to two operand bytes. The
// opcode's upper two bits give the operand count, and bit 4 marks the
// instructions that set the program counter themselves.
//
// The assembler provides a small assembly language for the LS-8 instruction
// set, supporting macros, labels, equates, and compile-time expression
// evaluation.
package cpu
