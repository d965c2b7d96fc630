// Package cpu implements the control unit and assembler of the bus8 computer.
//
// The control unit is a microcode table: each Entry maps an opcode, a step
// within that opcode, and the ALU status flags to the set of control lines
// asserted for one clock cycle. Instructions are written as sequences of
// Steps, and compile to entries behind a shared three step fetch preamble.
//
// The assembler reads 6502 flavoured source text, with labels, equates,
// macros, and compile-time $(...) expressions, into a program.Program.
package cpu
