// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/bus8/device"
	"github.com/ezrec/bus8/internal"
	"github.com/ezrec/bus8/program"
	"github.com/ezrec/bus8/program/operand"
	"github.com/ezrec/bus8/program/ref"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":       "0",
	"STATUS_CARRY": fmt.Sprintf("%#v", device.STATUS_CARRY),
	"STATUS_ZERO":  fmt.Sprintf("%#v", device.STATUS_ZERO),
}

var (
	reLabel     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reCharacter = regexp.MustCompile(`'\\?[^']'`)
	reParen     = regexp.MustCompile(`\$\([^\$]*\)`)
)

// Assembler is a single pass macro assembler for the bus8 computer.
//
// Label references are left symbolic in the resulting program.Program, so
// they may be used before they are defined.
type Assembler struct {
	Verbose      bool           // If set, verbosely logs the assembler actions.
	Instructions InstructionSet // Instruction set to assemble for. Standard if nil.
	LineNo       map[uint16]int // Map of instruction addresses to source lines.

	predefine map[string]string   // Predefines
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
	prog      program.Program
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

func (asm *Assembler) instructions() InstructionSet {
	if asm.Instructions == nil {
		return Standard
	}
	return asm.Instructions
}

// valueOf returns the value of a numeric word.
// Accepts Go integer syntax, plus $hex and %binary.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	text := word
	negative := strings.HasPrefix(text, "-")
	if negative {
		text = text[1:]
	}
	switch {
	case strings.HasPrefix(text, "$"):
		text = "0x" + text[1:]
	case strings.HasPrefix(text, "%"):
		text = "0b" + text[1:]
	}

	v64, err := strconv.ParseInt(text, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)
	if negative {
		value = -value
	}

	return
}

// byteOf parses a byte, allowing signed values.
func (asm *Assembler) byteOf(word string) (value byte, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v < -0x80 || v > 0xff {
		err = ErrValueRange
		return
	}
	value = byte(v)
	return
}

// wordOf parses an address.
func (asm *Assembler) wordOf(word string) (value uint16, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v < -0x8000 || v > 0xffff {
		err = ErrValueRange
		return
	}
	value = uint16(v)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v int
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(v)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// splitWords splits a line on blanks and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// parseLine expands a single line into words, defining labels and
// expanding macros as it goes.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
			continue
		}
		if strings.HasPrefix(word, "#") {
			equate, ok = asm.Equate[word[1:]]
			if ok {
				words[n] = "#" + equate
			}
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !reLabel.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, lerr := asm.prog.Label(label)
		if lerr == nil {
			err = ErrLabelDuplicate
			return
		}

		asm.prog = asm.prog.WithLabel(label)
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into an unresolved Program.
func (asm *Assembler) Parse(input io.Reader) (prog program.Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.prog = program.New()
	asm.LineNo = map[uint16]int{}
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Collect(internal.IterSeq2Concat(maps.All(sysEquate), maps.All(asm.predefine)))

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	prog = asm.prog

	return
}

// operandOf determines the operand of an instruction from its argument.
// A bare value is relative only for instructions that accept nothing else.
func (asm *Assembler) operandOf(ins Instruction, args []string) (op operand.Operand, err error) {
	if len(args) > 1 {
		err = ErrOpcodeExtraArgs
		return
	}

	if len(args) == 0 {
		op = operand.None{}
		return
	}

	word := args[0]
	if strings.HasPrefix(word, "#") {
		var value byte
		value, err = asm.byteOf(word[1:])
		if err != nil {
			return
		}
		op = operand.Immediate(value)
		return
	}

	_, absolute := ins.OperandInstance(operand.KIND_ABSOLUTE)
	_, relative := ins.OperandInstance(operand.KIND_RELATIVE)
	relative = relative && !absolute

	if reLabel.MatchString(word) {
		if relative {
			op = operand.Relative{Label: word}
		} else {
			op = operand.Absolute{Label: word}
		}
		return
	}

	if relative {
		var offset byte
		offset, err = asm.byteOf(word)
		if err != nil {
			return
		}
		op = operand.Relative{Offset: offset}
		return
	}

	var address uint16
	address, err = asm.wordOf(word)
	if err != nil {
		return
	}
	op = operand.Absolute{Address: address}

	return
}

// parseDirective evaluates a dot directive.
func (asm *Assembler) parseDirective(words []string) (err error) {
	args := words[1:]

	switch words[0] {
	case ".org":
		if len(args) != 1 {
			err = ErrDirectiveArgs
			return
		}
		var address uint16
		address, err = asm.wordOf(args[0])
		if err != nil {
			return
		}
		asm.prog = asm.prog.At(address)
	case ".byte":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			var value byte
			value, err = asm.byteOf(arg)
			if err != nil {
				return
			}
			asm.prog = asm.prog.WithValue(ref.Literal(value))
		}
	case ".word":
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			if reLabel.MatchString(arg) {
				asm.prog = asm.prog.WithValue(ref.Absolute(arg))
				continue
			}
			var value uint16
			value, err = asm.wordOf(arg)
			if err != nil {
				return
			}
			asm.prog = asm.prog.WithValue(ref.PairFor(value))
		}
	default:
		err = ErrDirectiveInvalid
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	if strings.HasPrefix(words[0], ".") {
		err = asm.parseDirective(words)
		return
	}

	set := asm.instructions()
	name, ok := set.ParseMnemonic(words[0])
	if !ok {
		err = ErrMnemonicUnknown(words[0])
		return
	}

	op, err := asm.operandOf(set[name], words[1:])
	if err != nil {
		return
	}

	asm.LineNo[asm.prog.Next()] = lineno
	asm.prog = asm.prog.WithStatement(set.Statement(name, op))
	err = asm.prog.Err()

	return
}
