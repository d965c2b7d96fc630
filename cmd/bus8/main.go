// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"golang.org/x/term"

	"github.com/ezrec/bus8/cpu"
	"github.com/ezrec/bus8/emulator"
	"github.com/ezrec/bus8/internal"
	"github.com/ezrec/bus8/program"
	"github.com/ezrec/bus8/translate"
)

// dumpWidth is the number of bytes per memory dump row that fit stdout.
func dumpWidth() int {
	width := 16
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return width
	}
	cols, _, err := term.GetSize(fd)
	if err != nil {
		return width
	}
	// "0x0000:" then " 0x00" per byte.
	for width > 4 && 7+width*5 > cols {
		width /= 2
	}
	for 7+width*2*5 <= cols && width < 32 {
		width *= 2
	}
	return width
}

// dump writes the registers, then every memory row holding data.
func dump(w io.Writer, c *emulator.Computer, image program.Image) {
	fmt.Fprintf(w, "pc %v a %v x %v y %v carry %v zero %v cycles %v\n",
		internal.HexWord(c.ProgramCounter.Value()),
		internal.HexByte(c.A.Value), internal.HexByte(c.X.Value), internal.HexByte(c.Y.Value),
		c.ALU.Carry, c.ALU.Zero, c.Cycles)

	width := uint16(dumpWidth())
	rows := map[uint16]bool{}
	for address := range image {
		rows[address-address%width] = true
	}
	for address, value := range c.Memory.Data {
		if value != 0 {
			rows[address-address%width] = true
		}
	}

	for _, row := range slices.Sorted(maps.Keys(rows)) {
		var line strings.Builder
		line.WriteString(internal.HexWord(row) + ":")
		for n := range width {
			line.WriteString(" " + internal.HexByte(c.Memory.Data[row+n]))
		}
		fmt.Fprintln(w, line.String())
	}
}

// sourceLine finds the source line of the instruction covering address.
func sourceLine(asm *cpu.Assembler, address uint16) (lineno int, ok bool) {
	var best uint16
	for addr, line := range asm.LineNo {
		if addr <= address && (!ok || addr >= best) {
			best = addr
			lineno = line
			ok = true
		}
	}
	return
}

func main() {
	var compile string
	var verbose bool
	var limit int
	var count int
	var graph string
	var dumpState bool

	asm := &cpu.Assembler{}

	flag.StringVar(&compile, "c", "", ".s file to assemble and run")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.IntVar(&limit, "l", 0, "Cycle limit, 0 for none")
	flag.IntVar(&count, "n", 0, "Instructions to run, 0 to run until halted")
	flag.StringVar(&graph, "g", "", "Write a graphviz .dot of the computer")
	flag.BoolVar(&dumpState, "d", false, "Dump registers and memory when done")
	flag.Func("L", "Message locale, such as en-US", func(arg string) error {
		translate.SetLocale(arg)
		return nil
	})
	flag.Func("D", "Predefine an equate, as NAME=VALUE", func(arg string) error {
		name, value, found := strings.Cut(arg, "=")
		if !found || len(name) == 0 {
			return errors.New("expected NAME=VALUE")
		}
		asm.Predefine(name, value)
		return nil
	})

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	prog := program.New()

	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm.Verbose = verbose
		prog, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	image, err := prog.Output()
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	c, err := emulator.New(image)
	if err != nil {
		log.Fatal(err)
	}
	c.Verbose = verbose
	c.Controller.CycleLimit = limit

	if len(graph) != 0 {
		ouf, err := os.Create(graph)
		if err != nil {
			log.Fatalf("%v: %v", graph, err)
		}
		memviz.Map(ouf, c.Tree)
		err = ouf.Close()
		if err != nil {
			log.Fatalf("%v: %v", graph, err)
		}
	}

	if count > 0 {
		_, err = c.RunInstructions(count)
	} else {
		_, err = c.Run()
	}

	if dumpState {
		dump(os.Stdout, c, image)
	}

	if err != nil {
		var runtime *emulator.ErrRuntime
		if errors.As(err, &runtime) {
			if lineno, ok := sourceLine(asm, runtime.Address); ok {
				log.Fatalf("%v:%v: %v", compile, lineno, err)
			}
		}
		log.Fatal(err)
	}
}
