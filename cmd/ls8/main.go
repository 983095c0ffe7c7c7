// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"log"
	"os"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
)

func main() {
	var compile string
	var listing bool
	var output string
	var limit int
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to assemble")
	flag.BoolVar(&listing, "l", false, "Write the ROM image to the output, do not execute")
	flag.StringVar(&output, "o", "-", "Output")
	flag.IntVar(&limit, "n", 0, "Maximum instructions to execute, 0 for no limit")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("ls8: ")

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Limit = limit

	switch {
	case len(compile) != 0 && flag.NArg() == 0:
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	case len(compile) == 0 && flag.NArg() == 1:
		rom := flag.Arg(0)
		inf, err := os.Open(rom)
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}
		defer inf.Close()

		err = emu.Rom.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}
	default:
		log.Fatalf("usage: %v [-v] [-n limit] [-o output] (-c file.asm [-l] | file.ls8)", os.Args[0])
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	if output == "-" {
		emu.Tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Tape.Output = ouf
	}

	if listing {
		err = emu.Rom.Write(emu.Tape.Output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	err = emu.Run()
	if err != nil {
		if emulator.Faulted(err) {
			log.Print(emu.Cpu.String())
		}
		log.Fatal(err)
	}
}
