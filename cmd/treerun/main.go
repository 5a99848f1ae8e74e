// Copyright 2023 Google LLC
// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command treerun is the host driver spec.md §6 describes:
// initProgram/runProgram/clearProgram over a static RuntimeData bundle. It
// takes no compiler front end (spec.md §1 excludes one); its one
// configuration surface is the demo bundle to run and the program's argv.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ianlewis/treerw"
	"github.com/ianlewis/treerw/internal/runtimedata"
	"github.com/ianlewis/treerw/vm"
)

func main() {
	demo := flag.String("demo", "arith", "which hand-built demo program to run (arith)")
	flag.Parse()

	status, err := run(*demo, flag.Args(), os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "treerun:", err)
		os.Exit(1)
	}
	os.Exit(status)
}

// run is initProgram+runProgram+clearProgram in one call: build the
// Program from a static RuntimeData, execute the demo's bytecode to
// completion, and return the process exit status an EXIT opcode (or
// implicit success) produced.
func run(demo string, argv []string, stdout io.Writer) (int, error) {
	prog := treerw.NewProgram(runtimedata.Demo())

	var code []byte
	switch demo {
	case "arith":
		code = arithDemo()
	default:
		return 0, fmt.Errorf("unknown -demo %q", demo)
	}

	m := vm.New(prog, code, stdout)
	m.Argv = argv

	_, err := m.Run()
	if err != nil {
		if status, ok := vm.ExitStatus(err); ok {
			return status, nil
		}
		return 1, err
	}
	return 0, nil
}

// arithDemo computes 2+3, converts it to a string, and prints it —
// spec.md §8's literal "integer arithmetic" end-to-end scenario.
func arithDemo() []byte {
	b := vm.NewBuilder()
	b.Word(vm.OpLoadInt, 2)
	b.Word(vm.OpLoadInt, 3)
	b.Op(vm.OpAddInt)
	b.Op(vm.OpIntToStr)
	b.Op(vm.OpPrint)
	b.Op(vm.OpHalt)
	return b.Code()
}
