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

package vm

import (
	"io"

	"github.com/ianlewis/treerw"
)

// Slot is one word of the value stack. The source runtime stores everything
// as a machine word and reinterprets it by the static type the bytecode's
// generator proves; Go has no untagged word, so Slot carries an explicit
// discriminant instead of reinterpreting bytes (the same tagged-variant
// choice spec.md §9 asks for with Kid/ignore headers).
type Slot struct {
	Tree *treerw.Tree
	Int  int64
	Kid  *treerw.Kid
	Ref  *treerw.Ref
	Iter *treerw.TreeIter
}

// IntSlot boxes an integer immediate.
func IntSlot(v int64) Slot { return Slot{Int: v} }

// TreeSlot boxes a tree value.
func TreeSlot(t *treerw.Tree) Slot { return Slot{Tree: t} }

// RefSlot boxes a reference chain head.
func RefSlot(r *treerw.Ref) Slot { return Slot{Ref: r} }

// VM is the single execution context for one running program: the value
// stack, the frame/iframe pointers, the instruction stream, and the
// reverse-code buffer reductions append to. There is no global VM; every
// opcode handler takes one explicitly (spec.md §9's "no singleton", carried
// from treerw.Program into this package's own explicit-context style).
type VM struct {
	Prog *treerw.Program

	Stack  []Slot
	Frame  int
	IFrame int

	Code []byte
	IP   int

	Rcode *RCode

	Stdout io.Writer

	// Argv backs LOAD_ARGV, set by the host driver (cmd/treerun) before
	// Run; the core itself has no notion of process arguments.
	Argv []string

	// lhsSave is SAVE_LHS/RESTORE_LHS's small auxiliary stack, kept
	// separate from the value stack because it survives across the
	// POP_LOCALS a reduction does on its own frame (spec.md §4.4.2).
	lhsSave []Slot

	// bindings holds the capture bindings the most recent MATCH filled in,
	// consumed by the CONSTRUCT that follows it in the same reduction.
	bindings []*treerw.Tree
}

// New creates a VM over code, with an initially empty value stack.
func New(prog *treerw.Program, code []byte, stdout io.Writer) *VM {
	return &VM{
		Prog:   prog,
		Code:   code,
		Rcode:  NewRCode(),
		Stdout: stdout,
	}
}

// Push appends s to the top of the value stack.
func (m *VM) Push(s Slot) {
	m.Stack = append(m.Stack, s)
}

// Pop removes and returns the top of the value stack.
func (m *VM) Pop() Slot {
	n := len(m.Stack) - 1
	s := m.Stack[n]
	m.Stack = m.Stack[:n]
	return s
}

// Top returns the top of the value stack without removing it.
func (m *VM) Top() Slot {
	return m.Stack[len(m.Stack)-1]
}

// SP returns the current stack depth, the role vm_ptop() plays in the
// source runtime and what TreeIter.StackRoot/StackSize are measured against
// (spec.md §3.4, §8 invariant 6).
func (m *VM) SP() int {
	return len(m.Stack)
}
