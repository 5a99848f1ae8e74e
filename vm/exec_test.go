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
	"testing"

	"github.com/ianlewis/treerw"
)

// TestArithmeticScenario is spec.md §8's literal "integer arithmetic"
// end-to-end scenario: 2+3, stringified, printed.
func TestArithmeticScenario(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	b.Word(OpLoadInt, 2)
	b.Word(OpLoadInt, 3)
	b.Op(OpAddInt)
	b.Op(OpIntToStr)
	b.Op(OpPrint)
	b.Op(OpHalt)

	m, out := newTestVM(b.Code())
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "5" {
		t.Fatalf("output = %q, want %q", out.String(), "5")
	}
}

// TestStringConcatScenario is spec.md §8's "string concatenation" scenario.
func TestStringConcatScenario(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	b.Str(OpLoadStr, "foo")
	b.Str(OpLoadStr, "bar")
	b.Op(OpConcatStr)
	b.Op(OpPrint)
	b.Op(OpHalt)

	m, out := newTestVM(b.Code())
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "foobar" {
		t.Fatalf("output = %q, want %q", out.String(), "foobar")
	}
}

// TestMapInsertFindScenario builds a map via Program.Globals (standing in
// for a compiler-emitted global init), inserts one entry, and reads it
// back, spec.md §8's "container insert/find" scenario.
func TestMapInsertFindScenario(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	b.Half(OpLoadGlobalWC, 0)
	b.Str(OpLoadStr, "foo")
	b.Str(OpLoadStr, "bar")
	b.Op(OpMapInsertWC)
	b.Op(OpPop) // discard the bool result
	b.Half(OpLoadGlobalWC, 0)
	b.Str(OpLoadStr, "foo")
	b.Op(OpMapFind)
	b.Op(OpPrint)
	b.Op(OpHalt)

	m, out := newTestVM(b.Code())
	m.Prog.Globals = []*treerw.Tree{m.Prog.NewMap(100)}

	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "bar" {
		t.Fatalf("output = %q, want %q", out.String(), "bar")
	}
}

// TestListAppendUndoOnBacktrack is spec.md §8's "undo on backtrack"
// scenario for a container write: a _WV append is recorded in Rcode, a
// YIELD pauses execution, Rexecute rolls the append back, and the resumed
// half observes the list as if the append never happened.
func TestListAppendUndoOnBacktrack(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	b.Half(OpLoadGlobalWC, 0)
	b.Str(OpLoadStr, "x")
	b.Op(OpListAppendWV)
	b.Half(OpLoadGlobalWC, 0)
	b.Half(OpGetListMemWC, 0)
	b.Op(OpPrint)
	b.Op(OpYield)
	b.Half(OpLoadGlobalWC, 0)
	b.Half(OpGetListMemWC, 0)
	b.Op(OpPrint)
	b.Op(OpHalt)

	m, out := newTestVM(b.Code())
	m.Prog.Globals = []*treerw.Tree{m.Prog.NewList(101)}
	mark := m.Rcode.Mark()

	yielded, err := m.Run()
	if err != nil {
		t.Fatalf("Run (forward half): %v", err)
	}
	if !yielded {
		t.Fatalf("Run did not yield at the YIELD opcode")
	}
	if out.String() != "x" {
		t.Fatalf("output before undo = %q, want %q", out.String(), "x")
	}

	if err := m.Rexecute(mark); err != nil {
		t.Fatalf("Rexecute: %v", err)
	}

	if _, err := m.Run(); err != nil {
		t.Fatalf("Run (resumed half): %v", err)
	}
	if out.String() != "xNIL" {
		t.Fatalf("output after undo = %q, want %q", out.String(), "xNIL")
	}
}

// TestFieldWriteUndoOnBacktrack is spec.md §8's "undo on backtrack"
// scenario for a field write: SET_FIELD_WV records the old value, YIELD
// pauses, Rexecute restores it, and the resumed half reads the original.
func TestFieldWriteUndoOnBacktrack(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	b.Half(OpInitLocals, 1)
	b.Str(OpLoadStr, "orig")
	b.Half(OpSetLocalWC, 0)
	b.Str(OpLoadStr, "new")
	b.Half(OpRefFromLocal, 0)
	b.Op(OpSetFieldWV)
	b.Half(OpGetLocalR, 0)
	b.Op(OpPrint)
	b.Op(OpYield)
	b.Half(OpGetLocalR, 0)
	b.Op(OpPrint)
	b.Op(OpHalt)

	m, out := newTestVM(b.Code())
	mark := m.Rcode.Mark()

	yielded, err := m.Run()
	if err != nil {
		t.Fatalf("Run (forward half): %v", err)
	}
	if !yielded {
		t.Fatalf("Run did not yield at the YIELD opcode")
	}
	if out.String() != "new" {
		t.Fatalf("output before undo = %q, want %q", out.String(), "new")
	}

	if err := m.Rexecute(mark); err != nil {
		t.Fatalf("Rexecute: %v", err)
	}

	if _, err := m.Run(); err != nil {
		t.Fatalf("Run (resumed half): %v", err)
	}
	if out.String() != "neworig" {
		t.Fatalf("output after undo = %q, want %q", out.String(), "neworig")
	}
}
