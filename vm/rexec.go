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
	"fmt"

	"go.uber.org/multierr"

	"github.com/ianlewis/treerw"
)

// Rexecute replays m.Rcode tail-first from its current end down to mark,
// restoring pre-mutation state one unit at a time and truncating the
// buffer as it goes (spec.md §4.4.4: "reverse execution reads the buffer
// tail-first ... executing each inverse as a _BKT operation"). Unlike
// forward Run, a unit's operands were captured structurally when it was
// appended (see rcode.go), so rexecUnit dispatches directly against
// Unit.Operands rather than redecoding an instruction stream.
//
// Independent reductions can each contribute buffered units; a single
// corrupt/unexpected unit should not stop the rest of the scope's undo
// from running, so each unit's inverse runs under its own recover and any
// failures are combined with multierr (the same aggregation idiom
// last-diff-analyzer uses for its scanner/parse error pair, per
// DESIGN.md/SPEC_FULL.md §3).
func (m *VM) Rexecute(mark int) error {
	var errs error
	for len(m.Rcode.units) > mark {
		n := len(m.Rcode.units) - 1
		u := m.Rcode.units[n]
		m.Rcode.units = m.Rcode.units[:n]
		if err := m.rexecUnit(u); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (m *VM) rexecUnit(u Unit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ae, ok := r.(error); ok {
				err = fmt.Errorf("rexec %s: %w", u.Op, ae)
				return
			}
			panic(r)
		}
	}()

	ops := u.Operands
	switch u.Op {
	case OpSetFieldBkt:
		r, old := ops[0].Ref, ops[1].Tree
		cur := r.Deref()
		if cur != nil {
			treerw.Downref(m.Prog, cur)
		}
		treerw.SetValue(r, old)

	case OpMapRemoveBkt:
		t, key := ops[0].Tree, ops[1].Tree
		gk, _ := treerw.MapRemove(m.Prog, t, key)
		treerw.Downref(m.Prog, gk)

	case OpMapInsertBkt:
		t, key, value := ops[0].Tree, ops[1].Tree, ops[2].Tree
		treerw.MapInsert(m.Prog, t, key, value)

	case OpMapStoreBkt:
		t, key, old := ops[0].Tree, ops[1].Tree, ops[2].Tree
		prev := treerw.MapStore(m.Prog, t, key, old)
		treerw.Downref(m.Prog, prev)

	case OpListRemoveEndBkt:
		t := ops[0].Tree
		v := treerw.ListRemoveEnd(t)
		treerw.Downref(m.Prog, v)

	case OpListAppendBkt:
		t, v := ops[0].Tree, ops[1].Tree
		treerw.ListAppend(t, v)

	case OpSetListMemBkt:
		t, pos, old := ops[0].Tree, int(ops[1].Int), ops[2].Tree
		prev := treerw.SetListMem(t, pos, old)
		treerw.Downref(m.Prog, prev)

	case OpLoadGlobalBkt:
		idx, old := int(ops[0].Int), ops[1].Tree
		cur := m.Prog.Globals[idx]
		treerw.Downref(m.Prog, cur)
		m.Prog.Globals[idx] = old

	case OpStreamAppendBkt, OpLoadInputBkt:
		accumTree, old := ops[0].Tree, ops[1].Tree
		acc := treerw.AccumOf(accumTree)
		treerw.Downref(m.Prog, acc.Stream)
		acc.Stream = old

	case OpLoadContextBkt, OpLoadCtxBkt, OpSetAccumCtxWC:
		accumTree, old := ops[0].Tree, ops[1].Tree
		acc := treerw.AccumOf(accumTree)
		treerw.Downref(m.Prog, acc.Context)
		acc.Context = old

	default:
		return &treerw.AssertionError{Msg: fmt.Sprintf("no reverse handler for %s", u.Op)}
	}
	return nil
}
