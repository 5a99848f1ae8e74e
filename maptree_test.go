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

package treerw

import "testing"

func TestMapInsertFindStoreRemove(t *testing.T) {
	t.Parallel()
	p := testProgram()
	m := p.NewMap(testMapID)

	v1 := token(testWord, "v1")
	if !MapInsert(p, m, p.NewStr("k1"), v1) {
		t.Fatalf("MapInsert of a fresh key returned false")
	}
	if MapLength(m) != 1 {
		t.Fatalf("length after insert = %d, want 1", MapLength(m))
	}

	dupKey := p.NewStr("k1")
	dupVal := token(testWord, "ignored")
	if MapInsert(p, m, dupKey, dupVal) {
		t.Fatalf("MapInsert of an existing key returned true")
	}
	Downref(p, dupKey)
	Downref(p, dupVal)
	if MapLength(m) != 1 {
		t.Fatalf("length after duplicate insert = %d, want 1", MapLength(m))
	}

	probe := p.NewStr("k1")
	found := MapFind(p, m, probe)
	Downref(p, probe)
	if found != v1 {
		t.Fatalf("MapFind did not return the inserted value")
	}

	v2 := token(testWord, "v2")
	old := MapStore(p, m, p.NewStr("k1"), v2)
	if old != v1 {
		t.Fatalf("MapStore did not return the previous value")
	}
	Downref(p, old)

	probe2 := p.NewStr("k1")
	found2 := MapFind(p, m, probe2)
	Downref(p, probe2)
	if found2 != v2 {
		t.Fatalf("MapStore did not overwrite the value")
	}

	probe3 := p.NewStr("k1")
	gk, gv := MapRemove(p, m, probe3)
	Downref(p, probe3)
	Downref(p, gk)
	if gv != v2 {
		t.Fatalf("MapRemove returned value %v, want v2", gv)
	}
	Downref(p, gv)
	if MapLength(m) != 0 {
		t.Fatalf("length after remove = %d, want 0", MapLength(m))
	}
}

func TestMapFindMissingKeyReturnsNil(t *testing.T) {
	t.Parallel()
	p := testProgram()
	m := p.NewMap(testMapID)
	probe := p.NewStr("missing")
	found := MapFind(p, m, probe)
	Downref(p, probe)
	if found != nil {
		t.Fatalf("MapFind on an empty map = %v, want nil", found)
	}
}

func TestMapSplitIsolatesEntries(t *testing.T) {
	t.Parallel()
	p := testProgram()
	m := p.NewMap(testMapID)
	MapInsert(p, m, p.NewStr("a"), token(testWord, "1"))
	Upref(m) // a second owner, so Refs == 2

	clone := Split(p, m)
	if clone == m {
		t.Fatalf("Split of a shared map returned the same pointer")
	}

	MapInsert(p, clone, p.NewStr("b"), token(testWord, "2"))
	if MapLength(m) != 1 {
		t.Fatalf("insert into the split clone affected the original map, length = %d", MapLength(m))
	}
	if MapLength(clone) != 2 {
		t.Fatalf("clone length = %d, want 2", MapLength(clone))
	}

	probe := p.NewStr("a")
	v := MapFind(p, m, probe)
	Downref(p, probe)
	if v == nil || *v.TokData != "1" {
		t.Fatalf("original map lost its entry after split")
	}
}
