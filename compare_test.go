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

func TestCmpIntOrdering(t *testing.T) {
	t.Parallel()
	p := testProgram()
	if Cmp(p, p.NewInt(1), p.NewInt(2)) >= 0 {
		t.Fatalf("Cmp(1, 2) >= 0")
	}
	if Cmp(p, p.NewInt(2), p.NewInt(1)) <= 0 {
		t.Fatalf("Cmp(2, 1) <= 0")
	}
	if Cmp(p, p.NewInt(1), p.NewInt(1)) != 0 {
		t.Fatalf("Cmp(1, 1) != 0")
	}
}

func TestCmpStrOrdering(t *testing.T) {
	t.Parallel()
	p := testProgram()
	if Cmp(p, p.NewStr("abc"), p.NewStr("abd")) >= 0 {
		t.Fatalf(`Cmp("abc", "abd") >= 0`)
	}
}

func TestCmpNilOrdering(t *testing.T) {
	t.Parallel()
	p := testProgram()
	leaf := token(testWord, "x")
	if Cmp(p, nil, leaf) >= 0 {
		t.Fatalf("Cmp(nil, x) >= 0")
	}
	if Cmp(p, leaf, nil) <= 0 {
		t.Fatalf("Cmp(x, nil) <= 0")
	}
	if Cmp(p, nil, nil) != 0 {
		t.Fatalf("Cmp(nil, nil) != 0")
	}
}

func TestCmpShorterChildListIsLess(t *testing.T) {
	t.Parallel()
	p := testProgram()
	short := node(testSeq, token(testWord, "a"))
	long := node(testSeq, token(testWord, "a"), token(testWord, "b"))
	if Cmp(p, short, long) >= 0 {
		t.Fatalf("shorter child list did not compare less than the longer one")
	}
	if Cmp(p, long, short) <= 0 {
		t.Fatalf("longer child list did not compare greater than the shorter one")
	}
}

func TestCmpStructuralEquality(t *testing.T) {
	t.Parallel()
	p := testProgram()
	t1 := node(testSeq, token(testWord, "a"), token(testWord, "b"))
	t2 := node(testSeq, token(testWord, "a"), token(testWord, "b"))
	if Cmp(p, t1, t2) != 0 {
		t.Fatalf("structurally identical, distinct trees compared unequal")
	}
}
