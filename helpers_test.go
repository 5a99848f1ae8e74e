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

// Test-only language-element IDs, numbered above the five fixed scalar
// variants tree.go reserves (IDPtr..IDStream == 1..5).
const (
	testWord     int32 = 10 // leaf token, 0 attributes
	testPair     int32 = 11 // wrapper non-terminal, 0 attributes
	testSeq      int32 = 12 // "list" non-terminal, 0 attributes
	testAttrNode int32 = 6  // non-terminal with 2 attribute slots
	testListID   int32 = 20
	testMapID    int32 = 21
)

func testRTD() *RuntimeData {
	return &RuntimeData{
		LangElInfo: []LangElInfo{
			{},                                   // 0 unused
			{Name: "ptr"},                        // 1 IDPtr
			{Name: "bool"},                       // 2 IDBool
			{Name: "int"},                        // 3 IDInt
			{Name: "str"},                        // 4 IDStr
			{Name: "stream"},                     // 5 IDStream
			{Name: "attrnode", ObjectLength: 2},  // 6 testAttrNode
			{}, {}, {},                           // 7-9 unused
			{Name: "word"},                       // 10 testWord
			{Name: "pair"},                       // 11 testPair
			{Name: "seq", List: true},             // 12 testSeq: a list spine node
		},
		AnyID:     0,
		CodeEntry: map[string]int{},
	}
}

func testProgram() *Program {
	return NewProgram(testRTD())
}

// token returns a fresh, unshared leaf tree carrying data as its token text.
func token(id int32, data string) *Tree {
	return &Tree{ID: id, Refs: 1, TokData: &data}
}

// node returns a fresh, unshared tree of id whose grammar-child list is
// children, chained in order. It does not upref the children: the caller is
// expected to already own exactly one reference per attachment, the same
// bookkeeping ConstructReplacement and copyRealTree require of their own
// callers.
func node(id int32, children ...*Tree) *Tree {
	t := &Tree{ID: id, Refs: 1}
	var last *Kid
	for _, c := range children {
		k := &Kid{Tree: c}
		if last == nil {
			t.Child = k
		} else {
			last.Next = k
		}
		last = k
	}
	return t
}

// attrNode returns a fresh, unshared tree of id with attrs installed as its
// fixed attribute slots (no grammar children). Callers must pass exactly
// p.ObjectLength(id) attrs.
func attrNode(id int32, attrs []*Tree) *Tree {
	t := &Tree{ID: id, Refs: 1}
	var last *Kid
	for _, a := range attrs {
		k := &Kid{Tree: a}
		if last == nil {
			t.Child = k
		} else {
			last.Next = k
		}
		last = k
	}
	return t
}
