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

// ListEl is one element slot of a List, owning one reference to Value.
type ListEl struct {
	Value *Tree
	Next  *ListEl
	prev  *ListEl
}

// List is a doubly linked list of owned elements. Position 0 names the
// head, position 1 the tail, matching spec.md §4.2's fixed random-access
// positions.
type List struct {
	LangElID int32
	Head     *ListEl
	Tail     *ListEl
	Length   int
}

// NewList creates an empty list tree for the given generic declaration.
func (p *Program) NewList(langElID int32) *Tree {
	l := &List{LangElID: langElID}
	return &Tree{
		ID:      langElID,
		Refs:    1,
		Generic: &GenericInfo{Kind: GenList, LangElID: langElID, list: l},
	}
}

func asList(t *Tree) *List {
	if t == nil || t.Generic == nil || t.Generic.Kind != GenList {
		panic(&AssertionError{Msg: "tree is not a list"})
	}
	return t.Generic.list
}

// ListLength returns the number of elements in the list tree t.
func ListLength(t *Tree) int {
	return asList(t).Length
}

// ListAppend appends val to the end of the list. The list takes its own
// reference to val (val is upreffed); the caller keeps its reference.
func ListAppend(t *Tree, val *Tree) {
	l := asList(t)
	Upref(val)
	el := &ListEl{Value: val}
	if l.Tail == nil {
		l.Head = el
	} else {
		l.Tail.Next = el
		el.prev = l.Tail
	}
	l.Tail = el
	l.Length++
}

// ListRemoveEnd removes and returns the tail element's tree (the caller
// takes ownership of the returned reference), or nil if the list is empty.
func ListRemoveEnd(t *Tree) *Tree {
	l := asList(t)
	if l.Tail == nil {
		return nil
	}
	el := l.Tail
	l.Tail = el.prev
	if l.Tail == nil {
		l.Head = nil
	} else {
		l.Tail.Next = nil
	}
	l.Length--
	return el.Value
}

// ListMem returns the tree stored at fixed position 0 (head) or 1 (tail)
// without transferring ownership.
func ListMem(t *Tree, pos int) *Tree {
	l := asList(t)
	switch pos {
	case 0:
		if l.Head == nil {
			return nil
		}
		return l.Head.Value
	case 1:
		if l.Tail == nil {
			return nil
		}
		return l.Tail.Value
	default:
		panic(&AssertionError{Msg: "list position must be 0 or 1"})
	}
}

// SetListMem overwrites the tree at fixed position 0 or 1, returning the
// previous value. The caller must have split the list first if it might be
// shared (spec.md §4.4.3); SetListMem itself does not check Tree.Refs on
// the list because container sharing is governed by the container's own
// Refs field, asserted by the opcode layer.
func SetListMem(t *Tree, pos int, val *Tree) *Tree {
	l := asList(t)
	var old *Tree
	switch pos {
	case 0:
		if l.Head != nil {
			old = l.Head.Value
			l.Head.Value = val
		}
	case 1:
		if l.Tail != nil {
			old = l.Tail.Value
			l.Tail.Value = val
		}
	default:
		panic(&AssertionError{Msg: "list position must be 0 or 1"})
	}
	return old
}

// copyList clones a list for copy-on-write, sharing each element tree
// (upref) but allocating fresh element slots. List members are accessed
// only by the fixed positions 0/1 (spec.md §4.2), never through a Ref
// chain, so unlike copyRealTree/copyMap there is never a next-down slot to
// relocate; oldNextDown is accepted for dispatch symmetry with copyTree and
// is always nil in practice.
func copyList(t *Tree, oldNextDown *Kid) (*Tree, *Kid) {
	l := asList(t)
	newList := &List{LangElID: l.LangElID}

	for src := l.Head; src != nil; src = src.Next {
		Upref(src.Value)
		el := &ListEl{Value: src.Value}
		if newList.Tail == nil {
			newList.Head = el
		} else {
			newList.Tail.Next = el
			el.prev = newList.Tail
		}
		newList.Tail = el
		newList.Length++
	}

	newTree := &Tree{
		ID:      t.ID,
		Generic: &GenericInfo{Kind: GenList, LangElID: l.LangElID, list: newList},
	}
	return newTree, nil
}
