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

// Package treerw implements the value domain of a tree-rewriting language: a
// reference-counted, structurally-shared tree of nodes, the copy-on-write
// split protocol that isolates a tree before mutation, generic containers
// (list, ordered map, parser handle), and the reference/iterator discipline
// used to walk and mutate trees safely.
//
// There is no process-wide mutable state. Every operation takes an explicit
// *Program, which owns the pools, globals, and static tables a compiled
// program needs.
package treerw

// Flag bits carried on Tree.Flags. Names and values follow the AF_* bits of
// the runtime this package reimplements.
const (
	FlagLeftIgnore  uint16 = 0x0100
	FlagRightIgnore uint16 = 0x0200
	FlagCommitted   uint16 = 0x0400
)

// Fixed language-element IDs for the scalar tree variants. A grammar's own
// language elements start numbering above these.
const (
	IDPtr int32 = iota + 1
	IDBool
	IDInt
	IDStr
	IDStream
)

// Tree is a tagged, reference-counted node in the value domain.
//
// The Child list is, in order: zero or one left-ignore header slot (iff
// FlagLeftIgnore is set), zero or one right-ignore header slot (iff
// FlagRightIgnore is set), exactly ObjectLength(ID) attribute slots, then
// zero or more grammar child slots.
type Tree struct {
	ID      int32
	Refs    uint32
	Flags   uint16
	TokData *string
	Child   *Kid

	// Scalar variant payloads. Exactly one is meaningful, selected by ID.
	// copy_tree in the source runtime refuses to copy these (see
	// DESIGN.md); they are created once and never re-shared past Refs==1
	// except through the ordinary upref/downref discipline of the tree
	// that directly holds them.
	PtrVal    any
	BoolVal   bool
	IntVal    int64
	StrVal    string
	StreamVal *Stream

	// Generic carries the container identity (list/map/accum) for trees
	// that are really one of those containers. Nil for ordinary trees.
	Generic *GenericInfo
}

// Kid is one owning edge in a tree's child list.
//
// An ignore-header slot is a Kid with IsIgnoreHeader set: Next still chains
// to the next sibling in the owning tree's Child list, but IgnoreHead points
// at a wholly separate linked list of ignored tokens rather than at an
// owned Tree. Keeping this as an explicit discriminant (rather than
// repurposing Tree, as the C original does) avoids conflating the two kid
// roles in one field, per spec.md's own recommendation.
type Kid struct {
	Tree           *Tree
	Next           *Kid
	IsIgnoreHeader bool
	IgnoreHead     *Kid
}

// Stream is an externally managed open file handle exposed to bytecode as a
// STREAM-variant tree.
type Stream struct {
	File   *osFile
	Reader *Scanner
}

// LangElInfo is the static, per-language-element metadata a compiled
// program carries: how many attribute slots a tree of this ID has, and
// which generic container kind (if any) it denotes.
type LangElInfo struct {
	Name         string
	ObjectLength int
	GenericID    int32

	// Repeat and List mark a language element as a right-recursive
	// "repeat" or "list" production spine node. The printer elides these
	// wrapper nodes (spec.md §4.6, print_xml_kid), recursing straight
	// into their children instead of emitting an element for the spine
	// node itself.
	Repeat bool
	List   bool
}

// ObjectLength returns the static attribute-slot count for id.
func (p *Program) ObjectLength(id int32) int {
	if int(id) < 0 || int(id) >= len(p.RTD.LangElInfo) {
		return 0
	}
	return p.RTD.LangElInfo[id].ObjectLength
}

// Upref increments t's reference count. A nil tree is a no-op, matching the
// source runtime's tree_upref.
func Upref(t *Tree) {
	if t != nil {
		t.Refs++
	}
}

// Downref decrements t's reference count, freeing it (and, transitively,
// any owned child whose count reaches zero) when it hits zero. Freeing is
// iterative: children are queued on a local work stack rather than freed by
// recursive calls, so the depth of the host call stack never depends on
// tree depth (spec.md §4.1.1, §9).
func Downref(p *Program, t *Tree) {
	if t == nil {
		return
	}
	if t.Refs == 0 {
		panic(&AssertionError{Msg: "downref of tree with refs == 0"})
	}
	t.Refs--
	if t.Refs > 0 {
		return
	}

	queue := []*Tree{t}
	for len(queue) > 0 {
		cur := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		queue = freeOne(p, cur, queue)
	}
}

// freeOne releases the storage of a single zero-refcount tree, pushing any
// trees it owned onto queue (downreffing and re-queuing those that hit
// zero) and returning the updated queue.
func freeOne(p *Program, t *Tree, queue []*Tree) []*Tree {
	switch {
	case t.Generic != nil:
		queue = freeGeneric(p, t, queue)
	case t.ID == IDStr, t.ID == IDBool, t.ID == IDInt, t.ID == IDPtr:
		// Scalar variants own no trees.
	case t.ID == IDStream:
		if t.StreamVal != nil {
			t.StreamVal.close()
		}
	default:
		child := t.Child
		if t.Flags&FlagLeftIgnore != 0 {
			queue = freeIgnoreList(child.IgnoreHead, queue)
			child = child.Next
		}
		if t.Flags&FlagRightIgnore != 0 {
			queue = freeIgnoreList(child.IgnoreHead, queue)
			child = child.Next
		}
		for child != nil {
			queue = pushDownref(child.Tree, queue)
			child = child.Next
		}
	}
	return queue
}

// pushDownref decrements tree's refcount (if non-nil) and, if it reaches
// zero, appends it to queue for subsequent freeing.
func pushDownref(tree *Tree, queue []*Tree) []*Tree {
	if tree == nil {
		return queue
	}
	if tree.Refs == 0 {
		panic(&AssertionError{Msg: "pushDownref of tree with refs == 0"})
	}
	tree.Refs--
	if tree.Refs == 0 {
		queue = append(queue, tree)
	}
	return queue
}

func freeIgnoreList(head *Kid, queue []*Tree) []*Tree {
	for ic := head; ic != nil; ic = ic.Next {
		queue = pushDownref(ic.Tree, queue)
	}
	return queue
}

func freeGeneric(p *Program, t *Tree, queue []*Tree) []*Tree {
	switch t.Generic.Kind {
	case GenList:
		l := t.Generic.list
		for el := l.Head; el != nil; el = el.Next {
			queue = pushDownref(el.Value, queue)
		}
	case GenMap:
		m := t.Generic.mapv
		walkMapElements(m.Root, func(el *MapEl) {
			queue = pushDownref(el.Key, queue)
			queue = pushDownref(el.Value, queue)
		})
	case GenParser:
		a := t.Generic.accum
		a.destroy(p)
	}
	return queue
}

// FirstChild returns the head of tree's grammar-child list, skipping any
// ignore headers and the fixed run of attribute slots (spec.md §3.1,
// tree_child in the source runtime).
func FirstChild(p *Program, t *Tree) *Kid {
	kid := t.Child
	if t.Flags&FlagLeftIgnore != 0 {
		kid = kid.Next
	}
	if t.Flags&FlagRightIgnore != 0 {
		kid = kid.Next
	}
	for a := 0; a < p.ObjectLength(t.ID); a++ {
		kid = kid.Next
	}
	return kid
}

// ExtractChild detaches and returns the grammar-child list from t, leaving
// only the ignore headers and attribute slots behind.
func ExtractChild(p *Program, t *Tree) *Kid {
	kid := t.Child
	var last *Kid

	if t.Flags&FlagLeftIgnore != 0 {
		last, kid = kid, kid.Next
	}
	if t.Flags&FlagRightIgnore != 0 {
		last, kid = kid, kid.Next
	}
	for a := 0; a < p.ObjectLength(t.ID); a++ {
		last, kid = kid, kid.Next
	}

	if last == nil {
		t.Child = nil
	} else {
		last.Next = nil
	}
	return kid
}

// IgnoreList returns the left-ignore token list of t, or nil if t has none.
func IgnoreList(t *Tree) *Kid {
	if t.Flags&FlagLeftIgnore != 0 {
		return t.Child.IgnoreHead
	}
	return nil
}

// GetAttr returns the tree stored at attribute offset pos.
func GetAttr(p *Program, t *Tree, pos int) *Tree {
	return GetAttrKid(p, t, pos).Tree
}

// GetAttrKid returns the Kid slot for attribute offset pos.
func GetAttrKid(p *Program, t *Tree, pos int) *Kid {
	kid := t.Child
	if t.Flags&FlagLeftIgnore != 0 {
		kid = kid.Next
	}
	if t.Flags&FlagRightIgnore != 0 {
		kid = kid.Next
	}
	for a := 0; a < pos; a++ {
		kid = kid.Next
	}
	return kid
}

// SetAttr stores val at attribute offset pos on t. t must have Refs == 1
// (the caller is responsible for splitting first; see spec.md §4.4.3).
func SetAttr(p *Program, t *Tree, pos int, val *Tree) {
	assertWritable(t)
	kid := GetAttrKid(p, t, pos)
	kid.Tree = val
}
