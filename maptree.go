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

// MapEl is one node of a Map's backing binary tree, owning one reference
// each to Key and Value.
type MapEl struct {
	Key, Value  *Tree
	Left, Right *MapEl
}

// Map is an ordered collection keyed by the structural tree compare of
// Cmp, implemented as a binary search tree. Map members, like List members,
// are addressed only by key (spec.md §4.2's insert/store/remove/find), so —
// unlike ordinary tree children — they are never the target of a Ref chain
// and copyBranch below never needs to relocate one.
type Map struct {
	LangElID int32
	Root     *MapEl
	Size     int
}

// NewMap creates an empty map tree for the given generic declaration.
func (p *Program) NewMap(langElID int32) *Tree {
	m := &Map{LangElID: langElID}
	return &Tree{
		ID:      langElID,
		Refs:    1,
		Generic: &GenericInfo{Kind: GenMap, LangElID: langElID, mapv: m},
	}
}

func asMap(t *Tree) *Map {
	if t == nil || t.Generic == nil || t.Generic.Kind != GenMap {
		panic(&AssertionError{Msg: "tree is not a map"})
	}
	return t.Generic.mapv
}

// MapLength returns the number of entries in the map tree t.
func MapLength(t *Tree) int {
	return asMap(t).Size
}

// MapFind returns the value stored under key, or nil if absent.
func MapFind(p *Program, t *Tree, key *Tree) *Tree {
	el := findEl(p, asMap(t).Root, key)
	if el == nil {
		return nil
	}
	return el.Value
}

func findEl(p *Program, node *MapEl, key *Tree) *MapEl {
	for node != nil {
		c := Cmp(p, key, node.Key)
		switch {
		case c == 0:
			return node
		case c < 0:
			node = node.Left
		default:
			node = node.Right
		}
	}
	return nil
}

// MapInsert inserts (key, value) if key is not already present, taking
// ownership of one reference to each, and returns true. If key exists, the
// map is left unchanged (the caller's references are not consumed) and
// MapInsert returns false (spec.md §8 boundary behavior).
func MapInsert(p *Program, t *Tree, key, value *Tree) bool {
	m := asMap(t)
	var inserted bool
	m.Root, inserted = insertEl(p, m.Root, key, value)
	if inserted {
		m.Size++
	}
	return inserted
}

func insertEl(p *Program, node *MapEl, key, value *Tree) (*MapEl, bool) {
	if node == nil {
		return &MapEl{Key: key, Value: value}, true
	}
	c := Cmp(p, key, node.Key)
	switch {
	case c == 0:
		return node, false
	case c < 0:
		var ok bool
		node.Left, ok = insertEl(p, node.Left, key, value)
		return node, ok
	default:
		var ok bool
		node.Right, ok = insertEl(p, node.Right, key, value)
		return node, ok
	}
}

// MapStore inserts or overwrites the value at key, taking ownership of one
// reference to key and value, and returns the previous value (nil if key
// was not present) so the caller can downref it (spec.md §4.2).
func MapStore(p *Program, t *Tree, key, value *Tree) *Tree {
	m := asMap(t)
	var old *Tree
	var grew bool
	m.Root, old, grew = storeEl(p, m.Root, key, value)
	if grew {
		m.Size++
	}
	return old
}

func storeEl(p *Program, node *MapEl, key, value *Tree) (*MapEl, *Tree, bool) {
	if node == nil {
		return &MapEl{Key: key, Value: value}, nil, true
	}
	c := Cmp(p, key, node.Key)
	switch {
	case c == 0:
		old := node.Value
		node.Value = value
		// The caller owns `key` going in; since the key already existed
		// we do not need a second copy of it.
		Downref(p, key)
		return node, old, false
	case c < 0:
		left, old, grew := storeEl(p, node.Left, key, value)
		node.Left = left
		return node, old, grew
	default:
		right, old, grew := storeEl(p, node.Right, key, value)
		node.Right = right
		return node, old, grew
	}
}

// MapRemove removes key and returns its (key, value) pair, or (nil, nil) if
// absent.
func MapRemove(p *Program, t *Tree, key *Tree) (*Tree, *Tree) {
	m := asMap(t)
	var gotKey, gotValue *Tree
	m.Root, gotKey, gotValue = removeEl(p, m.Root, key)
	if gotKey != nil {
		m.Size--
	}
	return gotKey, gotValue
}

func removeEl(p *Program, node *MapEl, key *Tree) (*MapEl, *Tree, *Tree) {
	if node == nil {
		return nil, nil, nil
	}
	c := Cmp(p, key, node.Key)
	switch {
	case c < 0:
		left, gk, gv := removeEl(p, node.Left, key)
		node.Left = left
		return node, gk, gv
	case c > 0:
		right, gk, gv := removeEl(p, node.Right, key)
		node.Right = right
		return node, gk, gv
	default:
		gk, gv := node.Key, node.Value
		switch {
		case node.Left == nil:
			return node.Right, gk, gv
		case node.Right == nil:
			return node.Left, gk, gv
		default:
			succParent := node
			succ := node.Right
			for succ.Left != nil {
				succParent = succ
				succ = succ.Left
			}
			if succParent != node {
				succParent.Left = succ.Right
				succ.Right = node.Right
			}
			succ.Left = node.Left
			return succ, gk, gv
		}
	}
}

// walkMapElements visits every element of a map's backing tree in an
// unspecified order (used only for bulk teardown, where order does not
// matter), using an explicit work stack rather than host recursion so
// freeing a large map cannot blow the call stack (spec.md §9).
func walkMapElements(root *MapEl, visit func(*MapEl)) {
	if root == nil {
		return
	}
	stack := []*MapEl{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(n)
		if n.Left != nil {
			stack = append(stack, n.Left)
		}
		if n.Right != nil {
			stack = append(stack, n.Right)
		}
	}
}

// copyMap clones a map for copy-on-write: a fresh Map header and a fresh
// tree of MapEl nodes (copyBranch), sharing each key/value tree (upref).
// As with copyList, oldNextDown is accepted only for dispatch symmetry with
// copyTree; map members are never reached through a Ref chain.
func copyMap(t *Tree, oldNextDown *Kid) (*Tree, *Kid) {
	m := asMap(t)
	newMap := &Map{LangElID: m.LangElID, Size: m.Size}
	newMap.Root = copyBranch(m.Root)

	newTree := &Tree{
		ID:      t.ID,
		Generic: &GenericInfo{Kind: GenMap, LangElID: m.LangElID, mapv: newMap},
	}
	return newTree, nil
}

// copyBranch is the map's analogue of copy_real_tree's child relocation: it
// clones the backing binary tree node-for-node, upreffing each shared
// key/value pair, using the same "next-down" style work queue other clone
// paths use so a deep map does not recurse on the host stack.
func copyBranch(root *MapEl) *MapEl {
	if root == nil {
		return nil
	}

	type frame struct {
		src  *MapEl
		dst  *MapEl
		side int // 0 = not yet attached to parent, 1 = left child, 2 = right child
	}

	newRoot := &MapEl{Key: root.Key, Value: root.Value}
	Upref(newRoot.Key)
	Upref(newRoot.Value)

	stack := []frame{{src: root, dst: newRoot}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.src.Left != nil {
			left := &MapEl{Key: f.src.Left.Key, Value: f.src.Left.Value}
			Upref(left.Key)
			Upref(left.Value)
			f.dst.Left = left
			stack = append(stack, frame{src: f.src.Left, dst: left})
		}
		if f.src.Right != nil {
			right := &MapEl{Key: f.src.Right.Key, Value: f.src.Right.Value}
			Upref(right.Key)
			Upref(right.Value)
			f.dst.Right = right
			stack = append(stack, frame{src: f.src.Right, dst: right})
		}
	}

	return newRoot
}
