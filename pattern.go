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

// PatternNode is one static node of a compiled pattern or constructor table
// (spec.md §4.1.4, §4.1.5). Patterns and Replacements in RuntimeData are
// flat slices of these, addressed by index; Child/Next/Ignore name indices
// into the same slice, or -1 for absent.
type PatternNode struct {
	ID      int32
	Data    string
	HasData bool
	BindID  int32
	Stop    bool

	Child  int32
	Next   int32
	Ignore int32

	// CaptureAttrs holds the capture-attribute pattern indices that follow
	// this node in program order, one per capture attribute of the node — these
	// are the literal attrs constructReplacement populates after building a
	// fresh node (spec.md §4.1.5's "capture attributes from sibling pattern
	// indices").
	CaptureAttrs []int32
}

const noPat int32 = -1

// Match walks pattern table against a live tree rooted at kid, filling
// bindings[bindId] for every bound pattern node visited, and reports
// whether the whole match (down to checkNext's sibling scope) succeeded.
// Bindings are filled even on a partial, ultimately-failing descent; the
// caller discards them unless Match itself returns true (spec.md §4.1.4).
func Match(p *Program, table []PatternNode, bindings []*Tree, pat int32, kid *Kid, checkNext bool) bool {
	if pat == noPat && kid == nil {
		return true
	}
	if pat == noPat || kid == nil {
		return false
	}

	node := &table[pat]
	if node.ID != kid.Tree.ID {
		return false
	}
	if node.HasData {
		data := tokenData(kid.Tree)
		if data != node.Data {
			return false
		}
	}

	if node.BindID > 0 {
		bindings[node.BindID] = kid.Tree
	}

	if !node.Stop {
		if !Match(p, table, bindings, node.Child, FirstChild(p, kid.Tree), true) {
			return false
		}
	}

	if checkNext {
		if !Match(p, table, bindings, node.Next, kid.Next, true) {
			return false
		}
	}

	return true
}

func tokenData(t *Tree) string {
	if t.TokData == nil {
		return ""
	}
	return *t.TokData
}

// ConstructReplacement expands a static constructor node into a live tree,
// returning an upreffed result (spec.md §4.1.5). The two paths are bound
// substitution (reuse a matched subtree, possibly prefixed with an ignore
// list) and fresh-node construction (allocate, attach attribute slots,
// recurse over the pattern's child list, then populate capture attributes).
func ConstructReplacement(p *Program, table []PatternNode, bindings []*Tree, pat int32) *Tree {
	node := &table[pat]

	if node.BindID > 0 {
		tree := bindings[node.BindID]
		Upref(tree)

		if node.Ignore != noPat {
			ignore := constructIgnoreList(table, node.Ignore)
			tree = Split(p, tree)
			tree.Child = &Kid{IsIgnoreHeader: true, IgnoreHead: ignore, Next: tree.Child}
			tree.Flags |= FlagLeftIgnore
		}
		return tree
	}

	tree := &Tree{ID: node.ID, Refs: 1}
	if node.HasData {
		data := node.Data
		tree.TokData = &data
	}

	attrCount := p.ObjectLength(node.ID)
	var attrs *Kid
	for i := 0; i < attrCount; i++ {
		attrs = &Kid{Next: attrs}
	}
	attrs = reverseKids(attrs)

	child := constructReplacementKid(p, table, bindings, node.Child)
	tree.Child = kidListConcat(attrs, child)

	if node.Ignore != noPat {
		ignore := constructIgnoreList(table, node.Ignore)
		tree.Child = &Kid{IsIgnoreHeader: true, IgnoreHead: ignore, Next: tree.Child}
		tree.Flags |= FlagLeftIgnore
	}

	for i, ci := range node.CaptureAttrs {
		capNode := &table[ci]
		attr := &Tree{ID: capNode.ID, Refs: 1}
		if capNode.HasData {
			data := capNode.Data
			attr.TokData = &data
		}
		SetAttr(p, tree, i, attr)
	}

	return tree
}

// constructReplacementKid builds the child-list spine for a fresh
// constructor node, recursing on Next the way construct_replacement_kid
// does.
func constructReplacementKid(p *Program, table []PatternNode, bindings []*Tree, pat int32) *Kid {
	if pat == noPat {
		return nil
	}
	kid := &Kid{Tree: ConstructReplacement(p, table, bindings, pat)}
	kid.Next = constructReplacementKid(p, table, bindings, table[pat].Next)
	return kid
}

// constructIgnoreList builds the (fresh, refs==1 per element) ignore list
// attached to a pattern node, construct_ignore_list's Go counterpart.
func constructIgnoreList(table []PatternNode, ignore int32) *Kid {
	var first, last *Kid
	for ignore != noPat {
		node := &table[ignore]
		data := node.Data
		ignTree := &Tree{ID: node.ID, Refs: 1, TokData: &data}
		ignKid := &Kid{Tree: ignTree}

		if last == nil {
			first = ignKid
		} else {
			last.Next = ignKid
		}
		last = ignKid
		ignore = node.Next
	}
	return first
}

func reverseKids(head *Kid) *Kid {
	var prev *Kid
	for head != nil {
		next := head.Next
		head.Next = prev
		prev = head
		head = next
	}
	return prev
}

func kidListConcat(a, b *Kid) *Kid {
	if a == nil {
		return b
	}
	last := a
	for last.Next != nil {
		last = last.Next
	}
	last.Next = b
	return a
}
