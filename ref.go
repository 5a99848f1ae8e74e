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

// Ref is one link in a chain describing the access path from a root holder
// down to a child slot. Kid names the currently referenced slot; Next
// chains to the parent reference this one was derived from. This chain is
// what SplitRef walks to isolate only the nodes on the path that are
// actually shared (spec.md §3.4, §4.1.2).
type Ref struct {
	Kid  *Kid
	Next *Ref
}

// Deref returns the tree currently referenced, or nil if the ref is empty.
func (r *Ref) Deref() *Tree {
	if r.Kid == nil {
		return nil
	}
	return r.Kid.Tree
}

// SetValue overwrites the tree at r's slot and every other Ref in an
// unsplit chain that currently shares the same Kid (mirroring colm's
// ref_set_value, which walks forward while Kid is unchanged — callers are
// expected to have split first so there is in fact only one owner of the
// slot by the time this runs).
func SetValue(r *Ref, v *Tree) {
	firstKid := r.Kid
	for cur := r; cur != nil && cur.Kid == firstKid; cur = cur.Next {
		cur.Kid.Tree = v
	}
}
