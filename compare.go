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

import "strings"

// cmpPair is one pending (a, b) comparison on Cmp's explicit work stack.
type cmpPair struct{ a, b *Tree }

// Cmp structurally compares two trees: nil < non-nil; then ID; then the
// variant payload (pointer identity for PTR, numeric value for INT, byte
// compare for STR, byte compare of TokData otherwise); then the child lists
// (attribute slots, then grammar children; ignore headers are skipped)
// element-by-element, where a shorter list compares less. This is the order
// used as the Map key order (spec.md §4.1.3).
//
// Like Downref, this walks an explicit work stack rather than recursing on
// the host call stack, so comparing two deep trees cannot overflow it
// (spec.md §9). Sibling pairs are pushed in reverse so the leftmost pair is
// popped — and its whole subtree resolved — before its next sibling, which
// reproduces the left-to-right, depth-first order a direct recursive
// comparison would use.
func Cmp(p *Program, t1, t2 *Tree) int {
	stack := []cmpPair{{t1, t2}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		a, b := cur.a, cur.b

		switch {
		case a == nil && b == nil:
			continue
		case a == nil:
			return -1
		case b == nil:
			return 1
		}

		if a.ID != b.ID {
			return cmpInt(int64(a.ID), int64(b.ID))
		}

		switch a.ID {
		case IDPtr:
			if c := cmpPtr(a.PtrVal, b.PtrVal); c != 0 {
				return c
			}
		case IDInt:
			if c := cmpInt(a.IntVal, b.IntVal); c != 0 {
				return c
			}
		case IDStr:
			if c := strings.Compare(a.StrVal, b.StrVal); c != 0 {
				return c
			}
		default:
			switch {
			case a.TokData == nil && b.TokData != nil:
				return -1
			case a.TokData != nil && b.TokData == nil:
				return 1
			case a.TokData != nil && b.TokData != nil:
				if c := strings.Compare(*a.TokData, *b.TokData); c != 0 {
					return c
				}
			}
		}

		var kids []cmpPair
		k1, k2 := GetAttrKid(p, a, 0), GetAttrKid(p, b, 0)
		for k1 != nil || k2 != nil {
			var ta, tb *Tree
			if k1 != nil {
				ta = k1.Tree
				k1 = k1.Next
			}
			if k2 != nil {
				tb = k2.Tree
				k2 = k2.Next
			}
			kids = append(kids, cmpPair{ta, tb})
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// cmpPtr compares two opaque PTR payloads by their formatted address-like
// identity. Since Go does not expose pointer arithmetic, two distinct PTR
// trees are only guaranteed equal here if they hold the same underlying
// pointer value, matching the source runtime's address comparison.
func cmpPtr(a, b any) int {
	pa, pb := ptrKey(a), ptrKey(b)
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	default:
		return 0
	}
}
