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

import (
	"fmt"
	"io"
)

// PrintMode selects one of the three tree-printing styles bytecode's PRINT*
// opcode family can invoke (spec.md §4.6).
type PrintMode int

const (
	// PrintPlain reproduces the source text: token text verbatim,
	// non-terminals by concatenating their children, ignore-lists
	// restored in their original position.
	PrintPlain PrintMode = iota
	// PrintXML renders an XML tree with comments (ignore-lists) and
	// attribute slots shown.
	PrintXML
	// PrintXMLSkeleton renders the XML structure only: element names and
	// nesting, no token text, comments, or attributes.
	PrintXMLSkeleton
)

// Print writes t in mode to w. Traversal is iterative (an explicit stack of
// pending sibling continuations), not host recursion, matching
// print_kid/print_tree's VM-stack-driven walk in the source runtime
// (spec.md §4.6, §9).
func Print(p *Program, w io.Writer, t *Tree, mode PrintMode) {
	if t == nil {
		io.WriteString(w, "NIL")
		return
	}
	kid := &Kid{Tree: t}
	switch mode {
	case PrintXML, PrintXMLSkeleton:
		printXMLKid(p, w, kid, mode)
	default:
		printKid(p, w, kid, true)
	}
}

func printKid(p *Program, w io.Writer, kid *Kid, printIgnore bool) {
	var stack []*Kid

	for {
		if printIgnore {
			if ignore := IgnoreList(kid.Tree); ignore != nil {
				printIgnoreList(p, w, ignore)
				printIgnore = false
			}
		}

		child := FirstChild(p, kid.Tree)
		if child == nil {
			printIgnore = true
			printLeafText(w, kid.Tree)
		} else {
			stack = append(stack, kid)
			kid = child
			continue
		}

		for {
			if kid.Next != nil {
				kid = kid.Next
				break
			}
			if len(stack) == 0 {
				return
			}
			kid = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
	}
}

// printIgnoreList prints the reversed ignore chain in reverse order (oldest
// ignored token first), matching print_ignore_list's push-then-pop
// traversal.
func printIgnoreList(p *Program, w io.Writer, ignore *Kid) {
	var stack []*Kid
	for ic := ignore; ic != nil; ic = ic.Next {
		stack = append(stack, ic)
	}
	for len(stack) > 0 {
		ic := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		printKid(p, w, ic, true)
	}
}

func printLeafText(w io.Writer, t *Tree) {
	switch t.ID {
	case IDInt:
		fmt.Fprintf(w, "%d", t.IntVal)
	case IDBool:
		if t.BoolVal {
			io.WriteString(w, "true")
		} else {
			io.WriteString(w, "false")
		}
	case IDPtr:
		fmt.Fprintf(w, "#%p", &t.PtrVal)
	case IDStr:
		io.WriteString(w, t.StrVal)
	case IDStream:
		fmt.Fprintf(w, "#%p", t.StreamVal)
	default:
		if t.TokData != nil {
			io.WriteString(w, *t.TokData)
		}
	}
}

// xmlFrame records a still-open element waiting for its closing tag, the
// iterative analogue of the pending stack frame print_xml_tree keeps on
// the VM stack while its children print.
type xmlFrame struct {
	parent *Kid
	name   string
}

// printXMLKid renders kid's subtree as XML, in either full (comments and
// attributes shown) or skeleton mode. Names elements by language-element ID
// via p.RTD.LangElInfo. Like printKid, this walks an explicit stack instead
// of recursing on the host call stack per spec.md §9.
//
// For a "repeat" or "list" production the spine node itself is elided: the
// walk recurses straight into the spine node's own children without
// emitting an element for it, the same skip print_xml_kid makes on
// lelInfo[...].repeat/.list (spec.md §4.6). The spine still gets an unnamed
// stack frame, which writes no closing tag but returns the walk to the
// spine's own siblings once its children are done.
func printXMLKid(p *Program, w io.Writer, kid *Kid, mode PrintMode) {
	var stack []xmlFrame

	for {
		if p.isSpine(kid.Tree.ID) {
			if child := FirstChild(p, kid.Tree); child != nil {
				stack = append(stack, xmlFrame{parent: kid})
				kid = child
				continue
			}
		} else {
			name := p.elName(kid.Tree.ID)
			child := FirstChild(p, kid.Tree)

			if child == nil {
				if mode == PrintXML {
					fmt.Fprintf(w, "<%s>", name)
					printLeafText(w, kid.Tree)
					fmt.Fprintf(w, "</%s>", name)
				} else {
					fmt.Fprintf(w, "<%s/>", name)
				}
			} else {
				fmt.Fprintf(w, "<%s>", name)
				if mode == PrintXML {
					if ignore := IgnoreList(kid.Tree); ignore != nil {
						io.WriteString(w, "<!--")
						printIgnoreList(p, w, ignore)
						io.WriteString(w, "-->")
					}
				}
				stack = append(stack, xmlFrame{parent: kid, name: name})
				kid = child
				continue
			}
		}

		for {
			if kid.Next != nil {
				kid = kid.Next
				break
			}
			if len(stack) == 0 {
				return
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.name != "" {
				fmt.Fprintf(w, "</%s>", top.name)
			}
			kid = top.parent
		}
	}
}

func (p *Program) elName(id int32) string {
	if int(id) >= 0 && int(id) < len(p.RTD.LangElInfo) && p.RTD.LangElInfo[id].Name != "" {
		return p.RTD.LangElInfo[id].Name
	}
	return fmt.Sprintf("el%d", id)
}

// isSpine reports whether id names a repeat/list production spine node,
// which printXMLKid elides rather than rendering as its own element.
func (p *Program) isSpine(id int32) bool {
	if int(id) < 0 || int(id) >= len(p.RTD.LangElInfo) {
		return false
	}
	info := &p.RTD.LangElInfo[id]
	return info.Repeat || info.List
}
