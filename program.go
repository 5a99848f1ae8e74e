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

import "os"

// GenKind identifies which generic container a Tree.Generic describes.
type GenKind int

const (
	GenNone GenKind = iota
	GenList
	GenMap
	GenParser
)

// GenericInfo is carried by a Tree that is actually a container. Kind
// selects which of the three unexported pointers is meaningful; the fields
// are unexported because they are accessed only through the List/Map/Accum
// accessor methods, never decoded generically by bytecode.
type GenericInfo struct {
	Kind      GenKind
	LangElID  int32
	list      *List
	mapv      *Map
	accum     *Accum
}

// RuntimeData is the static description a compiled program supplies:
// language-element metadata, generic container descriptors, pattern and
// replacement tables, capture-attribute tables, and (opaquely, since the
// LALR driver is out of scope) PDA tables and code entry points. It plays
// the role colm's `rtd` struct plays for initProgram (spec.md §6).
type RuntimeData struct {
	LangElInfo   []LangElInfo
	GenericInfo  []GenericDecl
	Patterns     []PatternNode
	Replacements []PatternNode
	AnyID        int32

	// CodeEntry maps a named entry point (typically a reduction or a
	// function) to an offset into Code.
	CodeEntry map[string]int
	Code      []byte
}

// GenericDecl is the static declaration of a generic container's identity,
// indexed by LangElInfo[id].GenericID.
type GenericDecl struct {
	LangElID int32
	Kind     GenKind
}

// Program is the explicit, non-global execution context threaded through
// every operation in this package (spec.md §9: no singleton). It owns the
// static RuntimeData and the small amount of mutable state (globals, the
// literal true/false/nil sentinels) a running program needs.
type Program struct {
	RTD *RuntimeData

	Globals []*Tree

	TrueVal  *Tree
	FalseVal *Tree
}

// NewProgram builds a Program from static RuntimeData, the role
// initProgram(argc, argv, ctxDepParsing, rtd) plays in spec.md §6 (argv and
// ctxDepParsing are the host driver's concern; see cmd/treerun).
func NewProgram(rtd *RuntimeData) *Program {
	p := &Program{RTD: rtd}
	p.TrueVal = &Tree{ID: IDBool, Refs: 1, BoolVal: true}
	p.FalseVal = &Tree{ID: IDBool, Refs: 1, BoolVal: false}
	return p
}

// Bool returns p.TrueVal or p.FalseVal for v, upreffing it. Callers own the
// returned reference.
func (p *Program) Bool(v bool) *Tree {
	t := p.FalseVal
	if v {
		t = p.TrueVal
	}
	Upref(t)
	return t
}

// NewInt constructs a fresh INT-variant tree with Refs == 1.
func (p *Program) NewInt(v int64) *Tree {
	return &Tree{ID: IDInt, Refs: 1, IntVal: v}
}

// NewStr constructs a fresh STR-variant tree with Refs == 1.
func (p *Program) NewStr(v string) *Tree {
	return &Tree{ID: IDStr, Refs: 1, StrVal: v}
}

// NewPtr constructs a fresh PTR-variant tree wrapping an opaque handle.
func (p *Program) NewPtr(v any) *Tree {
	return &Tree{ID: IDPtr, Refs: 1, PtrVal: v}
}

// genericKind returns the GenKind a tree ID denotes, or GenNone.
func (p *Program) genericKind(id int32) GenKind {
	gid := p.RTD.LangElInfo[id].GenericID
	if gid <= 0 || int(gid) >= len(p.RTD.GenericInfo) {
		return GenNone
	}
	return p.RTD.GenericInfo[gid].Kind
}

// osFile is a thin alias kept so Stream does not import os directly from
// tree.go (tree.go is the value-model file; the file descriptor itself is
// a peripheral I/O detail described in spec.md §6).
type osFile = os.File

func (s *Stream) close() {
	if s.File != nil {
		_ = s.File.Close()
	}
}
