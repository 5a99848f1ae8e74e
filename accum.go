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

// PdaRun is the interface the bytecode core consumes from the external
// LALR parse driver (spec.md §1, §6). The driver itself — its tables, its
// shift/reduce engine — is out of scope; only the lifecycle operations an
// Accum needs to drive it are modeled here. ReleaseReverseCode is called
// back into from Accum teardown so this package never needs to know the
// concrete shape of a reverse-code buffer (that type lives in the vm
// package, which imports this one — an interface avoids the cycle).
type PdaRun interface {
	// Clean releases any parser-internal state not tied to a particular
	// parse (cleanParser in spec.md §4.2).
	Clean(p *Program)
	// ClearContext drops the driver's notion of "current parse" so the
	// Accum can be reused or discarded.
	ClearContext(p *Program)
	// ReleaseReverseCode downrefs every tree still held live in reverse-code
	// units that are being discarded without replay (rcodeDownrefAll,
	// spec.md §4.4.4).
	ReleaseReverseCode(p *Program)
}

// Accum is the parser-handle container: it owns an FsmRun/PdaRun pair plus
// the source stream tree, and appears to bytecode as a tree whose ID is a
// parser language element (spec.md §4.2).
type Accum struct {
	LangElID int32
	Fsm      FsmRun
	Pda      PdaRun
	Stream   *Tree

	// Context is the user-supplied context tree threaded through a parse
	// (LOAD_CONTEXT/LOAD_CTX/GET_ACCUM_CTX, spec.md §4.4.2), owned by the
	// Accum while the parse runs.
	Context *Tree
}

// NewAccum creates a parser handle over stream, storing both sub-machines
// as given without calling into either (posting the initial token request is the caller's/driver's
// job, matching spec.md's "creating one ... posts an initial token
// request" — the act of requesting the first token depends on fsm/pda
// internals this package does not own).
func (p *Program) NewAccum(langElID int32, fsm FsmRun, pda PdaRun, stream *Tree) *Tree {
	Upref(stream)
	a := &Accum{LangElID: langElID, Fsm: fsm, Pda: pda, Stream: stream}
	return &Tree{
		ID:      langElID,
		Refs:    1,
		Generic: &GenericInfo{Kind: GenParser, LangElID: langElID, accum: a},
	}
}

func asAccum(t *Tree) *Accum {
	if t == nil || t.Generic == nil || t.Generic.Kind != GenParser {
		panic(&AssertionError{Msg: "tree is not a parser handle"})
	}
	return t.Generic.accum
}

// AccumOf exposes the parser handle behind a GenParser tree to callers
// outside this package (the vm package's PARSE_FRAG_*/EXTRACT_INPUT_*/etc.
// opcode handlers, which only forward to the FsmRun/PdaRun pair and never
// need to know more about Accum than this package already exports).
func AccumOf(t *Tree) *Accum {
	return asAccum(t)
}

// destroy cleans the parser, releases any accumulated reverse-code, and
// releases the input-stream tree (spec.md §4.2).
func (a *Accum) destroy(p *Program) {
	a.Pda.Clean(p)
	a.Pda.ClearContext(p)
	a.Pda.ReleaseReverseCode(p)
	Downref(p, a.Stream)
	Downref(p, a.Context)
}
