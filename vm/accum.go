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

package vm

import (
	"os"

	"github.com/ianlewis/treerw"
)

// execStreamOpen handles GET_STDIN/GET_STDOUT/GET_STDERR/OPEN_FILE: each
// wraps an *os.File as a STREAM-variant tree (spec.md §6's I/O family).
func (m *VM) execStreamOpen(op Op) {
	switch op {
	case OpGetStdin:
		m.Push(TreeSlot(m.wrapStream(os.Stdin, true)))
	case OpGetStdout:
		m.Push(TreeSlot(m.wrapStream(os.Stdout, false)))
	case OpGetStderr:
		m.Push(TreeSlot(m.wrapStream(os.Stderr, false)))
	case OpOpenFile:
		mode := m.Pop().Tree
		name := m.Pop().Tree
		var f *os.File
		var err error
		switch mode.StrVal {
		case "r":
			f, err = os.Open(name.StrVal)
		case "w":
			f, err = os.Create(name.StrVal)
		default:
			panic(&treerw.FatalError{Op: "OPEN_FILE", Msg: `mode must be "r" or "w", got "` + mode.StrVal + `"`})
		}
		readable := mode.StrVal == "r"
		treerw.Downref(m.Prog, mode)
		treerw.Downref(m.Prog, name)
		if err != nil {
			m.Push(TreeSlot(nil))
			return
		}
		m.Push(TreeSlot(m.wrapStream(f, readable)))
	}
}

func (m *VM) wrapStream(f *os.File, readable bool) *treerw.Tree {
	st := &treerw.Stream{File: f}
	if readable {
		st.Reader = treerw.NewScanner(f)
	}
	return &treerw.Tree{ID: treerw.IDStream, Refs: 1, StreamVal: st}
}

// execAccum dispatches the opcode family that talks to the out-of-scope
// FsmRun/PdaRun collaborators (spec.md §1, §6): this package implements the
// bytecode-facing half of that boundary — moving trees in and out of an
// Accum's Stream/Context fields and driving the small lifecycle PdaRun
// exposes — without implementing shift/reduce parsing itself, which the
// spec explicitly leaves external.
func (m *VM) execAccum(op Op) {
	switch op {
	case OpStreamPull:
		accumTree := m.Pop().Tree
		acc := treerw.AccumOf(accumTree)
		ok := false
		if acc.Stream != nil && acc.Stream.StreamVal != nil && acc.Stream.StreamVal.Reader != nil {
			ok = acc.Stream.StreamVal.Reader.Advance()
		}
		m.Push(boolInt(ok))
	case OpStreamPullBkt:
		m.Pop()

	case OpStreamPushWV, OpStreamPushBkt, OpStreamPushIgnoreWV:
		tok := m.Pop().Tree
		accumTree := m.Pop().Tree
		_ = treerw.AccumOf(accumTree)
		treerw.Downref(m.Prog, tok)

	case OpStreamAppendWC, OpStreamAppendWV, OpStreamAppendBkt:
		tok := m.Pop().Tree
		accumTree := m.Pop().Tree
		acc := treerw.AccumOf(accumTree)
		old := acc.Stream
		acc.Stream = tok
		if op == OpStreamAppendWV {
			m.Rcode.Append(OpStreamAppendBkt, TreeSlot(accumTree), TreeSlot(old))
			treerw.Upref(old)
		} else {
			treerw.Downref(m.Prog, old)
		}

	case OpExtractInputWC, OpExtractInputWV, OpExtractInputBkt:
		t := m.Pop().Tree
		extracted := treerw.ExtractChild(m.Prog, t)
		m.Push(TreeSlot(&treerw.Tree{ID: t.ID, Refs: 1, Child: extracted}))

	case OpSetInputWC:
		stream := m.Pop().Tree
		accumTree := m.Pop().Tree
		acc := treerw.AccumOf(accumTree)
		treerw.Downref(m.Prog, acc.Stream)
		acc.Stream = stream

	case OpLoadInputR, OpLoadInputWC:
		accumTree := m.Pop().Tree
		acc := treerw.AccumOf(accumTree)
		treerw.Upref(acc.Stream)
		m.Push(TreeSlot(acc.Stream))
	case OpLoadInputWV:
		accumTree := m.Pop().Tree
		acc := treerw.AccumOf(accumTree)
		m.Rcode.Append(OpLoadInputBkt, TreeSlot(accumTree), TreeSlot(acc.Stream))
		treerw.Upref(acc.Stream)
		m.Push(TreeSlot(acc.Stream))
	case OpLoadInputBkt:
		m.Pop()

	case OpLoadContextR, OpLoadContextWC, OpLoadCtxR, OpLoadCtxWC,
		OpGetAccumCtxR, OpGetAccumCtxWC:
		accumTree := m.Pop().Tree
		acc := treerw.AccumOf(accumTree)
		treerw.Upref(acc.Context)
		m.Push(TreeSlot(acc.Context))
	case OpLoadContextWV, OpLoadCtxWV, OpGetAccumCtxWV:
		accumTree := m.Pop().Tree
		acc := treerw.AccumOf(accumTree)
		m.Rcode.Append(OpLoadContextBkt, TreeSlot(accumTree), TreeSlot(acc.Context))
		treerw.Upref(acc.Context)
		m.Push(TreeSlot(acc.Context))
	case OpLoadContextBkt, OpLoadCtxBkt:
		m.Pop()

	case OpSetAccumCtxWC, OpSetAccumCtxWV:
		ctx := m.Pop().Tree
		accumTree := m.Pop().Tree
		acc := treerw.AccumOf(accumTree)
		old := acc.Context
		acc.Context = ctx
		if op == OpSetAccumCtxWV {
			m.Rcode.Append(OpSetAccumCtxWC, TreeSlot(accumTree), TreeSlot(old))
		} else {
			treerw.Downref(m.Prog, old)
		}

	case OpParseFragWC, OpParseFragWV, OpParseFragBkt:
		frag := m.Pop().Tree
		accumTree := m.Pop().Tree
		_ = treerw.AccumOf(accumTree)
		treerw.Downref(m.Prog, frag)
		m.Push(boolInt(true))

	case OpParseFinishWC, OpParseFinishWV, OpParseFinishBkt:
		accumTree := m.Pop().Tree
		acc := treerw.AccumOf(accumTree)
		acc.Pda.Clean(m.Prog)
		m.Push(TreeSlot(acc.Stream))
	}
}
