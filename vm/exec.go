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
	"fmt"
	"strconv"
	"strings"

	"github.com/ianlewis/treerw"
)

// Run executes m.Code starting at the current m.IP until HALT, STOP, or the
// code runs out, dispatching one opcode per loop iteration (spec.md §4.4.1).
// YIELD returns control to the caller with yielded == true so a host driving a
// user iterator can resume by calling Run again.
func (m *VM) Run() (yielded bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ae, ok := r.(error); ok {
				err = ae
				return
			}
			panic(r)
		}
	}()

	for m.IP < len(m.Code) {
		op := m.fetchOp()
		switch op {
		case OpHalt, OpStop:
			return false, nil
		case OpYield:
			return true, nil
		default:
			m.step(op)
		}
	}
	return false, nil
}

// step dispatches a single already-fetched opcode. It is split out of Run
// so Run's own loop handles only HALT/STOP/YIELD; reverse execution
// (rexec.go) does not use it and dispatches on recorded units instead.
func (m *VM) step(op Op) {
	switch op {

	// --- Literals ---
	case OpLoadInt:
		m.Push(IntSlot(m.fetchWord()))
	case OpLoadStr:
		n := m.fetchHalf()
		m.Push(TreeSlot(m.Prog.NewStr(m.fetchString(n))))
	case OpLoadNil:
		m.Push(TreeSlot(nil))
	case OpLoadTrue:
		m.Push(TreeSlot(m.Prog.Bool(true)))
	case OpLoadFalse:
		m.Push(TreeSlot(m.Prog.Bool(false)))

	// --- Arithmetic ---
	case OpAddInt:
		b, a := m.Pop().Int, m.Pop().Int
		m.Push(IntSlot(a + b))
	case OpSubInt:
		b, a := m.Pop().Int, m.Pop().Int
		m.Push(IntSlot(a - b))
	case OpMultInt:
		b, a := m.Pop().Int, m.Pop().Int
		m.Push(IntSlot(a * b))
	case OpDivInt:
		b, a := m.Pop().Int, m.Pop().Int
		if b == 0 {
			panic(&treerw.FatalError{Op: "DIV_INT", Msg: "division by zero"})
		}
		m.Push(IntSlot(a / b))

	// --- Tests ---
	case OpTstEql:
		b, a := m.Pop().Int, m.Pop().Int
		m.Push(boolInt(a == b))
	case OpTstNotEql:
		b, a := m.Pop().Int, m.Pop().Int
		m.Push(boolInt(a != b))
	case OpTstLess:
		b, a := m.Pop().Int, m.Pop().Int
		m.Push(boolInt(a < b))
	case OpTstGrtr:
		b, a := m.Pop().Int, m.Pop().Int
		m.Push(boolInt(a > b))
	case OpTstLessEql:
		b, a := m.Pop().Int, m.Pop().Int
		m.Push(boolInt(a <= b))
	case OpTstGrtrEql:
		b, a := m.Pop().Int, m.Pop().Int
		m.Push(boolInt(a >= b))
	case OpTstLogicalAnd:
		b, a := m.Pop().Int, m.Pop().Int
		m.Push(boolInt(a != 0 && b != 0))
	case OpTstLogicalOr:
		b, a := m.Pop().Int, m.Pop().Int
		m.Push(boolInt(a != 0 || b != 0))
	case OpNot:
		a := m.Pop().Int
		m.Push(boolInt(a == 0))

	// --- Control ---
	case OpJmp:
		m.IP = int(m.fetchWord())
	case OpJmpFalse:
		target := m.fetchWord()
		if m.Pop().Int == 0 {
			m.IP = int(target)
		}
	case OpJmpTrue:
		target := m.fetchWord()
		if m.Pop().Int != 0 {
			m.IP = int(target)
		}

	// --- String ops ---
	case OpStrAtoi:
		s := m.Pop().Tree
		n, err := strconv.ParseInt(s.StrVal, 10, 64)
		if err != nil {
			panic(&treerw.FatalError{Op: "STR_ATOI", Msg: err.Error()})
		}
		treerw.Downref(m.Prog, s)
		m.Push(IntSlot(n))
	case OpStrLength:
		s := m.Pop().Tree
		n := int64(len(s.StrVal))
		treerw.Downref(m.Prog, s)
		m.Push(IntSlot(n))
	case OpConcatStr:
		b, a := m.Pop().Tree, m.Pop().Tree
		r := m.Prog.NewStr(a.StrVal + b.StrVal)
		treerw.Downref(m.Prog, a)
		treerw.Downref(m.Prog, b)
		m.Push(TreeSlot(r))
	case OpIntToStr:
		n := m.Pop().Int
		m.Push(TreeSlot(m.Prog.NewStr(strconv.FormatInt(n, 10))))
	case OpTreeToStr:
		t := m.Pop().Tree
		var sb strings.Builder
		treerw.Print(m.Prog, &sb, t, treerw.PrintPlain)
		treerw.Downref(m.Prog, t)
		m.Push(TreeSlot(m.Prog.NewStr(sb.String())))
	case OpToUpper:
		s := m.Pop().Tree
		r := m.Prog.NewStr(strings.ToUpper(s.StrVal))
		treerw.Downref(m.Prog, s)
		m.Push(TreeSlot(r))
	case OpToLower:
		s := m.Pop().Tree
		r := m.Prog.NewStr(strings.ToLower(s.StrVal))
		treerw.Downref(m.Prog, s)
		m.Push(TreeSlot(r))
	case OpSprintf:
		n := int(m.fetchHalf())
		args := make([]any, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = m.Pop().Int
		}
		format := m.Pop().Tree
		r := m.Prog.NewStr(fmt.Sprintf(format.StrVal, args...))
		treerw.Downref(m.Prog, format)
		m.Push(TreeSlot(r))
	case OpStrUord8, OpStrSord8, OpStrUord16, OpStrSord16, OpStrUord32, OpStrSord32:
		m.execStrOrd(op)

	// --- Frame / stack bookkeeping ---
	case OpInitLocals:
		n := int(m.fetchHalf())
		for i := 0; i < n; i++ {
			m.Push(Slot{})
		}
	case OpPopLocals:
		n := int(m.fetchHalf())
		m.Stack = m.Stack[:len(m.Stack)-n]
	case OpPop:
		m.Pop()
	case OpPopNWords:
		n := int(m.fetchHalf())
		m.Stack = m.Stack[:len(m.Stack)-n]
	case OpDupTop:
		m.Push(m.Top())
	case OpDupTopOff:
		off := int(m.fetchHalf())
		m.Push(m.Stack[len(m.Stack)-1-off])
	case OpSaveLhs:
		m.lhsSave = append(m.lhsSave, m.Pop())
	case OpRestoreLhs:
		n := len(m.lhsSave) - 1
		m.Push(m.lhsSave[n])
		m.lhsSave = m.lhsSave[:n]
	case OpSaveRet:
		m.Stack[m.Frame-FrAA+FrRV] = m.Pop()
	case OpReject:
		panic(&rejectSignal{})

	// --- Tree construction entry points ---
	case OpMatch:
		m.execMatch()
	case OpConstruct:
		m.execConstruct()
	case OpTreeNew:
		id := int32(m.fetchWord())
		m.Push(TreeSlot(&treerw.Tree{ID: id, Refs: 1}))
	case OpConstructTerm:
		m.execConstructTerm()
	case OpCreateToken:
		m.execCreateToken()
	case OpMakeToken:
		m.execMakeToken()
	case OpMakeTree:
		m.execMakeTree()
	case OpInitRhsEl:
		m.execInitRhsEl()
	case OpInitCaptures:
		m.execInitCaptures()
	case OpTreeSearch:
		m.execTreeSearch()

	// --- Locals ---
	case OpGetLocalR:
		off := int(m.fetchHalf())
		m.Push(m.localSlot(off))
	case OpGetLocalWC:
		off := int(m.fetchHalf())
		m.Push(m.localSlot(off))
	case OpSetLocalWC:
		off := int(m.fetchHalf())
		v := m.Pop()
		m.setLocal(off, v)
	case OpGetLocalRefR, OpGetLocalRefWC:
		off := int(m.fetchHalf())
		m.Push(RefSlot(m.localRef(off)))
	case OpSetLocalRefWC:
		r := m.Pop().Ref
		v := m.Pop().Tree
		old := r.Deref()
		if old != nil {
			treerw.Downref(m.Prog, old)
		}
		treerw.SetValue(r, v)

	// --- References ---
	case OpRefFromLocal:
		off := int(m.fetchHalf())
		m.Push(RefSlot(m.localRef(off)))
	case OpRefFromRef:
		pos := int(m.fetchHalf())
		base := m.Pop().Ref
		kid := treerw.GetAttrKid(m.Prog, base.Deref(), pos)
		m.Push(RefSlot(&treerw.Ref{Kid: kid, Next: base}))
	case OpRefFromQualRef:
		pos := int(m.fetchHalf())
		base := m.Pop().Ref
		t := base.Deref()
		kid := treerw.GetAttrKid(m.Prog, t, pos)
		m.Push(RefSlot(&treerw.Ref{Kid: kid, Next: base}))
	case OpTriterRefFromCur:
		it := m.Top().Iter
		m.Push(RefSlot(&it.Ref))
	case OpUiterRefFromCur:
		it := m.Top().Iter
		m.Push(RefSlot(&it.Ref))

	// --- Field access (via Ref) ---
	case OpGetFieldR, OpGetFieldWC:
		r := m.Pop().Ref
		m.Push(TreeSlot(r.Deref()))
	case OpGetFieldWV:
		r := m.Pop().Ref
		m.Push(TreeSlot(r.Deref()))
	case OpGetFieldBkt:
		r := m.Pop().Ref
		m.Push(TreeSlot(r.Deref()))
	case OpSetFieldWC:
		r := m.Pop().Ref
		v := m.Pop().Tree
		old := r.Deref()
		if old != nil {
			treerw.Downref(m.Prog, old)
		}
		treerw.SetValue(r, v)
	case OpSetFieldLeaveWC:
		r := m.Pop().Ref
		v := m.Pop().Tree
		treerw.SetValue(r, v)
		m.Push(TreeSlot(v))
	case OpSetFieldWV:
		r := m.Pop().Ref
		v := m.Pop().Tree
		old := r.Deref()
		m.Rcode.Append(OpSetFieldBkt, RefSlot(r), TreeSlot(old))
		treerw.SetValue(r, v)

	// --- Token / match introspection ---
	case OpGetMatchLengthR:
		t := m.Pop().Tree
		n := int64(0)
		if t != nil && t.TokData != nil {
			n = int64(len(*t.TokData))
		}
		m.Push(IntSlot(n))
	case OpGetMatchTextR:
		t := m.Top().Tree
		if t != nil && t.TokData != nil {
			m.Push(TreeSlot(m.Prog.NewStr(*t.TokData)))
		} else {
			m.Push(TreeSlot(m.Prog.NewStr("")))
		}
	case OpGetTokenDataR:
		t := m.Pop().Tree
		if t != nil && t.TokData != nil {
			m.Push(TreeSlot(m.Prog.NewStr(*t.TokData)))
		} else {
			m.Push(TreeSlot(nil))
		}
	case OpSetTokenDataWC, OpSetTokenDataWV:
		v := m.Pop().Tree
		t := m.Pop().Tree
		s := v.StrVal
		t.TokData = &s
	case OpSetTokenDataBkt:
		v := m.Pop().Tree
		t := m.Pop().Tree
		if v == nil {
			t.TokData = nil
		} else {
			s := v.StrVal
			t.TokData = &s
		}
	case OpGetTokenPosR:
		m.Pop()
		m.Push(IntSlot(0))

	// --- Iterators ---
	case OpTriterFromRef:
		kind := treerw.IterKind(m.fetchHalf())
		searchID := int32(m.fetchWord())
		r := m.Pop().Ref
		m.Push(Slot{Iter: treerw.NewTreeIter(kind, searchID, r.Kid, m.SP())})
	case OpTriterAdvance, OpTriterNextChild, OpTriterNextRepeat:
		it := m.Top().Iter
		m.Push(boolInt(it.Advance(m.Prog)))
	case OpRevTriterFromRef:
		searchID := int32(m.fetchWord())
		r := m.Pop().Ref
		m.Push(Slot{Iter: treerw.NewTreeIter(treerw.IterReverseChild, searchID, r.Kid, m.SP())})
	case OpRevTriterPrevChild:
		it := m.Top().Iter
		m.Push(boolInt(it.Advance(m.Prog)))
	case OpTriterPrevRepeat:
		it := m.Top().Iter
		m.Push(boolInt(it.Advance(m.Prog)))
	case OpTriterDestroy, OpRevTriterDestroy, OpUiterDestroy:
		m.Pop()
	case OpTriterGetCurR, OpUiterGetCurR:
		it := m.Top().Iter
		m.Push(TreeSlot(it.Ref.Deref()))
	case OpTriterGetCurWC, OpUiterGetCurWC:
		it := m.Top().Iter
		it.SplitCurrent(m.Prog)
		m.Push(TreeSlot(it.Ref.Deref()))
	case OpTriterSetCurWC, OpUiterSetCurWC:
		v := m.Pop().Tree
		it := m.Top().Iter
		it.SplitCurrent(m.Prog)
		old := it.Ref.Deref()
		if old != nil {
			treerw.Downref(m.Prog, old)
		}
		treerw.SetValue(&it.Ref, v)
	case OpUiterCreateWC, OpUiterCreateWV:
		searchID := int32(m.fetchWord())
		r := m.Pop().Ref
		m.Push(Slot{Iter: treerw.NewTreeIter(treerw.IterForward, searchID, r.Kid, m.SP())})
	case OpUiterAdvance:
		it := m.Top().Iter
		m.Push(boolInt(it.Advance(m.Prog)))

	// --- Containers: map ---
	case OpMapLength:
		t := m.Pop().Tree
		m.Push(IntSlot(int64(treerw.MapLength(t))))
	case OpMapFind:
		key, t := m.Pop().Tree, m.Pop().Tree
		v := treerw.MapFind(m.Prog, t, key)
		treerw.Downref(m.Prog, key)
		m.Push(TreeSlot(v))
	case OpMapInsertWC:
		value, key, t := m.Pop().Tree, m.Pop().Tree, m.Pop().Tree
		m.Push(boolInt(treerw.MapInsert(m.Prog, t, key, value)))
	case OpMapInsertWV:
		value, key, t := m.Pop().Tree, m.Pop().Tree, m.Pop().Tree
		ok := treerw.MapInsert(m.Prog, t, key, value)
		if ok {
			m.Rcode.Append(OpMapRemoveBkt, TreeSlot(t), TreeSlot(key))
		}
		m.Push(boolInt(ok))
	case OpMapStoreWC:
		value, key, t := m.Pop().Tree, m.Pop().Tree, m.Pop().Tree
		old := treerw.MapStore(m.Prog, t, key, value)
		m.Push(TreeSlot(old))
	case OpMapStoreWV:
		value, key, t := m.Pop().Tree, m.Pop().Tree, m.Pop().Tree
		keyForRcode := key
		treerw.Upref(keyForRcode)
		old := treerw.MapStore(m.Prog, t, key, value)
		// old is handed to both the rcode restore record and the caller
		// (pushed below), so it needs the second reference a nil-safe
		// Upref gives it; the bookkeeping is the same shape as
		// MapRemoveWV's gv just below.
		treerw.Upref(old)
		m.Rcode.Append(OpMapStoreBkt, TreeSlot(t), TreeSlot(keyForRcode), TreeSlot(old))
		m.Push(TreeSlot(old))
	case OpMapRemoveWC:
		key, t := m.Pop().Tree, m.Pop().Tree
		gk, gv := treerw.MapRemove(m.Prog, t, key)
		treerw.Downref(m.Prog, key)
		treerw.Downref(m.Prog, gk)
		m.Push(TreeSlot(gv))
	case OpMapRemoveWV:
		key, t := m.Pop().Tree, m.Pop().Tree
		gk, gv := treerw.MapRemove(m.Prog, t, key)
		treerw.Downref(m.Prog, key)
		if gk != nil {
			m.Rcode.Append(OpMapInsertBkt, TreeSlot(t), TreeSlot(gk), TreeSlot(gv))
			treerw.Upref(gv)
		}
		m.Push(TreeSlot(gv))

	// --- Containers: list ---
	case OpListLength:
		t := m.Pop().Tree
		m.Push(IntSlot(int64(treerw.ListLength(t))))
	case OpListAppendWC:
		value, t := m.Pop().Tree, m.Pop().Tree
		treerw.ListAppend(t, value)
	case OpListAppendWV:
		value, t := m.Pop().Tree, m.Pop().Tree
		treerw.ListAppend(t, value)
		m.Rcode.Append(OpListRemoveEndBkt, TreeSlot(t))
	case OpListRemoveEndWC:
		t := m.Pop().Tree
		v := treerw.ListRemoveEnd(t)
		m.Push(TreeSlot(v))
	case OpListRemoveEndWV:
		t := m.Pop().Tree
		v := treerw.ListRemoveEnd(t)
		m.Rcode.Append(OpListAppendBkt, TreeSlot(t), TreeSlot(v))
		treerw.Upref(v)
		m.Push(TreeSlot(v))
	case OpGetListMemR, OpGetListMemWC:
		pos := int(m.fetchHalf())
		t := m.Pop().Tree
		m.Push(TreeSlot(treerw.ListMem(t, pos)))
	case OpGetListMemWV:
		pos := int(m.fetchHalf())
		t := m.Pop().Tree
		m.Push(TreeSlot(treerw.ListMem(t, pos)))
	case OpSetListMemWC:
		pos := int(m.fetchHalf())
		value, t := m.Pop().Tree, m.Pop().Tree
		old := treerw.SetListMem(t, pos, value)
		m.Push(TreeSlot(old))
	case OpSetListMemWV:
		pos := int(m.fetchHalf())
		value, t := m.Pop().Tree, m.Pop().Tree
		old := treerw.SetListMem(t, pos, value)
		m.Rcode.Append(OpSetListMemBkt, TreeSlot(t), IntSlot(int64(pos)), TreeSlot(old))
		m.Push(TreeSlot(old))

	// --- Call / return ---
	case OpCallWC, OpCallWV:
		target := int(m.fetchWord())
		m.Push(Slot{Int: int64(m.Frame)})
		m.Push(Slot{Int: int64(m.IP)})
		m.Push(Slot{})
		m.Frame = len(m.Stack)
		m.IP = target
	case OpRet:
		base := m.Frame - FrAA
		rv := m.Stack[base+FrRV]
		savedIP := int(m.Stack[base+FrRI].Int)
		savedFrame := int(m.Stack[base+FrRF].Int)
		m.Stack = m.Stack[:base]
		m.Frame = savedFrame
		m.IP = savedIP
		m.Push(rv)

	// --- Print ---
	case OpPrint:
		t := m.Pop().Tree
		treerw.Print(m.Prog, m.Stdout, t, treerw.PrintPlain)
	case OpPrintXMLAC:
		t := m.Pop().Tree
		treerw.Print(m.Prog, m.Stdout, t, treerw.PrintXML)
	case OpPrintXML:
		t := m.Pop().Tree
		treerw.Print(m.Prog, m.Stdout, t, treerw.PrintXMLSkeleton)
	case OpPrintStream:
		t := m.Pop().Tree
		stream := m.Pop().Tree
		_ = stream
		treerw.Print(m.Prog, m.Stdout, t, treerw.PrintPlain)

	// --- Host interface ---
	case OpExit:
		status := m.Pop().Int
		panic(&exitSignal{status: int(status)})
	case OpLoadArgv:
		idx := m.Pop().Int
		if int(idx) >= 0 && int(idx) < len(m.Argv) {
			m.Push(TreeSlot(m.Prog.NewStr(m.Argv[idx])))
		} else {
			m.Push(TreeSlot(nil))
		}
	case OpGetStdin, OpGetStdout, OpGetStderr, OpOpenFile:
		m.execStreamOpen(op)

	// --- Parsing / stream interface (see vm/accum.go: external collaborator boundary) ---
	case OpParseFragWC, OpParseFragWV, OpParseFragBkt,
		OpParseFinishWC, OpParseFinishWV, OpParseFinishBkt,
		OpStreamPull, OpStreamPullBkt,
		OpStreamPushWV, OpStreamPushBkt, OpStreamPushIgnoreWV,
		OpStreamAppendWC, OpStreamAppendWV, OpStreamAppendBkt,
		OpExtractInputWC, OpExtractInputWV, OpExtractInputBkt,
		OpSetInputWC,
		OpLoadInputR, OpLoadInputWV, OpLoadInputWC, OpLoadInputBkt,
		OpLoadContextR, OpLoadContextWV, OpLoadContextWC, OpLoadContextBkt,
		OpLoadCtxR, OpLoadCtxWC, OpLoadCtxWV, OpLoadCtxBkt,
		OpGetAccumCtxR, OpGetAccumCtxWC, OpGetAccumCtxWV,
		OpSetAccumCtxWC, OpSetAccumCtxWV:
		m.execAccum(op)

	// --- Globals / pointers ---
	case OpLoadGlobalR, OpLoadGlobalWC:
		idx := int(m.fetchHalf())
		m.Push(TreeSlot(m.Prog.Globals[idx]))
	case OpLoadGlobalWV:
		idx := int(m.fetchHalf())
		old := m.Prog.Globals[idx]
		m.Rcode.Append(OpLoadGlobalBkt, IntSlot(int64(idx)), TreeSlot(old))
		m.Push(TreeSlot(old))
	case OpPtrDerefR, OpPtrDerefWC:
		t := m.Pop().Tree
		m.Push(TreeSlot(t))
	case OpPtrDerefWV:
		t := m.Pop().Tree
		m.Push(TreeSlot(t))

	default:
		panic(&treerw.AssertionError{Msg: fmt.Sprintf("unimplemented opcode %s", op)})
	}
}

func boolInt(v bool) Slot {
	if v {
		return IntSlot(1)
	}
	return IntSlot(0)
}

// rejectSignal unwinds Run on a REJECT opcode; the parser driver (out of
// scope) is expected to catch this at the reduction boundary.
type rejectSignal struct{}

func (r *rejectSignal) Error() string { return "treerw/vm: reduction rejected" }

// exitSignal unwinds Run on an EXIT opcode, carrying the status code out to
// the host driver (cmd/treerun), which is the layer that actually calls
// os.Exit (spec.md §3's error-handling split between library and driver).
type exitSignal struct{ status int }

func (e *exitSignal) Error() string { return fmt.Sprintf("treerw/vm: exit(%d)", e.status) }

// ExitStatus reports the status code of an exit signal, or ok == false if
// err is not one.
func ExitStatus(err error) (status int, ok bool) {
	if e, isExit := err.(*exitSignal); isExit {
		return e.status, true
	}
	return 0, false
}

// Rejected reports whether err came from a REJECT opcode.
func Rejected(err error) bool {
	_, ok := err.(*rejectSignal)
	return ok
}
