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

// Package vm implements the stack bytecode machine that executes over the
// treerw value domain: forward dispatch, call frames, user-iterator frames,
// reverse-code emission, and reverse (undo) execution.
package vm

// Op is one opcode byte. Unlike the source runtime's IN_* table, which
// preserves gaps left by removed/placeholder instructions (IN_PARSE_WV
// commented out, IN_PARSE_EXTRACT_INPUT defined with no value), Op packs a
// dense table: spec.md §9's open question says to do this unless wire
// compatibility with an existing compiler is required, and none is here.
type Op byte

const (
	OpSaveLhs Op = iota
	OpRestoreLhs

	OpLoadInt
	OpLoadStr
	OpLoadNil
	OpLoadTrue
	OpLoadFalse

	OpAddInt
	OpSubInt
	OpMultInt
	OpDivInt

	OpTstEql
	OpTstNotEql
	OpTstLess
	OpTstGrtr
	OpTstLessEql
	OpTstGrtrEql
	OpTstLogicalAnd
	OpTstLogicalOr

	OpNot

	OpJmp
	OpJmpFalse
	OpJmpTrue

	OpStrAtoi
	OpStrLength
	OpConcatStr

	OpInitLocals
	OpPopLocals
	OpPop
	OpPopNWords
	OpDupTop
	OpDupTopOff
	OpReject
	OpMatch
	OpConstruct
	OpTreeNew

	OpGetLocalR
	OpGetLocalWC
	OpSetLocalWC

	OpGetLocalRefR
	OpGetLocalRefWC
	OpSetLocalRefWC

	OpSaveRet

	OpGetFieldR
	OpGetFieldWC
	OpGetFieldWV
	OpGetFieldBkt

	OpSetFieldWV
	OpSetFieldWC
	OpSetFieldBkt
	OpSetFieldLeaveWC

	OpGetMatchLengthR
	OpGetMatchTextR

	OpGetTokenDataR
	OpSetTokenDataWC
	OpSetTokenDataWV
	OpSetTokenDataBkt

	OpGetTokenPosR

	OpInitRhsEl
	OpInitCaptures

	OpTriterFromRef
	OpTriterAdvance
	OpTriterNextChild
	OpTriterGetCurR
	OpTriterGetCurWC
	OpTriterSetCurWC
	OpTriterDestroy
	OpTriterNextRepeat
	OpTriterPrevRepeat

	OpRevTriterFromRef
	OpRevTriterDestroy
	OpRevTriterPrevChild

	OpUiterDestroy
	OpUiterCreateWV
	OpUiterCreateWC
	OpUiterAdvance
	OpUiterGetCurR
	OpUiterGetCurWC
	OpUiterSetCurWC

	OpTreeSearch

	OpLoadGlobalR
	OpLoadGlobalWV
	OpLoadGlobalWC
	OpLoadGlobalBkt

	OpPtrDerefR
	OpPtrDerefWV
	OpPtrDerefWC
	OpPtrDerefBkt

	OpRefFromLocal
	OpRefFromRef
	OpRefFromQualRef
	OpTriterRefFromCur
	OpUiterRefFromCur

	OpMapLength
	OpMapFind
	OpMapInsertWV
	OpMapInsertWC
	OpMapInsertBkt
	OpMapStoreWV
	OpMapStoreWC
	OpMapStoreBkt
	OpMapRemoveWV
	OpMapRemoveWC
	OpMapRemoveBkt

	OpListLength
	OpListAppendWV
	OpListAppendWC
	OpListAppendBkt
	OpListRemoveEndWV
	OpListRemoveEndWC
	OpListRemoveEndBkt

	OpGetListMemR
	OpGetListMemWC
	OpGetListMemWV
	OpGetListMemBkt
	OpSetListMemWV
	OpSetListMemWC
	OpSetListMemBkt

	OpPrint
	OpPrintXMLAC
	OpPrintXML
	OpPrintStream

	OpHalt

	OpCallWC
	OpCallWV
	OpRet
	OpYield
	OpStop

	OpStrUord8
	OpStrSord8
	OpStrUord16
	OpStrSord16
	OpStrUord32
	OpStrSord32

	OpIntToStr
	OpTreeToStr

	OpCreateToken
	OpMakeToken
	OpMakeTree
	OpConstructTerm

	OpStreamPull
	OpStreamPullBkt

	OpParseFragWC
	OpParseFragWV
	OpParseFragBkt

	OpExtractInputWC
	OpExtractInputWV
	OpExtractInputBkt

	OpSetInputWC

	OpStreamAppendWC
	OpStreamAppendWV
	OpStreamAppendBkt

	OpParseFinishWC
	OpParseFinishWV
	OpParseFinishBkt

	OpOpenFile
	OpGetStdin
	OpGetStdout
	OpGetStderr
	OpLoadArgv
	OpToUpper
	OpToLower
	OpExit

	OpStreamPushWV
	OpStreamPushBkt
	OpStreamPushIgnoreWV

	OpLoadInputR
	OpLoadInputWV
	OpLoadInputWC
	OpLoadInputBkt

	OpLoadContextR
	OpLoadContextWV
	OpLoadContextWC
	OpLoadContextBkt

	OpGetAccumCtxR
	OpGetAccumCtxWC
	OpGetAccumCtxWV
	OpSetAccumCtxWC
	OpSetAccumCtxWV

	OpLoadCtxR
	OpLoadCtxWC
	OpLoadCtxWV
	OpLoadCtxBkt

	OpSprintf

	opCount
)

// names gives each Op a diagnostic label, the Go-native counterpart of the
// source table's stringly-named IN_* macros (used by disassembly and panic
// messages, never by the wire format since there is none here).
var names = [opCount]string{
	OpSaveLhs: "SAVE_LHS", OpRestoreLhs: "RESTORE_LHS",
	OpLoadInt: "LOAD_INT", OpLoadStr: "LOAD_STR", OpLoadNil: "LOAD_NIL",
	OpLoadTrue: "LOAD_TRUE", OpLoadFalse: "LOAD_FALSE",
	OpAddInt: "ADD_INT", OpSubInt: "SUB_INT", OpMultInt: "MULT_INT", OpDivInt: "DIV_INT",
	OpTstEql: "TST_EQL", OpTstNotEql: "TST_NOT_EQL", OpTstLess: "TST_LESS",
	OpTstGrtr: "TST_GRTR", OpTstLessEql: "TST_LESS_EQL", OpTstGrtrEql: "TST_GRTR_EQL",
	OpTstLogicalAnd: "TST_LOGICAL_AND", OpTstLogicalOr: "TST_LOGICAL_OR",
	OpNot: "NOT",
	OpJmp: "JMP", OpJmpFalse: "JMP_FALSE", OpJmpTrue: "JMP_TRUE",
	OpStrAtoi: "STR_ATOI", OpStrLength: "STR_LENGTH", OpConcatStr: "CONCAT_STR",
	OpInitLocals: "INIT_LOCALS", OpPopLocals: "POP_LOCALS", OpPop: "POP",
	OpPopNWords: "POP_N_WORDS", OpDupTop: "DUP_TOP", OpDupTopOff: "DUP_TOP_OFF",
	OpReject: "REJECT", OpMatch: "MATCH", OpConstruct: "CONSTRUCT", OpTreeNew: "TREE_NEW",
	OpGetLocalR: "GET_LOCAL_R", OpGetLocalWC: "GET_LOCAL_WC", OpSetLocalWC: "SET_LOCAL_WC",
	OpGetLocalRefR: "GET_LOCAL_REF_R", OpGetLocalRefWC: "GET_LOCAL_REF_WC",
	OpSetLocalRefWC: "SET_LOCAL_REF_WC",
	OpSaveRet: "SAVE_RET",
	OpGetFieldR: "GET_FIELD_R", OpGetFieldWC: "GET_FIELD_WC", OpGetFieldWV: "GET_FIELD_WV",
	OpGetFieldBkt: "GET_FIELD_BKT",
	OpSetFieldWV:  "SET_FIELD_WV", OpSetFieldWC: "SET_FIELD_WC", OpSetFieldBkt: "SET_FIELD_BKT",
	OpSetFieldLeaveWC: "SET_FIELD_LEAVE_WC",
	OpGetMatchLengthR: "GET_MATCH_LENGTH_R", OpGetMatchTextR: "GET_MATCH_TEXT_R",
	OpGetTokenDataR: "GET_TOKEN_DATA_R", OpSetTokenDataWC: "SET_TOKEN_DATA_WC",
	OpSetTokenDataWV: "SET_TOKEN_DATA_WV", OpSetTokenDataBkt: "SET_TOKEN_DATA_BKT",
	OpGetTokenPosR: "GET_TOKEN_POS_R",
	OpInitRhsEl:    "INIT_RHS_EL", OpInitCaptures: "INIT_CAPTURES",
	OpTriterFromRef: "TRITER_FROM_REF", OpTriterAdvance: "TRITER_ADVANCE",
	OpTriterNextChild: "TRITER_NEXT_CHILD", OpTriterGetCurR: "TRITER_GET_CUR_R",
	OpTriterGetCurWC: "TRITER_GET_CUR_WC", OpTriterSetCurWC: "TRITER_SET_CUR_WC",
	OpTriterDestroy: "TRITER_DESTROY", OpTriterNextRepeat: "TRITER_NEXT_REPEAT",
	OpTriterPrevRepeat: "TRITER_PREV_REPEAT",
	OpRevTriterFromRef: "REV_TRITER_FROM_REF", OpRevTriterDestroy: "REV_TRITER_DESTROY",
	OpRevTriterPrevChild: "REV_TRITER_PREV_CHILD",
	OpUiterDestroy:       "UITER_DESTROY", OpUiterCreateWV: "UITER_CREATE_WV",
	OpUiterCreateWC: "UITER_CREATE_WC", OpUiterAdvance: "UITER_ADVANCE",
	OpUiterGetCurR: "UITER_GET_CUR_R", OpUiterGetCurWC: "UITER_GET_CUR_WC",
	OpUiterSetCurWC: "UITER_SET_CUR_WC",
	OpTreeSearch:    "TREE_SEARCH",
	OpLoadGlobalR:   "LOAD_GLOBAL_R", OpLoadGlobalWV: "LOAD_GLOBAL_WV",
	OpLoadGlobalWC: "LOAD_GLOBAL_WC", OpLoadGlobalBkt: "LOAD_GLOBAL_BKT",
	OpPtrDerefR: "PTR_DEREF_R", OpPtrDerefWV: "PTR_DEREF_WV", OpPtrDerefWC: "PTR_DEREF_WC",
	OpPtrDerefBkt: "PTR_DEREF_BKT",
	OpRefFromLocal: "REF_FROM_LOCAL", OpRefFromRef: "REF_FROM_REF",
	OpRefFromQualRef: "REF_FROM_QUAL_REF", OpTriterRefFromCur: "TRITER_REF_FROM_CUR",
	OpUiterRefFromCur: "UITER_REF_FROM_CUR",
	OpMapLength:       "MAP_LENGTH", OpMapFind: "MAP_FIND",
	OpMapInsertWV: "MAP_INSERT_WV", OpMapInsertWC: "MAP_INSERT_WC", OpMapInsertBkt: "MAP_INSERT_BKT",
	OpMapStoreWV:  "MAP_STORE_WV", OpMapStoreWC: "MAP_STORE_WC", OpMapStoreBkt: "MAP_STORE_BKT",
	OpMapRemoveWV: "MAP_REMOVE_WV", OpMapRemoveWC: "MAP_REMOVE_WC", OpMapRemoveBkt: "MAP_REMOVE_BKT",
	OpListLength:  "LIST_LENGTH",
	OpListAppendWV: "LIST_APPEND_WV", OpListAppendWC: "LIST_APPEND_WC",
	OpListAppendBkt: "LIST_APPEND_BKT",
	OpListRemoveEndWV: "LIST_REMOVE_END_WV", OpListRemoveEndWC: "LIST_REMOVE_END_WC",
	OpListRemoveEndBkt: "LIST_REMOVE_END_BKT",
	OpGetListMemR:      "GET_LIST_MEM_R", OpGetListMemWC: "GET_LIST_MEM_WC",
	OpGetListMemWV: "GET_LIST_MEM_WV", OpGetListMemBkt: "GET_LIST_MEM_BKT",
	OpSetListMemWV: "SET_LIST_MEM_WV", OpSetListMemWC: "SET_LIST_MEM_WC",
	OpSetListMemBkt: "SET_LIST_MEM_BKT",
	OpPrint:         "PRINT", OpPrintXMLAC: "PRINT_XML_AC", OpPrintXML: "PRINT_XML",
	OpPrintStream: "PRINT_STREAM",
	OpHalt:        "HALT",
	OpCallWC:      "CALL_WC", OpCallWV: "CALL_WV", OpRet: "RET", OpYield: "YIELD", OpStop: "STOP",
	OpStrUord8: "STR_UORD8", OpStrSord8: "STR_SORD8", OpStrUord16: "STR_UORD16",
	OpStrSord16: "STR_SORD16", OpStrUord32: "STR_UORD32", OpStrSord32: "STR_SORD32",
	OpIntToStr: "INT_TO_STR", OpTreeToStr: "TREE_TO_STR",
	OpCreateToken: "CREATE_TOKEN", OpMakeToken: "MAKE_TOKEN", OpMakeTree: "MAKE_TREE",
	OpConstructTerm: "CONSTRUCT_TERM",
	OpStreamPull:    "STREAM_PULL", OpStreamPullBkt: "STREAM_PULL_BKT",
	OpParseFragWC: "PARSE_FRAG_WC", OpParseFragWV: "PARSE_FRAG_WV", OpParseFragBkt: "PARSE_FRAG_BKT",
	OpExtractInputWC: "EXTRACT_INPUT_WC", OpExtractInputWV: "EXTRACT_INPUT_WV",
	OpExtractInputBkt: "EXTRACT_INPUT_BKT",
	OpSetInputWC:      "SET_INPUT_WC",
	OpStreamAppendWC:  "STREAM_APPEND_WC", OpStreamAppendWV: "STREAM_APPEND_WV",
	OpStreamAppendBkt: "STREAM_APPEND_BKT",
	OpParseFinishWC:   "PARSE_FINISH_WC", OpParseFinishWV: "PARSE_FINISH_WV",
	OpParseFinishBkt: "PARSE_FINISH_BKT",
	OpOpenFile:       "OPEN_FILE", OpGetStdin: "GET_STDIN", OpGetStdout: "GET_STDOUT",
	OpGetStderr: "GET_STDERR", OpLoadArgv: "LOAD_ARGV", OpToUpper: "TO_UPPER",
	OpToLower: "TO_LOWER", OpExit: "EXIT",
	OpStreamPushWV: "STREAM_PUSH_WV", OpStreamPushBkt: "STREAM_PUSH_BKT",
	OpStreamPushIgnoreWV: "STREAM_PUSH_IGNORE_WV",
	OpLoadInputR:         "LOAD_INPUT_R", OpLoadInputWV: "LOAD_INPUT_WV",
	OpLoadInputWC: "LOAD_INPUT_WC", OpLoadInputBkt: "LOAD_INPUT_BKT",
	OpLoadContextR: "LOAD_CONTEXT_R", OpLoadContextWV: "LOAD_CONTEXT_WV",
	OpLoadContextWC: "LOAD_CONTEXT_WC", OpLoadContextBkt: "LOAD_CONTEXT_BKT",
	OpGetAccumCtxR: "GET_ACCUM_CTX_R", OpGetAccumCtxWC: "GET_ACCUM_CTX_WC",
	OpGetAccumCtxWV: "GET_ACCUM_CTX_WV", OpSetAccumCtxWC: "SET_ACCUM_CTX_WC",
	OpSetAccumCtxWV: "SET_ACCUM_CTX_WV",
	OpLoadCtxR:      "LOAD_CTX_R", OpLoadCtxWC: "LOAD_CTX_WC", OpLoadCtxWV: "LOAD_CTX_WV",
	OpLoadCtxBkt: "LOAD_CTX_BKT",
	OpSprintf:    "SPRINTF",
}

// String implements fmt.Stringer for diagnostics.
func (o Op) String() string {
	if int(o) < len(names) && names[o] != "" {
		return names[o]
	}
	return "UNKNOWN_OP"
}
