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
	"bufio"
	"io"

	"github.com/ianlewis/runeio"
)

// Position is a source location, reused across the scanner and the parse
// driver (spec.md §6).
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// FsmRun is the interface the bytecode core consumes from the external
// lexer/scanner (spec.md §1, §6): it is out of scope to specify how tokens
// are recognized, only how CREATE_TOKEN/MAKE_TOKEN read matched text and
// position from it.
type FsmRun interface {
	// MatchText returns the text most recently matched.
	MatchText() string
	// Pos returns the position at the start of the match.
	Pos() Position
}

// Scanner is a minimal FsmRun implementation built directly on the
// teacher's own rune-level scanning primitives (runeio). The vm package
// attaches one to every readable stream it opens, and STREAM_PULL advances
// it; no test exercises it. It tracks offset/line/column exactly as
// lexparse.CustomLexer does.
type Scanner struct {
	r      *runeio.RuneReader
	pos    Position
	cursor Position
	buf    []rune
	err    error
}

// NewScanner wraps reader as a Scanner starting at line 1, column 1.
func NewScanner(reader io.Reader) *Scanner {
	br, ok := reader.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(reader)
	}
	return &Scanner{
		r:      runeio.NewReader(br),
		pos:    Position{Offset: 0, Line: 1, Column: 1},
		cursor: Position{Offset: 0, Line: 1, Column: 1},
	}
}

// Advance reads and buffers the next rune, returning false at EOF or error.
func (s *Scanner) Advance() bool {
	if s.err != nil {
		return false
	}
	rn, _, err := s.r.ReadRune()
	if err != nil {
		if err != io.EOF {
			s.err = err
		}
		return false
	}

	s.pos.Offset++
	s.pos.Column++
	if rn == '\n' {
		s.pos.Line++
		s.pos.Column = 1
	}
	s.buf = append(s.buf, rn)

	return true
}

// MatchText implements FsmRun.
func (s *Scanner) MatchText() string {
	return string(s.buf)
}

// Pos implements FsmRun.
func (s *Scanner) Pos() Position {
	return s.cursor
}

// Emit clears the accumulated match text and advances the cursor to the
// current reader position, the scanner-side half of CREATE_TOKEN.
func (s *Scanner) Emit() {
	s.buf = s.buf[:0]
	s.cursor = s.pos
}

// Err returns the first non-EOF error the scanner encountered.
func (s *Scanner) Err() error {
	return s.err
}
