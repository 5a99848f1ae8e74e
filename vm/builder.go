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

import "encoding/binary"

// Builder hand-assembles a code buffer for tests, standing in for the
// compiler front end spec.md §1 puts out of scope.
type Builder struct {
	code []byte
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Op appends a bare opcode with no immediates.
func (b *Builder) Op(op Op) *Builder {
	b.code = append(b.code, byte(op))
	return b
}

// Half appends op followed by a 2-byte little-endian immediate.
func (b *Builder) Half(op Op, v int16) *Builder {
	b.code = append(b.code, byte(op))
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(v))
	b.code = append(b.code, buf[:]...)
	return b
}

// Word appends op followed by an 8-byte little-endian immediate.
func (b *Builder) Word(op Op, v int64) *Builder {
	b.code = append(b.code, byte(op))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	b.code = append(b.code, buf[:]...)
	return b
}

// Str appends op, a 2-byte length half, then the literal string bytes —
// LOAD_STR's encoding.
func (b *Builder) Str(op Op, s string) *Builder {
	b.Half(op, int16(len(s)))
	b.code = append(b.code, s...)
	return b
}

// Code returns the assembled buffer.
func (b *Builder) Code() []byte {
	return b.code
}
