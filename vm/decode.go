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

// Instructions are a leading opcode byte followed by inline immediates:
// halves (2 bytes) for short operands and offsets, words (8 bytes) for
// pointer-sized immediates — spec.md §6's bytecode file format. fetchHalf
// and fetchWord advance m.IP past what they read, mirroring the source
// decoder's "cursor that only moves forward" discipline.

func (m *VM) fetchOp() Op {
	op := Op(m.Code[m.IP])
	m.IP++
	return op
}

func (m *VM) fetchHalf() int16 {
	v := int16(binary.LittleEndian.Uint16(m.Code[m.IP:]))
	m.IP += 2
	return v
}

func (m *VM) fetchWord() int64 {
	v := int64(binary.LittleEndian.Uint64(m.Code[m.IP:]))
	m.IP += 8
	return v
}

func (m *VM) fetchString(length int16) string {
	s := string(m.Code[m.IP : m.IP+int(length)])
	m.IP += int(length)
	return s
}
