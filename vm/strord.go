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
	"encoding/binary"

	"github.com/ianlewis/treerw"
)

// execStrOrd reads a fixed-width integer out of a string's byte
// representation at a given offset, signed or unsigned, 8/16/32 bits —
// STR_UORD8/STR_SORD8/etc. (spec.md §4.4.2's string-ops family), used by
// token data that packs binary fields into STR-variant trees.
func (m *VM) execStrOrd(op Op) {
	idx := m.Pop().Int
	s := m.Pop().Tree
	b := []byte(s.StrVal)

	var v int64
	switch op {
	case OpStrUord8:
		v = int64(b[idx])
	case OpStrSord8:
		v = int64(int8(b[idx]))
	case OpStrUord16:
		v = int64(binary.LittleEndian.Uint16(b[idx:]))
	case OpStrSord16:
		v = int64(int16(binary.LittleEndian.Uint16(b[idx:])))
	case OpStrUord32:
		v = int64(binary.LittleEndian.Uint32(b[idx:]))
	case OpStrSord32:
		v = int64(int32(binary.LittleEndian.Uint32(b[idx:])))
	default:
		panic(&treerw.AssertionError{Msg: "execStrOrd: not a str-ord opcode"})
	}

	treerw.Downref(m.Prog, s)
	m.Push(IntSlot(v))
}
