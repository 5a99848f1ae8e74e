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

import "fmt"

// AssertionError reports a broken runtime invariant: writing to a tree with
// Refs > 1, an unknown generic container kind, attempting to copy a scalar
// tree variant, and similar conditions that spec.md §7 classifies as
// compiler bugs rather than recoverable failures. The runtime checks the
// assumption; making it hold is the code generator's job.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string {
	return "treerw: assertion failed: " + e.Msg
}

// FatalError reports a type/shape violation (for example, an OPEN_FILE mode
// other than "r" or "w"). Like AssertionError, it is not meant to be
// recovered from by a running program; the host driver decides whether to
// terminate the process.
type FatalError struct {
	Op  string
	Msg string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("treerw: %s: %s", e.Op, e.Msg)
}

// assertWritable panics with an *AssertionError if t is shared. Write
// opcodes must split their target before calling any of the Set* helpers;
// this is the runtime-checked half of that proof obligation (spec.md
// §4.4.3).
func assertWritable(t *Tree) {
	if t == nil {
		return
	}
	if t.Refs != 1 {
		panic(&AssertionError{Msg: fmt.Sprintf("write to tree id=%d with refs=%d", t.ID, t.Refs)})
	}
}
