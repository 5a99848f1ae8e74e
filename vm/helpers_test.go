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
	"bytes"

	"github.com/ianlewis/treerw"
	"github.com/ianlewis/treerw/internal/runtimedata"
)

// newTestVM wires code up to a fresh Program built from the demo
// RuntimeData (five scalar variants, no grammar), and a buffer standing in
// for the program's stdout.
func newTestVM(code []byte) (*VM, *bytes.Buffer) {
	var buf bytes.Buffer
	prog := treerw.NewProgram(runtimedata.Demo())
	return New(prog, code, &buf), &buf
}
