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

// Package runtimedata builds small, hand-written RuntimeData bundles for
// cmd/treerun's demo mode and for package tests, standing in for the
// compiled output a real grammar/code generator would produce (spec.md §1
// places that generator out of scope; spec.md §6 describes only the shape
// of the `rtd` it hands to initProgram).
package runtimedata

import "github.com/ianlewis/treerw"

// Demo returns a RuntimeData bundle with no grammar language elements
// beyond the five fixed scalar IDs, suitable for running hand-assembled
// bytecode (vm.Builder) that only exercises arithmetic, string, and
// container opcodes — the pieces of the machine that do not need a real
// parser-generated pattern/replacement table.
func Demo() *treerw.RuntimeData {
	return &treerw.RuntimeData{
		LangElInfo: []treerw.LangElInfo{
			{}, // 0 unused
			{Name: "ptr"},
			{Name: "bool"},
			{Name: "int"},
			{Name: "str"},
			{Name: "stream"},
		},
		AnyID:     0,
		CodeEntry: map[string]int{},
	}
}
