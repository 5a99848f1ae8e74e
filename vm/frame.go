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

// Call-frame slot offsets relative to a frame's base pointer, the layout
// spec.md §4.4.1 gives:
//
//	high addr  arg_1 .. arg_n  return_value (FR_RV)  return_ip (FR_RI)  return_frame (FR_RF)
//	low  addr  locals...
const (
	FrRF = 0 // saved frame pointer
	FrRI = 1 // saved instruction pointer
	FrRV = 2 // return value slot
	FrAA = 3 // number of frame slots before the arguments begin
)

// User-iterator frames omit the return-value slot (YIELD suspends the
// iterator rather than returning a value to a caller expecting one) and add
// a saved iframe pointer so nested user iterators compose.
const (
	IfrRF = 0 // saved frame pointer
	IfrRI = 1 // saved instruction pointer
	IfrIF = 2 // saved iframe pointer
	IfrAA = 3
)
