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

import "testing"

func TestRefDerefNilKid(t *testing.T) {
	t.Parallel()
	r := &Ref{}
	if r.Deref() != nil {
		t.Fatalf("Deref of a Ref with a nil Kid did not return nil")
	}
}

func TestRefSetValuePropagatesAcrossSharedKid(t *testing.T) {
	t.Parallel()
	kid := &Kid{Tree: token(testWord, "old")}
	r1 := &Ref{Kid: kid}
	r2 := &Ref{Kid: kid, Next: r1}

	newVal := token(testWord, "new")
	SetValue(r2, newVal)

	if r1.Deref() != newVal {
		t.Fatalf("SetValue via r2 did not propagate to r1, which shares the same Kid")
	}
	if kid.Tree != newVal {
		t.Fatalf("SetValue did not update the underlying Kid")
	}
}
