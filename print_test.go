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
	"strings"
	"testing"
)

// TestPrintXMLElidesListSpine checks spec.md §4.6's XML-printer rule for
// "repeat"/"list" productions: the spine nodes themselves (root, r2, r3,
// ainner in buildSpineTree, all testSeq == List:true) must not appear as
// elements of their own; the printer recurses straight through them into
// the actual content (the pair wrapper and the word tokens).
func TestPrintXMLElidesListSpine(t *testing.T) {
	t.Parallel()
	p := testProgram()
	root, _, _, _ := buildSpineTree()

	var buf strings.Builder
	Print(p, &buf, root, PrintXML)

	want := "<pair><word>ax</word></pair><word>b</word><word>c</word>"
	if buf.String() != want {
		t.Fatalf("Print(XML) = %q, want %q", buf.String(), want)
	}
}

// TestPrintXMLSkeletonElidesListSpine is the same check in skeleton mode,
// which self-closes leaves instead of printing token text.
func TestPrintXMLSkeletonElidesListSpine(t *testing.T) {
	t.Parallel()
	p := testProgram()
	root, _, _, _ := buildSpineTree()

	var buf strings.Builder
	Print(p, &buf, root, PrintXMLSkeleton)

	want := "<pair><word/></pair><word/><word/>"
	if buf.String() != want {
		t.Fatalf("Print(XMLSkeleton) = %q, want %q", buf.String(), want)
	}
}

// TestPrintXMLNonSpineNodeIsNotElided confirms the elision is keyed off
// LangElInfo's Repeat/List flags, not applied blanket to every
// non-terminal: testPair carries neither flag and must still print its own
// element.
func TestPrintXMLNonSpineNodeIsNotElided(t *testing.T) {
	t.Parallel()
	p := testProgram()
	tree := node(testPair, token(testWord, "x"))

	var buf strings.Builder
	Print(p, &buf, tree, PrintXML)

	want := "<pair><word>x</word></pair>"
	if buf.String() != want {
		t.Fatalf("Print(XML) = %q, want %q", buf.String(), want)
	}
}
