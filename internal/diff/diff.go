// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diff renders textual diffs between two versions of a file's
// contents, used by tools that report what an edit changed.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffType classifies a DiffLine.
type DiffType int

// Allowed DiffType values.
const (
	DiffEqual DiffType = iota
	DiffInsert
	DiffDelete
)

// DiffLine is one line of a Lines result.
type DiffLine struct {
	Type    DiffType
	Content string
}

// Unified renders a compact +/- diff between a and b: unchanged text is
// omitted, inserted lines are prefixed with +, deleted lines with -.
func Unified(a, b string) string {
	dmp := diffmatchpatch.New()
	ca, cb, lineArray := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lineArray)

	var out strings.Builder
	for _, d := range diffs {
		prefix := ""
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix + line)
		}
	}
	return out.String()
}

// Lines renders a by the line diff between a and b.
func Lines(a, b string) []DiffLine {
	dmp := diffmatchpatch.New()
	ca, cb, lineArray := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lineArray)

	var lines []DiffLine
	kindOf := func(t diffmatchpatch.Operation) DiffType {
		switch t {
		case diffmatchpatch.DiffInsert:
			return DiffInsert
		case diffmatchpatch.DiffDelete:
			return DiffDelete
		default:
			return DiffEqual
		}
	}
	for _, d := range diffs {
		kind := kindOf(d.Type)
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			lines = append(lines, DiffLine{Type: kind, Content: strings.TrimSuffix(line, "\n")})
		}
	}
	return lines
}

// GenerateDiff renders a unified diff between old and new content along
// with their line counts. filename is accepted for API symmetry with
// callers that want to label the diff, but isn't embedded in the output.
func GenerateDiff(old, newText, filename string) (string, int, int) {
	if old == newText {
		return "", strings.Count(old, "\n") + 1, strings.Count(newText, "\n") + 1
	}
	return Unified(old, newText), strings.Count(old, "\n") + 1, strings.Count(newText, "\n") + 1
}
