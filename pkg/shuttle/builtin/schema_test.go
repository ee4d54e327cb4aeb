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
package builtin

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/bridge/pkg/shuttle"
)

// schemaCase defines the ceiling constraints for a tool's schema and description.
// Ceilings are set generously above a reasonable baseline to catch gross bloat
// without being overly prescriptive.
type schemaCase struct {
	name           string
	tool           shuttle.Tool
	maxSchemaBytes int
	maxDescChars   int
	minDescWords   int
}

// TestToolSchemaSize is a regression guard against schema/description bloat
// across the builtin tool set exposed to the LLM.
func TestToolSchemaSize(t *testing.T) {
	cases := []schemaCase{
		{
			name:           "file_write",
			tool:           NewFileWriteTool(""),
			maxSchemaBytes: 800,
			maxDescChars:   400,
			minDescWords:   10,
		},
		{
			name:           "file_read",
			tool:           NewFileReadTool(""),
			maxSchemaBytes: 800,
			maxDescChars:   400,
			minDescWords:   10,
		},
		{
			name:           "run_command",
			tool:           NewShellExecuteTool(""),
			maxSchemaBytes: 1200,
			maxDescChars:   600,
			minDescWords:   10,
		},
	}

	totalSchemaBytes := 0
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.tool.Name(), "unexpected tool name")

			schemaBytes, err := json.Marshal(tc.tool.InputSchema())
			require.NoError(t, err, "InputSchema must be JSON-serializable")
			schemaSize := len(schemaBytes)
			assert.LessOrEqual(t, schemaSize, tc.maxSchemaBytes,
				"InputSchema for %q is %d bytes (limit %d) — schema grew, check for added properties",
				tc.name, schemaSize, tc.maxSchemaBytes)

			desc := tc.tool.Description()
			descChars := utf8.RuneCountInString(desc)
			assert.LessOrEqual(t, descChars, tc.maxDescChars,
				"Description for %q is %d chars (limit %d) — description grew, trim it",
				tc.name, descChars, tc.maxDescChars)

			descWords := len(strings.Fields(desc))
			assert.GreaterOrEqual(t, descWords, tc.minDescWords,
				"Description for %q has only %d words (min %d) — too short to be useful",
				tc.name, descWords, tc.minDescWords)
		})
		totalSchemaBytes += len(func() []byte {
			b, _ := json.Marshal(tc.tool.InputSchema())
			return b
		}())
	}

	assert.Less(t, totalSchemaBytes, 4000,
		"total InputSchema bytes across all core tools is %d — over budget", totalSchemaBytes)
}
