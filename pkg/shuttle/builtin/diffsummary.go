// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package builtin

import "github.com/teradata-labs/bridge/internal/diff"

// unifiedDiff renders a compact +/- diff between oldText and newText so
// edit_file/multi_edit can attach what changed to a Result without
// altering their write contract.
func unifiedDiff(oldText, newText string) string {
	return diff.Unified(oldText, newText)
}
