// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// normalizeKey returns the form stored in the normalized_* columns and
// compared by every case-insensitive lookup: NFC composed, then Unicode
// case folded. Folding happens here rather than in SQL because SQLite's
// LOWER only folds ASCII.
func normalizeKey(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
