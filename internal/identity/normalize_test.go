// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{name: "ascii", a: "Lukz", b: "lUKZ"},
		{name: "latin umlaut", a: "Ärger", b: "ärger"},
		{name: "decomposed", a: "A\u0308rger", b: "ärger"},
		{name: "sharp s", a: "Straße", b: "STRASSE"},
		{name: "cyrillic", a: "Пётр", b: "ПЁТР"},
		{name: "greek sigma", a: "ΣΊΣΥΦΟΣ", b: "σίσυφος"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, normalizeKey(tt.a), normalizeKey(tt.b))
		})
	}

	assert.NotEqual(t, normalizeKey("lukz"), normalizeKey("luke"))
	assert.Empty(t, normalizeKey(""))
}
