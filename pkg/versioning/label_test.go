package versioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncrementLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"simple", "v1.0", "v2.0"},
		{"minor discarded", "v2.3", "v3.0"},
		{"no prefix", "3.1", "v4.0"},
		{"whitespace", " v4.0 ", "v5.0"},
		{"garbage falls back", "final-draft", "v2.0"},
		{"empty falls back", "", "v2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IncrementLabel(tt.label))
		})
	}
}

func TestDecrementLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"simple", "v3.0", "v2.0"},
		{"floor at one", "v1.0", "v1.0"},
		{"below floor stays", "v0.9", "v1.0"},
		{"garbage floors", "draft", "v1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecrementLabel(tt.label))
		})
	}
}
