package verifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rmello/flagforge/internal/verifier"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "flag{abc}", "flag{abc}"},
		{"surrounding whitespace", "  flag{abc}\n", "flag{abc}"},
		{"uppercase", "FLAG{AbC}", "flag{abc}"},
		{"tabs", "\tflag{x}\t", "flag{x}"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, verifier.Normalize(tt.input))
		})
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, verifier.Matches("flag{w1n}", "flag{w1n}"))
	assert.True(t, verifier.Matches("flag{w1n}", "  FLAG{W1N}  "))
	assert.False(t, verifier.Matches("flag{w1n}", "flag{w1n}!"))
	assert.False(t, verifier.Matches("flag{w1n}", ""))
	// Inner whitespace is significant, only the edges are trimmed.
	assert.False(t, verifier.Matches("flag{a b}", "flag{ab}"))
}

func TestValid(t *testing.T) {
	assert.True(t, verifier.Valid("flag{x}"))
	assert.False(t, verifier.Valid(""))
	assert.False(t, verifier.Valid("   \n"))
}
