package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeMessage_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	_, err := SanitizeMessage(strings.Repeat("a", limit))
	assert.NoError(t, err)

	_, err = SanitizeMessage(strings.Repeat("a", limit+1))
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestSanitizeMessage_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "bold column A", "bold column A"},
		{"Safe Controls", "Line1\nLine2\tTabbed", "Line1\nLine2\tTabbed"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Surrounding Space", "  sim 1 \n", "sim 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeMessage(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeMessage_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")

	_, err := SanitizeMessage("12345678901")
	assert.ErrorIs(t, err, ErrInputTooLarge)

	_, err = SanitizeMessage("12345")
	assert.NoError(t, err)
}

func TestSanitizeMessage_Rejects(t *testing.T) {
	_, err := SanitizeMessage("\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98")
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	_, err = SanitizeMessage(" \x07 ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}
