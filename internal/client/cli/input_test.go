package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("  hello world  \n"))

	got, err := GetSimpleText(reader, "Say something", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Contains(t, out.String(), "Say something")
}

func TestGetSimpleText_EOFWithPartialLine(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("partial"))

	got, err := GetSimpleText(reader, "Prompt", &out)
	require.NoError(t, err)
	assert.Equal(t, "partial", got)
}

func TestGetAmount(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("10.50\n"))

	got, err := GetAmount(reader, "Cost", &out)
	require.NoError(t, err)
	assert.Equal(t, 10.5, got)
}

func TestGetAmount_Invalid(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("ten\n"))

	_, err := GetAmount(reader, "Cost", &out)
	assert.Error(t, err)
}

func TestGetYesNo(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"whatever\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		reader := bufio.NewReader(strings.NewReader(tt.input))
		got, err := GetYesNo(reader, "Sure", &out)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestGetPassword_UsesSeam(t *testing.T) {
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	t.Cleanup(func() { readPassword = orig })

	var out bytes.Buffer
	got, err := GetPassword("Password", &out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
	assert.Contains(t, out.String(), "Password")
}
