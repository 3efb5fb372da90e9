package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/freedl-go/internal/domain"
)

var pickerFormats = []domain.Format{
	{ID: "22", Label: "22 - 720p - mp4"},
	{ID: "18", Label: "18 - 360p - mp4"},
	{ID: "140", Label: "140 - N/Ap - m4a"},
}

func pick(t *testing.T, input string) (domain.Format, string, error) {
	t.Helper()
	var out bytes.Buffer
	f, err := pickFormat(bufio.NewReader(strings.NewReader(input)), &out, pickerFormats)
	return f, out.String(), err
}

func TestPickFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "default on enter", input: "\n", expected: "22"},
		{name: "default on eof", input: "", expected: "22"},
		{name: "by number", input: "2\n", expected: "18"},
		{name: "by number without newline", input: "3", expected: "140"},
		{name: "by format id", input: "140\n", expected: "140"},
		{name: "retry after invalid", input: "9\n2\n", expected: "18"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, err := pick(t, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f.ID)
		})
	}
}

func TestPickFormat_ListsNumberedLabels(t *testing.T) {
	_, out, err := pick(t, "\n")
	require.NoError(t, err)
	assert.Contains(t, out, "  1) 22 - 720p - mp4\n")
	assert.Contains(t, out, "  3) 140 - N/Ap - m4a\n")
	assert.Contains(t, out, "Select a format [1]: ")
}

func TestPickFormat_GivesUp(t *testing.T) {
	_, _, err := pick(t, "x\ny\nz\n")
	require.Error(t, err)
	assert.Equal(t, "no valid format selected", err.Error())

	_, _, err = pick(t, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid selection")
}

func TestPickFormat_Empty(t *testing.T) {
	_, err := pickFormat(bufio.NewReader(strings.NewReader("\n")), &bytes.Buffer{}, nil)
	assert.Error(t, err)
}
