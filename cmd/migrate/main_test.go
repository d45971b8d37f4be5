package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args   []string
		action string
		steps  int
	}{
		{nil, "up", 0},
		{[]string{"up"}, "up", 0},
		{[]string{"down", "2"}, "down", 2},
		{[]string{"version", "9"}, "version", 0},
	}
	for _, tt := range tests {
		action, steps, err := parseArgs(tt.args)
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.action, action)
		assert.Equal(t, tt.steps, steps)
	}
}

func TestParseArgs_Invalid(t *testing.T) {
	_, _, err := parseArgs([]string{"sideways"})
	assert.ErrorContains(t, err, "unknown action")

	_, _, err = parseArgs([]string{"down", "-1"})
	assert.ErrorContains(t, err, "non-negative")
}
