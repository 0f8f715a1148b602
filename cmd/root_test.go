package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["serve"])
	assert.True(t, names["cache"])
}

func TestRunRequiresFlags(t *testing.T) {
	for _, name := range []string{"type", "city"} {
		flag := runCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Contains(t, flag.Annotations, cobra.BashCompOneRequiredFlag, name)
	}
}
