package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCommand_HasSubcommands verifies every pipeline stage is
// registered on the root command.
func TestRootCommand_HasSubcommands(t *testing.T) {
	require.NotNil(t, rootCmd, "Root command should exist")

	expected := []string{
		"create",
		"platforms",
		"roster",
		"games",
		"normalize",
		"relations",
		"scores",
		"coverage",
	}

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, names[name], "%s subcommand should exist", name)
	}
}

// TestRootCommand_Help verifies help text includes usage.
func TestRootCommand_Help(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"--help"})
	err := rootCmd.Execute()
	require.NoError(t, err)

	helpText := buf.String()
	assert.Contains(t, helpText, "gdb", "Help should mention gdb")
	assert.Contains(t, helpText, "Wikidata")
	assert.Contains(t, helpText, "Available Commands")
}

// TestPlatformsCommand_Subcommands verifies the platforms group.
func TestPlatformsCommand_Subcommands(t *testing.T) {
	cmd := getPlatformsCmd()

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["discover"])
	assert.True(t, names["major"])
	assert.True(t, names["enrich"])
}

// TestRosterCommand_Flags verifies the roster command's flags.
func TestRosterCommand_Flags(t *testing.T) {
	cmd := getRosterCmd()

	for _, name := range []string{"platform", "reset", "limit", "all"} {
		assert.NotNil(t, cmd.Flags().Lookup(name),
			"--%s flag should exist", name)
	}
}

// TestCoverageCommand_OutputFlag verifies the coverage export flag.
func TestCoverageCommand_OutputFlag(t *testing.T) {
	cmd := getCoverageCmd()

	flag := cmd.Flags().Lookup("output")
	require.NotNil(t, flag, "--output flag should exist")
	assert.Equal(t, "coverage.sqlite", flag.DefValue)
}

// TestNormalizeCommand_NicheFlag verifies the registry scope flag.
func TestNormalizeCommand_NicheFlag(t *testing.T) {
	cmd := getNormalizeCmd()
	assert.NotNil(t, cmd.Flags().Lookup("include-niche"))
}
