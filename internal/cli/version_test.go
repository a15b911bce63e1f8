package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(rootCmd, "version")
	require.NoError(t, err)
	assert.Equal(t, Version, output)
}

func TestVersionCommandJSON(t *testing.T) {
	output, err := executeCommand(rootCmd, "version", "--output", "json")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(output), &info))
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GoVersion, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestVersionCommandYAML(t *testing.T) {
	output, err := executeCommand(rootCmd, "version", "--output", "yaml")
	require.NoError(t, err)
	assert.Contains(t, output, "version: dev")
	assert.Contains(t, output, "go_version:")
}

func TestVersionCommandVerbose(t *testing.T) {
	output, err := executeCommand(rootCmd, "version", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, output, "rankview dev")
	assert.Contains(t, output, "platform:")
}

func TestBuildVariables(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Commit)
	assert.NotEmpty(t, Date)
	assert.NotEmpty(t, GoVersion)
	assert.Contains(t, GoVersion, "go")
}
