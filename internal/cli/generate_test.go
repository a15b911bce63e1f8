package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/lacquerai/rankview/internal/datagen"
	"github.com/lacquerai/rankview/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCountriesToStdout(t *testing.T) {
	output, err := executeCommand(rootCmd, "generate", "--rows", "3", "--seed", "7")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(datagen.CountryColumns, ","), lines[0])

	again, err := executeCommand(rootCmd, "generate", "--rows", "3", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, output, again)
}

func TestGeneratePersonalitiesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mbti.csv")

	output, err := executeCommand(rootCmd, "generate", "--kind", "personalities", "--countries", "Korea,Japan,Chile", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, output, "Wrote 3 rows to")

	table, err := dataset.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Nrow())
	assert.Equal(t, dataset.Vocabulary, table.Metrics())
}

func TestGenerateDefaultCountries(t *testing.T) {
	output, err := executeCommand(rootCmd, "generate", "--kind", "personalities")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	assert.Len(t, lines, len(datagen.SampleCountries)+1)
}

func TestGenerateErrors(t *testing.T) {
	_, err := executeCommand(rootCmd, "generate", "--kind", "planets")
	assert.ErrorContains(t, err, `unknown table kind "planets"`)

	_, err = executeCommand(rootCmd, "generate", "--rows", "0")
	assert.ErrorContains(t, err, "rows must be positive")
}
