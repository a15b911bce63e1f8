package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/lacquerai/rankview/internal/datagen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCountries(t *testing.T, rows int) string {
	t.Helper()

	df, err := datagen.Countries(datagen.CountryOptions{Rows: rows, Seed: datagen.DefaultSeed})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "countries.csv")
	require.NoError(t, datagen.WriteFile(df, path))
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	path := writeCountries(t, 40)
	outDir := filepath.Join(t.TempDir(), "charts")

	output, err := executeCommand(rootCmd, "analyze", path, "--out-dir", outDir)
	require.NoError(t, err)

	assert.Contains(t, output, "=== Data info ===")
	assert.Contains(t, output, "Rows:    40")
	assert.Contains(t, output, "=== Mean LifeExpectancy by Country ===")
	assert.NotContains(t, output, "=== Mean GDP by Country ===")
	assert.Contains(t, output, "Chart saved to")

	assert.FileExists(t, filepath.Join(outDir, "mean-gdp-by-country.png"))
	assert.FileExists(t, filepath.Join(outDir, "gdp-vs-life-expectancy.png"))
}

func TestAnalyzeCommandJSON(t *testing.T) {
	path := writeCountries(t, 25)

	output, err := executeCommand(rootCmd, "analyze", path, "--no-charts", "--value", "Population", "--output", "json")
	require.NoError(t, err)

	var report struct {
		Source      string `json:"source"`
		Rows        int    `json:"rows"`
		Columns     int    `json:"columns"`
		ValueColumn string `json:"value_column"`
		GroupMeans  []struct {
			Key  string  `json:"key"`
			Mean float64 `json:"mean"`
		} `json:"group_means"`
		ReportColumn string `json:"report_column"`
		ReportMeans  []struct {
			Key  string  `json:"key"`
			Mean float64 `json:"mean"`
		} `json:"report_means"`
		Charts []string `json:"charts"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &report))

	assert.Equal(t, "countries.csv", report.Source)
	assert.Equal(t, 25, report.Rows)
	assert.Equal(t, len(datagen.CountryColumns), report.Columns)
	assert.Equal(t, "Population", report.ValueColumn)
	assert.NotEmpty(t, report.GroupMeans)
	assert.Empty(t, report.Charts)
	for _, m := range report.GroupMeans {
		assert.Greater(t, m.Mean, 1e6)
	}
	assert.Equal(t, "LifeExpectancy", report.ReportColumn)
	require.NotEmpty(t, report.ReportMeans)
	for _, m := range report.ReportMeans {
		assert.GreaterOrEqual(t, m.Mean, 50.0)
		assert.Less(t, m.Mean, 90.0)
	}
}

func TestAnalyzeCommandReportValue(t *testing.T) {
	path := writeCountries(t, 10)

	output, err := executeCommand(rootCmd, "analyze", path, "--no-charts", "--report-value", "Population")
	require.NoError(t, err)
	assert.Contains(t, output, "=== Mean Population by Country ===")

	_, err = executeCommand(rootCmd, "analyze", path, "--no-charts", "--report-value", "Country")
	assert.ErrorContains(t, err, "not numeric")
}

func TestAnalyzeCommandErrors(t *testing.T) {
	path := writeCountries(t, 10)

	_, err := executeCommand(rootCmd, "analyze", path, "--no-charts", "--group-by", "Region")
	assert.ErrorContains(t, err, "column(s) not found: Region")

	_, err = executeCommand(rootCmd, "analyze", path, "--no-charts", "--value", "Country")
	assert.ErrorContains(t, err, "not numeric")

	_, err = executeCommand(rootCmd, "analyze", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorContains(t, err, "loading")
}
