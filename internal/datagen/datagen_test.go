package datagen

import (
	"bytes"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/lacquerai/rankview/internal/dataset"
	"github.com/lacquerai/rankview/internal/stats"
	_ "github.com/lacquerai/rankview/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountries(t *testing.T) {
	df, err := Countries(CountryOptions{Rows: 50, Seed: DefaultSeed})
	require.NoError(t, err)

	assert.Equal(t, 50, df.Nrow())
	assert.Equal(t, CountryColumns, df.Names())

	allowed := map[string]bool{}
	for _, c := range DefaultCountries {
		allowed[c] = true
	}

	for _, row := range df.Records()[1:] {
		assert.True(t, allowed[row[0]], "unexpected country %q", row[0])

		year, err := strconv.Atoi(row[1])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, year, 2000)
		assert.LessOrEqual(t, year, 2024)

		pop, err := strconv.Atoi(row[2])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pop, 1_000_000)
		assert.Less(t, pop, 150_000_000)

		gdp, err := strconv.Atoi(row[3])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, gdp, 10_000)
		assert.Less(t, gdp, 1_000_000)

		life, err := strconv.ParseFloat(row[4], 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, life, 50.0)
		assert.LessOrEqual(t, life, 90.0)
	}
}

func TestCountriesDeterministic(t *testing.T) {
	a, err := Countries(CountryOptions{Rows: 10, Seed: 7})
	require.NoError(t, err)
	b, err := Countries(CountryOptions{Rows: 10, Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, a.Records(), b.Records())
}

func TestCountriesRejectsZeroRows(t *testing.T) {
	_, err := Countries(CountryOptions{Rows: 0})
	assert.Error(t, err)
}

func TestPersonalities(t *testing.T) {
	df, err := Personalities([]string{"Korea", "Japan", "Brazil"}, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, df.Nrow())
	assert.Equal(t, 1+len(dataset.Vocabulary), df.Ncol())

	for _, row := range df.Records()[1:] {
		sum := 0.0
		for _, cell := range row[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			require.NoError(t, err)
			assert.Greater(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 100, sum, 0.1)
	}

	_, err = Personalities(nil, 1)
	assert.Error(t, err)
}

func TestPersonalitiesLoadAsDataset(t *testing.T) {
	df, err := Personalities([]string{"Korea", "Japan"}, 3)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(df, &buf))

	table, err := dataset.LoadBytes(buf.Bytes(), "generated.csv")
	require.NoError(t, err)
	assert.Equal(t, dataset.Vocabulary, table.Metrics())

	present, err := dataset.ValidateSchema(table, "", dataset.Vocabulary)
	require.NoError(t, err)
	assert.Len(t, present, 16)
}

func TestCountriesRoundTrip(t *testing.T) {
	df, err := Countries(CountryOptions{Rows: DefaultRows, Seed: DefaultSeed})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "countries.csv")
	require.NoError(t, WriteFile(df, path))

	loaded, err := stats.ReadFrameFile(path)
	require.NoError(t, err)

	assert.Equal(t, df.Nrow(), loaded.Nrow())
	assert.Equal(t, df.Names(), loaded.Names())

	means, err := stats.GroupMeans(loaded, "Country", "LifeExpectancy")
	require.NoError(t, err)
	assert.NotEmpty(t, means)
}
