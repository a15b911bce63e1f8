// Package datagen produces seeded synthetic tables for demos and tests.
package datagen

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/lacquerai/rankview/internal/dataset"
)

// DefaultSeed and DefaultRows match the reference data set used in the docs.
const (
	DefaultSeed = 42
	DefaultRows = 100
)

// DefaultCountries is the pool countries are drawn from.
var DefaultCountries = []string{"Korea", "USA", "Japan", "Germany", "France"}

// SampleCountries seeds personality tables.
var SampleCountries = []string{
	"Argentina", "Australia", "Brazil", "Canada", "China", "Egypt",
	"France", "Germany", "India", "Indonesia", "Italy", "Japan",
	"Kenya", "Korea", "Mexico", "Netherlands", "Nigeria", "Poland",
	"Spain", "Sweden", "Turkey", "UK", "USA", "Vietnam",
}

// CountryColumns is the header of a generated countries table.
var CountryColumns = []string{"Country", "Year", "Population", "GDP", "LifeExpectancy"}

// CountryOptions configures Countries.
type CountryOptions struct {
	Rows      int
	Seed      int64
	Countries []string
}

// Countries returns a table of random country statistics. Rows are drawn
// independently: Year in [2000, 2024], Population in [1e6, 150e6), GDP in
// [10000, 1e6) and LifeExpectancy uniform in [50, 90) rounded to one decimal.
func Countries(opts CountryOptions) (dataframe.DataFrame, error) {
	if opts.Rows <= 0 {
		return dataframe.DataFrame{}, fmt.Errorf("rows must be positive, got %d", opts.Rows)
	}
	pool := opts.Countries
	if len(pool) == 0 {
		pool = DefaultCountries
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	records := make([][]string, 0, opts.Rows+1)
	records = append(records, CountryColumns)
	for i := 0; i < opts.Rows; i++ {
		life := math.Round((50+rng.Float64()*40)*10) / 10
		records = append(records, []string{
			pool[rng.Intn(len(pool))],
			strconv.Itoa(2000 + rng.Intn(25)),
			strconv.Itoa(1_000_000 + rng.Intn(149_000_000)),
			strconv.Itoa(10_000 + rng.Intn(990_000)),
			strconv.FormatFloat(life, 'f', 1, 64),
		})
	}

	return fromRecords(records)
}

// Personalities returns one row per country with a percentage for each MBTI
// type. Each row sums to 100 up to rounding.
func Personalities(countries []string, seed int64) (dataframe.DataFrame, error) {
	if len(countries) == 0 {
		return dataframe.DataFrame{}, errors.New("at least one country is required")
	}

	rng := rand.New(rand.NewSource(seed))

	header := append([]string{dataset.DefaultIdentifier}, dataset.Vocabulary...)
	records := make([][]string, 0, len(countries)+1)
	records = append(records, header)

	weights := make([]float64, len(dataset.Vocabulary))
	for _, country := range countries {
		total := 0.0
		for i := range weights {
			weights[i] = 0.2 + rng.Float64()
			total += weights[i]
		}

		row := make([]string, 0, len(header))
		row = append(row, country)
		for _, w := range weights {
			row = append(row, strconv.FormatFloat(w/total*100, 'f', 2, 64))
		}
		records = append(records, row)
	}

	return fromRecords(records)
}

// WriteCSV writes df with a header row.
func WriteCSV(df dataframe.DataFrame, w io.Writer) error {
	return df.WriteCSV(w)
}

// WriteFile writes df as CSV to path.
func WriteFile(df dataframe.DataFrame, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteCSV(df, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func fromRecords(records [][]string) (dataframe.DataFrame, error) {
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return df, fmt.Errorf("building table: %w", df.Err)
	}
	return df, nil
}
