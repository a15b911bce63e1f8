package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Table is a loaded CSV table. Every cell is kept as text; metric columns
// from the vocabulary are coerced to scores once, at load time.
type Table struct {
	Source string

	frame   dataframe.DataFrame
	metrics []string
	scores  map[string][]Score
}

// LoadFile reads the CSV file at path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()

	return Load(f, filepath.Base(path))
}

// LoadBytes reads a CSV table held in memory, such as an uploaded file.
func LoadBytes(data []byte, source string) (*Table, error) {
	return Load(bytes.NewReader(data), source)
}

// Load reads a CSV table with a header row from r. A leading UTF-8 byte
// order mark is dropped and repeated header names are rejected.
func Load(r io.Reader, source string) (*Table, error) {
	data, err := io.ReadAll(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	if err := checkHeader(data); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, &LoadError{Source: source, Err: df.Err}
	}

	if df.Ncol() == 0 {
		return nil, &LoadError{Source: source, Err: errors.New("no columns found")}
	}
	if df.Nrow() == 0 {
		return nil, &LoadError{Source: source, Err: errors.New("no data rows found")}
	}

	t := &Table{
		Source: source,
		frame:  df,
		scores: make(map[string][]Score),
	}

	// Coerce every vocabulary column eagerly so a table is fully typed once
	// it leaves Load. Columns that are entirely missing are kept.
	for _, name := range Vocabulary {
		if !t.HasColumn(name) {
			continue
		}
		scores := Coerce(df.Col(name).Records())
		t.metrics = append(t.metrics, name)
		t.scores[name] = scores

		if ValidCount(scores) == 0 {
			log.Debug().
				Str("source", source).
				Str("metric", name).
				Msg("Metric column has no numeric values")
		}
	}

	log.Debug().
		Str("source", source).
		Int("rows", df.Nrow()).
		Int("columns", df.Ncol()).
		Strs("metrics", t.metrics).
		Msg("Table loaded")

	return t, nil
}

// checkHeader fails when a header name appears more than once, before the
// dataframe reader renames the copies.
func checkHeader(data []byte) error {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		// Empty or malformed input is reported by the dataframe reader.
		return nil
	}

	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if seen[name] {
			return fmt.Errorf("duplicate column %q in header", name)
		}
		seen[name] = true
	}
	return nil
}

// Names returns the column headers in file order.
func (t *Table) Names() []string {
	return t.frame.Names()
}

// Nrow returns the number of data rows.
func (t *Table) Nrow() int {
	return t.frame.Nrow()
}

// Ncol returns the number of columns.
func (t *Table) Ncol() int {
	return t.frame.Ncol()
}

// HasColumn reports whether a column with exactly this name exists.
func (t *Table) HasColumn(name string) bool {
	for _, n := range t.frame.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Metrics returns the vocabulary columns present in the table, in
// vocabulary order.
func (t *Table) Metrics() []string {
	out := make([]string, len(t.metrics))
	copy(out, t.metrics)
	return out
}

// Values returns the raw text of a column.
func (t *Table) Values(column string) ([]string, error) {
	if !t.HasColumn(column) {
		return nil, &SchemaError{
			Source:  t.Source,
			Message: fmt.Sprintf("column %q not found", column),
			Columns: t.Names(),
		}
	}
	return t.frame.Col(column).Records(), nil
}

// Scores returns the coerced values of a column. Vocabulary columns come from
// the load-time coercion; any other column is coerced on demand.
func (t *Table) Scores(column string) ([]Score, error) {
	if scores, ok := t.scores[column]; ok {
		return scores, nil
	}

	raw, err := t.Values(column)
	if err != nil {
		return nil, err
	}
	return Coerce(raw), nil
}

// Preview returns the header followed by at most n data rows.
func (t *Table) Preview(n int) [][]string {
	records := t.frame.Records()
	if n >= 0 && len(records) > n+1 {
		records = records[:n+1]
	}
	return records
}

// WithSource returns a copy of t labelled with source. The copy shares the
// loaded columns with t.
func (t *Table) WithSource(source string) *Table {
	renamed := *t
	renamed.Source = source
	return &renamed
}

// Frame exposes the underlying dataframe.
func (t *Table) Frame() dataframe.DataFrame {
	return t.frame
}
