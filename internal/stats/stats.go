// Package stats computes the descriptive summary printed by batch analysis:
// table shape, missing values, describe statistics and group-wise means.
package stats

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultHeadRows is the number of rows shown in the head preview.
const DefaultHeadRows = 5

// ColumnSummary describes one column of the analysed table.
type ColumnSummary struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	NonNull int    `json:"non_null" yaml:"non_null"`
	Missing int    `json:"missing" yaml:"missing"`
}

// GroupMean is the mean of a value column within one group.
type GroupMean struct {
	Key  string  `json:"key" yaml:"key"`
	Mean float64 `json:"mean" yaml:"mean"`
}

// Report is the full batch analysis of a table.
type Report struct {
	Source      string          `json:"source" yaml:"source"`
	Rows        int             `json:"rows" yaml:"rows"`
	Columns     int             `json:"columns" yaml:"columns"`
	Summary     []ColumnSummary `json:"summary" yaml:"summary"`
	Describe    [][]string      `json:"describe" yaml:"describe"`
	Head        [][]string      `json:"head" yaml:"head"`
	GroupColumn string          `json:"group_column" yaml:"group_column"`
	// ValueColumn and GroupMeans feed the overview bar chart.
	ValueColumn string      `json:"value_column" yaml:"value_column"`
	GroupMeans  []GroupMean `json:"group_means" yaml:"group_means"`
	// ReportColumn and ReportMeans are the group means printed in the text
	// report.
	ReportColumn string      `json:"report_column" yaml:"report_column"`
	ReportMeans  []GroupMean `json:"report_means" yaml:"report_means"`
}

// Options configures Analyze.
type Options struct {
	GroupBy string
	Value   string
	// ReportValue is averaged per group for the text report. Empty means
	// Value.
	ReportValue string
	HeadRows    int
}

// ReadFrame loads a CSV with per-column type detection.
func ReadFrame(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r)
	if df.Err != nil {
		return df, fmt.Errorf("reading csv: %w", df.Err)
	}
	if df.Nrow() == 0 {
		return df, errors.New("reading csv: no data rows found")
	}
	return df, nil
}

// ReadFrameFile loads the CSV file at path.
func ReadFrameFile(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	return ReadFrame(f)
}

// Analyze builds the report for df.
func Analyze(df dataframe.DataFrame, opts Options) (*Report, error) {
	if opts.HeadRows <= 0 {
		opts.HeadRows = DefaultHeadRows
	}

	report := &Report{
		Rows:         df.Nrow(),
		Columns:      df.Ncol(),
		Summary:      Summarize(df),
		Describe:     describe(df),
		Head:         head(df, opts.HeadRows),
		GroupColumn:  opts.GroupBy,
		ValueColumn:  opts.Value,
		ReportColumn: opts.ReportValue,
	}
	if report.ReportColumn == "" {
		report.ReportColumn = opts.Value
	}

	if opts.GroupBy != "" && opts.Value != "" {
		means, err := GroupMeans(df, opts.GroupBy, opts.Value)
		if err != nil {
			return nil, err
		}
		report.GroupMeans = means
	}

	switch {
	case opts.GroupBy == "" || report.ReportColumn == "":
	case report.ReportColumn == opts.Value:
		report.ReportMeans = report.GroupMeans
	default:
		means, err := GroupMeans(df, opts.GroupBy, report.ReportColumn)
		if err != nil {
			return nil, err
		}
		report.ReportMeans = means
	}

	return report, nil
}

// Summarize reports the detected type and missing-value count per column.
// Cells that are NA or blank count as missing.
func Summarize(df dataframe.DataFrame) []ColumnSummary {
	names := df.Names()
	summary := make([]ColumnSummary, 0, len(names))

	for _, name := range names {
		col := df.Col(name)
		records := col.Records()

		missing := 0
		for i := 0; i < col.Len(); i++ {
			if col.Elem(i).IsNA() || strings.TrimSpace(records[i]) == "" {
				missing++
			}
		}

		summary = append(summary, ColumnSummary{
			Name:    name,
			Type:    string(col.Type()),
			NonNull: col.Len() - missing,
			Missing: missing,
		})
	}

	return summary
}

// GroupMeans averages value within each distinct key, ordered by key. Groups
// with no value at all are omitted.
func GroupMeans(df dataframe.DataFrame, key, value string) ([]GroupMean, error) {
	if err := requireColumns(df, key, value); err != nil {
		return nil, err
	}
	if t := df.Col(value).Type(); t != series.Float && t != series.Int {
		return nil, fmt.Errorf("column %q is %s, not numeric", value, t)
	}

	// Missing values are left out of each group's mean.
	present := df.Filter(dataframe.F{
		Colname:    value,
		Comparator: series.CompFunc,
		Comparando: func(e series.Element) bool { return !e.IsNA() },
	})
	if present.Err != nil {
		return nil, fmt.Errorf("filtering %s: %w", value, present.Err)
	}
	if present.Nrow() == 0 {
		return []GroupMean{}, nil
	}

	groups := present.GroupBy(key)
	if groups.Err != nil {
		return nil, fmt.Errorf("grouping by %s: %w", key, groups.Err)
	}

	agg := groups.Aggregation([]dataframe.AggregationType{dataframe.Aggregation_MEAN}, []string{value})
	if agg.Err != nil {
		return nil, fmt.Errorf("averaging %s by %s: %w", value, key, agg.Err)
	}

	// The aggregate holds the key column plus one derived mean column.
	meanColumn := ""
	for _, name := range agg.Names() {
		if name != key {
			meanColumn = name
			break
		}
	}
	if meanColumn == "" {
		return nil, fmt.Errorf("averaging %s by %s: no aggregate column", value, key)
	}

	keys := agg.Col(key).Records()
	values := agg.Col(meanColumn).Float()

	means := make([]GroupMean, len(keys))
	for i := range keys {
		means[i] = GroupMean{Key: keys[i], Mean: values[i]}
	}
	sort.SliceStable(means, func(i, j int) bool { return means[i].Key < means[j].Key })

	return means, nil
}

// SortByMean returns a copy of means ordered by ascending mean.
func SortByMean(means []GroupMean) []GroupMean {
	out := make([]GroupMean, len(means))
	copy(out, means)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mean < out[j].Mean })
	return out
}

// Pairs returns the rows where both x and y are numeric, in table order.
func Pairs(df dataframe.DataFrame, x, y string) ([]float64, []float64, error) {
	if err := requireColumns(df, x, y); err != nil {
		return nil, nil, err
	}

	xv := df.Col(x).Float()
	yv := df.Col(y).Float()

	xs := make([]float64, 0, len(xv))
	ys := make([]float64, 0, len(yv))
	for i := range xv {
		if math.IsNaN(xv[i]) || math.IsNaN(yv[i]) {
			continue
		}
		xs = append(xs, xv[i])
		ys = append(ys, yv[i])
	}

	return xs, ys, nil
}

func requireColumns(df dataframe.DataFrame, names ...string) error {
	have := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		have[n] = true
	}

	var missing []string
	for _, n := range names {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("column(s) not found: %s", strings.Join(missing, ", "))
	}
	return nil
}

func describe(df dataframe.DataFrame) [][]string {
	d := df.Describe()
	if d.Err != nil {
		return nil
	}
	return d.Records()
}

func head(df dataframe.DataFrame, n int) [][]string {
	records := df.Records()
	if len(records) > n+1 {
		records = records[:n+1]
	}
	return records
}
