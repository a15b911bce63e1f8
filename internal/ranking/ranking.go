// Package ranking selects the N entities with the largest value of a metric
// column.
package ranking

import (
	"fmt"
	"sort"

	"github.com/lacquerai/rankview/internal/dataset"
)

// DefaultN is the number of rows returned when no limit is given.
const DefaultN = 10

// Row is one ranked entity.
type Row struct {
	Rank       int     `json:"rank" yaml:"rank"`
	Identifier string  `json:"identifier" yaml:"identifier"`
	Score      float64 `json:"score" yaml:"score"`
}

// Ranking is the ordered top-N subset of a table for one metric.
type Ranking struct {
	Identifier string `json:"identifier_column" yaml:"identifier_column"`
	Metric     string `json:"metric" yaml:"metric"`
	N          int    `json:"n" yaml:"n"`
	// Considered is the number of rows with a numeric score.
	Considered int   `json:"considered" yaml:"considered"`
	Rows       []Row `json:"rows" yaml:"rows"`
}

// Max returns the largest score, or 0 for an empty ranking.
func (r *Ranking) Max() float64 {
	if len(r.Rows) == 0 {
		return 0
	}
	return r.Rows[0].Score
}

// Options configures a TopN selection.
type Options struct {
	Identifier string
	Metric     string
	N          int
}

// EmptyResultError is returned when the selected metric is not meaningfully
// populated.
type EmptyResultError struct {
	Metric  string
	AllZero bool
}

// Error implements the error interface
func (e *EmptyResultError) Error() string {
	if e.AllZero {
		return fmt.Sprintf("every value of %q is zero; pick a different metric", e.Metric)
	}
	return fmt.Sprintf("%q has no numeric values; pick a different metric", e.Metric)
}

func (e *EmptyResultError) Kind() dataset.ErrorKind { return dataset.KindEmpty }

// TopN ranks the rows of t by the metric column, largest first.
func TopN(t *dataset.Table, opts Options) (*Ranking, error) {
	if opts.Identifier == "" {
		opts.Identifier = dataset.DefaultIdentifier
	}

	ids, err := t.Values(opts.Identifier)
	if err != nil {
		return nil, err
	}
	scores, err := t.Scores(opts.Metric)
	if err != nil {
		return nil, err
	}

	n := opts.N
	if n <= 0 {
		n = DefaultN
	}

	rows, considered, err := Select(opts.Metric, ids, scores, n)
	if err != nil {
		return nil, err
	}

	return &Ranking{
		Identifier: opts.Identifier,
		Metric:     opts.Metric,
		N:          n,
		Considered: considered,
		Rows:       rows,
	}, nil
}

// Select drops missing scores, sorts the rest descending while keeping input
// order for equal values, and returns the first n. It also returns how many
// rows had a valid score.
func Select(metric string, ids []string, scores []dataset.Score, n int) ([]Row, int, error) {
	if len(ids) != len(scores) {
		return nil, 0, fmt.Errorf("identifier and score columns differ in length: %d != %d", len(ids), len(scores))
	}

	rows := make([]Row, 0, len(scores))
	allZero := true
	for i, s := range scores {
		if !s.Valid {
			continue
		}
		if s.Value != 0 {
			allZero = false
		}
		rows = append(rows, Row{Identifier: ids[i], Score: s.Value})
	}

	if len(rows) == 0 {
		return nil, 0, &EmptyResultError{Metric: metric}
	}
	if allZero {
		return nil, len(rows), &EmptyResultError{Metric: metric, AllZero: true}
	}

	considered := len(rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})

	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return rows, considered, nil
}
