// Package engine provides a public API for ranking CSV tables programmatically.
//
// Example usage:
//
//	ranking, err := engine.Rank("mbti.csv", "INTJ", engine.WithTop(5))
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, row := range ranking.Rows {
//		fmt.Println(row.Rank, row.Identifier, row.Score)
//	}
package engine

import (
	"context"

	"github.com/lacquerai/rankview/internal/dataset"
	"github.com/lacquerai/rankview/internal/engine"
	"github.com/lacquerai/rankview/internal/execcontext"
	"github.com/lacquerai/rankview/internal/ranking"
	"github.com/lacquerai/rankview/pkg/events"
)

// Row is one ranked entity.
type Row = ranking.Row

// Ranking is the ordered top-N subset of a table.
type Ranking = ranking.Ranking

type settings struct {
	ctx      context.Context
	config   engine.Config
	listener events.Listener
}

// Option configures Rank and Metrics.
type Option func(*settings)

// WithTop sets how many rows are returned. Values <= 0 mean 10.
func WithTop(n int) Option {
	return func(s *settings) {
		s.config.N = n
	}
}

// WithIdentifier sets the column labelling each row. Defaults to "Country".
func WithIdentifier(column string) Option {
	return func(s *settings) {
		s.config.Identifier = column
	}
}

// WithMetrics replaces the metric vocabulary the table is validated against.
func WithMetrics(metrics ...string) Option {
	return func(s *settings) {
		s.config.Candidates = metrics
	}
}

// WithContext sets the context the operation runs under.
func WithContext(ctx context.Context) Option {
	return func(s *settings) {
		s.ctx = ctx
	}
}

// WithProgressListener receives load and ranking events as they happen.
func WithProgressListener(listener events.Listener) Option {
	return func(s *settings) {
		s.listener = listener
	}
}

func newRunner(options []Option) (*engine.Runner, execcontext.RunContext) {
	s := &settings{
		ctx:    context.Background(),
		config: engine.DefaultConfig(),
	}
	for _, option := range options {
		option(s)
	}

	return engine.NewRunner(s.listener, engine.WithConfig(s.config)), execcontext.Discard(s.ctx)
}

// Rank loads the CSV file at path and returns the rows with the largest
// values of metric, largest first.
func Rank(path, metric string, options ...Option) (*Ranking, error) {
	runner, ctx := newRunner(options)

	result, err := runner.RankFile(ctx, path, metric, runner.Config().N)
	if err != nil {
		return nil, err
	}
	return result.Ranking, nil
}

// Metrics loads and validates the CSV file at path and returns the metric
// columns it carries.
func Metrics(path string, options ...Option) ([]string, error) {
	runner, ctx := newRunner(options)

	loaded, err := runner.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return loaded.Metrics, nil
}

// ErrorKind classifies an error returned by this package as "load", "schema"
// or "empty_result". Other errors yield "".
func ErrorKind(err error) string {
	return string(engine.ErrorKind(err))
}

// Vocabulary returns the default metric columns.
func Vocabulary() []string {
	out := make([]string, len(dataset.Vocabulary))
	copy(out, dataset.Vocabulary)
	return out
}
