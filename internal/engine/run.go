package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lacquerai/rankview/internal/chart"
	"github.com/lacquerai/rankview/internal/dataset"
	"github.com/lacquerai/rankview/internal/execcontext"
	"github.com/lacquerai/rankview/internal/ranking"
	pkgEvents "github.com/lacquerai/rankview/pkg/events"
	"github.com/rs/zerolog/log"
)

// Config controls how tables are validated and ranked.
type Config struct {
	// Identifier is the column labelling each ranked entity.
	Identifier string
	// Candidates is the metric vocabulary a table is checked against.
	Candidates []string
	// N is the default number of ranked rows.
	N int
	// Labels draws value labels next to each bar.
	Labels bool
}

// DefaultConfig ranks by country over the MBTI vocabulary.
func DefaultConfig() Config {
	return Config{
		Identifier: dataset.DefaultIdentifier,
		Candidates: dataset.Vocabulary,
		N:          ranking.DefaultN,
		Labels:     true,
	}
}

// LoadResult describes a table that passed validation.
type LoadResult struct {
	Source   string        `json:"source" yaml:"source"`
	Rows     int           `json:"rows" yaml:"rows"`
	Columns  int           `json:"columns" yaml:"columns"`
	Metrics  []string      `json:"metrics" yaml:"metrics"`
	Duration time.Duration `json:"duration" yaml:"duration"`

	Table *dataset.Table `json:"-" yaml:"-"`
}

// RankResult is a ranking together with the figure drawn from it.
type RankResult struct {
	Source   string           `json:"source" yaml:"source"`
	Ranking  *ranking.Ranking `json:"ranking" yaml:"ranking"`
	Figure   *chart.Figure    `json:"figure" yaml:"figure"`
	Duration time.Duration    `json:"duration" yaml:"duration"`
}

// Runner validates tables and ranks their metrics, reporting progress to a
// listener.
type Runner struct {
	progressListener pkgEvents.Listener
	config           Config
}

// RunnerOption is a function that can be used to configure a Runner.
type RunnerOption func(*Runner)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) RunnerOption {
	return func(r *Runner) {
		r.config = cfg
	}
}

// NewRunner creates a runner with the specified progress listener.
func NewRunner(progressListener pkgEvents.Listener, options ...RunnerOption) *Runner {
	r := &Runner{
		progressListener: progressListener,
		config:           DefaultConfig(),
	}

	for _, option := range options {
		option(r)
	}

	if r.config.Identifier == "" {
		r.config.Identifier = dataset.DefaultIdentifier
	}
	if len(r.config.Candidates) == 0 {
		r.config.Candidates = dataset.Vocabulary
	}
	if r.config.N <= 0 {
		r.config.N = ranking.DefaultN
	}

	return r
}

// SetProgressListener updates the listener receiving events.
func (r *Runner) SetProgressListener(listener pkgEvents.Listener) {
	r.progressListener = listener
}

// Config returns the runner configuration.
func (r *Runner) Config() Config {
	return r.config
}

// LoadFile reads and validates the table at path.
func (r *Runner) LoadFile(ctx execcontext.RunContext, path string) (*LoadResult, error) {
	var result *LoadResult
	err := r.withProgress(func(emit func(pkgEvents.Event)) error {
		start := time.Now()
		t, err := dataset.LoadFile(path)
		if err != nil {
			emit(rejectedEvent(path, err))
			return err
		}

		result, err = r.accept(ctx, t, start, emit)
		return err
	})
	return result, err
}

// LoadBytes reads and validates an in-memory table such as an upload.
func (r *Runner) LoadBytes(ctx execcontext.RunContext, data []byte, source string) (*LoadResult, error) {
	var result *LoadResult
	err := r.withProgress(func(emit func(pkgEvents.Event)) error {
		start := time.Now()
		t, err := dataset.LoadBytes(data, source)
		if err != nil {
			emit(rejectedEvent(source, err))
			return err
		}

		result, err = r.accept(ctx, t, start, emit)
		return err
	})
	return result, err
}

// Validate checks an already loaded table.
func (r *Runner) Validate(ctx execcontext.RunContext, t *dataset.Table) (*LoadResult, error) {
	var result *LoadResult
	err := r.withProgress(func(emit func(pkgEvents.Event)) error {
		var err error
		result, err = r.accept(ctx, t, time.Now(), emit)
		return err
	})
	return result, err
}

// Rank selects the top n rows of metric and lays them out as a figure.
// n <= 0 falls back to the configured default.
func (r *Runner) Rank(ctx execcontext.RunContext, t *dataset.Table, metric string, n int) (*RankResult, error) {
	if n <= 0 {
		n = r.config.N
	}

	var result *RankResult
	err := r.withProgress(func(emit func(pkgEvents.Event)) error {
		start := time.Now()
		emit(pkgEvents.Event{
			Type:      pkgEvents.EventRankingStarted,
			Timestamp: start,
			Source:    t.Source,
			Metric:    metric,
			N:         n,
		})

		if err := ctx.Err(); err != nil {
			emit(failedEvent(t.Source, metric, n, err))
			return err
		}

		if _, err := dataset.ValidateSchema(t, r.config.Identifier, r.config.Candidates); err != nil {
			emit(failedEvent(t.Source, metric, n, err))
			return err
		}
		if !containsString(r.config.Candidates, metric) {
			err := &dataset.SchemaError{
				Source:     t.Source,
				Message:    fmt.Sprintf("%q is not a recognized metric", metric),
				Columns:    r.config.Candidates,
				Suggestion: "choose one of the metric columns present in the table",
			}
			emit(failedEvent(t.Source, metric, n, err))
			return err
		}

		rk, err := ranking.TopN(t, ranking.Options{
			Identifier: r.config.Identifier,
			Metric:     metric,
			N:          n,
		})
		if err != nil {
			emit(failedEvent(t.Source, metric, n, err))
			return err
		}

		fig := chart.Build(rk, chart.Options{Labels: r.config.Labels})
		result = &RankResult{
			Source:   t.Source,
			Ranking:  rk,
			Figure:   fig,
			Duration: time.Since(start),
		}

		log.Debug().
			Str("source", t.Source).
			Str("metric", metric).
			Int("rows", len(rk.Rows)).
			Int("considered", rk.Considered).
			Dur("duration", result.Duration).
			Msg("Ranking rendered")

		emit(pkgEvents.Event{
			Type:      pkgEvents.EventRankingRendered,
			Timestamp: time.Now(),
			Source:    t.Source,
			Metric:    metric,
			N:         n,
			Rows:      len(rk.Rows),
			Duration:  result.Duration,
		})
		return nil
	})
	return result, err
}

// RankFile loads the table at path and ranks metric.
func (r *Runner) RankFile(ctx execcontext.RunContext, path, metric string, n int) (*RankResult, error) {
	loaded, err := r.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return r.Rank(ctx, loaded.Table, metric, n)
}

func (r *Runner) accept(ctx execcontext.RunContext, t *dataset.Table, start time.Time, emit func(pkgEvents.Event)) (*LoadResult, error) {
	if err := ctx.Err(); err != nil {
		emit(rejectedEvent(t.Source, err))
		return nil, err
	}

	present, err := dataset.ValidateSchema(t, r.config.Identifier, r.config.Candidates)
	if err != nil {
		log.Debug().Err(err).Str("source", t.Source).Msg("Table rejected")
		emit(rejectedEvent(t.Source, err))
		return nil, err
	}

	result := &LoadResult{
		Source:   t.Source,
		Rows:     t.Nrow(),
		Columns:  t.Ncol(),
		Metrics:  present,
		Duration: time.Since(start),
		Table:    t,
	}

	log.Info().
		Str("source", t.Source).
		Int("rows", result.Rows).
		Strs("metrics", present).
		Msg("Table loaded and validated")

	emit(pkgEvents.Event{
		Type:      pkgEvents.EventDatasetLoaded,
		Timestamp: time.Now(),
		Source:    t.Source,
		Rows:      result.Rows,
		Metrics:   present,
		Duration:  result.Duration,
	})

	return result, nil
}

// withProgress runs fn while forwarding the events it emits to the listener.
// It returns once the listener has consumed every event.
func (r *Runner) withProgress(fn func(emit func(pkgEvents.Event)) error) error {
	if r.progressListener == nil {
		return fn(func(pkgEvents.Event) {})
	}

	progressChan := make(chan pkgEvents.Event, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.progressListener.StartListening(progressChan)
	}()

	err := fn(func(e pkgEvents.Event) { progressChan <- e })
	close(progressChan)
	wg.Wait()

	r.progressListener.StopListening()
	return err
}

func rejectedEvent(source string, err error) pkgEvents.Event {
	return pkgEvents.Event{
		Type:      pkgEvents.EventDatasetRejected,
		Timestamp: time.Now(),
		Source:    source,
		ErrorKind: string(ErrorKind(err)),
		Error:     err.Error(),
	}
}

func failedEvent(source, metric string, n int, err error) pkgEvents.Event {
	return pkgEvents.Event{
		Type:      pkgEvents.EventRankingFailed,
		Timestamp: time.Now(),
		Source:    source,
		Metric:    metric,
		N:         n,
		ErrorKind: string(ErrorKind(err)),
		Error:     err.Error(),
	}
}

// ErrorKind classifies err, or returns "" for errors outside the taxonomy.
func ErrorKind(err error) dataset.ErrorKind {
	var kerr dataset.KindError
	if errors.As(err, &kerr) {
		return kerr.Kind()
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
