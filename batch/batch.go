// Package batch runs table comparisons over whole categories, isolating
// per-table failures so one broken table never aborts the rest.
package batch

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/hsharma0052/etlverify/report"
	"github.com/hsharma0052/etlverify/tablecompare"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var (
	tablesProcessedMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "etlverify",
		Subsystem: "batch",
		Name:      "tables_processed_total",
		Help:      "Number of tables processed, by outcome.",
	}, []string{"outcome"})
	progressMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "etlverify",
		Subsystem: "batch",
		Name:      "progress_percent",
		Help:      "Percentage of the current batch processed so far.",
	})
	runningMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "etlverify",
		Subsystem: "batch",
		Name:      "comparisons_running",
		Help:      "Number of table comparisons currently in flight.",
	})
)

// State describes where a batch run is in its lifecycle.
type State int

const (
	Pending State = iota
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// Comparer compares a single table between the two sources of an
// environment.
type Comparer interface {
	Compare(ctx context.Context, env string, table string) (*tablecompare.Result, error)
}

// Registry resolves category names to table lists.
type Registry interface {
	TablesFor(category string) []string
}

// Entry is the outcome of one table within a batch. Exactly one of Result
// and Err is set.
type Entry struct {
	TableName string
	Result    *tablecompare.Result
	Err       error
	// Progress is the batch completion percentage after this table finished.
	Progress float64
}

// Result is the outcome of a whole batch run. Entries appear in completion
// order and every requested table gets exactly one entry unless the run was
// cancelled mid-way.
type Result struct {
	Tables  []string
	Entries []Entry
	State   State
}

// Failed returns the entries whose comparison errored.
func (r *Result) Failed() []Entry {
	var ret []Entry
	for _, e := range r.Entries {
		if e.Err != nil {
			ret = append(ret, e)
		}
	}
	return ret
}

type Opt func(*Runner)

// WithConcurrency sets how many tables compare in parallel. Zero or one
// means sequential.
func WithConcurrency(n int) Opt {
	return func(r *Runner) {
		r.concurrency = n
	}
}

// WithTablesPerSecond caps how fast new table comparisons start. Zero means
// unlimited.
func WithTablesPerSecond(n int) Opt {
	return func(r *Runner) {
		r.tablesPerSecond = n
	}
}

// Runner drives batches of table comparisons.
type Runner struct {
	comparer Comparer
	registry Registry
	logger   zerolog.Logger
	reporter report.Reporter

	concurrency     int
	tablesPerSecond int
}

func NewRunner(
	comparer Comparer,
	registry Registry,
	logger zerolog.Logger,
	reporter report.Reporter,
	opts ...Opt,
) *Runner {
	r := &Runner{
		comparer: comparer,
		registry: registry,
		logger:   logger,
		reporter: reporter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) rateLimit() rate.Limit {
	if r.tablesPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(r.tablesPerSecond)
}

// RunCategory runs every table registered under the category. An unknown or
// empty category completes immediately with a warning.
func (r *Runner) RunCategory(ctx context.Context, env string, category string) (*Result, error) {
	tables := r.registry.TablesFor(category)
	if len(tables) == 0 {
		r.logger.Warn().Str("category", category).Msgf("category has no tables registered")
	}
	return r.RunTables(ctx, env, tables)
}

// RunTables compares the given tables in order. A failing table is recorded
// and the run continues; only context cancellation stops the batch early, in
// which case the partial result is returned alongside the context error.
func (r *Runner) RunTables(ctx context.Context, env string, tables []string) (*Result, error) {
	res := &Result{
		Tables: append([]string(nil), tables...),
		State:  Running,
	}
	if len(tables) == 0 {
		res.State = Completed
		return res, nil
	}
	progressMetric.Set(0)

	var err error
	if r.concurrency > 1 {
		err = r.runParallel(ctx, env, res)
	} else {
		err = r.runSequential(ctx, env, res)
	}
	if err != nil {
		return res, err
	}
	res.State = Completed
	r.reporter.Report(report.StatusReport{
		Info: "batch complete",
	})
	return res, nil
}

func (r *Runner) runSequential(ctx context.Context, env string, res *Result) error {
	limiter := rate.NewLimiter(r.rateLimit(), 1)
	total := len(res.Tables)
	for i, table := range res.Tables {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "batch cancelled after %d of %d tables", i, total)
		}
		if err := limiter.Wait(ctx); err != nil {
			return errors.Wrapf(err, "batch cancelled after %d of %d tables", i, total)
		}
		entry := r.compareOne(ctx, env, table)
		entry.Progress = float64(i+1) / float64(total) * 100
		progressMetric.Set(entry.Progress)
		res.Entries = append(res.Entries, entry)
	}
	return nil
}

func (r *Runner) runParallel(ctx context.Context, env string, res *Result) error {
	limiter := rate.NewLimiter(r.rateLimit(), 1)
	total := len(res.Tables)
	var mu sync.Mutex
	processed := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, table := range res.Tables {
		table := table
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			entry := r.compareOne(ctx, env, table)
			// Progress assignment and the append happen under one lock so
			// entries carry monotone progress in completion order.
			mu.Lock()
			processed++
			entry.Progress = float64(processed) / float64(total) * 100
			progressMetric.Set(entry.Progress)
			res.Entries = append(res.Entries, entry)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		mu.Lock()
		defer mu.Unlock()
		return errors.Wrapf(err, "batch cancelled after %d of %d tables", processed, total)
	}
	return nil
}

func (r *Runner) compareOne(ctx context.Context, env string, table string) Entry {
	runningMetric.Inc()
	defer runningMetric.Dec()
	result, err := r.comparer.Compare(ctx, env, table)
	if err != nil {
		tablesProcessedMetric.WithLabelValues("error").Inc()
		r.reporter.Report(report.TableError{
			Environment: env,
			TableName:   table,
			Err:         err,
		})
		return Entry{TableName: table, Err: err}
	}
	outcome := "match"
	if !result.Identical() {
		outcome = "mismatch"
	}
	tablesProcessedMetric.WithLabelValues(outcome).Inc()
	r.reporter.Report(report.TableSummary{
		Environment: env,
		Result:      result,
	})
	return Entry{TableName: table, Result: result}
}
