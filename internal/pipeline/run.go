// Package pipeline runs one seed through profile, queries, retrieval, filtering and re-ranking.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/song-scout/internal/filter"
	"github.com/jonathan/song-scout/internal/logger"
	"github.com/jonathan/song-scout/internal/metrics"
	"github.com/jonathan/song-scout/internal/pipeline/steps"
	"github.com/jonathan/song-scout/internal/profiling"
	"github.com/jonathan/song-scout/internal/queries"
	"github.com/jonathan/song-scout/internal/ranking"
	"github.com/jonathan/song-scout/internal/search"
	"github.com/jonathan/song-scout/internal/types"
)

// Informational report messages.
const (
	MessageNoQueries   = "profile produced no usable search terms"
	MessageEmptyRanked = "no results left after filtering; try loose mode or allow more playable domains"
)

// Minimum total search budget.
const minSearchBudget = 24

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Position int    `json:"position"`
	Total    int    `json:"total"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Profiler produces a song profile from a seed.
type Profiler interface {
	Generate(ctx context.Context, seed string) (*types.Profile, error)
}

// Retriever fetches search results for a query set.
type Retriever interface {
	Retrieve(ctx context.Context, queries []string, k int) search.Retrieval
}

// Deps holds the external collaborators of a run.
type Deps struct {
	Profiler  Profiler
	Retriever Retriever
	Logger    *zap.Logger
}

// Options holds the user-adjustable settings of a run.
type Options struct {
	Seed           string `validate:"required"`
	Weights        types.Weights
	TopN           int          `validate:"gte=5,lte=30"`
	Mode           queries.Mode `validate:"oneof=strict loose"`
	PlayableOnly   bool
	AllowedDomains []string
	OnProgress     ProgressCallback `validate:"-"`
}

// OptionsError reports invalid run options.
type OptionsError struct {
	Message string
	Cause   error
}

func (e *OptionsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid run options: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid run options: %s", e.Message)
}

func (e *OptionsError) Unwrap() error {
	return e.Cause
}

// SearchBudget returns the total number of results to request for topN ranked items.
func SearchBudget(topN int) int {
	return max(3*topN, minSearchBudget)
}

// Validate checks the options before a run.
func (o Options) Validate() error {
	if err := validator.New().Struct(o); err != nil {
		return &OptionsError{Message: "options out of range", Cause: err}
	}
	return nil
}

// run carries per-run state through the steps.
type run struct {
	opts    Options
	report  *types.Report
	tracker *steps.Tracker
	log     *zap.Logger
}

func (r *run) emit(step, message string, content any) {
	if r.opts.OnProgress == nil {
		return
	}
	r.opts.OnProgress(ProgressEvent{
		Step:     step,
		Category: steps.Category(step),
		Position: steps.Position(step),
		Total:    len(steps.Order),
		Message:  message,
		RunID:    r.report.RunID.String(),
		Content:  content,
	})
}

func (r *run) begin(step string) error {
	if err := r.tracker.Start(step); err != nil {
		return err
	}
	r.log.Debug("step started", zap.String("step", step))
	return nil
}

func (r *run) done(step, message string, content any) {
	r.tracker.Complete(step)
	r.emit(step, message, content)
}

// Run executes the full pipeline for opts.Seed.
//
// A model reply that cannot be parsed ends the run early with Report.ParseFailure set and a nil
// error. A retrieval failure is recorded in Report.RetrievalError and the run continues with no
// results. Only invalid options and generator errors other than parse failures are returned as errors.
func Run(ctx context.Context, deps Deps, opts Options) (*types.Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if deps.Profiler == nil || deps.Retriever == nil {
		return nil, errors.New("pipeline requires a profiler and a retriever")
	}

	start := time.Now()
	report := &types.Report{RunID: uuid.New(), Seed: opts.Seed}

	if deps.Logger != nil {
		ctx = logger.ContextWithLogger(ctx, deps.Logger)
	}
	ctx, log := logger.With(ctx, zap.String("run_id", report.RunID.String()))

	r := &run{opts: opts, report: report, tracker: steps.NewTracker(), log: log}
	outcome, err := r.execute(ctx, deps)

	report.Duration = time.Since(start)
	metrics.PipelineRunsTotal.WithLabelValues(outcome).Inc()
	metrics.PipelineRunDuration.Observe(report.Duration.Seconds())

	if err != nil {
		log.Error("pipeline run failed", zap.Error(err), zap.Duration("duration", report.Duration))
		return nil, err
	}
	metrics.RankedItemsCount.Observe(float64(len(report.Ranked)))
	log.Info("pipeline run complete",
		zap.String("outcome", outcome),
		zap.Int("queries", len(report.Queries)),
		zap.Int("raw", report.RawCount),
		zap.Int("filtered", report.FilteredCount),
		zap.Int("ranked", len(report.Ranked)),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// execute runs the steps and returns the outcome label used for metrics.
func (r *run) execute(ctx context.Context, deps Deps) (string, error) {
	report := r.report

	// Step 1: profile
	if err := r.begin(steps.Profile); err != nil {
		return "error", err
	}
	r.emit(steps.Profile, "Generating song profile...", nil)
	profile, err := deps.Profiler.Generate(ctx, r.opts.Seed)
	if err != nil {
		var pf *profiling.ParseFailure
		if errors.As(err, &pf) {
			report.ParseFailure = pf.Raw
			report.Message = pf.Error()
			report.Queries = []string{}
			report.Ranked = []types.RankedItem{}
			r.emit(steps.Profile, "Model reply could not be parsed as a profile", pf.Raw)
			return "parse_failure", nil
		}
		return "error", err
	}
	report.Profile = profile
	r.done(steps.Profile, "Song profile ready", profile)

	// Step 2: queries
	if err := r.begin(steps.Queries); err != nil {
		return "error", err
	}
	if profile.IsEmpty() {
		r.log.Warn("profile has no usable fields, skipping query building")
	} else {
		restrict := queries.ShouldRestrict(r.opts.PlayableOnly, r.opts.AllowedDomains)
		report.Queries = queries.Build(profile, r.opts.Mode, restrict)
	}
	if report.Queries == nil {
		report.Queries = []string{}
	}
	r.done(steps.Queries, fmt.Sprintf("Built %d queries", len(report.Queries)), report.Queries)
	if len(report.Queries) == 0 {
		report.Message = MessageNoQueries
		report.Ranked = []types.RankedItem{}
		return "no_queries", nil
	}

	// Step 3: retrieve
	if err := r.begin(steps.Retrieve); err != nil {
		return "error", err
	}
	retrieval := deps.Retriever.Retrieve(ctx, report.Queries, SearchBudget(r.opts.TopN))
	if retrieval.Err != nil {
		report.RetrievalError = retrieval.Err.Error()
		r.log.Warn("retrieval failed, continuing with no results", zap.Error(retrieval.Err))
	}
	report.RawCount = len(retrieval.Results)
	r.done(steps.Retrieve, fmt.Sprintf("Retrieved %d results", report.RawCount), nil)

	// Step 4: filter
	if err := r.begin(steps.Filter); err != nil {
		return "error", err
	}
	filtered := filter.Apply(retrieval.Results, r.opts.PlayableOnly, r.opts.AllowedDomains)
	report.FilteredCount = len(filtered)
	r.done(steps.Filter, fmt.Sprintf("%d results after filtering", report.FilteredCount), nil)

	// Step 5: rerank
	if err := r.begin(steps.Rerank); err != nil {
		return "error", err
	}
	report.Ranked = ranking.Rerank(profile, filtered, r.opts.Weights, r.opts.TopN)
	r.done(steps.Rerank, fmt.Sprintf("Ranked %d results", len(report.Ranked)), report.Ranked)

	switch {
	case len(report.Ranked) == 0:
		report.Message = MessageEmptyRanked
		if report.RetrievalError != "" {
			return "retrieval_error", nil
		}
		return "empty", nil
	case report.RetrievalError != "":
		return "retrieval_error", nil
	default:
		return "ok", nil
	}
}
