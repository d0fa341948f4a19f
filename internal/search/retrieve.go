package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/song-scout/internal/logger"
	"github.com/jonathan/song-scout/internal/metrics"
	"github.com/jonathan/song-scout/internal/types"
)

// MinPerQuery is the smallest per-query result budget.
const MinPerQuery = 2

// Retrieval is the outcome of one retrieval attempt.
// When Err is set, Results is nil.
type Retrieval struct {
	Results []types.SearchResult
	Err     error
}

// Retriever runs query sets against a single backend.
type Retriever struct {
	backend Backend
}

// NewRetriever creates a Retriever over backend.
func NewRetriever(backend Backend) *Retriever {
	return &Retriever{backend: backend}
}

// PerQueryBudget returns how many results each query may ask for when k results are wanted overall.
func PerQueryBudget(k, queries int) int {
	return max(MinPerQuery, k/max(1, queries))
}

// Retrieve runs the queries in order and returns the union of their results,
// de-duplicated by link in first-seen order. Results without a link are dropped.
// Any backend failure abandons the attempt.
func (r *Retriever) Retrieve(ctx context.Context, queries []string, k int) Retrieval {
	if len(queries) == 0 {
		return Retrieval{}
	}

	log := logger.FromContext(ctx).With(zap.String("backend", r.backend.Name()))
	perQuery := PerQueryBudget(k, len(queries))

	seen := make(map[string]bool)
	var results []types.SearchResult

	for _, q := range queries {
		batch, err := r.search(ctx, q, perQuery)
		if err != nil {
			log.Warn("retrieval aborted", zap.String("query", q), zap.Error(err))
			return Retrieval{Err: err}
		}
		for _, item := range batch {
			key := item.Key()
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			results = append(results, item)
		}
	}

	log.Debug("retrieval complete",
		zap.Int("queries", len(queries)),
		zap.Int("per_query", perQuery),
		zap.Int("results", len(results)),
	)
	return Retrieval{Results: results}
}

func (r *Retriever) search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	name := r.backend.Name()
	start := time.Now()

	batch, err := r.backend.Search(ctx, query, maxResults)

	metrics.SearchRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(name, "error").Inc()
		var serr *Error
		if !errors.As(err, &serr) {
			err = &Error{Backend: name, Query: query, Message: "backend call failed", Cause: err}
		}
		return nil, err
	}
	metrics.SearchRequestsTotal.WithLabelValues(name, "ok").Inc()
	metrics.SearchResultsTotal.WithLabelValues(name).Add(float64(len(batch)))
	return batch, nil
}
