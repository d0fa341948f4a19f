// Package steps defines the pipeline steps, their order and their dependencies,
// and tracks which steps of a run have completed.
package steps

import (
	"fmt"
	"sync"
)

// Step names in execution order.
const (
	Profile  = "profile"
	Queries  = "queries"
	Retrieve = "retrieve"
	Filter   = "filter"
	Rerank   = "rerank"
)

// Step categories.
const (
	CategoryLLM     = "llm"
	CategorySearch  = "search"
	CategoryRanking = "ranking"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	Profile: {
		Name:     Profile,
		Category: CategoryLLM,
	},
	Queries: {
		Name:         Queries,
		Category:     CategorySearch,
		Dependencies: []string{Profile},
	},
	Retrieve: {
		Name:         Retrieve,
		Category:     CategorySearch,
		Dependencies: []string{Queries},
	},
	Filter: {
		Name:         Filter,
		Category:     CategoryRanking,
		Dependencies: []string{Retrieve},
	},
	Rerank: {
		Name:         Rerank,
		Category:     CategoryRanking,
		Dependencies: []string{Profile, Filter},
	},
}

// Order lists the step names in execution order.
var Order = []string{Profile, Queries, Retrieve, Filter, Rerank}

// Position returns the 1-based position of a step in Order, or 0 when unknown.
func Position(name string) int {
	for i, s := range Order {
		if s == name {
			return i + 1
		}
	}
	return 0
}

// Category returns the category of a step, or "" when unknown.
func Category(name string) string {
	return StepRegistry[name].Category
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// Tracker records the completed steps of a single run. It is safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	completed map[string]bool
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{completed: make(map[string]bool)}
}

// Start checks that every dependency of step has completed.
func (t *Tracker) Start(step string) error {
	def, ok := StepRegistry[step]
	if !ok {
		return fmt.Errorf("unknown step: %s", step)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var missing []string
	for _, dep := range def.Dependencies {
		if !t.completed[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Step: step, MissingDependencies: missing}
	}
	return nil
}

// Complete marks step as done.
func (t *Tracker) Complete(step string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed[step] = true
}

// Completed returns the completed steps in execution order.
func (t *Tracker) Completed() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var done []string
	for _, s := range Order {
		if t.completed[s] {
			done = append(done, s)
		}
	}
	return done
}
