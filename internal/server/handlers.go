package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/song-scout/internal/config"
	"github.com/jonathan/song-scout/internal/filter"
	"github.com/jonathan/song-scout/internal/logger"
	"github.com/jonathan/song-scout/internal/pipeline"
	"github.com/jonathan/song-scout/internal/profiling"
	"github.com/jonathan/song-scout/internal/queries"
	"github.com/jonathan/song-scout/internal/ranking"
	"github.com/jonathan/song-scout/internal/types"
)

// maxBodyBytes bounds request bodies; a results list is the largest payload.
const maxBodyBytes = 4 << 20

var validate = validator.New()

// RunSettings are the user-adjustable ranking settings shared by /search and /rerank.
// Zero values fall back to the server configuration.
type RunSettings struct {
	Preset         string                `json:"preset,omitempty"`
	Weights        types.WeightOverrides `json:"weights,omitempty"`
	TopN           int                   `json:"top_n,omitempty" validate:"omitempty,gte=5,lte=30"`
	Mode           string                `json:"mode,omitempty" validate:"omitempty,oneof=strict loose"`
	PlayableOnly   *bool                 `json:"playable_only,omitempty"`
	AllowedDomains []string              `json:"allowed_domains,omitempty"`
}

// ProfileRequest is the body of POST /profile.
type ProfileRequest struct {
	Seed string `json:"seed" validate:"required"`
}

// ProfileResponse is returned by POST /profile. ParseFailure holds the raw model reply
// when it was not a usable profile.
type ProfileResponse struct {
	Profile      *types.Profile `json:"profile,omitempty"`
	ParseFailure string         `json:"parse_failure,omitempty"`
	Message      string         `json:"message,omitempty"`
}

// QueriesRequest is the body of POST /queries. Restrict defaults to the configured
// playable-only setting.
type QueriesRequest struct {
	Profile  *types.Profile `json:"profile" validate:"required"`
	Mode     string         `json:"mode,omitempty" validate:"omitempty,oneof=strict loose"`
	Restrict *bool          `json:"restrict,omitempty"`
}

// QueriesResponse is returned by POST /queries.
type QueriesResponse struct {
	Queries []string `json:"queries"`
}

// RerankRequest is the body of POST /rerank.
type RerankRequest struct {
	Profile *types.Profile       `json:"profile" validate:"required"`
	Results []types.SearchResult `json:"results"`
	RunSettings
}

// RerankResponse is returned by POST /rerank.
type RerankResponse struct {
	FilteredCount int                `json:"filtered_count"`
	Ranked        []types.RankedItem `json:"ranked"`
}

// SearchRequest is the body of POST /search and POST /search/stream.
type SearchRequest struct {
	Seed string `json:"seed" validate:"required"`
	RunSettings
}

// settings are RunSettings resolved against the configuration.
type settings struct {
	weights        types.Weights
	topN           int
	mode           queries.Mode
	playableOnly   bool
	allowedDomains []string
}

// resolve merges the request settings over the configured defaults.
// An explicit preset replaces the configured preset and its overrides.
func (s *Server) resolve(rs RunSettings) (settings, error) {
	var base types.Weights
	if rs.Preset != "" {
		w, err := config.PresetWeights(rs.Preset)
		if err != nil {
			return settings{}, &ErrValidation{Field: "preset", Message: err.Error()}
		}
		base = w
	} else {
		w, err := s.cfg.Weights()
		if err != nil {
			return settings{}, err
		}
		base = w
	}
	weights := rs.Weights.Apply(base)
	if err := weights.Validate(); err != nil {
		return settings{}, &ErrValidation{Field: "weights", Message: err.Error()}
	}

	out := settings{
		weights:        weights,
		topN:           s.cfg.Ranking.TopN,
		mode:           queries.Mode(s.cfg.Ranking.Mode),
		playableOnly:   s.cfg.PlayableOnly(),
		allowedDomains: s.cfg.Filter.AllowedDomains,
	}
	if rs.TopN != 0 {
		out.topN = rs.TopN
	}
	if rs.Mode != "" {
		out.mode = queries.Mode(rs.Mode)
	}
	if rs.PlayableOnly != nil {
		out.playableOnly = *rs.PlayableOnly
	}
	if rs.AllowedDomains != nil {
		for _, d := range rs.AllowedDomains {
			if !filter.IsKnownDomain(d) {
				return settings{}, &ErrValidation{Field: "allowed_domains", Message: fmt.Sprintf("unknown playable domain %q", d)}
			}
		}
		out.allowedDomains = rs.AllowedDomains
	}
	return out, nil
}

// decode reads and validates a JSON request body.
func decode(r *http.Request, w http.ResponseWriter, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()}
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ErrValidation{Field: jsonField(fe.Namespace()), Message: fmt.Sprintf("failed %q check", fe.Tag())}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// jsonField turns a validator namespace such as "SearchRequest.RunSettings.TopN" into "TopN".
func jsonField(ns string) string {
	if i := strings.LastIndex(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"default": s.cfg.Ranking.Preset,
		"presets": config.Presets,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := decode(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.deps.Profiler == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "profile generation is not configured")
		return
	}

	profile, err := s.deps.Profiler.Generate(r.Context(), req.Seed)
	if err != nil {
		var pf *profiling.ParseFailure
		if errors.As(err, &pf) {
			s.jsonResponse(w, http.StatusOK, ProfileResponse{ParseFailure: pf.Raw, Message: pf.Error()})
			return
		}
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ProfileResponse{Profile: profile})
}

func (s *Server) handleQueries(w http.ResponseWriter, r *http.Request) {
	var req QueriesRequest
	if err := decode(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	mode := queries.Mode(s.cfg.Ranking.Mode)
	if req.Mode != "" {
		mode = queries.Mode(req.Mode)
	}
	restrict := queries.ShouldRestrict(s.cfg.PlayableOnly(), s.cfg.Filter.AllowedDomains)
	if req.Restrict != nil {
		restrict = *req.Restrict
	}

	qs := queries.Build(req.Profile, mode, restrict)
	if qs == nil {
		qs = []string{}
	}
	s.jsonResponse(w, http.StatusOK, QueriesResponse{Queries: qs})
}

func (s *Server) handleRerank(w http.ResponseWriter, r *http.Request) {
	var req RerankRequest
	if err := decode(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	set, err := s.resolve(req.RunSettings)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	kept := filter.Apply(req.Results, set.playableOnly, set.allowedDomains)
	ranked := ranking.Rerank(req.Profile, kept, set.weights, set.topN)
	if ranked == nil {
		ranked = []types.RankedItem{}
	}
	s.jsonResponse(w, http.StatusOK, RerankResponse{FilteredCount: len(kept), Ranked: ranked})
}

func (s *Server) searchOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, bool) {
	var req SearchRequest
	if err := decode(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return pipeline.Options{}, false
	}
	set, err := s.resolve(req.RunSettings)
	if err != nil {
		s.writeError(w, r, err)
		return pipeline.Options{}, false
	}
	return pipeline.Options{
		Seed:           req.Seed,
		Weights:        set.weights,
		TopN:           set.topN,
		Mode:           set.mode,
		PlayableOnly:   set.playableOnly,
		AllowedDomains: set.allowedDomains,
	}, true
}

// handleSearch runs the full pipeline and returns the report.
// A profile parse failure is still a 200 with parse_failure set.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.searchOptions(w, r)
	if !ok {
		return
	}

	deps := s.deps
	deps.Logger = logger.FromContext(r.Context())
	report, err := pipeline.Run(r.Context(), deps, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleSearchStream runs the pipeline and streams progress as SSE, ending with the report.
func (s *Server) handleSearchStream(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.searchOptions(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log := logger.FromContext(r.Context())
	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(eventStep, event); err != nil {
			log.Warn("write SSE event", zap.Error(err))
		}
	}

	deps := s.deps
	deps.Logger = log
	report, err := pipeline.Run(r.Context(), deps, opts)
	if err != nil {
		sse.WriteError(err)
		return
	}
	if err := sse.WriteEvent(eventReport, report); err != nil {
		log.Warn("write SSE report", zap.Error(err))
		return
	}
	sse.WriteComplete(report.RunID.String(), outcome(report))
}

// outcome summarises a report for the completion event.
func outcome(report *types.Report) string {
	switch {
	case report.ParseFailure != "":
		return "parse_failure"
	case report.RetrievalError != "":
		return "retrieval_error"
	case len(report.Ranked) == 0:
		return "empty"
	default:
		return "ok"
	}
}
