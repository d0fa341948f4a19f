// Package profiling turns a free-text song reference into a structured profile using a language model,
// and normalizes profiles for scoring.
package profiling

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/song-scout/internal/llm"
	"github.com/jonathan/song-scout/internal/logger"
	"github.com/jonathan/song-scout/internal/prompts"
	"github.com/jonathan/song-scout/internal/schemas"
	"github.com/jonathan/song-scout/internal/types"
	embedded "github.com/jonathan/song-scout/schemas"
)

const promptFile = "profiling.json"

// Generator asks the language model for a song profile.
type Generator struct {
	client llm.Client
	tier   llm.ModelTier
}

// Option configures a Generator.
type Option func(*Generator)

// WithTier selects the model tier used for profiling (default standard).
func WithTier(tier llm.ModelTier) Option {
	return func(g *Generator) {
		g.tier = tier
	}
}

// NewGenerator creates a Generator backed by client.
func NewGenerator(client llm.Client, opts ...Option) *Generator {
	g := &Generator{
		client: client,
		tier:   llm.TierStandard,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces a profile for seed ("Title - Artist", optionally with a year).
// A reply that cannot be read as a profile is returned as *ParseFailure carrying the raw reply.
func (g *Generator) Generate(ctx context.Context, seed string) (*types.Profile, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, &InputError{Field: "seed", Message: "seed is empty"}
	}

	parts := ParseSeed(seed)
	log := logger.FromContext(ctx).With(
		zap.String("title", parts.Title),
		zap.String("artist", parts.Artist),
		zap.String("model", g.client.GetModel(g.tier)),
	)
	log.Debug("generating song profile")

	raw, err := g.client.GenerateJSON(ctx, BuildPrompt(seed), g.tier)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate song profile", Cause: err}
	}

	profile, err := ParseProfile(raw)
	if err != nil {
		log.Warn("model reply is not a usable profile", zap.Error(err))
		return nil, err
	}

	log.Debug("song profile ready",
		zap.Int("tags", len(profile.Tags)),
		zap.Int("instruments", len(profile.Instruments)),
		zap.Int("similar_artists", len(profile.SimilarArtists)),
	)
	return profile, nil
}

// BuildPrompt renders the profiling prompt for a seed.
func BuildPrompt(seed string) string {
	description := prompts.Format(prompts.MustGet(promptFile, "song-profile"), map[string]string{
		"Seed": seed,
	})
	schema := llm.SongProfileSchema(description)
	schema.Rules = append(schema.Rules, prompts.MustGet(promptFile, "song-profile-rules"))
	return llm.BuildExtractionPrompt(schema, seed)
}

// ParseProfile reads a profile from model output or a profile file.
// Code fences and chatter around the JSON object are tolerated.
func ParseProfile(raw string) (*types.Profile, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		return nil, &ParseFailure{Raw: raw, Message: "empty reply"}
	}

	if err := schemas.Validate(embedded.Profile, cleaned); err != nil {
		return nil, &ParseFailure{Raw: raw, Message: "reply does not match the profile schema", Cause: err}
	}

	var profile types.Profile
	if err := json.Unmarshal([]byte(cleaned), &profile); err != nil {
		return nil, &ParseFailure{Raw: raw, Message: "failed to decode profile", Cause: err}
	}
	return &profile, nil
}
