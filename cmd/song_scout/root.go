package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/song-scout/internal/config"
	"github.com/jonathan/song-scout/internal/llm"
	"github.com/jonathan/song-scout/internal/logger"
	"github.com/jonathan/song-scout/internal/observability"
	"github.com/jonathan/song-scout/internal/pipeline"
	"github.com/jonathan/song-scout/internal/profiling"
	"github.com/jonathan/song-scout/internal/search"
	"github.com/jonathan/song-scout/internal/types"
)

// defaultConfigPath is read when --config is not given and the file exists.
const defaultConfigPath = "song_scout.yaml"

// depsFactory builds the pipeline collaborators. The returned func releases them.
type depsFactory func(ctx context.Context, cfg *config.Config, log *zap.Logger) (pipeline.Deps, func(), error)

// app holds the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	noColor    bool

	cfg     *config.Config
	log     *zap.Logger
	newDeps depsFactory
}

func newApp() *app {
	return &app{newDeps: buildDeps}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "song_scout",
		Short: "Find songs that sound like a seed song",
		Long: "song_scout asks a language model for a structured profile of a seed song, turns it into " +
			"web search queries, keeps playable links and re-ranks them by how well they match the profile.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to YAML config (default song_scout.yaml if present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level override: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newProfileCmd(a),
		newQueriesCmd(a),
		newRerankCmd(a),
		newSearchCmd(a),
		newPresetsCmd(a),
		newServeCmd(a),
	)
	return root
}

// init loads the configuration and the logger once per invocation.
func (a *app) init(cmd *cobra.Command) error {
	if a.cfg == nil {
		cfg, err := loadConfig(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.log == nil {
		level := a.logLevel
		if level == "" {
			level = a.cfg.Logging.Level
		}
		log, err := logger.NewLogger(a.cfg.Logging.Env, level)
		if err != nil {
			return err
		}
		a.log = log
	}
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), a.log))
	return nil
}

// loadConfig reads path, or the default file when present, or falls back to defaults and env.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err != nil {
			cfg := config.Default()
			cfg.ApplyEnv()
			return cfg, cfg.Validate()
		}
		path = defaultConfigPath
	}
	return config.LoadConfig(path)
}

func (a *app) printer(out io.Writer) *observability.Printer {
	return observability.NewColorPrinter(out, !a.noColor && isTerminal(out))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// buildDeps creates the LLM client and search backend described by cfg.
func buildDeps(ctx context.Context, cfg *config.Config, log *zap.Logger) (pipeline.Deps, func(), error) {
	client, err := newLLMClient(ctx, cfg.LLM)
	if err != nil {
		return pipeline.Deps{}, nil, err
	}

	backend, err := search.NewBackend(ctx, cfg.Search)
	if err != nil {
		_ = client.Close()
		return pipeline.Deps{}, nil, err
	}

	deps := pipeline.Deps{
		Profiler: &timeoutProfiler{
			next:    profiling.NewGenerator(client),
			timeout: time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		},
		Retriever: search.NewRetriever(backend),
		Logger:    log,
	}
	return deps, func() { _ = client.Close() }, nil
}

func newLLMClient(ctx context.Context, c config.LLMConfig) (llm.Client, error) {
	if c.APIKey == "" {
		return nil, errors.New("no LLM API key: set llm.api_key, OPENAI_API_KEY or GEMINI_API_KEY")
	}

	llmCfg := llm.ConfigFor(llm.Provider(c.Provider))
	if c.BaseURL != "" {
		llmCfg.BaseURL = c.BaseURL
	}
	if c.Temperature != nil {
		llmCfg.Temperature = *c.Temperature
	}
	if c.Model != "" {
		llmCfg = llmCfg.WithModel(llm.TierStandard, c.Model)
	}

	client, err := llm.NewClient(ctx, llmCfg, c.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// timeoutProfiler bounds each profile generation.
type timeoutProfiler struct {
	next    pipeline.Profiler
	timeout time.Duration
}

func (p *timeoutProfiler) Generate(ctx context.Context, seed string) (*types.Profile, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.next.Generate(ctx, seed)
}
