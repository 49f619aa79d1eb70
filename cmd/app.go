package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/recase/internal/config"
	"github.com/bimmerbailey/recase/internal/dispatch"
	"github.com/bimmerbailey/recase/internal/llm"
	"github.com/bimmerbailey/recase/internal/logging"
	"github.com/bimmerbailey/recase/internal/output"
	"github.com/bimmerbailey/recase/internal/pipeline"
	"github.com/bimmerbailey/recase/internal/preserve"
	"github.com/bimmerbailey/recase/internal/registry"
	"github.com/bimmerbailey/recase/internal/style"
	"github.com/bimmerbailey/recase/internal/transforms"
)

const providerCheckTimeout = 5 * time.Second

// app bundles what every transforming command needs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *registry.Registry
	pipeline *pipeline.Pipeline

	// ready reports whether the style model is usable. Nil when the
	// builtin rules answer.
	ready func(context.Context) error
}

// loadConfig decodes viper's merged settings over the defaults.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.New(w, logging.Options{
		Level:   cfg.Log.Level,
		JSON:    cfg.Log.JSON,
		Verbose: cfg.Verbose,
	})
}

func colorMode() output.ColorMode {
	return output.ParseColorMode(viper.GetString("color"))
}

// newStyleProvider returns the builtin rules unless an LLM backend is
// configured. The backend is checked once before use; when it is down or
// lacks the model, style.fallback selects the builtin rules instead of
// failing. The returned check is nil for the builtin rules.
func newStyleProvider(cfg *config.Config, logger *slog.Logger) (style.Provider, func(context.Context) error, error) {
	builtin := style.NewBuiltin()

	chat, err := llm.NewProvider(cfg, logger)
	if errors.Is(err, llm.ErrNoProvider) {
		return builtin, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create llm provider: %w", err)
	}

	model := cfg.LLM.Ollama.Model
	check := func(ctx context.Context) error {
		return checkProvider(ctx, chat, model)
	}

	ctx, cancel := context.WithTimeout(context.Background(), providerCheckTimeout)
	defer cancel()
	if err := check(ctx); err != nil {
		if cfg.Style.Fallback {
			logger.Warn("style model unavailable, using builtin rules",
				"host", cfg.LLM.Ollama.Host, "model", model, "error", err)
			return builtin, nil, nil
		}
		return nil, nil, fmt.Errorf("cannot use ollama at %s: %w\n\nStart Ollama with: ollama serve, pull the model with: ollama pull %s, or set style.fallback",
			cfg.LLM.Ollama.Host, err, model)
	}

	opts := []style.LLMOption{
		style.WithChatOptions(llm.ChatOptions{
			Model:       model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		}),
		style.WithLLMLogger(logger),
	}
	if cfg.Style.Fallback {
		opts = append(opts, style.WithFallback(builtin))
	}
	return style.NewLLM(chat, opts...), check, nil
}

// checkProvider verifies that the backend answers and has model pulled.
func checkProvider(ctx context.Context, p llm.Provider, model string) error {
	if err := p.Heartbeat(ctx); err != nil {
		return err
	}
	ok, err := p.ModelAvailable(ctx, model)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", llm.ErrModelNotFound, model)
	}
	return nil
}

// newApp wires registry, preservation engine and pipeline. metrics may be
// nil.
func newApp(cfg *config.Config, logger *slog.Logger, metrics prometheus.Registerer) (*app, error) {
	guides, ready, err := newStyleProvider(cfg, logger)
	if err != nil {
		return nil, err
	}

	reg, err := transforms.Default(guides)
	if err != nil {
		return nil, fmt.Errorf("failed to build transformation registry: %w", err)
	}

	var engineOpts []preserve.EngineOption
	engineOpts = append(engineOpts, preserve.WithLogger(logger))
	if len(cfg.Preservation.BrandNames) > 0 {
		engineOpts = append(engineOpts, preserve.WithBrands(cfg.Preservation.BrandList()))
	}
	engine, err := preserve.NewEngine(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build preservation engine: %w", err)
	}

	large, err := cfg.Limits.Large()
	if err != nil {
		return nil, err
	}
	maxBytes, err := cfg.Limits.Max()
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithLimits(large, maxBytes),
		pipeline.WithLogger(logger),
		pipeline.WithProgress(func(stage pipeline.Stage, size int) {
			logger.Info("processing", "stage", stage, "bytes", size)
		}),
	}
	if metrics != nil {
		m, err := pipeline.NewMetrics(metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to register pipeline metrics: %w", err)
		}
		opts = append(opts, pipeline.WithMetrics(m))
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		pipeline: pipeline.New(dispatch.New(reg, logger), engine, opts...),
		ready:    ready,
	}, nil
}
