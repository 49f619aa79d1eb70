// Package llm provides an abstraction layer for Large Language Model interactions.
//
// The style package uses it to apply style guides through a model instead of
// the rule-based engine.
//
// Example usage:
//
//	provider, err := llm.NewProvider(cfg, logger)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := provider.Chat(ctx, []llm.Message{
//	    {Role: "system", Content: "You are a copy editor."},
//	    {Role: "user", Content: "Apply AP title case: the art of war"},
//	}, &llm.ChatOptions{Temperature: 0})
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bimmerbailey/recase/internal/config"
	"github.com/bimmerbailey/recase/internal/llm/ollama"
)

// Provider defines the interface for LLM interactions.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Chat sends messages and returns a complete response.
	// The context can be used to cancel the request.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)

	// Heartbeat checks if the provider is reachable and healthy.
	Heartbeat(ctx context.Context) error

	// ModelAvailable checks if a specific model is available for use.
	ModelAvailable(ctx context.Context, model string) (bool, error)
}

// Message represents a single message in a conversation.
type Message struct {
	// Role identifies the message sender: "system", "user", or "assistant"
	Role string

	// Content is the message text
	Content string
}

// ChatOptions configures chat behavior.
// All fields are optional; nil opts uses provider defaults.
type ChatOptions struct {
	Model string

	// Temperature controls randomness. Style rewrites should use 0.
	Temperature float32

	// MaxTokens limits the response length (0 = provider default)
	MaxTokens int
}

// Response represents a complete LLM response.
type Response struct {
	Content      string
	Model        string
	TokensPrompt int
	TokensTotal  int
}

// Common errors returned by LLM providers.
var (
	// ErrProviderUnavailable indicates the LLM provider is not reachable
	ErrProviderUnavailable = errors.New("llm provider is not reachable")

	// ErrModelNotFound indicates the requested model is not available
	ErrModelNotFound = errors.New("requested model is not available")

	// ErrInvalidResponse indicates the provider returned an invalid response
	ErrInvalidResponse = errors.New("provider returned invalid response")

	// ErrNoProvider indicates the configuration selects no LLM backend
	ErrNoProvider = errors.New("no llm provider configured")
)

// NewProvider creates an LLM provider based on the configuration.
// The backend is chosen by style.provider; "builtin" needs no model and
// yields ErrNoProvider.
func NewProvider(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	providerType := strings.ToLower(cfg.Style.Provider)
	logger.Debug("creating llm provider", "type", providerType)

	switch providerType {
	case "ollama":
		var keepAlive time.Duration
		if cfg.LLM.Ollama.KeepAlive != "" {
			d, err := time.ParseDuration(cfg.LLM.Ollama.KeepAlive)
			if err != nil {
				return nil, fmt.Errorf("invalid llm.ollama.keep_alive: %w", err)
			}
			keepAlive = d
		}

		p, err := ollama.New(ollama.Config{
			Host:      cfg.LLM.Ollama.Host,
			Model:     cfg.LLM.Ollama.Model,
			KeepAlive: keepAlive,
			NumCtx:    cfg.LLM.Ollama.NumCtx,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &ollamaProviderAdapter{provider: p}, nil

	case "", "builtin":
		return nil, ErrNoProvider

	default:
		return nil, fmt.Errorf("unknown llm provider: %s (supported: ollama)", providerType)
	}
}

// ollamaProviderAdapter adapts the ollama.Provider to the llm.Provider interface.
// This is needed to avoid import cycles between llm and ollama packages.
type ollamaProviderAdapter struct {
	provider *ollama.Provider
}

func (a *ollamaProviderAdapter) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	ollamaMessages := make([]ollama.Message, len(messages))
	for i, msg := range messages {
		ollamaMessages[i] = ollama.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	var ollamaOpts *ollama.ChatOptions
	if opts != nil {
		ollamaOpts = &ollama.ChatOptions{
			Model:       opts.Model,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		}
	}

	resp, err := a.provider.Chat(ctx, ollamaMessages, ollamaOpts)
	if err != nil {
		if errors.Is(err, ollama.ErrProviderUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return nil, err
	}
	if resp.Content == "" {
		return nil, ErrInvalidResponse
	}

	return &Response{
		Content:      resp.Content,
		Model:        resp.Model,
		TokensPrompt: resp.TokensPrompt,
		TokensTotal:  resp.TokensTotal,
	}, nil
}

func (a *ollamaProviderAdapter) Heartbeat(ctx context.Context) error {
	if err := a.provider.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return nil
}

func (a *ollamaProviderAdapter) ModelAvailable(ctx context.Context, model string) (bool, error) {
	return a.provider.ModelAvailable(ctx, model)
}
