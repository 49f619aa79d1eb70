package style

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/bimmerbailey/recase/internal/llm"
	"github.com/bimmerbailey/recase/internal/prompt"
)

// ErrRewriteRejected is returned when a model answer changes more than
// capitalization or drops placeholder characters.
var ErrRewriteRejected = errors.New("style rewrite rejected")

// Chatter is the subset of llm.Provider the LLM guide provider needs.
type Chatter interface {
	Chat(ctx context.Context, messages []llm.Message, opts *llm.ChatOptions) (*llm.Response, error)
}

// LLM applies style guides by asking a language model for the rewrite.
// Answers are accepted only when they differ from the input in letter case
// alone, so placeholders and wording always survive.
type LLM struct {
	chat     Chatter
	opts     llm.ChatOptions
	fallback Provider
	logger   *slog.Logger
}

// LLMOption configures an LLM provider.
type LLMOption func(*LLM)

// WithChatOptions sets the options sent with every request.
func WithChatOptions(opts llm.ChatOptions) LLMOption {
	return func(p *LLM) { p.opts = opts }
}

// WithFallback sets a provider used when the model fails or its answer is
// rejected.
func WithFallback(fb Provider) LLMOption {
	return func(p *LLM) { p.fallback = fb }
}

// WithLLMLogger sets the logger.
func WithLLMLogger(l *slog.Logger) LLMOption {
	return func(p *LLM) { p.logger = l }
}

// NewLLM returns a provider backed by chat.
func NewLLM(chat Chatter, opts ...LLMOption) *LLM {
	p := &LLM{chat: chat, logger: slog.Default()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Apply implements Provider.
func (p *LLM) Apply(ctx context.Context, text, key string) (string, error) {
	guide, ok := Lookup(key)
	if !ok {
		return "", unknownGuide(key)
	}
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	out, err := p.rewrite(ctx, text, guide)
	if err == nil {
		return out, nil
	}
	if p.fallback == nil || ctx.Err() != nil {
		return "", err
	}
	p.logger.Warn("llm style rewrite failed, using fallback", "guide", key, "error", err)
	return p.fallback.Apply(ctx, text, key)
}

func (p *LLM) rewrite(ctx context.Context, text string, guide Guide) (string, error) {
	pt := prompt.TypeTitleCase
	if guide.Key == "sentence-style" || guide.Key == "wikipedia-style" {
		pt = prompt.TypeSentenceCase
	}

	msgs, err := prompt.Build(pt, prompt.BuildOptions{
		Text:         text,
		GuideName:    guide.Name,
		GuideRule:    guide.Description,
		Placeholders: countPrivateUse(text),
	})
	if err != nil {
		return "", err
	}

	opts := p.opts
	resp, err := p.chat.Chat(ctx, msgs, &opts)
	if err != nil {
		return "", fmt.Errorf("style %s: %w", guide.Key, err)
	}

	out := cleanAnswer(resp.Content, text)
	if !strings.EqualFold(out, text) {
		return "", fmt.Errorf("%w: %s answer changed more than letter case", ErrRewriteRejected, guide.Key)
	}
	return out, nil
}

// cleanAnswer strips code fences and the outer whitespace a model tends to
// add, then restores the original's leading and trailing whitespace.
func cleanAnswer(answer, original string) string {
	a := strings.TrimSpace(answer)
	if strings.HasPrefix(a, "```") && strings.HasSuffix(a, "```") && len(a) >= 6 {
		a = strings.TrimSpace(a[3 : len(a)-3])
		first, _, _ := strings.Cut(strings.TrimSpace(original), "\n")
		if tag, rest, ok := strings.Cut(a, "\n"); ok && !strings.ContainsAny(tag, " \t") && !strings.EqualFold(tag, first) {
			a = strings.TrimSpace(rest)
		}
	}
	lead := original[:len(original)-len(strings.TrimLeftFunc(original, unicode.IsSpace))]
	trail := original[len(strings.TrimRightFunc(original, unicode.IsSpace)):]
	return lead + a + trail
}

func countPrivateUse(s string) int {
	n := 0
	for _, r := range s {
		if unicode.Is(unicode.Co, r) {
			n++
		}
	}
	return n
}
