package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode"

	"github.com/bimmerbailey/recase/internal/dispatch"
	"github.com/bimmerbailey/recase/internal/preserve"
	"github.com/bimmerbailey/recase/internal/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()

	reg := registry.New()
	reg.MustRegister("upper-case", registry.Pure(strings.ToUpper))
	reg.MustRegister("base64-encode", registry.Pure(func(s string) string {
		return base64.StdEncoding.EncodeToString([]byte(s))
	}), registry.WithCategory(registry.CategoryEncoding))
	reg.MustRegister("strip-private", registry.Pure(func(s string) string {
		return strings.Map(func(r rune) rune {
			if unicode.Is(unicode.Co, r) {
				return -1
			}
			return r
		}, s)
	}))
	reg.MustRegister("explode", registry.Pure(func(string) string {
		panic("boom")
	}))
	reg.Freeze()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng, err := preserve.NewEngine(preserve.WithLogger(logger))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	opts = append([]Option{WithLogger(logger)}, opts...)
	return New(dispatch.New(reg, logger), eng, opts...)
}

func TestRun(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "email preserved",
			req:  Request{Text: "Contact me at a@b.com NOW", Key: "upper-case", Preservation: preserve.Config{Emails: true}},
			want: "CONTACT ME AT a@b.com NOW",
		},
		{
			name: "no protection baseline",
			req:  Request{Text: "Contact me at a@b.com NOW", Key: "upper-case", Preservation: preserve.Config{Emails: false}},
			want: "CONTACT ME AT A@B.COM NOW",
		},
		{
			name: "url and mention",
			req:  Request{Text: "ask @bob about https://x.io/Path", Key: "upper-case", Preservation: preserve.All()},
			want: "ASK @bob ABOUT https://x.io/Path",
		},
		{
			name: "encoding skips preservation",
			req:  Request{Text: "a@b.com", Key: "base64-encode", Preservation: preserve.All()},
			want: base64.StdEncoding.EncodeToString([]byte("a@b.com")),
		},
		{
			name: "empty text",
			req:  Request{Text: "", Key: "upper-case", Preservation: preserve.All()},
			want: "",
		},
		{
			name: "adversarial private-use input",
			req:  Request{Text: "\uE000 x@y.com \uE001", Key: "upper-case", Preservation: preserve.Config{Emails: true}},
			want: "\uE000 x@y.com \uE001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Run(ctx, tt.req)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if res.Text != tt.want {
				t.Errorf("Run() = %q, want %q", res.Text, tt.want)
			}
			if res.Tier != TierNormal {
				t.Errorf("Tier = %s, want %s", res.Tier, TierNormal)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	p := newTestPipeline(t, WithLimits(8, 16))
	ctx := context.Background()

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"unknown key", Request{Text: "hello", Key: "not-a-real-key"}, dispatch.ErrUnknownTransform},
		{"invalid utf-8", Request{Text: "bad \xff byte", Key: "upper-case"}, ErrEncoding},
		{"too large", Request{Text: strings.Repeat("a", 17), Key: "upper-case"}, ErrInputTooLarge},
		{"execution failure", Request{Text: "hello", Key: "explode"}, dispatch.ErrTransformExecution},
		{"size checked before key", Request{Text: strings.Repeat("a", 17), Key: "not-a-real-key"}, ErrInputTooLarge},
		{"encoding checked before key", Request{Text: "\xff", Key: "not-a-real-key"}, ErrEncoding},
		{"empty text with unknown key", Request{Key: "not-a-real-key"}, dispatch.ErrUnknownTransform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Run(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if res == nil {
				t.Fatal("Run() returned a nil result")
			}
			if res.Text != tt.req.Text {
				t.Errorf("failed run lost the input: got %q, want %q", res.Text, tt.req.Text)
			}
		})
	}
}

func TestRun_TooLargeBoundary(t *testing.T) {
	const ceiling = 32
	p := newTestPipeline(t, WithLimits(16, ceiling))

	if _, err := p.Run(context.Background(), Request{Text: strings.Repeat("a", ceiling), Key: "upper-case"}); err != nil {
		t.Fatalf("input at the ceiling was rejected: %v", err)
	}

	_, err := p.Run(context.Background(), Request{Text: strings.Repeat("a", ceiling+1), Key: "upper-case"})
	var tooLarge *TooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("Run() error = %v, want *TooLargeError", err)
	}
	if tooLarge.Size != ceiling+1 || tooLarge.Max != ceiling {
		t.Errorf("TooLargeError = %+v", tooLarge)
	}
}

func TestRun_LargeTierProgress(t *testing.T) {
	var stages []Stage
	p := newTestPipeline(t,
		WithLimits(4, 1024),
		WithProgress(func(s Stage, _ int) { stages = append(stages, s) }),
	)

	res, err := p.Run(context.Background(), Request{
		Text:         "write to a@b.com",
		Key:          "upper-case",
		Preservation: preserve.Config{Emails: true},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Tier != TierLarge {
		t.Errorf("Tier = %s, want %s", res.Tier, TierLarge)
	}

	want := []Stage{StagePreserve, StageTransform, StageRestore, StageDone}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage %d = %s, want %s", i, stages[i], want[i])
		}
	}
}

func TestRun_NoProgressForNormalTier(t *testing.T) {
	called := false
	p := newTestPipeline(t, WithProgress(func(Stage, int) { called = true }))

	if _, err := p.Run(context.Background(), Request{Text: "short", Key: "upper-case"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if called {
		t.Error("progress reported for normal-tier input")
	}
}

func TestRun_MissingPlaceholderWarning(t *testing.T) {
	p := newTestPipeline(t)

	res, err := p.Run(context.Background(), Request{
		Text:         "mail a@b.com today",
		Key:          "strip-private",
		Preservation: preserve.Config{Emails: true},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Text != "mail  today" {
		t.Errorf("Run() = %q", res.Text)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Original != "a@b.com" {
		t.Errorf("Warnings = %+v", res.Warnings)
	}
}

func TestRun_Highlight(t *testing.T) {
	p := newTestPipeline(t)

	res, err := p.Run(context.Background(), Request{
		Text:         "hi @ann",
		Key:          "upper-case",
		Preservation: preserve.Config{Mentions: true},
		Highlight:    func(s preserve.Span) string { return "<" + s.Original + ">" },
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Text != "HI <@ann>" {
		t.Errorf("Run() = %q", res.Text)
	}
}

func TestRun_Cancelled(t *testing.T) {
	p := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.Run(ctx, Request{Text: "hello", Key: "upper-case"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if res.Text != "hello" {
		t.Errorf("cancelled run returned %q", res.Text)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	p := newTestPipeline(t, WithMetrics(m))
	ctx := context.Background()

	_, _ = p.Run(ctx, Request{Text: "a@b.com", Key: "upper-case", Preservation: preserve.Config{Emails: true}})
	_, _ = p.Run(ctx, Request{Text: "x", Key: "nope"})
	_, _ = p.Run(ctx, Request{Text: "x", Key: "explode"})

	if got := testutil.ToFloat64(m.runs.WithLabelValues("upper-case", outcomeOK)); got != 1 {
		t.Errorf("ok runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("unknown", outcomeUnknown)); got != 1 {
		t.Errorf("unknown runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("explode", outcomeFailed)); got != 1 {
		t.Errorf("failed runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.spans.WithLabelValues("email")); got != 1 {
		t.Errorf("email spans = %v, want 1", got)
	}

	if _, err := NewMetrics(reg); err == nil {
		t.Error("registering the collectors twice should fail")
	}
}
