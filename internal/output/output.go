// Package output provides formatted output rendering for transformation
// results and the transformation catalog. It supports text, JSON, table and
// YAML formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bimmerbailey/recase/internal/pipeline"
	"github.com/bimmerbailey/recase/internal/preserve"
	"github.com/bimmerbailey/recase/internal/registry"
)

// Format represents an output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Writer handles writing formatted output.
type Writer struct {
	w      io.Writer
	format Format
}

// New creates a new output Writer.
func New(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

// Format returns the writer's format.
func (wr *Writer) Format() Format {
	return wr.format
}

// Report is one transformation outcome as shown to the user.
type Report struct {
	Source     string                               `json:"source,omitempty" yaml:"source,omitempty"`
	Key        string                               `json:"key" yaml:"key"`
	Result     string                               `json:"result" yaml:"result"`
	Tier       pipeline.Tier                        `json:"tier" yaml:"tier"`
	DurationMs int64                                `json:"durationMs" yaml:"duration_ms"`
	Warnings   []preserve.MissingPlaceholderWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error      string                               `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewReport builds a Report from a pipeline result. err, when set, is
// recorded and the result text is the untouched input.
func NewReport(source, key string, res *pipeline.Result, err error) Report {
	r := Report{Source: source, Key: key}
	if res != nil {
		r.Result = res.Text
		r.Tier = res.Tier
		r.DurationMs = res.Duration.Round(time.Millisecond).Milliseconds()
		r.Warnings = res.Warnings
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// WriteReports outputs transformation results in the configured format.
// Text output is the result text alone, one result after another.
func (wr *Writer) WriteReports(reports []Report) error {
	switch wr.format {
	case FormatJSON:
		if len(reports) == 1 {
			return wr.WriteJSON(reports[0])
		}
		return wr.WriteJSON(reports)
	case FormatYAML:
		if len(reports) == 1 {
			return wr.WriteYAML(reports[0])
		}
		return wr.WriteYAML(reports)
	case FormatTable:
		return wr.writeReportTable(reports)
	default:
		return wr.writeReportText(reports)
	}
}

func (wr *Writer) writeReportText(reports []Report) error {
	for _, r := range reports {
		if len(reports) > 1 && r.Source != "" {
			if _, err := fmt.Fprintf(wr.w, "==> %s <==\n", r.Source); err != nil {
				return err
			}
		}
		text := r.Result
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		if _, err := io.WriteString(wr.w, text); err != nil {
			return err
		}
	}
	return nil
}

func (wr *Writer) writeReportTable(reports []Report) error {
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tKEY\tTIER\tWARNINGS\tRESULT")
	fmt.Fprintln(tw, "------\t---\t----\t--------\t------")

	for _, r := range reports {
		source := r.Source
		if source == "" {
			source = "-"
		}
		result := r.Result
		if r.Error != "" {
			result = "error: " + r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", source, r.Key, r.Tier, len(r.Warnings), truncate(oneLine(result), 60))
	}

	return tw.Flush()
}

// CatalogEntry describes one registered transformation.
type CatalogEntry struct {
	Key         string            `json:"key" yaml:"key"`
	Category    registry.Category `json:"category" yaml:"category"`
	Description string            `json:"description" yaml:"description"`
	Preserves   bool              `json:"preserves" yaml:"preserves"`
}

// NewCatalogEntry converts a descriptor for display.
func NewCatalogEntry(d registry.Descriptor) CatalogEntry {
	return CatalogEntry{
		Key:         d.Key,
		Category:    d.Category,
		Description: d.Description,
		Preserves:   d.Preserves(),
	}
}

// WriteCatalog outputs registered transformations. Text output is one key
// per line so it can be piped.
func (wr *Writer) WriteCatalog(entries []CatalogEntry) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(entries)
	case FormatYAML:
		return wr.WriteYAML(entries)
	case FormatTable:
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tCATEGORY\tPRESERVES\tDESCRIPTION")
		fmt.Fprintln(tw, "---\t--------\t---------\t-----------")
		for _, e := range entries {
			preserves := "no"
			if e.Preserves {
				preserves = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Key, e.Category, preserves, truncate(e.Description, 70))
		}
		return tw.Flush()
	default:
		for _, e := range entries {
			if _, err := fmt.Fprintln(wr.w, e.Key); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v any) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteYAML outputs any value as YAML.
func (wr *Writer) WriteYAML(v any) error {
	enc := yaml.NewEncoder(wr.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
