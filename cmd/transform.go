package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bimmerbailey/recase/internal/config"
	"github.com/bimmerbailey/recase/internal/dispatch"
	"github.com/bimmerbailey/recase/internal/output"
	"github.com/bimmerbailey/recase/internal/pipeline"
	"github.com/bimmerbailey/recase/internal/preserve"
)

var transformCmd = &cobra.Command{
	Use:   "transform [flags] <key> [text...]",
	Short: "Apply a transformation to text",
	Long: `Apply the named transformation to text given as arguments, read from
files (globs allowed, "-" for stdin) or piped on stdin.

URLs, emails, hashtags, mentions and code blocks are preserved by default;
choose categories with --preserve or switch preservation off with
--no-preserve. Removed placeholders are reported as warnings on stderr.

Examples:
  recase transform camel-case "user account id"
  recase transform upper-case --preserve url,email "mail me at a@b.com"
  recase transform sort-lines --file "lists/*.txt" --format table
  cat notes.md | recase transform title-case --keep-on-error`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTransform,
}

func init() {
	addTransformFlags(transformCmd.Flags())
	rootCmd.AddCommand(transformCmd)
}

func addTransformFlags(fs *pflag.FlagSet) {
	fs.StringSliceP("file", "F", []string{}, "input file(s) or glob patterns, \"-\" for stdin (repeatable)")
	fs.Bool("keep-on-error", false, "print the original text when a transformation fails")
	addPreservationFlags(fs)
}

func addPreservationFlags(fs *pflag.FlagSet) {
	fs.StringSlice("preserve", []string{}, "categories to protect (url, email, hashtag, mention, code_block, markdown, brand, file_path, all, none)")
	fs.Bool("no-preserve", false, "disable preservation entirely")
}

// preservationFor resolves the preservation flags over the configured
// defaults.
func preservationFor(fs *pflag.FlagSet, cfg *config.Config) (preserve.Config, error) {
	if off, _ := fs.GetBool("no-preserve"); off {
		return preserve.Config{}, nil
	}
	if fs.Changed("preserve") {
		names, _ := fs.GetStringSlice("preserve")
		return preserve.ParseCategories(names)
	}
	return cfg.Preservation.Config, nil
}

type input struct {
	source string
	text   string
}

// readInputs collects the texts to transform. Text arguments are joined
// with single spaces; stdin loses one trailing newline.
func readInputs(cmd *cobra.Command, textArgs, patterns []string) ([]input, error) {
	if len(patterns) > 0 {
		if len(textArgs) > 0 {
			return nil, errors.New("text arguments cannot be combined with --file")
		}
		files, err := config.ExpandGlobs(patterns)
		if err != nil {
			return nil, err
		}

		inputs := make([]input, 0, len(files))
		for _, f := range files {
			if f == config.StdinPath {
				text, err := readStdin(cmd.InOrStdin())
				if err != nil {
					return nil, err
				}
				inputs = append(inputs, input{source: f, text: text})
				continue
			}
			data, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", f, err)
			}
			inputs = append(inputs, input{source: f, text: string(data)})
		}
		return inputs, nil
	}

	if len(textArgs) > 0 {
		return []input{{text: strings.Join(textArgs, " ")}}, nil
	}

	text, err := readStdin(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	return []input{{source: config.StdinPath, text: text}}, nil
}

func readStdin(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runTransform(cmd *cobra.Command, args []string) error {
	key := args[0]
	patterns, _ := cmd.Flags().GetStringSlice("file")
	keep, _ := cmd.Flags().GetBool("keep-on-error")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger := newLogger(cfg, stderr)

	a, err := newApp(cfg, logger, nil)
	if err != nil {
		return err
	}
	if _, ok := a.registry.Lookup(key); !ok {
		return &dispatch.UnknownTransformError{Key: key}
	}

	preservation, err := preservationFor(cmd.Flags(), cfg)
	if err != nil {
		return err
	}

	inputs, err := readInputs(cmd, args[1:], patterns)
	if err != nil {
		return err
	}

	format := output.ParseFormat(cfg.Format)
	mode := colorMode()
	var highlight func(preserve.Span) string
	if format == output.FormatText {
		highlight = output.Highlighter(output.ShouldColorize(mode, stdout))
	}

	ctx := commandContext(cmd)
	reports := make([]output.Report, 0, len(inputs))
	var errs []error
	for _, in := range inputs {
		res, err := a.pipeline.Run(ctx, pipeline.Request{
			Text:         in.text,
			Key:          key,
			Preservation: preservation,
			Highlight:    highlight,
		})
		if werr := output.WriteWarnings(stderr, res.Warnings, mode); werr != nil {
			return werr
		}

		if err != nil {
			if in.source != "" && in.source != config.StdinPath {
				err = fmt.Errorf("%s: %w", in.source, err)
			}
			errs = append(errs, err)
			// Plain output shows only what succeeded unless asked to
			// pass the original through.
			if !keep && (format == output.FormatText || format == output.FormatTable) {
				continue
			}
		}
		reports = append(reports, output.NewReport(in.source, key, res, err))
	}

	if len(reports) > 0 {
		if err := output.New(stdout, format).WriteReports(reports); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}
