package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/recase/internal/dispatch"
	"github.com/bimmerbailey/recase/internal/output"
	"github.com/bimmerbailey/recase/internal/pipeline"
	"github.com/bimmerbailey/recase/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <key> <file>",
	Short: "Re-run a transformation whenever a file changes",
	Long: `Watch a file and apply the transformation to its whole content once at
start and again after every save. Editors that save by renaming a new file
into place are followed.

The result replaces the content of --out, or is printed to stdout. A failed
run is reported on stderr and the watch continues.

Examples:
  recase watch snake-case fields.txt
  recase watch title-case draft.md --out draft.title.md
  recase watch remove-duplicate-lines list.txt --out list.unique.txt --debounce 500ms`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringP("out", "o", "", "write each result to this file instead of stdout")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period after a write before re-running")
	addPreservationFlags(watchCmd.Flags())

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	key, filePath := args[0], args[1]
	outPath, _ := cmd.Flags().GetString("out")
	debounce, _ := cmd.Flags().GetDuration("debounce")

	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if outPath != "" {
		same, err := samePath(filePath, outPath)
		if err != nil {
			return err
		}
		if same {
			return errors.New("--out must differ from the watched file")
		}
	}

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
	mode := colorMode()

	onChange := func(ctx context.Context, content string) error {
		res, err := a.pipeline.Run(ctx, pipeline.Request{
			Text:         content,
			Key:          key,
			Preservation: preservation,
		})
		if werr := output.WriteWarnings(stderr, res.Warnings, mode); werr != nil {
			return werr
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(stderr, output.FormatError(err, output.ShouldColorize(mode, stderr)))
			return nil
		}

		if outPath == "" {
			text := res.Text
			if !strings.HasSuffix(text, "\n") {
				text += "\n"
			}
			_, err := io.WriteString(stdout, text)
			return err
		}
		if err := writeFileAtomic(outPath, res.Text); err != nil {
			return err
		}
		logger.Info("wrote result", "path", outPath, "bytes", len(res.Text))
		return nil
	}

	w, err := watch.New(watch.Options{
		FilePath: filePath,
		Debounce: debounce,
		Logger:   logger,
		OnChange: onChange,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return w.Run(ctx)
}

// samePath reports whether a and b name the same file, following links
// when both exist.
func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	if absA == absB {
		return true, nil
	}

	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	if errA != nil || errB != nil {
		return false, nil
	}
	return os.SameFile(infoA, infoB), nil
}

// writeFileAtomic replaces path so readers never see a partial result.
func writeFileAtomic(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".recase-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
