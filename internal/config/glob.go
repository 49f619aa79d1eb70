package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// StdinPath is the conventional name for standard input in file lists.
const StdinPath = "-"

// ErrNoInputs is returned when no file patterns are given.
var ErrNoInputs = errors.New("no input files provided")

// ExpandGlobs expands file paths and glob patterns into a sorted unique list
// of regular files. Directories matched by a glob are skipped; a directory
// named explicitly is an error. StdinPath is passed through and kept first.
func ExpandGlobs(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, ErrNoInputs
	}

	files := make([]string, 0, len(patterns))
	seen := make(map[string]struct{})
	stdin := false

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, pattern := range patterns {
		if pattern == StdinPath {
			stdin = true
			continue
		}

		if hasGlobMeta(pattern) {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, err
			}
			matched := 0
			for _, match := range matches {
				if info, err := os.Stat(match); err == nil && info.IsDir() {
					continue
				}
				matched++
				add(match)
			}
			if matched == 0 {
				return nil, fmt.Errorf("no files match pattern %q", pattern)
			}
			continue
		}

		info, err := os.Stat(pattern)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", pattern)
		}
		add(pattern)
	}

	sort.Strings(files)
	if stdin {
		files = append([]string{StdinPath}, files...)
	}
	return files, nil
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[")
}
