package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/recase/internal/output"
	"github.com/bimmerbailey/recase/internal/registry"
)

func newListTestCmd(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{Use: "list"}
	cmd.SetOut(out)
	cmd.Flags().StringP("category", "c", "", "only list one category")
	return cmd
}

func TestListText(t *testing.T) {
	resetViper(t, "text")
	var out bytes.Buffer

	if err := runList(newListTestCmd(&out), nil); err != nil {
		t.Fatalf("runList() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) < 170 {
		t.Errorf("listed %d keys, want at least 170", len(lines))
	}
	if lines[0] != "upper-case" {
		t.Errorf("first key = %q, want upper-case", lines[0])
	}
	for _, want := range []string{"snake-case", "sha256", "zalgo", "json-pretty"} {
		if !strings.Contains(out.String(), want+"\n") {
			t.Errorf("missing key %s", want)
		}
	}
}

func TestListCategoryJSON(t *testing.T) {
	resetViper(t, "json")
	var out bytes.Buffer
	cmd := newListTestCmd(&out)
	setFlag(t, cmd, "category", "hash")

	if err := runList(cmd, nil); err != nil {
		t.Fatalf("runList() error = %v", err)
	}

	var entries []output.CatalogEntry
	if err := json.Unmarshal(out.Bytes(), &entries); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(entries) == 0 {
		t.Fatal("no hash transformations listed")
	}
	for _, e := range entries {
		if e.Category != registry.CategoryHash || e.Preserves {
			t.Errorf("unexpected entry %+v", e)
		}
	}
}

func TestListTable(t *testing.T) {
	resetViper(t, "table")
	var out bytes.Buffer
	cmd := newListTestCmd(&out)
	setFlag(t, cmd, "category", "case")

	if err := runList(cmd, nil); err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	if !strings.Contains(out.String(), "KEY") || !strings.Contains(out.String(), "kebab-case") {
		t.Errorf("unexpected table output:\n%s", out.String())
	}
	if strings.Contains(out.String(), "sha256") {
		t.Error("table output contains a key from another category")
	}
}

func TestListInvalidCategory(t *testing.T) {
	resetViper(t, "text")
	var out bytes.Buffer
	cmd := newListTestCmd(&out)
	setFlag(t, cmd, "category", "colours")

	err := runList(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "invalid category") {
		t.Fatalf("runList() error = %v, want invalid category", err)
	}
}
