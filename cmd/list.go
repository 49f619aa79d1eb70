package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/recase/internal/output"
	"github.com/bimmerbailey/recase/internal/registry"
	"github.com/bimmerbailey/recase/internal/style"
	"github.com/bimmerbailey/recase/internal/transforms"
)

var listCmd = &cobra.Command{
	Use:   "list [flags]",
	Short: "List available transformations",
	Long: `List every registered transformation key in registration order.

Text output prints one key per line for use in scripts; table, json and yaml
add the category, description and whether preservation applies.

Examples:
  recase list
  recase list --category encoding --format table
  recase list --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringP("category", "c", "", "only list one category ("+categoryNames()+")")
	rootCmd.AddCommand(listCmd)
}

func categoryNames() string {
	names := make([]string, 0, len(registry.Categories()))
	for _, c := range registry.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func runList(cmd *cobra.Command, args []string) error {
	categoryStr, _ := cmd.Flags().GetString("category")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var filter registry.Category
	if categoryStr != "" {
		c, ok := registry.ParseCategory(categoryStr)
		if !ok {
			return fmt.Errorf("invalid category: %s (valid: %s)", categoryStr, categoryNames())
		}
		filter = c
	}

	// Listing never calls a style guide, so the builtin provider suffices
	// even when an LLM is configured.
	reg, err := transforms.Default(style.NewBuiltin())
	if err != nil {
		return err
	}

	var entries []output.CatalogEntry
	for d := range reg.Descriptors() {
		if filter != "" && d.Category != filter {
			continue
		}
		entries = append(entries, output.NewCatalogEntry(d))
	}

	return output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format)).WriteCatalog(entries)
}
