package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"birdsort/internal/matcher"
	"birdsort/internal/taxonomy"
)

type speciesResult struct {
	Query string         `json:"query"`
	Via   string         `json:"via"`
	Entry taxonomy.Entry `json:"entry"`
	Genus string         `json:"genus"`
}

func newSpeciesCommand(ctx *commandContext) *cobra.Command {
	var referencePath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "species <name>",
		Short: "Look up a species in the reference taxonomy",
		Long: "Look up a latin name (case-insensitive). When no latin name matches, the\n" +
			"argument is treated as a file name stem and matched the way scans match photos.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.Paths.Reference
			if expanded, err := expandOptional(referencePath); err != nil {
				return err
			} else if expanded != "" {
				path = expanded
			}
			catalog, err := taxonomy.Load(path, cfg.Reference.Schema())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			result, ok := lookupSpecies(catalog, query)
			if !ok {
				return fmt.Errorf("no species matches %q", query)
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			rows := [][]string{
				{"Order", result.Entry.Order},
				{"Family", result.Entry.Family},
				{"Genus", result.Genus},
				{"Latin", result.Entry.Latin},
				{"Localized", result.Entry.Localized},
				{"Matched by", result.Via},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().StringVar(&referencePath, "reference", "", "Reference taxonomy source (overrides paths.reference)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the entry as JSON")
	return cmd
}

func lookupSpecies(catalog *taxonomy.Catalog, query string) (speciesResult, bool) {
	idx, ok := catalog.Lookup(query)
	via := "latin name"
	if !ok {
		idx, ok = matcher.New(catalog.Entries).Match(query)
		via = "file name"
	}
	if !ok {
		return speciesResult{}, false
	}
	entry, ok := catalog.Entry(idx)
	if !ok {
		return speciesResult{}, false
	}
	return speciesResult{Query: query, Via: via, Entry: entry, Genus: entry.Genus()}, true
}
