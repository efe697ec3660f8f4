package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/adaptive-profile/internal/catalog"
	"github.com/danielpatrickdp/adaptive-profile/internal/layer"
)

func questionsCmd(opts *rootOptions) *cobra.Command {
	var (
		layerID int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "List the question catalog",
		Long: `Prints every catalog question with its layer, response type and trait
weights. Layer-only questions (no trait weights) are marked as such.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg.CatalogPath)
			if err != nil {
				return err
			}
			if layerID != 0 && !layer.ID(layerID).Valid() {
				return fmt.Errorf("--layer must be 1..%d", layer.Count)
			}
			return printQuestions(cmd.OutOrStdout(), cat, layerID, jsonOut)
		},
	}

	cmd.Flags().IntVar(&layerID, "layer", 0, "Only questions feeding this layer")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printQuestions(out io.Writer, cat *catalog.Catalog, layerID int, jsonOut bool) error {
	var qs []catalog.Question
	for _, q := range cat.Questions() {
		if layerID == 0 || q.Layer == layerID {
			qs = append(qs, q)
		}
	}
	if jsonOut {
		return printJSON(out, qs)
	}

	fmt.Fprintf(out, "%-13s  %-5s  %-9s  %s\n", "Question", "Layer", "Type", "Traits")
	for _, q := range qs {
		traits := "layer only"
		if len(q.MapsTo) > 0 {
			parts := make([]string, 0, len(q.MapsTo))
			for _, m := range q.MapsTo {
				parts = append(parts, fmt.Sprintf("%s(%+.2f)", m.TraitID, m.Weight))
			}
			traits = strings.Join(parts, " ")
		}
		fmt.Fprintf(out, "%-13s  %-5d  %-9s  %s\n", q.ID, q.Layer, q.Type, traits)
	}
	fmt.Fprintf(out, "\n%d questions\n", len(qs))
	return nil
}
