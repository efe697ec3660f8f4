package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/adaptive-profile/internal/evidence"
	"github.com/danielpatrickdp/adaptive-profile/internal/insight"
	"github.com/danielpatrickdp/adaptive-profile/internal/layer"
	"github.com/danielpatrickdp/adaptive-profile/internal/profile"
)

// answersFile is the input for the layers command.
type answersFile struct {
	UserID      string                        `json:"user_id"`
	Answers     []evidence.Answer             `json:"answers"`
	Validations map[layer.ID]layer.Validation `json:"validations,omitempty"`
}

func layersCmd(_ *rootOptions) *cobra.Command {
	var answersPath string

	cmd := &cobra.Command{
		Use:   "layers",
		Short: "Aggregate an answers file into layers and insight cards",
		Long: `Reads {"user_id": ..., "answers": [...], "validations": {...}} and prints
the 15-layer table and the insight cards drawn from it as JSON. No database
is touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if answersPath == "" {
				return errors.New("--answers is required")
			}
			data, err := os.ReadFile(answersPath)
			if err != nil {
				return fmt.Errorf("read answers: %w", err)
			}
			var in answersFile
			if err := json.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("parse answers: %w", err)
			}

			view := buildLayersView(in, insight.NewGenerator())
			return printJSON(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().StringVar(&answersPath, "answers", "", "Path to answers JSON")
	return cmd
}

func buildLayersView(in answersFile, gen *insight.Generator) profile.LayersView {
	set := evidence.NewSet()
	for _, a := range in.Answers {
		set.Put(evidence.Derive(a))
	}
	table := layer.Aggregate(set, in.Validations)
	return profile.LayersView{
		UserID:   in.UserID,
		Layers:   table.Ordered(),
		Insights: gen.Generate(in.UserID, table),
	}
}
