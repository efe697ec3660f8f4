package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/adaptive-profile/internal/provenance"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
	"github.com/danielpatrickdp/adaptive-profile/internal/traitstore"
)

func inspectCmd(_ *rootOptions) *cobra.Command {
	var (
		dbPath  string
		userID  string
		last    int
		version string
		trait   string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show trait version history for a user",
		Example: `  profilectl inspect --db adaptive_profile.db
  profilectl inspect --db adaptive_profile.db --user u1 --last 10 --trait curiosity
  profilectl inspect --db adaptive_profile.db --version 3f2a... --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return errors.New("--db is required")
			}
			store, err := traitstore.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			switch {
			case version != "":
				return runDetailMode(out, store, version, jsonOut)
			case userID != "":
				return runListMode(out, store, userID, last, trait, jsonOut)
			default:
				return runUsersMode(out, store, jsonOut)
			}
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to profile database")
	cmd.Flags().StringVar(&userID, "user", "", "Show this user's versions")
	cmd.Flags().IntVar(&last, "last", 20, "Show N most recent versions")
	cmd.Flags().StringVar(&version, "version", "", "Show single version detail")
	cmd.Flags().StringVar(&trait, "trait", "", "Add a column for one trait's score")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON instead of a table")
	return cmd
}

// #region users-mode

func runUsersMode(out io.Writer, store *traitstore.Store, jsonOut bool) error {
	users, err := store.Users()
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(out, users)
	}
	if len(users) == 0 {
		fmt.Fprintln(out, "no users found")
		return nil
	}
	for _, u := range users {
		fmt.Fprintln(out, u)
	}
	return nil
}

// #endregion users-mode

// #region list-mode

type listRow struct {
	VersionID      string   `json:"version_id"`
	MeanScore      float64  `json:"mean_score"`
	MeanConfidence float64  `json:"mean_confidence"`
	DeltaNorm      *float64 `json:"delta_norm,omitempty"`
	Source         string   `json:"source,omitempty"`
	TraitScore     *float64 `json:"trait_score,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

func runListMode(out io.Writer, store *traitstore.Store, userID string, last int, trait string, jsonOut bool) error {
	versions, err := store.ListVersions(userID, last)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Fprintf(out, "no versions found for %s\n", userID)
		return nil
	}

	// Store returns newest first; print chronologically.
	rows := make([]listRow, len(versions))
	for i, v := range versions {
		score, conf := means(v.Traits)
		row := listRow{
			VersionID:      v.VersionID,
			MeanScore:      score,
			MeanConfidence: conf,
			CreatedAt:      v.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if m := parseMetrics(v.MetricsJSON); m != nil {
			dn := m.DeltaNorm
			row.DeltaNorm = &dn
			row.Source = string(m.Source)
		}
		if trait != "" {
			if ts, ok := v.Traits.Get(trait); ok {
				s := ts.Score
				row.TraitScore = &s
			}
		}
		rows[len(versions)-1-i] = row
	}

	if jsonOut {
		return printJSON(out, rows)
	}

	fmt.Fprintf(out, "%-10s  %10s  %10s  %8s  %-7s", "Version", "Mean Score", "Mean Conf", "Delta", "Source")
	if trait != "" {
		fmt.Fprintf(out, "  %10s", trait)
	}
	fmt.Fprintf(out, "  %s\n", "Time")
	for _, r := range rows {
		delta := "-"
		if r.DeltaNorm != nil {
			delta = fmt.Sprintf("%.4f", *r.DeltaNorm)
		}
		source := r.Source
		if source == "" {
			source = "seed"
		}
		fmt.Fprintf(out, "%-10s  %10.4f  %10.4f  %8s  %-7s", shortID(r.VersionID), r.MeanScore, r.MeanConfidence, delta, source)
		if trait != "" {
			val := "-"
			if r.TraitScore != nil {
				val = fmt.Sprintf("%.4f", *r.TraitScore)
			}
			fmt.Fprintf(out, "  %10s", val)
		}
		fmt.Fprintf(out, "  %s\n", r.CreatedAt)
	}

	entries, err := provenance.Recent(store.DB(), userID, 5)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		fmt.Fprintf(out, "\nRecent decisions:\n")
		for _, e := range entries {
			fmt.Fprintf(out, "  %-8s  %-9s  %s\n", e.TriggerType, e.Decision, e.Reason)
		}
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	VersionID string              `json:"version_id"`
	ParentID  string              `json:"parent_id"`
	UserID    string              `json:"user_id"`
	CreatedAt string              `json:"created_at"`
	Traits    refine.Vector       `json:"traits"`
	Deltas    []refine.TraitDelta `json:"deltas,omitempty"`
	DeltaNorm float64             `json:"delta_norm"`
}

func runDetailMode(out io.Writer, store *traitstore.Store, versionID string, jsonOut bool) error {
	v, err := store.GetVersion(versionID)
	if err != nil {
		return err
	}

	detail := detailOutput{
		VersionID: v.VersionID,
		ParentID:  v.ParentID,
		UserID:    v.UserID,
		CreatedAt: v.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Traits:    v.Traits,
	}
	if m := parseMetrics(v.MetricsJSON); m != nil {
		detail.Deltas = m.Deltas
		detail.DeltaNorm = m.DeltaNorm
	}

	if jsonOut {
		return printJSON(out, detail)
	}

	fmt.Fprintf(out, "Version:    %s\n", detail.VersionID)
	fmt.Fprintf(out, "Parent:     %s\n", detail.ParentID)
	fmt.Fprintf(out, "User:       %s\n", detail.UserID)
	fmt.Fprintf(out, "Created:    %s\n", detail.CreatedAt)
	fmt.Fprintf(out, "Delta Norm: %.4f\n", detail.DeltaNorm)

	fmt.Fprintf(out, "\nTraits:\n")
	for _, ts := range detail.Traits {
		fmt.Fprintf(out, "  %-20s %8.4f  conf %.2f\n", ts.TraitID, ts.Score, ts.Confidence)
	}
	if len(detail.Deltas) > 0 {
		fmt.Fprintf(out, "\nApplied deltas:\n")
		for _, d := range detail.Deltas {
			fmt.Fprintf(out, "  %-20s %+8.4f  (raw %+.4f)\n", d.TraitID, d.Applied, d.Raw)
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func means(v refine.Vector) (score, confidence float64) {
	if len(v) == 0 {
		return 0, 0
	}
	for _, ts := range v {
		score += ts.Score
		confidence += ts.Confidence
	}
	n := float64(len(v))
	return score / n, confidence / n
}

func parseMetrics(metricsJSON string) *refine.Metrics {
	if metricsJSON == "" {
		return nil
	}
	var m refine.Metrics
	if err := json.Unmarshal([]byte(metricsJSON), &m); err != nil {
		return nil
	}
	return &m
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
