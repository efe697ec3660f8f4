package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/adaptive-profile/internal/catalog"
	"github.com/danielpatrickdp/adaptive-profile/internal/provenance"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
	"github.com/danielpatrickdp/adaptive-profile/internal/replay"
	"github.com/danielpatrickdp/adaptive-profile/internal/traitstore"
)

// scoreTolerance is the largest score drift replay accepts as equal.
const scoreTolerance = 1e-6

var errReplayDiverged = errors.New("replay diverged from recorded outcomes")

func replayCmd(opts *rootOptions) *cobra.Command {
	var (
		fixturePath string
		dbPath      string
		userID      string
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a fixture or a user's decision log and report drift",
		Example: `  profilectl replay --fixture internal/replay/testdata/onboarding_session.json
  profilectl replay --db adaptive_profile.db --user u1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (fixturePath == "") == (dbPath == "") {
				return errors.New("exactly one of --fixture or --db is required")
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg.CatalogPath)
			if err != nil {
				return err
			}
			config := replay.ReplayConfig{RefineConfig: cfg.RefineConfig(), GateConfig: cfg.GateConfig()}

			out := cmd.OutOrStdout()
			if fixturePath != "" {
				return runFixtureMode(out, cat, fixturePath)
			}
			if userID == "" {
				return errors.New("--user is required with --db")
			}
			return runDBMode(out, cat, config, dbPath, userID)
		},
	}

	cmd.Flags().StringVar(&fixturePath, "fixture", "", "Path to fixture JSON (fixture mode)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Path to profile database (DB mode)")
	cmd.Flags().StringVar(&userID, "user", "", "User whose decision log to replay (DB mode)")
	return cmd
}

// #region fixture-mode

// runFixtureMode replays a fixture with its own config, ignoring the process config.
func runFixtureMode(out io.Writer, cat *catalog.Catalog, path string) error {
	f, err := replay.LoadFixture(path)
	if err != nil {
		return err
	}

	results := replay.Replay(cat, f.StartTraits, f.Interactions(), f.ReplayConfig())
	printResults(out, results, f.ExpectedResults)
	printSummary(out, replay.Summarize(results, f.StartTraits))

	mismatches := f.Check(results, scoreTolerance)
	for _, m := range mismatches {
		fmt.Fprintf(out, "MISMATCH %s: expected %s, got %s\n", m.Subject, m.Expected, m.Got)
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%w: %d mismatches", errReplayDiverged, len(mismatches))
	}
	fmt.Fprintln(out, "fixture OK")
	return nil
}

// #endregion fixture-mode

// #region db-mode

// runDBMode rebuilds the user's steps from provenance, replays them from a
// neutral seed and compares actions and the final vector with the store.
func runDBMode(out io.Writer, cat *catalog.Catalog, config replay.ReplayConfig, dbPath, userID string) error {
	store, err := traitstore.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	entries, err := provenance.History(store.DB(), userID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no provenance entries for %s", userID)
	}
	rec, err := replay.FromProvenance(entries)
	if err != nil {
		return err
	}

	start := refine.Seed(cat.TraitIDs())
	results := replay.Replay(cat, start, rec.Interactions, config)
	diverged := printResults(out, results, rec.Expected)
	summary := replay.Summarize(results, start)
	printSummary(out, summary)
	if rec.Skipped > 0 {
		fmt.Fprintf(out, "skipped %d layer-only answers\n", rec.Skipped)
	}

	if rec.RolledBack {
		fmt.Fprintln(out, "log contains rollbacks; final vector not compared")
	} else {
		current, err := store.GetCurrent(userID)
		if err != nil {
			return err
		}
		for _, live := range current.Traits {
			got, ok := summary.FinalTraits.Get(live.TraitID)
			if !ok || abs(got.Score-live.Score) > scoreTolerance {
				fmt.Fprintf(out, "MISMATCH %s: stored %.4f, replayed %.4f\n", live.TraitID, live.Score, got.Score)
				diverged++
			}
		}
	}

	if diverged > 0 {
		return fmt.Errorf("%w: %d mismatches", errReplayDiverged, diverged)
	}
	fmt.Fprintln(out, "replay matches recorded history")
	return nil
}

// #endregion db-mode

// #region output

// printResults writes one line per step and returns how many differ from expected.
func printResults(out io.Writer, results []replay.ReplayResult, expected []replay.FixtureExpectedResult) int {
	want := make(map[string]string, len(expected))
	for _, e := range expected {
		want[e.StepID] = e.Action
	}

	mismatches := 0
	fmt.Fprintf(out, "%-10s  %-12s  %-12s  %s\n", "Step", "Action", "Recorded", "Reason")
	for _, r := range results {
		marker := ""
		if exp, ok := want[r.StepID]; ok && exp != r.Action {
			marker = "  <- drift"
			mismatches++
		}
		fmt.Fprintf(out, "%-10s  %-12s  %-12s  %s%s\n", r.StepID, r.Action, want[r.StepID], r.Reason, marker)
	}
	return mismatches
}

func printSummary(out io.Writer, s replay.ReplaySummary) {
	fmt.Fprintf(out, "\nsteps=%d commits=%d gate_rejects=%d no_ops=%d errors=%d warnings=%d\n",
		s.TotalSteps, s.Commits, s.GateRejects, s.NoOps, s.Errors, s.Warnings)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// #endregion output
