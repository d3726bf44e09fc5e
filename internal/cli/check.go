package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pbhp/internal/detect"
	"github.com/ppiankov/pbhp/internal/engine"
	"github.com/ppiankov/pbhp/internal/policy"
	"github.com/ppiankov/pbhp/internal/scenario"
)

var (
	checkScenario string
	checkFormat   string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkScenario, "scenario", "", "Glob pattern for scenario YAML files (required)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
	_ = checkCmd.MarkFlagRequired("scenario")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run assessment assertions from scenario files",
	Long: "Loads scenario YAML files matching a glob pattern, replays each\n" +
		"request through the gate under the current policy, and reports pass/fail.\n" +
		"Records are kept in memory and never stored.\n\n" +
		"Exit code 0 if all cases pass, 1 if any fail.\n" +
		"Use in CI to gate policy and pattern changes.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	matches, err := filepath.Glob(checkScenario)
	if err != nil {
		return fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no scenario files match pattern: %s", checkScenario)
	}

	opts, err := scenarioOptions()
	if err != nil {
		return err
	}

	var results []*scenario.RunResult
	for _, path := range matches {
		r, err := scenario.LoadAndRun(cmd.Context(), path, opts...)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		results = append(results, r)
	}

	w := cmd.OutOrStdout()
	switch checkFormat {
	case "json":
		out, err := scenario.FormatJSON(results)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
	default:
		fmt.Fprint(w, scenario.FormatText(results))
	}

	// Exit 1 if any scenario has failures
	for _, r := range results {
		if r.Failed > 0 {
			os.Exit(1)
		}
	}
	return nil
}

// scenarioOptions applies the policy and patterns but no store, audit log
// or reviewer, so checks are deterministic and leave no trace.
func scenarioOptions() ([]engine.Option, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	patterns, err := detect.LoadPatterns(cfg.PatternsFile)
	if err != nil {
		return nil, err
	}
	validator, err := policy.NewValidator(cfg.Requirements)
	if err != nil {
		return nil, err
	}
	return []engine.Option{
		engine.WithLogger(slog.Default()),
		engine.WithConfig(cfg),
		engine.WithPatterns(patterns),
		engine.WithValidator(validator),
	}, nil
}
