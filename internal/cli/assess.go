package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pbhp/internal/intake"
	"github.com/ppiankov/pbhp/internal/model"
	"github.com/ppiankov/pbhp/internal/preflight"
)

var (
	preflightContext string

	assessFile   string
	assessFormat string

	validateFile string
)

func init() {
	rootCmd.AddCommand(preflightCmd)
	preflightCmd.Flags().StringVar(&preflightContext, "context", "", "Extra context screened with the action")

	rootCmd.AddCommand(assessCmd)
	assessCmd.Flags().StringVar(&assessFile, "file", "", "Assessment request (YAML or JSON)")
	assessCmd.Flags().StringVarP(&assessFormat, "format", "f", "text", "Output format (text|json)")
	_ = assessCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateFile, "file", "", "Assessment request (YAML or JSON)")
	_ = validateCmd.MarkFlagRequired("file")
}

var preflightCmd = &cobra.Command{
	Use:   "preflight <action>",
	Short: "Screen an action description before assessment",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreflight,
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run an assessment request and seal the record",
	Long: "Replays every protocol step in the request, then finalizes the requested decision.\n" +
		"A failed finalization gate overrides the outcome to ESCALATE; that is reported\n" +
		"under INVALIDATED and is not a command error.",
	RunE: runAssess,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "List unmet requirements for a request without finalizing it",
	RunE:  runValidate,
}

func runPreflight(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	res := preflight.New(cfg.MinActionLength, cfg.ExtraActionVerbs).Run(args[0], preflightContext)
	w := cmd.OutOrStdout()
	printPreflight(w, &res)
	if res.Passed {
		fmt.Fprintln(w, "Preflight passed.")
	}
	return nil
}

func runAssess(cmd *cobra.Command, args []string) error {
	req, err := intake.Load(assessFile)
	if err != nil {
		return err
	}
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := intake.Run(cmd.Context(), rt.engine, req)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if assessFormat == "json" {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
		return nil
	}
	printPreflight(w, res.Record.Preflight)
	printGate(w, res.Record.FinalizationGate)
	if !res.Blocked && !res.Finalized {
		fmt.Fprintln(w, "No decision in request; assessment left open and not stored.")
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, res.Response)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	req, err := intake.Load(validateFile)
	if err != nil {
		return err
	}
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	a, blocked, err := intake.Build(cmd.Context(), rt.engine, req)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if blocked {
		printPreflight(w, a.Preflight)
		return nil
	}
	if req.Decision != nil {
		a.DecisionOutcome = req.Decision.Outcome
		a.Justification = req.Decision.Justification
	}
	errs := rt.engine.ValidateRequirements(a)
	if len(errs) == 0 {
		fmt.Fprintf(w, "OK: all requirements met for %s\n", a.HighestRiskClass.Label())
		return nil
	}
	fmt.Fprintf(w, "UNMET (%s)\n", a.HighestRiskClass.Label())
	printList(w, errs)
	return nil
}

func printPreflight(w io.Writer, p *model.PreflightResult) {
	if p == nil {
		return
	}
	if len(p.Blocks) > 0 {
		fmt.Fprintln(w, "BLOCKED")
		printList(w, p.Blocks)
	}
	if len(p.Escalations) > 0 {
		fmt.Fprintln(w, "ESCALATIONS")
		printList(w, p.Escalations)
	}
}

func printGate(w io.Writer, g *model.FinalizationGateResult) {
	if g == nil {
		return
	}
	if !g.Valid {
		fmt.Fprintf(w, "INVALIDATED (requested %s, now ESCALATE)\n", strings.ToUpper(string(g.RequestedOutcome)))
		printList(w, g.InvalidationReasons)
	}
	if len(g.Warnings) > 0 {
		fmt.Fprintln(w, "WARNINGS")
		printList(w, g.Warnings)
	}
}

func printList(w io.Writer, items []string) {
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", it)
	}
	fmt.Fprintln(w)
}
