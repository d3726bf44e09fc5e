package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/pbhp/internal/engine"
	"github.com/ppiankov/pbhp/internal/model"
	"github.com/ppiankov/pbhp/internal/risk"
)

var (
	classifyImpact       string
	classifyLikelihood   string
	classifyIrreversible bool
	classifyPower        bool
	classifyAudience     bool
	classifyQuick        bool
	classifyFormat       string

	doorWall string
	doorGap  string
	doorDoor string
)

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyImpact, "impact", "", "trivial, moderate, severe or catastrophic")
	classifyCmd.Flags().StringVar(&classifyLikelihood, "likelihood", "", "unlikely, possible, likely or imminent")
	classifyCmd.Flags().BoolVar(&classifyIrreversible, "irreversible", false, "Harm cannot be undone")
	classifyCmd.Flags().BoolVar(&classifyPower, "power-asymmetry", false, "Harm lands on people with less power")
	classifyCmd.Flags().BoolVar(&classifyAudience, "audience-risk", false, "Harm reaches a vulnerable or amplifying audience")
	classifyCmd.Flags().BoolVar(&classifyQuick, "quick", false, "Fast floor check from --irreversible and --power-asymmetry only")
	classifyCmd.Flags().StringVarP(&classifyFormat, "format", "f", "text", "Output format (text|json)")

	rootCmd.AddCommand(doorCmd)
	doorCmd.Flags().StringVar(&doorWall, "wall", "", "The constraint being worked against")
	doorCmd.Flags().StringVar(&doorGap, "gap", "", "Where harm could leak through")
	doorCmd.Flags().StringVar(&doorDoor, "door", "", "The concrete escape vector")
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify one harm into a risk class",
	Long: "Applies the ordered rule table (first match wins) and one audience elevation step.\n" +
		"With --quick only the hard-to-undo and less-power floor is checked.",
	RunE: runClassify,
}

var doorCmd = &cobra.Command{
	Use:   "door",
	Short: "Check that a Door/Wall/Gap analysis names a concrete door",
	RunE:  runDoor,
}

type classification struct {
	RiskClass model.RiskClass `json:"risk_class"`
	Rule      string          `json:"rule"`
	Elevated  bool            `json:"elevated"`
}

func classifyFromFlags() (classification, error) {
	if classifyQuick {
		return classification{RiskClass: risk.MinimumFloor(classifyIrreversible, classifyPower), Rule: "minimum_floor"}, nil
	}
	impact, err := model.ParseImpact(classifyImpact)
	if err != nil {
		return classification{}, err
	}
	likelihood, err := model.ParseLikelihood(classifyLikelihood)
	if err != nil {
		return classification{}, err
	}
	c := classification{
		RiskClass: risk.ClassifyHarm(impact, likelihood, classifyIrreversible, classifyPower, classifyAudience),
		Rule:      "green.default",
		Elevated:  classifyAudience,
	}
	if r := risk.Match(risk.Factors{Impact: impact, Likelihood: likelihood, Irreversible: classifyIrreversible, PowerAsymmetry: classifyPower}); r != nil {
		c.Rule = r.Name
	}
	return c, nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	c, err := classifyFromFlags()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if classifyFormat == "json" {
		out, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
		return nil
	}
	fmt.Fprintf(w, "%s (rule %s", c.RiskClass.Label(), c.Rule)
	if c.Elevated {
		fmt.Fprint(w, ", elevated for audience")
	}
	fmt.Fprintln(w, ")")
	return nil
}

func runDoor(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if _, ok := engine.CheckDoorWallGap(doorWall, doorGap, doorDoor); ok {
		fmt.Fprintf(w, "Door is concrete: %s\n", doorDoor)
		return nil
	}
	fmt.Fprintln(w, "No concrete Door identified. PBHP does not permit proceeding without an escape vector.")
	return nil
}
