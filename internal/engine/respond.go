package engine

import (
	"fmt"
	"strings"

	"github.com/ppiankov/pbhp/internal/model"
)

// Respond renders the consistent response for an assessment: the
// numbered sections, any drift alarms, the confidence and the record id.
// Sections 6 to 8 appear only at the classes that require them.
func Respond(a *model.Assessment) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("**1. Action Recognition**")
	line("You are considering: %s", a.ActionDescription)
	line("")

	line("**2. Risk Acknowledgment**")
	if len(a.Harms) == 0 {
		line("No significant harms identified.")
	}
	for _, h := range a.Harms {
		line("- %s (Impact: %s, Likelihood: %s, Risk: %s)", h.Description, h.Impact, h.Likelihood, h.RiskClass.Label())
		if h.PowerAsymmetry {
			line("  Power asymmetry affects: %s", h.LeastPowerfulAffected)
		}
	}
	line("")

	line("**3. PBHP Determination**")
	line("Risk Class: **%s**", a.HighestRiskClass.Label())
	line("")

	line("**4. Decision Outcome**")
	line("Decision: **%s**", strings.ToUpper(strings.ReplaceAll(string(a.DecisionOutcome), "_", " ")))
	line("%s", a.Justification)
	line("")

	line("**5. Door Statement (Escape Vector)**")
	switch a.DecisionOutcome {
	case model.OutcomeProceed, model.OutcomeProceedModified, model.OutcomeRedirect:
		if a.DoorWallGap != nil {
			line("Safest path: %s", a.DoorWallGap.Door)
		} else {
			line("No Door/Wall/Gap analysis performed.")
		}
	default:
		if len(a.Alternatives) > 0 {
			line("Safer alternative: %s", a.Alternatives[0].Description)
		} else {
			line("No safe path forward identified. Refusing action.")
		}
	}
	line("")

	if f := a.EpistemicFence; f != nil && a.HighestRiskClass >= model.Orange {
		line("**6. Epistemic Fence**")
		line("Mode: %s", strings.ToUpper(string(f.Mode)))
		if len(f.Facts) > 0 {
			line("[F] Facts: %s", strings.Join(f.Facts, "; "))
		}
		if len(f.Inferences) > 0 {
			infs := make([]string, len(f.Inferences))
			for i, inf := range f.Inferences {
				infs[i] = fmt.Sprintf("%s (%s)", inf.Claim, inf.Confidence)
			}
			line("[I] Inferences: %s", strings.Join(infs, "; "))
		}
		if len(f.Unknowns) > 0 {
			line("[U] Unknowns: %s", strings.Join(f.Unknowns, "; "))
		}
		if f.UpdateTrigger != "" {
			line("Update trigger: %s", f.UpdateTrigger)
		}
		for i, fr := range f.CompetingFrames {
			name := fr.Frame
			if name == "" {
				name = "unnamed"
			}
			line("  Frame %d: %s", i+1, name)
		}
		line("")
	}

	if a.HighestRiskClass >= model.Orange && len(a.Alternatives) > 0 {
		line("**7. Safer Alternatives**")
		for i, alt := range a.Alternatives {
			line("%d. %s", i+1, alt.Description)
			if alt.Notes != "" {
				line("   (%s)", alt.Notes)
			}
		}
		line("")
	}

	if a.HighestRiskClass >= model.Red {
		if worst := a.WorstHarm(); worst != nil {
			reversibility := "is reversible"
			if worst.Irreversible {
				reversibility = "may not be reversible"
			}
			line("**8. Transparency Note**")
			line("If we are wrong, the harm would be %s and %s.", strings.ToLower(worst.Description), reversibility)
			line("")
		}
	}

	if len(a.DriftAlarms) > 0 {
		line("**Drift Alarms Detected**")
		for _, alarm := range a.DriftAlarms {
			line("- %s", alarm)
		}
		line("")
	}

	line("**Confidence:** %s", a.Confidence())
	fmt.Fprintf(&b, "**PBHP Record ID:** `%s`", a.ID)
	return b.String()
}
