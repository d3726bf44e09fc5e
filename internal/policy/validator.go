package policy

import (
	"fmt"
	"strings"

	"github.com/ppiankov/pbhp/internal/model"
)

// Validator checks an assessment against the requirement matrix for its
// risk class, plus any operator-defined requirements.
type Validator struct {
	custom *celRequirements
}

// NewValidator compiles the custom requirements. Compile errors surface
// here so a bad policy file fails at load time.
func NewValidator(reqs []Requirement) (*Validator, error) {
	custom, err := compileRequirements(reqs)
	if err != nil {
		return nil, err
	}
	return &Validator{custom: custom}, nil
}

// Validate returns every unmet requirement, in a stable order. An empty
// result means the assessment satisfies its class.
func (v *Validator) Validate(a *model.Assessment) []string {
	errs := Builtin(a)
	if v != nil && v.custom != nil {
		errs = append(errs, v.custom.evaluate(a)...)
	}
	return errs
}

// Builtin applies the fixed requirement matrix.
func Builtin(a *model.Assessment) []string {
	var errs []string
	class := a.HighestRiskClass

	// Always: Door/Wall/Gap with a concrete door
	switch {
	case a.DoorWallGap == nil:
		errs = append(errs, "Door/Wall/Gap analysis not performed")
	case !a.DoorWallGap.HasDoor():
		errs = append(errs, "No concrete Door (escape vector) identified")
	}

	if class >= model.Orange {
		if len(a.Alternatives) == 0 {
			errs = append(errs, fmt.Sprintf("%s requires safer alternatives", class.Label()))
		}
		if a.RedTeam == nil {
			errs = append(errs, fmt.Sprintf("%s requires Red Team review", class.Label()))
		}
	}

	if class == model.Red && a.DecisionOutcome.Proceeds() &&
		!strings.Contains(strings.ToLower(a.Justification), "safer alternative") {
		errs = append(errs, "RED: Must document why safer alternatives cannot meet the legitimate need")
	}

	// An unset outcome is not a refusal
	if class == model.Black &&
		a.DecisionOutcome != model.OutcomeRefuse && a.DecisionOutcome != model.OutcomeEscalate {
		errs = append(errs, "BLACK: Must refuse or escalate, cannot proceed")
	}

	if a.Consent != nil && !a.Consent.CompatibleWithDignity {
		errs = append(errs, "Action not compatible with dignity of least powerful affected")
	}
	return errs
}
