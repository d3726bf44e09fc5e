package engine

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ppiankov/pbhp/internal/model"
)

var outcomes = []model.DecisionOutcome{
	model.OutcomeProceed, model.OutcomeProceedModified, model.OutcomeRedirect,
	model.OutcomeDelay, model.OutcomeRefuse, model.OutcomeEscalate,
}

var justifications = []string{
	"Low risk, reversible",
	"Justification text",
	"It's temporary",
	"Staging has been verified for two weeks and the rollback snapshot is tested daily.",
}

// Finalize always reaches a terminal state: the requested outcome when
// the gate passes, exactly ESCALATE when it does not.
func TestFinalizeTerminalState(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("gate result decides the final outcome", prop.ForAll(
		func(i, l, o, j int, irreversible, power, door bool) bool {
			e := testEngine(t)
			a, err := e.NewAssessment("Rename the shared config file", model.AgentMetadata{})
			if err != nil {
				return false
			}
			if _, err := e.AddHarm(a, model.Harm{
				Description:    "Scripts break",
				Impact:         model.Impacts[i],
				Likelihood:     model.Likelihoods[l],
				Irreversible:   irreversible,
				PowerAsymmetry: power,
			}); err != nil {
				return false
			}
			if door {
				e.DoorWallGap(a, "w", "g", "Undo rename if needed")
			}

			requested := outcomes[o]
			if _, err := e.Finalize(context.Background(), a, requested, justifications[j]); err != nil {
				return false
			}
			if !a.Sealed || a.FinalizationGate == nil {
				return false
			}
			if a.FinalizationGate.Valid {
				return a.DecisionOutcome == requested && a.Justification == justifications[j]
			}
			return a.DecisionOutcome == model.OutcomeEscalate && a.FinalizationGate.RequiresRerun
		},
		gen.IntRange(0, len(model.Impacts)-1),
		gen.IntRange(0, len(model.Likelihoods)-1),
		gen.IntRange(0, len(outcomes)-1),
		gen.IntRange(0, len(justifications)-1),
		gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.Property("a proceeding outcome never survives unmet requirements", prop.ForAll(
		func(i, l int) bool {
			e := testEngine(t)
			a, _ := e.NewAssessment("Rename the shared config file", model.AgentMetadata{})
			_, _ = e.AddHarm(a, model.Harm{Description: "Scripts break", Impact: model.Impacts[i], Likelihood: model.Likelihoods[l]})
			// No door: the requirement matrix is never satisfied.
			_, _ = e.Finalize(context.Background(), a, model.OutcomeProceed, "Low risk, reversible")
			return a.DecisionOutcome == model.OutcomeEscalate
		},
		gen.IntRange(0, len(model.Impacts)-1),
		gen.IntRange(0, len(model.Likelihoods)-1),
	))

	properties.TestingRun(t)
}
