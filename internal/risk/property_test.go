package risk

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ppiankov/pbhp/internal/model"
)

// Classification is total and deterministic over the whole input space.
func TestClassifyTotalAndIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("every input maps to one stable class", prop.ForAll(
		func(i, l int, irreversible, power, audience bool) bool {
			impact, likelihood := model.Impacts[i], model.Likelihoods[l]
			first := ClassifyHarm(impact, likelihood, irreversible, power, audience)
			second := ClassifyHarm(impact, likelihood, irreversible, power, audience)
			return first.Valid() && first == second
		},
		gen.IntRange(0, len(model.Impacts)-1),
		gen.IntRange(0, len(model.Likelihoods)-1),
		gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.Property("audience elevation is exactly one saturating step", prop.ForAll(
		func(i, l int, irreversible, power bool) bool {
			impact, likelihood := model.Impacts[i], model.Likelihoods[l]
			base := ClassifyHarm(impact, likelihood, irreversible, power, false)
			elevated := ClassifyHarm(impact, likelihood, irreversible, power, true)
			if base == model.Black {
				return elevated == model.Black
			}
			return elevated == base+1
		},
		gen.IntRange(0, len(model.Impacts)-1),
		gen.IntRange(0, len(model.Likelihoods)-1),
		gen.Bool(), gen.Bool(),
	))

	properties.Property("power and irreversibility never classify below orange", prop.ForAll(
		func(i, l int, audience bool) bool {
			rc := ClassifyHarm(model.Impacts[i], model.Likelihoods[l], true, true, audience)
			return rc >= model.Orange
		},
		gen.IntRange(0, len(model.Impacts)-1),
		gen.IntRange(0, len(model.Likelihoods)-1),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// The watermark is the maximum of all harm classes, whatever the order.
func TestWatermarkOrderIndependent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("escalating in any order yields the max", prop.ForAll(
		func(xs []int) bool {
			classes := make([]model.RiskClass, len(xs))
			for i, x := range xs {
				classes[i] = model.RiskClass(x)
			}

			forward := model.NewAssessment("f", "x", model.AgentMetadata{}, time.Time{})
			for _, rc := range classes {
				forward.Escalate(rc)
			}
			backward := model.NewAssessment("b", "x", model.AgentMetadata{}, time.Time{})
			for i := len(classes) - 1; i >= 0; i-- {
				backward.Escalate(classes[i])
			}

			want := Max(classes...)
			return forward.HighestRiskClass == want && backward.HighestRiskClass == want
		},
		gen.SliceOf(gen.IntRange(0, 4)),
	))

	properties.Property("watermark never decreases", prop.ForAll(
		func(xs []int) bool {
			a := model.NewAssessment("m", "x", model.AgentMetadata{}, time.Time{})
			prev := a.HighestRiskClass
			for _, x := range xs {
				a.Escalate(model.RiskClass(x))
				if a.HighestRiskClass < prev {
					return false
				}
				prev = a.HighestRiskClass
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 4)),
	))

	properties.TestingRun(t)
}

func TestWatermarkFromHarms(t *testing.T) {
	harms := []model.Harm{{RiskClass: model.Yellow}, {RiskClass: model.Red}, {RiskClass: model.Orange}}
	if got := Watermark(harms); got != model.Red {
		t.Errorf("expected Red, got %v", got)
	}
	if Watermark(nil) != model.Green {
		t.Error("expected Green for no harms")
	}
}
