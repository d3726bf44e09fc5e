package risk

import (
	"fmt"

	"github.com/ppiankov/pbhp/internal/model"
)

// Factors are the harm attributes the classifier looks at.
type Factors struct {
	Impact         model.Impact
	Likelihood     model.Likelihood
	Irreversible   bool
	PowerAsymmetry bool
}

// Rule maps a predicate over Factors to a class.
type Rule struct {
	Name  string
	Match func(Factors) bool
	Class model.RiskClass
}

// rules is evaluated top to bottom; the first match wins. Order matters:
// an ORANGE power floor must not shadow a RED rule above it.
var rules = []Rule{
	// Catastrophic, permanent and on its way
	{Name: "black", Class: model.Black, Match: func(f Factors) bool {
		return f.Impact == model.ImpactCatastrophic && f.Irreversible && f.Likelihood.AtLeastLikely()
	}},

	{Name: "red.catastrophic_irreversible", Class: model.Red, Match: func(f Factors) bool {
		return f.Impact == model.ImpactCatastrophic && f.Irreversible
	}},
	{Name: "red.severe_irreversible_likely", Class: model.Red, Match: func(f Factors) bool {
		return f.Impact == model.ImpactSevere && f.Irreversible && f.Likelihood.AtLeastLikely()
	}},
	// Power asymmetry on permanent serious harm
	{Name: "red.power_irreversible_severe", Class: model.Red, Match: func(f Factors) bool {
		return f.PowerAsymmetry && f.Irreversible &&
			(f.Impact == model.ImpactSevere || f.Impact == model.ImpactCatastrophic)
	}},

	{Name: "orange.severe_possible", Class: model.Orange, Match: func(f Factors) bool {
		return f.Impact == model.ImpactSevere && f.Likelihood == model.LikelihoodPossible
	}},
	{Name: "orange.moderate_likely", Class: model.Orange, Match: func(f Factors) bool {
		return f.Impact == model.ImpactModerate && f.Likelihood.AtLeastLikely()
	}},
	// Floor: power + irreversibility is never below ORANGE
	{Name: "orange.power_irreversible", Class: model.Orange, Match: func(f Factors) bool {
		return f.PowerAsymmetry && f.Irreversible
	}},

	{Name: "yellow.moderate_possible", Class: model.Yellow, Match: func(f Factors) bool {
		return f.Impact == model.ImpactModerate && f.Likelihood == model.LikelihoodPossible
	}},
	{Name: "yellow.trivial_likely", Class: model.Yellow, Match: func(f Factors) bool {
		return f.Impact == model.ImpactTrivial && f.Likelihood.AtLeastLikely()
	}},
}

// Rules returns a copy of the ordered rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Match returns the first rule matching f, or nil when GREEN applies.
func Match(f Factors) *Rule {
	mustValid(f)
	for i := range rules {
		if rules[i].Match(f) {
			r := rules[i]
			return &r
		}
	}
	return nil
}

// Classify returns the base class before audience elevation.
// Unknown impact or likelihood values panic: callers parse input first.
func Classify(f Factors) model.RiskClass {
	if r := Match(f); r != nil {
		return r.Class
	}
	return model.Green
}

// Elevate moves one step up, saturating at BLACK.
func Elevate(rc model.RiskClass) model.RiskClass {
	if !rc.Valid() {
		panic(fmt.Sprintf("risk: elevate invalid class %d", int(rc)))
	}
	if rc >= model.Black {
		return model.Black
	}
	return rc + 1
}

// ClassifyHarm is the full classifier: rule table, then one elevation step
// when the harm reaches a vulnerable or amplifying audience.
func ClassifyHarm(impact model.Impact, likelihood model.Likelihood, irreversible, powerAsymmetry, audienceRisk bool) model.RiskClass {
	rc := Classify(Factors{
		Impact:         impact,
		Likelihood:     likelihood,
		Irreversible:   irreversible,
		PowerAsymmetry: powerAsymmetry,
	})
	if audienceRisk {
		rc = Elevate(rc)
	}
	return rc
}

// Of classifies a declared harm.
func Of(h model.Harm) model.RiskClass {
	return ClassifyHarm(h.Impact, h.Likelihood, h.Irreversible, h.PowerAsymmetry, h.AudienceRiskElevated)
}

func mustValid(f Factors) {
	if !f.Impact.Valid() {
		panic(fmt.Sprintf("risk: classify invalid impact %q", f.Impact))
	}
	if !f.Likelihood.Valid() {
		panic(fmt.Sprintf("risk: classify invalid likelihood %q", f.Likelihood))
	}
}
