package risk

import (
	"testing"

	"github.com/ppiankov/pbhp/internal/model"
)

func TestClassifyHarmBranches(t *testing.T) {
	tests := []struct {
		name         string
		impact       model.Impact
		likelihood   model.Likelihood
		irreversible bool
		power        bool
		audience     bool
		want         model.RiskClass
	}{
		{"black imminent", model.ImpactCatastrophic, model.LikelihoodImminent, true, false, false, model.Black},
		{"black likely", model.ImpactCatastrophic, model.LikelihoodLikely, true, false, false, model.Black},
		{"red catastrophic possible", model.ImpactCatastrophic, model.LikelihoodPossible, true, false, false, model.Red},
		{"red catastrophic unlikely", model.ImpactCatastrophic, model.LikelihoodUnlikely, true, false, false, model.Red},
		{"red severe likely irreversible", model.ImpactSevere, model.LikelihoodLikely, true, false, false, model.Red},
		{"red power severe irreversible", model.ImpactSevere, model.LikelihoodUnlikely, true, true, false, model.Red},
		{"orange severe possible", model.ImpactSevere, model.LikelihoodPossible, false, false, false, model.Orange},
		{"orange moderate likely", model.ImpactModerate, model.LikelihoodLikely, false, false, false, model.Orange},
		{"orange moderate imminent", model.ImpactModerate, model.LikelihoodImminent, false, false, false, model.Orange},
		{"orange power floor", model.ImpactTrivial, model.LikelihoodUnlikely, true, true, false, model.Orange},
		{"yellow moderate possible", model.ImpactModerate, model.LikelihoodPossible, false, false, false, model.Yellow},
		{"yellow trivial likely", model.ImpactTrivial, model.LikelihoodLikely, false, false, false, model.Yellow},
		{"green trivial unlikely", model.ImpactTrivial, model.LikelihoodUnlikely, false, false, false, model.Green},
		{"green severe unlikely reversible", model.ImpactSevere, model.LikelihoodUnlikely, false, false, false, model.Green},
		{"green catastrophic reversible unlikely", model.ImpactCatastrophic, model.LikelihoodUnlikely, false, false, false, model.Green},

		// Boundary cases
		{"severe possible irreversible stays orange", model.ImpactSevere, model.LikelihoodPossible, true, false, false, model.Orange},
		{"moderate possible audience", model.ImpactModerate, model.LikelihoodPossible, false, false, true, model.Orange},
		{"black audience saturates", model.ImpactCatastrophic, model.LikelihoodImminent, true, false, true, model.Black},
		{"green audience", model.ImpactTrivial, model.LikelihoodUnlikely, false, false, true, model.Yellow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyHarm(tt.impact, tt.likelihood, tt.irreversible, tt.power, tt.audience)
			if got != tt.want {
				t.Errorf("ClassifyHarm = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleOrder(t *testing.T) {
	rs := Rules()
	if len(rs) != 9 {
		t.Fatalf("expected 9 rules, got %d", len(rs))
	}
	if rs[0].Class != model.Black {
		t.Errorf("first rule must be BLACK, got %v", rs[0].Class)
	}
	for i := 1; i < len(rs); i++ {
		if rs[i].Class > rs[i-1].Class {
			t.Errorf("rule %s (%v) follows lower class %v", rs[i].Name, rs[i].Class, rs[i-1].Class)
		}
	}
}

func TestRulesReturnsCopy(t *testing.T) {
	rs := Rules()
	rs[0].Class = model.Green
	if Rules()[0].Class != model.Black {
		t.Error("mutating Rules() result changed the table")
	}
}

func TestMatchReportsRule(t *testing.T) {
	r := Match(Factors{Impact: model.ImpactTrivial, Likelihood: model.LikelihoodUnlikely, Irreversible: true, PowerAsymmetry: true})
	if r == nil || r.Name != "orange.power_irreversible" {
		t.Errorf("expected power floor rule, got %+v", r)
	}
	if Match(Factors{Impact: model.ImpactTrivial, Likelihood: model.LikelihoodUnlikely}) != nil {
		t.Error("expected no rule for green")
	}
}

func TestClassifyPanicsOnInvalidInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unset impact")
		}
	}()
	Classify(Factors{Likelihood: model.LikelihoodLikely})
}

func TestElevate(t *testing.T) {
	tests := []struct {
		in, want model.RiskClass
	}{
		{model.Green, model.Yellow},
		{model.Yellow, model.Orange},
		{model.Orange, model.Red},
		{model.Red, model.Black},
		{model.Black, model.Black},
	}
	for _, tt := range tests {
		if got := Elevate(tt.in); got != tt.want {
			t.Errorf("Elevate(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMinimumFloor(t *testing.T) {
	if MinimumFloor(true, true) != model.Orange {
		t.Error("expected Orange floor")
	}
	if MinimumFloor(true, false) != model.Green || MinimumFloor(false, true) != model.Green {
		t.Error("expected Green without both")
	}
}

func TestCompareOptions(t *testing.T) {
	catastrophic := model.Harm{Impact: model.ImpactCatastrophic, Irreversible: true}
	irreversible := model.Harm{Impact: model.ImpactModerate, Irreversible: true}
	severe := model.Harm{Impact: model.ImpactSevere}
	power := model.Harm{Impact: model.ImpactTrivial, PowerAsymmetry: true}
	mild := model.Harm{Impact: model.ImpactTrivial}

	tests := []struct {
		name string
		a, b []model.Harm
		want Preference
	}{
		{"catastrophic in a", []model.Harm{catastrophic}, []model.Harm{irreversible, irreversible}, PreferB},
		{"catastrophic in b", []model.Harm{severe}, []model.Harm{catastrophic}, PreferA},
		{"fewer irreversible", []model.Harm{irreversible}, []model.Harm{irreversible, irreversible}, PreferA},
		{"fewer severe", []model.Harm{severe, severe}, []model.Harm{severe}, PreferB},
		{"fewer power", []model.Harm{power}, []model.Harm{mild}, PreferB},
		{"tied", []model.Harm{mild}, []model.Harm{mild}, Tied},
		{"both catastrophic falls through", []model.Harm{catastrophic}, []model.Harm{catastrophic, irreversible}, PreferA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareOptions(tt.a, tt.b); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
