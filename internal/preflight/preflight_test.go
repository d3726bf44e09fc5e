package preflight

import (
	"slices"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name           string
		action         string
		context        string
		passed         bool
		underspecified bool
		forced         []string
		domains        []string
		epistemic      []string
		blocks         int
	}{
		{
			name:   "clean action",
			action: "Deploy the new billing service to staging",
			passed: true,
		},
		{
			name:           "too short",
			action:         "do it",
			underspecified: true,
			blocks:         1,
		},
		{
			name:           "no verb",
			action:         "the quarterly numbers",
			underspecified: true,
			blocks:         1,
		},
		{
			name:   "urgency demand",
			action: "Send the notice to all customers",
			context: "we have to act now",
			passed: true,
			forced: []string{"urgency-demand"},
		},
		{
			name:   "obfuscated urgency",
			action: "Send the notice to all customers",
			context: "w3 h4ve t0 act n0w",
			passed: true,
			forced: []string{"urgency-demand"},
		},
		{
			name:   "no choice",
			action: "Delete the archived records, we have no other choice",
			passed: true,
			forced: []string{"no-choice-force"},
		},
		{
			name:    "medical domain",
			action:  "Recommend a dosage change for the patient",
			passed:  true,
			domains: []string{"medical"},
		},
		{
			name:    "several domains in table order",
			action:  "Advise the school on the student loan program",
			passed:  true,
			domains: []string{"financial", "children"},
		},
		{
			name:   "power plus irreversibility",
			action: "Terminate benefits for elderly residents permanently",
			blocks: 1,
		},
		{
			name:      "false certainty",
			action:    "Publish the summary, obviously it helps",
			passed:    true,
			epistemic: []string{"false-certainty"},
		},
	}

	c := New(0, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Run(tt.action, tt.context)
			if res.Passed != tt.passed {
				t.Errorf("Passed = %v, want %v (blocks %v)", res.Passed, tt.passed, res.Blocks)
			}
			if res.Underspecified != tt.underspecified {
				t.Errorf("Underspecified = %v, want %v", res.Underspecified, tt.underspecified)
			}
			if len(res.Blocks) != tt.blocks {
				t.Errorf("blocks = %v, want %d", res.Blocks, tt.blocks)
			}
			if !slices.Equal(res.ForcedMotion, orEmpty(tt.forced)) {
				t.Errorf("ForcedMotion = %v, want %v", res.ForcedMotion, tt.forced)
			}
			if !slices.Equal(res.HighRiskDomains, orEmpty(tt.domains)) {
				t.Errorf("HighRiskDomains = %v, want %v", res.HighRiskDomains, tt.domains)
			}
			if !slices.Equal(res.EpistemicWeak, orEmpty(tt.epistemic)) {
				t.Errorf("EpistemicWeak = %v, want %v", res.EpistemicWeak, tt.epistemic)
			}
			if res.Blocked() == res.Passed {
				t.Error("Blocked must be the negation of Passed")
			}
		})
	}
}

func TestRunMessages(t *testing.T) {
	c := New(0, nil)

	res := c.Run("do it", "")
	want := "Preflight BLOCK: Action underspecified: Action description too vague or missing. Cannot safely assess a vague action."
	if len(res.Blocks) != 1 || res.Blocks[0] != want {
		t.Errorf("unexpected block: %v", res.Blocks)
	}

	res = c.Run("the quarterly numbers", "")
	if len(res.Blocks) != 1 || !strings.Contains(res.Blocks[0], "Action should include a clear verb (what you're doing)") {
		t.Errorf("unexpected block: %v", res.Blocks)
	}

	res = c.Run("Recommend a dosage change for the patient", "")
	want = "Preflight ESCALATE: High-risk domain(s) detected: medical. Tighten all subsequent checks."
	if len(res.Escalations) != 1 || res.Escalations[0] != want {
		t.Errorf("unexpected escalations: %v", res.Escalations)
	}

	res = c.Run("Terminate benefits for elderly residents permanently", "")
	if len(res.Blocks) != 1 || !strings.HasPrefix(res.Blocks[0], "Preflight BLOCK: Power asymmetry + irreversibility") {
		t.Errorf("unexpected blocks: %v", res.Blocks)
	}
}

func TestExtraVerbsAndLength(t *testing.T) {
	if res := New(0, nil).Run("Migrate the user table tonight", ""); res.Passed {
		t.Error("expected block without the extra verb")
	}
	if res := New(0, []string{" Migrate "}).Run("Migrate the user table tonight", ""); !res.Passed {
		t.Errorf("expected pass with extra verb, got %v", res.Blocks)
	}
	if res := New(0, nil).Run("Run job", ""); res.Passed {
		t.Error("expected block below default minimum length")
	}
	if res := New(5, nil).Run("Run job", ""); !res.Passed {
		t.Errorf("expected pass with lower minimum, got %v", res.Blocks)
	}
}

// Verbs count only at the start of a word: "unpublished" does not contain
// a usable "publish".
func TestVerbsMatchWordPrefix(t *testing.T) {
	c := New(0, nil)
	tests := []struct {
		action string
		pass   bool
	}{
		{"Shut down the unpublished site", false},
		{"Publishing the shelter schedule", true},
		{"Reopening the intake desk", false},
		{"Opening the intake desk", true},
	}
	for _, tt := range tests {
		res := c.Run(tt.action, "")
		if res.Passed != tt.pass {
			t.Errorf("Run(%q).Passed = %v, want %v (blocks %v)", tt.action, res.Passed, tt.pass, res.Blocks)
		}
		if !tt.pass && !res.Underspecified {
			t.Errorf("Run(%q) should be underspecified", tt.action)
		}
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
