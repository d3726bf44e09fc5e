package scenario

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/pbhp/internal/engine"
)

func quiet() engine.Option {
	return engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const mixedScenario = `
name: "shelter decisions"
cases:
  - name: green rename
    request:
      action: Rename the shared config file
      harms:
        - {description: Scripts break, impact: trivial, likelihood: unlikely}
      door_wall_gap: {wall: Shared file, gap: Old scripts, door: Undo rename if needed}
      decision: {outcome: proceed, justification: "Low risk, reversible"}
    expect: {outcome: proceed, risk_class: green, invalidated: false}
  - name: red without artifacts
    request:
      action: Close the shelter intake queue
      harms:
        - description: Residents lose access to intake
          impact: severe
          likelihood: likely
          irreversible: true
          power_asymmetry: true
      door_wall_gap: {wall: Budget, gap: Intake stops, door: Route new intakes to the county office}
      decision: {outcome: proceed, justification: Doing it anyway}
    expect: {outcome: escalate, risk_class: RED, invalidated: true}
  - name: vague action
    request:
      action: do stuff
    expect: {blocked: true}
`

func parseScenario(t *testing.T, doc string) *Scenario {
	t.Helper()
	var s Scenario
	if err := yaml.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatal(err)
	}
	return &s
}

func TestAllCasesPass(t *testing.T) {
	result := Run(context.Background(), parseScenario(t, mixedScenario), quiet())
	if result.Total != 3 || result.Passed != 3 || result.Failed != 0 {
		t.Fatalf("expected 3/3 passed, got %d/%d; cases: %+v", result.Passed, result.Total, result.Cases)
	}
}

func TestFailedAssertionDetected(t *testing.T) {
	s := parseScenario(t, `
name: wrong expectation
cases:
  - request:
      action: Close the shelter intake queue
      harms:
        - {description: Residents lose intake, impact: severe, likelihood: likely, irreversible: true, power_asymmetry: true}
      decision: {outcome: proceed, justification: Doing it anyway}
    expect: {outcome: proceed, risk_class: orange}
`)
	result := Run(context.Background(), s, quiet())
	if result.Failed != 1 || result.Passed != 0 {
		t.Fatalf("expected 1 failure, got %+v", result)
	}
	c := result.Cases[0]
	if len(c.Failures) != 2 {
		t.Fatalf("expected outcome and class failures, got %v", c.Failures)
	}
	if !strings.Contains(c.Failures[0], "expected proceed, got escalate") {
		t.Errorf("unexpected failure %q", c.Failures[0])
	}
	if !strings.Contains(c.Failures[1], "expected orange, got red") {
		t.Errorf("unexpected failure %q", c.Failures[1])
	}
}

func TestInvalidRequestFailsCase(t *testing.T) {
	s := parseScenario(t, `
name: bad request
cases:
  - request: {notes: missing action}
    expect: {outcome: proceed}
  - expect: {outcome: proceed}
`)
	result := Run(context.Background(), s, quiet())
	if result.Failed != 2 {
		t.Fatalf("expected 2 failures, got %d", result.Failed)
	}
	for _, c := range result.Cases {
		if c.Actual != "error" || len(c.Failures) != 1 {
			t.Errorf("unexpected case result %+v", c)
		}
	}
}

func TestUnknownRiskClassFails(t *testing.T) {
	s := parseScenario(t, `
name: typo
cases:
  - request: {action: Send the renewal reminder}
    expect: {risk_class: purple}
`)
	result := Run(context.Background(), s, quiet())
	if result.Failed != 1 {
		t.Fatalf("expected failure, got %+v", result.Cases)
	}
}

func TestLoadAndRunFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "test.yaml", mixedScenario)

	result, err := LoadAndRun(context.Background(), path, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if result.Failed != 0 {
		t.Errorf("expected 0 failures, got %d", result.Failed)
	}
	if result.File != path {
		t.Errorf("expected file path set, got %q", result.File)
	}
	if result.Name != "shelter decisions" {
		t.Errorf("unexpected name %q", result.Name)
	}
}

func TestInvalidScenarioYAML(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "bad.yaml", ":::not yaml\x00")

	if _, err := LoadAndRun(context.Background(), filepath.Join(dir, "bad.yaml"), quiet()); err == nil {
		t.Error("expected error for invalid YAML")
	}
	if _, err := LoadAndRun(context.Background(), filepath.Join(dir, "missing.yaml"), quiet()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEmptyCasesList(t *testing.T) {
	result := Run(context.Background(), &Scenario{Name: "empty"}, quiet())
	if result.Total != 0 || result.Failed != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestCaseResultFieldsPopulated(t *testing.T) {
	result := Run(context.Background(), parseScenario(t, mixedScenario), quiet())
	c := result.Cases[0]
	if c.Index != 1 || c.Name != "green rename" || c.Action != "Rename the shared config file" {
		t.Errorf("unexpected identity fields: %+v", c)
	}
	if c.Expected != "outcome=proceed class=green invalidated=false" {
		t.Errorf("expected: got %q", c.Expected)
	}
	if c.Actual != "outcome=proceed class=green blocked=false invalidated=false" {
		t.Errorf("actual: got %q", c.Actual)
	}
}

func TestFormatText(t *testing.T) {
	pass := &RunResult{Name: "ok", Total: 2, Passed: 2}
	fail := &RunResult{Name: "broken", Total: 2, Passed: 1, Failed: 1, Cases: []CaseResult{
		{Index: 1, Passed: true},
		{Index: 2, Action: "Close the shelter intake queue", Failures: []string{"outcome: expected proceed, got escalate"}},
	}}
	out := FormatText([]*RunResult{pass, fail})

	for _, want := range []string{
		"PBHP gate scenarios: 2 files",
		"ok    ok  [2/2]",
		"FAIL  broken  [1/2]",
		"      case 2: Close the shelter intake queue",
		"        - outcome: expected proceed, got escalate",
		"3 of 4 cases passed. 1 of 2 scenarios failed.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	single := FormatText([]*RunResult{pass})
	if !strings.HasPrefix(single, "PBHP gate scenarios: 1 file\n") || !strings.HasSuffix(single, "2 of 2 cases passed.\n") {
		t.Errorf("unexpected single output:\n%s", single)
	}
}

func TestFormatJSON(t *testing.T) {
	out, err := FormatJSON([]*RunResult{{Name: "x", Total: 1, Passed: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"name": "x"`) {
		t.Errorf("unexpected JSON: %s", out)
	}
}
