// Package scenario replays assessment requests from YAML files and checks
// the outcome, risk class and gate results against expectations, so a
// policy or pattern change can be tested in CI.
package scenario

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/pbhp/internal/engine"
	"github.com/ppiankov/pbhp/internal/intake"
	"github.com/ppiankov/pbhp/internal/model"
	"github.com/ppiankov/pbhp/internal/store"
)

// Run evaluates all cases in a scenario. Each case gets a fresh engine on
// an in-memory store built with opts, so cases are independent.
func Run(ctx context.Context, s *Scenario, opts ...engine.Option) *RunResult {
	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		cr := runCase(ctx, c, opts)
		cr.Index = i + 1
		if cr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Cases = append(result.Cases, cr)
	}
	return result
}

func runCase(ctx context.Context, c Case, opts []engine.Option) CaseResult {
	cr := CaseResult{Name: c.Name, Expected: describe(c.Expect)}

	req, err := decodeRequest(c.Request)
	if err != nil {
		cr.Actual = "error"
		cr.Failures = []string{err.Error()}
		return cr
	}
	cr.Action = req.Action

	res, err := intake.Run(ctx, engine.New(store.NewMemory(), opts...), req)
	if err != nil {
		cr.Actual = "error"
		cr.Failures = []string{err.Error()}
		return cr
	}

	rec := res.Record
	invalidated := rec.FinalizationGate != nil && !rec.FinalizationGate.Valid
	cr.Actual = fmt.Sprintf("outcome=%s class=%s blocked=%t invalidated=%t",
		orNone(string(rec.DecisionOutcome)), rec.HighestRiskClass, res.Blocked, invalidated)

	x := c.Expect
	if x.Outcome != "" && !strings.EqualFold(x.Outcome, string(rec.DecisionOutcome)) {
		cr.Failures = append(cr.Failures, fmt.Sprintf("outcome: expected %s, got %s", strings.ToLower(x.Outcome), orNone(string(rec.DecisionOutcome))))
	}
	if x.RiskClass != "" {
		want, err := model.ParseRiskClass(x.RiskClass)
		switch {
		case err != nil:
			cr.Failures = append(cr.Failures, err.Error())
		case want != rec.HighestRiskClass:
			cr.Failures = append(cr.Failures, fmt.Sprintf("risk_class: expected %s, got %s", want, rec.HighestRiskClass))
		}
	}
	if x.Blocked != nil && *x.Blocked != res.Blocked {
		cr.Failures = append(cr.Failures, fmt.Sprintf("blocked: expected %t, got %t", *x.Blocked, res.Blocked))
	}
	if x.Invalidated != nil && *x.Invalidated != invalidated {
		cr.Failures = append(cr.Failures, fmt.Sprintf("invalidated: expected %t, got %t", *x.Invalidated, invalidated))
	}

	cr.Passed = len(cr.Failures) == 0
	return cr
}

// decodeRequest re-encodes the inline request so it goes through the same
// schema validation as a request file.
func decodeRequest(doc map[string]any) (*intake.Request, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("case has no request")
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return intake.Parse(data)
}

func describe(x Expectation) string {
	var parts []string
	if x.Outcome != "" {
		parts = append(parts, "outcome="+strings.ToLower(x.Outcome))
	}
	if x.RiskClass != "" {
		parts = append(parts, "class="+strings.ToLower(x.RiskClass))
	}
	if x.Blocked != nil {
		parts = append(parts, "blocked="+strconv.FormatBool(*x.Blocked))
	}
	if x.Invalidated != nil {
		parts = append(parts, "invalidated="+strconv.FormatBool(*x.Invalidated))
	}
	if len(parts) == 0 {
		return "(nothing)"
	}
	return strings.Join(parts, " ")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// Load reads a scenario YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return &s, nil
}

// LoadAndRun loads a scenario file and runs it.
func LoadAndRun(ctx context.Context, path string, opts ...engine.Option) (*RunResult, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	result := Run(ctx, s, opts...)
	result.File = path
	return result, nil
}
