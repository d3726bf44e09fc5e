package policy

import (
	"encoding/json"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/ppiankov/pbhp/internal/model"
)

type compiledRequirement struct {
	Requirement
	prg cel.Program
}

type celRequirements struct {
	reqs []compiledRequirement
}

// The record is exposed as a single "input" map with its JSON field names,
// e.g. input.highest_risk_class == "red" && size(input.alternatives) < 2.
func newEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("input", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return env, nil
}

func compileRequirements(reqs []Requirement) (*celRequirements, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	env, err := newEnv()
	if err != nil {
		return nil, err
	}

	out := &celRequirements{}
	for _, r := range reqs {
		ast, issues := env.Compile(r.When)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("policy: compile error in requirement %s: %w", r.ID, issues.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("policy: program error in requirement %s: %w", r.ID, err)
		}
		out.reqs = append(out.reqs, compiledRequirement{Requirement: r, prg: prg})
	}
	return out, nil
}

// evaluate fails closed: a requirement that errors at runtime is reported
// as unmet.
func (c *celRequirements) evaluate(a *model.Assessment) []string {
	input, err := Input(a)
	if err != nil {
		return []string{fmt.Sprintf("Requirement input unavailable: %v", err)}
	}
	activation := map[string]any{"input": input}

	var errs []string
	for _, r := range c.reqs {
		out, _, err := r.prg.Eval(activation)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s (requirement %s could not be evaluated: %v)", r.Message, r.ID, err))
			continue
		}
		fired, ok := out.Value().(bool)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s (requirement %s did not return bool)", r.Message, r.ID))
			continue
		}
		if fired {
			errs = append(errs, r.Message)
		}
	}
	return errs
}

// Input renders the assessment record as a generic map for expressions.
func Input(a *model.Assessment) (map[string]any, error) {
	data, err := json.Marshal(a.Record())
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
