// Package intake reads assessment request documents (YAML or JSON),
// validates them against a JSON Schema and replays them through the
// engine step by step.
package intake

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/pbhp/internal/model"
)

//go:embed request.schema.json
var schemaJSON string

const schemaURL = "https://pbhp.local/schemas/assessment-request.json"

// Decision is the outcome the requester wants to finalize with.
type Decision struct {
	Outcome       model.DecisionOutcome `json:"outcome"`
	Justification string                `json:"justification"`
}

// Request is one assessment, written down ahead of time.
type Request struct {
	Action         string                       `json:"action"`
	Context        string                       `json:"context,omitempty"`
	AnalysisMode   string                       `json:"analysis_mode,omitempty"`
	Agent          model.AgentMetadata          `json:"agent"`
	EthicalPause   *model.EthicalPause          `json:"ethical_pause,omitempty"`
	QuickRisk      *model.QuickRiskCheck        `json:"quick_risk_check,omitempty"`
	DoorWallGap    *model.DoorWallGap           `json:"door_wall_gap,omitempty"`
	CHIM           *model.CHIMCheck             `json:"chim_check,omitempty"`
	Harms          []model.Harm                 `json:"harms,omitempty"`
	Consent        *model.ConsentCheck          `json:"consent_check,omitempty"`
	Alternatives   []model.Alternative          `json:"alternatives,omitempty"`
	RedTeam        *model.RedTeamReview         `json:"red_team_review,omitempty"`
	Consequences   *model.ConsequencesChecklist `json:"consequences,omitempty"`
	Uncertainty    *model.UncertaintyAssessment `json:"uncertainty,omitempty"`
	EpistemicFence *model.EpistemicFence        `json:"epistemic_fence,omitempty"`
	FollowUp       model.FollowUp               `json:"follow_up"`
	Notes          string                       `json:"notes,omitempty"`
	Decision       *Decision                    `json:"decision,omitempty"`
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader([]byte(schemaJSON))); err != nil {
			compileErr = fmt.Errorf("intake: add schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Parse decodes a YAML or JSON request and validates it against the
// request schema.
func Parse(data []byte) (*Request, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("intake: parse request: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("intake: empty request")
	}

	// Round-trip through JSON so the validator sees JSON types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("intake: parse request: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("intake: parse request: %w", err)
	}

	s, err := schema()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(generic); err != nil {
		return nil, fmt.Errorf("intake: invalid request: %w", err)
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("intake: decode request: %w", err)
	}
	return &req, nil
}

// Load reads and parses a request file.
func Load(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request %s: %w", path, err)
	}
	return Parse(data)
}
