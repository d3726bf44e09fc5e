package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/pbhp/internal/engine"
	"github.com/ppiankov/pbhp/internal/intake"
	"github.com/ppiankov/pbhp/internal/model"
	"github.com/ppiankov/pbhp/internal/risk"
)

// --- Input/Output types ---

// ClassifyInput defines parameters for the pbhp_classify tool.
type ClassifyInput struct {
	Impact         string `json:"impact,omitempty" jsonschema:"trivial, moderate, severe or catastrophic"`
	Likelihood     string `json:"likelihood,omitempty" jsonschema:"unlikely, possible, likely or imminent"`
	Irreversible   bool   `json:"irreversible,omitempty" jsonschema:"harm cannot be undone"`
	PowerAsymmetry bool   `json:"power_asymmetry,omitempty" jsonschema:"harm lands on people with less power"`
	AudienceRisk   bool   `json:"audience_risk,omitempty" jsonschema:"harm reaches a vulnerable or amplifying audience"`
	Quick          bool   `json:"quick,omitempty" jsonschema:"use the fast floor check from irreversible and power_asymmetry only"`
}

// ClassifyOutput contains the risk class and the rule that produced it.
type ClassifyOutput struct {
	RiskClass string `json:"risk_class"`
	Rule      string `json:"rule,omitempty"`
	Elevated  bool   `json:"elevated,omitempty"`
}

// PreflightInput defines parameters for the pbhp_preflight tool.
type PreflightInput struct {
	Action  string `json:"action" jsonschema:"the action being considered, as a verb phrase"`
	Context string `json:"context,omitempty" jsonschema:"extra context screened with the action"`
}

// DoorInput defines parameters for the pbhp_check_door tool.
type DoorInput struct {
	Wall string `json:"wall,omitempty" jsonschema:"the constraint being worked against"`
	Gap  string `json:"gap,omitempty" jsonschema:"where harm could leak through"`
	Door string `json:"door" jsonschema:"the concrete escape vector"`
}

// DoorOutput reports whether the door is concrete.
type DoorOutput struct {
	HasConcreteDoor bool   `json:"has_concrete_door"`
	Message         string `json:"message,omitempty"`
}

// RequestInput wraps an assessment request document.
type RequestInput struct {
	Request map[string]any `json:"request" jsonschema:"assessment request: action, harms, door_wall_gap, alternatives, red_team_review, decision and the other protocol steps"`
}

// ValidateOutput lists the requirements an outcome would still miss.
type ValidateOutput struct {
	RiskClass       string   `json:"risk_class"`
	Blocked         bool     `json:"blocked"`
	PreflightBlocks []string `json:"preflight_blocks,omitempty"`
	Errors          []string `json:"errors"`
	DriftAlarms     []string `json:"drift_alarms"`
}

// AssessOutput is the result of a full assessment.
type AssessOutput struct {
	Blocked   bool           `json:"blocked"`
	Finalized bool           `json:"finalized"`
	Record    map[string]any `json:"record"`
	Response  string         `json:"response"`
}

// --- Handlers ---

func (s *Server) handleClassify(_ context.Context, _ *mcpsdk.CallToolRequest, input ClassifyInput) (*mcpsdk.CallToolResult, ClassifyOutput, error) {
	if input.Quick {
		rc := risk.MinimumFloor(input.Irreversible, input.PowerAsymmetry)
		return nil, ClassifyOutput{RiskClass: rc.String(), Rule: "minimum_floor"}, nil
	}

	impact, err := model.ParseImpact(input.Impact)
	if err != nil {
		return nil, ClassifyOutput{}, err
	}
	likelihood, err := model.ParseLikelihood(input.Likelihood)
	if err != nil {
		return nil, ClassifyOutput{}, err
	}

	rc := risk.ClassifyHarm(impact, likelihood, input.Irreversible, input.PowerAsymmetry, input.AudienceRisk)
	out := ClassifyOutput{RiskClass: rc.String(), Rule: "green.default", Elevated: input.AudienceRisk}
	if r := risk.Match(risk.Factors{
		Impact:         impact,
		Likelihood:     likelihood,
		Irreversible:   input.Irreversible,
		PowerAsymmetry: input.PowerAsymmetry,
	}); r != nil {
		out.Rule = r.Name
	}
	return nil, out, nil
}

func (s *Server) handlePreflight(_ context.Context, _ *mcpsdk.CallToolRequest, input PreflightInput) (*mcpsdk.CallToolResult, model.PreflightResult, error) {
	res := s.preflight.Run(input.Action, input.Context)
	if !res.Passed {
		return &mcpsdk.CallToolResult{IsError: true}, res, nil
	}
	return nil, res, nil
}

func (s *Server) handleCheckDoor(_ context.Context, _ *mcpsdk.CallToolRequest, input DoorInput) (*mcpsdk.CallToolResult, DoorOutput, error) {
	_, ok := engine.CheckDoorWallGap(input.Wall, input.Gap, input.Door)
	out := DoorOutput{HasConcreteDoor: ok}
	if !ok {
		out.Message = "No concrete Door identified. Name a specific, actionable escape vector before proceeding."
	}
	return nil, out, nil
}

func (s *Server) handleValidate(ctx context.Context, _ *mcpsdk.CallToolRequest, input RequestInput) (*mcpsdk.CallToolResult, ValidateOutput, error) {
	req, err := decodeRequest(input.Request)
	if err != nil {
		return nil, ValidateOutput{}, err
	}
	a, blocked, err := intake.Build(ctx, s.engine, req)
	if err != nil {
		return nil, ValidateOutput{}, err
	}

	out := ValidateOutput{
		RiskClass:   a.HighestRiskClass.String(),
		Blocked:     blocked,
		Errors:      []string{},
		DriftAlarms: a.DriftAlarms,
	}
	if blocked {
		out.PreflightBlocks = a.Preflight.Blocks
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	if d := req.Decision; d != nil {
		a.DecisionOutcome = d.Outcome
	}
	out.Errors = s.engine.ValidateRequirements(a)
	return nil, out, nil
}

func (s *Server) handleAssess(ctx context.Context, _ *mcpsdk.CallToolRequest, input RequestInput) (*mcpsdk.CallToolResult, AssessOutput, error) {
	req, err := decodeRequest(input.Request)
	if err != nil {
		return nil, AssessOutput{}, err
	}
	res, err := intake.Run(ctx, s.engine, req)
	if err != nil {
		return nil, AssessOutput{}, err
	}
	s.log.Info("mcp assessment", "record_id", res.Record.RecordID,
		"outcome", res.Record.DecisionOutcome, "risk_class", res.Record.HighestRiskClass)

	// Passed as a plain object: risk classes serialise as text.
	rec, err := toObject(res.Record)
	if err != nil {
		return nil, AssessOutput{}, err
	}
	out := AssessOutput{
		Blocked:   res.Blocked,
		Finalized: res.Finalized,
		Record:    rec,
		Response:  res.Response,
	}
	if res.Blocked {
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	return nil, out, nil
}

// decodeRequest runs the tool argument through the request schema.
func decodeRequest(doc map[string]any) (*intake.Request, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("request is required")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return intake.Parse(data)
}

func toObject(rec model.Record) (map[string]any, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}
