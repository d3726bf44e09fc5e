package model

import "time"

// ProtocolVersion is stamped on every assessment record.
const ProtocolVersion = "0.7.1"

// AgentMetadata describes who or what is running the assessment.
type AgentMetadata struct {
	AgentType         string `json:"agent_type" yaml:"agent_type"`
	ModelVersion      string `json:"system_model_version,omitempty" yaml:"system_model_version"`
	DeploymentChannel string `json:"deployment_channel,omitempty" yaml:"deployment_channel"`
	RequesterRole     string `json:"requester_role,omitempty" yaml:"requester_role"`
}

// FollowUp holds monitoring and ownership fields.
type FollowUp struct {
	MonitoringPlan string `json:"monitoring_plan,omitempty" yaml:"monitoring_plan"`
	ReviewTrigger  string `json:"review_trigger,omitempty" yaml:"review_trigger"`
	Owner          string `json:"owner,omitempty" yaml:"owner"`
	DueDate        string `json:"due_date,omitempty" yaml:"due_date"`
}

// Assessment is one unit of work: an action, its declared harms, the
// artifacts gathered along the way and the final decision.
//
// HighestRiskClass starts at Green and only moves up (see Escalate).
// Harms and DriftAlarms are append-only. An assessment is owned by a
// single caller; it is not safe for concurrent mutation.
type Assessment struct {
	ID                string
	CreatedAt         time.Time
	Version           string
	ActionDescription string
	Agent             AgentMetadata

	Harms            []Harm
	HighestRiskClass RiskClass

	DecisionOutcome DecisionOutcome
	Justification   string

	EthicalPause      *EthicalPause
	QuickRisk         *QuickRiskCheck
	DoorWallGap       *DoorWallGap
	CHIM              *CHIMCheck
	AbsoluteRejection *AbsoluteRejection
	Consequences      *ConsequencesChecklist
	Consent           *ConsentCheck
	Alternatives      []Alternative
	RedTeam           *RedTeamReview
	Uncertainty       *UncertaintyAssessment
	EpistemicFence    *EpistemicFence
	FalsePositive     *FalsePositiveReview
	Preflight         *PreflightResult
	FinalizationGate  *FinalizationGateResult

	PauseChallenged    bool
	PauseJustification string
	FollowUp           FollowUp
	Notes              string

	DriftAlarms []string
	Sealed      bool
}

// NewAssessment creates an assessment at Green with no decision.
func NewAssessment(id, action string, agent AgentMetadata, now time.Time) *Assessment {
	return &Assessment{
		ID:                id,
		CreatedAt:         now.UTC(),
		Version:           ProtocolVersion,
		ActionDescription: action,
		Agent:             agent,
		HighestRiskClass:  Green,
		DriftAlarms:       []string{},
	}
}

// Escalate advances the watermark. Lower or equal classes are a no-op.
func (a *Assessment) Escalate(rc RiskClass) {
	if rc > a.HighestRiskClass {
		a.HighestRiskClass = rc
	}
}

// RecordHarm appends a harm with its computed class and escalates.
func (a *Assessment) RecordHarm(h Harm, rc RiskClass) Harm {
	h.RiskClass = rc
	if h.UncertaintyLevel == "" {
		h.UncertaintyLevel = UncertaintyFuzzy
	}
	a.Harms = append(a.Harms, h)
	a.Escalate(rc)
	return h
}

// Alarm appends entries to the drift-alarm log.
func (a *Assessment) Alarm(msgs ...string) {
	a.DriftAlarms = append(a.DriftAlarms, msgs...)
}

// Confidence returns the stated confidence or "not assessed".
func (a *Assessment) Confidence() string {
	if a.Uncertainty != nil && a.Uncertainty.Confidence != "" {
		return string(a.Uncertainty.Confidence)
	}
	return "not assessed"
}

// WorstHarm returns the first harm with the highest class, or nil.
func (a *Assessment) WorstHarm() *Harm {
	var worst *Harm
	for i := range a.Harms {
		if worst == nil || a.Harms[i].RiskClass > worst.RiskClass {
			worst = &a.Harms[i]
		}
	}
	return worst
}
