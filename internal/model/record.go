package model

import "time"

// Record is the flat serialisable snapshot of an assessment. Artifact
// objects carry their derived fields alongside the operator's answers so a
// record can be audited without re-running any rule.
type Record struct {
	RecordID          string    `json:"record_id"`
	Timestamp         time.Time `json:"timestamp"`
	Version           string    `json:"version"`
	ActionDescription string    `json:"action_description"`

	EthicalPause      *EthicalPause           `json:"ethical_pause,omitempty"`
	QuickRisk         *QuickRiskRecord        `json:"quick_risk_check,omitempty"`
	DoorWallGap       *DoorWallGapRecord      `json:"door_wall_gap,omitempty"`
	CHIM              *CHIMRecord             `json:"chim_check,omitempty"`
	AbsoluteRejection *AbsoluteRejection      `json:"absolute_rejection,omitempty"`
	Consequences      *ConsequencesRecord     `json:"consequences,omitempty"`
	Consent           *ConsentRecord          `json:"consent_check,omitempty"`
	Uncertainty       *UncertaintyRecord      `json:"uncertainty,omitempty"`
	EpistemicFence    *EpistemicFenceRecord   `json:"epistemic_fence,omitempty"`
	RedTeam           *RedTeamReview          `json:"red_team_review,omitempty"`
	FalsePositive     *FalsePositiveReview    `json:"false_positive_review,omitempty"`
	Preflight         *PreflightResult        `json:"preflight,omitempty"`
	FinalizationGate  *FinalizationGateResult `json:"finalization_gate,omitempty"`

	Harms            []Harm          `json:"harms"`
	HighestRiskClass RiskClass       `json:"highest_risk_class"`
	Alternatives     []Alternative   `json:"alternatives"`
	DecisionOutcome  DecisionOutcome `json:"decision_outcome"`
	Justification    string          `json:"justification"`

	Metadata           AgentMetadata `json:"metadata"`
	DriftAlarms        []string      `json:"drift_alarms"`
	PauseChallenged    bool          `json:"pause_challenged"`
	PauseJustification string        `json:"pause_justification"`
	Confidence         string        `json:"confidence"`
	FollowUp           FollowUp      `json:"follow_up"`
	Notes              string        `json:"notes,omitempty"`
	Sealed             bool          `json:"sealed"`
}

type QuickRiskRecord struct {
	QuickRiskCheck
	ShouldTighten bool `json:"should_tighten"`
}

type DoorWallGapRecord struct {
	DoorWallGap
	HasConcreteDoor bool `json:"has_concrete_door"`
}

type CHIMRecord struct {
	CHIMCheck
	RequiresPause bool `json:"requires_pause"`
}

type ConsequencesRecord struct {
	ConsequencesChecklist
	CriticalFlags         CriticalFlags `json:"critical_flags"`
	RequiresDoorCHIMRerun bool          `json:"requires_door_chim_rerun"`
}

type ConsentRecord struct {
	ConsentCheck
	RequiredAction ConsentAction `json:"required_action"`
}

type UncertaintyRecord struct {
	UncertaintyAssessment
	ShouldDefaultOppose  bool `json:"should_default_oppose"`
	CanActWithMonitoring bool `json:"can_act_with_monitoring"`
}

type EpistemicFenceRecord struct {
	EpistemicFence
	ValidationIssues []string `json:"validation_issues"`
}

// Record snapshots the assessment. Slices are copied so later mutation of
// the assessment does not leak into a persisted record.
func (a *Assessment) Record() Record {
	r := Record{
		RecordID:           a.ID,
		Timestamp:          a.CreatedAt,
		Version:            a.Version,
		ActionDescription:  a.ActionDescription,
		EthicalPause:       a.EthicalPause,
		AbsoluteRejection:  a.AbsoluteRejection,
		RedTeam:            a.RedTeam,
		FalsePositive:      a.FalsePositive,
		Preflight:          a.Preflight,
		FinalizationGate:   a.FinalizationGate,
		Harms:              append([]Harm{}, a.Harms...),
		HighestRiskClass:   a.HighestRiskClass,
		Alternatives:       append([]Alternative{}, a.Alternatives...),
		DecisionOutcome:    a.DecisionOutcome,
		Justification:      a.Justification,
		Metadata:           a.Agent,
		DriftAlarms:        append([]string{}, a.DriftAlarms...),
		PauseChallenged:    a.PauseChallenged,
		PauseJustification: a.PauseJustification,
		Confidence:         a.Confidence(),
		FollowUp:           a.FollowUp,
		Notes:              a.Notes,
		Sealed:             a.Sealed,
	}
	if q := a.QuickRisk; q != nil {
		r.QuickRisk = &QuickRiskRecord{QuickRiskCheck: *q, ShouldTighten: q.ShouldTighten()}
	}
	if d := a.DoorWallGap; d != nil {
		r.DoorWallGap = &DoorWallGapRecord{DoorWallGap: *d, HasConcreteDoor: d.HasDoor()}
	}
	if c := a.CHIM; c != nil {
		r.CHIM = &CHIMRecord{CHIMCheck: *c, RequiresPause: c.RequiresPause()}
	}
	if c := a.Consequences; c != nil {
		r.Consequences = &ConsequencesRecord{
			ConsequencesChecklist: *c,
			CriticalFlags:         c.CriticalFlags(),
			RequiresDoorCHIMRerun: c.RequiresDoorCHIMRerun(),
		}
	}
	if c := a.Consent; c != nil {
		r.Consent = &ConsentRecord{ConsentCheck: *c, RequiredAction: c.RequiredAction()}
	}
	if u := a.Uncertainty; u != nil {
		r.Uncertainty = &UncertaintyRecord{
			UncertaintyAssessment: *u,
			ShouldDefaultOppose:   u.ShouldDefaultOppose(),
			CanActWithMonitoring:  u.CanActWithMonitoring(),
		}
	}
	if f := a.EpistemicFence; f != nil {
		issues := f.Validate()
		if issues == nil {
			issues = []string{}
		}
		r.EpistemicFence = &EpistemicFenceRecord{EpistemicFence: *f, ValidationIssues: issues}
	}
	return r
}
