package model

import "strings"

// EthicalPause records the operator's posture before starting (step 0a).
type EthicalPause struct {
	ActionStatement   string `json:"action_statement" yaml:"action_statement"`
	CompassionNotes   string `json:"compassion_notes,omitempty" yaml:"compassion_notes"`
	LogicNotes        string `json:"logic_notes,omitempty" yaml:"logic_notes"`
	ParadoxNotes      string `json:"paradox_notes,omitempty" yaml:"paradox_notes"`
	BalanceAssessment string `json:"balance_assessment,omitempty" yaml:"balance_assessment"`
	HighArousal       bool   `json:"high_arousal_state" yaml:"high_arousal_state"`
	HighArousalNotes  string `json:"high_arousal_notes,omitempty" yaml:"high_arousal_notes"`
}

// QuickRiskCheck is the fast pre-screen (step 0d).
type QuickRiskCheck struct {
	ObviouslyLowRisk         bool   `json:"obviously_low_risk" yaml:"obviously_low_risk"`
	SilenceDelayProtectsMore Answer `json:"silence_delay_protects_more,omitempty" yaml:"silence_delay_protects_more"`
	Notes                    string `json:"notes,omitempty" yaml:"notes"`
}

// ShouldTighten is true when the action is not obviously low risk and
// silence or delay protects more, or nobody knows whether it does.
func (q QuickRiskCheck) ShouldTighten() bool {
	return !q.ObviouslyLowRisk && q.SilenceDelayProtectsMore.Raised()
}

// CHIMCheck guards against surrendering agency to claimed inevitability (step 0f).
type CHIMCheck struct {
	ConstraintRecognized bool     `json:"constraint_recognized" yaml:"constraint_recognized"`
	TreatingAsAbsolute   bool     `json:"treating_as_absolute" yaml:"treating_as_absolute"`
	NoChoiceClaim        bool     `json:"no_choice_claim" yaml:"no_choice_claim"`
	RemainingChoice      string   `json:"remaining_choice" yaml:"remaining_choice"`
	Reframes             []string `json:"reframes,omitempty" yaml:"reframes"`
	ConsecutiveNoChoice  int      `json:"consecutive_no_choice_count" yaml:"-"`
}

// RequiresPause is true when "no choice" is claimed without naming the
// remaining choice, or claimed twice in a row with fewer than two reframes.
func (c CHIMCheck) RequiresPause() bool {
	if c.NoChoiceClaim && strings.TrimSpace(c.RemainingChoice) == "" {
		return true
	}
	return c.ConsecutiveNoChoice >= 2 && len(c.Reframes) < 2
}

// AbsoluteRejection is the step 0g check against actions whose core
// function upholds atrocity.
type AbsoluteRejection struct {
	ActionDescription string   `json:"action_description"`
	Triggered         bool     `json:"triggers_rejection"`
	MatchedCategories []string `json:"matched_categories"`
	AnalysisMode      string   `json:"analysis_mode,omitempty"`
}

// AnalysisModes are the modes in which a rejected topic may still be discussed.
var AnalysisModes = []string{"critique", "dismantling", "prevention"}

// Exempt reports whether the analysis mode permits discussion.
func (r AbsoluteRejection) Exempt() bool {
	for _, m := range AnalysisModes {
		if strings.EqualFold(r.AnalysisMode, m) {
			return true
		}
	}
	return false
}

// ConsentAction is what the consent analysis says to do next.
type ConsentAction string

const (
	ConsentProceed  ConsentAction = "proceed"
	ConsentNarrow   ConsentAction = "narrow"
	ConsentDelay    ConsentAction = "delay"
	ConsentSeekInfo ConsentAction = "seek_info"
)

// ConsentCheck asks whether the affected parties would agree if they
// understood the situation (step 4).
type ConsentCheck struct {
	ExplicitConsent             bool     `json:"explicit_consent" yaml:"explicit_consent"`
	InformedHypotheticalConsent Answer   `json:"informed_hypothetical_consent,omitempty" yaml:"informed_hypothetical_consent"`
	OverridingPreferences       bool     `json:"overriding_preferences" yaml:"overriding_preferences"`
	CompatibleWithDignity       bool     `json:"compatible_with_dignity" yaml:"compatible_with_dignity"`
	HonestFraming               bool     `json:"honest_framing" yaml:"honest_framing"`
	WhoDidntGetASay             []string `json:"who_didnt_get_a_say,omitempty" yaml:"who_didnt_get_a_say"`
	Notes                       string   `json:"notes,omitempty" yaml:"notes"`
}

// RequiredAction derives the next step from the consent answers.
func (c ConsentCheck) RequiredAction() ConsentAction {
	switch {
	case c.ExplicitConsent:
		return ConsentProceed
	case !c.CompatibleWithDignity:
		return ConsentNarrow
	case c.OverridingPreferences:
		return ConsentDelay
	case c.InformedHypotheticalConsent == Yes:
		return ConsentProceed
	case c.InformedHypotheticalConsent == No:
		return ConsentDelay
	default:
		return ConsentSeekInfo
	}
}

// Alternative is a safer way to meet the same legitimate need (step 5).
type Alternative struct {
	Description   string `json:"description" yaml:"description"`
	PreservesGoal bool   `json:"preserves_goal" yaml:"preserves_goal"`
	ReducesHarm   bool   `json:"reduces_harm" yaml:"reduces_harm"`
	Reversible    bool   `json:"reversible" yaml:"reversible"`
	Notes         string `json:"notes,omitempty" yaml:"notes"`
}

// RedTeamOutcome summarises an adversarial review.
type RedTeamOutcome string

const (
	RedTeamNoIssues   RedTeamOutcome = "no_issues"
	RedTeamMitigated  RedTeamOutcome = "mitigated"
	RedTeamUnresolved RedTeamOutcome = "unresolved"
)

// RedTeamReview is the adversarial stress test required at ORANGE and above.
type RedTeamReview struct {
	FailureModes               []string       `json:"failure_modes" yaml:"failure_modes"`
	AbuseVectors               []string       `json:"abuse_vectors" yaml:"abuse_vectors"`
	WhoBearsRisk               string         `json:"who_bears_risk" yaml:"who_bears_risk"`
	FalseAssumptions           []string       `json:"false_assumptions" yaml:"false_assumptions"`
	NormalizationRisk          string         `json:"normalization_risk,omitempty" yaml:"normalization_risk"`
	AlternativeInterpretations []string       `json:"alternative_interpretations,omitempty" yaml:"alternative_interpretations"`
	ClaimTags                  string         `json:"claim_tags,omitempty" yaml:"claim_tags"`
	WrongInferenceConsequences string         `json:"wrong_inference_consequences,omitempty" yaml:"wrong_inference_consequences"`
	Steelman                   string         `json:"steelman,omitempty" yaml:"steelman"`
	MotivesVsOutcomes          string         `json:"motives_vs_outcomes,omitempty" yaml:"motives_vs_outcomes"`
	IncentivesPressures        string         `json:"incentives_pressures,omitempty" yaml:"incentives_pressures"`
	MessageReception           string         `json:"message_reception,omitempty" yaml:"message_reception"`
	OffRamps                   []string       `json:"off_ramps,omitempty" yaml:"off_ramps"`
	MitigationApplied          bool           `json:"mitigation_applied" yaml:"mitigation_applied"`
	IssuesResolved             bool           `json:"issues_resolved" yaml:"issues_resolved"`
	DriftAlarms                []string       `json:"drift_alarms,omitempty" yaml:"-"`
	Outcome                    RedTeamOutcome `json:"outcome" yaml:"-"`
}

// DetermineOutcome classifies the review. A credible misuse path with
// severe or irreversible harm and no mitigation stays unresolved.
func (r RedTeamReview) DetermineOutcome() RedTeamOutcome {
	severeMisuse := false
	for _, v := range r.AbuseVectors {
		lv := strings.ToLower(v)
		if strings.Contains(lv, "severe") || strings.Contains(lv, "irreversible") {
			severeMisuse = true
			break
		}
	}
	switch {
	case len(r.FailureModes) == 0 && len(r.AbuseVectors) == 0:
		return RedTeamNoIssues
	case r.MitigationApplied && r.IssuesResolved:
		return RedTeamMitigated
	case severeMisuse && !r.MitigationApplied:
		return RedTeamUnresolved
	case r.IssuesResolved:
		return RedTeamMitigated
	default:
		return RedTeamUnresolved
	}
}

// ReviewText is the free text scanned for drift during the review.
func (r RedTeamReview) ReviewText() string {
	parts := []string{r.WhoBearsRisk, r.Steelman, r.MotivesVsOutcomes}
	parts = append(parts, r.FalseAssumptions...)
	return strings.Join(parts, " ")
}

// ConsequencesChecklist covers temporal, cultural, power, honesty and
// repair effects. Unanswered questions count as Unsure.
type ConsequencesChecklist struct {
	HistoricalAnalogs []string `json:"historical_analogs,omitempty" yaml:"historical_analogs"`

	CurrentHarmIfNothing  string `json:"current_harm_if_nothing,omitempty" yaml:"current_harm_if_nothing"`
	WhoBenefitsStatusQuo  string `json:"who_benefits_status_quo,omitempty" yaml:"who_benefits_status_quo"`
	InactionContinuesHarm Answer `json:"inaction_continues_harm,omitempty" yaml:"inaction_continues_harm"`

	ImmediateHarms         string `json:"immediate_harms,omitempty" yaml:"immediate_harms"`
	ShortTermHarms         string `json:"short_term_harms,omitempty" yaml:"short_term_harms"`
	MediumTermHarms        string `json:"medium_term_harms,omitempty" yaml:"medium_term_harms"`
	LongTermHarms          string `json:"long_term_harms,omitempty" yaml:"long_term_harms"`
	AnyHorizonIrreversible bool   `json:"any_horizon_irreversible" yaml:"any_horizon_irreversible"`

	NormalizesHarm           Answer `json:"normalizes_harm,omitempty" yaml:"normalizes_harm"`
	EndsJustifyMeans         Answer `json:"ends_justify_means,omitempty" yaml:"ends_justify_means"`
	ErodesInstitutionalTrust Answer `json:"erodes_institutional_trust,omitempty" yaml:"erodes_institutional_trust"`
	RewardsBadBehavior       Answer `json:"rewards_bad_behavior,omitempty" yaml:"rewards_bad_behavior"`

	BurdensFallOnLowPower   Answer `json:"burdens_fall_on_low_power,omitempty" yaml:"burdens_fall_on_low_power"`
	ReducesExitAppealOptOut Answer `json:"reduces_exit_appeal_optout,omitempty" yaml:"reduces_exit_appeal_optout"`
	IncreasesSurveillance   Answer `json:"increases_surveillance_coercion,omitempty" yaml:"increases_surveillance_coercion"`
	DecisionMakersInsulated Answer `json:"decision_makers_insulated,omitempty" yaml:"decision_makers_insulated"`

	BadActorMisuse        string `json:"bad_actor_misuse,omitempty" yaml:"bad_actor_misuse"`
	AdjacentUsePrediction string `json:"adjacent_use_prediction,omitempty" yaml:"adjacent_use_prediction"`
	PermanenceRisk        string `json:"permanence_risk,omitempty" yaml:"permanence_risk"`

	CanDescribePlainlyToHarmed Answer `json:"can_describe_plainly_to_harmed,omitempty" yaml:"can_describe_plainly_to_harmed"`
	TransparencyChangesConsent Answer `json:"transparency_changes_consent,omitempty" yaml:"transparency_changes_consent"`
	RelyingOnEuphemism         Answer `json:"relying_on_euphemism,omitempty" yaml:"relying_on_euphemism"`

	RollbackPlan             string `json:"rollback_plan,omitempty" yaml:"rollback_plan"`
	SunsetCondition          string `json:"sunset_condition,omitempty" yaml:"sunset_condition"`
	IndependentStopAuthority string `json:"independent_stop_authority,omitempty" yaml:"independent_stop_authority"`
	SmallestDoor             string `json:"smallest_door,omitempty" yaml:"smallest_door"`
}

// CriticalFlags are the gating flags derived from a checklist.
type CriticalFlags struct {
	IrreversibleHarm bool `json:"irreversible_harm"`
	AgencyLoss       bool `json:"agency_loss"`
	AbuseDrift       bool `json:"abuse_drift"`
	PowerAsymmetry   bool `json:"power_asymmetry"`
	HonestyConcern   bool `json:"honesty_concern"`
	NormErosion      bool `json:"norm_erosion"`
	MissingRepair    bool `json:"missing_repair"`
}

// CriticalFlags evaluates the checklist. Unsure counts as yes.
func (c ConsequencesChecklist) CriticalFlags() CriticalFlags {
	return CriticalFlags{
		IrreversibleHarm: c.AnyHorizonIrreversible,
		AgencyLoss:       c.ReducesExitAppealOptOut.Raised() || c.IncreasesSurveillance.Raised(),
		AbuseDrift:       c.BadActorMisuse != "" || c.PermanenceRisk != "",
		PowerAsymmetry:   c.BurdensFallOnLowPower.Raised() || c.DecisionMakersInsulated.Raised(),
		HonestyConcern:   c.TransparencyChangesConsent.Raised() || c.RelyingOnEuphemism.Raised(),
		NormErosion: c.NormalizesHarm.Raised() || c.EndsJustifyMeans.Raised() ||
			c.ErodesInstitutionalTrust.Raised() || c.RewardsBadBehavior.Raised(),
		MissingRepair: c.RollbackPlan == "" && c.SunsetCondition == "" && c.IndependentStopAuthority == "",
	}
}

// RequiresDoorCHIMRerun is true when irreversible harm, agency loss or
// abuse/drift is flagged: the door and CHIM checks must be redone and a
// safer alternative searched for before proceeding.
func (c ConsequencesChecklist) RequiresDoorCHIMRerun() bool {
	f := c.CriticalFlags()
	return f.IrreversibleHarm || f.AgencyLoss || f.AbuseDrift
}

// UncertaintyAssessment names what is known, fuzzy and speculative and
// applies the uncertain-but-high-stakes rules.
type UncertaintyAssessment struct {
	SolidClaims       []string `json:"solid_claims,omitempty" yaml:"solid_claims"`
	FuzzyClaims       []string `json:"fuzzy_claims,omitempty" yaml:"fuzzy_claims"`
	SpeculativeClaims []string `json:"speculative_claims,omitempty" yaml:"speculative_claims"`

	BestCase           string `json:"best_case,omitempty" yaml:"best_case"`
	CentralCase        string `json:"central_case,omitempty" yaml:"central_case"`
	WorstPlausibleCase string `json:"worst_plausible_case,omitempty" yaml:"worst_plausible_case"`
	WorstCaseWhoPays   string `json:"worst_case_who_pays,omitempty" yaml:"worst_case_who_pays"`

	HarmHighHardToUndo    bool `json:"potential_harm_high_hard_to_undo" yaml:"potential_harm_high_hard_to_undo"`
	HarmFallsOnLowPower   bool `json:"harm_falls_on_low_power" yaml:"harm_falls_on_low_power"`
	BenefitsSpeculative   bool `json:"benefits_speculative" yaml:"benefits_speculative"`
	HarmLowReversible     bool `json:"potential_harm_low_reversible" yaml:"potential_harm_low_reversible"`
	BenefitToLowPowerHigh bool `json:"benefit_to_low_power_high" yaml:"benefit_to_low_power_high"`

	OffRamps     []string   `json:"off_ramps,omitempty" yaml:"off_ramps"`
	SunsetClause string     `json:"sunset_clause,omitempty" yaml:"sunset_clause"`
	Confidence   Confidence `json:"confidence" yaml:"confidence"`
	BiggestRisk  string     `json:"biggest_might_be_wrong,omitempty" yaml:"biggest_might_be_wrong"`
}

// ShouldDefaultOppose applies the rule: high hard-to-undo harm on low-power
// people with speculative benefits means shrink, slow or oppose.
func (u UncertaintyAssessment) ShouldDefaultOppose() bool {
	return u.HarmHighHardToUndo && u.HarmFallsOnLowPower && u.BenefitsSpeculative
}

// CanActWithMonitoring applies the rule: low reversible harm with high
// benefit to low-power people may proceed under monitoring.
func (u UncertaintyAssessment) CanActWithMonitoring() bool {
	return u.HarmLowReversible && u.BenefitToLowPowerHigh
}

// FenceMode is the epistemic mode of an output.
type FenceMode string

const (
	FenceExplore  FenceMode = "explore"
	FenceCompress FenceMode = "compress"
)

// AttributionLevel grades claims about intent. Level D (knowing) needs evidence.
type AttributionLevel string

const (
	AttributionSafe      AttributionLevel = "safe"
	AttributionNegligent AttributionLevel = "negligent"
	AttributionReckless  AttributionLevel = "reckless"
	AttributionKnowing   AttributionLevel = "knowing"
)

// Inference is a claim with its stated confidence.
type Inference struct {
	Claim      string `json:"claim" yaml:"claim"`
	Confidence string `json:"confidence" yaml:"confidence"`
}

// Frame is one competing interpretation of the situation.
type Frame struct {
	Frame     string `json:"frame" yaml:"frame"`
	Explains  string `json:"explains,omitempty" yaml:"explains"`
	Ignores   string `json:"ignores,omitempty" yaml:"ignores"`
	Falsifier string `json:"falsifier,omitempty" yaml:"falsifier"`
}

// EpistemicFence separates facts, inferences and unknowns for
// public-facing or ORANGE+ outputs.
type EpistemicFence struct {
	Mode                 FenceMode        `json:"mode" yaml:"mode"`
	ModeJustification    string           `json:"mode_justification,omitempty" yaml:"mode_justification"`
	Facts                []string         `json:"facts,omitempty" yaml:"facts"`
	Inferences           []Inference      `json:"inferences,omitempty" yaml:"inferences"`
	Unknowns             []string         `json:"unknowns,omitempty" yaml:"unknowns"`
	UpdateTrigger        string           `json:"update_trigger,omitempty" yaml:"update_trigger"`
	Attribution          AttributionLevel `json:"attribution_level,omitempty" yaml:"attribution_level"`
	AttributionEvidence  string           `json:"attribution_evidence,omitempty" yaml:"attribution_evidence"`
	CompetingFrames      []Frame          `json:"competing_frames,omitempty" yaml:"competing_frames"`
	Recommendation       string           `json:"recommendation,omitempty" yaml:"recommendation"`
	IrreducibleAmbiguity string           `json:"irreducible_ambiguity,omitempty" yaml:"irreducible_ambiguity"`
	LeastWrongShort      string           `json:"least_wrong_short_version,omitempty" yaml:"least_wrong_short_version"`
	WhatShortDrops       string           `json:"what_short_version_drops,omitempty" yaml:"what_short_version_drops"`
}

// Validate returns the fence's unmet obligations.
func (f EpistemicFence) Validate() []string {
	var issues []string
	if f.Mode == FenceCompress && len(f.Unknowns) == 0 {
		issues = append(issues, "COMPRESS mode requires explicit unknowns")
	}
	if f.Mode == FenceCompress && f.UpdateTrigger == "" {
		issues = append(issues, "COMPRESS mode requires update trigger (what would change recommendation)")
	}
	if f.Mode == FenceExplore && len(f.CompetingFrames) < 2 {
		issues = append(issues, "EXPLORE mode requires at least 2 competing frames")
	}
	if f.Attribution == AttributionKnowing && f.AttributionEvidence == "" {
		issues = append(issues, "Level D attribution (knowing deception) requires cited evidence")
	}
	if f.Mode == FenceCompress && len(f.CompetingFrames) < 2 {
		issues = append(issues, "Potential premature collapse: COMPRESS with fewer than 2 frames. Consider switching to EXPLORE mode.")
	}
	return issues
}

// FalsePositiveReview challenges a pause: was it justified?
type FalsePositiveReview struct {
	TriggerCited            string `json:"trigger_cited"`
	HarmRiskIdentified      string `json:"harm_risk_identified"`
	DoorForSafeContinuation string `json:"door_for_safe_continuation"`
	PreventingEvidence      string `json:"evidence_that_would_prevent_pause"`
	Outcome                 string `json:"outcome"`
}

// Released is true when both a door and disconfirming evidence are named.
func (r FalsePositiveReview) Released() bool {
	return strings.TrimSpace(r.DoorForSafeContinuation) != "" &&
		strings.TrimSpace(r.PreventingEvidence) != ""
}
