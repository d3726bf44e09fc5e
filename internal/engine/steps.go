package engine

import (
	"fmt"
	"strings"

	"github.com/ppiankov/pbhp/internal/model"
	"github.com/ppiankov/pbhp/internal/risk"
)

// CheckDoorWallGap builds the door/wall/gap triple and reports whether the
// door is concrete.
func CheckDoorWallGap(wall, gap, door string) (model.DoorWallGap, bool) {
	d := model.DoorWallGap{Wall: wall, Gap: gap, Door: door}
	return d, d.HasDoor()
}

// AddHarm validates h, classifies it and appends it, raising the
// watermark when the harm is worse than anything seen so far.
func (e *Engine) AddHarm(a *model.Assessment, h model.Harm) (model.Harm, error) {
	if a.Sealed {
		return model.Harm{}, ErrAlreadyFinalized
	}
	if err := h.Validate(); err != nil {
		return model.Harm{}, err
	}
	h.AffectedParties = append([]string{}, h.AffectedParties...)
	rc := risk.Of(h)
	before := a.HighestRiskClass
	recorded := a.RecordHarm(h, rc)
	if a.HighestRiskClass != before {
		e.log.Info("risk class escalated", "record_id", a.ID, "from", before, "to", a.HighestRiskClass)
	}
	return recorded, nil
}

// EthicalPause records the step 0a posture. A high-arousal state tightens
// behaviour for the rest of the assessment.
func (e *Engine) EthicalPause(a *model.Assessment, p model.EthicalPause) *model.EthicalPause {
	a.EthicalPause = &p
	if p.HighArousal {
		a.Alarm("High arousal state detected: tightening behavior (slow down, clarify intent, smallest safe action)")
	}
	return a.EthicalPause
}

// QuickRisk records the step 0d pre-screen.
func (e *Engine) QuickRisk(a *model.Assessment, q model.QuickRiskCheck) *model.QuickRiskCheck {
	a.QuickRisk = &q
	return a.QuickRisk
}

// DoorWallGap attaches the triple to the assessment. Without a concrete
// door the protocol does not permit proceeding.
func (e *Engine) DoorWallGap(a *model.Assessment, wall, gap, door string) bool {
	d, ok := CheckDoorWallGap(wall, gap, door)
	a.DoorWallGap = &d
	if !ok {
		a.Alarm("No concrete Door identified - PBHP does not permit proceeding without an escape vector")
	}
	return ok
}

// CHIM records the step 0f check and reports whether agency is
// maintained. Consecutive "no choice" claims are counted across calls.
func (e *Engine) CHIM(a *model.Assessment, c model.CHIMCheck) bool {
	prev := 0
	if a.CHIM != nil && a.CHIM.NoChoiceClaim {
		prev = a.CHIM.ConsecutiveNoChoice
	}
	c.ConsecutiveNoChoice = 0
	if c.NoChoiceClaim {
		c.ConsecutiveNoChoice = prev + 1
	}
	c.TreatingAsAbsolute = !c.ConstraintRecognized
	c.Reframes = append([]string{}, c.Reframes...)
	a.CHIM = &c

	if !c.RequiresPause() {
		return true
	}
	a.Alarm("CHIM check failed: no remaining choice identified")
	if c.ConsecutiveNoChoice >= 2 && len(c.Reframes) < 2 {
		a.Alarm("CHIM: 'no choice' claimed twice - must provide at least 2 alternative framings")
	}
	return false
}

// AbsoluteRejection runs the step 0g check over text, or over the action
// when text is blank. Outside critique, dismantling and prevention modes a
// match forces BLACK and pre-sets the outcome to refuse.
func (e *Engine) AbsoluteRejection(a *model.Assessment, text, mode string) model.AbsoluteRejection {
	if strings.TrimSpace(text) == "" {
		text = a.ActionDescription
	}
	matched := e.rejection.Detect(text)
	matched = append(matched, e.eugenics.Detect(text)...)
	if matched == nil {
		matched = []string{}
	}
	r := model.AbsoluteRejection{
		ActionDescription: text,
		Triggered:         len(matched) > 0,
		MatchedCategories: matched,
		AnalysisMode:      mode,
	}
	a.AbsoluteRejection = &r

	if r.Triggered && !r.Exempt() {
		a.Escalate(model.Black)
		a.DecisionOutcome = model.OutcomeRefuse
		a.Justification = fmt.Sprintf(
			"Absolute rejection: action upholds %s. Only discussion in critique, dismantling, or prevention modes is permitted.",
			strings.Join(matched, ", "))
		e.log.Warn("absolute rejection", "record_id", a.ID, "categories", matched)
	}
	return r
}

// Consent records the step 4 consent check and returns the required action.
func (e *Engine) Consent(a *model.Assessment, c model.ConsentCheck) model.ConsentAction {
	a.Consent = &c
	return c.RequiredAction()
}

// AddAlternative appends a safer alternative (step 5).
func (e *Engine) AddAlternative(a *model.Assessment, alt model.Alternative) error {
	if strings.TrimSpace(alt.Description) == "" {
		return fmt.Errorf("alternative: %w", model.ErrEmptyDescription)
	}
	a.Alternatives = append(a.Alternatives, alt)
	return nil
}

// RedTeam records the step 6.5 adversarial review. Its free text is
// scanned for drift and the outcome is derived from the findings.
func (e *Engine) RedTeam(a *model.Assessment, r model.RedTeamReview) *model.RedTeamReview {
	r.DriftAlarms = nil
	if e.drift != nil {
		r.DriftAlarms = e.drift.Detect(r.ReviewText())
	}
	for _, d := range r.DriftAlarms {
		a.Alarm("Red Team drift: " + d)
	}
	r.Outcome = r.DetermineOutcome()
	a.RedTeam = &r
	return a.RedTeam
}

// Consequences attaches the checklist. Critical flags for irreversible
// harm, agency loss or abuse drift demand a door and CHIM rerun.
func (e *Engine) Consequences(a *model.Assessment, c model.ConsequencesChecklist) model.CriticalFlags {
	a.Consequences = &c
	if c.RequiresDoorCHIMRerun() {
		a.Alarm("Consequences checklist: critical flags require Door/CHIM rerun + safer alternative search")
	}
	return c.CriticalFlags()
}

// Uncertainty attaches the uncertainty assessment.
func (e *Engine) Uncertainty(a *model.Assessment, u model.UncertaintyAssessment) *model.UncertaintyAssessment {
	a.Uncertainty = &u
	if u.ShouldDefaultOppose() {
		a.Alarm("Uncertainty rule: high harm + low power + speculative benefits -> default to shrink/slow/oppose")
	}
	return a.Uncertainty
}

// EpistemicFence attaches the fence and logs every unmet obligation.
func (e *Engine) EpistemicFence(a *model.Assessment, f model.EpistemicFence) []string {
	a.EpistemicFence = &f
	issues := f.Validate()
	for _, issue := range issues {
		a.Alarm("Epistemic fence: " + issue)
	}
	return issues
}

// ChallengePause asks whether a pause was justified. It is released only
// when both a door and disconfirming evidence are named.
func (e *Engine) ChallengePause(a *model.Assessment, trigger, harmRisk, door, evidence string) model.FalsePositiveReview {
	r := model.FalsePositiveReview{
		TriggerCited:            trigger,
		HarmRiskIdentified:      harmRisk,
		DoorForSafeContinuation: door,
		PreventingEvidence:      evidence,
		Outcome:                 "maintained",
	}
	if r.Released() {
		r.Outcome = "released"
	}
	a.FalsePositive = &r
	a.PauseChallenged = true
	a.PauseJustification = fmt.Sprintf("Trigger: %s. Risk: %s. Outcome: %s.", trigger, harmRisk, r.Outcome)
	return r
}
