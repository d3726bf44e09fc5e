// Package gate implements the finalization gate: the last check between a
// requested decision and a persisted record. It can override a decision to
// ESCALATE but never to anything more permissive.
package gate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/pbhp/internal/detect"
	"github.com/ppiankov/pbhp/internal/model"
)

// Detectors are the text classifiers the gate consults. Nil fields are
// skipped, except that NewDetectors fills every built-in one.
type Detectors struct {
	Drift      detect.Detector
	Theater    *detect.Theater
	Sycophancy detect.Detector
	Tone       detect.Detector
	Tripwire   detect.Detector
	Reviewer   detect.Detector
}

// NewDetectors builds the built-in set from a compiled vocabulary.
func NewDetectors(set *detect.Set, fuzzyThreshold float64, minJustification int) Detectors {
	return Detectors{
		Drift:      detect.NewDrift(set, fuzzyThreshold),
		Theater:    detect.NewTheater(set, minJustification),
		Sycophancy: detect.NewSycophancy(set),
		Tone:       detect.NewTone(set),
		Tripwire:   detect.Chain{detect.NewEugenics(set), detect.NewIQClaims(set)},
	}
}

// Input is what the gate needs to judge a decision.
type Input struct {
	Class            model.RiskClass
	Harms            []model.Harm
	Outcome          model.DecisionOutcome
	Justification    string
	ValidationErrors []string
}

// Gate evaluates requested decisions. Safe for concurrent use when its
// detectors are.
type Gate struct {
	d Detectors
}

func New(d Detectors) *Gate {
	return &Gate{d: d}
}

// Evaluate judges the requested decision. Drift invalidates at RED and
// BLACK, theater at ORANGE and above, sycophancy always, and unmet
// requirements whenever the outcome proceeds. Lesser findings become
// warnings.
func (g *Gate) Evaluate(in Input) model.FinalizationGateResult {
	res := model.FinalizationGateResult{
		Valid:               true,
		InvalidationReasons: []string{},
		Warnings:            []string{},
		RequestedOutcome:    in.Outcome,
	}

	if g.d.Drift != nil {
		if alarms := g.d.Drift.Detect(in.Justification); len(alarms) > 0 {
			if in.Class >= model.Red {
				res.InvalidationReasons = append(res.InvalidationReasons, fmt.Sprintf(
					"Drift detected in justification at %s risk: %s",
					in.Class.Label(), strings.Join(firstN(alarms, 3), ", ")))
			} else {
				res.Warnings = append(res.Warnings, alarms...)
			}
		}
	}

	if g.d.Theater != nil {
		if alarms := g.d.Theater.Check(in.Harms, in.Class, in.Justification); len(alarms) > 0 {
			if in.Class >= model.Orange {
				res.InvalidationReasons = append(res.InvalidationReasons, alarms...)
			} else {
				res.Warnings = append(res.Warnings, alarms...)
			}
		}
	}

	if g.d.Sycophancy != nil {
		if hits := g.d.Sycophancy.Detect(in.Justification); len(hits) > 0 {
			res.InvalidationReasons = append(res.InvalidationReasons,
				"Sycophancy detected in justification: "+strings.Join(hits, ", "))
		}
	}

	if g.d.Tone != nil {
		for _, issue := range g.d.Tone.Detect(in.Justification) {
			res.Warnings = append(res.Warnings, "Tone: "+issue)
		}
	}
	if g.d.Tripwire != nil {
		res.Warnings = append(res.Warnings, g.d.Tripwire.Detect(in.Justification)...)
	}
	if g.d.Reviewer != nil {
		for _, f := range g.d.Reviewer.Detect(in.Justification) {
			res.Warnings = append(res.Warnings, "Reviewer: "+f)
		}
	}

	if len(in.ValidationErrors) > 0 && in.Outcome.Proceeds() {
		res.InvalidationReasons = append(res.InvalidationReasons,
			"Cannot PROCEED with unresolved validation errors: "+strings.Join(in.ValidationErrors, "; "))
	}

	if len(res.InvalidationReasons) > 0 {
		res.Valid = false
		res.RequiresRerun = true
	}
	return res
}

// InvalidatedJustification is the justification recorded when the gate
// overrides a decision. The original text is kept verbatim.
func InvalidatedJustification(requested model.DecisionOutcome, reasons []string, original string) string {
	return fmt.Sprintf("FINALIZATION GATE INVALIDATED original decision (%s). Reasons: %s. Original justification: %s",
		string(requested), strings.Join(reasons, "; "), original)
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
