package model

import (
	"fmt"
	"strings"
)

// RiskClass is the rigor required before acting.
// Totally ordered: Green < Yellow < Orange < Red < Black.
type RiskClass int

const (
	Green  RiskClass = 0
	Yellow RiskClass = 1
	Orange RiskClass = 2
	Red    RiskClass = 3
	Black  RiskClass = 4
)

// RiskClasses lists every class in ascending order.
var RiskClasses = []RiskClass{Green, Yellow, Orange, Red, Black}

func (r RiskClass) String() string {
	switch r {
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Orange:
		return "orange"
	case Red:
		return "red"
	case Black:
		return "black"
	default:
		return "unknown"
	}
}

// Label returns the upper-case display form ("ORANGE").
func (r RiskClass) Label() string {
	return strings.ToUpper(r.String())
}

// Valid reports whether r is inside the known order.
func (r RiskClass) Valid() bool {
	return r >= Green && r <= Black
}

// ParseRiskClass accepts the lower- or upper-case class name.
func ParseRiskClass(s string) (RiskClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "green":
		return Green, nil
	case "yellow":
		return Yellow, nil
	case "orange":
		return Orange, nil
	case "red":
		return Red, nil
	case "black":
		return Black, nil
	}
	return Green, fmt.Errorf("%w: %q", ErrInvalidRiskClass, s)
}

func (r RiskClass) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRiskClass, int(r))
	}
	return []byte(r.String()), nil
}

func (r *RiskClass) UnmarshalText(b []byte) error {
	v, err := ParseRiskClass(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Impact is the declared magnitude of a harm.
type Impact string

const (
	ImpactTrivial      Impact = "trivial"
	ImpactModerate     Impact = "moderate"
	ImpactSevere       Impact = "severe"
	ImpactCatastrophic Impact = "catastrophic"
)

// Impacts lists every impact level from least to most severe.
var Impacts = []Impact{ImpactTrivial, ImpactModerate, ImpactSevere, ImpactCatastrophic}

func (i Impact) Valid() bool {
	switch i {
	case ImpactTrivial, ImpactModerate, ImpactSevere, ImpactCatastrophic:
		return true
	}
	return false
}

// ParseImpact rejects unknown input instead of defaulting it.
func ParseImpact(s string) (Impact, error) {
	v := Impact(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidImpact, s)
	}
	return v, nil
}

// Likelihood is the declared probability band of a harm.
type Likelihood string

const (
	LikelihoodUnlikely Likelihood = "unlikely"
	LikelihoodPossible Likelihood = "possible"
	LikelihoodLikely   Likelihood = "likely"
	LikelihoodImminent Likelihood = "imminent"
)

// Likelihoods lists every likelihood band from least to most probable.
var Likelihoods = []Likelihood{LikelihoodUnlikely, LikelihoodPossible, LikelihoodLikely, LikelihoodImminent}

func (l Likelihood) Valid() bool {
	switch l {
	case LikelihoodUnlikely, LikelihoodPossible, LikelihoodLikely, LikelihoodImminent:
		return true
	}
	return false
}

// AtLeastLikely is true for likely and imminent.
func (l Likelihood) AtLeastLikely() bool {
	return l == LikelihoodLikely || l == LikelihoodImminent
}

// ParseLikelihood rejects unknown input instead of defaulting it.
func ParseLikelihood(s string) (Likelihood, error) {
	v := Likelihood(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLikelihood, s)
	}
	return v, nil
}

// UncertaintyLevel grades the evidence behind a harm estimate.
type UncertaintyLevel string

const (
	UncertaintySolid       UncertaintyLevel = "solid"
	UncertaintyFuzzy       UncertaintyLevel = "fuzzy"
	UncertaintySpeculative UncertaintyLevel = "speculative"
)

func (u UncertaintyLevel) Valid() bool {
	switch u {
	case UncertaintySolid, UncertaintyFuzzy, UncertaintySpeculative:
		return true
	}
	return false
}

// ParseUncertaintyLevel also accepts the one-letter tags S, F and X.
func ParseUncertaintyLevel(s string) (UncertaintyLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "solid":
		return UncertaintySolid, nil
	case "f", "fuzzy":
		return UncertaintyFuzzy, nil
	case "x", "speculative":
		return UncertaintySpeculative, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUncertainty, s)
}

// DecisionOutcome is the final disposition of an assessment.
// The zero value means no decision has been made yet.
type DecisionOutcome string

const (
	OutcomeProceed         DecisionOutcome = "proceed"
	OutcomeProceedModified DecisionOutcome = "proceed_modified"
	OutcomeRedirect        DecisionOutcome = "redirect"
	OutcomeDelay           DecisionOutcome = "delay"
	OutcomeRefuse          DecisionOutcome = "refuse"
	OutcomeEscalate        DecisionOutcome = "escalate"
)

func (d DecisionOutcome) Valid() bool {
	switch d {
	case OutcomeProceed, OutcomeProceedModified, OutcomeRedirect,
		OutcomeDelay, OutcomeRefuse, OutcomeEscalate:
		return true
	}
	return false
}

// Proceeds is true for proceed and proceed_modified.
func (d DecisionOutcome) Proceeds() bool {
	return d == OutcomeProceed || d == OutcomeProceedModified
}

// Label returns the display form ("PROCEED MODIFIED").
func (d DecisionOutcome) Label() string {
	if d == "" {
		return "NONE"
	}
	return strings.ToUpper(strings.ReplaceAll(string(d), "_", " "))
}

// ParseDecisionOutcome accepts "proceed-modified" and "proceed modified" too.
func ParseDecisionOutcome(s string) (DecisionOutcome, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	v := DecisionOutcome(norm)
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
	return v, nil
}

// Confidence is the overall confidence stated in an uncertainty assessment.
type Confidence string

const (
	ConfidenceLow        Confidence = "low"
	ConfidenceMediumLow  Confidence = "medium-low"
	ConfidenceMedium     Confidence = "medium"
	ConfidenceMediumHigh Confidence = "medium-high"
	ConfidenceHigh       Confidence = "high"
)
