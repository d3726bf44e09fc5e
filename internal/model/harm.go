package model

import (
	"fmt"
	"strings"
)

// Harm is one declared potential harm of the action under assessment.
// RiskClass is filled in when the harm is added to an assessment and is
// a pure function of Impact, Likelihood, Irreversible, PowerAsymmetry and
// AudienceRiskElevated.
type Harm struct {
	Description           string           `json:"description" yaml:"description"`
	Impact                Impact           `json:"impact" yaml:"impact"`
	Likelihood            Likelihood       `json:"likelihood" yaml:"likelihood"`
	Irreversible          bool             `json:"irreversible" yaml:"irreversible"`
	PowerAsymmetry        bool             `json:"power_asymmetry" yaml:"power_asymmetry"`
	AffectedParties       []string         `json:"affected_parties" yaml:"affected_parties"`
	LeastPowerfulAffected string           `json:"least_powerful_affected" yaml:"least_powerful_affected"`
	AudienceRiskElevated  bool             `json:"audience_risk_elevated" yaml:"audience_risk_elevated"`
	UncertaintyLevel      UncertaintyLevel `json:"uncertainty_level,omitempty" yaml:"uncertainty_level"`
	EvidenceBasis         string           `json:"evidence_basis,omitempty" yaml:"evidence_basis"`
	Notes                 string           `json:"notes,omitempty" yaml:"notes"`
	RiskClass             RiskClass        `json:"risk_class" yaml:"-"`
}

// Validate checks the declared attributes. An empty uncertainty level is
// allowed and defaults to fuzzy when the harm is recorded.
func (h Harm) Validate() error {
	if strings.TrimSpace(h.Description) == "" {
		return fmt.Errorf("harm: %w", ErrEmptyDescription)
	}
	if !h.Impact.Valid() {
		return fmt.Errorf("harm %q: %w: %q", h.Description, ErrInvalidImpact, h.Impact)
	}
	if !h.Likelihood.Valid() {
		return fmt.Errorf("harm %q: %w: %q", h.Description, ErrInvalidLikelihood, h.Likelihood)
	}
	if h.UncertaintyLevel != "" && !h.UncertaintyLevel.Valid() {
		return fmt.Errorf("harm %q: %w: %q", h.Description, ErrInvalidUncertainty, h.UncertaintyLevel)
	}
	return nil
}
