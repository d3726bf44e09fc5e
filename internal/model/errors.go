package model

import "errors"

// Input validation failures. Callers wrap these with the offending value.
var (
	ErrInvalidRiskClass   = errors.New("invalid risk class")
	ErrInvalidImpact      = errors.New("invalid impact")
	ErrInvalidLikelihood  = errors.New("invalid likelihood")
	ErrInvalidUncertainty = errors.New("invalid uncertainty level")
	ErrInvalidOutcome     = errors.New("invalid decision outcome")
	ErrInvalidAnswer      = errors.New("invalid answer")
	ErrEmptyDescription   = errors.New("empty description")
)
