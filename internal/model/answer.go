package model

import (
	"fmt"
	"strings"
)

// Answer is a three-valued checklist response.
// An unanswered question (the zero value) is treated as Unsure.
type Answer string

const (
	Yes    Answer = "yes"
	No     Answer = "no"
	Unsure Answer = "unsure"
)

// Raised reports whether the answer counts as "yes" for gating.
// Only an explicit No clears a flag.
func (a Answer) Raised() bool {
	return a != No
}

// Definite reports whether the question was answered Yes or No.
func (a Answer) Definite() bool {
	return a == Yes || a == No
}

func (a Answer) Valid() bool {
	switch a {
	case Yes, No, Unsure, "":
		return true
	}
	return false
}

// ParseAnswer accepts yes/no/unsure plus true/false and y/n.
func ParseAnswer(s string) (Answer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true":
		return Yes, nil
	case "no", "n", "false":
		return No, nil
	case "unsure", "unknown", "?", "":
		return Unsure, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAnswer, s)
}

// AnswerOf converts a definite boolean into an Answer.
func AnswerOf(b bool) Answer {
	if b {
		return Yes
	}
	return No
}
