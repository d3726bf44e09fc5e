package detect

import (
	"fmt"
	"strings"
)

// Sycophancy flags flattery and special-status framing. Any hit in a
// justification invalidates the decision.
type Sycophancy struct {
	set *Set
}

func NewSycophancy(set *Set) *Sycophancy {
	if set == nil {
		set = Default()
	}
	return &Sycophancy{set: set}
}

func (s *Sycophancy) Detect(text string) []string {
	return matchFamily(Normalize(text), "sycophancy", s.set.sycophancy)
}

// Eugenics is the sorting-humans tripwire.
type Eugenics struct {
	set *Set
}

func NewEugenics(set *Set) *Eugenics {
	if set == nil {
		set = Default()
	}
	return &Eugenics{set: set}
}

func (e *Eugenics) Detect(text string) []string {
	folded := Fold(text)
	var out []string
	for _, re := range e.set.eugenics {
		if re.MatchString(folded) {
			out = append(out, fmt.Sprintf("Eugenics/sorting tripwire: matches '%s'", re.String()))
		}
	}
	return out
}

// IQClaims flags intelligence rankings asserted without a test. Leet
// folding is skipped so the digits survive.
type IQClaims struct {
	set *Set
}

func NewIQClaims(set *Set) *IQClaims {
	if set == nil {
		set = Default()
	}
	return &IQClaims{set: set}
}

func (q *IQClaims) Detect(text string) []string {
	folded := Fold(text)
	var out []string
	for _, re := range q.set.iq {
		if re.MatchString(folded) {
			out = append(out, fmt.Sprintf("IQ/percentile claim off vibes: matches '%s' - respond with observable skills, offer real tests", re.String()))
		}
	}
	return out
}

// Rejection matches actions whose core function upholds atrocity. It
// returns the matched categories, plus "euphemism:<pattern>" entries for
// the coded phrasings.
type Rejection struct {
	set *Set
}

func NewRejection(set *Set) *Rejection {
	if set == nil {
		set = Default()
	}
	return &Rejection{set: set}
}

func (r *Rejection) Detect(text string) []string {
	folded := Fold(text)
	var out []string
	for _, c := range r.set.raw.RejectionCategories {
		if strings.Contains(folded, c) {
			out = append(out, c)
		}
	}
	for _, re := range r.set.rejectionEup {
		if re.MatchString(folded) {
			out = append(out, "euphemism:"+re.String())
		}
	}
	return out
}
