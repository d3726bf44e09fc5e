package detect

import (
	"fmt"
	"strings"
)

// Tone enforces plain speech without contempt. Findings are advisory.
type Tone struct {
	set *Set
}

func NewTone(set *Set) *Tone {
	if set == nil {
		set = Default()
	}
	return &Tone{set: set}
}

// Contempt reports language that insults or dehumanizes.
func (t *Tone) Contempt(text string) []string {
	folded := Fold(text)
	var out []string
	for _, re := range t.set.contempt {
		if re.MatchString(folded) {
			out = append(out, fmt.Sprintf("Contempt detected: matches '%s'", re.String()))
		}
	}
	return out
}

// Euphemism reports hedging that hides who is harmed.
func (t *Tone) Euphemism(text string) []string {
	folded := Fold(text)
	var out []string
	for _, p := range t.set.raw.Euphemisms {
		if strings.Contains(folded, p) {
			out = append(out, fmt.Sprintf("Euphemism detected: '%s' - use plain language about harm", p))
		}
	}
	return out
}

func (t *Tone) Detect(text string) []string {
	return append(t.Contempt(text), t.Euphemism(text)...)
}
