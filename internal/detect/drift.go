package detect

import (
	"regexp"
	"strings"
)

// DefaultFuzzyThreshold is the minimum similarity for a fuzzy phrase hit.
const DefaultFuzzyThreshold = 0.80

var (
	acknowledgedThenDismissed = regexp.MustCompile(`(yes|sure|true|granted|acknowledged?)\b.{0,120}\b(but|however|although|yet)\s+`)
	dismissalClause           = regexp.MustCompile(`\b(?:but|however|although|yet)\s+(.{10,80})`)
	notIdealButNecessary      = regexp.MustCompile(`not\s+(ideal|perfect|great|optimal)\s+(but|however)\s+(necessary|required|needed|unavoidable)`)
)

var benefitWords = []string{
	"benefit", "help", "improve", "necessary", "important",
	"outweigh", "worth", "justified", "acceptable", "reasonable",
}

// Drift detects rationalization language in layers: regex families over
// normalized text, fuzzy near-misses of canonical phrases, and sentence
// structures that acknowledge harm only to dismiss it.
type Drift struct {
	set       *Set
	threshold float64
}

// NewDrift returns a drift detector. A threshold outside (0, 1] falls back
// to DefaultFuzzyThreshold.
func NewDrift(set *Set, threshold float64) *Drift {
	if set == nil {
		set = Default()
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultFuzzyThreshold
	}
	return &Drift{set: set, threshold: threshold}
}

func (d *Drift) Detect(text string) []string {
	normalized := Normalize(text)

	var out []string
	out = append(out, matchFamily(normalized, "drift", d.set.drift)...)
	out = append(out, matchFamily(normalized, "premature_collapse", d.set.collapse)...)
	out = append(out, matchFamily(normalized, "compassion_drift", d.set.compassion)...)
	out = append(out, matchFamily(normalized, "sycophancy", d.set.sycophancy)...)
	out = append(out, fuzzyMatches(normalized, d.set.raw.FuzzyPhrases, d.threshold)...)
	out = append(out, structural(normalized)...)
	return out
}

func structural(text string) []string {
	var out []string
	if acknowledgedThenDismissed.MatchString(text) {
		if m := dismissalClause.FindStringSubmatch(text); m != nil {
			after := strings.ToLower(m[1])
			for _, w := range benefitWords {
				if strings.Contains(after, w) {
					out = append(out, "structural:harm-acknowledged-then-dismissed")
					break
				}
			}
		}
	}
	if notIdealButNecessary.MatchString(text) {
		out = append(out, "structural:not-ideal-but-necessary")
	}
	return out
}
