package detect

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/pbhp/internal/model"
)

// DefaultMinJustification is the shortest acceptable justification at
// ORANGE and RED.
const DefaultMinJustification = 50

// Theater flags signs that the protocol is being run to produce cover
// rather than to find harm: ratings pushed low against the red flags, a
// token justification at high risk, or "we ran the checklist" language.
type Theater struct {
	set    *Set
	minLen int
}

func NewTheater(set *Set, minJustification int) *Theater {
	if set == nil {
		set = Default()
	}
	if minJustification <= 0 {
		minJustification = DefaultMinJustification
	}
	return &Theater{set: set, minLen: minJustification}
}

// Check evaluates the assessment's harms and class against a justification.
func (t *Theater) Check(harms []model.Harm, class model.RiskClass, justification string) []string {
	var alarms []string

	if len(harms) > 0 {
		allLow, powerIrreversible := true, false
		for _, h := range harms {
			low := (h.Impact == model.ImpactTrivial || h.Impact == model.ImpactModerate) &&
				(h.Likelihood == model.LikelihoodUnlikely || h.Likelihood == model.LikelihoodPossible)
			if !low {
				allLow = false
			}
			if h.PowerAsymmetry && h.Irreversible {
				powerIrreversible = true
			}
		}
		if allLow && powerIrreversible {
			alarms = append(alarms, "Possible compliance theater: all harms rated low despite power asymmetry + irreversibility")
		}
	}

	if (class == model.Orange || class == model.Red) && utf8.RuneCountInString(justification) < t.minLen {
		alarms = append(alarms, fmt.Sprintf("Possible compliance theater: minimal justification for %s risk", class.Label()))
	}

	if justification != "" {
		folded := Fold(justification)
		for _, phrase := range t.set.raw.TheaterPhrases {
			if strings.Contains(folded, phrase) {
				alarms = append(alarms, fmt.Sprintf("Compliance theater phrase: '%s'", phrase))
			}
		}
	}
	return alarms
}
