// Package preflight screens an action description before any harm is
// declared. It blocks vague actions and the power-plus-irreversibility
// combination, and escalates urgency pressure, high-risk domains and
// unsupported certainty.
package preflight

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/pbhp/internal/detect"
	"github.com/ppiankov/pbhp/internal/model"
)

// DefaultMinActionLength is the shortest trimmed action accepted.
const DefaultMinActionLength = 10

// ActionVerbs is the built-in verb vocabulary. A verb matches as a word
// prefix, so "deploys" and "deployment" both count.
var ActionVerbs = []string{
	"send", "delete", "publish", "run", "execute", "terminate", "remove",
	"modify", "create", "deploy", "announce", "report", "advise", "recommend",
	"refuse", "approve", "deny", "escalate", "provide", "restrict", "release",
	"block", "revoke", "grant", "share", "post", "write", "issue", "close",
	"open", "rename", "update", "change", "set", "configure",
}

type family struct {
	name string
	re   *regexp.Regexp
}

var forcedMotion = []family{
	{"urgency-demand", regexp.MustCompile(`(we|i|you)\s+(have|need|must)\s+to\s+(do|act|decide)\s+(now|immediately|right\s+now|fast|quickly|today)`)},
	{"anti-pause", regexp.MustCompile(`no\s+(time|room)\s+(for|to)\s+(think|pause|wait|delay|consider)`)},
	{"no-choice-force", regexp.MustCompile(`(we|they)\s+(have|had)\s+no\s+(other\s+)?choice`)},
	{"deadline-pressure", regexp.MustCompile(`(must|need\s+to)\s+act\s+before\s+(it'?s?\s+too\s+late|the\s+window\s+closes)`)},
	{"bandwagon-pressure", regexp.MustCompile(`(everyone|everybody)\s+(else\s+)?is\s+(already\s+)?(doing|on\s+board)`)},
}

var highRiskDomains = []family{
	{"medical", regexp.MustCompile(`\b(medic|patient|diagnos|prescri|dosage|treatment|surger|pharma|drug|clinical|symptom)\w*\b`)},
	{"legal", regexp.MustCompile(`\b(legal|lawsuit|litigation|court|sentenc|verdict|prosecut|defend|indict|plea|bail|parole)\w*\b`)},
	{"financial", regexp.MustCompile(`\b(invest|trading|portfolio|loan|mortgage|credit|debt|bankrupt|securit|pension|retir)\w*\b`)},
	{"military", regexp.MustCompile(`\b(military|weapon|strike|combat|warfare|drone|deployment|casualties|munition)\w*\b`)},
	{"children", regexp.MustCompile(`\b(child|minor|juvenile|student|kid|infant|toddler|pediatric|adolescent|school)\w*\b`)},
	{"infrastructure", regexp.MustCompile(`\b(power\s*grid|water\s*supply|hospital|emergency\s*service|transport|bridge|dam|reactor)\w*\b`)},
}

var epistemicWeakness = []family{
	{"false-certainty", regexp.MustCompile(`(obviously|clearly|everyone\s+knows|it'?s?\s+clear\s+that)\s+`)},
	{"unattributed-authority", regexp.MustCompile(`(studies?\s+show|research\s+(shows?|proves?))\s+`)},
	{"absolute-claim", regexp.MustCompile(`(always|never)\s+(works?|fails?|happens?|leads?\s+to)`)},
}

var (
	vulnerableSignal   = regexp.MustCompile(`\b(vulnerable|powerless|marginalized|disadvantaged|minority|disabled|elderly|homeless|incarcerated|undocumented|refugee|asylum)\w*\b`)
	irreversibleSignal = regexp.MustCompile(`\b(permanent|irreversible|cannot\s+undo|no\s+(going\s+)?back|forever|death|kill|terminat|destroy|eradicat)\w*\b`)
)

// Checker runs the preflight screen. Safe for concurrent use.
type Checker struct {
	minLength int
	verbs     *regexp.Regexp
}

// New builds a checker. A non-positive minLength selects the default;
// extraVerbs extend the built-in vocabulary.
func New(minLength int, extraVerbs []string) *Checker {
	if minLength <= 0 {
		minLength = DefaultMinActionLength
	}
	all := make([]string, 0, len(ActionVerbs)+len(extraVerbs))
	for _, v := range append(append([]string{}, ActionVerbs...), extraVerbs...) {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			all = append(all, regexp.QuoteMeta(v))
		}
	}
	return &Checker{
		minLength: minLength,
		verbs:     regexp.MustCompile(`\b(` + strings.Join(all, "|") + `)`),
	}
}

// Run screens the action and its context. Every check runs; Passed is
// false when any block was raised.
func (c *Checker) Run(action, context string) model.PreflightResult {
	res := model.PreflightResult{
		Blocks:          []string{},
		Escalations:     []string{},
		HighRiskDomains: []string{},
		ForcedMotion:    []string{},
		EpistemicWeak:   []string{},
	}

	if msg := c.underspecified(action); msg != "" {
		res.Underspecified = true
		res.Blocks = append(res.Blocks,
			fmt.Sprintf("Preflight BLOCK: Action underspecified: %s. Cannot safely assess a vague action.", msg))
	}

	text := detect.Normalize(action + " " + context)

	res.ForcedMotion = matchAll(text, forcedMotion)
	if len(res.ForcedMotion) > 0 {
		res.Escalations = append(res.Escalations, fmt.Sprintf(
			"Preflight ESCALATE: Forced-motion language detected (%s). Urgency pressure often accompanies harmful actions. Slow down.",
			strings.Join(res.ForcedMotion, ", ")))
	}

	res.HighRiskDomains = matchAll(text, highRiskDomains)
	if len(res.HighRiskDomains) > 0 {
		res.Escalations = append(res.Escalations, fmt.Sprintf(
			"Preflight ESCALATE: High-risk domain(s) detected: %s. Tighten all subsequent checks.",
			strings.Join(res.HighRiskDomains, ", ")))
	}

	if vulnerableSignal.MatchString(text) && irreversibleSignal.MatchString(text) {
		res.Blocks = append(res.Blocks,
			"Preflight BLOCK: Power asymmetry + irreversibility detected in action description. "+
				"This combination requires explicit Door/Wall/Gap before proceeding.")
	}

	res.EpistemicWeak = matchAll(text, epistemicWeakness)
	if len(res.EpistemicWeak) > 0 {
		res.Escalations = append(res.Escalations, fmt.Sprintf(
			"Preflight ESCALATE: Epistemic weakness (%s). Claims presented as fact may be speculation.",
			strings.Join(res.EpistemicWeak, ", ")))
	}

	res.Passed = len(res.Blocks) == 0
	return res
}

// underspecified returns the reason the raw action is too vague, or "".
func (c *Checker) underspecified(action string) string {
	trimmed := strings.TrimSpace(action)
	if len([]rune(trimmed)) < c.minLength {
		return "Action description too vague or missing"
	}
	if !c.verbs.MatchString(strings.ToLower(trimmed)) {
		return "Action should include a clear verb (what you're doing)"
	}
	return ""
}

func matchAll(text string, families []family) []string {
	out := []string{}
	for _, f := range families {
		if f.re.MatchString(text) {
			out = append(out, f.name)
		}
	}
	return out
}
