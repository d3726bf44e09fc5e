package detect

// DefaultPatterns is the built-in vocabulary. User pattern files extend it;
// they cannot remove entries.
var DefaultPatterns = Patterns{
	Drift: []Pattern{
		{Name: "temporary-excuse", Expr: `it'?s?\s+(just\s+)?temporary`},
		{Name: "targeted-excuse", Expr: `it'?s?\s+(just\s+)?targeted`},
		{Name: "deserving-victim", Expr: `only\s+affects?\s+(bad|guilty|wrong)\s+people`},
		{Name: "forced-motion", Expr: `we\s+(have|need|must)\s+to`},
		{Name: "no-choice-claim", Expr: `there'?s?\s+no\s+(other\s+)?choice`},
		{Name: "just-following-orders", Expr: `(just|merely|only)\s+(following\s+)?(policy|procedure|orders|protocol)`},
		{Name: "legality-as-morality", Expr: `it'?s?\s+legal[\s,]+so\s+it'?s?\s+(fine|ok|okay|allowed)`},
		{Name: "responsibility-dodge", Expr: `(just|merely|only)\s+advice`},
		{Name: "responsibility-dodge", Expr: `we'?re?\s+not\s+responsible`},
		{Name: "safety-blanket", Expr: `for\s+(the\s+)?safety`},
		{Name: "greater-good", Expr: `for\s+the\s+greater\s+good`},
		{Name: "reversibility-assumption", Expr: `we\s+can\s+(always\s+)?(fix|change|roll\s*back)\s+it\s+later`},
		{Name: "reversibility-assumption", Expr: `we'?ll\s+roll\s+it\s+back`},
		{Name: "interpretation-dodge", Expr: `(just|merely|only)\s+interpret`},
		{Name: "false-clarity", Expr: `it'?s?\s+obvious`},
		{Name: "false-consensus", Expr: `every(one|body)\s+knows`},
		{Name: "verification-skip", Expr: `no\s+need\s+to\s+(cite|check|verify|confirm|source)`},
		{Name: "precision-dodge", Expr: `close\s+enough`},
		{Name: "premature-collapse", Expr: `there'?s?\s+(only\s+)?one\s+interpretation`},
		{Name: "premature-collapse", Expr: `i'?ll?\s+just\s+pick\s+the\s+most\s+plausible`},
		{Name: "urgency-pressure", Expr: `(must|need\s+to|have\s+to)\s+act\s+(now|immediately|fast|quickly)`},
		{Name: "urgency-pressure", Expr: `no\s+time\s+to\s+(think|pause|wait|consider|check)`},
	},
	PrematureCollapse: []Pattern{
		{Name: "obvious-meaning", Expr: `it'?s?\s+obvious\s+what\s+they\s+meant`},
		{Name: "single-interpretation", Expr: `there'?s?\s+(only\s+)?one\s+interpretation`},
		{Name: "false-consensus", Expr: `every(one|body)\s+knows\s+this`},
		{Name: "precision-dodge", Expr: `close\s+enough`},
		{Name: "verification-skip", Expr: `no\s+need\s+to\s+(cite|check|verify|source)`},
		{Name: "plausible-pick", Expr: `i'?ll?\s+just\s+pick\s+the\s+most\s+plausible`},
	},
	CompassionDrift: []Pattern{
		{Name: "dehumanization", Expr: `\b(animals|vermin|cockroaches|rats|insects)\b`},
		{Name: "dehumanization", Expr: `\bsub\s*human\b`},
		{Name: "group-flattening", Expr: `\bthey'?re?\s+all\b`},
		{Name: "paternalism", Expr: `for\s+(your|their|his|her)\s+own\s+good`},
		{Name: "deserving-victim", Expr: `they'?re?\s+(bad|evil|guilty)\s+so\s+(anything|everything)\s+is\s+justified`},
		{Name: "deserving-victim", Expr: `they\s+deserve\s+(it|what\s+they\s+get)`},
		{Name: "emotional-coercion", Expr: `if\s+you\s+(really\s+)?care[d]?\s+you'?d`},
	},
	Sycophancy: []Pattern{
		{Name: "chosen-one", Expr: `\bchosen\s+one\b`},
		{Name: "tier-ranking", Expr: `\btier\s*[1i]\b`},
		{Name: "flattery", Expr: `you'?re?\s+(truly\s+)?enlightened`},
		{Name: "flattery", Expr: `beyond\s+(anyone|anything|compare)`},
		{Name: "special-insight", Expr: `you\s+see\s+what\s+others\s+can'?t`},
		{Name: "flattery", Expr: `\bgenius\s+(level|tier|class)\b`},
		{Name: "flattery", Expr: `\bunprecedented\s+insight\b`},
		{Name: "special-status", Expr: `no\s+one\s+else\s+(could|would|can)`},
		{Name: "ego-inflation", Expr: `most\s+advanced\s+mind`},
		{Name: "rule-exemption", Expr: `above\s+normal\s+rules`},
		{Name: "special-insight", Expr: `only\s+one\s+who\s+sees\s+clearly`},
	},
	FuzzyPhrases: []string{
		"it's temporary",
		"it's targeted",
		"only affects bad people",
		"we have to",
		"there's no choice",
		"just following procedure",
		"it's legal so it's fine",
		"we're not responsible",
		"for the greater good",
		"we can fix it later",
		"everyone knows",
		"no need to check",
		"close enough",
	},
	TheaterPhrases: []string{
		"we ran pbhp",
		"pbhp says it's allowed",
		"just need to pass the checklist",
		"above pbhp's scope",
		"we're covered",
	},
	Contempt: []string{
		`\bidiot\b`,
		`\bmoron\b`,
		`\bstupid\b`,
		`\bpiece of trash\b`,
		`\bscum\b`,
		`\bvermin\b`,
		`\bsubhuman\b`,
		`\bworthless\b`,
		`\bthey deserve what they get\b`,
		`\bthey don't matter\b`,
		`\bthese people don't matter\b`,
	},
	Euphemisms: []string{
		"may pose challenges for some stakeholders",
		"some parties may bear disproportionate negative impacts",
		"there are differing perspectives on the appropriate balance",
		"reasonable people may disagree about the distributional effects",
	},
	RejectionCategories: []string{
		"fascism",
		"genocide",
		"slavery",
		"non-consensual authoritarian control",
		"systemic dehumanization of a group",
	},
	RejectionEuphemisms: []string{
		`ethnic\s+cleansing`,
		`final\s+solution`,
		`master\s+race`,
		`racial\s+purity`,
		`forced\s+labor`,
		`concentration\s+camp`,
		`forced\s+sterilization`,
		`eugenics.*rational`,
		`sort.*humans.*lesser`,
	},
	Eugenics: []string{
		`(?:eugenics.*rational|rational.*eugenics)`,
		`sort.*humans.*lesser`,
		`lesser\s+functioning`,
		`genetically\s+inferior`,
		`breeding\s+program`,
		`human\s+stock`,
		`genetic\s+purity`,
		`unfit\s+to\s+reproduce`,
		`culling\s+the\s+weak`,
		`life\s+unworthy\s+of\s+life`,
	},
	IQClaims: []string{
		`\b\d{2,3}\s*iq\b`,
		`top\s*\d+\s*percent`,
		`\d+th\s*percentile`,
		`gifted\s+level`,
	},
}
