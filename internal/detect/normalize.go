// Package detect holds the free-text classifiers used by the preflight and
// finalization phases: drift, sycophancy, tone, compliance theater,
// absolute-rejection and eugenics tripwires.
package detect

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var whitespace = regexp.MustCompile(`\s+`)

// Repeated separators are used to split trigger words ("we--have..to").
var separatorRuns = regexp.MustCompile(`[.\-_]{2,}`)

var invisibleFold = strings.NewReplacer(
	"\u200b", "",
	"\u200d", "",
	"\u00a0", " ",
	"\u2019", "'",
	"\u2018", "'",
	"\u201c", `"`,
	"\u201d", `"`,
)

var leetFold = strings.NewReplacer(
	"0", "o",
	"1", "i",
	"3", "e",
	"4", "a",
	"5", "s",
	"7", "t",
	"@", "a",
	"$", "s",
	"!", "i",
)

// Fold lowercases text, applies NFKC, drops zero-width characters,
// straightens quotes and collapses whitespace. Digits are kept.
func Fold(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ToLower(text)
	text = invisibleFold.Replace(text)
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// Normalize is Fold plus leet-speak undoing and removal of separator runs.
// Use it for phrase families where obfuscation is expected.
func Normalize(text string) string {
	text = leetFold.Replace(Fold(text))
	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	return separatorRuns.ReplaceAllString(text, " ")
}
