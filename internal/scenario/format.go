package scenario

import (
	"encoding/json"
	"fmt"
	"strings"
)

const maxLabel = 60

// FormatText renders run results for a terminal. Passing scenarios get one
// line; failing cases list what was expected, what the gate produced and
// each mismatch.
func FormatText(results []*RunResult) string {
	var b strings.Builder

	var cases, passed, broken int
	for _, r := range results {
		cases += r.Total
		passed += r.Passed
		if r.Failed > 0 {
			broken++
		}
	}

	fmt.Fprintf(&b, "PBHP gate scenarios: %s\n\n", plural(len(results), "file"))
	for _, r := range results {
		status := "ok  "
		if r.Failed > 0 {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%s  %s  [%d/%d]\n", status, r.Name, r.Passed, r.Total)
		for _, c := range r.Cases {
			if !c.Passed {
				writeFailure(&b, c)
			}
		}
	}

	fmt.Fprintf(&b, "\n%d of %d cases passed.", passed, cases)
	if broken > 0 {
		fmt.Fprintf(&b, " %d of %d scenarios failed.", broken, len(results))
	}
	b.WriteString("\n")
	return b.String()
}

func writeFailure(b *strings.Builder, c CaseResult) {
	fmt.Fprintf(b, "      case %d: %s\n", c.Index, caseLabel(c))
	if c.Expected != "" {
		fmt.Fprintf(b, "        want  %s\n", c.Expected)
	}
	if c.Actual != "" {
		fmt.Fprintf(b, "        got   %s\n", c.Actual)
	}
	for _, f := range c.Failures {
		fmt.Fprintf(b, "        - %s\n", f)
	}
}

// caseLabel prefers the case name and falls back to the action text.
func caseLabel(c CaseResult) string {
	label := c.Name
	if label == "" {
		label = c.Action
	}
	if r := []rune(label); len(r) > maxLabel {
		label = string(r[:maxLabel-3]) + "..."
	}
	return label
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// FormatJSON renders run results as indented JSON.
func FormatJSON(results []*RunResult) (string, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("scenario: encode results: %w", err)
	}
	return string(data), nil
}
