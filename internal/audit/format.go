package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/pbhp/internal/model"
)

const separator = "------------------------------------------------------------------"

// Filter narrows a summary. Zero values mean no bound.
type Filter struct {
	From     time.Time
	To       time.Time
	MinClass model.RiskClass
}

// Summary counts entries by class and outcome.
type Summary struct {
	Entries        []Entry        `json:"entries"`
	Total          int            `json:"total"`
	ByClass        map[string]int `json:"by_class"`
	ByOutcome      map[string]int `json:"by_outcome"`
	Invalidated    int            `json:"invalidated"`
	MaxClass       string         `json:"max_class"`
	FirstTimestamp string         `json:"first_timestamp"`
	LastTimestamp  string         `json:"last_timestamp"`
}

// Summarize applies the filter to entries read from a verified log.
func Summarize(entries []Entry, f Filter) *Summary {
	s := &Summary{
		Entries:   []Entry{},
		ByClass:   make(map[string]int),
		ByOutcome: make(map[string]int),
	}
	maxClass := model.Green
	for _, e := range entries {
		rc, err := model.ParseRiskClass(e.RiskClass)
		if err != nil || rc < f.MinClass {
			continue
		}
		if !f.From.IsZero() || !f.To.IsZero() {
			ts, err := time.Parse(TimestampFormat, e.Timestamp)
			if err != nil {
				continue
			}
			if !f.From.IsZero() && ts.Before(f.From) {
				continue
			}
			if !f.To.IsZero() && ts.After(f.To) {
				continue
			}
		}

		s.Entries = append(s.Entries, e)
		s.Total++
		s.ByClass[e.RiskClass]++
		s.ByOutcome[e.Outcome]++
		if !e.GateValid {
			s.Invalidated++
		}
		if rc > maxClass {
			maxClass = rc
		}
		if s.FirstTimestamp == "" {
			s.FirstTimestamp = e.Timestamp
		}
		s.LastTimestamp = e.Timestamp
	}
	if s.Total > 0 {
		s.MaxClass = maxClass.Label()
	}
	return s
}

// FormatTimeline renders a summary as one line per entry plus a footer.
func FormatTimeline(s *Summary) string {
	if s.Total == 0 {
		return "No audit entries found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Audit trail | %s to %s UTC\n", s.FirstTimestamp, s.LastTimestamp)
	b.WriteString(separator + "\n")
	for _, e := range s.Entries {
		outcome := strings.ToUpper(e.Outcome)
		if !e.GateValid {
			outcome += " (gate: " + strings.ToUpper(e.RequestedOutcome) + " invalidated)"
		}
		fmt.Fprintf(&b, "%-24s %-6s %-40s %-36s %s\n",
			e.Timestamp, strings.ToUpper(e.RiskClass), outcome, e.RecordID, truncate(e.Action, 40))
	}
	b.WriteString(separator + "\n")

	var parts []string
	for _, rc := range model.RiskClasses {
		if n := s.ByClass[rc.String()]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, rc.Label()))
		}
	}
	fmt.Fprintf(&b, "Summary: %d records (%s) | %d invalidated | Max class: %s\n",
		s.Total, strings.Join(parts, ", "), s.Invalidated, s.MaxClass)
	return b.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
