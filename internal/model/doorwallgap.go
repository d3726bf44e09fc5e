package model

import (
	"regexp"
	"strings"
)

// DoorWallGap names the constraint (Wall), where harm leaks through (Gap)
// and the concrete escape vector (Door).
type DoorWallGap struct {
	Wall string `json:"wall" yaml:"wall"`
	Gap  string `json:"gap" yaml:"gap"`
	Door string `json:"door" yaml:"door"`
}

// vagueDoors are platitudes that do not describe an action.
// Matched against the trimmed, lower-cased door text.
var vagueDoors = []*regexp.Regexp{
	regexp.MustCompile(`^be\s+(more\s+)?(careful|cautious|mindful|aware|thoughtful)$`),
	regexp.MustCompile(`^try\s+(harder|better|more)$`),
	regexp.MustCompile(`^do\s+(better|more)$`),
	regexp.MustCompile(`^think\s+(about|on|over)\s+it$`),
	regexp.MustCompile(`^hope\s+for\s+the\s+best$`),
	regexp.MustCompile(`^just\s+be\s+(good|nice|careful)$`),
	regexp.MustCompile(`^pay\s+(more\s+)?attention$`),
	regexp.MustCompile(`^keep\s+(an\s+)?eye\s+on\s+it$`),
	regexp.MustCompile(`^watch\s+(out|carefully)$`),
	regexp.MustCompile(`^stay\s+(alert|vigilant|aware)$`),
	regexp.MustCompile(`^use\s+(good\s+)?judge?ment$`),
	regexp.MustCompile(`^trust\s+(the\s+)?process$`),
	regexp.MustCompile(`^it'?ll?\s+be\s+(fine|ok|okay|alright)$`),
}

// HasDoor reports whether the door is concrete: non-blank, not a known
// platitude, and at least two words long. Trailing "." and "!" are
// ignored, so "Be careful." is still a platitude.
func (d DoorWallGap) HasDoor() bool {
	door := strings.ToLower(strings.TrimSpace(d.Door))
	if door == "" {
		return false
	}
	door = strings.TrimRight(door, ".!")
	for _, re := range vagueDoors {
		if re.MatchString(door) {
			return false
		}
	}
	return len(strings.Fields(door)) >= 2
}
