package standings

import (
	"fmt"
	"strings"
)

// ParsePeriod maps user input onto one of the fixed periods.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}

// Valid reports whether p is one of the fixed periods.
func (p Period) Valid() bool {
	switch p {
	case Daily, Weekly, Season, Lifetime:
		return true
	}
	return false
}

// Title returns the period name with its first letter upper-cased.
func (p Period) Title() string {
	if p == "" {
		return ""
	}
	s := string(p)
	return strings.ToUpper(s[:1]) + s[1:]
}

// LeaderboardTitle is the canonical title of the period's leaderboard post.
func (p Period) LeaderboardTitle() string {
	return p.Title() + " Leaderboard"
}

// ParseStatField accepts "br", "zb" and their long forms.
func ParseStatField(s string) (StatField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "br", "br_rank", "rank_br":
		return StatBRRank, nil
	case "zb", "zb_rank", "rank_zb":
		return StatZBRank, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatField, s)
}

// Label is the human readable name of the field.
func (f StatField) Label() string {
	switch f {
	case StatBRRank:
		return "Rank BR"
	case StatZBRank:
		return "Rank ZB"
	}
	return string(f)
}

// EmptyStats returns a fully shaped stats bag with nothing recorded yet.
func EmptyStats() Stats {
	return Stats{BRRank: Unranked, ZBRank: Unranked}
}

// Normalize fills in defaults so a record read from storage is always fully shaped.
func (s Stats) Normalize() Stats {
	s.Wins = max(s.Wins, 0)
	s.Eliminations = max(s.Eliminations, 0)
	s.Assists = max(s.Assists, 0)
	s.Damage = max(s.Damage, 0)
	s.Level = max(s.Level, 0)
	if strings.TrimSpace(s.BRRank) == "" {
		s.BRRank = Unranked
	}
	if strings.TrimSpace(s.ZBRank) == "" {
		s.ZBRank = Unranked
	}
	return s
}

// Field returns the value of a single named stat.
func (s Stats) Field(f StatField) string {
	switch f {
	case StatBRRank:
		return s.BRRank
	case StatZBRank:
		return s.ZBRank
	}
	return ""
}
