package domain

import (
	"fmt"
	"strings"
)

// Granularity is the calendar grid used to re-aggregate a table
type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

// Granularities lists the supported values from finest to coarsest
func Granularities() []Granularity {
	return []Granularity{
		GranularityDay,
		GranularityWeek,
		GranularityMonth,
		GranularityQuarter,
		GranularityYear,
	}
}

// ParseGranularity accepts the canonical names and the Portuguese labels shown
// in the dashboard (Diário, Semanal, Mensal, Trimestral, Anual).
func ParseGranularity(s string) (Granularity, error) {
	g := strings.ToLower(strings.TrimSpace(s))
	switch {
	case g == "":
		return GranularityDay, nil
	case g == "day" || g == "daily" || strings.HasPrefix(g, "di"):
		return GranularityDay, nil
	case g == "week" || g == "weekly" || strings.HasPrefix(g, "se"):
		return GranularityWeek, nil
	case g == "month" || g == "monthly" || strings.HasPrefix(g, "me"):
		return GranularityMonth, nil
	case g == "quarter" || g == "quarterly" || strings.HasPrefix(g, "tri"):
		return GranularityQuarter, nil
	case g == "year" || g == "yearly" || strings.HasPrefix(g, "an"):
		return GranularityYear, nil
	}
	return "", fmt.Errorf("unsupported granularity %q", s)
}

// Valid reports whether g is one of the supported granularities
func (g Granularity) Valid() bool {
	for _, known := range Granularities() {
		if g == known {
			return true
		}
	}
	return false
}
