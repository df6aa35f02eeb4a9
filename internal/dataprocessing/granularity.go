package dataprocessing

import (
	"fmt"
	"time"

	"fielddash/pkg/contracts/domain"
)

var monthAbbrev = [...]string{
	"Jan", "Fev", "Mar", "Abr", "Mai", "Jun",
	"Jul", "Ago", "Set", "Out", "Nov", "Dez",
}

// BucketStart returns the first instant of the calendar period holding t.
// Weeks start on Monday.
func BucketStart(t time.Time, g domain.Granularity) time.Time {
	day := startOfDay(t)
	switch g {
	case domain.GranularityWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case domain.GranularityMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	case domain.GranularityQuarter:
		m := ((int(day.Month())-1)/3)*3 + 1
		return time.Date(day.Year(), time.Month(m), 1, 0, 0, 0, 0, day.Location())
	case domain.GranularityYear:
		return time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
	default:
		return day
	}
}

// PeriodLabel renders the human-readable name of the period holding t
func PeriodLabel(t time.Time, g domain.Granularity) string {
	switch g {
	case domain.GranularityWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("Sem %02d/%d", week, year)
	case domain.GranularityMonth:
		return fmt.Sprintf("%s/%d", monthAbbrev[t.Month()-1], t.Year())
	case domain.GranularityQuarter:
		return fmt.Sprintf("T%d/%d", (int(t.Month())-1)/3+1, t.Year())
	case domain.GranularityYear:
		return fmt.Sprintf("%d", t.Year())
	default:
		return t.Format("02/01/2006")
	}
}
