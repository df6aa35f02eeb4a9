package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fielddash/internal/dataprocessing"
	"fielddash/pkg/contracts/domain"
)

// FilterKey names one of the selections a session remembers
type FilterKey string

const (
	KeyCategories   FilterKey = "categories"
	KeyWells        FilterKey = "wells"
	KeyMeasurements FilterKey = "measurements"
	KeyColumns      FilterKey = "columns"
	KeyDateWindow   FilterKey = "date_window"
	KeyGranularity  FilterKey = "granularity"
)

// ErrUnknownFilter is returned when resetting a key the session does not know
var ErrUnknownFilter = errors.New("unknown filter key")

// FilterKeys lists every recognised key
func FilterKeys() []FilterKey {
	return []FilterKey{KeyCategories, KeyWells, KeyMeasurements, KeyColumns, KeyDateWindow, KeyGranularity}
}

// ParseFilterKey validates a key received from a client
func ParseFilterKey(s string) (FilterKey, error) {
	for _, k := range FilterKeys() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Filters holds the user's selections between interactions
type Filters struct {
	// Categories are the chart sheets (slugs) the user picked
	Categories   []string                  `json:"categories"`
	Wells        []string                  `json:"wells"`
	Measurements []string                  `json:"measurements"`
	Columns      []string                  `json:"columns"`
	DateWindow   dataprocessing.DateWindow `json:"date_window"`
	Granularity  domain.Granularity        `json:"granularity"`
}

// DefaultFilters returns an empty selection at daily granularity.
// A zero DateWindow means the whole observed span.
func DefaultFilters() Filters {
	return Filters{Granularity: domain.GranularityDay}
}

// Reset restores one key to its default
func (f *Filters) Reset(key FilterKey) error {
	switch key {
	case KeyCategories:
		f.Categories = nil
	case KeyWells:
		f.Wells = nil
	case KeyMeasurements:
		f.Measurements = nil
	case KeyColumns:
		f.Columns = nil
	case KeyDateWindow:
		f.DateWindow = dataprocessing.DateWindow{}
	case KeyGranularity:
		f.Granularity = domain.GranularityDay
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFilter, key)
	}
	return nil
}

// ResetAll restores every key
func (f *Filters) ResetAll() {
	*f = DefaultFilters()
}

// Clone returns a copy sharing no slices with f
func (f Filters) Clone() Filters {
	out := f
	out.Categories = cloneStrings(f.Categories)
	out.Wells = cloneStrings(f.Wells)
	out.Measurements = cloneStrings(f.Measurements)
	out.Columns = cloneStrings(f.Columns)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Session is the per-user context the pipeline runs against
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Files     []string
	Tables    map[domain.SheetName]*dataprocessing.Table
	// Span is the observed date span of the reference sheet
	Span    dataprocessing.DateWindow
	Filters Filters
}

// New creates an empty session with a random ID
func New(now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Tables:    make(map[domain.SheetName]*dataprocessing.Table),
		Filters:   DefaultFilters(),
	}
}

// Loaded reports whether data has been uploaded
func (s *Session) Loaded() bool {
	return len(s.Tables) > 0
}

// Table returns the canonical table of a sheet
func (s *Session) Table(name domain.SheetName) (*dataprocessing.Table, bool) {
	t, ok := s.Tables[name]
	return t, ok
}

// Window returns the effective date window: the selected one, or the whole span
func (s *Session) Window() dataprocessing.DateWindow {
	if s.Filters.DateWindow.IsZero() {
		return s.Span
	}
	return s.Filters.DateWindow
}

// Clone copies the session. Tables are immutable and shared.
func (s *Session) Clone() *Session {
	out := *s
	out.Files = cloneStrings(s.Files)
	out.Filters = s.Filters.Clone()
	out.Tables = make(map[domain.SheetName]*dataprocessing.Table, len(s.Tables))
	for k, v := range s.Tables {
		out.Tables[k] = v
	}
	return &out
}
