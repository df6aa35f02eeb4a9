package domain

import "time"

// KPI is a headline card shown above the charts of a sheet
type KPI struct {
	Key   string  `json:"key"`
	Title string  `json:"title"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
	Color string  `json:"color,omitempty"`
}

// KPISet groups the cards computed for one sheet
type KPISet struct {
	Sheet      SheetName  `json:"sheet"`
	LastRecord *time.Time `json:"last_record,omitempty"`
	Cards      []KPI      `json:"cards"`
}
