package domain

import "strings"

// Column names shared by the monitoring workbooks
const (
	ColumnDate             = "Data"
	ColumnPeriod           = "Período"
	ColumnVolumePumped     = "Volume Bombeado (L)"
	ColumnVolumeTotal      = "Volume Acumulado (L)"
	ColumnRemovedSAO       = "Volume Removido SAO (L)"
	ColumnRemovedBailer    = "Volume Removido Bailer (L)"
	ColumnRemovedTotal     = "Volume Removido Acumulado (L)"
	ColumnWell             = "Poço"
	ColumnWaterLevel       = "NA (m)"
	ColumnProductLevel     = "NO (m)"
	ColumnProductThickness = "Esp. (m)"
)

// SheetName is the exact worksheet name inside an uploaded workbook
type SheetName string

const (
	SheetVolumePumped  SheetName = "Volume Bombeado"
	SheetProductVolume SheetName = "Volume Produto"
	SheetFreePhase     SheetName = "FL"
	SheetHydrometers   SheetName = "Hidrômetros"
)

// AggregationMode defines how values collapse inside a time bucket
type AggregationMode string

const (
	// AggregateSum is used for flow data (volume pumped, product removed)
	AggregateSum AggregationMode = "sum"
	// AggregateMean is used for point-in-time readings (levels, thickness)
	AggregateMean AggregationMode = "mean"
)

// SheetSchema describes one of the known worksheet layouts
type SheetSchema struct {
	Name     SheetName       `json:"name"`
	Slug     string          `json:"slug"`
	Optional bool            `json:"optional"`
	Required []string        `json:"required"`
	Values   []string        `json:"values"`
	Mode     AggregationMode `json:"mode"`
	// GroupKeys are entity columns aggregated independently (one series per well)
	GroupKeys []string `json:"group_keys,omitempty"`
	// Cumulative is the running-total column derived from Values, empty when none
	Cumulative string `json:"cumulative,omitempty"`
	// DetectValues marks schemas whose value columns are discovered from the data
	DetectValues bool `json:"detect_values,omitempty"`
}

// LevelType reports whether the sheet holds readings that are averaged per entity
func (s SheetSchema) LevelType() bool {
	return s.Mode == AggregateMean
}

var schemas = []SheetSchema{
	{
		Name:       SheetVolumePumped,
		Slug:       "volume-bombeado",
		Required:   []string{ColumnDate, ColumnVolumePumped},
		Values:     []string{ColumnVolumePumped},
		Mode:       AggregateSum,
		Cumulative: ColumnVolumeTotal,
	},
	{
		Name:       SheetProductVolume,
		Slug:       "volume-produto",
		Required:   []string{ColumnDate, ColumnRemovedSAO, ColumnRemovedBailer},
		Values:     []string{ColumnRemovedSAO, ColumnRemovedBailer},
		Mode:       AggregateSum,
		Cumulative: ColumnRemovedTotal,
	},
	{
		Name:      SheetFreePhase,
		Slug:      "fl",
		Required:  []string{ColumnDate, ColumnWell, ColumnWaterLevel, ColumnProductLevel, ColumnProductThickness},
		Values:    []string{ColumnWaterLevel, ColumnProductLevel, ColumnProductThickness},
		Mode:      AggregateMean,
		GroupKeys: []string{ColumnWell},
	},
	{
		Name:         SheetHydrometers,
		Slug:         "hidrometros",
		Optional:     true,
		Required:     []string{ColumnDate},
		Mode:         AggregateSum,
		DetectValues: true,
	},
}

// Schemas returns every known sheet schema in upload order
func Schemas() []SheetSchema {
	out := make([]SheetSchema, len(schemas))
	copy(out, schemas)
	return out
}

// SchemaFor returns the schema for an exact sheet name
func SchemaFor(name SheetName) (SheetSchema, bool) {
	for _, s := range schemas {
		if s.Name == name {
			return s, true
		}
	}
	return SheetSchema{}, false
}

// SchemaBySlug resolves a URL slug (or the sheet name itself, case-insensitively)
func SchemaBySlug(slug string) (SheetSchema, bool) {
	slug = strings.TrimSpace(slug)
	for _, s := range schemas {
		if s.Slug == slug || strings.EqualFold(string(s.Name), slug) {
			return s, true
		}
	}
	return SheetSchema{}, false
}
