package charts

import (
	"strings"

	"github.com/google/uuid"
)

var chartNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("fielddash:charts"))

// ChartID derives a stable identifier from the parts naming a logical chart.
// The same parts always give the same ID, so re-rendering replaces in place.
func ChartID(parts ...string) string {
	return uuid.NewSHA1(chartNamespace, []byte(strings.Join(parts, "|"))).String()
}
