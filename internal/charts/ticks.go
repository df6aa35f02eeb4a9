package charts

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const integerTolerance = 1e-6

var printer = message.NewPrinter(language.English)

// Scale is a padded numeric axis range
type Scale struct {
	Low  float64
	High float64
}

// Span returns High - Low
func (s Scale) Span() float64 {
	return s.High - s.Low
}

// NewScale returns the range of values widened by padding × span on both
// sides. A constant series gets a span of 1.0; an empty one spans [0, 1].
func NewScale(values []float64, padding float64) Scale {
	lo, hi := 0.0, 1.0
	if len(values) > 0 {
		lo, hi = values[0], values[0]
		for _, v := range values[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi == lo {
		hi = lo + 1.0
	}
	pad := (hi - lo) * padding
	return Scale{Low: lo - pad, High: hi + pad}
}

// Ticks returns n evenly spaced positions from Low to High inclusive
func (s Scale) Ticks(n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{s.Low}
	}
	out := make([]float64, n)
	step := s.Span() / float64(n-1)
	for i := range out {
		out[i] = s.Low + step*float64(i)
	}
	out[n-1] = s.High
	return out
}

// MapTo sends v from s onto other with the affine map taking s.Low to
// other.Low and s.High to other.High.
func (s Scale) MapTo(other Scale, v float64) float64 {
	return other.Low + (v-s.Low)*other.Span()/s.Span()
}

// FormatTick renders an individual-axis label: thousands separators from
// 1000 up, plain integers for whole numbers, otherwise two decimals.
func FormatTick(v float64) string {
	if math.Abs(v) >= 1000 {
		return FormatInteger(v)
	}
	r := math.Round(v)
	if math.Abs(v-r) < integerTolerance {
		return strconv.FormatInt(int64(r), 10)
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// FormatInteger rounds v and renders it with thousands separators
func FormatInteger(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}
