package appearance

import (
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor accepts "#rgb" and "#rrggbb" hex colors
func ParseColor(s string) (colorful.Color, bool) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// BlendColors mixes from toward to by t in RGB space and returns a lowercase hex color.
// If either color cannot be parsed, from is returned unchanged.
func BlendColors(from, to string, t float64) string {
	a, ok := ParseColor(from)
	if !ok {
		return from
	}
	b, ok := ParseColor(to)
	if !ok {
		return from
	}
	return a.BlendRgb(b, clamp01(t)).Clamped().Hex()
}

type scaleStop struct {
	at    float64
	color colorful.Color
}

// ColorScale interpolates between colors placed on [0,1]
type ColorScale struct {
	stops []scaleStop
}

// NewColorScale sorts the points by position. Points whose color cannot be
// parsed are skipped.
func NewColorScale(points []ColorScalePoint) ColorScale {
	stops := make([]scaleStop, 0, len(points))
	for _, p := range points {
		c, ok := ParseColor(p.Color)
		if !ok {
			continue
		}
		stops = append(stops, scaleStop{at: clamp01(p.ScalePoint), color: c})
	}
	slices.SortStableFunc(stops, func(a, b scaleStop) int {
		switch {
		case a.at < b.at:
			return -1
		case a.at > b.at:
			return 1
		default:
			return 0
		}
	})
	return ColorScale{stops: stops}
}

// Empty reports whether the scale has no usable color
func (s ColorScale) Empty() bool {
	return len(s.stops) == 0
}

// At returns the color at position t. Positions outside the first and last
// stops take the color of the nearest stop.
func (s ColorScale) At(t float64) string {
	if len(s.stops) == 0 {
		return ""
	}

	first, last := s.stops[0], s.stops[len(s.stops)-1]
	if t <= first.at {
		return first.color.Hex()
	}
	if t >= last.at {
		return last.color.Hex()
	}

	for i := 1; i < len(s.stops); i++ {
		hi := s.stops[i]
		if t > hi.at {
			continue
		}
		lo := s.stops[i-1]
		if hi.at == lo.at {
			return hi.color.Hex()
		}
		frac := (t - lo.at) / (hi.at - lo.at)
		return lo.color.BlendRgb(hi.color, frac).Clamped().Hex()
	}
	return last.color.Hex()
}

func clamp01(t float64) float64 {
	return min(max(t, 0), 1)
}
