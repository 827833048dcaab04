package appearance

import (
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/ritzau/appearance-engine/pkg/itemdata"
	"github.com/ritzau/appearance-engine/pkg/model"
)

// toNumber coerces a scalar to a finite number. Numeric strings are accepted;
// booleans, nil and everything else are missing.
func toNumber(v model.Scalar) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

// toString renders a scalar for labels and partition keys
func toString(v model.Scalar) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	case int:
		return strconv.Itoa(s), true
	default:
		return "", false
	}
}

// numericValue reads field from data and runs it through transform
func numericValue(data itemdata.Merged, field model.ItemDataField, transform Transform) (float64, bool) {
	raw, present := data.Value(field)
	var x float64
	ok := false
	if present {
		x, ok = toNumber(raw)
	}
	return transform(x, ok)
}

// Bounds summarizes the numeric values of a field over a set of items
type Bounds struct {
	Min     float64
	Max     float64
	Valid   bool // At least one item had a numeric value
	Missing bool // At least one item had no numeric value
}

// Normalize maps v from [Min, Max] onto [0, 1]. Both ends are halved first so
// that domains wider than MaxFloat64 do not overflow. A degenerate domain maps
// every value onto 0.
func (b Bounds) Normalize(v float64) float64 {
	if !b.Valid || b.Max == b.Min {
		return 0
	}
	return clamp01((v/2 - b.Min/2) / (b.Max/2 - b.Min/2))
}

// ComputeBounds makes one pass over items and records the min and max of the
// transformed numeric values of field
func ComputeBounds(items iter.Seq2[string, itemdata.Merged], field model.ItemDataField, transform Transform) Bounds {
	if transform == nil {
		transform = Identity
	}

	b := Bounds{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, data := range items {
		v, ok := numericValue(data, field, transform)
		if !ok {
			b.Missing = true
			continue
		}
		b.Valid = true
		b.Min = min(b.Min, v)
		b.Max = max(b.Max, v)
	}

	if !b.Valid {
		b.Min, b.Max = 0, 0
	}
	return b
}
