package appearance

import "math"

// TransformationMethod reshapes ranking values before they are mapped onto a range.
// A nil method is the identity. The set is closed: LogTransform or PowTransform.
type TransformationMethod interface {
	isTransformation()
}

// LogTransform applies the natural logarithm
type LogTransform struct{}

// PowTransform raises values to Pow
type PowTransform struct {
	Pow float64
}

func (LogTransform) isTransformation() {}
func (PowTransform) isTransformation() {}

// Transform maps a possibly missing value to a possibly missing value.
// ok=false on input means "missing"; ok=false on output means the value
// left the domain of the transformation.
type Transform func(x float64, ok bool) (float64, bool)

// Identity passes values through unchanged
func Identity(x float64, ok bool) (float64, bool) {
	return x, ok
}

// ResolveTransformation turns a method into an evaluable Transform.
// Missing stays missing; results that are not finite become missing.
func ResolveTransformation(method TransformationMethod) Transform {
	switch m := method.(type) {
	case LogTransform:
		return func(x float64, ok bool) (float64, bool) {
			if !ok {
				return 0, false
			}
			return finite(math.Log(x))
		}
	case PowTransform:
		pow := m.Pow
		return func(x float64, ok bool) (float64, bool) {
			if !ok {
				return 0, false
			}
			return finite(math.Pow(x, pow))
		}
	default:
		return Identity
	}
}

func finite(x float64) (float64, bool) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return x, true
}
