package appearance

import (
	"github.com/ritzau/appearance-engine/pkg/itemdata"
	"github.com/ritzau/appearance-engine/pkg/model"
)

// StringGetter computes a label or image. A nil result clears the attribute.
type StringGetter interface {
	Value(data itemdata.Merged) *string
}

type noString struct{}

func (noString) Value(itemdata.Merged) *string { return nil }

// ConstantString returns the same value for every item
type ConstantString string

func (c ConstantString) Value(itemdata.Merged) *string {
	s := string(c)
	return &s
}

// FieldString reads the value of a field, falling back to Missing
type FieldString struct {
	Field   model.ItemDataField
	Missing *string
}

func (f *FieldString) Value(data itemdata.Merged) *string {
	raw, ok := data.Value(f.Field)
	if !ok {
		return f.Missing
	}
	s, ok := toString(raw)
	if !ok {
		return f.Missing
	}
	return &s
}

// MakeGetStringAttr resolves a label or image definition into a getter.
// A nil getter means "keep the rendering data value".
func MakeGetStringAttr(def StringAttrDefinition) StringGetter {
	switch d := def.(type) {
	case NoStringAttr:
		return noString{}
	case FixedStringAttr:
		return ConstantString(d.Value)
	case FieldStringAttr:
		return &FieldString{Field: d.Field, Missing: d.MissingValue}
	default:
		return nil
	}
}
