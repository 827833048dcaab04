package model

// ItemType selects between the node and edge halves of a dataset
type ItemType string

const (
	Nodes ItemType = "nodes"
	Edges ItemType = "edges"
)

// Scalar is the only value type item attributes may hold: bool, float64, string or nil.
// An absent key stands for "undefined".
type Scalar = any

// ItemData maps field ids to scalar values for one item
type ItemData map[string]Scalar

// ValidScalar reports whether v may be stored as an item attribute.
// Attribute values are flat so that search, tables and captions can treat every field alike.
func ValidScalar(v any) bool {
	switch v.(type) {
	case nil, bool, float64, string:
		return true
	default:
		return false
	}
}

// QuantitativeField marks a field as usable on numeric scales
type QuantitativeField struct {
	Unit string `json:"unit,omitempty"`
}

// QualitativeField marks a field as usable on categorical scales
type QualitativeField struct {
	Separator string `json:"separator,omitempty"` // Splits multi-valued cells, empty for single values
}

// FieldModel describes one attribute column.
// Quantitative and Qualitative may both be set (dual-typed) or both be nil.
type FieldModel struct {
	ID           string             `json:"id"`
	ItemType     ItemType           `json:"itemType"`
	Quantitative *QuantitativeField `json:"quantitative,omitempty"`
	Qualitative  *QualitativeField  `json:"qualitative,omitempty"`
	Dynamic      bool               `json:"dynamic,omitempty"`
}

// Ref returns the field reference addressing this field
func (f FieldModel) Ref() ItemDataField {
	return ItemDataField{Field: f.ID, Dynamic: f.Dynamic}
}

// ItemDataField references a field and records whether it is static (loaded or
// user-entered) or dynamic (recomputed from topology).
type ItemDataField struct {
	Field   string `json:"field"`
	Dynamic bool   `json:"dynamic"`
}

// StaticDynamicAttributeKey builds a key that is unique across static and dynamic fields,
// so a static "degree" never collides with the dynamic "degree".
func StaticDynamicAttributeKey(ref ItemDataField) string {
	if ref.Dynamic {
		return "dynamic." + ref.Field
	}
	return "static." + ref.Field
}

// StaticDynamicAttributeLabel is the human-readable name of a field reference
func StaticDynamicAttributeLabel(ref ItemDataField) string {
	if ref.Dynamic {
		return ref.Field + " (dynamic)"
	}
	return ref.Field
}
