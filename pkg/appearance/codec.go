package appearance

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/ritzau/appearance-engine/pkg/logging"
	"github.com/ritzau/appearance-engine/pkg/model"
)

// Definitions are encoded as objects tagged with a "type" discriminator.
// Unknown variants decode to a nil definition, which resolves to a nil getter.

type colorWire struct {
	Type                 string               `json:"type"`
	Value                string               `json:"value,omitempty"`
	Field                *model.ItemDataField `json:"field,omitempty"`
	ColorPalette         map[string]string    `json:"colorPalette,omitempty"`
	ColorScalePoints     []ColorScalePoint    `json:"colorScalePoints,omitempty"`
	MissingColor         string               `json:"missingColor,omitempty"`
	TransformationMethod json.RawMessage      `json:"transformationMethod,omitempty"`
}

type numberWire struct {
	Type                 string               `json:"type"`
	Value                float64              `json:"value,omitempty"`
	Field                *model.ItemDataField `json:"field,omitempty"`
	TransformationMethod json.RawMessage      `json:"transformationMethod,omitempty"`
	MinSize              float64              `json:"minSize,omitempty"`
	MaxSize              float64              `json:"maxSize,omitempty"`
	MissingSize          float64              `json:"missingSize,omitempty"`
	Reversed             bool                 `json:"reversed,omitempty"`
}

type stringWire struct {
	Type         string               `json:"type"`
	Value        string               `json:"value,omitempty"`
	Field        *model.ItemDataField `json:"field,omitempty"`
	MissingValue *string              `json:"missingValue,omitempty"`
}

type stateOut struct {
	ShowEdges          bool          `json:"showEdges"`
	NodesSize          *numberWire   `json:"nodesSize"`
	EdgesSize          *numberWire   `json:"edgesSize"`
	EdgesZIndex        *numberWire   `json:"edgesZIndex"`
	NodesColor         *colorWire    `json:"nodesColor"`
	EdgesColor         *colorWire    `json:"edgesColor"`
	NodesShadingColor  *Shading      `json:"nodesShadingColor,omitempty"`
	EdgesShadingColor  *Shading      `json:"edgesShadingColor,omitempty"`
	NodesLabel         *stringWire   `json:"nodesLabel"`
	EdgesLabel         *stringWire   `json:"edgesLabel"`
	NodesImage         *stringWire   `json:"nodesImage"`
	NodesLabelSize     LabelSize     `json:"nodesLabelSize"`
	EdgesLabelSize     LabelSize     `json:"edgesLabelSize"`
	NodesLabelEllipsis LabelEllipsis `json:"nodesLabelEllipsis"`
	EdgesLabelEllipsis LabelEllipsis `json:"edgesLabelEllipsis"`
	BackgroundColor    string        `json:"backgroundColor"`
	LayoutGridColor    string        `json:"layoutGridColor"`
}

// stateIn keeps definitions raw so absent keys keep their defaults
type stateIn struct {
	ShowEdges          *bool           `json:"showEdges"`
	NodesSize          json.RawMessage `json:"nodesSize"`
	EdgesSize          json.RawMessage `json:"edgesSize"`
	EdgesZIndex        json.RawMessage `json:"edgesZIndex"`
	NodesColor         json.RawMessage `json:"nodesColor"`
	EdgesColor         json.RawMessage `json:"edgesColor"`
	NodesShadingColor  *Shading        `json:"nodesShadingColor"`
	EdgesShadingColor  *Shading        `json:"edgesShadingColor"`
	NodesLabel         json.RawMessage `json:"nodesLabel"`
	EdgesLabel         json.RawMessage `json:"edgesLabel"`
	NodesImage         json.RawMessage `json:"nodesImage"`
	NodesLabelSize     *LabelSize      `json:"nodesLabelSize"`
	EdgesLabelSize     *LabelSize      `json:"edgesLabelSize"`
	NodesLabelEllipsis *LabelEllipsis  `json:"nodesLabelEllipsis"`
	EdgesLabelEllipsis *LabelEllipsis  `json:"edgesLabelEllipsis"`
	BackgroundColor    *string         `json:"backgroundColor"`
	LayoutGridColor    *string         `json:"layoutGridColor"`
}

// MarshalJSON encodes the state with tagged definitions
func (s State) MarshalJSON() ([]byte, error) {
	out := stateOut{
		ShowEdges:          s.ShowEdges,
		NodesSize:          encodeNumber(s.NodesSize),
		EdgesSize:          encodeNumber(s.EdgesSize),
		EdgesZIndex:        encodeNumber(s.EdgesZIndex),
		NodesColor:         encodeColor(s.NodesColor),
		EdgesColor:         encodeColor(s.EdgesColor),
		NodesShadingColor:  s.NodesShadingColor,
		EdgesShadingColor:  s.EdgesShadingColor,
		NodesLabel:         encodeString(s.NodesLabel),
		EdgesLabel:         encodeString(s.EdgesLabel),
		NodesImage:         encodeString(s.NodesImage),
		NodesLabelSize:     s.NodesLabelSize,
		EdgesLabelSize:     s.EdgesLabelSize,
		NodesLabelEllipsis: s.NodesLabelEllipsis,
		EdgesLabelEllipsis: s.EdgesLabelEllipsis,
		BackgroundColor:    s.BackgroundColor,
		LayoutGridColor:    s.LayoutGridColor,
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a state document. Keys that are absent keep the
// values of DefaultAppearance.
func (s *State) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeState(data)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// DecodeState decodes a possibly partial state document on top of DefaultAppearance
func DecodeState(data []byte) (State, error) {
	var in stateIn
	if err := json.Unmarshal(data, &in); err != nil {
		return State{}, fmt.Errorf("decoding appearance: %w", err)
	}

	s := DefaultAppearance()
	if in.ShowEdges != nil {
		s.ShowEdges = *in.ShowEdges
	}

	var err error
	numbers := []struct {
		raw  json.RawMessage
		dest *NumberDefinition
		name string
	}{
		{in.NodesSize, &s.NodesSize, "nodesSize"},
		{in.EdgesSize, &s.EdgesSize, "edgesSize"},
		{in.EdgesZIndex, &s.EdgesZIndex, "edgesZIndex"},
	}
	for _, n := range numbers {
		if n.raw == nil {
			continue
		}
		if *n.dest, err = decodeNumber(n.raw); err != nil {
			return State{}, fmt.Errorf("decoding %s: %w", n.name, err)
		}
	}

	colors := []struct {
		raw  json.RawMessage
		dest *ColorDefinition
		name string
	}{
		{in.NodesColor, &s.NodesColor, "nodesColor"},
		{in.EdgesColor, &s.EdgesColor, "edgesColor"},
	}
	for _, c := range colors {
		if c.raw == nil {
			continue
		}
		if *c.dest, err = decodeColor(c.raw); err != nil {
			return State{}, fmt.Errorf("decoding %s: %w", c.name, err)
		}
	}

	stringAttrs := []struct {
		raw  json.RawMessage
		dest *StringAttrDefinition
		name string
	}{
		{in.NodesLabel, &s.NodesLabel, "nodesLabel"},
		{in.EdgesLabel, &s.EdgesLabel, "edgesLabel"},
		{in.NodesImage, &s.NodesImage, "nodesImage"},
	}
	for _, a := range stringAttrs {
		if a.raw == nil {
			continue
		}
		if *a.dest, err = decodeString(a.raw); err != nil {
			return State{}, fmt.Errorf("decoding %s: %w", a.name, err)
		}
	}

	s.NodesShadingColor = in.NodesShadingColor
	s.EdgesShadingColor = in.EdgesShadingColor
	if in.NodesLabelSize != nil {
		s.NodesLabelSize = *in.NodesLabelSize
	}
	if in.EdgesLabelSize != nil {
		s.EdgesLabelSize = *in.EdgesLabelSize
	}
	if in.NodesLabelEllipsis != nil {
		s.NodesLabelEllipsis = *in.NodesLabelEllipsis
	}
	if in.EdgesLabelEllipsis != nil {
		s.EdgesLabelEllipsis = *in.EdgesLabelEllipsis
	}
	if in.BackgroundColor != nil {
		s.BackgroundColor = *in.BackgroundColor
	}
	if in.LayoutGridColor != nil {
		s.LayoutGridColor = *in.LayoutGridColor
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func fieldOrZero(f *model.ItemDataField) model.ItemDataField {
	if f == nil {
		return model.ItemDataField{}
	}
	return *f
}

func encodeColor(def ColorDefinition) *colorWire {
	switch d := def.(type) {
	case FixedColor:
		return &colorWire{Type: d.Type(), Value: d.Value}
	case PartitionColor:
		return &colorWire{Type: d.Type(), Field: &d.Field, ColorPalette: d.ColorPalette, MissingColor: d.MissingColor}
	case RankingColor:
		return &colorWire{
			Type:                 d.Type(),
			Field:                &d.Field,
			ColorScalePoints:     d.ColorScalePoints,
			MissingColor:         d.MissingColor,
			TransformationMethod: encodeTransformation(d.TransformationMethod),
		}
	case DataColor, SourceColor, TargetColor:
		return &colorWire{Type: d.Type()}
	default:
		return nil
	}
}

func decodeColor(raw json.RawMessage) (ColorDefinition, error) {
	if isNull(raw) {
		return nil, nil
	}
	var w colorWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}

	switch w.Type {
	case "fixed":
		return FixedColor{Value: w.Value}, nil
	case "data":
		return DataColor{}, nil
	case "partition":
		return PartitionColor{Field: fieldOrZero(w.Field), ColorPalette: w.ColorPalette, MissingColor: w.MissingColor}, nil
	case "ranking":
		return RankingColor{
			Field:                fieldOrZero(w.Field),
			ColorScalePoints:     w.ColorScalePoints,
			MissingColor:         w.MissingColor,
			TransformationMethod: decodeTransformation(w.TransformationMethod),
		}, nil
	case "source":
		return SourceColor{}, nil
	case "target":
		return TargetColor{}, nil
	default:
		logging.Warn("ignoring unknown color definition", "type", w.Type)
		return nil, nil
	}
}

func encodeNumber(def NumberDefinition) *numberWire {
	switch d := def.(type) {
	case FixedSize:
		return &numberWire{Type: d.Type(), Value: d.Value}
	case DataSize:
		return &numberWire{Type: d.Type()}
	case RankingSize:
		return &numberWire{
			Type:                 d.Type(),
			Field:                &d.Field,
			TransformationMethod: encodeTransformation(d.TransformationMethod),
			MinSize:              d.MinSize,
			MaxSize:              d.MaxSize,
			MissingSize:          d.MissingSize,
		}
	case FieldIndex:
		return &numberWire{Type: d.Type(), Field: &d.Field, Reversed: d.Reversed}
	default:
		return nil
	}
}

func decodeNumber(raw json.RawMessage) (NumberDefinition, error) {
	if isNull(raw) {
		return nil, nil
	}
	var w numberWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}

	switch w.Type {
	case "fixed":
		return FixedSize{Value: w.Value}, nil
	case "data":
		return DataSize{}, nil
	case "ranking":
		return RankingSize{
			Field:                fieldOrZero(w.Field),
			TransformationMethod: decodeTransformation(w.TransformationMethod),
			MinSize:              w.MinSize,
			MaxSize:              w.MaxSize,
			MissingSize:          w.MissingSize,
		}, nil
	case "field":
		return FieldIndex{Field: fieldOrZero(w.Field), Reversed: w.Reversed}, nil
	default:
		logging.Warn("ignoring unknown size definition", "type", w.Type)
		return nil, nil
	}
}

func encodeString(def StringAttrDefinition) *stringWire {
	switch d := def.(type) {
	case FixedStringAttr:
		return &stringWire{Type: d.Type(), Value: d.Value}
	case FieldStringAttr:
		return &stringWire{Type: d.Type(), Field: &d.Field, MissingValue: d.MissingValue}
	case NoStringAttr, DataStringAttr:
		return &stringWire{Type: d.Type()}
	default:
		return nil
	}
}

func decodeString(raw json.RawMessage) (StringAttrDefinition, error) {
	if isNull(raw) {
		return nil, nil
	}
	var w stringWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}

	switch w.Type {
	case "none":
		return NoStringAttr{}, nil
	case "data":
		return DataStringAttr{}, nil
	case "fixed":
		return FixedStringAttr{Value: w.Value}, nil
	case "field":
		return FieldStringAttr{Field: fieldOrZero(w.Field), MissingValue: w.MissingValue}, nil
	default:
		logging.Warn("ignoring unknown label definition", "type", w.Type)
		return nil, nil
	}
}

// Transformations encode as null (linear), "log" or {"pow": n}
func encodeTransformation(m TransformationMethod) json.RawMessage {
	switch t := m.(type) {
	case LogTransform:
		return json.RawMessage(`"log"`)
	case PowTransform:
		b, err := json.Marshal(struct {
			Pow float64 `json:"pow"`
		}{t.Pow})
		if err != nil {
			return nil
		}
		return b
	default:
		return nil
	}
}

func decodeTransformation(raw json.RawMessage) TransformationMethod {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if name == "log" {
			return LogTransform{}
		}
		logging.Warn("ignoring unknown transformation, using linear", "method", name)
		return nil
	}

	var pow struct {
		Pow *float64 `json:"pow"`
	}
	if err := json.Unmarshal(raw, &pow); err == nil && pow.Pow != nil {
		return PowTransform{Pow: *pow.Pow}
	}
	logging.Warn("ignoring malformed transformation, using linear", "raw", string(raw))
	return nil
}
