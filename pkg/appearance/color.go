package appearance

import (
	"iter"

	"github.com/ritzau/appearance-engine/pkg/itemdata"
	"github.com/ritzau/appearance-engine/pkg/model"
)

// ColorGetter computes the color of one item. id is needed by edges that
// inherit the color of an endpoint.
type ColorGetter interface {
	Color(data itemdata.Merged, id string) string
}

// EdgeEnd selects one endpoint of an edge
type EdgeEnd int

const (
	SourceEnd EdgeEnd = iota
	TargetEnd
)

// ColorResolver looks up the resolved color of the node at one end of an edge
type ColorResolver interface {
	ResolveAdjacent(edgeID string, end EdgeEnd) (string, bool)
}

// ColorContext carries the lookups some color definitions need besides item data
type ColorContext struct {
	// Adjacent resolves endpoint colors for source and target definitions
	Adjacent ColorResolver
	// Rendered reads the rendering-data color; a shaded "data" definition starts from it
	Rendered func(id string) (string, bool)
}

// ConstantColor returns the same color for every item
type ConstantColor string

func (c ConstantColor) Color(itemdata.Merged, string) string {
	return string(c)
}

// PartitionScale looks qualitative values up in a palette
type PartitionScale struct {
	Field        model.ItemDataField
	Palette      map[string]string
	MissingColor string
}

func (s *PartitionScale) Color(data itemdata.Merged, _ string) string {
	key, ok := PartitionKey(data, s.Field)
	if !ok {
		return s.MissingColor
	}
	if c, ok := s.Palette[key]; ok {
		return c
	}
	return s.MissingColor
}

// PartitionKey is the string a partition looks an item up by.
// ok is false when the item has no usable value.
func PartitionKey(data itemdata.Merged, field model.ItemDataField) (string, bool) {
	raw, ok := data.Value(field)
	if !ok {
		return "", false
	}
	return toString(raw)
}

// RankingColorScale maps quantitative values onto a color scale
type RankingColorScale struct {
	Field        model.ItemDataField
	Transform    Transform
	Bounds       Bounds
	Scale        ColorScale
	MissingColor string
}

func (s *RankingColorScale) Color(data itemdata.Merged, _ string) string {
	v, ok := numericValue(data, s.Field, s.Transform)
	if !ok || s.Scale.Empty() {
		return s.MissingColor
	}
	return s.Scale.At(s.Bounds.Normalize(v))
}

// AdjacentColor copies the color of one endpoint node
type AdjacentColor struct {
	End      EdgeEnd
	Resolver ColorResolver
}

func (a *AdjacentColor) Color(_ itemdata.Merged, id string) string {
	if a.Resolver == nil {
		return DefaultEdgeColor
	}
	if c, ok := a.Resolver.ResolveAdjacent(id, a.End); ok && c != "" {
		return c
	}
	return DefaultEdgeColor
}

type renderedColor func(id string) (string, bool)

func (r renderedColor) Color(_ itemdata.Merged, id string) string {
	c, _ := r(id)
	return c
}

// ShadedColor darkens or tints a base color toward Target by a numeric field.
// Bounds are computed once when the getter is built.
type ShadedColor struct {
	Base         ColorGetter
	Field        model.ItemDataField
	Bounds       Bounds
	Factor       float64
	Target       string
	MissingColor *string
}

func (s *ShadedColor) Color(data itemdata.Merged, id string) string {
	base := s.Base.Color(data, id)

	v, ok := numericValue(data, s.Field, Identity)
	if !ok {
		if s.MissingColor != nil {
			return *s.MissingColor
		}
		return base
	}

	t := s.Factor
	if v != s.Bounds.Max {
		t = s.Bounds.Normalize(v) * s.Factor
	}
	return BlendColors(base, s.Target, t)
}

// MakeGetColor resolves a color definition plus optional shading into a getter.
// items are scanned once for ranking and shading bounds. A nil getter means
// "keep the rendering data color".
func MakeGetColor(def ColorDefinition, shading *Shading, items iter.Seq2[string, itemdata.Merged], ctx ColorContext) ColorGetter {
	base := baseColorGetter(def, items, ctx)
	if shading == nil {
		return base
	}
	if base == nil {
		if _, ok := def.(DataColor); !ok || ctx.Rendered == nil {
			return nil
		}
		base = renderedColor(ctx.Rendered)
	}

	return &ShadedColor{
		Base:         base,
		Field:        shading.Field,
		Bounds:       ComputeBounds(items, shading.Field, Identity),
		Factor:       shading.Factor,
		Target:       shading.TargetColor,
		MissingColor: shading.MissingColor,
	}
}

func baseColorGetter(def ColorDefinition, items iter.Seq2[string, itemdata.Merged], ctx ColorContext) ColorGetter {
	switch d := def.(type) {
	case FixedColor:
		return ConstantColor(d.Value)
	case PartitionColor:
		return &PartitionScale{
			Field:        d.Field,
			Palette:      d.ColorPalette,
			MissingColor: d.MissingColor,
		}
	case RankingColor:
		transform := ResolveTransformation(d.TransformationMethod)
		return &RankingColorScale{
			Field:        d.Field,
			Transform:    transform,
			Bounds:       ComputeBounds(items, d.Field, transform),
			Scale:        NewColorScale(d.ColorScalePoints),
			MissingColor: d.MissingColor,
		}
	case SourceColor:
		return &AdjacentColor{End: SourceEnd, Resolver: ctx.Adjacent}
	case TargetColor:
		return &AdjacentColor{End: TargetEnd, Resolver: ctx.Adjacent}
	default:
		return nil
	}
}
