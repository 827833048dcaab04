package appearance

import (
	"iter"

	"github.com/ritzau/appearance-engine/pkg/itemdata"
	"github.com/ritzau/appearance-engine/pkg/model"
)

// NumberGetter computes a size, weight or z-index from an item's data
type NumberGetter interface {
	Number(data itemdata.Merged) float64
}

// ConstantNumber returns the same value for every item
type ConstantNumber float64

func (c ConstantNumber) Number(itemdata.Merged) float64 {
	return float64(c)
}

// RankingScale maps a field linearly onto [MinSize, MaxSize] using bounds
// computed when the scale was built
type RankingScale struct {
	Field       model.ItemDataField
	Transform   Transform
	Bounds      Bounds
	MinSize     float64
	MaxSize     float64
	MissingSize float64
}

func (s *RankingScale) Number(data itemdata.Merged) float64 {
	v, ok := numericValue(data, s.Field, s.Transform)
	if !ok {
		return s.MissingSize
	}
	return s.MinSize + s.Bounds.Normalize(v)*(s.MaxSize-s.MinSize)
}

// FieldIndexScale maps a field onto [MinZIndex, MaxZIndex], optionally reversed.
// Items without a value get z-index 0 and sink below everything else.
type FieldIndexScale struct {
	Field    model.ItemDataField
	Bounds   Bounds
	Reversed bool
}

func (s *FieldIndexScale) Number(data itemdata.Merged) float64 {
	v, ok := numericValue(data, s.Field, Identity)
	if !ok {
		return 0
	}
	t := s.Bounds.Normalize(v)
	if s.Reversed {
		t = 1 - t
	}
	return MinZIndex + t*(MaxZIndex-MinZIndex)
}

// MakeGetNumberAttr resolves a number definition into a getter. items are scanned
// once for ranking bounds. A nil getter means "keep the rendering data value".
func MakeGetNumberAttr(def NumberDefinition, items iter.Seq2[string, itemdata.Merged]) NumberGetter {
	switch d := def.(type) {
	case FixedSize:
		return ConstantNumber(d.Value)
	case RankingSize:
		transform := ResolveTransformation(d.TransformationMethod)
		return &RankingScale{
			Field:       d.Field,
			Transform:   transform,
			Bounds:      ComputeBounds(items, d.Field, transform),
			MinSize:     d.MinSize,
			MaxSize:     d.MaxSize,
			MissingSize: d.MissingSize,
		}
	case FieldIndex:
		return &FieldIndexScale{
			Field:    d.Field,
			Bounds:   ComputeBounds(items, d.Field, Identity),
			Reversed: d.Reversed,
		}
	default:
		// DataSize, nil and anything unknown leave the rendering data alone
		return nil
	}
}
