package appearance

import "github.com/ritzau/appearance-engine/pkg/model"

// Fallback rendering values
const (
	DefaultNodeColor = "#999999"
	DefaultEdgeColor = "#cccccc"
	DefaultNodeSize  = 6.0
	DefaultEdgeSize  = 1.0

	// Edge z-index "field" definitions map onto this fixed range
	MinZIndex = 1.0
	MaxZIndex = 10.0
)

// ColorDefinition is one of FixedColor, DataColor, PartitionColor, RankingColor,
// SourceColor or TargetColor. The set is closed.
type ColorDefinition interface {
	Type() string
	isColor()
}

// FixedColor paints every item with the same color
type FixedColor struct {
	Value string
}

// DataColor keeps the color found in the rendering data
type DataColor struct{}

// PartitionColor maps qualitative field values to palette colors
type PartitionColor struct {
	Field        model.ItemDataField
	ColorPalette map[string]string
	MissingColor string
}

// ColorScalePoint positions a color on the [0,1] ranking domain
type ColorScalePoint struct {
	ScalePoint float64 `json:"scalePoint"`
	Color      string  `json:"color"`
}

// RankingColor maps quantitative field values onto a continuous color scale
type RankingColor struct {
	Field                model.ItemDataField
	ColorScalePoints     []ColorScalePoint
	MissingColor         string
	TransformationMethod TransformationMethod
}

// SourceColor makes an edge inherit the resolved color of its source node
type SourceColor struct{}

// TargetColor makes an edge inherit the resolved color of its target node
type TargetColor struct{}

func (FixedColor) Type() string     { return "fixed" }
func (DataColor) Type() string      { return "data" }
func (PartitionColor) Type() string { return "partition" }
func (RankingColor) Type() string   { return "ranking" }
func (SourceColor) Type() string    { return "source" }
func (TargetColor) Type() string    { return "target" }

func (FixedColor) isColor()     {}
func (DataColor) isColor()      {}
func (PartitionColor) isColor() {}
func (RankingColor) isColor()   {}
func (SourceColor) isColor()    {}
func (TargetColor) isColor()    {}

// Shading blends a resolved color toward TargetColor in proportion to a second
// numeric field. MissingColor, when set, replaces the color of items lacking the field.
type Shading struct {
	Field        model.ItemDataField `json:"field"`
	Factor       float64             `json:"factor"`
	TargetColor  string              `json:"targetColor"`
	MissingColor *string             `json:"missingColor,omitempty"`
}

// NumberDefinition is one of FixedSize, DataSize, RankingSize or FieldIndex
type NumberDefinition interface {
	Type() string
	isNumber()
}

// FixedSize gives every item the same value
type FixedSize struct {
	Value float64
}

// DataSize keeps the value found in the rendering data
type DataSize struct{}

// RankingSize maps a quantitative field onto [MinSize, MaxSize]
type RankingSize struct {
	Field                model.ItemDataField
	TransformationMethod TransformationMethod
	MinSize              float64
	MaxSize              float64
	MissingSize          float64
}

// FieldIndex maps a quantitative field onto the fixed [MinZIndex, MaxZIndex] range.
// Only used for edge z-index.
type FieldIndex struct {
	Field    model.ItemDataField
	Reversed bool
}

func (FixedSize) Type() string   { return "fixed" }
func (DataSize) Type() string    { return "data" }
func (RankingSize) Type() string { return "ranking" }
func (FieldIndex) Type() string  { return "field" }

func (FixedSize) isNumber()   {}
func (DataSize) isNumber()    {}
func (RankingSize) isNumber() {}
func (FieldIndex) isNumber()  {}

// StringAttrDefinition is one of NoStringAttr, DataStringAttr, FixedStringAttr or FieldStringAttr.
// Used for labels and images.
type StringAttrDefinition interface {
	Type() string
	isStringAttr()
}

// NoStringAttr clears the attribute on every item
type NoStringAttr struct{}

// DataStringAttr keeps the value found in the rendering data
type DataStringAttr struct{}

// FixedStringAttr gives every item the same value
type FixedStringAttr struct {
	Value string
}

// FieldStringAttr reads the attribute from a field
type FieldStringAttr struct {
	Field        model.ItemDataField
	MissingValue *string
}

func (NoStringAttr) Type() string    { return "none" }
func (DataStringAttr) Type() string  { return "data" }
func (FixedStringAttr) Type() string { return "fixed" }
func (FieldStringAttr) Type() string { return "field" }

func (NoStringAttr) isStringAttr()    {}
func (DataStringAttr) isStringAttr()  {}
func (FixedStringAttr) isStringAttr() {}
func (FieldStringAttr) isStringAttr() {}

// LabelSizeType selects how the base label size is derived
type LabelSizeType string

const (
	LabelSizeFixed LabelSizeType = "fixed"
	LabelSizeItem  LabelSizeType = "item"
)

// LabelSize configures label sizing and its adaptation to the camera zoom
type LabelSize struct {
	Type            LabelSizeType `json:"type"`
	Value           float64       `json:"value,omitempty"`           // fixed mode
	SizeCorrelation float64       `json:"sizeCorrelation,omitempty"` // item mode
	ZoomCorrelation float64       `json:"zoomCorrelation"`
	Density         float64       `json:"density"`
}

// LabelEllipsis truncates long labels of items that are not highlighted
type LabelEllipsis struct {
	Enabled   bool `json:"enabled"`
	MaxLength int  `json:"maxLength"`
}

// State is the declarative appearance configuration.
// Definitions are replaced as a whole, never mutated in place.
type State struct {
	ShowEdges bool

	NodesSize   NumberDefinition
	EdgesSize   NumberDefinition
	EdgesZIndex NumberDefinition

	NodesColor        ColorDefinition
	EdgesColor        ColorDefinition
	NodesShadingColor *Shading
	EdgesShadingColor *Shading

	NodesLabel StringAttrDefinition
	EdgesLabel StringAttrDefinition
	NodesImage StringAttrDefinition

	NodesLabelSize     LabelSize
	EdgesLabelSize     LabelSize
	NodesLabelEllipsis LabelEllipsis
	EdgesLabelEllipsis LabelEllipsis

	BackgroundColor string
	LayoutGridColor string
}

// DefaultAppearance returns the configuration used for freshly loaded datasets:
// everything passes rendering data through.
func DefaultAppearance() State {
	return State{
		ShowEdges:   true,
		NodesSize:   DataSize{},
		EdgesSize:   DataSize{},
		EdgesZIndex: DataSize{},
		NodesColor:  DataColor{},
		EdgesColor:  DataColor{},
		NodesLabel:  DataStringAttr{},
		EdgesLabel:  DataStringAttr{},
		NodesImage:  NoStringAttr{},
		NodesLabelSize: LabelSize{
			Type:            LabelSizeFixed,
			Value:           14,
			SizeCorrelation: 1,
			Density:         1,
		},
		EdgesLabelSize: LabelSize{
			Type:            LabelSizeFixed,
			Value:           14,
			SizeCorrelation: 1,
			Density:         1,
		},
		NodesLabelEllipsis: LabelEllipsis{MaxLength: 25},
		EdgesLabelEllipsis: LabelEllipsis{MaxLength: 25},
		BackgroundColor:    "#ffffff",
		LayoutGridColor:    "#666666",
	}
}
