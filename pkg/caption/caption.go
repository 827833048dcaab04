package caption

import (
	"cmp"
	"iter"
	"slices"

	"github.com/ritzau/appearance-engine/pkg/appearance"
	"github.com/ritzau/appearance-engine/pkg/graph"
	"github.com/ritzau/appearance-engine/pkg/itemdata"
	"github.com/ritzau/appearance-engine/pkg/model"
)

// MissingLabel names the bucket of items without a value
const MissingLabel = "N/A"

// RangeCaption is the legend of a ranking channel
type RangeCaption struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Valid   bool    `json:"valid"`   // At least one visible item had a value
	Missing bool    `json:"missing"` // At least one visible item had no value

	// Size channels, scaled to the current zoom
	MinSize     float64 `json:"minSize,omitempty"`
	MaxSize     float64 `json:"maxSize,omitempty"`
	MissingSize float64 `json:"missingSize,omitempty"`

	// Color channels
	ColorScalePoints []appearance.ColorScalePoint `json:"colorScalePoints,omitempty"`
	MissingColor     string                       `json:"missingColor,omitempty"`

	// Shading channels
	Factor      float64 `json:"factor,omitempty"`
	TargetColor string  `json:"targetColor,omitempty"`
}

// PartitionCaption is the legend of a partition channel
type PartitionCaption struct {
	Occurrences  map[string]int    `json:"occurrences"`
	Missing      bool              `json:"missing"`
	MissingCount int               `json:"missingCount"`
	Palette      map[string]string `json:"palette,omitempty"`
	MissingColor string            `json:"missingColor,omitempty"`
}

// Channel is the legend of one visual channel. Exactly one of Range and Partition is set.
type Channel struct {
	Field     model.ItemDataField `json:"field"`
	Label     string              `json:"label"`
	Range     *RangeCaption       `json:"range,omitempty"`
	Partition *PartitionCaption   `json:"partition,omitempty"`
}

// Caption holds the legends of every channel configured as ranking or partition.
// Channels with any other definition are nil.
type Caption struct {
	NodesColor   *Channel `json:"nodesColor,omitempty"`
	NodesShading *Channel `json:"nodesShading,omitempty"`
	NodesSize    *Channel `json:"nodesSize,omitempty"`
	EdgesColor   *Channel `json:"edgesColor,omitempty"`
	EdgesShading *Channel `json:"edgesShading,omitempty"`
	EdgesSize    *Channel `json:"edgesSize,omitempty"`
}

// Channels lists the non-nil channels with a display name, nodes first
func (c *Caption) Channels() []NamedChannel {
	all := []NamedChannel{
		{"node color", c.NodesColor},
		{"node shading", c.NodesShading},
		{"node size", c.NodesSize},
		{"edge color", c.EdgesColor},
		{"edge shading", c.EdgesShading},
		{"edge size", c.EdgesSize},
	}
	return slices.DeleteFunc(all, func(n NamedChannel) bool { return n.Channel == nil })
}

// NamedChannel pairs a channel with a display name
type NamedChannel struct {
	Name    string
	Channel *Channel
}

// Compute folds the data of the items in the filtered view into legends.
// Ranges come from appearance.ComputeBounds so legends and rendering agree.
// sizeRatio is the renderer's current size/rawSize ratio; a nil filtered view
// means every item is visible.
func Compute(state appearance.State, filtered *graph.Topology, nodes, edges map[string]itemdata.Merged, sizeRatio float64) Caption {
	if sizeRatio <= 0 {
		sizeRatio = 1
	}

	visibleNodes := func() iter.Seq2[string, itemdata.Merged] {
		return itemdata.Visible(nodes, isVisible(filtered, model.Nodes))
	}
	visibleEdges := func() iter.Seq2[string, itemdata.Merged] {
		return itemdata.Visible(edges, isVisible(filtered, model.Edges))
	}

	return Caption{
		NodesColor:   colorChannel(state.NodesColor, visibleNodes),
		NodesShading: shadingChannel(state.NodesShadingColor, visibleNodes),
		NodesSize:    sizeChannel(state.NodesSize, visibleNodes, sizeRatio),
		EdgesColor:   colorChannel(state.EdgesColor, visibleEdges),
		EdgesShading: shadingChannel(state.EdgesShadingColor, visibleEdges),
		EdgesSize:    sizeChannel(state.EdgesSize, visibleEdges, sizeRatio),
	}
}

func isVisible(filtered *graph.Topology, itemType model.ItemType) func(string) bool {
	switch {
	case filtered == nil:
		return func(string) bool { return true }
	case itemType == model.Edges:
		return filtered.HasEdge
	default:
		return filtered.HasNode
	}
}

func colorChannel(def appearance.ColorDefinition, items func() iter.Seq2[string, itemdata.Merged]) *Channel {
	switch d := def.(type) {
	case appearance.PartitionColor:
		p := countOccurrences(items(), d.Field)
		p.Palette = d.ColorPalette
		p.MissingColor = d.MissingColor
		return &Channel{Field: d.Field, Label: model.StaticDynamicAttributeLabel(d.Field), Partition: p}
	case appearance.RankingColor:
		b := appearance.ComputeBounds(items(), d.Field, appearance.ResolveTransformation(d.TransformationMethod))
		return &Channel{
			Field: d.Field,
			Label: model.StaticDynamicAttributeLabel(d.Field),
			Range: &RangeCaption{
				Min:              b.Min,
				Max:              b.Max,
				Valid:            b.Valid,
				Missing:          b.Missing,
				ColorScalePoints: d.ColorScalePoints,
				MissingColor:     d.MissingColor,
			},
		}
	default:
		return nil
	}
}

func shadingChannel(shading *appearance.Shading, items func() iter.Seq2[string, itemdata.Merged]) *Channel {
	if shading == nil {
		return nil
	}
	b := appearance.ComputeBounds(items(), shading.Field, appearance.Identity)
	r := &RangeCaption{
		Min:         b.Min,
		Max:         b.Max,
		Valid:       b.Valid,
		Missing:     b.Missing,
		Factor:      shading.Factor,
		TargetColor: shading.TargetColor,
	}
	if shading.MissingColor != nil {
		r.MissingColor = *shading.MissingColor
	}
	return &Channel{Field: shading.Field, Label: model.StaticDynamicAttributeLabel(shading.Field), Range: r}
}

func sizeChannel(def appearance.NumberDefinition, items func() iter.Seq2[string, itemdata.Merged], sizeRatio float64) *Channel {
	d, ok := def.(appearance.RankingSize)
	if !ok {
		return nil
	}
	b := appearance.ComputeBounds(items(), d.Field, appearance.ResolveTransformation(d.TransformationMethod))
	return &Channel{
		Field: d.Field,
		Label: model.StaticDynamicAttributeLabel(d.Field),
		Range: &RangeCaption{
			Min:         b.Min,
			Max:         b.Max,
			Valid:       b.Valid,
			Missing:     b.Missing,
			MinSize:     d.MinSize * sizeRatio,
			MaxSize:     d.MaxSize * sizeRatio,
			MissingSize: d.MissingSize * sizeRatio,
		},
	}
}

// countOccurrences casts values to strings the same way partition colors do
func countOccurrences(items iter.Seq2[string, itemdata.Merged], field model.ItemDataField) *PartitionCaption {
	p := &PartitionCaption{Occurrences: make(map[string]int)}
	for _, data := range items {
		key, ok := appearance.PartitionKey(data, field)
		if !ok {
			p.Missing = true
			p.MissingCount++
			continue
		}
		p.Occurrences[key]++
	}
	return p
}

// Occurrence is one legend row of a partition
type Occurrence struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// SortedOccurrences orders values by count, most frequent first, ties by value.
// The MissingLabel bucket comes last when any item lacked a value.
func SortedOccurrences(p *PartitionCaption) []Occurrence {
	rows := make([]Occurrence, 0, len(p.Occurrences)+1)
	for value, count := range p.Occurrences {
		rows = append(rows, Occurrence{Value: value, Count: count})
	}
	slices.SortFunc(rows, func(a, b Occurrence) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	if p.Missing {
		rows = append(rows, Occurrence{Value: MissingLabel, Count: p.MissingCount})
	}
	return rows
}
