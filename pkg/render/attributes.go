package render

import (
	"github.com/ritzau/appearance-engine/pkg/appearance"
	"github.com/ritzau/appearance-engine/pkg/graph"
	"github.com/ritzau/appearance-engine/pkg/itemdata"
	"github.com/ritzau/appearance-engine/pkg/model"
)

// ItemAttributes is the read-time display of one item for previews such as
// search results or the selection panel
type ItemAttributes struct {
	Label    *string `json:"label"`
	Color    string  `json:"color"`
	Hidden   bool    `json:"hidden"`
	Directed bool    `json:"directed"`
	Ghost    bool    `json:"ghost,omitempty"` // The id has no rendering data
}

// GetItemAttributes computes the label and color of one item through the
// getters, falling back to its rendering data. Hidden is true when the item is
// outside the filtered view. Unknown ids get a ghost placeholder.
func GetItemAttributes(
	itemType model.ItemType,
	id string,
	filtered *graph.Topology,
	merged map[string]itemdata.Merged,
	dataset *model.GraphDataset,
	getters appearance.VisualGetters,
) ItemAttributes {
	if itemType == model.Edges {
		return edgeAttributes(id, filtered, merged, dataset, getters)
	}
	return nodeAttributes(id, filtered, merged, dataset, getters)
}

func nodeAttributes(id string, filtered *graph.Topology, merged map[string]itemdata.Merged, dataset *model.GraphDataset, getters appearance.VisualGetters) ItemAttributes {
	r, ok := dataset.NodeRenderingData[id]
	if !ok {
		return ghost(appearance.DefaultNodeColor)
	}

	data := merged[id]
	attrs := ItemAttributes{
		Label:    r.Label,
		Color:    r.Color,
		Hidden:   filtered != nil && !filtered.HasNode(id),
		Directed: dataset.Metadata.Type != model.GraphUndirected,
	}
	if getters.NodeLabel != nil {
		attrs.Label = getters.NodeLabel.Value(data)
	}
	if getters.NodeColor != nil {
		attrs.Color = getters.NodeColor.Color(data, id)
	}
	return attrs
}

func edgeAttributes(id string, filtered *graph.Topology, merged map[string]itemdata.Merged, dataset *model.GraphDataset, getters appearance.VisualGetters) ItemAttributes {
	r, ok := dataset.EdgeRenderingData[id]
	if !ok {
		return ghost(appearance.DefaultEdgeColor)
	}

	data := merged[id]
	attrs := ItemAttributes{
		Label:    r.Label,
		Color:    r.Color,
		Hidden:   filtered != nil && !filtered.HasEdge(id),
		Directed: dataset.FullGraph.IsDirected(id),
	}
	if getters.EdgeLabel != nil {
		attrs.Label = getters.EdgeLabel.Value(data)
	}
	if getters.EdgeColor != nil {
		attrs.Color = getters.EdgeColor.Color(data, id)
	}
	return attrs
}

func ghost(color string) ItemAttributes {
	return ItemAttributes{
		Color:  color,
		Hidden: true,
		Ghost:  true,
	}
}
