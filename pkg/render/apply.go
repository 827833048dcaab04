package render

import (
	"github.com/ritzau/appearance-engine/pkg/appearance"
	"github.com/ritzau/appearance-engine/pkg/itemdata"
	"github.com/ritzau/appearance-engine/pkg/logging"
)

// ApplyVisualGetters writes every non-nil getter into the store, all nodes
// first and then all edges. Channels with a nil getter keep their current
// values. Getters only read item data, so applying twice gives the same store.
func ApplyVisualGetters(g *Graph, nodes, edges map[string]itemdata.Merged, getters appearance.VisualGetters) {
	for id, attrs := range g.nodes {
		data := nodes[id]

		if getters.NodeSize != nil {
			size := getters.NodeSize.Number(data)
			attrs.Size = size
			attrs.RawSize = size
		}
		if getters.NodeColor != nil {
			attrs.Color = getters.NodeColor.Color(data, id)
		}
		if getters.NodeLabel != nil {
			attrs.Label = getters.NodeLabel.Value(data)
		}
		if getters.NodeImage != nil {
			attrs.Image = getters.NodeImage.Value(data)
		}

		g.nodes[id] = attrs
	}

	for id, attrs := range g.edges {
		data := edges[id]

		if getters.EdgeSize != nil {
			weight := getters.EdgeSize.Number(data)
			attrs.Weight = weight
			attrs.RawWeight = weight
		}
		if getters.EdgeColor != nil {
			attrs.Color = getters.EdgeColor.Color(data, id)
		}
		if getters.EdgeLabel != nil {
			attrs.Label = getters.EdgeLabel.Value(data)
		}
		if getters.EdgeZIndex != nil {
			attrs.ZIndex = getters.EdgeZIndex.Number(data)
		}

		g.edges[id] = attrs
	}

	logging.Debug("applied visual getters", "nodes", len(g.nodes), "edges", len(g.edges))
}
