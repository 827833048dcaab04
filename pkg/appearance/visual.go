package appearance

import (
	"maps"

	"github.com/ritzau/appearance-engine/pkg/graph"
	"github.com/ritzau/appearance-engine/pkg/itemdata"
	"github.com/ritzau/appearance-engine/pkg/logging"
	"github.com/ritzau/appearance-engine/pkg/model"
)

// VisualGetters holds one resolved getter per visual channel.
// A nil slot leaves the matching rendering-data attribute untouched.
type VisualGetters struct {
	NodeSize  NumberGetter
	NodeColor ColorGetter
	NodeLabel StringGetter
	NodeImage StringGetter

	EdgeSize   NumberGetter
	EdgeColor  ColorGetter
	EdgeLabel  StringGetter
	EdgeZIndex NumberGetter
}

// nodeColors lets edge getters read the color their endpoints resolve to.
// rendering is only consulted when node colors come from the rendering data.
type nodeColors struct {
	topology  *graph.Topology
	getter    ColorGetter
	nodes     map[string]itemdata.Merged
	rendering map[string]model.NodeRenderingData
}

func (n *nodeColors) ResolveAdjacent(edgeID string, end EdgeEnd) (string, bool) {
	var (
		nodeID string
		ok     bool
	)
	if end == SourceEnd {
		nodeID, ok = n.topology.Source(edgeID)
	} else {
		nodeID, ok = n.topology.Target(edgeID)
	}
	if !ok {
		return "", false
	}

	if n.getter != nil {
		return n.getter.Color(n.nodes[nodeID], nodeID), true
	}
	if n.rendering == nil {
		return "", false
	}
	r, ok := n.rendering[nodeID]
	if !ok || r.Color == "" {
		return "", false
	}
	return r.Color, true
}

// GetVisualGetters resolves every definition of state against the merged data of
// all items. Node getters are built first so edge colors can follow their endpoints.
func GetVisualGetters(dataset *model.GraphDataset, state State, nodes, edges map[string]itemdata.Merged) VisualGetters {
	var g VisualGetters

	g.NodeSize = MakeGetNumberAttr(state.NodesSize, maps.All(nodes))
	g.NodeColor = MakeGetColor(state.NodesColor, state.NodesShadingColor, maps.All(nodes), ColorContext{
		Rendered: func(id string) (string, bool) {
			r, ok := dataset.NodeRenderingData[id]
			return r.Color, ok
		},
	})
	g.NodeLabel = MakeGetStringAttr(state.NodesLabel)
	g.NodeImage = MakeGetStringAttr(state.NodesImage)

	g.EdgeSize = MakeGetNumberAttr(state.EdgesSize, maps.All(edges))

	adjacent := &nodeColors{
		topology: dataset.FullGraph,
		getter:   g.NodeColor,
		nodes:    nodes,
	}
	if _, ok := state.NodesColor.(DataColor); ok {
		adjacent.rendering = dataset.NodeRenderingData
	}
	g.EdgeColor = MakeGetColor(state.EdgesColor, state.EdgesShadingColor, maps.All(edges), ColorContext{
		Adjacent: adjacent,
		Rendered: func(id string) (string, bool) {
			r, ok := dataset.EdgeRenderingData[id]
			return r.Color, ok
		},
	})
	g.EdgeLabel = MakeGetStringAttr(state.EdgesLabel)
	g.EdgeZIndex = MakeGetNumberAttr(state.EdgesZIndex, maps.All(edges))

	logging.Debug("resolved visual getters",
		"nodes", len(nodes),
		"edges", len(edges),
		"nodeColor", typeName(state.NodesColor),
		"edgeColor", typeName(state.EdgesColor),
		"nodeSize", typeName(state.NodesSize),
		"edgeSize", typeName(state.EdgesSize))

	return g
}

type typed interface{ Type() string }

func typeName(def typed) string {
	if def == nil {
		return "none"
	}
	return def.Type()
}
