package render

import (
	"github.com/ritzau/appearance-engine/pkg/graph"
	"github.com/ritzau/appearance-engine/pkg/model"
)

// EdgeAttributes is the rendering record of an edge
type EdgeAttributes struct {
	model.EdgeRenderingData
	ZIndex float64 `json:"zIndex"`
}

// Graph is the live rendering store read by the canvas renderer.
// It holds one attribute record per item of the filtered view.
// The appearance engine is its only writer.
type Graph struct {
	topology *graph.Topology
	nodes    map[string]model.NodeRenderingData
	edges    map[string]EdgeAttributes
}

// NewGraph seeds a rendering store from the dataset's rendering data for the
// items of filtered. A nil filtered view means the full graph.
func NewGraph(dataset *model.GraphDataset, filtered *graph.Topology) *Graph {
	if filtered == nil {
		filtered = dataset.FullGraph
	}

	g := &Graph{
		topology: filtered,
		nodes:    make(map[string]model.NodeRenderingData, filtered.Order()),
		edges:    make(map[string]EdgeAttributes, filtered.Size()),
	}

	for _, id := range filtered.Nodes() {
		r, ok := dataset.NodeRenderingData[id]
		if !ok {
			continue
		}
		if r.RawSize == 0 {
			r.RawSize = r.Size
		}
		g.nodes[id] = r
	}
	for _, id := range filtered.Edges() {
		r, ok := dataset.EdgeRenderingData[id]
		if !ok {
			continue
		}
		if r.RawWeight == 0 {
			r.RawWeight = r.Weight
		}
		g.edges[id] = EdgeAttributes{EdgeRenderingData: r}
	}
	return g
}

// Topology returns the filtered view the store was seeded from
func (g *Graph) Topology() *graph.Topology {
	return g.topology
}

// Node returns the attributes of a node
func (g *Graph) Node(id string) (model.NodeRenderingData, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the attributes of an edge
func (g *Graph) Edge(id string) (EdgeAttributes, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Order returns the number of nodes in the store
func (g *Graph) Order() int {
	return len(g.nodes)
}

// Size returns the number of edges in the store
func (g *Graph) Size() int {
	return len(g.edges)
}

// Node is the serialized form of a node record
type Node struct {
	ID string `json:"id"`
	model.NodeRenderingData
}

// Edge is the serialized form of an edge record
type Edge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Directed bool   `json:"directed"`
	EdgeAttributes
}

// Data is a point-in-time copy of the store, ordered by id
type Data struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Data copies the store into its serialized form
func (g *Graph) Data() *Data {
	data := &Data{
		Nodes: make([]Node, 0, len(g.nodes)),
		Edges: make([]Edge, 0, len(g.edges)),
	}
	for _, id := range g.topology.Nodes() {
		if n, ok := g.nodes[id]; ok {
			data.Nodes = append(data.Nodes, Node{ID: id, NodeRenderingData: n})
		}
	}
	for _, id := range g.topology.Edges() {
		e, ok := g.edges[id]
		if !ok {
			continue
		}
		source, _ := g.topology.Source(id)
		target, _ := g.topology.Target(id)
		data.Edges = append(data.Edges, Edge{
			ID:             id,
			Source:         source,
			Target:         target,
			Directed:       g.topology.IsDirected(id),
			EdgeAttributes: e,
		})
	}
	return data
}
