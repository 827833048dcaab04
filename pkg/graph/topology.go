package graph

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
)

// edgeEnds records the endpoints of an edge together with the gonum line that backs it
type edgeEnds struct {
	source   string
	target   string
	directed bool
	line     graph.Line
}

// Topology is a topology-only graph: node and edge identifiers plus adjacency,
// with no attribute payload. Parallel edges and self loops are allowed.
type Topology struct {
	graph  *multi.DirectedGraph
	ids    map[string]int64 // Map from node id to gonum ID
	names  map[int64]string // Map from gonum ID back to node id
	edges  map[string]edgeEnds
	nextID int64
}

// NewTopology creates an empty topology
func NewTopology() *Topology {
	return &Topology{
		graph: multi.NewDirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
		edges: make(map[string]edgeEnds),
	}
}

// AddNode adds a node. Adding an existing node is a no-op.
func (t *Topology) AddNode(id string) {
	if _, exists := t.ids[id]; exists {
		return
	}

	t.ids[id] = t.nextID
	t.names[t.nextID] = id
	t.graph.AddNode(multi.Node(t.nextID))
	t.nextID++
}

// AddEdge adds an edge with an explicit id between two existing nodes
func (t *Topology) AddEdge(id, source, target string, directed bool) error {
	if _, exists := t.edges[id]; exists {
		return fmt.Errorf("edge %q already exists", id)
	}
	sourceID, ok := t.ids[source]
	if !ok {
		return fmt.Errorf("edge %q: unknown source node %q", id, source)
	}
	targetID, ok := t.ids[target]
	if !ok {
		return fmt.Errorf("edge %q: unknown target node %q", id, target)
	}

	line := t.graph.NewLine(t.graph.Node(sourceID), t.graph.Node(targetID))
	t.graph.SetLine(line)

	t.edges[id] = edgeEnds{
		source:   source,
		target:   target,
		directed: directed,
		line:     line,
	}
	return nil
}

// DropEdge removes an edge. Returns false if the edge did not exist.
func (t *Topology) DropEdge(id string) bool {
	ends, exists := t.edges[id]
	if !exists {
		return false
	}

	t.graph.RemoveLine(ends.line.From().ID(), ends.line.To().ID(), ends.line.ID())
	delete(t.edges, id)
	return true
}

// DropNode removes a node and every incident edge.
// Returns the ids of the dropped edges so callers can keep their stores in lockstep.
func (t *Topology) DropNode(id string) []string {
	nodeID, exists := t.ids[id]
	if !exists {
		return nil
	}

	var dropped []string
	for edgeID, ends := range t.edges {
		if ends.source == id || ends.target == id {
			dropped = append(dropped, edgeID)
			delete(t.edges, edgeID)
		}
	}
	sort.Strings(dropped)

	// Removing the node also removes its lines from the gonum graph
	t.graph.RemoveNode(nodeID)
	delete(t.ids, id)
	delete(t.names, nodeID)

	return dropped
}

// HasNode reports whether the node exists
func (t *Topology) HasNode(id string) bool {
	_, exists := t.ids[id]
	return exists
}

// HasEdge reports whether the edge exists
func (t *Topology) HasEdge(id string) bool {
	_, exists := t.edges[id]
	return exists
}

// Source returns the source node of an edge
func (t *Topology) Source(edgeID string) (string, bool) {
	ends, exists := t.edges[edgeID]
	return ends.source, exists
}

// Target returns the target node of an edge
func (t *Topology) Target(edgeID string) (string, bool) {
	ends, exists := t.edges[edgeID]
	return ends.target, exists
}

// IsDirected reports whether the edge was added as a directed edge
func (t *Topology) IsDirected(edgeID string) bool {
	return t.edges[edgeID].directed
}

// OutDegree returns the number of edges leaving the node
func (t *Topology) OutDegree(id string) int {
	nodeID, exists := t.ids[id]
	if !exists {
		return 0
	}

	count := 0
	to := t.graph.From(nodeID)
	for to.Next() {
		count += t.graph.Lines(nodeID, to.Node().ID()).Len()
	}
	return count
}

// InDegree returns the number of edges entering the node
func (t *Topology) InDegree(id string) int {
	nodeID, exists := t.ids[id]
	if !exists {
		return 0
	}

	count := 0
	from := t.graph.To(nodeID)
	for from.Next() {
		count += t.graph.Lines(from.Node().ID(), nodeID).Len()
	}
	return count
}

// Degree returns the number of incident edges. Self loops count twice.
func (t *Topology) Degree(id string) int {
	return t.InDegree(id) + t.OutDegree(id)
}

// Neighbors returns the sorted ids of nodes adjacent to the node in either direction
func (t *Topology) Neighbors(id string) []string {
	nodeID, exists := t.ids[id]
	if !exists {
		return nil
	}

	seen := make(map[string]bool)
	for _, iter := range []graph.Nodes{t.graph.From(nodeID), t.graph.To(nodeID)} {
		for iter.Next() {
			seen[t.names[iter.Node().ID()]] = true
		}
	}

	neighbors := make([]string, 0, len(seen))
	for name := range seen {
		neighbors = append(neighbors, name)
	}
	sort.Strings(neighbors)
	return neighbors
}

// Nodes returns all node ids in sorted order
func (t *Topology) Nodes() []string {
	nodes := make([]string, 0, len(t.ids))
	for id := range t.ids {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)
	return nodes
}

// Edges returns all edge ids in sorted order
func (t *Topology) Edges() []string {
	edges := make([]string, 0, len(t.edges))
	for id := range t.edges {
		edges = append(edges, id)
	}
	sort.Strings(edges)
	return edges
}

// Order returns the number of nodes
func (t *Topology) Order() int {
	return len(t.ids)
}

// Size returns the number of edges
func (t *Topology) Size() int {
	return len(t.edges)
}

// Copy returns an independent copy of the topology
func (t *Topology) Copy() *Topology {
	return t.Induced(func(string) bool { return true })
}

// Induced returns the subgraph made of the nodes accepted by keep and every
// edge whose two endpoints are kept. This is how filtered views are built.
func (t *Topology) Induced(keep func(nodeID string) bool) *Topology {
	sub := NewTopology()
	for _, id := range t.Nodes() {
		if keep(id) {
			sub.AddNode(id)
		}
	}

	for _, id := range t.Edges() {
		ends := t.edges[id]
		if sub.HasNode(ends.source) && sub.HasNode(ends.target) {
			// Both endpoints exist and the id is fresh, so this cannot fail
			_ = sub.AddEdge(id, ends.source, ends.target, ends.directed)
		}
	}

	return sub
}

// WithoutEdges returns a copy of the topology keeping every node and dropping the edges matched by drop
func (t *Topology) WithoutEdges(drop func(edgeID string) bool) *Topology {
	sub := NewTopology()
	for _, id := range t.Nodes() {
		sub.AddNode(id)
	}
	for _, id := range t.Edges() {
		if drop(id) {
			continue
		}
		ends := t.edges[id]
		_ = sub.AddEdge(id, ends.source, ends.target, ends.directed)
	}
	return sub
}

// Graph returns the underlying gonum multigraph
func (t *Topology) Graph() *multi.DirectedGraph {
	return t.graph
}

// Distances runs a breadth-first search from sources, ignoring edge
// direction, and returns the hop count of every node reached within
// maxDepth. A negative maxDepth means no limit. Unknown sources are skipped.
func (t *Topology) Distances(sources []string, maxDepth int) map[string]int {
	distances := make(map[string]int, len(sources))
	queue := make([]string, 0, len(sources))
	for _, id := range sources {
		if _, ok := t.ids[id]; !ok {
			continue
		}
		if _, seen := distances[id]; !seen {
			distances[id] = 0
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		d := distances[current]
		if maxDepth >= 0 && d >= maxDepth {
			continue
		}
		for _, next := range t.Neighbors(current) {
			if _, seen := distances[next]; !seen {
				distances[next] = d + 1
				queue = append(queue, next)
			}
		}
	}
	return distances
}
