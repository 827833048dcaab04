package engine

import "github.com/ritzau/appearance-engine/pkg/graph"

// Filter selects the visible part of the graph. It stands in for the
// filtering engine, which only ever hands over a reduced topology.
// Steps apply in order: node list, focus neighborhood, edge list.
type Filter struct {
	Nodes []string `json:"nodes,omitempty"` // Visible nodes, nil for all
	Focus []string `json:"focus,omitempty"` // Keep only nodes near these
	Depth int      `json:"depth,omitempty"` // Hops around Focus, ignoring direction
	Edges []string `json:"edges,omitempty"` // Visible edges among visible nodes, nil for all
}

// Apply builds the filtered view of full. Unknown ids are ignored.
func (f *Filter) Apply(full *graph.Topology) *graph.Topology {
	if f == nil || (f.Nodes == nil && f.Focus == nil && f.Edges == nil) {
		return full.Copy()
	}

	view := full
	if f.Nodes != nil {
		keep := toSet(f.Nodes)
		view = view.Induced(func(id string) bool { return keep[id] })
	}
	if f.Focus != nil {
		near := view.Distances(f.Focus, max(f.Depth, 0))
		view = view.Induced(func(id string) bool {
			_, ok := near[id]
			return ok
		})
	}
	if f.Edges != nil {
		keep := toSet(f.Edges)
		view = view.WithoutEdges(func(id string) bool { return !keep[id] })
	}
	return view
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
