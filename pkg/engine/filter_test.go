package engine

import (
	"reflect"
	"testing"

	"github.com/ritzau/appearance-engine/pkg/graph"
)

// chain returns a -> b -> c -> d
func chain(t *testing.T) *graph.Topology {
	t.Helper()
	topo := graph.NewTopology()
	for _, id := range []string{"a", "b", "c", "d"} {
		topo.AddNode(id)
	}
	for _, e := range [][3]string{{"ab", "a", "b"}, {"bc", "b", "c"}, {"cd", "c", "d"}} {
		if err := topo.AddEdge(e[0], e[1], e[2], true); err != nil {
			t.Fatalf("AddEdge(%s) error = %v", e[0], err)
		}
	}
	return topo
}

func TestFilterApply(t *testing.T) {
	tests := []struct {
		name      string
		filter    *Filter
		wantNodes []string
		wantEdges []string
	}{
		{
			name:      "nil shows everything",
			filter:    nil,
			wantNodes: []string{"a", "b", "c", "d"},
			wantEdges: []string{"ab", "bc", "cd"},
		},
		{
			name:      "node list induces edges",
			filter:    &Filter{Nodes: []string{"a", "b", "d", "zz"}},
			wantNodes: []string{"a", "b", "d"},
			wantEdges: []string{"ab"},
		},
		{
			name:      "focus neighborhood",
			filter:    &Filter{Focus: []string{"c"}, Depth: 1},
			wantNodes: []string{"b", "c", "d"},
			wantEdges: []string{"bc", "cd"},
		},
		{
			name:      "focus within node list",
			filter:    &Filter{Nodes: []string{"a", "c", "d"}, Focus: []string{"a"}, Depth: 5},
			wantNodes: []string{"a"},
			wantEdges: []string{},
		},
		{
			name:      "edge list",
			filter:    &Filter{Edges: []string{"bc"}},
			wantNodes: []string{"a", "b", "c", "d"},
			wantEdges: []string{"bc"},
		},
		{
			name:      "empty edge list hides every edge",
			filter:    &Filter{Edges: []string{}},
			wantNodes: []string{"a", "b", "c", "d"},
			wantEdges: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full := chain(t)
			view := tt.filter.Apply(full)

			if got := view.Nodes(); !reflect.DeepEqual(got, tt.wantNodes) {
				t.Errorf("Nodes() = %v, want %v", got, tt.wantNodes)
			}
			if got := view.Edges(); !reflect.DeepEqual(got, tt.wantEdges) {
				t.Errorf("Edges() = %v, want %v", got, tt.wantEdges)
			}
			if view == full {
				t.Error("Apply() must not return the full topology itself")
			}
		})
	}
}
