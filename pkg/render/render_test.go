package render

import (
	"reflect"
	"testing"

	"github.com/ritzau/appearance-engine/pkg/appearance"
	"github.com/ritzau/appearance-engine/pkg/itemdata"
	"github.com/ritzau/appearance-engine/pkg/model"
)

func strPtr(s string) *string { return &s }

type fixture struct {
	dataset *model.GraphDataset
	nodes   map[string]itemdata.Merged
	edges   map[string]itemdata.Merged
}

// newFixture builds a -> b -> c with a weight field on nodes
func newFixture(t *testing.T) fixture {
	t.Helper()
	d := model.NewGraphDataset(model.GraphDirected)

	weights := map[string]float64{"a": 1, "b": 5, "c": 10}
	for _, id := range []string{"a", "b", "c"} {
		err := d.AddNode(id, model.ItemData{"weight": weights[id], "kind": "k" + id},
			model.NodeRenderingData{Label: strPtr(id), Color: "#000000", Size: 3})
		if err != nil {
			t.Fatalf("AddNode(%s) error = %v", id, err)
		}
	}
	for _, e := range [][3]string{{"ab", "a", "b"}, {"bc", "b", "c"}} {
		if err := d.AddEdge(e[0], e[1], e[2], model.ItemData{"w": 2.0}, model.EdgeRenderingData{Color: "#eeeeee", Weight: 1}); err != nil {
			t.Fatalf("AddEdge(%s) error = %v", e[0], err)
		}
	}

	return fixture{
		dataset: d,
		nodes:   itemdata.Merge(d.NodeData, itemdata.ComputeDynamicData(model.Nodes, d.FullGraph)),
		edges:   itemdata.Merge(d.EdgeData, itemdata.ComputeDynamicData(model.Edges, d.FullGraph)),
	}
}

func (f fixture) getters(state appearance.State) appearance.VisualGetters {
	return appearance.GetVisualGetters(f.dataset, state, f.nodes, f.edges)
}

func rankingState() appearance.State {
	state := appearance.DefaultAppearance()
	state.NodesSize = appearance.RankingSize{
		Field:       model.ItemDataField{Field: "weight"},
		MinSize:     2,
		MaxSize:     20,
		MissingSize: 1,
	}
	state.NodesColor = appearance.FixedColor{Value: "#112233"}
	state.EdgesColor = appearance.SourceColor{}
	state.NodesLabel = appearance.FieldStringAttr{Field: model.ItemDataField{Field: "kind"}}
	state.EdgesZIndex = appearance.FieldIndex{Field: model.ItemDataField{Field: "w"}}
	return state
}

func TestApplyVisualGetters(t *testing.T) {
	f := newFixture(t)
	g := NewGraph(f.dataset, nil)

	ApplyVisualGetters(g, f.nodes, f.edges, f.getters(rankingState()))

	wantSizes := map[string]float64{"a": 2, "b": 10, "c": 20}
	for id, want := range wantSizes {
		n, _ := g.Node(id)
		if n.Size != want || n.RawSize != want {
			t.Errorf("node %s size = %v raw = %v, want %v", id, n.Size, n.RawSize, want)
		}
		if n.Color != "#112233" {
			t.Errorf("node %s color = %q", id, n.Color)
		}
		if n.Label == nil || *n.Label != "k"+id {
			t.Errorf("node %s label = %v", id, n.Label)
		}
	}

	e, _ := g.Edge("ab")
	if e.Color != "#112233" {
		t.Errorf("edge ab color = %q, want the source node color #112233", e.Color)
	}
	if e.Weight != 1 {
		t.Errorf("edge weight = %v, data size definition should leave it untouched", e.Weight)
	}
	if e.ZIndex != appearance.MinZIndex {
		t.Errorf("edge zIndex = %v, want %v for a degenerate domain", e.ZIndex, appearance.MinZIndex)
	}
}

func TestSourceColorFallsBackWithoutNodeGetter(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		nodesColor appearance.ColorDefinition
		want       string
	}{
		{"data color copies the node rendering color", appearance.DataColor{}, "#000000"},
		{"missing node definition uses the default", nil, appearance.DefaultEdgeColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := appearance.DefaultAppearance()
			state.NodesColor = tt.nodesColor
			state.EdgesColor = appearance.SourceColor{}

			g := NewGraph(f.dataset, nil)
			ApplyVisualGetters(g, f.nodes, f.edges, f.getters(state))

			if e, _ := g.Edge("ab"); e.Color != tt.want {
				t.Errorf("edge ab color = %q, want %q", e.Color, tt.want)
			}
		})
	}
}

func TestApplyVisualGettersIsIdempotent(t *testing.T) {
	f := newFixture(t)
	state := rankingState()
	state.NodesShadingColor = &appearance.Shading{
		Field:       model.ItemDataField{Field: "degree", Dynamic: true},
		Factor:      0.5,
		TargetColor: "#ffffff",
	}
	getters := f.getters(state)

	g := NewGraph(f.dataset, nil)
	ApplyVisualGetters(g, f.nodes, f.edges, getters)
	once := g.Data()

	ApplyVisualGetters(g, f.nodes, f.edges, getters)
	twice := g.Data()

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second pass changed the store:\n once %+v\ntwice %+v", once, twice)
	}
}

func TestApplyVisualGettersNilGettersAreNoOps(t *testing.T) {
	f := newFixture(t)
	g := NewGraph(f.dataset, nil)
	before := g.Data()

	ApplyVisualGetters(g, f.nodes, f.edges, appearance.VisualGetters{})

	if !reflect.DeepEqual(before, g.Data()) {
		t.Error("nil getters must leave every attribute untouched")
	}
}

func TestNewGraphFollowsFilteredView(t *testing.T) {
	f := newFixture(t)
	filtered := f.dataset.FullGraph.Induced(func(id string) bool { return id != "c" })

	g := NewGraph(f.dataset, filtered)
	if g.Order() != 2 || g.Size() != 1 {
		t.Errorf("store has %d nodes and %d edges, want 2 and 1", g.Order(), g.Size())
	}
	if _, ok := g.Node("c"); ok {
		t.Error("filtered out node c should not be in the store")
	}
	if n, _ := g.Node("a"); n.RawSize != 3 {
		t.Errorf("raw size should be seeded from size, got %v", n.RawSize)
	}
}

func TestGetItemAttributes(t *testing.T) {
	f := newFixture(t)
	getters := f.getters(rankingState())
	filtered := f.dataset.FullGraph.Induced(func(id string) bool { return id != "c" })

	tests := []struct {
		name     string
		itemType model.ItemType
		id       string
		want     ItemAttributes
	}{
		{
			name:     "visible node",
			itemType: model.Nodes,
			id:       "a",
			want:     ItemAttributes{Label: strPtr("ka"), Color: "#112233", Directed: true},
		},
		{
			name:     "filtered node",
			itemType: model.Nodes,
			id:       "c",
			want:     ItemAttributes{Label: strPtr("kc"), Color: "#112233", Hidden: true, Directed: true},
		},
		{
			name:     "filtered edge inherits source color",
			itemType: model.Edges,
			id:       "bc",
			want:     ItemAttributes{Color: "#112233", Hidden: true, Directed: true},
		},
		{
			name:     "unknown node",
			itemType: model.Nodes,
			id:       "zzz",
			want:     ItemAttributes{Color: appearance.DefaultNodeColor, Hidden: true, Ghost: true},
		},
		{
			name:     "unknown edge",
			itemType: model.Edges,
			id:       "zzz",
			want:     ItemAttributes{Color: appearance.DefaultEdgeColor, Hidden: true, Ghost: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := f.nodes
			if tt.itemType == model.Edges {
				merged = f.edges
			}
			got := GetItemAttributes(tt.itemType, tt.id, filtered, merged, f.dataset, getters)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GetItemAttributes() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetItemAttributesFallsBackToRenderingData(t *testing.T) {
	f := newFixture(t)

	got := GetItemAttributes(model.Nodes, "b", nil, f.nodes, f.dataset, appearance.VisualGetters{})
	if got.Color != "#000000" || got.Label == nil || *got.Label != "b" || got.Hidden {
		t.Errorf("GetItemAttributes() = %+v, want the rendering data of b", got)
	}
}

func TestComputeDiff(t *testing.T) {
	f := newFixture(t)
	g := NewGraph(f.dataset, nil)

	full := ComputeDiff(nil, g.Data())
	if !full.FullGraph || len(full.AddedNodes) != 3 || len(full.AddedEdges) != 2 {
		t.Fatalf("diff without snapshot = %+v, want the full store", full)
	}

	snapshot := CreateSnapshot(g.Data())
	if diff := ComputeDiff(snapshot, g.Data()); !diff.Empty() {
		t.Errorf("diff against identical state = %+v, want empty", diff)
	}

	ApplyVisualGetters(g, f.nodes, f.edges, f.getters(rankingState()))
	diff := ComputeDiff(snapshot, g.Data())
	if len(diff.ModifiedNodes) != 3 || len(diff.ModifiedEdges) != 2 {
		t.Errorf("expected every item modified, got %d nodes and %d edges", len(diff.ModifiedNodes), len(diff.ModifiedEdges))
	}

	smaller := NewGraph(f.dataset, f.dataset.FullGraph.Induced(func(id string) bool { return id != "a" }))
	diff = ComputeDiff(CreateSnapshot(g.Data()), smaller.Data())
	if !reflect.DeepEqual(diff.RemovedNodes, []string{"a"}) || !reflect.DeepEqual(diff.RemovedEdges, []string{"ab"}) {
		t.Errorf("removed = %v / %v, want [a] / [ab]", diff.RemovedNodes, diff.RemovedEdges)
	}
}

func TestCreateSnapshotHashIsStable(t *testing.T) {
	f := newFixture(t)
	g := NewGraph(f.dataset, nil)

	a, b := CreateSnapshot(g.Data()), CreateSnapshot(g.Data())
	if a.Hash == "" || a.Hash != b.Hash {
		t.Errorf("hashes %q and %q should be equal and non-empty", a.Hash, b.Hash)
	}
}
