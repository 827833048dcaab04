package itemdata

import (
	"maps"
	"testing"

	"github.com/ritzau/appearance-engine/pkg/graph"
	"github.com/ritzau/appearance-engine/pkg/model"
)

func starTopology(t *testing.T) *graph.Topology {
	t.Helper()
	g := graph.NewTopology()
	for _, id := range []string{"hub", "a", "b", "c"} {
		g.AddNode(id)
	}
	for _, leaf := range []string{"a", "b", "c"} {
		if err := g.AddEdge("hub-"+leaf, "hub", leaf, true); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestComputeDynamicDataDegree(t *testing.T) {
	g := starTopology(t)

	data := ComputeDynamicData(model.Nodes, g)

	if len(data) != 4 {
		t.Fatalf("expected an entry per node, got %d", len(data))
	}
	if got := data["hub"]["degree"]; got != 3.0 {
		t.Errorf("degree(hub) = %v, want 3", got)
	}
	if got := data["a"]["degree"]; got != 1.0 {
		t.Errorf("degree(a) = %v, want 1", got)
	}
}

func TestComputeDynamicDataRecomputesAfterTopologyChange(t *testing.T) {
	g := starTopology(t)
	before := ComputeDynamicData(model.Nodes, g)

	g.DropEdge("hub-a")
	after := ComputeDynamicData(model.Nodes, g)

	if before["hub"]["degree"] != 3.0 {
		t.Error("earlier results must not be mutated by later passes")
	}
	if after["hub"]["degree"] != 2.0 || after["a"]["degree"] != 0.0 {
		t.Errorf("unexpected degrees after drop: hub=%v a=%v", after["hub"]["degree"], after["a"]["degree"])
	}
}

func TestComputeDynamicDataEdges(t *testing.T) {
	g := starTopology(t)

	data := ComputeDynamicData(model.Edges, g)
	if len(data) != 3 {
		t.Fatalf("expected an entry per edge, got %d", len(data))
	}
	for id, d := range data {
		if len(d) != 0 {
			t.Errorf("edge %s should have no dynamic values, got %v", id, d)
		}
	}
}

func TestDynamicFieldModels(t *testing.T) {
	models := DynamicFieldModels(model.Nodes)
	if len(models) != 1 || models[0].ID != "degree" || !models[0].Dynamic {
		t.Errorf("unexpected node dynamic fields %+v", models)
	}
	if len(DynamicFieldModels(model.Edges)) != 0 {
		t.Error("edges have no dynamic fields")
	}
}

func TestMergeKeepsStaticAndDynamicApart(t *testing.T) {
	static := map[string]model.ItemData{
		"a": {"degree": "user value"},
		"b": {},
	}
	dynamic := map[string]model.ItemData{
		"a": {"degree": 7.0},
	}

	merged := Merge(static, dynamic)

	if got := GetFieldValue(merged["a"], model.ItemDataField{Field: "degree"}); got != "user value" {
		t.Errorf("static degree = %v, want user value", got)
	}
	if got := GetFieldValue(merged["a"], model.ItemDataField{Field: "degree", Dynamic: true}); got != 7.0 {
		t.Errorf("dynamic degree = %v, want 7", got)
	}

	// b has no dynamic data: lookups must tolerate the nil half
	if merged["b"].Dynamic != nil {
		t.Error("expected nil dynamic half for b")
	}
	if _, ok := merged["b"].Value(model.ItemDataField{Field: "degree", Dynamic: true}); ok {
		t.Error("absent dynamic field should report ok=false")
	}
}

func TestVisible(t *testing.T) {
	merged := Merge(map[string]model.ItemData{"a": {}, "b": {}, "c": {}}, nil)

	got := maps.Collect(Visible(merged, func(id string) bool { return id != "b" }))
	if len(got) != 2 {
		t.Fatalf("expected 2 visible entries, got %d", len(got))
	}
	if _, ok := got["b"]; ok {
		t.Error("b should be filtered out")
	}
}
