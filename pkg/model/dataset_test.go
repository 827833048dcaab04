package model

import (
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func buildDataset(t *testing.T) *GraphDataset {
	t.Helper()
	d := NewGraphDataset(GraphDirected)

	for _, id := range []string{"a", "b", "c"} {
		if err := d.AddNode(id, ItemData{"name": id}, NodeRenderingData{Label: strPtr(id), Size: 5}); err != nil {
			t.Fatalf("AddNode(%s) error = %v", id, err)
		}
	}
	if err := d.AddEdge("ab", "a", "b", nil, EdgeRenderingData{Weight: 1}); err != nil {
		t.Fatalf("AddEdge(ab) error = %v", err)
	}
	if err := d.AddEdge("bc", "b", "c", ItemData{"kind": "x"}, EdgeRenderingData{Weight: 1}); err != nil {
		t.Fatalf("AddEdge(bc) error = %v", err)
	}
	return d
}

func TestStaticDynamicAttributeKey(t *testing.T) {
	static := StaticDynamicAttributeKey(ItemDataField{Field: "degree", Dynamic: false})
	dynamic := StaticDynamicAttributeKey(ItemDataField{Field: "degree", Dynamic: true})

	if static == dynamic {
		t.Errorf("static and dynamic keys collide: %q", static)
	}
	if static != "static.degree" || dynamic != "dynamic.degree" {
		t.Errorf("unexpected keys %q and %q", static, dynamic)
	}
}

func TestValidScalar(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, true},
		{"bool", true, true},
		{"number", 3.5, true},
		{"string", "x", true},
		{"int is not a stored number type", 3, false},
		{"nested map", map[string]any{}, false},
		{"slice", []string{"a"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidScalar(tt.value); got != tt.want {
				t.Errorf("ValidScalar(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestAddNodeRejectsDuplicatesAndNestedValues(t *testing.T) {
	d := buildDataset(t)

	if err := d.AddNode("a", nil, NodeRenderingData{}); !errors.Is(err, ErrDuplicateItem) {
		t.Errorf("AddNode(duplicate) error = %v, want ErrDuplicateItem", err)
	}
	if err := d.AddNode("z", ItemData{"bad": []any{1}}, NodeRenderingData{}); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("AddNode(nested) error = %v, want ErrInvalidValue", err)
	}
	if d.FullGraph.HasNode("z") {
		t.Error("rejected node must not reach the topology")
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestAddEdgeRequiresEndpoints(t *testing.T) {
	d := buildDataset(t)

	if err := d.AddEdge("ax", "a", "x", nil, EdgeRenderingData{}); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("AddEdge(unknown target) error = %v, want ErrUnknownItem", err)
	}
	if _, ok := d.EdgeData["ax"]; ok {
		t.Error("rejected edge must not reach the data store")
	}
	if d.EdgeData["ab"] == nil {
		t.Error("nil data should be stored as an empty map")
	}
}

func TestDropNodeKeepsStoresInLockstep(t *testing.T) {
	d := buildDataset(t)

	if err := d.DropNode("b"); err != nil {
		t.Fatalf("DropNode(b) error = %v", err)
	}

	if len(d.EdgeData) != 0 || len(d.EdgeRenderingData) != 0 {
		t.Errorf("incident edges should be dropped from every store, got data=%v rendering=%v", d.EdgeData, d.EdgeRenderingData)
	}
	if _, ok := d.NodeData["b"]; ok {
		t.Error("node data for b should be gone")
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if err := d.DropNode("b"); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("second DropNode error = %v, want ErrUnknownItem", err)
	}
}

func TestDropEdge(t *testing.T) {
	d := buildDataset(t)

	if err := d.DropEdge("ab"); err != nil {
		t.Fatalf("DropEdge(ab) error = %v", err)
	}
	if d.FullGraph.HasEdge("ab") {
		t.Error("edge ab should be gone from the topology")
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSetFieldValues(t *testing.T) {
	d := buildDataset(t)
	field := FieldModel{ID: "pagerank", ItemType: Nodes, Quantitative: &QuantitativeField{}}

	err := d.SetFieldValues(field, map[string]Scalar{"a": 0.5, "b": 0.25})
	if err != nil {
		t.Fatalf("SetFieldValues() error = %v", err)
	}

	if got := d.NodeData["a"]["pagerank"]; got != 0.5 {
		t.Errorf("pagerank(a) = %v, want 0.5", got)
	}
	if _, ok := d.NodeData["c"]["pagerank"]; ok {
		t.Error("items without a value should read back as undefined")
	}
	if _, ok := d.Field(Nodes, "pagerank"); !ok {
		t.Error("field model should be registered")
	}

	// Upsert replaces the model instead of appending a duplicate
	field.Qualitative = &QualitativeField{}
	if err := d.SetFieldValues(field, nil); err != nil {
		t.Fatalf("SetFieldValues(upsert) error = %v", err)
	}
	if len(d.NodeFields) != 1 || d.NodeFields[0].Qualitative == nil {
		t.Errorf("expected one dual-typed field, got %+v", d.NodeFields)
	}

	if err := d.SetFieldValues(field, map[string]Scalar{"zzz": 1.0}); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("SetFieldValues(unknown item) error = %v, want ErrUnknownItem", err)
	}
	if err := d.SetFieldValues(FieldModel{ID: "x"}, nil); !errors.Is(err, ErrItemType) {
		t.Errorf("SetFieldValues(no item type) error = %v, want ErrItemType", err)
	}
}

func TestValidateDetectsDrift(t *testing.T) {
	d := buildDataset(t)
	delete(d.NodeRenderingData, "a")

	if err := d.Validate(); err == nil {
		t.Error("Validate() should report the missing rendering data")
	}
}
