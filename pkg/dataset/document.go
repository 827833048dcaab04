// Package dataset reads and writes the engine's JSON documents: graph
// datasets and saved appearance states.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ritzau/appearance-engine/pkg/appearance"
	"github.com/ritzau/appearance-engine/pkg/logging"
	"github.com/ritzau/appearance-engine/pkg/model"
)

// ErrMissingID is returned for nodes without an id
var ErrMissingID = errors.New("node has no id")

// Document is the on-disk form of a dataset
type Document struct {
	Metadata   model.Metadata     `json:"metadata"`
	NodeFields []model.FieldModel `json:"nodeFields,omitempty"` // Inferred from attributes when empty
	EdgeFields []model.FieldModel `json:"edgeFields,omitempty"`
	Nodes      []NodeEntry        `json:"nodes"`
	Edges      []EdgeEntry        `json:"edges"`
}

// NodeEntry is one node with its attributes and rendering data
type NodeEntry struct {
	ID         string         `json:"id"`
	Attributes model.ItemData `json:"attributes,omitempty"`
	model.NodeRenderingData
}

// EdgeEntry is one edge. Directed overrides the graph type in mixed graphs.
// Edges without an id get a generated one.
type EdgeEntry struct {
	ID         string         `json:"id,omitempty"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Directed   *bool          `json:"directed,omitempty"`
	Attributes model.ItemData `json:"attributes,omitempty"`
	model.EdgeRenderingData
}

// LoadDataset reads a dataset document from disk
func LoadDataset(path string) (*model.GraphDataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	d, err := DecodeDataset(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logging.Info("loaded dataset",
		"path", path,
		"nodes", d.FullGraph.Order(),
		"edges", d.FullGraph.Size())
	return d, nil
}

// DecodeDataset builds a dataset from a JSON document. Items are added through
// the dataset mutations so the stores end up in lockstep or not at all.
func DecodeDataset(data []byte) (*model.GraphDataset, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}
	return doc.Build()
}

// Build turns the document into a dataset
func (doc *Document) Build() (*model.GraphDataset, error) {
	graphType := doc.Metadata.Type
	switch graphType {
	case model.GraphDirected, model.GraphUndirected, model.GraphMixed:
	case "":
		graphType = model.GraphMixed
	default:
		return nil, fmt.Errorf("unknown graph type %q", graphType)
	}

	d := model.NewGraphDataset(graphType)
	d.Metadata.Title = doc.Metadata.Title

	for i, n := range doc.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node #%d: %w", i, ErrMissingID)
		}
		if err := d.AddNode(n.ID, n.Attributes, n.NodeRenderingData); err != nil {
			return nil, err
		}
	}

	for _, e := range doc.Edges {
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		if err := d.AddEdge(id, e.Source, e.Target, e.Attributes, e.EdgeRenderingData); err != nil {
			return nil, err
		}
		if e.Directed != nil && graphType == model.GraphMixed {
			if err := d.SetEdgeDirected(id, *e.Directed); err != nil {
				return nil, err
			}
		}
	}

	d.NodeFields = doc.NodeFields
	if len(d.NodeFields) == 0 {
		d.NodeFields = InferFields(model.Nodes, d.NodeData)
	}
	d.EdgeFields = doc.EdgeFields
	if len(d.EdgeFields) == 0 {
		d.EdgeFields = InferFields(model.Edges, d.EdgeData)
	}
	return d, nil
}

// InferFields derives a field catalog from attribute values: a field seen
// with numbers is quantitative, with strings or booleans qualitative, and
// with both it is dual-typed. Fields are sorted by id.
func InferFields(itemType model.ItemType, data map[string]model.ItemData) []model.FieldModel {
	type kinds struct{ numeric, text bool }
	seen := make(map[string]*kinds)

	for _, item := range data {
		for key, v := range item {
			k, ok := seen[key]
			if !ok {
				k = &kinds{}
				seen[key] = k
			}
			switch v.(type) {
			case float64:
				k.numeric = true
			case string, bool:
				k.text = true
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	fields := make([]model.FieldModel, 0, len(ids))
	for _, id := range ids {
		f := model.FieldModel{ID: id, ItemType: itemType}
		if seen[id].numeric {
			f.Quantitative = &model.QuantitativeField{}
		}
		if seen[id].text {
			f.Qualitative = &model.QualitativeField{}
		}
		fields = append(fields, f)
	}
	return fields
}

// LoadAppearance reads an appearance document. Missing keys keep their defaults.
func LoadAppearance(path string) (appearance.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return appearance.State{}, fmt.Errorf("reading appearance: %w", err)
	}

	state, err := appearance.DecodeState(data)
	if err != nil {
		return appearance.State{}, fmt.Errorf("%s: %w", path, err)
	}
	return state, nil
}

// SaveAppearance writes an appearance document, replacing the file atomically
func SaveAppearance(path string, state appearance.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding appearance: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing appearance: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing appearance: %w", err)
	}

	logging.Debug("saved appearance", "path", path)
	return nil
}
