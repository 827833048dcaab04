package model

import (
	"errors"
	"fmt"

	"github.com/ritzau/appearance-engine/pkg/graph"
)

// Lockstep violations reported by dataset mutations
var (
	ErrDuplicateItem = errors.New("item already exists")
	ErrUnknownItem   = errors.New("unknown item")
	ErrInvalidValue  = errors.New("attribute value is not a scalar")
	ErrItemType      = errors.New("unknown item type")
)

// GraphType describes the edge directedness of a dataset
type GraphType string

const (
	GraphDirected   GraphType = "directed"
	GraphUndirected GraphType = "undirected"
	GraphMixed      GraphType = "mixed"
)

// Metadata describes the dataset as a whole
type Metadata struct {
	Title string    `json:"title,omitempty"`
	Type  GraphType `json:"type"`
}

// NodeRenderingData holds the mandatory visual attributes of a node
type NodeRenderingData struct {
	Label   *string `json:"label"`
	Color   string  `json:"color,omitempty"`
	Size    float64 `json:"size,omitempty"`
	RawSize float64 `json:"rawSize,omitempty"` // Zoom-independent size used for label sizing
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Image   *string `json:"image,omitempty"`
}

// EdgeRenderingData holds the mandatory visual attributes of an edge
type EdgeRenderingData struct {
	Label     *string `json:"label"`
	Color     string  `json:"color,omitempty"`
	Weight    float64 `json:"weight,omitempty"`
	RawWeight float64 `json:"rawWeight,omitempty"`
}

// GraphDataset is the authoritative state of a loaded graph.
//
// Every node and edge of FullGraph has exactly one entry in the matching
// rendering-data and data maps. The mutation methods below keep the three
// structures in lockstep; callers must not edit the maps for ids they add or drop.
type GraphDataset struct {
	Metadata          Metadata                     `json:"metadata"`
	NodeRenderingData map[string]NodeRenderingData `json:"nodeRenderingData"`
	EdgeRenderingData map[string]EdgeRenderingData `json:"edgeRenderingData"`
	NodeData          map[string]ItemData          `json:"nodeData"`
	EdgeData          map[string]ItemData          `json:"edgeData"`
	NodeFields        []FieldModel                 `json:"nodeFields"`
	EdgeFields        []FieldModel                 `json:"edgeFields"`
	FullGraph         *graph.Topology              `json:"-"`
}

// NewGraphDataset creates an empty dataset of the given type
func NewGraphDataset(graphType GraphType) *GraphDataset {
	return &GraphDataset{
		Metadata:          Metadata{Type: graphType},
		NodeRenderingData: make(map[string]NodeRenderingData),
		EdgeRenderingData: make(map[string]EdgeRenderingData),
		NodeData:          make(map[string]ItemData),
		EdgeData:          make(map[string]ItemData),
		FullGraph:         graph.NewTopology(),
	}
}

// AddNode adds a node to the topology, rendering data and data stores at once
func (d *GraphDataset) AddNode(id string, data ItemData, rendering NodeRenderingData) error {
	if d.FullGraph.HasNode(id) {
		return fmt.Errorf("node %q: %w", id, ErrDuplicateItem)
	}
	if err := checkScalars(data); err != nil {
		return fmt.Errorf("node %q: %w", id, err)
	}

	if data == nil {
		data = ItemData{}
	}
	d.FullGraph.AddNode(id)
	d.NodeRenderingData[id] = rendering
	d.NodeData[id] = data
	return nil
}

// AddEdge adds an edge between two existing nodes to all three stores at once
func (d *GraphDataset) AddEdge(id, source, target string, data ItemData, rendering EdgeRenderingData) error {
	if d.FullGraph.HasEdge(id) {
		return fmt.Errorf("edge %q: %w", id, ErrDuplicateItem)
	}
	if !d.FullGraph.HasNode(source) {
		return fmt.Errorf("edge %q source %q: %w", id, source, ErrUnknownItem)
	}
	if !d.FullGraph.HasNode(target) {
		return fmt.Errorf("edge %q target %q: %w", id, target, ErrUnknownItem)
	}
	if err := checkScalars(data); err != nil {
		return fmt.Errorf("edge %q: %w", id, err)
	}

	directed := d.Metadata.Type != GraphUndirected
	if err := d.FullGraph.AddEdge(id, source, target, directed); err != nil {
		return fmt.Errorf("adding edge to topology: %w", err)
	}

	if data == nil {
		data = ItemData{}
	}
	d.EdgeRenderingData[id] = rendering
	d.EdgeData[id] = data
	return nil
}

// SetEdgeDirected overrides the directedness of one edge, used by mixed graphs
func (d *GraphDataset) SetEdgeDirected(id string, directed bool) error {
	source, ok := d.FullGraph.Source(id)
	if !ok {
		return fmt.Errorf("edge %q: %w", id, ErrUnknownItem)
	}
	target, _ := d.FullGraph.Target(id)
	d.FullGraph.DropEdge(id)
	return d.FullGraph.AddEdge(id, source, target, directed)
}

// DropNode removes a node and its incident edges from every store
func (d *GraphDataset) DropNode(id string) error {
	if !d.FullGraph.HasNode(id) {
		return fmt.Errorf("node %q: %w", id, ErrUnknownItem)
	}

	for _, edgeID := range d.FullGraph.DropNode(id) {
		delete(d.EdgeRenderingData, edgeID)
		delete(d.EdgeData, edgeID)
	}
	delete(d.NodeRenderingData, id)
	delete(d.NodeData, id)
	return nil
}

// DropEdge removes an edge from every store
func (d *GraphDataset) DropEdge(id string) error {
	if !d.FullGraph.DropEdge(id) {
		return fmt.Errorf("edge %q: %w", id, ErrUnknownItem)
	}
	delete(d.EdgeRenderingData, id)
	delete(d.EdgeData, id)
	return nil
}

// Fields returns the field catalog for an item type
func (d *GraphDataset) Fields(itemType ItemType) []FieldModel {
	if itemType == Edges {
		return d.EdgeFields
	}
	return d.NodeFields
}

// Data returns the static data store for an item type
func (d *GraphDataset) Data(itemType ItemType) map[string]ItemData {
	if itemType == Edges {
		return d.EdgeData
	}
	return d.NodeData
}

// Field looks up a field model by id
func (d *GraphDataset) Field(itemType ItemType, id string) (FieldModel, bool) {
	for _, f := range d.Fields(itemType) {
		if f.ID == id {
			return f, true
		}
	}
	return FieldModel{}, false
}

// SetFieldValues upserts a field model and writes one value per item.
// This is how metric computations inject their results. Items missing from
// values get no entry for the field, which reads back as "undefined".
func (d *GraphDataset) SetFieldValues(field FieldModel, values map[string]Scalar) error {
	if field.ItemType != Nodes && field.ItemType != Edges {
		return fmt.Errorf("field %q: %w %q", field.ID, ErrItemType, field.ItemType)
	}

	store := d.Data(field.ItemType)
	for id, v := range values {
		if _, exists := store[id]; !exists {
			return fmt.Errorf("%s %q: %w", field.ItemType, id, ErrUnknownItem)
		}
		if !ValidScalar(v) {
			return fmt.Errorf("%s %q field %q: %w", field.ItemType, id, field.ID, ErrInvalidValue)
		}
	}

	fields := d.Fields(field.ItemType)
	replaced := false
	for i := range fields {
		if fields[i].ID == field.ID {
			fields[i] = field
			replaced = true
			break
		}
	}
	if !replaced {
		fields = append(fields, field)
	}
	if field.ItemType == Edges {
		d.EdgeFields = fields
	} else {
		d.NodeFields = fields
	}

	for id, v := range values {
		store[id][field.ID] = v
	}
	return nil
}

// Validate checks the lockstep invariant between topology, rendering data and data
func (d *GraphDataset) Validate() error {
	var errs []error

	check := func(itemType ItemType, ids []string, rendering func(string) bool, data map[string]ItemData, total int) {
		for _, id := range ids {
			if !rendering(id) {
				errs = append(errs, fmt.Errorf("%s %q has no rendering data", itemType, id))
			}
			if _, ok := data[id]; !ok {
				errs = append(errs, fmt.Errorf("%s %q has no data entry", itemType, id))
			}
		}
		if total != len(ids) || len(data) != len(ids) {
			errs = append(errs, fmt.Errorf("%s stores out of lockstep: topology=%d rendering=%d data=%d",
				itemType, len(ids), total, len(data)))
		}
	}

	check(Nodes, d.FullGraph.Nodes(), func(id string) bool {
		_, ok := d.NodeRenderingData[id]
		return ok
	}, d.NodeData, len(d.NodeRenderingData))
	check(Edges, d.FullGraph.Edges(), func(id string) bool {
		_, ok := d.EdgeRenderingData[id]
		return ok
	}, d.EdgeData, len(d.EdgeRenderingData))

	return errors.Join(errs...)
}

func checkScalars(data ItemData) error {
	for key, v := range data {
		if !ValidScalar(v) {
			return fmt.Errorf("field %q: %w", key, ErrInvalidValue)
		}
	}
	return nil
}
