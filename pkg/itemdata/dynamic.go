package itemdata

import (
	"github.com/ritzau/appearance-engine/pkg/graph"
	"github.com/ritzau/appearance-engine/pkg/model"
)

// DynamicField is a topology-derived attribute. Compute must be cheap
// (constant or proportional to the item's degree), deterministic, and must
// not mutate the topology.
type DynamicField struct {
	Model   model.FieldModel
	Compute func(id string, g *graph.Topology) model.Scalar
}

var nodeDynamicFields = []DynamicField{
	{
		Model: model.FieldModel{
			ID:           "degree",
			ItemType:     model.Nodes,
			Quantitative: &model.QuantitativeField{},
			Dynamic:      true,
		},
		Compute: func(id string, g *graph.Topology) model.Scalar {
			return float64(g.Degree(id))
		},
	},
}

// No edge attribute is derived from topology yet
var edgeDynamicFields = []DynamicField{}

// DynamicFields returns the registered dynamic fields for an item type
func DynamicFields(itemType model.ItemType) []DynamicField {
	if itemType == model.Edges {
		return edgeDynamicFields
	}
	return nodeDynamicFields
}

// DynamicFieldModels returns the field models of the registered dynamic fields
func DynamicFieldModels(itemType model.ItemType) []model.FieldModel {
	fields := DynamicFields(itemType)
	models := make([]model.FieldModel, 0, len(fields))
	for _, f := range fields {
		models = append(models, f.Model)
	}
	return models
}

// ComputeDynamicData evaluates every registered dynamic field for every item of the topology.
// It is a full recompute and is meant to run again after each topology change.
func ComputeDynamicData(itemType model.ItemType, g *graph.Topology) map[string]model.ItemData {
	fields := DynamicFields(itemType)

	ids := g.Nodes()
	if itemType == model.Edges {
		ids = g.Edges()
	}

	result := make(map[string]model.ItemData, len(ids))
	for _, id := range ids {
		data := make(model.ItemData, len(fields))
		for _, f := range fields {
			data[f.Model.ID] = f.Compute(id, g)
		}
		result[id] = data
	}
	return result
}
