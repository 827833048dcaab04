package render

import (
	"crypto/sha256"
	"fmt"
	"reflect"
	"slices"

	"github.com/goccy/go-json"
)

// Diff is the difference between two states of the rendering store
type Diff struct {
	AddedNodes    []Node   `json:"addedNodes"`
	RemovedNodes  []string `json:"removedNodes"`
	ModifiedNodes []Node   `json:"modifiedNodes"` // Nodes with changed attributes
	AddedEdges    []Edge   `json:"addedEdges"`
	RemovedEdges  []string `json:"removedEdges"`
	ModifiedEdges []Edge   `json:"modifiedEdges"`
	FullGraph     bool     `json:"fullGraph"` // True if this is the full store, not a diff
}

// Empty reports whether the diff carries no change
func (d *Diff) Empty() bool {
	return !d.FullGraph &&
		len(d.AddedNodes) == 0 && len(d.RemovedNodes) == 0 && len(d.ModifiedNodes) == 0 &&
		len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0 && len(d.ModifiedEdges) == 0
}

// Snapshot is a cached store state for diffing
type Snapshot struct {
	Hash  string
	Nodes map[string]Node
	Edges map[string]Edge
}

// CreateSnapshot indexes a store state by id
func CreateSnapshot(data *Data) *Snapshot {
	snapshot := &Snapshot{
		Nodes: make(map[string]Node, len(data.Nodes)),
		Edges: make(map[string]Edge, len(data.Edges)),
	}
	for _, n := range data.Nodes {
		snapshot.Nodes[n.ID] = n
	}
	for _, e := range data.Edges {
		snapshot.Edges[e.ID] = e
	}

	jsonData, _ := json.Marshal(data)
	hash := sha256.Sum256(jsonData)
	snapshot.Hash = fmt.Sprintf("%x", hash)

	return snapshot
}

// ComputeDiff compares a new store state against a snapshot. Without a
// snapshot the whole state is returned as additions. Ids in the result are sorted.
func ComputeDiff(old *Snapshot, data *Data) *Diff {
	if old == nil {
		return &Diff{
			AddedNodes: data.Nodes,
			AddedEdges: data.Edges,
			FullGraph:  true,
		}
	}

	diff := &Diff{
		AddedNodes:    make([]Node, 0),
		RemovedNodes:  make([]string, 0),
		ModifiedNodes: make([]Node, 0),
		AddedEdges:    make([]Edge, 0),
		RemovedEdges:  make([]string, 0),
		ModifiedEdges: make([]Edge, 0),
	}

	seenNodes := make(map[string]bool, len(data.Nodes))
	for _, n := range data.Nodes {
		seenNodes[n.ID] = true
		prev, exists := old.Nodes[n.ID]
		switch {
		case !exists:
			diff.AddedNodes = append(diff.AddedNodes, n)
		case !reflect.DeepEqual(prev, n):
			diff.ModifiedNodes = append(diff.ModifiedNodes, n)
		}
	}
	for id := range old.Nodes {
		if !seenNodes[id] {
			diff.RemovedNodes = append(diff.RemovedNodes, id)
		}
	}

	seenEdges := make(map[string]bool, len(data.Edges))
	for _, e := range data.Edges {
		seenEdges[e.ID] = true
		prev, exists := old.Edges[e.ID]
		switch {
		case !exists:
			diff.AddedEdges = append(diff.AddedEdges, e)
		case !reflect.DeepEqual(prev, e):
			diff.ModifiedEdges = append(diff.ModifiedEdges, e)
		}
	}
	for id := range old.Edges {
		if !seenEdges[id] {
			diff.RemovedEdges = append(diff.RemovedEdges, id)
		}
	}

	slices.Sort(diff.RemovedNodes)
	slices.Sort(diff.RemovedEdges)
	return diff
}
