package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ritzau/appearance-engine/pkg/appearance"
	"github.com/ritzau/appearance-engine/pkg/caption"
	"github.com/ritzau/appearance-engine/pkg/graph"
	"github.com/ritzau/appearance-engine/pkg/itemdata"
	"github.com/ritzau/appearance-engine/pkg/logging"
	"github.com/ritzau/appearance-engine/pkg/metrics"
	"github.com/ritzau/appearance-engine/pkg/model"
	"github.com/ritzau/appearance-engine/pkg/pubsub"
	"github.com/ritzau/appearance-engine/pkg/render"
)

// Reasons for a resolution pass, used in logs and metrics
const (
	ReasonInitial    = "initial"
	ReasonAppearance = "appearance"
	ReasonFilter     = "filter"
	ReasonTopology   = "topology"
	ReasonMetric     = "metric"
	ReasonDataset    = "dataset"
)

// ErrNoDataset is returned when the engine is built without a dataset
var ErrNoDataset = errors.New("no dataset loaded")

// Engine owns the dataset, the appearance state, the filtered view and the
// rendering store. It is the only writer of all four; every mutation runs a
// complete resolution pass before the lock is released, so readers never
// observe a partially applied store.
type Engine struct {
	mu sync.RWMutex

	dataset   *model.GraphDataset
	state     appearance.State
	filter    *Filter
	sizeRatio float64

	// Derived by refresh
	filtered  *graph.Topology
	nodes     map[string]itemdata.Merged
	edges     map[string]itemdata.Merged
	getters   appearance.VisualGetters
	rendering *render.Graph
	caption   caption.Caption
	snapshot  *render.Snapshot
	pass      int

	publisher pubsub.Publisher
}

// New creates an engine and runs the initial resolution pass.
// publisher may be nil when nobody listens for updates.
func New(dataset *model.GraphDataset, state appearance.State, publisher pubsub.Publisher) (*Engine, error) {
	if dataset == nil {
		return nil, ErrNoDataset
	}
	if err := dataset.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}

	e := &Engine{
		dataset:   dataset,
		state:     state,
		sizeRatio: 1,
		publisher: publisher,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.refresh(context.Background(), ReasonInitial)
	return e, nil
}

// refresh runs a full resolution pass. Order matters: dynamic data must exist
// before getters are built, and node getters before edge getters.
// Callers hold the write lock.
func (e *Engine) refresh(ctx context.Context, reason string) {
	start := time.Now()
	e.publishStatus("resolving", "Resolving appearance: "+reason)

	// 1. Dynamic attributes from the full topology
	dynamicNodes := itemdata.ComputeDynamicData(model.Nodes, e.dataset.FullGraph)
	dynamicEdges := itemdata.ComputeDynamicData(model.Edges, e.dataset.FullGraph)

	// 2. Merge with static data
	e.nodes = itemdata.Merge(e.dataset.NodeData, dynamicNodes)
	e.edges = itemdata.Merge(e.dataset.EdgeData, dynamicEdges)

	// 3. Filtered view
	e.filtered = e.filter.Apply(e.dataset.FullGraph)

	// 4. Getters over every item of the dataset
	e.getters = appearance.GetVisualGetters(e.dataset, e.state, e.nodes, e.edges)

	// 5. Rendering store for the filtered view
	view := e.filtered
	if !e.state.ShowEdges {
		view = view.WithoutEdges(func(string) bool { return true })
	}
	e.rendering = render.NewGraph(e.dataset, view)
	render.ApplyVisualGetters(e.rendering, e.nodes, e.edges, e.getters)

	// 6. Legends over the visible items
	e.updateCaption()

	e.pass++
	elapsed := time.Since(start)
	metrics.ObservePass(reason, elapsed, e.rendering.Order(), e.rendering.Size())
	logging.InfoContext(ctx, "resolved appearance",
		"reason", reason,
		"pass", e.pass,
		"nodes", e.rendering.Order(),
		"edges", e.rendering.Size(),
		"durationMs", elapsed.Milliseconds())

	// 7. Publish
	e.publishRendering()
	e.publishCaption()
	e.publishStatus("ready", "Appearance resolved")
}

func (e *Engine) updateCaption() {
	e.caption = caption.Compute(e.state, e.filtered, e.nodes, e.edges, e.sizeRatio)
	for _, named := range e.caption.Channels() {
		missing := false
		if r := named.Channel.Range; r != nil {
			missing = r.Missing
		}
		if p := named.Channel.Partition; p != nil {
			missing = p.Missing
		}
		metrics.ObserveMissing(named.Name, missing)
	}
}

func (e *Engine) publishRendering() {
	data := e.rendering.Data()
	diff := render.ComputeDiff(e.snapshot, data)
	e.snapshot = render.CreateSnapshot(data)

	if e.publisher == nil || diff.Empty() {
		return
	}
	eventType := pubsub.EventDiff
	if diff.FullGraph {
		eventType = pubsub.EventFull
	}
	e.publish(pubsub.TopicRendering, eventType, diff)
}

func (e *Engine) publishCaption() {
	if e.publisher == nil {
		return
	}
	e.publish(pubsub.TopicCaption, pubsub.EventCaption, e.caption)
}

func (e *Engine) publishStatus(state, message string) {
	if e.publisher == nil {
		return
	}
	e.publish(pubsub.TopicStatus, pubsub.EventStatus, pubsub.EngineStatus{
		State:   state,
		Message: message,
		Pass:    e.pass,
	})
}

func (e *Engine) publish(topic, eventType string, data any) {
	if err := e.publisher.Publish(topic, eventType, data); err != nil {
		metrics.PublishErrors.WithLabelValues(topic).Inc()
		logging.Warn("failed to publish", "topic", topic, "error", err)
	}
}

// SetAppearance replaces the appearance state
func (e *Engine) SetAppearance(ctx context.Context, state appearance.State) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = state
	e.refresh(ctx, ReasonAppearance)
}

// Appearance returns the current appearance state
func (e *Engine) Appearance() appearance.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// SetFilter replaces the filtered view; nil shows the whole graph
func (e *Engine) SetFilter(ctx context.Context, filter *Filter) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.filter = filter
	e.refresh(ctx, ReasonFilter)
}

// SetSizeRatio records the renderer's current size/rawSize ratio. Only the
// caption depends on it, so no resolution pass runs.
func (e *Engine) SetSizeRatio(ratio float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ratio <= 0 {
		ratio = 1
	}
	if ratio == e.sizeRatio {
		return
	}
	e.sizeRatio = ratio
	e.updateCaption()
	e.publishCaption()
}

// ApplyMetric injects the values of a computed field
func (e *Engine) ApplyMetric(ctx context.Context, field model.FieldModel, values map[string]model.Scalar) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.dataset.SetFieldValues(field, values); err != nil {
		return fmt.Errorf("applying metric %q: %w", field.ID, err)
	}
	e.refresh(ctx, ReasonMetric)
	return nil
}

// AddNode adds a node to the dataset
func (e *Engine) AddNode(ctx context.Context, id string, data model.ItemData, rendering model.NodeRenderingData) error {
	return e.mutateTopology(ctx, func(d *model.GraphDataset) error {
		return d.AddNode(id, data, rendering)
	})
}

// AddEdge adds an edge between two existing nodes
func (e *Engine) AddEdge(ctx context.Context, id, source, target string, data model.ItemData, rendering model.EdgeRenderingData) error {
	return e.mutateTopology(ctx, func(d *model.GraphDataset) error {
		return d.AddEdge(id, source, target, data, rendering)
	})
}

// DropNode removes a node and its incident edges
func (e *Engine) DropNode(ctx context.Context, id string) error {
	return e.mutateTopology(ctx, func(d *model.GraphDataset) error {
		return d.DropNode(id)
	})
}

// DropEdge removes an edge
func (e *Engine) DropEdge(ctx context.Context, id string) error {
	return e.mutateTopology(ctx, func(d *model.GraphDataset) error {
		return d.DropEdge(id)
	})
}

func (e *Engine) mutateTopology(ctx context.Context, mutate func(*model.GraphDataset) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := mutate(e.dataset); err != nil {
		return err
	}
	e.refresh(ctx, ReasonTopology)
	return nil
}

// ReplaceDataset swaps in a freshly loaded dataset, keeping appearance and filter
func (e *Engine) ReplaceDataset(ctx context.Context, dataset *model.GraphDataset) error {
	if dataset == nil {
		return ErrNoDataset
	}
	if err := dataset.Validate(); err != nil {
		return fmt.Errorf("invalid dataset: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.dataset = dataset
	e.refresh(ctx, ReasonDataset)
	return nil
}

// Rendering returns a copy of the rendering store
func (e *Engine) Rendering() *render.Data {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rendering.Data()
}

// Caption returns the legends of the last pass
func (e *Engine) Caption() caption.Caption {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.caption
}

// ItemAttributes computes the display of one item for previews
func (e *Engine) ItemAttributes(itemType model.ItemType, id string) render.ItemAttributes {
	e.mu.RLock()
	defer e.mu.RUnlock()

	merged := e.nodes
	if itemType == model.Edges {
		merged = e.edges
	}
	return render.GetItemAttributes(itemType, id, e.filtered, merged, e.dataset, e.getters)
}

// DatasetInfo summarizes the loaded dataset
type DatasetInfo struct {
	Metadata   model.Metadata     `json:"metadata"`
	Nodes      int                `json:"nodes"`
	Edges      int                `json:"edges"`
	NodeFields []model.FieldModel `json:"nodeFields"` // Static then dynamic
	EdgeFields []model.FieldModel `json:"edgeFields"`
}

// Dataset describes the loaded dataset including its dynamic fields
func (e *Engine) Dataset() DatasetInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return DatasetInfo{
		Metadata:   e.dataset.Metadata,
		Nodes:      e.dataset.FullGraph.Order(),
		Edges:      e.dataset.FullGraph.Size(),
		NodeFields: append(append([]model.FieldModel(nil), e.dataset.NodeFields...), itemdata.DynamicFieldModels(model.Nodes)...),
		EdgeFields: append(append([]model.FieldModel(nil), e.dataset.EdgeFields...), itemdata.DynamicFieldModels(model.Edges)...),
	}
}

// Pass returns the number of completed resolution passes
func (e *Engine) Pass() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pass
}
