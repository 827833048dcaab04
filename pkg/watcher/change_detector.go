package watcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/ritzau/appearance-engine/pkg/appearance"
	"github.com/ritzau/appearance-engine/pkg/dataset"
	"github.com/ritzau/appearance-engine/pkg/logging"
	"github.com/ritzau/appearance-engine/pkg/model"
)

// ReloadPlan describes which documents need to be read again
type ReloadPlan struct {
	ReloadDataset    bool
	ReloadAppearance bool
	ChangedFiles     []string
}

// AnalyzeChanges determines what to reload for a debounced event
func AnalyzeChanges(event ChangeEvent) *ReloadPlan {
	plan := &ReloadPlan{ChangedFiles: event.Paths}
	switch event.Type {
	case ChangeTypeDataset:
		plan.ReloadDataset = true
	case ChangeTypeAppearance:
		plan.ReloadAppearance = true
	}
	return plan
}

// Target receives reloaded documents
type Target interface {
	ReplaceDataset(ctx context.Context, d *model.GraphDataset) error
	SetAppearance(ctx context.Context, state appearance.State)
}

// Reloader applies reload plans to a target
type Reloader struct {
	DatasetPath    string
	AppearancePath string
	Target         Target
}

// Apply loads the documents named by plan and hands them to the target.
// A document that fails to load leaves the target's current state in place.
func (r *Reloader) Apply(ctx context.Context, plan *ReloadPlan) error {
	var errs []error

	if plan.ReloadDataset {
		d, err := dataset.LoadDataset(r.DatasetPath)
		if err == nil {
			err = r.Target.ReplaceDataset(ctx, d)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("reloading dataset: %w", err))
		}
	}

	if plan.ReloadAppearance && r.AppearancePath != "" {
		state, err := dataset.LoadAppearance(r.AppearancePath)
		if err != nil {
			errs = append(errs, fmt.Errorf("reloading appearance: %w", err))
		} else {
			r.Target.SetAppearance(ctx, state)
		}
	}

	return errors.Join(errs...)
}

// Run applies every debounced event until the channel closes
func (r *Reloader) Run(ctx context.Context, events <-chan ChangeEvent) {
	for event := range events {
		plan := AnalyzeChanges(event)
		logging.InfoContext(ctx, "documents changed", "type", event.Type.String(), "files", len(plan.ChangedFiles))
		if err := r.Apply(ctx, plan); err != nil {
			logging.WarnContext(ctx, "keeping previous state", "error", err)
		}
	}
}
