package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/appearance-engine/pkg/logging"
)

// ChangeType represents the document a change touched
type ChangeType int

const (
	ChangeTypeDataset ChangeType = iota
	ChangeTypeAppearance
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeDataset:
		return "dataset"
	case ChangeTypeAppearance:
		return "appearance"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(t))
	}
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches the dataset and appearance documents. It watches
// their directories rather than the files so that editors replacing a file
// by rename keep being noticed.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]ChangeType // Cleaned absolute path to document
	events  chan ChangeEvent
}

// NewFileWatcher creates a watcher for the given documents. An empty
// appearance path only watches the dataset.
func NewFileWatcher(datasetPath, appearancePath string) (*FileWatcher, error) {
	files := make(map[string]ChangeType, 2)
	for path, kind := range map[string]ChangeType{
		datasetPath:    ChangeTypeDataset,
		appearancePath: ChangeTypeAppearance,
	} {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		files[abs] = kind
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		files:   files,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Start begins watching. Events stop and the channel closes when ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for path := range fw.files {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			fw.watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	logging.Info("watching documents", "files", len(fw.files), "directories", len(dirs))
	go fw.processEvents(ctx)
	return nil
}

// classify maps a file system event to the document it touched
func (fw *FileWatcher) classify(event fsnotify.Event) (ChangeType, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return 0, false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return 0, false
	}
	kind, ok := fw.files[abs]
	return kind, ok
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			kind, relevant := fw.classify(event)
			if !relevant {
				continue
			}
			logging.Trace("document changed", "path", event.Name, "op", event.Op.String())

			select {
			case fw.events <- ChangeEvent{Type: kind, Paths: []string{event.Name}, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}
