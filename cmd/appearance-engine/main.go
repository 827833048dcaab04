package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ritzau/appearance-engine/pkg/appearance"
	"github.com/ritzau/appearance-engine/pkg/config"
	"github.com/ritzau/appearance-engine/pkg/dataset"
	"github.com/ritzau/appearance-engine/pkg/engine"
	"github.com/ritzau/appearance-engine/pkg/logging"
	"github.com/ritzau/appearance-engine/pkg/model"
	"github.com/ritzau/appearance-engine/pkg/output"
	"github.com/ritzau/appearance-engine/pkg/pubsub"
	"github.com/ritzau/appearance-engine/pkg/watcher"
	"github.com/ritzau/appearance-engine/pkg/web"
)

func main() {
	flags := pflag.NewFlagSet("appearance-engine", pflag.ExitOnError)
	config.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logging.Setup(logging.Options{Level: cfg.LogLevel(), JSON: cfg.JSONLogs})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Fatal("appearance engine failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	d, err := dataset.LoadDataset(cfg.Dataset)
	if err != nil {
		return err
	}
	state, err := loadAppearance(cfg.Appearance)
	if err != nil {
		return err
	}

	var publisher *pubsub.SSEPublisher
	if cfg.WebMode {
		publisher = web.NewPublisher(cfg.Replay)
		defer publisher.Close()
	}

	// A nil *SSEPublisher must not reach the engine as a non-nil interface
	var pub pubsub.Publisher
	if publisher != nil {
		pub = publisher
	}
	eng, err := engine.New(d, state, pub)
	if err != nil {
		return err
	}

	if !cfg.WebMode {
		report(eng)
		if !cfg.Watch {
			return nil
		}
	}

	if cfg.Watch {
		var target watcher.Target = eng
		if !cfg.WebMode {
			target = reportingTarget{eng}
		}
		if err := startWatching(ctx, cfg, target); err != nil {
			return err
		}
	}

	if !cfg.WebMode {
		<-ctx.Done()
		return nil
	}
	return web.NewServer(eng, publisher, cfg.Appearance).Run(ctx, cfg.Port)
}

// loadAppearance reads the appearance document. A missing document means
// the default appearance; it is created on the first update.
func loadAppearance(path string) (appearance.State, error) {
	if path == "" {
		return appearance.DefaultAppearance(), nil
	}
	state, err := dataset.LoadAppearance(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Info("no appearance document yet, using defaults", "path", path)
		return appearance.DefaultAppearance(), nil
	}
	return state, err
}

func startWatching(ctx context.Context, cfg *config.Config, target watcher.Target) error {
	fw, err := watcher.NewFileWatcher(cfg.Dataset, cfg.Appearance)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), cfg.Debounce, 10*cfg.Debounce)
	debouncer.Start(ctx)

	reloader := &watcher.Reloader{
		DatasetPath:    cfg.Dataset,
		AppearancePath: cfg.Appearance,
		Target:         target,
	}
	go reloader.Run(ctx, debouncer.Output())
	return nil
}

func report(eng *engine.Engine) {
	output.PrintCaptionReport(os.Stdout, eng.Dataset(), eng.Caption())
}

// reportingTarget prints a fresh report after every reload in console mode
type reportingTarget struct {
	eng *engine.Engine
}

func (t reportingTarget) ReplaceDataset(ctx context.Context, d *model.GraphDataset) error {
	if err := t.eng.ReplaceDataset(ctx, d); err != nil {
		return err
	}
	report(t.eng)
	return nil
}

func (t reportingTarget) SetAppearance(ctx context.Context, state appearance.State) {
	t.eng.SetAppearance(ctx, state)
	report(t.eng)
}
