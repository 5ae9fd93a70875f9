package generate

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 100 * time.Millisecond

// Watch runs the generator once, then again every time the input file
// changes, until ctx is done. Each run's outcome goes to onRun; a failed run
// does not stop watching.
//
// The input's directory is watched rather than the file itself so editors
// that save by renaming a temporary file are still picked up.
func (g *Generator) Watch(ctx context.Context, onRun func(*Result, error)) error {
	input, err := filepath.Abs(g.cfg.Input)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(input), err)
	}

	onRun(g.Run(ctx))
	g.logger.Info("watching for changes", "path", input)

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != input {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			settle = time.After(g.debounce)

		case <-settle:
			settle = nil
			g.logger.Info("change detected", "path", input)
			onRun(g.Run(ctx))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.logger.Warn("watcher error", "error", err)
		}
	}
}
