package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path for changes and calls onChange with the newly loaded
// Config each time the file is written. It runs until ctx is cancelled.
//
// If a reload fails (e.g., invalid YAML), the error is logged and the
// previous config remains active: Watch does not call onChange.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	return WatchFile(ctx, path, func() {
		cfg, err := Load(path)
		if err != nil {
			slog.Error("config: reload failed, keeping previous config",
				"path", path, "err", err)
			return
		}
		slog.Info("config: reloaded", "path", path)
		onChange(cfg)
	})
}

// WatchFile calls onWrite every time path is written or recreated, until
// ctx is cancelled. The file must exist when WatchFile is called.
//
// The parent directory is watched rather than the file itself, so a save
// that renames a temp file over path is seen as a Create of path. A removed
// file is picked up again when it reappears.
func WatchFile(ctx context.Context, path string, onWrite func()) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				onWrite()
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				slog.Warn("config: watched file removed, waiting for it to reappear", "path", path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "path", path, "err", err)
		}
	}
}
