package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Retry schedule for re-establishing a watch after an atomic save
// replaced the inode: the new file may not exist yet when the Rename or
// Remove event for the old one arrives.
const (
	rewatchAttempts = 10
	rewatchDelay    = 50 * time.Millisecond
)

// Watch monitors path for changes and calls onChange with the newly
// loaded Config each time the file is written. It runs until ctx is
// cancelled.
//
// If a reload fails (for example invalid YAML or an out-of-range
// threshold), the error is logged and the previous config remains
// active; Watch does not call onChange.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
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
			switch {
			case event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove):
				// An atomic save unlinks the watched inode, killing
				// the watch. Re-establish it on the replacement file
				// before reloading.
				if err := rewatch(ctx, watcher, path); err != nil {
					slog.Error("config: watch lost", "path", path, "err", err)
					continue
				}
			case !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create):
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", path, "err", err)
				continue
			}

			slog.Info("config: reloaded", "path", path)
			onChange(cfg)

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// rewatch re-adds path to the watcher, retrying while the replacement
// file is still being moved into place.
func rewatch(ctx context.Context, watcher *fsnotify.Watcher, path string) error {
	var err error
	for i := 0; i < rewatchAttempts; i++ {
		if err = watcher.Add(path); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rewatchDelay):
		}
	}
	return err
}
