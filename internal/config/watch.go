package config

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"pixelprobe/internal/logger"
)

// Watch monitors path for changes and calls onChange with the newly loaded
// Config each time the file is written. It runs until ctx is cancelled.
//
// If a reload fails (e.g., invalid YAML), the error is logged and the
// previous config remains active; Watch does not call onChange.
func Watch(ctx context.Context, log logger.Logger, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	log.Info("ConfigWatch", "watching for changes", map[string]interface{}{
		"path": path,
	})

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename (atomic write), so catch
			// fsnotify.Create as well as fsnotify.Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				log.Error("ConfigWatch", err, map[string]interface{}{
					"path":   path,
					"action": "keeping previous config",
				})
				continue
			}

			log.Info("ConfigWatch", "config reloaded", map[string]interface{}{
				"path": path,
			})
			onChange(cfg)

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("ConfigWatch", err, nil)
		}
	}
}
