package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch calls onChange with the path of every scenario file under paths
// that is written or created, until ctx is done. Files named directly are
// always reported; files found in watched directories must satisfy match.
func Watch(ctx context.Context, logger *zap.Logger, paths []string, match func(path string) bool, onChange func(path string)) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if match == nil {
		match = newExtensionSet(nil).matches
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			files[filepath.Clean(path)] = true
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("error adding %s to watcher: %w", path, err)
			}
			continue
		}
		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				dirs[filepath.Clean(p)] = true
				return watcher.Add(p)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Clean(event.Name)
			if !files[name] && !(dirs[filepath.Dir(name)] && match(name)) {
				continue
			}
			logger.Debug("scenario changed", zap.String("file", name), zap.Stringer("op", event.Op))
			onChange(name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error", zap.Error(err))
		}
	}
}
