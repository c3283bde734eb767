package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
)

// DebounceInterval coalesces bursts of file events into one reload.
const DebounceInterval = 500 * time.Millisecond

// Watch watches the given config files and emits on the returned channel
// once per debounced burst of writes. Parent directories are watched so
// that editors which save by rename are noticed and files that do not
// exist yet can appear later. The channel is closed when ctx is done.
func Watch(ctx context.Context, files ...string) <-chan struct{} {
	return watch(ctx, DebounceInterval, files...)
}

func watch(ctx context.Context, debounce time.Duration, files ...string) <-chan struct{} {
	reloadCh := make(chan struct{}, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Error().Err(err).Msg("failed to create config watcher")
		close(reloadCh)
		return reloadCh
	}

	wanted := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			logging.Warn().Str("file", file).Msg("could not resolve config path")
			continue
		}
		wanted[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			logging.Debug().Str("dir", dir).Err(err).Msg("config directory not watched")
			continue
		}
		dirs[dir] = true
		logging.Debug().Str("dir", dir).Msg("watching config directory")
	}

	go func() {
		defer watcher.Close()
		defer close(reloadCh)

		var timer *time.Timer
		var fire <-chan time.Time
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !wanted[filepath.Clean(ev.Name)] {
					continue
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(debounce)
				fire = timer.C
			case <-fire:
				fire = nil
				logging.Info().Msg("configuration change detected")
				select {
				case reloadCh <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Error().Err(err).Msg("config watcher error")
			}
		}
	}()

	return reloadCh
}
