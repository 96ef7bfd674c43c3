package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ErrNotWatchable is returned by Watch when the source is not file backed.
var ErrNotWatchable = errors.New("config: source cannot be watched")

// Watch expires the refresh deadline whenever the backing properties file
// changes, so edits are picked up on the next lookup instead of after the
// refresh interval. It blocks until ctx is done. The parent directory is
// watched so editors that replace the file by rename are handled.
func (p *Provider) Watch(ctx context.Context) error {
	fs, ok := p.src.(FileSource)
	if !ok {
		if fsp, isPtr := p.src.(*FileSource); isPtr && fsp != nil {
			fs, ok = *fsp, true
		}
	}
	if !ok || fs.Path == "" {
		return ErrNotWatchable
	}
	target, err := filepath.Abs(fs.Path)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", fs.Path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %q: %w", filepath.Dir(target), err)
	}
	p.log.Info("config.watch.start", slog.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			p.log.Debug("config.watch.change", slog.String("op", ev.Op.String()))
			p.Expire()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.log.Warn("config.watch.fail", slog.String("err", err.Error()))
		}
	}
}
