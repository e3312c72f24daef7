package assets

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/robo-corg/prints/pkg"
)

// ReloadFunc is called after a watched asset is reloaded. err is non-nil
// when the file could not be reparsed; the previous blueprint stays
// published in that case.
type ReloadFunc func(h Handle, err error)

// Watch reloads assets under the server root when their files are written
// or created, and reports each reload to onReload. Events are coalesced
// until no change has been seen for the debounce period. Watch blocks until
// ctx is cancelled.
func (s *Server) Watch(ctx context.Context, onReload ReloadFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return pkg.ErrLoad.Wrap(err)
	}
	defer watcher.Close()

	if err := watchDirRecursive(watcher, s.root); err != nil {
		return pkg.ErrLoad.Wrap(err).With(slog.String("dir", s.root))
	}

	s.logger.DebugContext(ctx, "watching assets", slog.String("root", s.root))

	var (
		pending = make(map[string]struct{})
		timer   *time.Timer
		fire    <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op.Has(fsnotify.Create) {
				// New directories need their own watch.
				_ = watchDirRecursive(watcher, event.Name)
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if _, ok := s.loader(event.Name); !ok {
				continue
			}

			rel, err := filepath.Rel(s.root, event.Name)
			if err != nil {
				continue
			}

			pending[cleanPath(rel)] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}

			fire = timer.C

		case <-fire:
			fire = nil

			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}

			clear(pending)
			slices.Sort(paths)

			for _, p := range paths {
				s.reload(ctx, p, onReload)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			s.logger.WarnContext(ctx, "watcher error", slog.Any("error", err))
		}
	}
}

func (s *Server) reload(ctx context.Context, path string, onReload ReloadFunc) {
	h, err := s.Load(ctx, path)
	if err != nil {
		h = HandleFor(path)

		s.logger.WarnContext(ctx, "asset reload failed",
			slog.String("path", path),
			slog.Any("error", err))
	} else {
		s.logger.InfoContext(ctx, "asset reloaded", slog.String("path", path))
	}

	if onReload != nil {
		onReload(h, err)
	}
}

func watchDirRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return watcher.Add(path)
		}

		return nil
	})
}
