package assets

import (
	"cmp"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/robo-corg/prints/lang"
	"github.com/robo-corg/prints/log"
	"github.com/robo-corg/prints/pkg"
)

// DefaultDebounce is the quiet period [Server.Watch] waits for after a
// change before reloading.
const DefaultDebounce = 100 * time.Millisecond

// Server loads and stores blueprints. It is safe for concurrent use.
type Server struct {
	root     string
	debounce time.Duration
	logger   log.Logger

	mu      sync.RWMutex
	loaders map[string]Loader
	assets  map[Handle]asset
}

type asset struct {
	path string
	bp   *lang.Blueprint
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDebounce sets the reload quiet period used by [Server.Watch].
func WithDebounce(d time.Duration) Option {
	return func(s *Server) {
		s.debounce = d
	}
}

// WithLangOptions configures the default blueprint loader.
func WithLangOptions(opts ...lang.Option) Option {
	return func(s *Server) {
		for _, ext := range lang.Extensions() {
			s.loaders[ext] = BlueprintLoader(opts...)
		}
	}
}

// New returns a server that reads files relative to root. A blueprint
// loader is registered for every blueprint extension.
func New(root string, opts ...Option) *Server {
	s := &Server{
		root:     root,
		debounce: DefaultDebounce,
		loaders:  make(map[string]Loader),
		assets:   make(map[Handle]asset),
	}

	for _, ext := range lang.Extensions() {
		s.loaders[ext] = BlueprintLoader()
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Root returns the directory asset paths are relative to.
func (s *Server) Root() string { return s.root }

// RegisterLoader sets the loader for files ending in "."+ext, replacing any
// previous one.
func (s *Server) RegisterLoader(ext string, l Loader) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaders[strings.TrimPrefix(strings.ToLower(ext), ".")] = l
}

// loader returns the loader with the longest extension matching path.
func (s *Server) loader(path string) (Loader, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	base := strings.ToLower(filepath.Base(path))

	var (
		best    Loader
		bestLen int
	)

	for ext, l := range s.loaders {
		if len(ext) > bestLen && strings.HasSuffix(base, "."+ext) {
			best, bestLen = l, len(ext)
		}
	}

	return best, best != nil
}

// Load reads and parses the asset at path, relative to the server root,
// and publishes it under [HandleFor](path).
func (s *Server) Load(ctx context.Context, path string) (Handle, error) {
	path = cleanPath(path)

	l, ok := s.loader(path)
	if !ok {
		return Handle{}, pkg.ErrLoad.Wrap(
			pkg.ErrUnexpectedType.Args(filepath.Ext(path), "registered asset extension"),
		).With(slog.String("path", path))
	}

	src, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		return Handle{}, pkg.ErrLoad.Wrap(err).With(slog.String("path", path))
	}

	bp, err := l.Load(ctx, path, src)
	if err != nil {
		return Handle{}, err
	}

	h := HandleFor(path)

	s.mu.Lock()
	s.assets[h] = asset{path: path, bp: bp}
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "asset loaded",
		slog.String("path", path),
		slog.String("handle", h.String()))

	return h, nil
}

// Handle returns the handle an asset at path is, or would be, published
// under. It does not load the asset.
func (s *Server) Handle(path string) Handle { return HandleFor(path) }

// Get returns the blueprint published under h.
func (s *Server) Get(h Handle) (*lang.Blueprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assets[h]

	return a.bp, ok
}

// Path returns the path the asset under h was loaded from.
func (s *Server) Path(h Handle) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assets[h]

	return a.path, ok
}

// Handles returns the handles of all loaded assets ordered by path.
func (s *Server) Handles() []Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		h    Handle
		path string
	}

	entries := make([]entry, 0, len(s.assets))
	for h, a := range s.assets {
		entries = append(entries, entry{h, a.path})
	}

	slices.SortFunc(entries, func(a, b entry) int { return cmp.Compare(a.path, b.path) })

	out := make([]Handle, len(entries))
	for i, e := range entries {
		out[i] = e.h
	}

	return out
}

// LoadDir loads every file under dir, relative to the server root, that has
// a registered loader. Files are loaded concurrently; the first error
// cancels the rest.
func (s *Server) LoadDir(ctx context.Context, dir string) ([]Handle, error) {
	var paths []string

	base := filepath.Join(s.root, filepath.FromSlash(dir))

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if _, ok := s.loader(path); !ok {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}

		paths = append(paths, rel)

		return nil
	})
	if err != nil {
		return nil, pkg.ErrLoad.Wrap(err).With(slog.String("dir", dir))
	}

	handles := make([]Handle, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			h, err := s.Load(gctx, p)
			handles[i] = h

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "directory loaded",
		slog.String("dir", dir),
		slog.Int("assets", len(handles)))

	return handles, nil
}
