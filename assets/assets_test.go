package assets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robo-corg/prints/lang"
	"github.com/robo-corg/prints/pkg"
)

func writeFile(t *testing.T, root, path, data string) {
	t.Helper()

	full := filepath.Join(root, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(data), 0o644))
}

func TestHandleFor(t *testing.T) {
	assert.Equal(t, HandleFor("units/rex.bp.json"), HandleFor("units/./rex.bp.json"))
	assert.Equal(t, HandleFor("units/rex.bp.json"), HandleFor("units/../units/rex.bp.json"))
	assert.NotEqual(t, HandleFor("units/rex.bp.json"), HandleFor("units/corgi.bp.yaml"))
	assert.False(t, HandleFor("rex.bp.json").IsZero())
	assert.True(t, Handle{}.IsZero())
}

func TestServer_Load(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rex.bp.json", `{"Name": "Rex"}`)

	s := New(root)

	h, err := s.Load(t.Context(), "rex.bp.json")
	require.NoError(t, err)
	assert.Equal(t, HandleFor("rex.bp.json"), h)

	bp, ok := s.Get(h)
	require.True(t, ok)
	assert.Equal(t, "rex", bp.Name)
	assert.Equal(t, lang.FormatJSON, bp.Format)

	path, ok := s.Path(h)
	require.True(t, ok)
	assert.Equal(t, "rex.bp.json", path)

	_, ok = s.Get(HandleFor("missing.bp.json"))
	assert.False(t, ok)
}

func TestServer_Load_Errors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.txt", "hello")
	writeFile(t, root, "bad.bp.yaml", "Alive: true\n")

	s := New(root)

	_, err := s.Load(t.Context(), "notes.txt")
	require.ErrorIs(t, err, pkg.ErrLoad)

	_, err = s.Load(t.Context(), "missing.bp.json")
	require.ErrorIs(t, err, pkg.ErrLoad)

	_, err = s.Load(t.Context(), "bad.bp.yaml")
	require.ErrorIs(t, err, pkg.ErrParse)

	assert.Empty(t, s.Handles())
}

func TestServer_RegisterLoader(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rex.unit", "ignored")
	writeFile(t, root, "rex.bp.json", "{}")

	var seen []string

	s := New(root)
	s.RegisterLoader(".unit", LoaderFunc(
		func(ctx context.Context, path string, _ []byte) (*lang.Blueprint, error) {
			seen = append(seen, path)

			return lang.Parse(ctx, "unit", lang.FormatJSON, []byte(`{"Name": "Unit"}`))
		},
	))
	// A longer registered extension wins over a shorter one.
	s.RegisterLoader("json", LoaderFunc(
		func(context.Context, string, []byte) (*lang.Blueprint, error) {
			return nil, pkg.ErrLoad
		},
	))

	h, err := s.Load(t.Context(), "rex.unit")
	require.NoError(t, err)

	bp, ok := s.Get(h)
	require.True(t, ok)
	assert.Equal(t, "unit", bp.Name)
	assert.Equal(t, []string{"rex.unit"}, seen)

	_, err = s.Load(t.Context(), "rex.bp.json")
	require.NoError(t, err)
}

func TestServer_LoadDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "units/rex.bp.json", `{"Name": "Rex"}`)
	writeFile(t, root, "units/corgi.bp.yaml", "Name: Corgi\n")
	writeFile(t, root, "units/deep/dragon.bp.hcl", "Name = \"Dragon\"\n")
	writeFile(t, root, "units/README.md", "# units")

	s := New(root)

	handles, err := s.LoadDir(t.Context(), "units")
	require.NoError(t, err)
	require.Len(t, handles, 3)

	var names []string
	for _, h := range s.Handles() {
		bp, ok := s.Get(h)
		require.True(t, ok)
		names = append(names, bp.Name)
	}

	assert.Equal(t, []string{"corgi", "dragon", "rex"}, names)
}

func TestServer_LoadDir_Error(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rex.bp.json", `{"Name": "Rex"}`)
	writeFile(t, root, "broken.bp.json", `{"Name": `)

	_, err := New(root).LoadDir(t.Context(), ".")
	require.ErrorIs(t, err, pkg.ErrParse)

	_, err = New(root).LoadDir(t.Context(), "missing")
	require.ErrorIs(t, err, pkg.ErrLoad)
}

func TestServer_Watch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rex.bp.json", `{"Name": "Rex"}`)

	s := New(root, WithDebounce(10*time.Millisecond))

	h, err := s.Load(t.Context(), "rex.bp.json")
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		reloaded []Handle
	)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)

	go func() {
		done <- s.Watch(ctx, func(h Handle, err error) {
			mu.Lock()
			defer mu.Unlock()

			if err == nil {
				reloaded = append(reloaded, h)
			}
		})
	}()

	// Rewrite until the watcher, which starts asynchronously, sees a change.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(root, "rex.bp.json"),
			[]byte(`{"Name": "Rex", "Hitpoints": 20.0}`), 0o644)

		mu.Lock()
		defer mu.Unlock()

		return len(reloaded) > 0
	}, 5*time.Second, 50*time.Millisecond)

	mu.Lock()
	assert.Equal(t, h, reloaded[0])
	mu.Unlock()

	bp, ok := s.Get(h)
	require.True(t, ok)
	assert.True(t, strings.Contains(bp.Root.String(), "Hitpoints"))

	cancel()
	require.NoError(t, <-done)
}
