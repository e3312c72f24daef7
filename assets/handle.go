package assets

import (
	"path/filepath"

	"github.com/google/uuid"
)

// namespace scopes handle UUIDs to blueprint assets.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("prints:blueprint"))

// Handle identifies a loaded asset.
type Handle uuid.UUID

// HandleFor returns the handle of the asset at path, relative to the server
// root. Equivalent paths yield the same handle.
func HandleFor(path string) Handle {
	return Handle(uuid.NewSHA1(namespace, []byte(cleanPath(path))))
}

func (h Handle) String() string { return uuid.UUID(h).String() }

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h == Handle{} }

func cleanPath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
