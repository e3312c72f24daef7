// Package assets loads blueprint files and serves them by [Handle].
//
// A [Server] reads files relative to a root directory using the [Loader]
// registered for their extension. Handles are stable: they are derived from
// the file's path, so reloading a changed file republishes it under the
// same handle. [Server.Watch] reloads files as they change on disk.
package assets
