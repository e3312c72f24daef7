// Package log provides a simplified, structured logging interface based on
// [log/slog].
//
// A [Logger] is created once with functional options and is immutable
// afterwards; [Logger.Wrap] and [Logger.With] derive new loggers.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText))
//	logger.Info("blueprint loaded", slog.String("name", "corgi"))
//
// # Levels
//
// In addition to the slog levels, [LevelTrace] is available for the very
// verbose output produced while parsing and evaluating blueprints.
//
// # Default logger
//
// Package-level functions ([Info], [DebugContext], ...) write to a default
// logger that is reconfigured with [Config]. Libraries should instead accept
// a [Logger] option or read one from a context with [FromContext].
package log
