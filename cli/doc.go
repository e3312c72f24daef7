// Package cli is the command line interface of prints.
//
//	prints check assets/*.bp.yaml
//	prints eval --output=json assets/rex.bp.json
//	prints spawn --root=assets --watch assets/corgi.bp.yaml
//	prints funcs --starlark=lib/units.star
//
// Flags are resolved from, in increasing precedence, the configuration file
// (~/.config/prints/config.yaml), PRINTS_* environment variables, and the
// command line. Configuration keys are flag names with dashes or
// underscores, optionally nested under the command name:
//
//	log_level: debug
//	eval:
//	  output: json
//
// Logging flags (--log-*) are applied before the rest of the command line
// is parsed so parse errors are reported with the requested format.
// Profiling flags (--pprof-*) exist only when built with the pprof tag.
package cli
