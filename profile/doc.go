// Package profile starts optional runtime profiling for the prints command.
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//	prints --pprof-mode=cpu spawn assets/*.bp.yaml
//
// Without the tag, [Modes] is empty and [Profiler.Start] does nothing.
// Profiles are written to the configured directory under the name of the
// mode (cpu.pprof, mem.pprof, ...) and read with "go tool pprof".
//
// Supported modes: allocs, block, clock, cpu, goroutine, heap, mem, mutex,
// thread, trace.
package profile
