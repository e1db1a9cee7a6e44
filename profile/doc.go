// Package profile starts optional runtime profiling for wood.
//
// Profiling is compiled in only with the "pprof" build tag, which links
// [github.com/pkg/profile] and registers the [net/http/pprof] handlers. The
// handlers are reachable on the metrics listener when "wood watch --listen"
// is running. Without the tag, [Modes] is empty and [Start] returns a
// no-op.
//
//	go build -tags pprof ./...
//	wood --pprof-mode cpu --pprof-dir /tmp/wood resolve page/page.htm
//	go tool pprof -http=: /tmp/wood/cpu.pprof
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem, mutex,
// thread and trace.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
