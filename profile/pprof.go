//go:build pprof

package profile

import (
	"maps"
	"slices"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Enabled reports whether profiling is compiled in.
const Enabled = true

var modes = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// Modes returns the supported profile modes in sorted order.
func Modes() []string { return slices.Sorted(maps.Keys(modes)) }

func start(s settings) Profiler {
	opts := []func(*profile.Profile){modes[s.mode], profile.NoShutdownHook}

	if s.dir != "" {
		opts = append(opts, profile.ProfilePath(s.dir))
	}

	if s.quiet {
		opts = append(opts, profile.Quiet)
	}

	return profile.Start(opts...)
}
