//go:build pprof

package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Enable profiling"         placeholder:"${enum}" short:"P"`
	Dir  string `default:"${pprofDir}"                          help:"Profile output directory"                                 type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(cacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start starts profiling if a mode is set.
func (f pprofConfig) start(ctx context.Context) (stop func(), err error) {
	p, err := profile.Start(
		profile.WithMode(f.Mode),
		profile.WithDir(f.Dir),
		profile.WithQuiet(true),
		profile.WithLogger(log.Default()),
	)
	if err != nil {
		return func() {}, ErrProfile.Wrap(err)
	}

	return p.Stop, nil
}
