package cli

import "github.com/js-lib-com/wood-sub003/pkg"

var (
	ErrDirectory = pkg.NewError("create directory")
	ErrConfig    = pkg.NewError("read configuration file")
	ErrProfile   = pkg.NewError("start profiler")
)
