package cmd

import "github.com/js-lib-com/wood-sub003/pkg"

var (
	ErrOpenSource  = pkg.NewError("open source file")
	ErrWriteOutput = pkg.NewError("write output")
	ErrOutside     = pkg.NewError("file outside project")
	ErrJSONMarshal = pkg.NewError("marshal JSON")
	ErrYAMLMarshal = pkg.NewError("marshal YAML")
	ErrWriteConfig = pkg.NewError("write configuration file")
	ErrFileExists  = pkg.NewError("file exists (use --force to overwrite)")
)
