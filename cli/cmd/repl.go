package cmd

import (
	"context"

	"github.com/js-lib-com/wood-sub003/cli/cmd/repl"
	"github.com/js-lib-com/wood-sub003/log"
)

var _ repl.Session = (*Session)(nil)

// Repl starts the interactive shell.
type Repl struct {
	Param   map[string]string `help:"Value answering @param/NAME, as NAME=VALUE" short:"p"`
	History bool              `default:"true" help:"Keep the input history in the cache directory" negatable:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()

	s, err := OpenSession(ctx, projectDirFrom(ctx), logger)
	if err != nil {
		return err
	}

	s.SetParams(r.Param)

	var cache string
	if ktx := kongContextFrom(ctx); ktx != nil && r.History {
		cache = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, s, cache, logger)
}
