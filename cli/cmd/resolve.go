package cmd

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/js-lib-com/wood-sub003/log"
)

// Resolve replaces the placeholders of source files.
type Resolve struct {
	Files  []string          `arg:"" default:"-" help:"Source files, or '-' for stdin"                  name:"file"`
	Locale string            `                   help:"Locale of the resolved text (project default)"              short:"l"`
	Param  map[string]string `                   help:"Value answering @param/NAME, as NAME=VALUE"                  short:"p"`
	Output string            `                   help:"Write each file below this directory instead of stdout"      short:"o" type:"path"`
}

// Run executes the resolve command.
func (r *Resolve) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s, err := OpenSession(ctx, projectDirFrom(ctx), log.Default())
	if err != nil {
		return err
	}

	s.SetParams(r.Param)

	return r.run(ctx, s)
}

// run resolves every file with s.
func (r *Resolve) run(ctx context.Context, s *Session) error {
	srcs, err := openSources(r.Files)
	if err != nil {
		return err
	}
	defer closeSources(srcs)

	out := outputFrom(ctx)

	for _, src := range srcs {
		origin, err := s.Origin(src.path)
		if err != nil {
			return err
		}

		if err := r.resolve(ctx, s, src, origin, out); err != nil {
			return err
		}
	}

	return nil
}

func (r *Resolve) resolve(ctx context.Context, s *Session, src source, origin string, stdout io.Writer) error {
	if r.Output == "" || src.path == stdinSource {
		w := bufio.NewWriter(stdout)

		if _, err := s.Copy(w, src, origin, r.Locale); err != nil {
			return err
		}

		if err := w.Flush(); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	dst := filepath.Join(r.Output, filepath.FromSlash(origin))

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", dst))
	}

	f, err := os.Create(dst)
	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", dst))
	}

	// A failed file is removed rather than left half written.
	discard := func(err error) error {
		_ = f.Close()
		_ = os.Remove(dst)

		return err
	}

	w := bufio.NewWriter(f)

	n, err := s.Copy(w, src, origin, r.Locale)
	if err != nil {
		return discard(err)
	}

	if err := w.Flush(); err != nil {
		return discard(ErrWriteOutput.Wrap(err).With(slog.String("file", dst)))
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(dst)

		return ErrWriteOutput.Wrap(err).With(slog.String("file", dst))
	}

	log.DebugContext(ctx, "resolved",
		slog.String("origin", origin),
		slog.String("file", dst),
		slog.Int64("bytes", n),
	)

	return nil
}
