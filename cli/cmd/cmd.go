package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	outputKey     struct{}
	projectDirKey struct{}
)

// WithOutput returns a new context.Context whose commands print to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// outputFrom returns the writer stored by [WithOutput], or os.Stdout.
func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// WithProjectDir returns a new context.Context whose commands search for the
// project starting at dir.
func WithProjectDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, projectDirKey{}, dir)
}

// projectDirFrom returns the directory stored by [WithProjectDir], or ".".
func projectDirFrom(ctx context.Context) string {
	if dir, ok := ctx.Value(projectDirKey{}).(string); ok && dir != "" {
		return dir
	}

	return "."
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// source is one input of the resolve command.
type source struct {
	// path is the file path as resolved on disk, or "-" for stdin.
	path string
	io.ReadCloser
}

// openSources opens every named file once. Duplicates are detected by
// resolving symlinks and comparing device/inode pairs. All occurrences of "-"
// are replaced with a single stdin reader placed last so it reads after all
// regular files.
func openSources(paths []string) ([]source, error) {
	srcs := make([]source, 0, len(paths))
	seen := make(map[fileKey]struct{})

	var stdinKey fileKey
	if info, err := os.Stdin.Stat(); err == nil {
		stdinKey, _ = makeFileKey(info)
	}

	hasStdin := false

	for _, p := range paths {
		if p == stdinSource {
			hasStdin = true

			continue
		}

		src, ok, err := openUniqueFile(p, seen)
		if err != nil {
			closeSources(srcs)

			return nil, err
		}

		if ok {
			srcs = append(srcs, src)
		}
	}

	// Stdin may have been included via "-" or as a named file.
	if _, named := seen[stdinKey]; hasStdin && !named {
		srcs = append(srcs, source{path: stdinSource, ReadCloser: io.NopCloser(os.Stdin)})
	}

	return srcs, nil
}

func closeSources(srcs []source) {
	for _, s := range srcs {
		_ = s.Close()
	}
}

// openUniqueFile opens the file at path if it hasn't been seen before.
// It reports false for a duplicate.
func openUniqueFile(path string, seen map[fileKey]struct{}) (source, bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return source{}, false, ErrOpenSource.Wrap(err).With(slog.String("file", path))
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return source{}, false, ErrOpenSource.Wrap(err).With(slog.String("file", path))
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return source{}, false, ErrOpenSource.Wrap(err).With(slog.String("file", path))
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return source{}, false, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return source{}, false, ErrOpenSource.Wrap(err).With(slog.String("file", path))
	}

	return source{path: resolved, ReadCloser: file}, true, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}
