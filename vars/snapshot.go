package vars

import (
	"context"
	"encoding/binary"
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/ref"
	"github.com/js-lib-com/wood-sub003/resolve"
)

// Snapshot is an immutable view of every variable in a project. It is safe
// for concurrent use.
type Snapshot struct {
	scopes   map[string]*Scope
	fallback []*Scope
	locale   string
	digest   uint64
	sources  int
}

// NewSnapshot groups docs into scopes by their Dir. Lookups that miss the
// scope of the referencing file continue through the fallback scopes in
// order. Locale names the project default; values without a locale variant
// answer for it.
func NewSnapshot(docs []*Document, locale string, fallback ...string) *Snapshot {
	s := &Snapshot{
		scopes:  make(map[string]*Scope),
		locale:  locale,
		sources: len(docs),
	}

	sorted := slices.Clone(docs)
	slices.SortFunc(sorted, func(a, b *Document) int { return strings.Compare(a.Path, b.Path) })

	h := xxh3.New()

	var sum [8]byte

	for _, doc := range sorted {
		sc, ok := s.scopes[doc.Dir]
		if !ok {
			sc = NewScope(doc.Dir)
			s.scopes[doc.Dir] = sc
		}

		sc.Add(doc)

		_, _ = h.WriteString(doc.Path)
		binary.LittleEndian.PutUint64(sum[:], doc.Digest)
		_, _ = h.Write(sum[:])
	}

	s.digest = h.Sum64()

	for _, dir := range fallback {
		if sc, ok := s.scopes[dir]; ok && !slices.Contains(s.fallback, sc) {
			s.fallback = append(s.fallback, sc)
		}
	}

	return s
}

// Digest identifies the content of every source in s. Two snapshots built
// from the same files have the same digest.
func (s *Snapshot) Digest() uint64 { return s.digest }

// Sources returns the number of definition sources in s.
func (s *Snapshot) Sources() int { return s.sources }

// Locale returns the project default locale.
func (s *Snapshot) Locale() string { return s.locale }

// Scope returns the scope for dir, or nil.
func (s *Snapshot) Scope(dir string) *Scope { return s.scopes[dir] }

// Dirs returns the scope keys in sorted order.
func (s *Snapshot) Dirs() []string { return slices.Sorted(maps.Keys(s.scopes)) }

// Keys returns every key defined in any scope, sorted and without duplicates.
func (s *Snapshot) Keys() []ref.Key {
	set := make(map[ref.Key]struct{})

	for _, sc := range s.scopes {
		for k := range sc.values {
			set[k] = struct{}{}
		}
	}

	return slices.SortedFunc(maps.Keys(set), compareKeys)
}

// chain returns the scopes consulted for a reference from a file in dir.
func (s *Snapshot) chain(dir string) []*Scope {
	local, ok := s.scopes[dir]
	if !ok || slices.Contains(s.fallback, local) {
		return s.fallback
	}

	return append([]*Scope{local}, s.fallback...)
}

func (s *Snapshot) scopeValue(sc *Scope, key ref.Key, locale string) (string, bool) {
	if v, ok := sc.Get(key, locale); ok {
		return v, true
	}

	if s.locale != "" && locale != s.locale {
		return sc.Get(key, s.locale)
	}

	return "", false
}

// Value returns the raw, unresolved value of key for a file in dir.
func (s *Snapshot) Value(key ref.Key, locale, dir string) (string, bool) {
	for _, sc := range s.chain(dir) {
		if v, ok := s.scopeValue(sc, key, locale); ok {
			return v, true
		}
	}

	return "", false
}

// Entry is one effective variable.
type Entry struct {
	Key   ref.Key
	Value string
	Dir   string
}

// Effective returns the raw values visible from a file in dir, one per key,
// sorted by key.
func (s *Snapshot) Effective(dir, locale string) []Entry {
	seen := make(map[ref.Key]Entry)

	for _, sc := range s.chain(dir) {
		for k := range sc.values {
			if _, ok := seen[k]; ok {
				continue
			}

			if v, ok := s.scopeValue(sc, k, locale); ok {
				seen[k] = Entry{Key: k, Value: v, Dir: sc.Dir}
			}
		}
	}

	return slices.SortedFunc(maps.Values(seen), func(a, b Entry) int {
		return compareKeys(a.Key, b.Key)
	})
}

// Get resolves the variable named by r for the file origin. The raw value is
// passed back through the resolver with h, so references inside it expand
// too. Get reports false when the variable is missing or empty.
//
// rc tracks the variables being expanded; a variable that is reached again
// while it is still being expanded fails with [ErrCircularReference].
func (s *Snapshot) Get(
	rc *Context,
	locale string,
	r ref.Reference,
	origin string,
	h resolve.Handler,
	opts ...resolve.Option,
) (string, bool, error) {
	value, ok := s.Value(r.Key(), locale, path.Dir(origin))
	if !ok {
		return "", false, nil
	}

	trace := origin + ":" + r.String()
	if !rc.enter(trace) {
		return "", false, ErrCircularReference.With(
			slog.String("reference", r.String()),
			slog.String("origin", origin),
			slog.String("trace", strings.Join(append(rc.Trace(), trace), " -> ")),
		)
	}
	defer rc.leave(trace)

	resolved, err := resolve.String(value, origin, h, opts...)
	if err != nil {
		return "", false, err
	}

	return resolved, true, nil
}

// Layout locates the definition sources of a project.
type Layout struct {
	// Root is the project directory. Scope keys are slash separated paths
	// relative to it.
	Root string
	// Asset and Theme are the project-wide fallback directories, relative to
	// Root. Asset is consulted first.
	Asset string
	Theme string
	// Search lists extra fallback directories consulted after the theme. They
	// are not walked recursively.
	Search []string
	// Filter, if set, selects the files below Root by their slash separated
	// path relative to Root.
	Filter func(rel string) bool
	// Locale is the project default locale.
	Locale string
	// Workers bounds the number of files parsed concurrently. Zero means
	// GOMAXPROCS.
	Workers int
	Logger  log.Logger
}

type source struct {
	path, dir string
}

// Build loads every definition described by l into a new snapshot.
func Build(ctx context.Context, l Layout) (*Snapshot, error) {
	sources, err := l.sources(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]*Document, len(sources))

	g, gctx := errgroup.WithContext(ctx)

	workers := l.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g.SetLimit(workers)

	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			doc, err := LoadFile(src.path)
			if errors.Is(err, ErrBadResourceType) {
				l.Logger.TraceContext(gctx, "skip", slog.String("file", src.path))

				return nil
			}

			if err != nil {
				return err
			}

			doc.Dir = src.dir
			docs[i] = doc

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs = slices.DeleteFunc(docs, func(d *Document) bool { return d == nil })

	fallback := []string{cleanDir(l.Asset), cleanDir(l.Theme)}
	for _, dir := range l.Search {
		fallback = append(fallback, l.searchKey(dir))
	}

	s := NewSnapshot(docs, l.Locale, fallback...)

	l.Logger.DebugContext(ctx, "variables loaded",
		slog.String("root", l.Root),
		slog.Int("sources", s.Sources()),
		slog.Int("scopes", len(s.scopes)),
	)

	return s, nil
}

func cleanDir(dir string) string {
	if dir == "" {
		return ""
	}

	return path.Clean(filepath.ToSlash(dir))
}

func (l Layout) searchKey(dir string) string {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(l.Root, dir)
	}

	return filepath.ToSlash(filepath.Clean(dir))
}

// sources lists the definition files below the root and in the search
// directories, with the scope key of each.
func (l Layout) sources(ctx context.Context) ([]source, error) {
	var out []source

	err := filepath.WalkDir(l.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(l.Root, p)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}

			return nil
		}

		if !IsDefinition(p) || (l.Filter != nil && !l.Filter(rel)) {
			return nil
		}

		out = append(out, source{path: p, dir: path.Dir(rel)})

		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		return nil, ErrReadSource.Wrap(err).With(slog.String("dir", l.Root))
	}

	for _, dir := range l.Search {
		key := l.searchKey(dir)

		entries, err := readDirNames(filepath.FromSlash(key))
		if err != nil {
			return nil, err
		}

		for _, name := range entries {
			p := filepath.Join(filepath.FromSlash(key), name)
			if IsDefinition(p) {
				out = append(out, source{path: p, dir: key})
			}
		}
	}

	return out, nil
}

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("dir", dir))
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	return names, nil
}
