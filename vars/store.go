package vars

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/js-lib-com/wood-sub003/ref"
	"github.com/js-lib-com/wood-sub003/resolve"
)

// Store publishes the current [Snapshot]. Readers pin a snapshot for the
// duration of one resolution while [Store.Reload] builds its replacement and
// swaps it in with a single atomic store.
type Store struct {
	current atomic.Pointer[Snapshot]
	opts    []resolve.Option
}

// NewStore returns a store publishing s. The resolver options apply to the
// values re-fed through the resolver by [Store.Get].
func NewStore(s *Snapshot, opts ...resolve.Option) *Store {
	if s == nil {
		s = NewSnapshot(nil, "")
	}

	st := &Store{opts: opts}
	st.current.Store(s)

	return st
}

// Snapshot returns the current snapshot.
func (st *Store) Snapshot() *Snapshot { return st.current.Load() }

// Swap publishes s unless its digest equals that of the current snapshot.
// It reports whether s was published.
func (st *Store) Swap(s *Snapshot) bool {
	for {
		old := st.current.Load()
		if old.Digest() == s.Digest() && old.Sources() == s.Sources() {
			return false
		}

		if st.current.CompareAndSwap(old, s) {
			return true
		}
	}
}

// Reload builds a new snapshot from l and publishes it. A build error leaves
// the current snapshot in place.
func (st *Store) Reload(ctx context.Context, l Layout) (bool, error) {
	s, err := Build(ctx, l)
	if err != nil {
		return false, err
	}

	changed := st.Swap(s)

	l.Logger.InfoContext(ctx, "reload",
		slog.Bool("changed", changed),
		slog.Int("sources", s.Sources()),
	)

	return changed, nil
}

// Get resolves a variable against the current snapshot. See [Snapshot.Get].
func (st *Store) Get(
	rc *Context,
	locale string,
	r ref.Reference,
	origin string,
	h resolve.Handler,
) (string, bool, error) {
	return st.Snapshot().Get(rc, locale, r, origin, h, st.opts...)
}

// Lookup returns a handler for one top-level resolution. It pins the current
// snapshot, owns a fresh [Context], answers variable references for locale
// and forwards every other reference to next. A nil next answers nothing.
func (st *Store) Lookup(locale string, next resolve.Handler) resolve.Handler {
	snap := st.Snapshot()
	rc := NewContext()

	var h resolve.HandlerFunc

	h = func(r ref.Reference, origin string) (string, bool, error) {
		if r.IsVariable() {
			return snap.Get(rc, locale, r, origin, h, st.opts...)
		}

		if next == nil {
			return "", false, nil
		}

		return next.OnReference(r, origin)
	}

	return h
}
