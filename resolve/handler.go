package resolve

import "github.com/js-lib-com/wood-sub003/ref"

// Handler answers the references found by a [Reader].
//
// OnReference returns the replacement text and true, or false when the
// reference does not resolve. A non-nil error aborts the scan. The
// replacement is spliced into the output verbatim; a handler whose values may
// themselves contain placeholders resolves them before returning.
type Handler interface {
	OnReference(r ref.Reference, origin string) (string, bool, error)
}

// HandlerFunc adapts a function to the [Handler] interface.
type HandlerFunc func(r ref.Reference, origin string) (string, bool, error)

// OnReference implements [Handler].
func (f HandlerFunc) OnReference(r ref.Reference, origin string) (string, bool, error) {
	return f(r, origin)
}

// Map is a [Handler] answering from a fixed table keyed by placeholder text,
// for example "@param/title". It is convenient for parameters and tests.
type Map map[string]string

// OnReference implements [Handler].
func (m Map) OnReference(r ref.Reference, _ string) (string, bool, error) {
	v, ok := m[r.String()]

	return v, ok, nil
}

// Chain returns a [Handler] that asks each handler in turn and answers with
// the first one that resolves.
func Chain(handlers ...Handler) Handler {
	return HandlerFunc(func(r ref.Reference, origin string) (string, bool, error) {
		for _, h := range handlers {
			v, ok, err := h.OnReference(r, origin)
			if err != nil || ok {
				return v, ok, err
			}
		}

		return "", false, nil
	})
}
