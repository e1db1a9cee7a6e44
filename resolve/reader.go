package resolve

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/js-lib-com/wood-sub003/eval"
	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/pkg"
	"github.com/js-lib-com/wood-sub003/ref"
)

const evalKeyword = "eval"

// isTerminator reports whether c ends a reference name. The terminator is
// not part of the name and is copied to the output.
func isTerminator(c rune) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '"', '\'', '<', ';', ')':
		return true
	default:
		return false
	}
}

// Option configures a [Reader].
type Option func(*config)

type config struct {
	evaluator *eval.Evaluator
	logger    log.Logger
	strict    bool
}

// WithEvaluator sets the evaluator for "@eval(...)" placeholders. The
// default is [eval.Default].
func WithEvaluator(e *eval.Evaluator) Option {
	return func(c *config) { c.evaluator = e }
}

// WithLogger sets the logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger.Component("resolve") }
}

// WithStrict makes a well formed reference with an unknown category, such as
// "@media/print", fail with [ErrInvalidReference]. By default it is copied to
// the output unchanged.
func WithStrict(strict bool) Option {
	return func(c *config) { c.strict = strict }
}

func makeConfig(opts ...Option) config {
	var c config

	for _, opt := range opts {
		opt(&c)
	}

	if c.evaluator == nil {
		c.evaluator = eval.Default()
	}

	return c
}

// Reader copies text from a source while replacing placeholders.
//
// Text outside placeholders passes through unchanged. A reference
// "@category/name" extends to the first terminator or the end of input and
// is replaced by its [Handler] value. "@eval(...)" is replaced by the result
// of the balanced expression it encloses, after the references inside the
// expression are resolved. "@@" produces a single "@". Any other "@" is plain
// text.
//
// The first error ends the stream; it is returned by every later call.
type Reader struct {
	config

	src     io.RuneReader
	origin  string
	handler Handler

	pending []rune         // runes read ahead of the scan position
	out     strings.Reader // replacement text not yet returned
	carry   []byte         // bytes of a rune split by a short Read buffer
	refs    int
	err     error
}

// NewReader returns a [Reader] that resolves placeholders in src. Origin
// names the source in errors and is passed to the handler.
func NewReader(src io.Reader, origin string, h Handler, opts ...Option) *Reader {
	return newReader(src, origin, h, makeConfig(opts...))
}

func newReader(src io.Reader, origin string, h Handler, cfg config) *Reader {
	rr, ok := src.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(src)
	}

	return &Reader{config: cfg, src: rr, origin: origin, handler: h}
}

// References returns the number of placeholders replaced so far.
func (r *Reader) References() int { return r.refs }

// Read implements [io.Reader].
func (r *Reader) Read(p []byte) (int, error) {
	n := copy(p, r.carry)
	r.carry = r.carry[n:]

	for n < len(p) {
		c, size, err := r.ReadRune()
		if err != nil {
			if n > 0 {
				return n, nil
			}

			return 0, err
		}

		if size <= len(p)-n {
			n += utf8.EncodeRune(p[n:], c)

			continue
		}

		var b [utf8.UTFMax]byte

		k := utf8.EncodeRune(b[:], c)
		m := copy(p[n:], b[:k])
		r.carry = append(r.carry[:0], b[m:k]...)
		n += m
	}

	return n, nil
}

// ReadRune implements [io.RuneReader].
func (r *Reader) ReadRune() (rune, int, error) {
	for {
		if r.out.Len() > 0 {
			c, _, err := r.out.ReadRune()

			// An invalid byte reads as utf8.RuneError, which encodes wider.
			return c, utf8.RuneLen(c), err
		}

		if r.err != nil {
			return 0, 0, r.err
		}

		c, err := r.next()
		if err != nil {
			r.err = err

			continue
		}

		if c != ref.Mark {
			return c, utf8.RuneLen(c), nil
		}

		if err := r.meta(); err != nil {
			r.err = err
		}
	}
}

// meta scans what follows a mark and queues its replacement.
func (r *Reader) meta() error {
	c, err := r.next()

	switch {
	case errors.Is(err, io.EOF):
		r.emit(string(ref.Mark))

		return nil
	case err != nil:
		return err
	case c == ref.Mark:
		r.emit(string(ref.Mark))

		return nil
	}

	var word strings.Builder

	for unicode.IsLetter(c) {
		word.WriteRune(c)

		c, err = r.next()
		if errors.Is(err, io.EOF) {
			r.emit(string(ref.Mark) + word.String())

			return nil
		}

		if err != nil {
			return err
		}
	}

	switch w := word.String(); {
	case c == '(' && strings.EqualFold(w, evalKeyword):
		return r.expression()
	case c == ref.Separator && w != "":
		return r.reference(w)
	default:
		r.unread(c)
		r.emit(string(ref.Mark) + w)

		return nil
	}
}

// reference reads a reference name up to the next terminator and queues the
// handler's value.
func (r *Reader) reference(category string) error {
	var name strings.Builder

	for {
		c, err := r.next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return err
		}

		if isTerminator(c) {
			r.unread(c)

			break
		}

		name.WriteRune(c)
	}

	token := string(ref.Mark) + category + string(ref.Separator) + name.String()

	x := ref.Parse(token, r.origin)
	if x.IsUnknown() {
		if r.strict {
			return ErrInvalidReference.With(
				slog.String("reference", token),
				slog.String("origin", r.origin),
			)
		}

		r.logger.Trace("pass through", slog.String("token", token))
		r.emit(token)

		return nil
	}

	value, err := r.lookup(x)
	if err != nil {
		return err
	}

	r.emit(value)

	return nil
}

// expression reads a balanced expression following "@eval(" and queues its
// value.
func (r *Reader) expression() error {
	var body strings.Builder

	body.WriteByte('(')

	for depth := 1; depth > 0; {
		c, err := r.next()
		if errors.Is(err, io.EOF) {
			return ErrUnterminated.With(
				slog.String("expression", body.String()),
				slog.String("origin", r.origin),
			)
		}

		if err != nil {
			return err
		}

		switch c {
		case '(':
			depth++
		case ')':
			depth--
		}

		body.WriteRune(c)
	}

	text, err := resolveString(body.String(), r.origin, r.handler, r.config)
	if err != nil {
		return err
	}

	value, err := r.evaluator.Eval(text)
	if err != nil {
		return pkg.WrapError(err).With(slog.String("origin", r.origin))
	}

	r.refs++

	if r.logger.Tracing() {
		r.logger.Trace("evaluated",
			slog.String("expression", text),
			slog.String("value", value),
			slog.String("origin", r.origin),
		)
	}
	r.emit(value)

	return nil
}

func (r *Reader) lookup(x ref.Reference) (string, error) {
	if r.handler == nil {
		return "", r.notFound(x)
	}

	value, ok, err := r.handler.OnReference(x, r.origin)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", r.notFound(x)
	}

	r.refs++

	if r.logger.Tracing() {
		r.logger.Trace("resolved",
			slog.String("reference", x.String()),
			slog.String("origin", r.origin),
		)
	}

	return value, nil
}

func (r *Reader) notFound(x ref.Reference) error {
	return ErrNotFound.With(
		slog.String("reference", x.String()),
		slog.String("origin", r.origin),
	)
}

func (r *Reader) emit(s string) { r.out.Reset(s) }

func (r *Reader) unread(c rune) { r.pending = append(r.pending, c) }

func (r *Reader) next() (rune, error) {
	if n := len(r.pending); n > 0 {
		c := r.pending[n-1]
		r.pending = r.pending[:n-1]

		return c, nil
	}

	c, _, err := r.src.ReadRune()
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, ErrRead.Wrap(err).With(slog.String("origin", r.origin))
	}

	return c, err
}

// String resolves the placeholders in text.
func String(text, origin string, h Handler, opts ...Option) (string, error) {
	return resolveString(text, origin, h, makeConfig(opts...))
}

func resolveString(text, origin string, h Handler, cfg config) (string, error) {
	if !strings.ContainsRune(text, ref.Mark) {
		return text, nil
	}

	var sb strings.Builder

	sb.Grow(len(text))

	if _, err := io.Copy(&sb, newReader(strings.NewReader(text), origin, h, cfg)); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// Copy writes src to w with its placeholders resolved and returns the number
// of bytes written.
func Copy(w io.Writer, src io.Reader, origin string, h Handler, opts ...Option) (int64, error) {
	return io.Copy(w, NewReader(src, origin, h, opts...))
}
