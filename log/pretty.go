package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by prettyHandler. The styles are bound to a
// renderer for the handler's output so color is dropped when the writer is
// not a terminal.
type palette struct {
	key, time, source, msg lipgloss.Style
	levels                 map[slog.Level]lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	level := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
	}

	return &palette{
		key:    r.NewStyle().Foreground(lipgloss.Color("8")),
		time:   r.NewStyle().Foreground(lipgloss.Color("8")),
		source: r.NewStyle().Foreground(lipgloss.Color("4")),
		msg:    r.NewStyle().Bold(true),
		levels: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): level("5"),
			slog.Level(LevelDebug): level("6"),
			slog.Level(LevelInfo):  level("2"),
			slog.Level(LevelWarn):  level("3"),
			slog.Level(LevelError): level("1"),
		},
	}
}

func (p *palette) level(l slog.Level) lipgloss.Style {
	for _, named := range []Level{LevelError, LevelWarn, LevelInfo, LevelDebug} {
		if l >= slog.Level(named) {
			return p.levels[slog.Level(named)]
		}
	}

	return p.levels[slog.Level(LevelTrace)]
}

// prettyHandler is a colorized single-line text handler.
type prettyHandler struct {
	opts    slog.HandlerOptions
	mu      *sync.Mutex
	w       io.Writer
	palette *palette
	prefix  string
	preset  []byte
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:    *opts,
		mu:      &sync.Mutex{},
		w:       w,
		palette: newPalette(w),
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		if a := h.replace(slog.Time(slog.TimeKey, r.Time)); !a.Equal(slog.Attr{}) {
			buf.WriteString(h.palette.time.Render(a.Value.String()))
			buf.WriteByte(' ')
		}
	}

	lvl := h.replace(slog.Any(slog.LevelKey, r.Level))
	buf.WriteString(h.palette.level(r.Level).Render(fmt.Sprintf("%-5s", lvl.Value.String())))
	buf.WriteByte(' ')

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			loc := src.File[strings.LastIndexByte(src.File, '/')+1:] + ":" + strconv.Itoa(src.Line)
			buf.WriteString(h.palette.source.Render(loc))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(h.palette.msg.Render(r.Message))
	buf.Write(h.preset)

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	buf := bytes.NewBuffer(append([]byte(nil), h.preset...))
	for _, a := range attrs {
		h.writeAttr(buf, h.prefix, a)
	}

	c := *h
	c.preset = buf.Bytes()

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, prefix, ga)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.palette.key.Render(prefix + a.Key + "="))
	buf.WriteString(formatValue(a.Value))
}

// formatValue renders v without quotes unless it contains white space, an
// equal sign or a quote.
func formatValue(v slog.Value) string {
	var s string

	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		return v.String()
	}

	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}

	return s
}
