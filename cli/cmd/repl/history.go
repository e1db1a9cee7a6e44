package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
)

const baseHistory = "history.utf8"

// Mode prefixes in the history file.
const (
	evalPrefix = "E:"
	ctrlPrefix = "C:"
)

// HistoryEntry is one submitted line and the mode it was entered in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

func (e HistoryEntry) String() string {
	if e.Mode == modeCtrl {
		return ctrlPrefix + e.Line
	}

	return evalPrefix + e.Line
}

func parseEntry(line string) HistoryEntry {
	if s, ok := strings.CutPrefix(line, ctrlPrefix); ok {
		return HistoryEntry{Line: s, Mode: modeCtrl}
	}

	s, _ := strings.CutPrefix(line, evalPrefix)

	return HistoryEntry{Line: s, Mode: modeEval}
}

// History is the persistent list of submitted lines, oldest first. A line
// entered again moves to the end. It is safe for concurrent use.
type History struct {
	path    string
	mu      sync.RWMutex
	entries []HistoryEntry
}

// NewHistory returns an empty history stored at path. An empty path keeps the
// history in memory only.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with the content of the history file. A missing
// file is an empty history.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil

	if h.path == "" {
		return nil
	}

	f, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return ErrHistory.Wrap(err).With(slog.String("file", h.path))
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			h.entries = append(h.entries, parseEntry(line))
		}
	}

	if err := sc.Err(); err != nil {
		return ErrHistory.Wrap(err).With(slog.String("file", h.path))
	}

	return nil
}

// Add appends line in mode. Blank lines are ignored.
func (h *History) Add(line string, mode inputMode) error {
	e := HistoryEntry{Line: strings.TrimSpace(line), Mode: mode}
	if e.Line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == e {
		return nil
	}

	if i := slices.Index(h.entries, e); i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
		h.entries = append(h.entries, e)

		return h.rewrite()
	}

	h.entries = append(h.entries, e)

	return h.append(e)
}

// Entry returns the entry at index i, 0 being the oldest.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds.With(slog.Int("index", i))
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of every entry.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

func (h *History) append(e HistoryEntry) error {
	if h.path == "" {
		return nil
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return ErrHistory.Wrap(err).With(slog.String("file", h.path))
	}
	defer f.Close()

	if _, err := f.WriteString(e.String() + "\n"); err != nil {
		return ErrHistory.Wrap(err).With(slog.String("file", h.path))
	}

	return nil
}

// rewrite replaces the history file with the current entries. The caller
// holds h.mu.
func (h *History) rewrite() error {
	if h.path == "" {
		return nil
	}

	var sb strings.Builder
	for _, e := range h.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(h.path, []byte(sb.String()), 0o600); err != nil {
		return ErrHistory.Wrap(err).With(slog.String("file", h.path))
	}

	return nil
}
