package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_AddLoad(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(file)

	for _, e := range []HistoryEntry{
		{Line: "@string/title", Mode: modeEval},
		{Line: "locale fr", Mode: modeCtrl},
		{Line: "  ", Mode: modeEval},
		{Line: "@string/title", Mode: modeEval},
		{Line: "@string/title", Mode: modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q) error = %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{Line: "locale fr", Mode: modeCtrl},
		{Line: "@string/title", Mode: modeEval},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Fatalf("Entries() = %v, want %v", got, want)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}

	if got, w := string(data), "C:locale fr\nE:@string/title\n"; got != w {
		t.Errorf("file = %q, want %q", got, w)
	}

	reloaded := NewHistory(file)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("reloaded Entries() = %v, want %v", got, want)
	}
}

func TestHistory_SameLineOtherMode(t *testing.T) {
	t.Parallel()

	h := NewHistory("")

	_ = h.Add("list", modeCtrl)
	_ = h.Add("list", modeEval)

	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}

func TestHistory_Entry(t *testing.T) {
	t.Parallel()

	h := NewHistory("")
	_ = h.Add("one", modeEval)

	if e, err := h.Entry(0); err != nil || e.Line != "one" {
		t.Errorf("Entry(0) = %v, %v", e, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}

func TestHistory_LoadMissing(t *testing.T) {
	t.Parallel()

	h := NewHistory(filepath.Join(t.TempDir(), "none", baseHistory))
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}

	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestParseEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:@dimen/gap", HistoryEntry{Line: "@dimen/gap", Mode: modeEval}},
		{"C:reload", HistoryEntry{Line: "reload", Mode: modeCtrl}},
		{"legacy line", HistoryEntry{Line: "legacy line", Mode: modeEval}},
	}

	for _, tt := range tests {
		if got := parseEntry(tt.line); got != tt.want {
			t.Errorf("parseEntry(%q) = %v, want %v", tt.line, got, tt.want)
		}

		if got := parseEntry(tt.want.String()); got != tt.want {
			t.Errorf("parseEntry(String()) = %v, want %v", got, tt.want)
		}
	}
}
