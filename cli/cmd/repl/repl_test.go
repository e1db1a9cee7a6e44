package repl

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/js-lib-com/wood-sub003/log"
)

func typeText(m model, s string) model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})

	return next.(model)
}

func press(m model, k tea.KeyType) model {
	next, _ := m.Update(tea.KeyMsg{Type: k})

	return next.(model)
}

func TestRun_NoSession(t *testing.T) {
	t.Parallel()

	if err := Run(context.Background(), nil, "", log.Logger{}); !errors.Is(err, ErrNoSession) {
		t.Errorf("Run(nil) error = %v, want ErrNoSession", err)
	}
}

func TestModel_Resolve(t *testing.T) {
	t.Parallel()

	m := typeText(testModel(newFakeSession()), "@string/title")

	m, cmd := m.execute()
	if cmd == nil {
		t.Fatal("execute() returned no command")
	}

	if m.input.Value() != "" {
		t.Errorf("input = %q, want empty", m.input.Value())
	}

	if e, err := m.history.Entry(0); err != nil || e.Line != "@string/title" || e.Mode != modeEval {
		t.Errorf("history entry = %v, %v", e, err)
	}

	if m.historyIdx != m.history.Len() {
		t.Errorf("historyIdx = %d, want %d", m.historyIdx, m.history.Len())
	}
}

func TestModel_ExecuteBlank(t *testing.T) {
	t.Parallel()

	m := typeText(testModel(newFakeSession()), "   ")

	if _, cmd := m.execute(); cmd != nil {
		t.Error("blank input produced a command")
	}
}

func TestModel_Commands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		check func(*testing.T, model, *fakeSession)
	}{
		{"locale", "locale fr", func(t *testing.T, m model, _ *fakeSession) {
			if m.locale != "fr" {
				t.Errorf("locale = %q, want fr", m.locale)
			}
		}},
		{"dir", "dir res/layout/", func(t *testing.T, m model, _ *fakeSession) {
			if m.origin() != "res/layout/repl" {
				t.Errorf("origin = %q, want res/layout/repl", m.origin())
			}
		}},
		{"reload", "reload", func(t *testing.T, _ model, s *fakeSession) {
			if s.reloads != 1 {
				t.Errorf("reloads = %d, want 1", s.reloads)
			}
		}},
		{"quit", "quit", func(t *testing.T, m model, _ *fakeSession) {
			if !m.quit {
				t.Error("quit not set")
			}

			if m.View() != "" {
				t.Errorf("View() after quit = %q", m.View())
			}
		}},
		{"unknown", "frobnicate", func(t *testing.T, m model, _ *fakeSession) {
			if m.quit || m.locale != "en" {
				t.Errorf("unknown command changed state: %+v", m)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newFakeSession()
			m := press(testModel(s), tea.KeyEsc)

			if m.mode != modeCtrl {
				t.Fatalf("mode = %v, want modeCtrl", m.mode)
			}

			m, cmd := typeText(m, tt.input).execute()
			if cmd == nil {
				t.Fatal("execute() returned no command")
			}

			tt.check(t, m, s)
		})
	}
}

func TestModel_List(t *testing.T) {
	t.Parallel()

	m := testModel(newFakeSession())

	all := m.list("")
	for _, r := range []string{"@dimen/gap", "@string/title", "a fairly long value"} {
		if !strings.Contains(all, r) {
			t.Errorf("list() = %q, missing %q", all, r)
		}
	}

	if got := m.list("dimen"); strings.Contains(got, "@string/title") {
		t.Errorf("list(dimen) = %q, includes @string/title", got)
	}

	if got := m.list("nothing"); !strings.Contains(got, "no variables") {
		t.Errorf("list(nothing) = %q", got)
	}
}

func TestModel_SwitchModeKeepsInput(t *testing.T) {
	t.Parallel()

	m := typeText(testModel(newFakeSession()), "draft")
	m = press(m, tea.KeyEsc)

	if m.input.Value() != "" {
		t.Errorf("command input = %q, want empty", m.input.Value())
	}

	m = press(typeText(m, "rel"), tea.KeyEsc)

	if m.mode != modeEval || m.input.Value() != "draft" {
		t.Errorf("mode = %v, input = %q, want modeEval, draft", m.mode, m.input.Value())
	}

	if m = press(m, tea.KeyEsc); m.input.Value() != "rel" {
		t.Errorf("command input = %q, want rel", m.input.Value())
	}
}

func TestModel_TabCycle(t *testing.T) {
	t.Parallel()

	m := typeText(testModel(newFakeSession()), "@str")
	if len(m.matches) != 2 {
		t.Fatalf("matches = %v, want 2", m.matches)
	}

	first, second := m.matches[0].Str, m.matches[1].Str

	m = press(m, tea.KeyTab)
	if !m.cycling || m.input.Value() != first {
		t.Errorf("after Tab input = %q, want %q", m.input.Value(), first)
	}

	m = press(m, tea.KeyTab)
	if m.input.Value() != second {
		t.Errorf("after Tab Tab input = %q, want %q", m.input.Value(), second)
	}

	m = press(m, tea.KeyShiftTab)
	if m.input.Value() != first {
		t.Errorf("after Shift-Tab input = %q, want %q", m.input.Value(), first)
	}

	m = press(m, tea.KeyEsc)
	if m.cycling || m.input.Value() != "@str" || m.mode != modeEval {
		t.Errorf("after Esc input = %q, cycling = %v", m.input.Value(), m.cycling)
	}
}

func TestModel_TabSingleMatch(t *testing.T) {
	t.Parallel()

	m := press(typeText(testModel(newFakeSession()), "x @eval(ma"), tea.KeyTab)

	if got := m.input.Value(); got != "x @eval(max" {
		t.Errorf("input = %q, want x @eval(max", got)
	}

	if m.cycling {
		t.Error("single match started cycling")
	}
}

func TestModel_History(t *testing.T) {
	t.Parallel()

	m := testModel(newFakeSession())
	_ = m.history.Add("@dimen/gap", modeEval)
	_ = m.history.Add("locale fr", modeCtrl)
	_ = m.history.Add("@string/title", modeEval)
	m.historyIdx = m.history.Len()

	m = press(m, tea.KeyUp)
	if m.input.Value() != "@string/title" {
		t.Errorf("Up input = %q", m.input.Value())
	}

	m = press(m, tea.KeyUp)
	if m.input.Value() != "locale fr" || m.mode != modeCtrl {
		t.Errorf("Up Up input = %q mode = %v", m.input.Value(), m.mode)
	}

	m = press(m, tea.KeyShiftUp)
	if m.input.Value() != "locale fr" {
		t.Errorf("Shift-Up with no older command moved to %q", m.input.Value())
	}

	m = press(press(m, tea.KeyDown), tea.KeyDown)
	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("Down past newest input = %q idx = %d", m.input.Value(), m.historyIdx)
	}
}

func TestModel_Hint(t *testing.T) {
	t.Parallel()

	m := testModel(newFakeSession())
	if h := m.hint(); !strings.Contains(h, "Type text to resolve") {
		t.Errorf("empty hint = %q", h)
	}

	if h := typeText(m, "@string/title").hint(); !strings.Contains(h, "= Wood") {
		t.Errorf("reference hint = %q", h)
	}

	if h := typeText(m, "@eval(add 1px ").hint(); !strings.Contains(h, "add") {
		t.Errorf("call hint = %q", h)
	}

	if h := press(m, tea.KeyEsc).hint(); !strings.Contains(h, "reload") {
		t.Errorf("command hint = %q", h)
	}
}

func TestModel_CtrlC(t *testing.T) {
	t.Parallel()

	m := press(typeText(testModel(newFakeSession()), "text"), tea.KeyCtrlC)
	if m.quit || m.input.Value() != "" {
		t.Errorf("Ctrl+C with input: quit = %v input = %q", m.quit, m.input.Value())
	}

	if m = press(m, tea.KeyCtrlC); !m.quit {
		t.Error("Ctrl+C on empty input did not quit")
	}
}

func TestEllipsize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a\n  b", 10, "a b"},
		{"0123456789", 8, "01234..."},
		{"0123456789", 3, "0123456789"},
	}

	for _, tt := range tests {
		if got := ellipsize(tt.in, tt.width); got != tt.want {
			t.Errorf("ellipsize(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
