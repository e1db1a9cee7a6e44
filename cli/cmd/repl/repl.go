package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/ref"
)

// Session is the project state the shell works on.
type Session interface {
	// Resolve replaces the placeholders in text as if it were the content of
	// the file origin, a slash separated path relative to the project root.
	Resolve(text, origin, locale string) (string, error)
	// Raw returns the unresolved value of a variable reference as seen from
	// origin.
	Raw(reference, origin, locale string) (string, bool)
	// References lists the known references in placeholder syntax.
	References() []string
	// Opcodes lists the expression opcodes.
	Opcodes() []string
	// Reload rebuilds the variables from disk.
	Reload(ctx context.Context) (bool, error)
	// Root returns the project directory.
	Root() string
	// Locale returns the project default locale.
	Locale() string
}

// editDoneMsg is sent when an edit finished and the variables reloaded.
type editDoneMsg struct{ changed bool }

// editDeclinedMsg is sent when the user declined to edit again after a
// failed reload.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the editor could not run.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"

	// replFile names the virtual file the typed text belongs to.
	replFile = "repl"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help           Print this help
  list [filter]  List the references visible from the current directory
  locale [l]     Show or set the locale
  dir [d]        Show or set the directory the typed text belongs to
  reload         Reload the variables from disk
  edit FILE      Edit a project file in $EDITOR and reload
  clear          Clear screen
  quit           Exit

Usage:
  Type text to resolve its placeholders, for example
    @string/title or @eval(add @dimen/gap 4px)
  Completions appear as you type a reference or an opcode
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between resolve and command modes
  Use Up/Down for history, Shift+Up/Shift+Down within the current mode
  Press Ctrl+C on an empty line or Ctrl+D to exit
`
}

// inputMode is the kind of line being typed.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

func formatCommand(mode inputMode, input string) string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
	}

	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the shell.
type model struct {
	ctxFunc func() context.Context
	session Session
	logger  log.Logger
	input   textinput.Model
	history *History

	historyIdx int
	matches    fuzzy.Matches
	wordStart  int
	wordEnd    int
	suggIdx    int
	cycling    bool // tab-cycling through matches
	preTab     string
	preTabPos  int

	mode   inputMode
	saved  [2]string // input text kept per mode while the other is active
	dir    string    // slash separated directory of the typed text
	locale string
	width  int
	quit   bool
}

// Run starts the shell on session. History is kept in cacheDir.
func Run(ctx context.Context, session Session, cacheDir string, logger log.Logger) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if session == nil {
		return ErrNoSession
	}

	var file string
	if cacheDir != "" {
		file = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(file)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "history", slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("root", session.Root()),
		slog.Int("history", history.Len()),
	)

	_, err = tea.NewProgram(newModel(ctx, session, history, logger), tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, session Session, history *History, logger log.Logger) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.CharLimit = 4096
	ti.Width = defaultWidth
	ti.Focus()

	return model{
		ctxFunc:    func() context.Context { return ctx },
		session:    session,
		logger:     logger,
		input:      ti,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		dir:        ".",
		locale:     session.Locale(),
		width:      defaultWidth,
	}
}

func (m model) origin() string { return path.Join(m.dir, replFile) }

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		if msg.changed {
			return m, tea.Println(resultStyle.Render("reloaded"))
		}

		return m, tea.Println(hintStyle.Render("unchanged"))

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("edit abandoned, previous variables kept"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quit {
		return ""
	}

	return m.input.View() + "\n" + m.hint() + "\n"
}

// hint renders the line below the input.
func (m model) hint() string {
	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))

	case strings.TrimSpace(input) == "":
		if m.mode == modeCtrl {
			return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (Esc to return)")
		}

		return hintStyle.Render(fmt.Sprintf("Type text to resolve in %s [%s], or press Esc for commands",
			m.dir, m.locale))

	case m.cycling || len(m.matches) > 1:
		return renderCandidateBar(m.matches, m.suggIdx, m.cycling, m.width)
	}

	if m.mode == modeEval {
		if call := detectCall(input, m.input.Position()); call.inCall {
			return renderCallHint(call, m.session.Opcodes())
		}

		word, _, _ := wordBounds(input, m.input.Position())
		if r := ref.Parse(word, m.origin()); r.IsVariable() {
			if v, ok := m.session.Raw(r.String(), m.origin(), m.locale); ok {
				return hintStyle.Render("= " + ellipsize(v, m.width-2))
			}
		}
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.cycling, m.width)
}

func ellipsize(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width < 4 || len(s) <= width {
		return s
	}

	return s[:width-3] + "..."
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quit = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.cycling = false
		m.historyIdx = m.history.Len()
		m.refresh(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quit = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.cycling && len(m.matches) > 0 {
			m.cycling = false
			m.refresh(true)

			return m, nil
		}

		return m.execute()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.cycling {
			m.cycling = false
			m.input.SetValue(m.preTab)
			m.input.SetCursor(m.preTabPos)
			m.refresh(false)

			return m, nil
		}

		return m.switchMode(1 - m.mode), nil
	}

	typing := msg.Type == tea.KeyRunes
	if typing && m.cycling && msg.String() == " " {
		m.cycling = false
	}

	if !typing {
		m.cycling = false
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh(typing)

	return m, cmd
}

// cycle moves the selection by step through the matches and puts the
// selected candidate into the input. A single match completes at once.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replaceWord(m.matches[0].Str)
		m.cycling = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if !m.cycling {
		m.cycling = true
		m.preTab = m.input.Value()
		m.preTabPos = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	} else {
		m.suggIdx = (m.suggIdx + step + n) % n
	}

	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

func (m *model) replaceWord(s string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(s))
	m.wordEnd = m.wordStart + len(s)
}

// refresh recomputes the matches. With confirm set, a word that already
// equals its only candidate is accepted.
func (m *model) refresh(confirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.cycling {
		m.suggIdx = -1
	}

	if confirm && len(m.matches) == 1 &&
		m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.matches = nil
	}
}

func (m model) execute() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.saved = [2]string{}
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echo := tea.Println(formatCommand(m.mode, input))

	if m.mode == modeCtrl {
		return m.command(echo, input)
	}

	out, err := m.session.Resolve(input, m.origin(), m.locale)

	m.logger.TraceContext(m.ctxFunc(), "repl resolve",
		slog.String("input", input),
		slog.Bool("success", err == nil),
	)

	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

func (m model) command(echo tea.Cmd, input string) (model, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	say := func(style lipgloss.Style, s string) (model, tea.Cmd) {
		return m, tea.Sequence(echo, tea.Println(style.Render(s)))
	}

	switch name {
	case "q", "quit", "exit":
		m.quit = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return say(lipgloss.NewStyle(), helpMessage())

	case "l", "list":
		return say(lipgloss.NewStyle(), m.list(arg))

	case "locale":
		if arg != "" {
			m.locale = arg
		}

		return say(resultStyle, "locale "+m.locale)

	case "dir", "cd":
		if arg != "" {
			m.dir = path.Clean(filepath.ToSlash(arg))
		}

		return say(resultStyle, "dir "+m.dir)

	case "reload":
		changed, err := m.session.Reload(m.ctxFunc())
		if err != nil {
			return say(errorStyle, "error: "+err.Error())
		}

		return say(resultStyle, "reload changed="+strconv.FormatBool(changed))

	case "e", "edit":
		if arg == "" {
			return say(errorStyle, "usage: edit FILE")
		}

		return m, tea.Sequence(echo, m.edit(arg))

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return say(errorStyle, "unknown command: "+name+" (try 'help')")
	}
}

func (m model) edit(file string) tea.Cmd {
	if !filepath.IsAbs(file) {
		file = filepath.Join(m.session.Root(), filepath.FromSlash(file))
	}

	c := &editCommand{
		path:    file,
		session: m.session,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(c, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		default:
			return editDoneMsg{changed: c.changed}
		}
	})
}

// list renders the variable references matching filter with their raw
// values.
func (m model) list(filter string) string {
	var b strings.Builder

	for _, r := range m.session.References() {
		if filter != "" && !strings.Contains(r, filter) {
			continue
		}

		v, ok := m.session.Raw(r, m.origin(), m.locale)
		if !ok {
			continue
		}

		fmt.Fprintf(&b, "  %s %s\n", r, hintStyle.Render(ellipsize(v, 60)))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  no variables")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// historyStep moves through the history by step. Entries of another mode
// switch the mode, unless sameMode restricts the walk to the current one.
// Stepping past the newest entry clears the input.
func (m model) historyStep(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		e, err := m.history.Entry(i)
		if err != nil || (sameMode && e.Mode != m.mode) {
			continue
		}

		if e.Mode != m.mode {
			m = m.switchMode(e.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(e.Line)
		m.input.SetCursor(len(e.Line))
		m.refresh(false)

		return m
	}

	if step > 0 {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refresh(false)
	}

	return m
}

// switchMode activates mode, keeping the text typed in the other one.
func (m model) switchMode(mode inputMode) model {
	m.saved[m.mode] = m.input.Value()
	m.mode = mode

	if mode == modeCtrl {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	} else {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	}

	m.input.SetValue(m.saved[mode])
	m.input.SetCursor(len(m.saved[mode]))
	m.refresh(false)

	return m
}
