package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/js-lib-com/wood-sub003/ref"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "locale", "dir", "reload", "edit", "clear", "quit"}

// evalCandidate opens an expression placeholder.
const evalCandidate = "@eval("

// isWordBoundary reports whether r separates completion words. The reference
// terminators are boundaries, and so are the parentheses and whitespace of
// expressions. The mark and the category separator are part of a word.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '"', '\'', '<', '>', ';', '(', ')', '=', ',':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor and its byte offsets in input.
// The word is empty when the cursor sits between two boundaries.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	for start = cursor; start > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	for end = cursor; end < len(input); {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// opcodePosition reports whether the word starting at wordStart is the
// opcode of an expression, directly after its opening parenthesis.
func opcodePosition(input string, wordStart int) bool {
	r, _ := utf8.DecodeLastRuneInString(input[:wordStart])

	return r == '('
}

// computeMatches ranks the candidates for the word at the cursor, best first.
// In eval mode a word after an opening parenthesis completes opcodes and a
// word starting with the mark completes references. Every opcode is offered
// for an empty word after a parenthesis.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var candidates []string

	switch {
	case m.mode == modeCtrl:
		if word == "" {
			return nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	case opcodePosition(input, wordStart):
		candidates = m.session.Opcodes()
		if word == "" {
			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, wordStart, wordEnd
		}
	case strings.HasPrefix(word, string(ref.Mark)):
		candidates = append([]string{evalCandidate}, m.session.References()...)
	default:
		return nil, wordStart, wordEnd
	}

	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within width. The selected candidate is highlighted while tab-cycling.
func renderCandidateBar(matches fuzzy.Matches, selected int, cycling bool, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	limit := width - lipgloss.Width(ellipsis) - len(sep)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, cycling && i == selected)
		w := lipgloss.Width(rendered)

		if i > 0 {
			if used+len(sep)+w > limit && i < len(matches)-1 {
				b.WriteString(sep + ellipsis)

				break
			}

			b.WriteString(sep)
			used += len(sep)
		}

		b.WriteString(rendered)
		used += w
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters in bold.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, bold := suggestionStyle, suggestionStyle.Bold(true)
	if selected {
		base, bold = selectedStyle, selectedStyle.Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(bold.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
