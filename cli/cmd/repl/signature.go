package repl

import (
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/js-lib-com/wood-sub003/eval"
)

// callInfo describes the innermost expression enclosing the cursor.
type callInfo struct {
	opcode   string
	args     []string // arguments typed so far; nested expressions read "(...)"
	argIndex int      // argument under the cursor, -1 while typing the opcode
	inCall   bool
}

// nestedArg stands for a closed nested expression in callInfo.args.
const nestedArg = "(...)"

// detectCall scans input up to cursor and reports the innermost open
// expression, if any.
func detectCall(input string, cursor int) callInfo {
	cursor = min(max(cursor, 0), len(input))

	type frame struct {
		tokens []string
		word   strings.Builder
	}

	var stack []*frame

	flush := func() {
		if n := len(stack); n > 0 && stack[n-1].word.Len() > 0 {
			top := stack[n-1]
			top.tokens = append(top.tokens, top.word.String())
			top.word.Reset()
		}
	}

	for _, r := range input[:cursor] {
		switch {
		case r == '(':
			stack = append(stack, new(frame))
		case r == ')':
			if len(stack) == 0 {
				continue
			}

			stack = stack[:len(stack)-1]
			if n := len(stack); n > 0 {
				stack[n-1].tokens = append(stack[n-1].tokens, nestedArg)
			}
		case unicode.IsSpace(r):
			flush()
		case len(stack) > 0:
			stack[len(stack)-1].word.WriteRune(r)
		}
	}

	if len(stack) == 0 {
		return callInfo{}
	}

	top := stack[len(stack)-1]
	tokens := top.tokens

	index := len(tokens)
	if top.word.Len() > 0 {
		tokens = append(tokens, top.word.String())
	}

	info := callInfo{inCall: true, argIndex: index - 1}
	if len(tokens) > 0 {
		info.opcode = tokens[0]
		info.args = tokens[1:]
	}

	return info
}

// renderCallHint shows the opcode, its arguments with the one under the
// cursor highlighted, and the type the arguments classify as.
func renderCallHint(call callInfo, opcodes []string) string {
	if call.opcode == "" || call.argIndex < 0 {
		return hintStyle.Render("opcodes: " + strings.Join(opcodes, " "))
	}

	if !slices.Contains(opcodes, strings.ToLower(call.opcode)) {
		return errorStyle.Render("unknown opcode " + call.opcode)
	}

	active := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	parts := []string{suggestionStyle.Bold(true).Render(call.opcode)}

	for i := 0; i <= max(call.argIndex, len(call.args)-1); i++ {
		arg := "_"
		if i < len(call.args) {
			arg = call.args[i]
		}

		if i == call.argIndex {
			parts = append(parts, active.Render(arg))
		} else {
			parts = append(parts, hintStyle.Render(arg))
		}
	}

	hint := strings.Join(parts, " ")

	var literal []string

	for _, a := range call.args {
		if a != nestedArg {
			literal = append(literal, a)
		}
	}

	if len(literal) > 0 {
		hint += hintStyle.Render("  " + eval.ClassifyAll(literal...).String())
	}

	if len(call.args) < eval.MinArgs {
		hint += hintStyle.Render("  at least " + strconv.Itoa(eval.MinArgs) + " arguments")
	}

	return hint
}
