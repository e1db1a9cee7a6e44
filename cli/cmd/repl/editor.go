package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/js-lib-com/wood-sub003/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand]. It opens a project file in the
// user's editor and reloads the variables afterwards. When the reload fails,
// for example on a malformed definition, the user is asked to edit again;
// declining returns [ErrEditDeclined].
type editCommand struct {
	path    string
	session Session
	ctxFunc func() context.Context
	logger  log.Logger
	changed bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run runs the edit and reload loop.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	for {
		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, c.path); err != nil {
			return err
		}

		changed, err := c.session.Reload(ctx)

		c.logger.TraceContext(ctx, "edit reload",
			slog.String("file", c.path),
			slog.Bool("changed", changed),
			slog.Bool("success", err == nil),
		)

		if err == nil {
			c.changed = changed

			return nil
		}

		fmt.Fprintf(c.stderr, "\nreload: %s\n", err)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		sc := bufio.NewScanner(c.stdin)
		if !sc.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor opens path in $EDITOR, or vi.
func runEditor(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
