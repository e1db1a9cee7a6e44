package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/js-lib-com/wood-sub003/log"
)

const projectTOML = `name = "site"
locale = "en"
locales = ["en", "ro"]

[watch]
debounce = "20ms"
rate = 100.0
burst = 10

[fields]
author = "js-lib"
`

const pageHTM = `<h1>@string/heading</h1><p>@eval(sub @dimen/gap 8px)</p>` +
	`<img src="@image/logo"><i>@project/author @param/who</i>`

// newProject writes a small project and returns its root.
func newProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	writeFiles(t, root, map[string]string{
		"wood.toml":            projectTOML,
		"asset/strings.xml":    `<string><title>Wood</title><year>2024</year></string>`,
		"asset/strings_ro.xml": `<string><title>Lemn</title></string>`,
		"asset/dimens.xml":     `<dimen><gap>48px</gap></dimen>`,
		"asset/logo.png":       "png",
		"page/strings.xml":     `<string><heading>@string/title @string/year</heading></string>`,
		"page/page.htm":        pageHTM,
	})

	return root
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func openProject(t *testing.T, root string) *Session {
	t.Helper()

	s, err := OpenSession(t.Context(), root, log.Logger{})
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}

	return s
}

// commandContext returns a context rooted at the project root printing to
// the returned buffer.
func commandContext(t *testing.T, root string) (context.Context, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	return WithOutput(WithProjectDir(t.Context(), root), &buf), &buf
}

// waitForFile polls the file until it contains want.
func waitForFile(t *testing.T, file, want string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)

	var got string

	for time.Now().Before(deadline) {
		data, err := os.ReadFile(file)
		if got = string(data); err == nil && strings.Contains(got, want) {
			return
		}

		time.Sleep(20 * time.Millisecond)
	}

	t.Fatalf("%s = %q, want it to contain %q", file, got, want)
}
