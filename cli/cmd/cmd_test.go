package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.htm": "first", "b.htm": "second"})

	a := filepath.Join(dir, "a.htm")
	link := filepath.Join(dir, "link.htm")

	if err := os.Symlink(a, link); err != nil {
		t.Skipf("symlink: %v", err)
	}

	srcs, err := openSources([]string{a, stdinSource, link, filepath.Join(dir, "b.htm"), stdinSource, a})
	if err != nil {
		t.Fatalf("openSources() error = %v", err)
	}
	defer closeSources(srcs)

	var got []string

	for _, s := range srcs {
		if s.path == stdinSource {
			got = append(got, stdinSource)

			continue
		}

		data, err := io.ReadAll(s)
		if err != nil {
			t.Fatal(err)
		}

		got = append(got, string(data))
	}

	want := []string{"first", "second", stdinSource}
	if len(got) != len(want) {
		t.Fatalf("sources = %q, want %q", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("source %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOpenSources_Missing(t *testing.T) {
	t.Parallel()

	_, err := openSources([]string{filepath.Join(t.TempDir(), "none")})
	if err == nil {
		t.Fatal("openSources() of a missing file succeeded")
	}
}

func TestContextValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if outputFrom(ctx) != os.Stdout {
		t.Error("outputFrom() default is not stdout")
	}

	if got := projectDirFrom(ctx); got != "." {
		t.Errorf("projectDirFrom() default = %q", got)
	}

	if kongContextFrom(ctx) != nil {
		t.Error("kongContextFrom() of empty context is not nil")
	}

	ctx = WithOutput(WithProjectDir(ctx, "/srv/site"), io.Discard)

	if outputFrom(ctx) != io.Discard {
		t.Error("outputFrom() did not return the stored writer")
	}

	if got := projectDirFrom(ctx); got != "/srv/site" {
		t.Errorf("projectDirFrom() = %q", got)
	}
}
