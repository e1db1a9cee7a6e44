package vars

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/ref"
	"github.com/js-lib-com/wood-sub003/resolve"
)

// writeTree creates files below root from a map of slash separated paths to
// content.
func writeTree(t *testing.T, root string, files map[string]string) {
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

func mustParse(t *testing.T, path, content string) *Document {
	t.Helper()

	doc, err := Parse(path, []byte(content))
	if err != nil {
		t.Fatalf("Parse(%s) error = %v", path, err)
	}

	return doc
}

func key(c ref.Category, name string) ref.Key { return ref.Key{Category: c, Name: name} }

func TestParse_XML(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "page/strings.xml", `<?xml version="1.0" encoding="UTF-8"?>
<string>
	<title>Hello</title>
	<app>@string/title App</app>
	<escaped>a &lt; b</escaped>
	<empty></empty>
</string>`)

	if doc.Category != ref.String || doc.Locale != DefaultLocale || doc.Dir != "page" {
		t.Errorf("document = %+v", doc)
	}

	want := map[string]string{
		"title":   "Hello",
		"app":     "@string/title App",
		"escaped": "a < b",
		"empty":   "",
	}
	for name, v := range want {
		if got, ok := doc.Values[name]; !ok || got != v {
			t.Errorf("Values[%s] = %q, want %q", name, got, v)
		}
	}

	if doc.Digest == 0 {
		t.Error("digest not computed")
	}
}

func TestParse_TextKeepsInlineTags(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "text.xml", `<text><intro>Hello <b>bold <i>world</i></b>!</intro></text>`)

	if got := doc.Values["intro"]; got != "Hello <b>bold <i>world</i></b>!" {
		t.Errorf("intro = %q", got)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		content string
		want    error
		names   []string
	}{
		{"page/colors.xml", `<color><accent><b>red</b></accent></color>`, ErrNestedElement, []string{"b", "page/colors.xml"}},
		{"page/other.xml", `<component><name>x</name></component>`, ErrBadResourceType, []string{"bad resource type", "component"}},
		{"page/broken.xml", `<string><title>x</string>`, ErrMalformed, []string{"page/broken.xml"}},
		{"page/empty.xml", ``, ErrBadResourceType, nil},
		{"page/nested.yaml", "category: dimen\nvalues:\n  gap:\n    x: 1\n", ErrNestedElement, []string{"gap"}},
		{"page/media.yaml", "category: image\nvalues:\n  a: b\n", ErrBadResourceType, []string{"image"}},
		{"page/bad.yaml", "category: [", ErrMalformed, nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(tt.path, []byte(tt.content))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse error = %v, want %v", err, tt.want)
			}

			for _, n := range tt.names {
				if !strings.Contains(err.Error(), n) {
					t.Errorf("error %q does not name %q", err, n)
				}
			}
		})
	}
}

func TestParse_Locale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		content string
		want    string
	}{
		{"strings_de.xml", `<string><a>x</a></string>`, "de"},
		{"colors_en-US.xml", `<color><a>x</a></color>`, "en-US"},
		{"strings.xml", `<string locale="fr"><a>x</a></string>`, "fr"},
		{"strings_ro.xml", `<string locale="fr"><a>x</a></string>`, "ro"},
		{"strings_deu.xml", `<string><a>x</a></string>`, DefaultLocale},
		{"dimens.yaml", "category: dimen\nlocale: it\nvalues:\n  gap: 4px\n", "it"},
		{"dimens_es.yml", "category: dimen\nvalues:\n  gap: 4\n", "es"},
	}

	for _, tt := range tests {
		if doc := mustParse(t, tt.path, tt.content); doc.Locale != tt.want {
			t.Errorf("%s: locale = %q, want %q", tt.path, doc.Locale, tt.want)
		}
	}
}

func TestParse_YAML(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "theme/dimens.yaml", "category: dimen\nvalues:\n  gap: 4px\n  columns: 12\n  none:\n")

	if doc.Category != ref.Dimen {
		t.Errorf("category = %v", doc.Category)
	}

	want := map[string]string{"gap": "4px", "columns": "12", "none": ""}
	for name, v := range want {
		if doc.Values[name] != v {
			t.Errorf("Values[%s] = %q, want %q", name, doc.Values[name], v)
		}
	}
}

func TestParseLocale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"de", "de", true},
		{"en-US", "en-US", true},
		{"en_US", "en-US", true},
		{"EN", "", false},
		{"en-us", "", false},
		{"deu", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseLocale(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLocale(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsDefinition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"page/strings.xml", true},
		{"page/strings_de.xml", true},
		{"page/dimens.yaml", true},
		{"page/dimens.YML", true},
		{"page/page.xml", false},
		{"page/page_de.xml", false},
		{"page/page.htm", false},
		{"page/page.css", false},
	}

	for _, tt := range tests {
		if got := IsDefinition(filepath.FromSlash(tt.path)); got != tt.want {
			t.Errorf("IsDefinition(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()

	docs := []*Document{
		mustParse(t, "asset/strings.xml", `<string><title>Asset Title</title><app>Wood</app><only>asset only</only></string>`),
		mustParse(t, "asset/strings_de.xml", `<string><title>Asset Titel</title></string>`),
		mustParse(t, "theme/dimens.xml", `<dimen><gap>4px</gap><width>48px</width></dimen>`),
		mustParse(t, "page/strings.xml", `<string>
			<title>Page Title</title>
			<header>@string/title by @string/app</header>
			<blank></blank>
			<a>@string/b</a>
			<b>@string/a</b>
			<self>x @string/self</self>
			<width>@eval(sub @dimen/width (mul 2 @dimen/gap))</width>
			<caption>@param/caption</caption>
		</string>`),
		mustParse(t, "page/strings_de.xml", `<string><title>Seitentitel</title></string>`),
	}

	return NewSnapshot(docs, "en", "asset", "theme")
}

func TestSnapshot_Value(t *testing.T) {
	t.Parallel()

	s := testSnapshot(t)

	tests := []struct {
		name   string
		key    ref.Key
		locale string
		dir    string
		want   string
		ok     bool
	}{
		{"local", key(ref.String, "title"), "", "page", "Page Title", true},
		{"local locale", key(ref.String, "title"), "de", "page", "Seitentitel", true},
		{"locale falls back to default", key(ref.String, "header"), "de", "page", "@string/title by @string/app", true},
		{"unknown locale", key(ref.String, "title"), "fr", "page", "Page Title", true},
		{"asset fallback", key(ref.String, "only"), "", "page", "asset only", true},
		{"theme fallback", key(ref.Dimen, "gap"), "", "page", "4px", true},
		{"other dir", key(ref.String, "title"), "de", "other", "Asset Titel", true},
		{"root file", key(ref.String, "title"), "", ".", "Asset Title", true},
		{"empty is missing", key(ref.String, "blank"), "", "page", "", false},
		{"missing", key(ref.String, "nope"), "", "page", "", false},
		{"category matters", key(ref.Color, "title"), "", "page", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := s.Value(tt.key, tt.locale, tt.dir)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Value = %q, %v, want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStore_Lookup(t *testing.T) {
	t.Parallel()

	st := NewStore(testSnapshot(t))
	params := resolve.Map{"@param/caption": "A caption"}

	tests := []struct {
		in     string
		locale string
		want   string
	}{
		{"<h1>@string/title</h1>", "", "<h1>Page Title</h1>"},
		{"<h1>@string/title</h1>", "de", "<h1>Seitentitel</h1>"},
		{"<p>@string/header</p>", "", "<p>Page Title by Wood</p>"},
		{"<p>@string/header</p>", "de", "<p>Seitentitel by Wood</p>"},
		{"w: @string/width;", "", "w: 40px;"},
		{"<p>@string/caption</p>", "", "<p>A caption</p>"},
		{"@keyframes x", "", "@keyframes x"},
	}

	for _, tt := range tests {
		got, err := resolve.String(tt.in, "page/page.htm", st.Lookup(tt.locale, params))
		if err != nil {
			t.Errorf("resolve %q (%s): %v", tt.in, tt.locale, err)

			continue
		}

		if got != tt.want {
			t.Errorf("resolve %q (%s) = %q, want %q", tt.in, tt.locale, got, tt.want)
		}
	}
}

func TestStore_LookupErrors(t *testing.T) {
	t.Parallel()

	st := NewStore(testSnapshot(t))

	tests := []struct {
		in    string
		want  error
		names []string
	}{
		{"@string/a", ErrCircularReference, []string{"@string/a", "@string/b", "page/page.htm"}},
		{"@string/self", ErrCircularReference, []string{"@string/self"}},
		{"@string/blank", resolve.ErrNotFound, []string{"@string/blank"}},
		{"@string/caption", resolve.ErrNotFound, []string{"@param/caption"}},
	}

	for _, tt := range tests {
		_, err := resolve.String(tt.in, "page/page.htm", st.Lookup("", nil))
		if !errors.Is(err, tt.want) {
			t.Errorf("resolve %q error = %v, want %v", tt.in, err, tt.want)

			continue
		}

		for _, n := range tt.names {
			if !strings.Contains(err.Error(), n) {
				t.Errorf("error %q does not name %q", err, n)
			}
		}
	}
}

func TestStore_Get_ContextUnwinds(t *testing.T) {
	t.Parallel()

	st := NewStore(testSnapshot(t))
	rc := NewContext()

	var h resolve.HandlerFunc
	h = func(r ref.Reference, origin string) (string, bool, error) {
		return st.Get(rc, "", r, origin, h)
	}

	if _, _, err := st.Get(rc, "", ref.New(ref.String, "a", ""), "page/page.htm", h); !errors.Is(err, ErrCircularReference) {
		t.Fatalf("Get(a) error = %v", err)
	}

	if rc.Depth() != 0 {
		t.Errorf("trace not unwound after failure: %v", rc.Trace())
	}

	// The same context serves a later, unrelated lookup.
	got, ok, err := st.Get(rc, "", ref.New(ref.String, "header", ""), "page/page.htm", h)
	if err != nil || !ok || got != "Page Title by Wood" {
		t.Errorf("Get(header) = %q, %v, %v", got, ok, err)
	}
}

func TestSnapshot_Effective(t *testing.T) {
	t.Parallel()

	s := testSnapshot(t)

	entries := s.Effective("page", "de")

	byKey := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byKey[e.Key.String()] = e
	}

	if e := byKey["@string/title"]; e.Value != "Seitentitel" || e.Dir != "page" {
		t.Errorf("title entry = %+v", e)
	}

	if e := byKey["@string/only"]; e.Dir != "asset" {
		t.Errorf("only entry = %+v", e)
	}

	if _, ok := byKey["@string/blank"]; ok {
		t.Error("empty value listed")
	}

	for i := 1; i < len(entries); i++ {
		if compareKeys(entries[i-1].Key, entries[i].Key) >= 0 {
			t.Fatalf("entries not sorted at %d", i)
		}
	}

	if keys := s.Keys(); len(keys) == 0 || keys[0].Category != ref.String {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	extra := t.TempDir()

	writeTree(t, root, map[string]string{
		"asset/strings.xml":       `<string><title>Asset</title><year>2024</year></string>`,
		"theme/dimens.yaml":       "category: dimen\nvalues:\n  gap: 4px\n",
		"page/page.xml":           `<component><name>page</name></component>`,
		"page/page.htm":           `<h1>@string/title</h1>`,
		"page/strings.xml":        `<string><title>Page @string/year</title></string>`,
		"page/legacy.xml":         `<layout/>`,
		"draft/strings.xml":       `<string><title>Draft</title></string>`,
		".git/strings.xml":        `<string><title>Hidden</title></string>`,
		"page/sub/strings_de.xml": `<string><title>Sub</title></string>`,
	})
	writeTree(t, extra, map[string]string{
		"colors.xml": `<color><accent>#f00</accent></color>`,
	})

	l := Layout{
		Root:   root,
		Asset:  "asset",
		Theme:  "theme/",
		Search: []string{extra},
		Filter: func(rel string) bool { return !strings.HasPrefix(rel, "draft/") },
		Locale: "en",
	}

	s, err := Build(context.Background(), l)
	if err != nil {
		t.Fatal(err)
	}

	dirs := s.Dirs()
	for _, want := range []string{"asset", "page", "page/sub", "theme", filepath.ToSlash(filepath.Clean(extra))} {
		if !slices.Contains(dirs, want) {
			t.Errorf("Dirs() = %v, missing %q", dirs, want)
		}
	}

	if len(dirs) != 5 {
		t.Errorf("Dirs() = %v, want 5 scopes", dirs)
	}

	if s.Scope("draft") != nil || s.Scope(".git") != nil {
		t.Error("filtered or hidden directory loaded")
	}

	st := NewStore(s)

	got, err := resolve.String("@string/title @dimen/gap @color/accent", "page/page.htm", st.Lookup("", nil))
	if err != nil {
		t.Fatal(err)
	}

	if got != "Page 2024 4px #f00" {
		t.Errorf("resolved = %q", got)
	}

	changed, err := st.Reload(context.Background(), l)
	if err != nil || changed {
		t.Errorf("Reload of unchanged tree = %v, %v", changed, err)
	}

	writeTree(t, root, map[string]string{"asset/strings.xml": `<string><title>Asset</title><year>2025</year></string>`})

	changed, err = st.Reload(context.Background(), l)
	if err != nil || !changed {
		t.Fatalf("Reload after edit = %v, %v", changed, err)
	}

	got, _ = resolve.String("@string/title", "page/page.htm", st.Lookup("", nil))
	if got != "Page 2025" {
		t.Errorf("after reload = %q", got)
	}

	writeTree(t, root, map[string]string{"page/colors.xml": `<color><a><b/></a></color>`})

	if _, err := st.Reload(context.Background(), l); !errors.Is(err, ErrNestedElement) {
		t.Errorf("Reload with bad file error = %v", err)
	}

	if got, _ := resolve.String("@string/title", "page/page.htm", st.Lookup("", nil)); got != "Page 2025" {
		t.Errorf("failed reload replaced the snapshot: %q", got)
	}
}

func TestBuild_Canceled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a/strings.xml": `<string><t>x</t></string>`})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Build(ctx, Layout{Root: root}); !errors.Is(err, context.Canceled) {
		t.Errorf("Build error = %v, want canceled", err)
	}
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"page/page.xml":    `<component/>`,
		"page/other.xml":   `<layout/>`,
		"page/strings.xml": `<string><t>x</t></string>`,
		"page/dimens.yaml": "category: dimen\nvalues:\n  gap: 1px\n",
	})

	docs, err := LoadDir(context.Background(), filepath.Join(root, "page"), log.Logger{})
	if err != nil {
		t.Fatal(err)
	}

	if len(docs) != 2 || docs[0].Category != ref.Dimen || docs[1].Category != ref.String {
		t.Errorf("LoadDir = %+v", docs)
	}

	docs, err = LoadDir(context.Background(), filepath.Join(root, "missing"), log.Logger{})
	if err != nil || docs != nil {
		t.Errorf("LoadDir(missing) = %v, %v", docs, err)
	}
}

func TestStore_ConcurrentReload(t *testing.T) {
	t.Parallel()

	first := NewSnapshot([]*Document{
		mustParse(t, "page/strings.xml", `<string><v>one</v><w>@string/v</w></string>`),
	}, "")
	second := NewSnapshot([]*Document{
		mustParse(t, "page/strings.xml", `<string><v>two</v><w>@string/v</w></string>`),
	}, "")

	st := NewStore(first)

	stop := make(chan struct{})
	swapped := make(chan struct{})

	go func() {
		defer close(swapped)

		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}

			if i%2 == 0 {
				st.Swap(second)
			} else {
				st.Swap(first)
			}
		}
	}()

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 200 {
				got, err := resolve.String("@string/w", "page/page.htm", st.Lookup("", nil))
				if err != nil {
					t.Error(err)

					return
				}

				if got != "one" && got != "two" {
					t.Errorf("torn read %q", got)

					return
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	<-swapped
}
