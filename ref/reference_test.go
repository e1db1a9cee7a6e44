package ref

import (
	"strings"
	"testing"
)

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range Categories() {
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()

			token := "@" + c.String() + "/some-name"

			r := Parse(token, "lib/page/page.htm")
			if r.Category != c {
				t.Fatalf("Parse(%q).Category = %v, want %v", token, r.Category, c)
			}

			if got := r.String(); got != token {
				t.Errorf("round trip = %q, want %q", got, token)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		name  string
	}{
		{"@string", "string"},
		{"@string/", "string/"},
		{"@keyframes/spin", "keyframes/spin"},
		{"@", ""},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			t.Parallel()

			r := Parse(tt.token, "")
			if !r.IsUnknown() {
				t.Fatalf("Parse(%q).Category = %v, want unknown", tt.token, r.Category)
			}

			if r.Name != tt.name {
				t.Errorf("Parse(%q).Name = %q, want %q", tt.token, r.Name, tt.name)
			}
		})
	}
}

func TestParse_CategoryIgnoresCase(t *testing.T) {
	t.Parallel()

	r := Parse("@Color/accent", "")
	if r.Category != Color || r.Name != "accent" {
		t.Errorf("Parse = %+v", r)
	}

	if got := r.String(); got != "@color/accent" {
		t.Errorf("String() = %q", got)
	}
}

func TestReference_Equal(t *testing.T) {
	t.Parallel()

	a := Parse("@string/title", "a/a.htm")
	b := Parse("@string/title", "b/b.htm")
	c := Parse("@text/title", "a/a.htm")

	if !a.Equal(b) {
		t.Error("references differing only by origin are not equal")
	}

	if a.Equal(c) {
		t.Error("references differing by category are equal")
	}

	seen := map[Key]bool{a.Key(): true}
	if !seen[b.Key()] {
		t.Error("Key is not usable as a map key across origins")
	}
}

func TestReference_Predicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token                          string
		variable, media, param, projct bool
	}{
		{"@string/a", true, false, false, false},
		{"@text/a", true, false, false, false},
		{"@color/a", true, false, false, false},
		{"@dimen/a", true, false, false, false},
		{"@style/a", true, false, false, false},
		{"@image/a", false, true, false, false},
		{"@audio/a", false, true, false, false},
		{"@video/a", false, true, false, false},
		{"@param/a", false, false, true, false},
		{"@project/a", false, false, false, true},
		{"@bogus/a", false, false, false, false},
	}

	for _, tt := range tests {
		r := Parse(tt.token, "")

		if r.IsVariable() != tt.variable ||
			r.IsMedia() != tt.media ||
			r.IsParameter() != tt.param ||
			r.IsProject() != tt.projct {
			t.Errorf("%s: predicates = %v %v %v %v", tt.token,
				r.IsVariable(), r.IsMedia(), r.IsParameter(), r.IsProject())
		}
	}
}

func TestReference_PathAndBase(t *testing.T) {
	t.Parallel()

	r := Parse("@image/icons/social/logo", "")
	if r.Path() != "icons/social" || r.Base() != "logo" {
		t.Errorf("Path, Base = %q, %q", r.Path(), r.Base())
	}

	r = Parse("@image/logo", "")
	if r.Path() != "" || r.Base() != "logo" {
		t.Errorf("Path, Base = %q, %q", r.Path(), r.Base())
	}
}

func FuzzParse(f *testing.F) {
	for _, seed := range []string{"@string/title", "@image/a/b", "@", "@x/", "@@"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, token string) {
		r := Parse(token, "")
		if r.IsUnknown() {
			return
		}

		again := Parse(r.String(), "")
		if !again.Equal(r) {
			t.Errorf("Parse(%q) = %+v, reparse of %q = %+v", token, r, r.String(), again)
		}

		if r.Name == "" || !strings.HasPrefix(r.String(), "@") {
			t.Errorf("Parse(%q) accepted %+v", token, r)
		}
	})
}
