package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	src := `
log_level: debug
log-pretty: false
retries: 3
ratio: 0.5
search: [a, b]
param:
  who: me
  n: 2
`

	r, err := loadYAML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("loadYAML() error = %v", err)
	}

	tests := []struct {
		flag string
		want string
	}{
		{"log-level", "debug"},
		{"log-pretty", "false"},
		{"retries", "3"},
		{"ratio", "0.5"},
		{"search", "[a b]"},
		{"param", "map[n:2 who:me]"},
		{"missing", "<nil>"},
	}

	for _, tt := range tests {
		got, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: tt.flag}})
		if err != nil {
			t.Errorf("Resolve(%s) error = %v", tt.flag, err)

			continue
		}

		if s := fmt.Sprint(got); s != tt.want {
			t.Errorf("Resolve(%s) = %s, want %s", tt.flag, s, tt.want)
		}
	}
}

func TestLoadYAML_Empty(t *testing.T) {
	t.Parallel()

	r, err := loadYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("loadYAML(empty) error = %v", err)
	}

	if v, _ := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "log-level"}}); v != nil {
		t.Errorf("Resolve() on empty config = %v", v)
	}
}

func TestLoadYAML_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := loadYAML(strings.NewReader("log_level: [unclosed")); !errors.Is(err, ErrConfig) {
		t.Errorf("loadYAML() error = %v, want ErrConfig", err)
	}
}

func TestLoadYAML_Kong(t *testing.T) {
	t.Parallel()

	var cli struct {
		LogLevel string            `default:"info"`
		Param    map[string]string
		Count    int               `default:"1"`
	}

	r, err := loadYAML(strings.NewReader("log_level: warn\ncount: 4\nparam:\n  who: me\n"))
	if err != nil {
		t.Fatal(err)
	}

	parser, err := kong.New(&cli, kong.Resolvers(r))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--count=7"}); err != nil {
		t.Fatal(err)
	}

	if cli.LogLevel != "warn" || cli.Count != 7 || cli.Param["who"] != "me" {
		t.Errorf("parsed %+v", cli)
	}
}
