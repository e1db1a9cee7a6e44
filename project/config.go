package project

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ardnew/mung"
	"github.com/gobwas/glob"

	"github.com/js-lib-com/wood-sub003/eval"
	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/pkg"
	"github.com/js-lib-com/wood-sub003/vars"
)

// FileName is the name of the project configuration file.
const FileName = "wood.toml"

// EnvPath names the environment variable holding extra search directories.
const EnvPath = pkg.EnvPrefix + "PATH"

// Defaults applied by [Load] to unset fields.
const (
	DefaultLocale   = "en"
	DefaultAsset    = "asset"
	DefaultTheme    = "theme"
	DefaultDebounce = 300 * time.Millisecond
	DefaultRate     = 2.0
	DefaultBurst    = 1
)

// Config is the content of a wood.toml file.
type Config struct {
	Name      string            `toml:"name"`
	Locale    string            `toml:"locale"`
	Locales   []string          `toml:"locales"`
	Strict    bool              `toml:"strict,omitempty"`
	Source    Source            `toml:"source"`
	Watch     Watch             `toml:"watch"`
	Operators map[string]string `toml:"operators,omitempty"`
	Fields    map[string]string `toml:"fields,omitempty"`

	root    string
	include []glob.Glob
	exclude []glob.Glob
}

// Source locates the definition and media files.
type Source struct {
	Asset   string   `toml:"asset"`
	Theme   string   `toml:"theme"`
	Search  []string `toml:"search,omitempty"`
	Include []string `toml:"include,omitempty"`
	Exclude []string `toml:"exclude,omitempty"`
}

// Watch configures the watch command.
type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	Rate     float64       `toml:"rate"`
	Burst    int           `toml:"burst"`
	Listen   string        `toml:"listen,omitempty"`
}

// Default returns the configuration used for a project without wood.toml,
// rooted at root.
func Default(root string) *Config {
	c := &Config{Name: filepath.Base(root)}
	if err := c.init(root); err != nil {
		// The defaults carry no patterns or locales that could fail.
		panic(err)
	}

	return c
}

// Load reads the configuration file at path and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound.Wrap(err).With(slog.String("file", path))
	}

	if err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("file", path))
	}

	var c Config

	if _, err := toml.Decode(string(data), &c); err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("file", path))
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("file", path))
	}

	if err := c.init(root); err != nil {
		return nil, pkg.WrapError(err).With(slog.String("file", path))
	}

	return &c, nil
}

// Find looks for wood.toml in dir and its parents and loads the first one
// found. Without one, it returns the defaults rooted at dir.
func Find(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, ErrNotFound.Wrap(err).With(slog.String("dir", dir))
	}

	for d := abs; ; {
		c, err := Load(filepath.Join(d, FileName))
		if !errors.Is(err, ErrNotFound) {
			return c, err
		}

		parent := filepath.Dir(d)
		if parent == d {
			return Default(abs), nil
		}

		d = parent
	}
}

func (c *Config) init(root string) error {
	c.root = root

	if c.Name == "" {
		c.Name = filepath.Base(root)
	}

	if c.Locale == "" {
		c.Locale = DefaultLocale
	}

	if _, ok := vars.ParseLocale(c.Locale); !ok {
		return ErrInvalid.With(slog.String("locale", c.Locale))
	}

	for _, l := range c.Locales {
		if _, ok := vars.ParseLocale(l); !ok {
			return ErrInvalid.With(slog.String("locale", l))
		}
	}

	if !slices.Contains(c.Locales, c.Locale) {
		c.Locales = append([]string{c.Locale}, c.Locales...)
	}

	if c.Source.Asset == "" {
		c.Source.Asset = DefaultAsset
	}

	if c.Source.Theme == "" {
		c.Source.Theme = DefaultTheme
	}

	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = DefaultDebounce
	}

	if c.Watch.Rate <= 0 {
		c.Watch.Rate = DefaultRate
	}

	if c.Watch.Burst <= 0 {
		c.Watch.Burst = DefaultBurst
	}

	var err error

	if c.include, err = compileGlobs(c.Source.Include); err != nil {
		return err
	}

	c.exclude, err = compileGlobs(c.Source.Exclude)

	return err
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))

	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, ErrInvalid.Wrap(err).With(slog.String("pattern", p))
		}

		globs = append(globs, g)
	}

	return globs, nil
}

// Root returns the project directory.
func (c *Config) Root() string { return c.root }

// Match reports whether the slash separated path rel, relative to the root,
// passes the include and exclude patterns. With no include patterns every
// path is included.
func (c *Config) Match(rel string) bool {
	matches := func(globs []glob.Glob) bool {
		return slices.ContainsFunc(globs, func(g glob.Glob) bool { return g.Match(rel) })
	}

	if len(c.include) > 0 && !matches(c.include) {
		return false
	}

	return !matches(c.exclude)
}

// SearchPath returns the configured search directories followed by those in
// env, a list in the form of WOOD_PATH. Relative directories are resolved
// against the root; directories that do not exist are dropped.
func (c *Config) SearchPath(env string) []string {
	prefix := make([]string, 0, len(c.Source.Search))
	for _, dir := range c.Source.Search {
		prefix = append(prefix, c.abs(dir))
	}

	list := mung.Make(
		mung.WithSubjectItems(env),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(isDir),
	).String()

	var dirs []string

	for _, dir := range filepath.SplitList(list) {
		if dir = strings.TrimSpace(dir); dir != "" && !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

func (c *Config) abs(dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}

	return filepath.Join(c.root, dir)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)

	return err == nil && fi.IsDir()
}

// Layout returns the variable source layout of the project.
func (c *Config) Layout(logger log.Logger) vars.Layout {
	return vars.Layout{
		Root:   c.root,
		Asset:  c.Source.Asset,
		Theme:  c.Source.Theme,
		Search: c.SearchPath(os.Getenv(EnvPath)),
		Filter: c.Match,
		Locale: c.Locale,
		Logger: logger.Component("vars"),
	}
}

// Registry returns the built-in operators plus those declared in the
// operators table.
func (c *Config) Registry() (*eval.Registry, error) {
	r := eval.NewRegistry()

	for _, opcode := range slices.Sorted(maps.Keys(c.Operators)) {
		if err := r.RegisterExpr(opcode, c.Operators[opcode]); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return ErrEncode.Wrap(err)
	}

	return nil
}
