package project

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/js-lib-com/wood-sub003/ref"
	"github.com/js-lib-com/wood-sub003/resolve"
	"github.com/js-lib-com/wood-sub003/vars"
)

// mediaExt lists the file extensions recognized for each media category.
var mediaExt = map[ref.Category][]string{
	ref.Image: {".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico", ".bmp", ".avif"},
	ref.Audio: {".mp3", ".ogg", ".oga", ".wav", ".flac", ".m4a", ".aac"},
	ref.Video: {".mp4", ".webm", ".ogv", ".mov", ".avi", ".mkv"},
}

// IsMedia reports whether the extension of name belongs to category c.
func IsMedia(c ref.Category, name string) bool {
	return slices.Contains(mediaExt[c], strings.ToLower(filepath.Ext(name)))
}

// Handler answers the references that do not live in the variable store:
// "@param" from a parameter map, "@project" from the configuration and media
// references from the file system.
type Handler struct {
	config *Config
	locale string
	params map[string]string
}

// Handler returns a handler for files resolved in locale. An empty locale
// means the project default.
func (c *Config) Handler(locale string, params map[string]string) *Handler {
	if locale == "" {
		locale = c.Locale
	}

	return &Handler{config: c, locale: locale, params: params}
}

// OnReference implements [resolve.Handler]. Origin is the slash separated
// path of the referencing file relative to the project root.
func (h *Handler) OnReference(r ref.Reference, origin string) (string, bool, error) {
	switch {
	case r.IsParameter():
		v, ok := h.params[r.Name]

		return v, ok, nil
	case r.IsProject():
		v, ok := h.config.Field(r.Name)

		return v, ok, nil
	case r.IsMedia():
		return h.config.MediaFile(r, origin, h.locale)
	default:
		return "", false, nil
	}
}

var _ resolve.Handler = (*Handler)(nil)

// Field returns the project property name. The built-in properties name,
// locale and locales take precedence over the fields table.
func (c *Config) Field(name string) (string, bool) {
	switch name {
	case "name":
		return c.Name, true
	case "locale":
		return c.Locale, true
	case "locales":
		return strings.Join(c.Locales, ","), true
	}

	v, ok := c.Fields[name]

	return v, ok && v != ""
}

// MediaFile finds the file a media reference names. The directory of origin
// is searched first, then the asset and theme directories; a path in the
// reference name selects a subdirectory of each. Within a directory a file
// with the locale variant wins over one without. The result is the slash
// separated path relative to the root.
func (c *Config) MediaFile(r ref.Reference, origin, locale string) (string, bool, error) {
	dirs := []string{path.Dir(origin), cleanSlash(c.Source.Asset), cleanSlash(c.Source.Theme)}

	for _, dir := range dirs {
		dir = path.Join(dir, r.Path())

		file, err := c.mediaFile(dir, r, locale)
		if err != nil || file != "" {
			return file, file != "", err
		}
	}

	return "", false, nil
}

func (c *Config) mediaFile(dir string, r ref.Reference, locale string) (string, error) {
	entries, err := os.ReadDir(filepath.Join(c.root, filepath.FromSlash(dir)))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", ErrMedia.Wrap(err).With(
			slog.String("reference", r.String()),
			slog.String("dir", dir),
		)
	}

	var plain string

	for _, e := range entries {
		if e.IsDir() || !IsMedia(r.Category, e.Name()) {
			continue
		}

		stem, variant := vars.FileVariant(e.Name())
		if stem != r.Base() {
			continue
		}

		switch variant {
		case locale:
			if variant != "" {
				return path.Join(dir, e.Name()), nil
			}

			fallthrough
		case "":
			if plain == "" {
				plain = path.Join(dir, e.Name())
			}
		}
	}

	return plain, nil
}

func cleanSlash(dir string) string {
	return path.Clean(filepath.ToSlash(dir))
}
