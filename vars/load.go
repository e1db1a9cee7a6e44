package vars

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/js-lib-com/wood-sub003/log"
	"github.com/js-lib-com/wood-sub003/ref"
)

// Document is one parsed variables definition source. Dir is the key of the
// scope the document belongs to, by default the slash separated directory of
// Path.
type Document struct {
	Path     string
	Dir      string
	Category ref.Category
	Locale   string
	Values   map[string]string
	Digest   uint64
}

// LoadFile reads the XML or YAML definition at path. The locale is taken from
// the file name variant, or from a locale attribute of the XML root element
// or the YAML locale field.
func LoadFile(path string) (*Document, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(path, data)
}

// Parse decodes a definition whose content is data. The extension of path
// selects the format.
func Parse(path string, data []byte) (*Document, error) {
	var (
		doc *Document
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = decodeYAML(path, data)
	default:
		doc, err = decodeXML(path, data)
	}

	if err != nil {
		return nil, err
	}

	if _, locale := FileVariant(path); locale != "" {
		doc.Locale = locale
	}

	doc.Dir = filepath.ToSlash(filepath.Dir(path))
	doc.Digest = xxh3.Hash(data)

	return doc, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("file", path))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("file", path))
	}

	return data, nil
}

// decodeXML reads a document whose root element names the category and whose
// child elements are the variables. Elements below a variable are kept as
// inline tags, which only text variables allow.
func decodeXML(path string, data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	doc := &Document{Path: path, Values: make(map[string]string)}

	var (
		level int
		name  string
		value strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, ErrMalformed.Wrap(err).With(slog.String("file", path))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch level {
			case 0:
				doc.Category = ref.ParseCategory(t.Name.Local)
				if !doc.Category.IsVariable() {
					return nil, ErrBadResourceType.With(
						slog.String("root", t.Name.Local),
						slog.String("file", path),
					)
				}

				for _, a := range t.Attr {
					if a.Name.Local == "locale" {
						if l, ok := ParseLocale(a.Value); ok {
							doc.Locale = l
						}
					}
				}
			case 1:
				name = t.Name.Local
				value.Reset()
			default:
				if doc.Category != ref.Text {
					return nil, ErrNestedElement.With(
						slog.String("element", t.Name.Local),
						slog.String("file", path),
					)
				}

				value.WriteString("<" + t.Name.Local + ">")
			}

			level++
		case xml.EndElement:
			level--

			switch level {
			case 0:
			case 1:
				doc.Values[name] = value.String()
			default:
				value.WriteString("</" + t.Name.Local + ">")
			}
		case xml.CharData:
			if level > 1 {
				value.Write(t)
			}
		}
	}

	if doc.Category == ref.Unknown {
		return nil, ErrBadResourceType.With(slog.String("file", path))
	}

	return doc, nil
}

type yamlDocument struct {
	Category string         `yaml:"category"`
	Locale   string         `yaml:"locale"`
	Values   map[string]any `yaml:"values"`
}

// decodeYAML reads a document of the form
//
//	category: string
//	locale: de
//	values:
//	  title: Titel
func decodeYAML(path string, data []byte) (*Document, error) {
	var y yamlDocument

	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, ErrMalformed.Wrap(err).With(slog.String("file", path))
	}

	doc := &Document{
		Path:     path,
		Category: ref.ParseCategory(y.Category),
		Values:   make(map[string]string, len(y.Values)),
	}

	if !doc.Category.IsVariable() {
		return nil, ErrBadResourceType.With(
			slog.String("root", y.Category),
			slog.String("file", path),
		)
	}

	if l, ok := ParseLocale(y.Locale); ok {
		doc.Locale = l
	}

	for name, v := range y.Values {
		switch v.(type) {
		case map[string]any, []any:
			return nil, ErrNestedElement.With(
				slog.String("element", name),
				slog.String("file", path),
			)
		case nil:
			doc.Values[name] = ""
		default:
			doc.Values[name] = fmt.Sprint(v)
		}
	}

	return doc, nil
}

// LoadDir loads the definitions found directly in dir. Documents whose root
// is not a variable category are skipped, since component descriptors and
// other XML files share the directory. A missing directory yields no
// documents.
func LoadDir(ctx context.Context, dir string, logger log.Logger) ([]*Document, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("dir", dir))
	}

	var docs []*Document

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, e.Name())
		if e.IsDir() || !IsDefinition(path) {
			continue
		}

		doc, err := LoadFile(path)
		if errors.Is(err, ErrBadResourceType) {
			logger.TraceContext(ctx, "skip", slog.String("file", path))

			continue
		}

		if err != nil {
			return nil, err
		}

		docs = append(docs, doc)
	}

	slices.SortFunc(docs, func(a, b *Document) int { return strings.Compare(a.Path, b.Path) })

	return docs, nil
}
