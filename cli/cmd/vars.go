package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"github.com/js-lib-com/wood-sub003/log"
)

// dirOrigin names the virtual file whose directory is dumped.
const dirOrigin = ".vars"

// Vars prints the variables visible from a directory.
type Vars struct {
	Dir     string `arg:"" default:"."    help:"Directory relative to the project root"              name:"dir"`
	Locale  string `                      help:"Locale of the values (project default)"                         short:"l"`
	Format  string `       default:"text" help:"Output format"                        enum:"text,json,yaml" short:"f"`
	Indent  int    `       default:"2"    help:"Indent width for JSON and YAML output"                          short:"i"`
	Resolve bool   `                      help:"Print resolved values instead of definitions"                   short:"r"`
}

// variable is one row of the output.
type variable struct {
	Reference string `json:"reference" yaml:"reference"`
	Value     string `json:"value"     yaml:"value"`
	Dir       string `json:"dir"       yaml:"dir"`
}

// Run executes the vars command.
func (v *Vars) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s, err := OpenSession(ctx, projectDirFrom(ctx), log.Default())
	if err != nil {
		return err
	}

	dir, err := s.Dir(v.Dir)
	if err != nil {
		return err
	}

	locale := v.Locale
	if locale == "" {
		locale = s.Locale()
	}

	origin := path.Join(dir, dirOrigin)
	entries := s.Snapshot().Effective(dir, locale)
	rows := make([]variable, 0, len(entries))

	for _, e := range entries {
		row := variable{Reference: e.Key.String(), Value: e.Value, Dir: e.Dir}

		if v.Resolve {
			if row.Value, err = s.Resolve(row.Reference, origin, locale); err != nil {
				return err
			}
		}

		rows = append(rows, row)
	}

	log.DebugContext(ctx, "vars",
		slog.String("dir", dir),
		slog.String("locale", locale),
		slog.Int("count", len(rows)),
	)

	return v.write(ctx, outputFrom(ctx), rows)
}

func (v *Vars) write(ctx context.Context, w io.Writer, rows []variable) error {
	switch v.Format {
	case "json":
		var (
			data []byte
			err  error
		)

		if v.Indent > 0 {
			data, err = json.MarshalIndent(rows, "", strings.Repeat(" ", v.Indent))
		} else {
			data, err = json.Marshal(rows)
		}

		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case "yaml":
		var opts []yaml.EncodeOption
		if v.Indent > 0 {
			opts = append(opts, yaml.Indent(v.Indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		data, err := yaml.MarshalContext(ctx, rows, opts...)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = fmt.Fprint(w, string(data))

		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Reference, strings.Join(strings.Fields(r.Value), " "), r.Dir)
	}

	return tw.Flush()
}
