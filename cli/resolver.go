package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// loadYAML is a [kong.ConfigurationLoader] that reads a YAML map of flag
// names to values:
//
//	log_level: debug
//	log_pretty: false
//	locale: ro
//	param:
//	  who: me
//
// Flag names may use underscores or hyphens. Command-line flags override
// configuration values. An empty file configures nothing.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	var m map[string]any

	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return config{}, nil
		}

		return nil, ErrConfig.Wrap(err)
	}

	c := make(config, len(m))
	for k, v := range m {
		c[strings.ReplaceAll(k, "_", "-")] = normalize(v)
	}

	return c, nil
}

// config implements [kong.Resolver] for YAML configuration files. Keys are
// flag names with hyphens.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil //nolint:nilnil
}

// normalize converts decoded YAML into the values kong maps: numbers become
// strings, nested maps become string maps.
func normalize(v any) any {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalize(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = fmt.Sprint(normalize(e))
		}

		return out
	default:
		return v
	}
}
