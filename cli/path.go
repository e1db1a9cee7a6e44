package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/js-lib-com/wood-sub003/pkg"
)

// baseConfig is the base name of the YAML configuration file. The JSON
// configuration file adds a ".json" suffix.
const baseConfig = "config.yaml"

// defaultDirMode is the permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// basePrefix returns the base name of the executable, used to name the
// configuration and cache directories.
//
// The name is rewritten by the following rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with wood
//   - "^\.+" (dot-prefixed names): remove the dot prefix
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = strings.TrimSuffix(filepath.Base(id), filepath.Ext(id))

		id = regexp.MustCompile(`^__debug_bin\d*$`).ReplaceAllString(id, pkg.Name)
		id = regexp.MustCompile(`^\.+`).ReplaceAllString(id, "")

		if id == "" {
			return pkg.Name
		}

		return id
	},
)

// userDir joins basePrefix to the directory returned by base, falling back
// to home below the user's home directory, then to the working directory.
func userDir(base func() (string, error), home string) string {
	dir, err := base()
	if err != nil {
		if dir, err = os.UserHomeDir(); err == nil {
			dir = filepath.Join(dir, home)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, basePrefix())
}

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(func() string { return userDir(os.UserConfigDir, ".config") })

// cacheDir returns the cache directory path used for the shell history and
// profiles.
var cacheDir = sync.OnceValue(func() string { return userDir(os.UserCacheDir, ".cache") })

// configPath returns the path formed by joining the configuration directory
// with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return ErrDirectory.Wrap(err).With(slog.String("dir", dir))
		}
	}

	return nil
}
