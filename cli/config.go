package cli

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/robo-corg/prints/log"
	"github.com/robo-corg/prints/pkg"
)

// configFile is the base name of the configuration file in [pkg.ConfigDir].
const configFile = "config.yaml"

func configPath() string {
	return filepath.Join(pkg.ConfigDir(), configFile)
}

// config is a [kong.Resolver] backed by the configuration file and
// environment.
type config struct {
	k *koanf.Koanf
}

// loadConfig reads path, if it exists, and then environment variables
// starting with prefix. Environment variables take precedence.
func loadConfig(path, prefix string) (config, error) {
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return config{}, pkg.ErrLoad.Wrap(err).With(slog.String("config", path))
		}

		log.Debug("config loaded", slog.String("path", path))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return config{}, pkg.ErrLoad.Wrap(err).With(slog.String("config", path))
	}

	// PRINTS_LOG_LEVEL -> log_level
	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, prefix))
	}), nil)
	if err != nil {
		return config{}, pkg.ErrLoad.Wrap(err).With(slog.String("env", prefix))
	}

	return config{k: k}, nil
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	if c.k == nil {
		return nil, nil
	}

	for _, key := range c.keys(parent, flag.Name) {
		if !c.k.Exists(key) {
			continue
		}

		return flagValue(c.k.Get(key)), nil
	}

	return nil, nil
}

// keys returns the lookup keys of a flag, most specific first.
func (config) keys(parent *kong.Path, name string) []string {
	forms := []string{
		name,
		strings.ReplaceAll(name, "-", "_"),
		strings.Replace(name, "-", ".", 1),
	}

	var keys []string

	if parent != nil && parent.Command != nil {
		cmd := parent.Command.Name

		for _, f := range forms {
			keys = append(keys, cmd+"."+f)
		}

		keys = append(keys, cmd+"_"+forms[1])
	}

	return append(keys, forms...)
}

// flagValue converts numbers to the strings kong parses flag values from.
func flagValue(v any) any {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}

	return v
}
