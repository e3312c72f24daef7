package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/robo-corg/prints/log"
	"github.com/robo-corg/prints/pkg"
)

func flag(name string) *kong.Flag {
	return &kong.Flag{Value: &kong.Value{Name: name}}
}

func command(name string) *kong.Path {
	return &kong.Path{Command: &kong.Command{Name: name}}
}

func TestConfig_Resolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := "log_level: debug\nlog:\n  format: json\nmax-depth: 12\neval:\n  output: json\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PRINTS_TEST_LOG_CALLER", "true")

	cfg, err := loadConfig(path, "PRINTS_TEST_")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	tests := []struct {
		name   string
		parent *kong.Path
		flag   string
		want   any
	}{
		{"underscore key", nil, "log-level", "debug"},
		{"nested key", nil, "log-format", "json"},
		{"number as string", nil, "max-depth", "12"},
		{"command scoped", command("eval"), "output", "json"},
		{"command unscoped", command("check"), "output", nil},
		{"environment", nil, "log-caller", "true"},
		{"missing", nil, "log-pretty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cfg.Resolve(nil, tt.parent, flag(tt.flag))
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}

			if got != tt.want {
				t.Errorf("Resolve(%s) = %#v, want %#v", tt.flag, got, tt.want)
			}
		})
	}
}

func TestConfig_MissingFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), "PRINTS_TEST_")
	if err != nil {
		t.Fatalf("expected missing config to be ignored, got %v", err)
	}

	if got, _ := cfg.Resolve(nil, nil, flag("log-level")); got != nil {
		t.Errorf("expected no value, got %#v", got)
	}
}

func TestConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(path, "PRINTS_TEST_"); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestLogConfig_Scan(t *testing.T) {
	defer log.SetDefault(log.Default())

	var f logConfig

	f.scan([]string{"check", "--log-level", "trace", "--log-format=json", "--no-log-pretty", "--log-caller=false", "x.bp.yaml"})

	if f.Level != "trace" {
		t.Errorf("Level = %q, want trace", f.Level)
	}

	if f.Format != "json" {
		t.Errorf("Format = %q, want json", f.Format)
	}

	if f.Pretty || f.Caller {
		t.Errorf("expected pretty and caller disabled, got %+v", f)
	}

	if log.Default().Level() != log.LevelTrace {
		t.Errorf("default logger level = %v, want trace", log.Default().Level())
	}
}

func TestRun_Version(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer

	if err := run(t.Context(), func(int) {}, &out, "version"); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !strings.HasPrefix(out.String(), pkg.Name+" ") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRun_Check(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer

	file := filepath.Join("cmd", "testdata", "assets", "rex.bp.json")
	if err := run(t.Context(), func(int) {}, &out, "--log-level=error", "check", file); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "ok") || !strings.Contains(got, filepath.Base(file)) {
		t.Errorf("unexpected output %q", got)
	}

	if !strings.Contains(got, "(rex, json, ") {
		t.Errorf("missing blueprint summary in %q", got)
	}
}
