package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"testing"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf)

	if logger.Level() != LevelInfo {
		t.Errorf("expected default level Info, got %v", logger.Level())
	}
	if logger.caller {
		t.Error("expected caller disabled by default")
	}
	if logger.Format() != FormatText {
		t.Errorf("expected default format text, got %v", logger.Format())
	}
}

func TestLogger_WithLevel_FiltersMessages(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		log    func(Logger)
		logged bool
	}{
		{"trace below debug", LevelDebug, func(l Logger) { l.Trace("msg") }, false},
		{"trace at trace", LevelTrace, func(l Logger) { l.Trace("msg") }, true},
		{"info below error", LevelError, func(l Logger) { l.Info("msg") }, false},
		{"error at error", LevelError, func(l Logger) { l.Error("msg") }, true},
		{"warn above info", LevelInfo, func(l Logger) { l.Warn("msg") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(Make(&buf, WithLevel(tt.level), WithPretty(false)))

			if got := buf.Len() > 0; got != tt.logged {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.logged, buf.String())
			}
		})
	}
}

func TestLogger_JSON_IncludesAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelTrace))

	logger.With(slog.String("component", "lang")).
		Trace("parsed", slog.Int("nodes", 3))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON output %q: %v", buf.String(), err)
	}

	if rec["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", rec["level"])
	}
	if rec["component"] != "lang" {
		t.Errorf("component = %v, want lang", rec["component"])
	}
	if rec["nodes"] != float64(3) {
		t.Errorf("nodes = %v, want 3", rec["nodes"])
	}
}

func TestLogger_TimeLayoutNone_OmitsTime(t *testing.T) {
	var buf bytes.Buffer
	Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none")).Info("hello")

	if strings.Contains(buf.String(), `"time"`) {
		t.Errorf("expected no time field, got %s", buf.String())
	}
}

func TestLogger_Caller_ReportsCallSite(t *testing.T) {
	var buf bytes.Buffer
	Make(&buf, WithFormat(FormatJSON), WithCaller(true)).Info("where")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected source to reference log_test.go, got %s", buf.String())
	}
}

func TestLogger_Pretty_RendersGroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithTimeLayout("none"), WithPretty(true)).
		With(slog.String("blueprint", "corgi"))

	logger.Warn("materialize failed",
		slog.Group("component", slog.String("name", "Scene")),
		slog.Bool("fallback", false),
	)

	got := ansi.ReplaceAllString(buf.String(), "")

	for _, want := range []string{
		"WARN",
		"materialize failed",
		"blueprint=corgi",
		"component.name=Scene",
		"fallback=false",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
}

type logValuerError struct{}

func (logValuerError) Error() string { return "boom" }

func (logValuerError) LogValue() slog.Value {
	return slog.GroupValue(slog.String("error", "boom"), slog.Int("line", 7))
}

func TestLogger_Pretty_ResolvesLogValuer(t *testing.T) {
	var buf bytes.Buffer
	Make(&buf, WithTimeLayout("none")).Error("failed", slog.Any("err", logValuerError{}))

	got := ansi.ReplaceAllString(buf.String(), "")
	if !strings.Contains(got, "err.error=boom") || !strings.Contains(got, "err.line=7") {
		t.Errorf("expected resolved group attrs, got %q", got)
	}
}

func TestLogger_ZeroValue_Discards(t *testing.T) {
	var l Logger

	l.Info("nothing")
	l.With(slog.String("k", "v")).Error("still nothing")

	if l.Level() != DefaultLevel {
		t.Errorf("zero logger level = %v, want %v", l.Level(), DefaultLevel)
	}
}

func TestLogger_Wrap_KeepsBaseConfiguration(t *testing.T) {
	var buf bytes.Buffer
	base := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelWarn))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if wrapped.Format() != FormatJSON {
		t.Errorf("wrapped format = %v, want json", wrapped.Format())
	}
	if base.Level() != LevelWarn {
		t.Errorf("base level changed to %v", base.Level())
	}

	wrapped.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected debug output from wrapped logger, got %q", buf.String())
	}
}
