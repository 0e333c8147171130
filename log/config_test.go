package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{input: "trace", want: LevelTrace},
		{input: "TRACE", want: LevelTrace},
		{input: "debug", want: LevelDebug},
		{input: "info", want: LevelInfo},
		{input: "warn", want: LevelWarn},
		{input: "error", want: LevelError},
		{input: "nonsense", want: DefaultLevel},
		{input: "", want: DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{input: "json", want: FormatJSON},
		{input: "JSON", want: FormatJSON},
		{input: " text ", want: FormatText},
		{input: "unknown", want: DefaultFormat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevels(t *testing.T) {
	var names []string
	for name := range Levels() {
		names = append(names, name)
	}

	want := []string{"trace", "debug", "info", "warn", "error"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}

	for i, name := range want {
		if names[i] != name {
			t.Errorf("level %d: expected %q, got %q", i, name, names[i])
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelWarn), WithFormat(FormatJSON))

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()

	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}

	if !strings.Contains(out, "visible") {
		t.Error("warn message should be logged at warn level")
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelDebug), WithFormat(FormatJSON))
	logger.Debug("hello")

	out := buf.String()

	if !strings.Contains(out, `"msg":"hello"`) {
		t.Errorf("expected JSON output, got %q", out)
	}

	if !strings.Contains(out, `"level":"DEBUG"`) {
		t.Errorf("expected uppercase level, got %q", out)
	}
}

func TestLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON))
	logger.Trace("deep")

	if out := buf.String(); !strings.Contains(out, `"level":"TRACE"`) {
		t.Errorf("expected TRACE label, got %q", out)
	}
}

func TestLogger_NoTimestamps(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithLevel(LevelInfo),
		WithFormat(FormatJSON),
		WithTimeLayout("none"),
	)
	logger.Info("untimed")

	if out := buf.String(); strings.Contains(out, `"time"`) {
		t.Errorf("expected no timestamp, got %q", out)
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelError))

	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelError {
		t.Error("wrap must not mutate the base logger")
	}

	if wrapped.Level() != LevelDebug {
		t.Errorf("expected wrapped level debug, got %v", wrapped.Level())
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var logger Logger

	// Must not panic, and reports defaults.
	logger.Info("discarded")

	if logger.Level() != DefaultLevel || logger.Format() != DefaultFormat {
		t.Error("zero logger should report default configuration")
	}
}
