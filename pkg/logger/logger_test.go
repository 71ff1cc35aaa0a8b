package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

// newBufferLogger builds a slogLogger over an in-memory handler so output can
// be asserted on.
func newBufferLogger(buf *bytes.Buffer, lv *slog.LevelVar) Logger {
	h := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: lv})
	return &slogLogger{Logger: slog.New(h)}
}

func TestInitAndGet(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if Get() == nil {
		t.Fatal("global logger is nil after Init")
	}
	if err := Sync(); err != nil {
		t.Errorf("sync: %v", err)
	}
}

func TestGetPanicsWithoutInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Fatal("Get before Init should panic")
		}
	}()
	Get()
}

func TestFieldConstructors(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name  string
		field Field
		key   string
		value interface{}
	}{
		{"string", String("user", "zola"), "user", "zola"},
		{"int", Int("dropped", 7), "dropped", 7},
		{"float64", Float64("rate", 0.25), "rate", 0.25},
		{"any", Any("badges", []string{"first_lesson"}), "badges", []string{"first_lesson"}},
		{"error", Error(boom), "error", boom},
	}
	for _, c := range cases {
		if c.field.Key != c.key {
			t.Errorf("%s: key = %q, want %q", c.name, c.field.Key, c.key)
		}
		if !reflect.DeepEqual(c.field.Value, c.value) {
			t.Errorf("%s: value = %v, want %v", c.name, c.field.Value, c.value)
		}
	}
}

func TestFieldsReachTheHandler(t *testing.T) {
	var buf bytes.Buffer
	lg := newBufferLogger(&buf, &slog.LevelVar{})

	lg.Info(context.Background(), "queue rejected event",
		String("component", "queue"),
		Int("dropped", 7),
	)

	out := buf.String()
	for _, want := range []string{"queue rejected event", "component=queue", "dropped=7", "source="} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestNamedGroupsAttributes(t *testing.T) {
	var buf bytes.Buffer
	lg := newBufferLogger(&buf, &slog.LevelVar{}).Named("eventlog").Named("treap")

	lg.Warn(context.Background(), "append after close", String("id", "e-1"))

	out := buf.String()
	if !strings.Contains(out, "append after close") {
		t.Errorf("output missing message: %s", out)
	}
	// nested Named calls nest as slog groups
	if !strings.Contains(out, "eventlog.treap.id=e-1") {
		t.Errorf("output missing grouped attribute: %s", out)
	}
}

func TestLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	lv := &slog.LevelVar{}
	lv.Set(slog.LevelError)
	lg := newBufferLogger(&buf, lv)
	ctx := context.Background()

	lg.Debug(ctx, "suppressed")
	lg.Info(ctx, "suppressed")
	lg.Warn(ctx, "suppressed")
	if buf.Len() != 0 {
		t.Errorf("below-threshold output: %s", buf.String())
	}

	lg.Error(ctx, "kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("error output missing: %s", buf.String())
	}
}

func TestSetLevelString(t *testing.T) {
	cases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"  warn  ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
	}
	for _, c := range cases {
		err := SetLevelString(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("SetLevelString(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("SetLevelString(%q): %v", c.in, err)
			continue
		}
		if got := levelVar.Level(); got != c.want {
			t.Errorf("SetLevelString(%q): level = %v, want %v", c.in, got, c.want)
		}
	}

	// restore the default for other tests
	if err := SetLevelString("info"); err != nil {
		t.Fatalf("restore level: %v", err)
	}
}
