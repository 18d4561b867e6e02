package trace_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"strswitch/internal/trace"
)

func TestLevelFiltersScopes(t *testing.T) {
	tests := []struct {
		level trace.Level
		scope trace.Scope
		want  bool
	}{
		{trace.LevelOff, trace.ScopeRun, false},
		{trace.LevelFile, trace.ScopeFile, true},
		{trace.LevelFile, trace.ScopeSwitch, false},
		{trace.LevelSwitch, trace.ScopeSwitch, true},
		{trace.LevelSwitch, trace.ScopeBucket, false},
		{trace.LevelDebug, trace.ScopeBucket, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := trace.ParseLevel("SWITCH"); err != nil || l != trace.LevelSwitch {
		t.Fatalf("ParseLevel: %v %v", l, err)
	}
	if _, err := trace.ParseLevel("phase"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if m, err := trace.ParseMode("both"); err != nil || m != trace.ModeBoth {
		t.Fatalf("ParseMode: %v %v", m, err)
	}
	if f, err := trace.ParseFormat("ndjson"); err != nil || f != trace.FormatNDJSON {
		t.Fatalf("ParseFormat: %v %v", f, err)
	}
}

func TestStreamTextSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelSwitch, trace.FormatText)

	run := trace.Begin(tr, trace.ScopeRun, "run", 0)
	sw := trace.Begin(tr, trace.ScopeSwitch, "switch:methods", run.ID())
	sw.WithExtra("strategy", "hash-based").WithExtra("nodes", "12")
	trace.Point(tr, trace.ScopeBucket, "bucket:3", "", sw.ID())
	sw.End("ok")
	run.End("")

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines (bucket filtered), got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "→ switch:methods") {
		t.Errorf("begin line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "← switch:methods (ok) {nodes=12, strategy=hash-based}") {
		t.Errorf("end line = %q", lines[2])
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr, err := trace.New(trace.Config{Level: trace.LevelDebug, Mode: trace.ModeStream, Format: trace.FormatNDJSON, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	trace.Begin(tr, trace.ScopeFile, "file:a.switch.toml", 0).End("")
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json %q: %v", line, err)
		}
		if m["scope"] != "file" {
			t.Fatalf("scope = %v", m["scope"])
		}
	}
}

func TestRingKeepsNewest(t *testing.T) {
	r := trace.NewRingTracer(3, trace.LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		trace.Point(r, trace.ScopeSwitch, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len = %d", len(snap))
	}
	for i, want := range []string{"c", "d", "e"} {
		if snap[i].Name != want {
			t.Errorf("snap[%d] = %q, want %q", i, snap[i].Name, want)
		}
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, trace.FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestMultiFansOut(t *testing.T) {
	var buf bytes.Buffer
	tr, err := trace.New(trace.Config{Level: trace.LevelFile, Mode: trace.ModeBoth, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	m, ok := tr.(*trace.MultiTracer)
	if !ok {
		t.Fatalf("ModeBoth gave %T", tr)
	}
	trace.Point(tr, trace.ScopeRun, "start", "", 0)
	if n := len(m.Ring().Snapshot()); n != 1 {
		t.Fatalf("ring has %d events", n)
	}
	if !strings.Contains(buf.String(), "start") {
		t.Fatalf("stream missing event: %q", buf.String())
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestContextPropagation(t *testing.T) {
	if trace.FromContext(context.Background()) != trace.Nop {
		t.Fatal("empty context should give Nop")
	}
	r := trace.NewRingTracer(4, trace.LevelSwitch)
	ctx := trace.WithTracer(context.Background(), r)
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "file", 0)
	ctx = trace.WithParent(ctx, span)
	if trace.ParentFrom(ctx) != span.ID() {
		t.Fatalf("parent = %d, want %d", trace.ParentFrom(ctx), span.ID())
	}
}

func TestDisabledSpanIsSafe(t *testing.T) {
	s := trace.Begin(trace.Nop, trace.ScopeRun, "run", 0)
	s.WithExtra("k", "v")
	if s.ID() != 0 {
		t.Fatal("disabled span must have id 0")
	}
	s.End("")
	tr, err := trace.New(trace.Config{})
	if err != nil || tr.Enabled() {
		t.Fatalf("LevelOff tracer: %v enabled=%v", err, tr.Enabled())
	}
}
