package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"strswitch/internal/cases"
	"strswitch/internal/driver"
	"strswitch/internal/observ"
	"strswitch/internal/plan"
	"strswitch/internal/planio"
	"strswitch/internal/selector"
	"strswitch/internal/trace"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadTableDefaults(t *testing.T) {
	sw, err := driver.LoadTable(filepath.Join("testdata", "methods.switch.toml"), selector.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if sw.Name != "methods" {
		t.Errorf("name = %q", sw.Name)
	}
	if sw.Request.Caps != cases.AllCaps() {
		t.Errorf("caps = %+v, want all present", sw.Request.Caps)
	}
	if n := len(sw.Request.Table.Cases); n != 8 {
		t.Errorf("cases = %d", n)
	}
}

func TestLoadTableNullableNormalized(t *testing.T) {
	sw, err := driver.LoadTable(filepath.Join("testdata", "nullable.switch.toml"), selector.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	req := sw.Request
	if sw.Name != "answers" || req.Scrutinee.Kind != cases.KindNullable || req.Table.Null != "missing" {
		t.Fatalf("switch = %q %+v null=%q", sw.Name, req.Scrutinee, req.Table.Null)
	}
	if req.Caps.IndexedChar || !req.Caps.AsSpan || !req.Caps.Length {
		t.Fatalf("caps = %+v", req.Caps)
	}
	cafe := req.Table.Cases[3].Key
	if !cafe.Equal(cases.KeyOf("caf\u00e9")) {
		t.Fatalf("key not NFC-normalized: %s", cafe.Quote())
	}
	if lone := req.Table.Cases[4].Key; len(lone) != 1 || lone[0] != 0xD800 {
		t.Fatalf("units key = %v", lone)
	}
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"no default", `[[case]]` + "\nkey = \"a\"\ntarget = \"A\"\n", "missing default"},
		{"unknown key", "default = \"d\"\ncolour = \"red\"\n", "unknown key"},
		{"bad kind", "default = \"d\"\n[scrutinee]\nkind = \"char\"\n", "invalid scrutinee kind"},
		{"bad normalize", "default = \"d\"\nnormalize = \"upper\"\n", "invalid normalize"},
		{"key and units", "default = \"d\"\n[[case]]\nkey = \"a\"\nunits = [97]\ntarget = \"A\"\n", "mutually exclusive"},
		{"unit overflow", "default = \"d\"\n[[case]]\nunits = [70000]\ntarget = \"A\"\n", "units[0]"},
		{"not toml", "default = ", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := driver.ParseTable("x", tt.data, selector.DefaultOptions())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestConfigWalkUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, driver.ConfigName), `
[planner]
min_cases = 3
disable_length_based = true

[cache]
dir = ".plans"
`)
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := driver.LoadConfig(sub)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != filepath.Join(root, driver.ConfigName) {
		t.Fatalf("path = %q", cfg.Path)
	}
	want := selector.DefaultOptions()
	want.MinCases = 3
	want.DisableLengthBased = true
	if cfg.Planner.MinCases != want.MinCases || cfg.Planner.DisableLengthBased != want.DisableLengthBased ||
		cfg.Planner.DenseFactor != want.DenseFactor || cfg.Planner.MaxProbeOffset != want.MaxProbeOffset {
		t.Fatalf("planner = %+v, want %+v", cfg.Planner, want)
	}
	if !cfg.CacheEnabled || cfg.CacheDir != filepath.Join(root, ".plans") {
		t.Fatalf("cache = %v %q", cfg.CacheEnabled, cfg.CacheDir)
	}
}

func TestConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, driver.ConfigName)
	writeFile(t, path, "[planner]\ndense_factor = 0\n")
	if _, err := driver.ReadConfig(path); err == nil || !strings.Contains(err.Error(), "dense_factor") {
		t.Fatalf("err = %v", err)
	}
}

func TestConfigMissingUsesDefaults(t *testing.T) {
	cfg, err := driver.LoadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != "" && !strings.HasSuffix(cfg.Path, driver.ConfigName) {
		t.Fatalf("path = %q", cfg.Path)
	}
	if cfg.Path != "" {
		return
	}
	if diff := cmp.Diff(selector.DefaultOptions(), cfg.Planner, cmpopts.IgnoreFields(selector.Options{}, "Hash")); diff != "" {
		t.Fatalf("planner mismatch (-want +got):\n%s", diff)
	}
	if cfg.CacheEnabled {
		t.Fatal("cache enabled without a config file")
	}
}

func TestCollectTables(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.switch.toml"), "default = \"d\"\n")
	writeFile(t, filepath.Join(dir, "nested", "a.switch.toml"), "default = \"d\"\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")

	got, err := driver.CollectTables([]string{dir, filepath.Join(dir, "b.switch.toml")})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || !strings.HasSuffix(got[0], "b.switch.toml") || !strings.HasSuffix(got[1], filepath.Join("nested", "a.switch.toml")) {
		t.Fatalf("got %v", got)
	}
}

func TestPlanAll(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.switch.toml")
	writeFile(t, broken, "default = \n")
	dup := filepath.Join(dir, "dup.switch.toml")
	writeFile(t, dup, "default = \"d\"\n[[case]]\nkey = \"a\"\ntarget = \"A\"\n[[case]]\nkey = \"a\"\ntarget = \"B\"\n")
	paths := []string{
		filepath.Join("testdata", "methods.switch.toml"),
		filepath.Join("testdata", "nullable.switch.toml"),
		broken,
		dup,
	}

	ring := trace.NewRingTracer(256, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	timer := observ.NewTimer()
	var phases []string
	results, err := driver.PlanAll(ctx, paths, driver.Options{
		Planner:  selector.DefaultOptions(),
		Jobs:     2,
		Validate: true,
		Timer:    timer,
		Observer: func(ev driver.PhaseEvent) {
			if ev.Status == driver.PhaseEnd {
				phases = append(phases, ev.Name)
			}
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("results = %d", len(results))
	}

	methods := results[0]
	if methods.Err != nil || methods.Plan.Strategy != plan.StrategyLengthBased {
		t.Fatalf("methods: err=%v plan=%+v", methods.Err, methods.Plan)
	}
	if methods.Stats.Nodes != len(methods.Plan.Nodes) {
		t.Fatalf("stats not measured: %+v", methods.Stats)
	}
	answers := results[1]
	if answers.Err != nil {
		t.Fatalf("answers: %v", answers.Err)
	}
	if r, _ := plan.Eval(answers.Plan, cases.Null()); r.Target != "missing" {
		t.Fatalf("null -> %q", r.Target)
	}
	if results[2].Err == nil || !strings.Contains(results[2].Err.Error(), "broken.switch.toml") {
		t.Fatalf("broken: %v", results[2].Err)
	}
	if !errors.Is(results[3].Err, cases.ErrDuplicateKey) {
		t.Fatalf("dup: %v", results[3].Err)
	}

	var sawSwitch, sawBucket bool
	for _, ev := range ring.Snapshot() {
		if ev.Name == "switch:methods" && ev.Kind == trace.KindSpanEnd {
			sawSwitch = ev.Extra["strategy"] == "length-based"
		}
		if ev.Scope == trace.ScopeBucket {
			sawBucket = true
		}
	}
	if !sawSwitch || !sawBucket {
		t.Fatalf("trace: switch=%v bucket=%v", sawSwitch, sawBucket)
	}

	if strings.Join(phases, ",") != "load,plan" {
		t.Fatalf("phases = %v", phases)
	}
	var names []string
	for _, p := range timer.Report().Phases {
		names = append(names, p.Name)
	}
	if strings.Join(names, ",") != "load,plan,select" {
		t.Fatalf("timer phases = %v", names)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []driver.ProgressEvent
}

func (s *recordingSink) OnEvent(ev driver.ProgressEvent) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func TestPlanAllProgress(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.switch.toml")
	writeFile(t, broken, "[[case]]\nkey = \"a\"\ntarget = \"A\"\n")
	methods := filepath.Join("testdata", "methods.switch.toml")
	paths := []string{methods, broken}

	sink := &recordingSink{}
	if _, err := driver.PlanAll(context.Background(), paths, driver.Options{
		Planner:  selector.DefaultOptions(),
		Validate: true,
		Progress: sink,
	}); err != nil {
		t.Fatal(err)
	}

	for i, path := range paths {
		ev := sink.events[i]
		if ev.File != path || ev.Status != driver.StatusQueued {
			t.Fatalf("event %d = %+v, want queued %s", i, ev, path)
		}
	}
	final := map[string]driver.ProgressEvent{}
	for _, ev := range sink.events {
		if ev.File != "" && ev.Status.Finished() {
			if prev, ok := final[ev.File]; ok {
				t.Fatalf("%s finished twice: %+v then %+v", ev.File, prev, ev)
			}
			final[ev.File] = ev
		}
	}
	if ev := final[methods]; ev.Stage != driver.StagePlan || ev.Status != driver.StatusDone {
		t.Fatalf("methods = %+v", ev)
	}
	if ev := final[broken]; ev.Stage != driver.StageLoad || ev.Status != driver.StatusError || ev.Err == nil {
		t.Fatalf("broken = %+v", ev)
	}
	last := sink.events[len(sink.events)-1]
	if last.File != "" || last.Stage != driver.StagePlan || last.Status != driver.StatusDone {
		t.Fatalf("last event = %+v", last)
	}
}

func TestPlanOneUsesCache(t *testing.T) {
	c, err := planio.OpenCache("strswitch", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sw, err := driver.LoadTable(filepath.Join("testdata", "methods.switch.toml"), selector.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	opts := driver.Options{Cache: c}
	first := driver.PlanOne(context.Background(), sw, opts)
	second := driver.PlanOne(context.Background(), sw, opts)
	if first.Err != nil || second.Err != nil {
		t.Fatalf("errors: %v %v", first.Err, second.Err)
	}
	if first.Cached || !second.Cached {
		t.Fatalf("cached = %v, %v", first.Cached, second.Cached)
	}
	if first.Stats != second.Stats {
		t.Fatalf("stats differ: %+v vs %+v", first.Stats, second.Stats)
	}
}

func TestCheck(t *testing.T) {
	sw, err := driver.LoadTable(filepath.Join("testdata", "nullable.switch.toml"), selector.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	rep := driver.Check(sw)
	if rep.Failed() {
		t.Fatalf("check failed: %v", rep.Err())
	}
	got := make([]plan.Strategy, len(rep.Checks))
	for i, c := range rep.Checks {
		got[i] = c.Got
		if c.WorstSteps == 0 {
			t.Errorf("%s: no steps recorded", c.Requested)
		}
	}
	want := []plan.Strategy{plan.StrategyFlat, plan.StrategyLengthBased, plan.StrategyHashBased}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("strategies = %v, want %v", got, want)
		}
	}
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		in   string
		want cases.Value
	}{
		{"null", cases.Null()},
		{"<object>", cases.Other()},
		{"GET", cases.Str("GET")},
		{`"null"`, cases.Str("null")},
		{`""`, cases.Str("")},
		{"units:d800,0x41", cases.Units([]uint16{0xD800, 0x41})},
	}
	for _, tt := range tests {
		got, err := driver.ParseInput(tt.in)
		if err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if got.Kind != tt.want.Kind || !got.Units.Equal(tt.want.Units) {
			t.Errorf("ParseInput(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := driver.ParseInput("units:zz"); err == nil {
		t.Fatal("expected error for bad units")
	}
}
