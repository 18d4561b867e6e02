// Package driver loads case-table files, plans them concurrently and reports
// timings and trace spans. It is the host glue around the pure planners.
package driver

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"strswitch/internal/cases"
	"strswitch/internal/observ"
	"strswitch/internal/plan"
	"strswitch/internal/planio"
	"strswitch/internal/selector"
	"strswitch/internal/trace"
)

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary of PlanAll.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted by PlanAll.
type PhaseObserver func(PhaseEvent)

// Options controls a planning run.
type Options struct {
	// Planner is the tuning applied to every table.
	Planner selector.Options
	// Jobs bounds concurrent planning; zero uses GOMAXPROCS.
	Jobs int
	// Validate runs cases.Validate on each table before planning.
	Validate bool
	Cache    *planio.Cache
	Timer    *observ.Timer
	Observer PhaseObserver
	// Progress receives per-file events from PlanAll.
	Progress ProgressSink
}

// Result is the outcome for one table file.
type Result struct {
	Path   string
	Switch *Switch
	Plan   *plan.Plan
	Stats  plan.Stats
	Cached bool
	// Err is set when the file could not be loaded, validated or planned.
	// Other files are still planned.
	Err error
}

// PlanAll loads and plans every path. Per-file failures are recorded in the
// results; the returned error is only set when ctx is cancelled.
func PlanAll(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	tr := trace.FromContext(ctx)
	runSpan := trace.Begin(tr, trace.ScopeRun, "plan-all", trace.ParentFrom(ctx))
	defer runSpan.End("")
	ctx = trace.WithParent(ctx, runSpan)

	results := make([]Result, len(paths))
	for _, path := range paths {
		emit(opts.Progress, ProgressEvent{File: path, Stage: StageLoad, Status: StatusQueued})
	}
	phase := opts.beginPhase("load")
	emit(opts.Progress, ProgressEvent{Stage: StageLoad, Status: StatusWorking})
	for i, path := range paths {
		started := time.Now()
		emit(opts.Progress, ProgressEvent{File: path, Stage: StageLoad, Status: StatusWorking})
		results[i].Path = path
		results[i].Switch, results[i].Err = LoadTable(path, opts.Planner)
		if results[i].Err != nil {
			emit(opts.Progress, ProgressEvent{File: path, Stage: StageLoad, Status: StatusError, Err: results[i].Err, Elapsed: time.Since(started)})
		}
	}
	opts.endPhase(phase, fmt.Sprintf("%d files", len(paths)))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	phase = opts.beginPhase("plan")
	emit(opts.Progress, ProgressEvent{Stage: StagePlan, Status: StatusWorking})
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := results[i].Path
			started := time.Now()
			emit(opts.Progress, ProgressEvent{File: path, Stage: StagePlan, Status: StatusWorking})
			res := PlanOne(gctx, results[i].Switch, opts)
			res.Path = path
			results[i] = res
			emit(opts.Progress, ProgressEvent{File: path, Stage: StagePlan, Status: res.status(), Err: res.Err, Elapsed: time.Since(started)})
			return nil
		})
	}
	err := g.Wait()
	opts.endPhase(phase, "")
	emit(opts.Progress, ProgressEvent{Stage: StagePlan, Status: StatusDone})
	runSpan.WithExtra("files", strconv.Itoa(len(paths)))
	return results, err
}

func (r *Result) status() Status {
	switch {
	case r.Err != nil:
		return StatusError
	case r.Cached:
		return StatusCached
	default:
		return StatusDone
	}
}

// PlanOne plans a loaded switch, consulting the cache when one is configured.
func PlanOne(ctx context.Context, sw *Switch, opts Options) Result {
	res := Result{Switch: sw}
	if sw == nil {
		res.Err = fmt.Errorf("nil switch")
		return res
	}
	res.Path = sw.Path

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeSwitch, "switch:"+sw.Name, trace.ParentFrom(ctx))
	started := time.Now()
	defer func() {
		if opts.Timer != nil {
			opts.Timer.Add("select", time.Since(started))
		}
		detail := "ok"
		if res.Err != nil {
			detail = res.Err.Error()
		} else if res.Cached {
			detail = "cached"
		}
		span.End(detail)
	}()

	if opts.Validate {
		if err := cases.Validate(sw.Request.Table); err != nil {
			res.Err = err
			return res
		}
	}

	key, cacheable := planio.Key(sw.Request)
	if cacheable && opts.Cache != nil {
		p, ok, err := opts.Cache.Get(key)
		switch {
		case err != nil:
			trace.Point(tr, trace.ScopeSwitch, "cache-get", err.Error(), span.ID())
		case ok:
			res.Plan, res.Cached = p, true
		}
	}
	if res.Plan == nil {
		p, err := selector.Select(sw.Request)
		if err != nil {
			res.Err = err
			return res
		}
		res.Plan = p
		if cacheable && opts.Cache != nil {
			if err := opts.Cache.Put(key, p); err != nil {
				trace.Point(tr, trace.ScopeSwitch, "cache-put", err.Error(), span.ID())
			}
		}
	}

	res.Stats = plan.Measure(res.Plan)
	span.WithExtra("strategy", res.Plan.Strategy.String()).
		WithExtra("nodes", strconv.Itoa(res.Stats.Nodes)).
		WithExtra("depth", strconv.Itoa(res.Stats.Depth))
	traceBuckets(tr, res.Plan, span.ID())
	return res
}

// traceBuckets emits one point per populated length of a length dispatch.
func traceBuckets(tr trace.Tracer, p *plan.Plan, parent uint64) {
	if !tr.Level().ShouldEmit(trace.ScopeBucket) {
		return
	}
	for i := range p.Nodes {
		n := &p.Nodes[i]
		if n.Kind != plan.NodeLengthDispatch {
			continue
		}
		for j, child := range n.LengthDispatch.Table {
			c := p.Node(child)
			if c == nil || c.Kind == plan.NodeDefaultTarget {
				continue
			}
			trace.Point(tr, trace.ScopeBucket, fmt.Sprintf("bucket:len=%d", n.LengthDispatch.MinLen+j), c.Kind.String(), parent)
		}
	}
}

type phase struct {
	name    string
	idx     int
	started time.Time
}

func (o Options) beginPhase(name string) phase {
	if o.Observer != nil {
		o.Observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	ph := phase{name: name, idx: -1, started: time.Now()}
	if o.Timer != nil {
		ph.idx = o.Timer.Begin(name)
	}
	return ph
}

func (o Options) endPhase(ph phase, note string) {
	if o.Timer != nil {
		o.Timer.End(ph.idx, note)
	}
	if o.Observer != nil {
		o.Observer(PhaseEvent{Name: ph.name, Status: PhaseEnd, Elapsed: time.Since(ph.started)})
	}
}
