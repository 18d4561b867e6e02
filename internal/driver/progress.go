package driver

import "time"

// Stage identifies the step a table file is in.
type Stage uint8

const (
	StageLoad Stage = iota
	StagePlan
)

func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StagePlan:
		return "plan"
	default:
		return "unknown"
	}
}

// Status captures progress within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	// StatusCached is a done plan that came from the plan cache.
	StatusCached Status = "cached"
	StatusError  Status = "error"
)

// Finished reports whether no further events follow for the file.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusCached || s == StatusError
}

// ProgressEvent reports progress for one file. File is empty for events that
// describe the whole run.
type ProgressEvent struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. PlanAll calls OnEvent from several
// goroutines.
type ProgressSink interface {
	OnEvent(ProgressEvent)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- ProgressEvent
}

func (s ChannelSink) OnEvent(ev ProgressEvent) {
	if s.Ch == nil {
		return
	}
	s.Ch <- ev
}

func emit(sink ProgressSink, ev ProgressEvent) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
