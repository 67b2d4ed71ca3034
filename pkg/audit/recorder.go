package audit

import (
	"github.com/newtron-network/cfgnet/pkg/task"
	"github.com/newtron-network/cfgnet/pkg/util"
)

// Sink receives pipeline output. It matches pipeline.Reporter.
type Sink interface {
	Result(r *task.Result) error
	Mapping(t *task.Task) error
}

// Recorder journals every result before passing it on. A journal write
// failure is logged and does not stop the run.
type Recorder struct {
	next   Sink
	logger Logger
	user   string
}

// NewRecorder wraps next so that each result is also written to logger.
func NewRecorder(next Sink, logger Logger, user string) *Recorder {
	return &Recorder{next: next, logger: logger, user: user}
}

// Result journals r and forwards it.
func (rec *Recorder) Result(r *task.Result) error {
	if err := rec.logger.Log(FromResult(rec.user, r)); err != nil {
		util.WithHost(r.Host).Warnf("audit: %v", err)
	}
	return rec.next.Result(r)
}

// Mapping forwards t; list-only runs change nothing and are not journalled.
func (rec *Recorder) Mapping(t *task.Task) error {
	return rec.next.Mapping(t)
}
