package remote

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/cfgnet/pkg/task"
	"github.com/newtron-network/cfgnet/pkg/util"
)

// Executor applies tasks. It is safe for concurrent use when its Dialer is.
type Executor struct {
	dialer Dialer
}

// NewExecutor creates an executor that opens one connection per task.
func NewExecutor(d Dialer) *Executor {
	return &Executor{dialer: d}
}

// recordedError marks a failure already captured in the result's command
// log, so its stderr must not be overwritten.
type recordedError struct {
	err error
}

func (e *recordedError) Error() string { return e.err.Error() }
func (e *recordedError) Unwrap() error { return e.err }

// Execute runs t against its host and returns the filled-in result. All
// failures are reported through the result.
func (e *Executor) Execute(ctx context.Context, t *task.Task) *task.Result {
	start := time.Now()
	r := task.NewResult(t)
	e.execute(ctx, t, r)
	r.Duration = time.Since(start)
	return r
}

func (e *Executor) execute(ctx context.Context, t *task.Task, r *task.Result) {
	log := util.WithHost(t.Host())

	conn, err := e.dialer.Dial(ctx, t)
	if err != nil {
		log.Debugf("connect failed: %v", err)
		r.Fail(err)
		return
	}
	defer conn.Close()

	if t.TestOnly {
		err = e.run(ctx, log, conn, r, TestCommand)
	} else {
		err = e.configure(ctx, log, conn, r)
	}
	if err != nil {
		log.Debugf("task failed: %v", err)
		var rec *recordedError
		if !errors.As(err, &rec) || strings.TrimSpace(r.Stderr) == "" {
			r.Fail(err)
		}
	}
}

func (e *Executor) configure(ctx context.Context, log *logrus.Entry, conn Conn, r *task.Result) error {
	t := r.Task

	profile := t.Connection
	if profile == "" {
		device := t.Device
		if device == "" {
			if err := e.run(ctx, log, conn, r, ProbeRouteCommand()); err != nil {
				return err
			}
			var err error
			if device, err = ParseRouteDevice(r.Stdout); err != nil {
				return err
			}
		}
		r.Device = device

		if err := e.run(ctx, log, conn, r, ConnectDeviceCommand(device)); err != nil {
			return err
		}
		uuid, err := ParseProfileUUID(device, r.Stdout)
		if err != nil {
			return err
		}
		profile = uuid
	}
	r.Profile = profile

	modify, err := BuildModifyCommand(profile, t)
	if err != nil {
		return err
	}
	if err := e.run(ctx, log, conn, r, modify); err != nil {
		return err
	}
	if err := e.run(ctx, log, conn, r, ReloadCommand); err != nil {
		return err
	}
	if t.NoUp {
		return nil
	}
	return e.run(ctx, log, conn, r, UpCommand(profile))
}

// run issues one command and records it. Transport errors and non-zero
// exits are both returned as a *recordedError.
func (e *Executor) run(ctx context.Context, log *logrus.Entry, conn Conn, r *task.Result, cmd string) error {
	log.WithField("cmd", cmd).Debug("run")

	out, err := conn.Run(ctx, cmd)
	rec := task.CommandRecord{
		Cmd:        cmd,
		Stdout:     out.Stdout,
		Stderr:     out.Stderr,
		ExitStatus: out.Status,
	}
	if err != nil {
		rec.Err = err.Error()
		r.Record(rec)
		return &recordedError{err: err}
	}
	r.Record(rec)
	if out.Status != 0 {
		return &recordedError{err: &util.CommandError{
			Host:   r.Host,
			Cmd:    cmd,
			Status: out.Status,
			Stderr: out.Stderr,
		}}
	}
	return nil
}
