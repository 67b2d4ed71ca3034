// Package pipeline moves configuration tasks through a producer, a fixed
// pool of workers and a single reporter connected by bounded channels.
//
// Completion is signalled by closing channels: the producer closes the task
// channel when it runs out of tasks, and the result channel is closed once
// every worker has returned. A failing producer or reporter cancels the
// whole run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/newtron-network/cfgnet/pkg/task"
	"github.com/newtron-network/cfgnet/pkg/util"
)

const (
	// DefaultWorkers is the worker count when none is configured.
	DefaultWorkers = 6
	// DefaultQueueSize is the capacity of the task and result channels.
	DefaultQueueSize = 100
)

// Executor applies one task. It must report every failure through the
// returned result.
type Executor interface {
	Execute(ctx context.Context, t *task.Task) *task.Result
}

// Reporter renders pipeline output. It is only ever called from one
// goroutine at a time.
type Reporter interface {
	// Result renders a completed task.
	Result(r *task.Result) error
	// Mapping renders a host to address assignment in list-only mode.
	Mapping(t *task.Task) error
}

// Config configures a Pipeline.
type Config struct {
	Workers   int
	QueueSize int
	Executor  Executor
	Reporter  Reporter
	// ListOnly prints the host to address mapping instead of executing.
	ListOnly bool
}

// Summary counts what a run produced.
type Summary struct {
	Total     int `yaml:"total"`
	Succeeded int `yaml:"succeeded"`
	Failed    int `yaml:"failed"`
}

// Reported is the number of results the reporter received.
func (s Summary) Reported() int {
	return s.Succeeded + s.Failed
}

// Pipeline runs tasks. A Pipeline may be run more than once but not
// concurrently with itself.
type Pipeline struct {
	workers   int
	queueSize int
	executor  Executor
	reporter  Reporter
	listOnly  bool
}

// New validates cfg and fills in defaults.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: worker count must be at least 1, got %d", util.ErrInvalidConfig, cfg.Workers)
	}
	if cfg.Reporter == nil {
		return nil, fmt.Errorf("%w: reporter is required", util.ErrInvalidConfig)
	}
	if cfg.Executor == nil && !cfg.ListOnly {
		return nil, fmt.Errorf("%w: executor is required", util.ErrInvalidConfig)
	}

	p := &Pipeline{
		workers:   cfg.Workers,
		queueSize: cfg.QueueSize,
		executor:  cfg.Executor,
		reporter:  cfg.Reporter,
		listOnly:  cfg.ListOnly,
	}
	if p.workers == 0 {
		p.workers = DefaultWorkers
	}
	if p.queueSize <= 0 {
		p.queueSize = DefaultQueueSize
	}
	return p, nil
}

// Run executes every task exactly once and reports every result. Per-task
// failures are counted in the summary; the returned error is reserved for
// producer or reporter failures and cancellation of ctx.
func (p *Pipeline) Run(ctx context.Context, tasks []*task.Task) (Summary, error) {
	log := util.WithOperation("pipeline")
	summary := Summary{Total: len(tasks)}

	if p.listOnly {
		for _, t := range tasks {
			if err := p.reporter.Mapping(t); err != nil {
				return summary, fmt.Errorf("reporter: %w", err)
			}
		}
		return summary, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	taskCh := make(chan *task.Task, p.queueSize)
	resultCh := make(chan *task.Result, p.queueSize)

	var prodErr error
	prodDone := make(chan struct{})
	go func() {
		defer close(prodDone)
		defer close(taskCh)
		if prodErr = produce(ctx, tasks, taskCh); prodErr != nil {
			cancel()
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.work(ctx, id, taskCh, resultCh)
		}(i)
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var repErr error
	for r := range resultCh {
		if repErr != nil {
			continue
		}
		if r.Succeeded {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		if err := p.reporter.Result(r); err != nil {
			repErr = fmt.Errorf("reporter: %w", err)
			cancel()
		}
	}
	<-prodDone

	log.WithFields(map[string]interface{}{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	}).Debug("pipeline drained")

	switch {
	case repErr != nil:
		return summary, repErr
	case prodErr != nil && !errors.Is(prodErr, context.Canceled):
		return summary, prodErr
	case ctx.Err() != nil && summary.Reported() < summary.Total:
		return summary, fmt.Errorf("run cancelled after %d of %d hosts: %w", summary.Reported(), summary.Total, context.Canceled)
	}
	return summary, nil
}

func produce(ctx context.Context, tasks []*task.Task, out chan<- *task.Task) error {
	for i, t := range tasks {
		if t == nil {
			return fmt.Errorf("producer: nil task at position %d", i)
		}
		select {
		case out <- t:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (p *Pipeline) work(ctx context.Context, id int, in <-chan *task.Task, out chan<- *task.Result) {
	log := util.WithField("worker", id)
	log.Debug("worker started")
	defer log.Debug("worker exited")

	for t := range in {
		if ctx.Err() != nil {
			return
		}
		r := p.execute(ctx, t)
		util.WithHost(t.Host()).Debugf("task %d: %s", t.ID, r.Summary())
		select {
		case out <- r:
		case <-ctx.Done():
			return
		}
	}
}

// execute runs one task, converting a panic or a missing result into a
// failed result.
func (p *Pipeline) execute(ctx context.Context, t *task.Task) (r *task.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r = task.NewResult(t)
			r.Fail(fmt.Errorf("panic while configuring %s: %v", t.Host(), rec))
		}
	}()
	r = p.executor.Execute(ctx, t)
	if r == nil {
		r = task.NewResult(t)
		r.Fail(fmt.Errorf("no result for %s", t.Host()))
	}
	return r
}
