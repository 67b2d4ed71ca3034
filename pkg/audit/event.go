// Package audit keeps a journal of the configuration applied to each host.
package audit

import (
	"fmt"
	"time"

	"github.com/newtron-network/cfgnet/pkg/task"
)

// Event records the outcome of one task against one host
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Host      string        `json:"host"`
	Target    string        `json:"target"`
	Operation string        `json:"operation"`
	Address   string        `json:"address,omitempty"`
	Gateway   string        `json:"gateway,omitempty"`
	DNS       string        `json:"dns,omitempty"`
	Mode      string        `json:"mode,omitempty"`
	Profile   string        `json:"profile,omitempty"`
	Commands  []string      `json:"commands"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Operations recorded in the journal
const (
	OperationConfigure = "configure"
	OperationTest      = "test"
)

// Filter defines criteria for querying audit events
type Filter struct {
	Host        string
	User        string
	Operation   string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(user, host, operation string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		User:      user,
		Host:      host,
		Operation: operation,
	}
}

// FromResult builds the event for a finished task.
func FromResult(user string, r *task.Result) *Event {
	t := r.Task
	op := OperationConfigure
	if t.TestOnly {
		op = OperationTest
	}

	e := NewEvent(user, r.Host, op).
		WithCommands(r.Issued()).
		WithDuration(r.Duration)
	e.Target = t.Target.String()
	e.Profile = r.Profile
	if !t.TestOnly {
		e.Mode = t.Mode.String()
		e.DNS = t.DNS
		if t.Address != nil {
			e.Address = fmt.Sprintf("%s/%d", t.Address, t.PrefixLen)
		}
		if t.Gateway != nil {
			e.Gateway = t.Gateway.String()
		}
	}

	if r.Succeeded {
		return e.WithSuccess()
	}
	e.Success = false
	e.Error = r.Summary()
	return e
}

// WithCommands sets the commands issued
func (e *Event) WithCommands(cmds []string) *Event {
	e.Commands = cmds
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
