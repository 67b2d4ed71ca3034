// Package task defines the per-host configuration task, the result produced
// by executing it, and the factory that binds pool hosts to allocated
// addresses.
package task

import (
	"net"
	"strings"
	"time"

	"github.com/newtron-network/cfgnet/pkg/pool"
)

// Mode selects how address, gateway and DNS properties are applied to the
// connection profile.
type Mode int

const (
	// Replace overwrites the existing values.
	Replace Mode = iota
	// Add appends to the existing values.
	Add
	// Remove deletes the given values.
	Remove
)

// Prefix returns the property-name prefix for the mode.
func (m Mode) Prefix() string {
	switch m {
	case Add:
		return "+"
	case Remove:
		return "-"
	default:
		return ""
	}
}

func (m Mode) String() string {
	switch m {
	case Add:
		return "add"
	case Remove:
		return "remove"
	default:
		return "replace"
	}
}

// MarshalYAML renders the mode by name in debug dumps.
func (m Mode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// Task describes the configuration for one host. It is built once by the
// Factory and never modified afterwards; execution output goes to a Result.
type Task struct {
	ID         int        `yaml:"id"`
	Target     pool.Entry `yaml:"-"`
	Address    net.IP     `yaml:"address,omitempty"`
	PrefixLen  int        `yaml:"prefix_len"`
	Gateway    net.IP     `yaml:"gateway,omitempty"`
	DNS        string     `yaml:"dns,omitempty"`
	Device     string     `yaml:"device,omitempty"`
	Connection string     `yaml:"connection,omitempty"`
	Family     int        `yaml:"family"`
	Mode       Mode       `yaml:"mode"`
	NoUp       bool       `yaml:"no_up"`
	TestOnly   bool       `yaml:"test_only"`
	// ConfigureAddress is set when a segment was given, so Address is
	// expected to be present.
	ConfigureAddress bool   `yaml:"configure_address"`
	Password         string `yaml:"-"`
}

// Host returns the target host address as a string.
func (t *Task) Host() string {
	return t.Target.Host.String()
}

// CommandRecord is one remote command and its outcome.
type CommandRecord struct {
	Cmd        string `yaml:"cmd"`
	Stdout     string `yaml:"stdout,omitempty"`
	Stderr     string `yaml:"stderr,omitempty"`
	ExitStatus int    `yaml:"exit_status"`
	Err        string `yaml:"error,omitempty"`
}

// OK reports whether the command ran and exited zero.
func (c CommandRecord) OK() bool {
	return c.Err == "" && c.ExitStatus == 0
}

// Result is the outcome of executing a Task. It starts empty, is filled in
// command by command, and is final once it leaves the worker.
type Result struct {
	Task      *Task           `yaml:"-"`
	TaskID    int             `yaml:"task_id"`
	Host      string          `yaml:"host"`
	Commands  []CommandRecord `yaml:"commands"`
	Stdout    string          `yaml:"stdout,omitempty"`
	Stderr    string          `yaml:"stderr,omitempty"`
	Succeeded bool            `yaml:"succeeded"`
	Device    string          `yaml:"device,omitempty"`
	Profile   string          `yaml:"profile,omitempty"`
	Duration  time.Duration   `yaml:"duration"`
}

// NewResult starts an empty result for t.
func NewResult(t *Task) *Result {
	return &Result{Task: t, TaskID: t.ID, Host: t.Host()}
}

// Record appends a command outcome. The result's stdout, stderr and
// success flag track the most recent command.
func (r *Result) Record(rec CommandRecord) {
	r.Commands = append(r.Commands, rec)
	r.Stdout = rec.Stdout
	r.Stderr = rec.Stderr
	if rec.Err != "" {
		r.Stderr = rec.Err
	}
	r.Succeeded = rec.OK()
}

// Fail marks the result failed with err as its error text.
func (r *Result) Fail(err error) {
	r.Succeeded = false
	r.Stderr = err.Error()
}

// Issued returns the commands sent, in order.
func (r *Result) Issued() []string {
	out := make([]string, len(r.Commands))
	for i, c := range r.Commands {
		out[i] = c.Cmd
	}
	return out
}

// Summary is a one-line description used in logs.
func (r *Result) Summary() string {
	if r.Succeeded {
		return "ok"
	}
	return strings.TrimSpace(r.Stderr)
}
