// Package report renders task results, address mappings and the run
// summary for the operator.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/cfgnet/pkg/cli"
	"github.com/newtron-network/cfgnet/pkg/pipeline"
	"github.com/newtron-network/cfgnet/pkg/task"
)

// targetWidth is the dot-padded width of the target column.
const targetWidth = 28

// Options configures a Reporter.
type Options struct {
	// Out defaults to stdout.
	Out io.Writer
	// Debug dumps each result as YAML instead of one line per host.
	Debug bool
}

// Reporter writes to a single stream. It is safe for concurrent use.
type Reporter struct {
	mu    sync.Mutex
	out   io.Writer
	debug bool
}

// New creates a Reporter.
func New(opts Options) *Reporter {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{out: out, debug: opts.Debug}
}

// debugRecord is the YAML shape of a result in debug mode.
type debugRecord struct {
	Target string       `yaml:"target"`
	Task   *task.Task   `yaml:"task"`
	Result *task.Result `yaml:"result"`
}

// Result renders one completed task.
func (r *Reporter) Result(res *task.Result) error {
	var text string
	if r.debug {
		data, err := yaml.Marshal([]debugRecord{{
			Target: res.Task.Target.String(),
			Task:   res.Task,
			Result: res,
		}})
		if err != nil {
			return fmt.Errorf("marshal result for %s: %w", res.Host, err)
		}
		text = string(data)
	} else {
		text = FormatResult(res)
	}
	return r.write(text)
}

// FormatResult renders the one-line summary of res, followed by the
// command output that explains it.
func FormatResult(res *task.Result) string {
	t := res.Task
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s  %s\n", cli.DotPad(t.Target.String(), targetWidth), addressColumn(t), cli.Status(res.Succeeded))
	switch {
	case !res.Succeeded && strings.TrimSpace(res.Stderr) != "":
		b.WriteString(cli.Indent(cli.Red(strings.TrimSpace(res.Stderr)), "    "))
		b.WriteString("\n")
	case res.Succeeded && t.TestOnly && strings.TrimSpace(res.Stdout) != "":
		b.WriteString(cli.Indent(strings.TrimSpace(res.Stdout), "    "))
		b.WriteString("\n")
	}
	return b.String()
}

func addressColumn(t *task.Task) string {
	switch {
	case t.TestOnly:
		return cli.Dim("test")
	case t.Address == nil:
		return cli.Dim("-")
	default:
		return fmt.Sprintf("%s/%d", t.Address, t.PrefixLen)
	}
}

// Mapping prints the "host => address" line used when only listing the
// allocation.
func (r *Reporter) Mapping(t *task.Task) error {
	address := "-"
	if t.Address != nil {
		address = t.Address.String()
	}
	return r.write(fmt.Sprintf("%s => %s\n", t.Host(), address))
}

// Summary prints the closing counts table. Hosts that never produced a
// result (cancelled runs) are shown as not run.
func (r *Reporter) Summary(s pipeline.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out)
	tbl := cli.NewTableTo(r.out, "TOTAL", "SUCCEEDED", "FAILED", "NOT RUN")
	failed := strconv.Itoa(s.Failed)
	if s.Failed > 0 {
		failed = cli.Red(failed)
	}
	tbl.Row(strconv.Itoa(s.Total), strconv.Itoa(s.Succeeded), failed, strconv.Itoa(s.Total-s.Reported()))
	return tbl.Flush()
}

func (r *Reporter) write(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := io.WriteString(r.out, text)
	return err
}
