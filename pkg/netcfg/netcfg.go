// Package netcfg turns the operator's raw options into a validated run
// plan: the ordered host pool, the allocator configuration and the
// settings shared by every task.
package netcfg

import (
	"fmt"
	"net"
	"strings"

	"github.com/newtron-network/cfgnet/pkg/addr"
	"github.com/newtron-network/cfgnet/pkg/pool"
	"github.com/newtron-network/cfgnet/pkg/task"
	"github.com/newtron-network/cfgnet/pkg/util"
)

const (
	// DefaultDNS4 is used for IPv4 runs when no DNS list is given.
	DefaultDNS4 = "114.114.114.114,1.2.4.8"
	// DefaultDNS6 is used for IPv6 runs when no DNS list is given.
	DefaultDNS6 = "2001:4860:4860::8888,2001:4860:4860::8844"
	// DisableDNS as the DNS value leaves DNS unconfigured.
	DisableDNS = "-"
	// DefaultConcurrency is the default worker count.
	DefaultConcurrency = 6
)

// Options are the operator inputs for one run, as given on the command
// line after settings have been merged in.
type Options struct {
	PoolFile    string
	User        string
	Descending  bool
	NoSort      bool
	ManualAsc   string
	ManualDesc  string
	Family      int
	Network     string
	Gateway     string
	Start       string
	DNS         string
	DefaultDNS4 string
	DefaultDNS6 string
	Exclude     string
	ExcludeFile string
	Device      string
	Connection  string
	Add         bool
	Sub         bool
	NoUp        bool
	Concurrency int
	ListOnly    bool
	TestOnly    bool
	Password    string
}

// Plan is a validated run.
type Plan struct {
	Pool        *pool.Pool
	Allocator   addr.AllocatorConfig
	Spec        task.Spec
	Concurrency int
	ListOnly    bool
}

// Tasks allocates addresses and builds one task per pool host. A fresh
// allocator is used on every call.
func (p *Plan) Tasks() ([]*task.Task, error) {
	return task.NewFactory(p.Pool, addr.NewAllocator(p.Allocator), p.Spec).Build()
}

// resolver carries state while options are checked. Problems are
// collected rather than returned so the operator sees all of them at once.
type resolver struct {
	vb     util.ValidationBuilder
	family int
	// source names the input the family was inferred from.
	source string
}

// bind infers the run's address family from ip, or checks ip against it.
func (r *resolver) bind(what string, ip net.IP) bool {
	v := addr.Version(ip)
	if r.family == 0 {
		r.family = v
		r.source = what
		return true
	}
	if v != r.family {
		r.vb.AddErrorf("%s %s is IPv%d but %s is IPv%d", what, ip, v, r.source, r.family)
		return false
	}
	return true
}

// parseIn parses s as an address of the run's family inside seg, if any.
func (r *resolver) parseIn(what, s string, seg *addr.Segment) net.IP {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	ip, err := addr.Parse(s)
	if err != nil {
		r.vb.AddErrorf("%s: %v", what, err)
		return nil
	}
	if !r.bind(what, ip) {
		return nil
	}
	if seg != nil && !seg.Contains(ip) {
		r.vb.AddErrorf("%s %s is not in network %s", what, ip, seg)
		return nil
	}
	return ip
}

// Resolve validates o and builds the plan. Every problem found is reported
// in one *util.ValidationError.
func (o Options) Resolve() (*Plan, error) {
	r := &resolver{family: o.Family}
	if o.Family != 0 {
		r.source = "--type"
	}

	r.vb.Add(o.Concurrency >= 1, fmt.Sprintf("concurrency must be at least 1, got %d", o.Concurrency))
	r.vb.Add(!(o.Add && o.Sub), "--add and --sub are mutually exclusive")
	r.vb.Add(o.Device == "" || o.Connection == "", "--eth and --cname are mutually exclusive")
	r.vb.Add(strings.TrimSpace(o.ManualAsc) == "" || strings.TrimSpace(o.ManualDesc) == "",
		"--manual-asc and --manual-desc are mutually exclusive")
	r.vb.Add(o.Family == 0 || o.Family == 4 || o.Family == 6, fmt.Sprintf("address type must be 4 or 6, got %d", o.Family))
	r.vb.Add(strings.TrimSpace(o.PoolFile) != "", "a pool file is required (--pool)")

	var seg *addr.Segment
	if network := strings.TrimSpace(o.Network); network != "" {
		if !strings.Contains(network, "/") {
			r.vb.AddErrorf("network %q must include a prefix length", network)
		} else if s, err := addr.ParseSegment(network); err != nil {
			r.vb.AddErrorf("network: %v", err)
		} else if r.bind("network", s.Network()) {
			seg = s
		}
	}

	gateway := r.parseIn("gateway", o.Gateway, seg)
	start := r.parseIn("start address", o.Start, seg)

	manualFlag, manualValue := "--manual-asc", o.ManualAsc
	descending := false
	if strings.TrimSpace(o.ManualDesc) != "" {
		manualFlag, manualValue = "--manual-desc", o.ManualDesc
		descending = true
	}
	manual := r.parseIn(manualFlag+" address", manualValue, seg)

	dns := r.resolveDNS(o)

	var excluded []net.IP
	if ips, err := addr.ParseList(o.Exclude); err != nil {
		r.vb.AddErrorf("--lexclude: %v", err)
	} else {
		excluded = append(excluded, ips...)
	}
	if o.ExcludeFile != "" {
		if ips, err := addr.ReadListFile(o.ExcludeFile); err != nil {
			r.vb.AddErrorf("--fexclude: %v", err)
		} else {
			excluded = append(excluded, ips...)
		}
	}
	var exclude *addr.ExclusionSet
	for _, ip := range excluded {
		if !r.bind("excluded address", ip) {
			continue
		}
		if exclude == nil {
			exclude, _ = addr.NewExclusionSet(r.family)
		}
		exclude.Add(ip)
	}

	if r.family == 0 && !o.TestOnly && !r.vb.HasErrors() {
		r.vb.AddError("nothing to configure: give --network, --gateway or --dns (with --type)")
	}

	var p *pool.Pool
	if strings.TrimSpace(o.PoolFile) != "" {
		var err error
		p, err = pool.ReadFile(o.PoolFile, pool.Options{DefaultUser: strings.TrimSpace(o.User), Order: o.order()})
		if err != nil {
			r.vb.AddError(err.Error())
		}
	}

	if err := r.vb.Build(); err != nil {
		return nil, err
	}

	mode := task.Replace
	switch {
	case o.Add:
		mode = task.Add
	case o.Sub:
		mode = task.Remove
	}

	plan := &Plan{
		Pool: p,
		Allocator: addr.AllocatorConfig{
			Segment:    seg,
			Gateway:    gateway,
			Exclude:    exclude,
			Start:      start,
			Manual:     manual,
			Descending: descending,
		},
		Spec: task.Spec{
			Segment:    seg,
			Family:     r.family,
			Gateway:    gateway,
			DNS:        dns,
			Device:     strings.TrimSpace(o.Device),
			Connection: strings.TrimSpace(o.Connection),
			Mode:       mode,
			NoUp:       o.NoUp,
			TestOnly:   o.TestOnly,
			Password:   o.Password,
		},
		Concurrency: o.Concurrency,
		ListOnly:    o.ListOnly,
	}
	util.WithFields(map[string]interface{}{
		"hosts":   p.Len(),
		"family":  r.family,
		"network": o.Network,
		"mode":    mode.String(),
	}).Debug("plan resolved")
	return plan, nil
}

// resolveDNS returns the space-separated DNS list for the task, or "" when
// DNS is not configured.
func (r *resolver) resolveDNS(o Options) string {
	value := strings.TrimSpace(o.DNS)
	if value == DisableDNS {
		return ""
	}
	if value == "" {
		switch r.family {
		case 4:
			value = firstNonEmpty(o.DefaultDNS4, DefaultDNS4)
		case 6:
			value = firstNonEmpty(o.DefaultDNS6, DefaultDNS6)
		default:
			if !o.TestOnly {
				r.vb.AddError("cannot pick default DNS servers without an address type; give --type, an address or --dns")
			}
			return ""
		}
	}

	var servers []string
	for _, item := range util.SplitList(value) {
		ip, err := addr.Parse(item)
		if err != nil {
			r.vb.AddErrorf("dns: %v", err)
			continue
		}
		if r.bind("dns server", ip) {
			servers = append(servers, ip.String())
		}
	}
	return strings.Join(servers, " ")
}

func (o Options) order() pool.Order {
	switch {
	case o.NoSort:
		return pool.Unsorted
	case o.Descending:
		return pool.Descending
	default:
		return pool.Ascending
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
