package addr

import (
	"net"

	"github.com/apparentlymart/go-cidr/cidr"
)

// Allocator hands out host addresses one at a time. Once Next reports
// false the allocator is exhausted and keeps reporting false; it cannot be
// restarted.
type Allocator interface {
	Next() (net.IP, bool)
}

// AllocatorConfig selects and parameterizes the allocation mode.
//
// With Manual set, the allocator steps from Manual by one address in the
// direction given by Descending. Otherwise it runs segment-relative: the
// base is Start, else Gateway+1, else the first (ascending) or last
// (descending) usable address, and the direction follows the gateway's
// position in the segment.
type AllocatorConfig struct {
	Segment    *Segment
	Gateway    net.IP
	Exclude    *ExclusionSet
	Start      net.IP
	Manual     net.IP
	Descending bool
}

// NewAllocator returns the allocator for cfg. Without a segment the result
// is exhausted from the start.
func NewAllocator(cfg AllocatorConfig) Allocator {
	if cfg.Segment == nil {
		return exhausted{}
	}
	skip := func(ip net.IP) bool {
		return Equal(ip, cfg.Gateway) || cfg.Exclude.Contains(ip)
	}
	seg := cfg.Segment

	if cfg.Manual != nil {
		return &chain{walks: []*walk{newWalk(seg, cfg.Manual, cfg.Descending, skip)}}
	}

	first := cidr.Inc(seg.Network())
	last := cidr.Dec(seg.Broadcast())

	base := cfg.Start
	if base == nil && cfg.Gateway != nil {
		base = cidr.Inc(cfg.Gateway)
	}

	switch {
	case cfg.Gateway != nil && Equal(cfg.Gateway, first):
		if base == nil {
			base = first
		}
		return &chain{walks: []*walk{newWalk(seg, base, false, skip)}}
	case cfg.Gateway != nil && Equal(cfg.Gateway, last):
		if base == nil {
			base = last
		}
		return &chain{walks: []*walk{newWalk(seg, base, true, skip)}}
	default:
		if base == nil {
			base = first
		}
		// The descending pass starts just below the ascending base so no
		// address is produced twice.
		return &chain{walks: []*walk{
			newWalk(seg, base, false, skip),
			newWalk(seg, cidr.Dec(base), true, skip),
		}}
	}
}

type exhausted struct{}

func (exhausted) Next() (net.IP, bool) { return nil, false }

// chain drains its walks in order.
type chain struct {
	walks []*walk
}

func (c *chain) Next() (net.IP, bool) {
	for len(c.walks) > 0 {
		if ip, ok := c.walks[0].next(); ok {
			return ip, true
		}
		c.walks = c.walks[1:]
	}
	return nil, false
}

// walk steps through one segment in one direction. Reaching the far
// boundary ends the walk; starting on the near-side boundary only skips it.
type walk struct {
	seg  *Segment
	cur  net.IP
	desc bool
	skip func(net.IP) bool
	done bool
}

func newWalk(seg *Segment, from net.IP, desc bool, skip func(net.IP) bool) *walk {
	w := &walk{seg: seg, desc: desc, skip: skip}
	if from == nil || !seg.Contains(from) {
		w.done = true
		return w
	}
	w.cur = normalize(from)
	return w
}

func (w *walk) next() (net.IP, bool) {
	for !w.done {
		cand := w.cur
		if w.desc {
			if Compare(cand, w.seg.Network()) <= 0 {
				w.done = true
				break
			}
			w.cur = cidr.Dec(cand)
			if Compare(cand, w.seg.Broadcast()) >= 0 {
				continue
			}
		} else {
			if Compare(cand, w.seg.Broadcast()) >= 0 {
				w.done = true
				break
			}
			w.cur = cidr.Inc(cand)
			if Compare(cand, w.seg.Network()) <= 0 {
				continue
			}
		}
		if w.skip(cand) {
			continue
		}
		return cand, true
	}
	return nil, false
}
