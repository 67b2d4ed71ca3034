package task

import (
	"fmt"
	"net"

	"github.com/newtron-network/cfgnet/pkg/addr"
	"github.com/newtron-network/cfgnet/pkg/pool"
	"github.com/newtron-network/cfgnet/pkg/util"
)

// Spec holds the configuration shared by every task of a run.
type Spec struct {
	Segment    *addr.Segment
	Family     int
	Gateway    net.IP
	DNS        string
	Device     string
	Connection string
	Mode       Mode
	NoUp       bool
	TestOnly   bool
	Password   string
}

// PrefixLen returns the segment's prefix length, or the single-host prefix
// for the family when there is no segment.
func (s Spec) PrefixLen() int {
	if s.Segment != nil {
		return s.Segment.PrefixLen()
	}
	if s.Family == 6 {
		return 128
	}
	return 32
}

// AllocationError reports that the segment ran out of addresses before
// every pool host received one.
type AllocationError struct {
	Segment   string
	Allocated int
	PoolSize  int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("segment %s has too few addresses: allocated %d of %d hosts",
		e.Segment, e.Allocated, e.PoolSize)
}

func (e *AllocationError) Unwrap() error {
	return util.ErrAllocationExhausted
}

// Factory pairs pool hosts with allocated addresses.
type Factory struct {
	pool  *pool.Pool
	alloc addr.Allocator
	spec  Spec
}

// NewFactory creates a factory. alloc is consumed by Build.
func NewFactory(p *pool.Pool, alloc addr.Allocator, spec Spec) *Factory {
	return &Factory{pool: p, alloc: alloc, spec: spec}
}

// Build creates one task per pool host in pool order. When a segment is
// configured and the allocator runs dry first, the tasks built so far are
// returned together with an *AllocationError.
func (f *Factory) Build() ([]*Task, error) {
	entries := f.pool.Entries()
	tasks := make([]*Task, 0, len(entries))
	prefix := f.spec.PrefixLen()

	for i, e := range entries {
		ip, ok := f.alloc.Next()
		if f.spec.Segment != nil && !ok {
			util.WithHost(e.Host.String()).Debug("allocator exhausted")
			return tasks, &AllocationError{
				Segment:   f.spec.Segment.String(),
				Allocated: len(tasks),
				PoolSize:  len(entries),
			}
		}
		tasks = append(tasks, &Task{
			ID:               i + 1,
			Target:           e,
			Address:          ip,
			PrefixLen:        prefix,
			Gateway:          f.spec.Gateway,
			DNS:              f.spec.DNS,
			Device:           f.spec.Device,
			Connection:       f.spec.Connection,
			Family:           f.spec.Family,
			Mode:             f.spec.Mode,
			NoUp:             f.spec.NoUp,
			TestOnly:         f.spec.TestOnly,
			ConfigureAddress: f.spec.Segment != nil,
			Password:         f.spec.Password,
		})
	}
	return tasks, nil
}
