package addr

import (
	"fmt"
	"net"
)

// ExclusionSet holds addresses the allocator must never hand out.
// All members share one address family. Lookups are linear; the sets
// supplied by operators are small.
type ExclusionSet struct {
	version int
	addrs   []net.IP
}

// NewExclusionSet creates a set for the given family (4 or 6) and adds ips.
func NewExclusionSet(version int, ips ...net.IP) (*ExclusionSet, error) {
	if version != 4 && version != 6 {
		return nil, fmt.Errorf("exclusion set: unsupported address family %d", version)
	}
	e := &ExclusionSet{version: version}
	for _, ip := range ips {
		if err := e.Add(ip); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Add inserts ip. Duplicates are ignored.
func (e *ExclusionSet) Add(ip net.IP) error {
	if v := Version(ip); v != e.version {
		return fmt.Errorf("excluded address %s is IPv%d, expected IPv%d", ip, v, e.version)
	}
	if e.Contains(ip) {
		return nil
	}
	e.addrs = append(e.addrs, normalize(ip))
	return nil
}

// Contains reports whether ip is excluded. A nil set excludes nothing.
func (e *ExclusionSet) Contains(ip net.IP) bool {
	if e == nil {
		return false
	}
	for _, x := range e.addrs {
		if Equal(x, ip) {
			return true
		}
	}
	return false
}

// Len returns the number of excluded addresses.
func (e *ExclusionSet) Len() int {
	if e == nil {
		return 0
	}
	return len(e.addrs)
}

// Version returns the family of the set.
func (e *ExclusionSet) Version() int { return e.version }
