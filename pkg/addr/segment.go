package addr

import (
	"fmt"
	"net"
	"strings"

	"github.com/apparentlymart/go-cidr/cidr"
)

// Segment is a network address plus prefix length.
//
// For IPv6 the "broadcast" address is the last address of the prefix; it is
// treated as a boundary exactly like the IPv4 broadcast address.
type Segment struct {
	ipnet     *net.IPNet
	network   net.IP
	broadcast net.IP
}

// ParseSegment parses CIDR notation. The mask is mandatory and host bits
// are cleared, so "10.30.200.7/24" yields 10.30.200.0/24.
func ParseSegment(s string) (*Segment, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "/") {
		return nil, fmt.Errorf("network segment %q must include a prefix length", s)
	}
	_, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return nil, fmt.Errorf("invalid network segment %q: %w", s, err)
	}
	return NewSegment(ipnet), nil
}

// NewSegment wraps an already parsed network.
func NewSegment(ipnet *net.IPNet) *Segment {
	n := &net.IPNet{IP: normalize(ipnet.IP), Mask: ipnet.Mask}
	first, last := cidr.AddressRange(n)
	return &Segment{ipnet: n, network: first, broadcast: last}
}

// Network returns the first address of the segment.
func (s *Segment) Network() net.IP { return s.network }

// Broadcast returns the last address of the segment.
func (s *Segment) Broadcast() net.IP { return s.broadcast }

// Contains reports whether ip lies inside the segment, boundaries included.
func (s *Segment) Contains(ip net.IP) bool {
	if ip == nil || Version(ip) != s.Version() {
		return false
	}
	return s.ipnet.Contains(ip)
}

// Interior reports whether ip lies strictly between the network and
// broadcast addresses.
func (s *Segment) Interior(ip net.IP) bool {
	return s.Contains(ip) && Compare(ip, s.network) > 0 && Compare(ip, s.broadcast) < 0
}

// Version returns 4 or 6.
func (s *Segment) Version() int { return Version(s.network) }

// PrefixLen returns the mask length.
func (s *Segment) PrefixLen() int {
	ones, _ := s.ipnet.Mask.Size()
	return ones
}

// Size returns the number of addresses in the segment, boundaries included.
func (s *Segment) Size() uint64 {
	return cidr.AddressCount(s.ipnet)
}

// Capacity returns the number of allocatable addresses: everything except
// the network and broadcast addresses.
func (s *Segment) Capacity() uint64 {
	n := s.Size()
	if n < 2 {
		return 0
	}
	return n - 2
}

func (s *Segment) String() string { return s.ipnet.String() }
