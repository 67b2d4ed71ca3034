// Package addr implements address parsing, network segments, exclusion sets
// and the deterministic address allocator used to assign host addresses.
package addr

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/newtron-network/cfgnet/pkg/util"
)

// Parse parses an IPv4 or IPv6 address. IPv4 results are always in their
// 4-byte form so that arithmetic and comparison stay within one family.
func Parse(s string) (net.IP, error) {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address: %q", s)
	}
	return normalize(ip), nil
}

// ParseV4 parses s and rejects anything that is not IPv4.
func ParseV4(s string) (net.IP, error) {
	ip, err := Parse(s)
	if err != nil {
		return nil, err
	}
	if Version(ip) != 4 {
		return nil, fmt.Errorf("not an IPv4 address: %q", s)
	}
	return ip, nil
}

// Version returns 4 or 6, or 0 for a nil address.
func Version(ip net.IP) int {
	switch {
	case ip == nil:
		return 0
	case ip.To4() != nil:
		return 4
	default:
		return 6
	}
}

// Compare orders two addresses numerically. IPv4 sorts before IPv6.
func Compare(a, b net.IP) int {
	a, b = normalize(a), normalize(b)
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return bytes.Compare(a, b)
}

// Equal reports whether a and b are the same address. A nil address is
// only equal to another nil address.
func Equal(a, b net.IP) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Compare(a, b) == 0
}

// ParseList parses a comma- or whitespace-separated address list.
func ParseList(s string) ([]net.IP, error) {
	var out []net.IP
	for _, item := range util.SplitList(s) {
		ip, err := Parse(item)
		if err != nil {
			return nil, err
		}
		out = append(out, ip)
	}
	return out, nil
}

// ReadListFile reads addresses from a file, one or more per line.
// Blank lines and lines starting with '#' are ignored.
func ReadListFile(path string) ([]net.IP, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open address list: %w", err)
	}
	defer f.Close()

	var out []net.IP
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ips, err := ParseList(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		out = append(out, ips...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read address list %s: %w", path, err)
	}
	return out, nil
}

func normalize(ip net.IP) net.IP {
	if v4 := ip.To4(); v4 != nil {
		return v4
	}
	return ip.To16()
}
