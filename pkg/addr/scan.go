package addr

import (
	"net"
	"regexp"
	"sort"
)

var (
	// Full eight-group IPv6 literals and dotted-quad IPv4 literals. Go's
	// regexp has no lookaround, so boundaries are checked by hand.
	ipv6LiteralRegexp = regexp.MustCompile(`(?i)(?:[a-f0-9]{1,4}:){7}[a-f0-9]{1,4}`)
	ipv4LiteralRegexp = regexp.MustCompile(`(?:\d{1,3}\.){3}\d{1,3}`)
)

// ScanLiterals extracts IPv4 and IPv6 address literals embedded in text.
// Results are deduplicated by canonical form and sorted numerically.
func ScanLiterals(text string) (v4, v6 []net.IP) {
	seen := make(map[string]bool)
	collect := func(re *regexp.Regexp, isBoundary func(byte) bool) []net.IP {
		var out []net.IP
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if loc[0] > 0 && isBoundary(text[loc[0]-1]) {
				continue
			}
			if loc[1] < len(text) && isBoundary(text[loc[1]]) {
				continue
			}
			ip, err := Parse(text[loc[0]:loc[1]])
			if err != nil {
				continue
			}
			key := ip.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, ip)
		}
		sort.Slice(out, func(i, j int) bool { return Compare(out[i], out[j]) < 0 })
		return out
	}

	v6 = collect(ipv6LiteralRegexp, func(c byte) bool { return c == ':' || c == '.' || isWordByte(c) })
	v4 = collect(ipv4LiteralRegexp, func(c byte) bool { return c == '.' || isDigit(c) })

	// A full-form literal can still parse as IPv4-mapped; keep families apart.
	v6 = filterVersion(v6, 6)
	v4 = filterVersion(v4, 4)
	return v4, v6
}

func filterVersion(ips []net.IP, version int) []net.IP {
	out := ips[:0]
	for _, ip := range ips {
		if Version(ip) == version {
			out = append(out, ip)
		}
	}
	return out
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordByte(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
