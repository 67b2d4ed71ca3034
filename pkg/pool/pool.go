// Package pool parses the operator's host list into an ordered,
// deduplicated set of SSH targets.
package pool

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/newtron-network/cfgnet/pkg/addr"
)

const (
	// DefaultPort is used when a pool line has no ":port" suffix.
	DefaultPort = 22
	// DefaultUser is used when neither the line nor the operator names a user.
	DefaultUser = "root"
)

// Order controls how a pool is sorted.
type Order int

const (
	Ascending Order = iota
	Descending
	Unsorted
)

func (o Order) String() string {
	switch o {
	case Descending:
		return "descending"
	case Unsorted:
		return "unsorted"
	default:
		return "ascending"
	}
}

// Entry is one SSH target.
type Entry struct {
	Host net.IP
	Port int
	User string
}

// Addr returns host:port suitable for dialing.
func (e Entry) Addr() string {
	return net.JoinHostPort(e.Host.String(), strconv.Itoa(e.Port))
}

func (e Entry) String() string {
	return e.User + "@" + e.Addr()
}

// Options control parsing.
type Options struct {
	// DefaultUser replaces a missing "user@" prefix. Empty means DefaultUser.
	DefaultUser string
	Order       Order
}

// Pool is the ordered host list. Each host address appears once.
type Pool struct {
	entries []Entry
}

// New deduplicates entries by host address, keeping the first occurrence,
// and orders them. Sorting is stable.
func New(entries []Entry, order Order) *Pool {
	seen := make(map[string]bool, len(entries))
	p := &Pool{}
	for _, e := range entries {
		key := e.Host.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		p.entries = append(p.entries, e)
	}

	switch order {
	case Ascending:
		sort.SliceStable(p.entries, func(i, j int) bool {
			return addr.Compare(p.entries[i].Host, p.entries[j].Host) < 0
		})
	case Descending:
		sort.SliceStable(p.entries, func(i, j int) bool {
			return addr.Compare(p.entries[i].Host, p.entries[j].Host) > 0
		})
	}
	return p
}

// Entries returns the hosts in pool order.
func (p *Pool) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len returns the number of hosts.
func (p *Pool) Len() int { return len(p.entries) }

// ParseEntry parses "[user@]host[:port]". The host must be IPv4.
func ParseEntry(s, defaultUser string) (Entry, error) {
	e := Entry{Port: DefaultPort, User: defaultUser}
	if e.User == "" {
		e.User = DefaultUser
	}

	host := s
	if i := strings.Index(host, "@"); i >= 0 {
		if user := host[:i]; user != "" {
			e.User = user
		}
		host = host[i+1:]
	}
	if i := strings.LastIndex(host, ":"); i >= 0 {
		port, err := strconv.Atoi(host[i+1:])
		if err != nil || port < 1 || port > 65535 {
			return Entry{}, fmt.Errorf("invalid port in %q", s)
		}
		e.Port = port
		host = host[:i]
	}

	ip, err := addr.ParseV4(host)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid host in %q: %w", s, err)
	}
	e.Host = ip
	return e, nil
}

// Parse reads a pool, one entry per line. Blank lines, '#' comments and
// lines containing whitespace are skipped. Any malformed entry fails the
// whole parse.
func Parse(r io.Reader, opts Options) (*Pool, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if len(strings.Fields(line)) != 1 {
			continue
		}
		e, err := ParseEntry(line, opts.DefaultUser)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("pool contains no hosts")
	}
	return New(entries, opts.Order), nil
}

// ReadFile parses the pool file at path.
func ReadFile(path string, opts Options) (*Pool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	defer f.Close()

	p, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", path, err)
	}
	return p, nil
}
