package addr

import (
	"testing"
)

func TestParseSegment(t *testing.T) {
	tests := []struct {
		input     string
		network   string
		broadcast string
		prefix    int
		version   int
		capacity  uint64
		wantErr   bool
	}{
		{"10.30.200.0/24", "10.30.200.0", "10.30.200.255", 24, 4, 254, false},
		{"10.30.200.77/24", "10.30.200.0", "10.30.200.255", 24, 4, 254, false},
		{"192.168.1.0/30", "192.168.1.0", "192.168.1.3", 30, 4, 2, false},
		{"10.0.0.1/32", "10.0.0.1", "10.0.0.1", 32, 4, 0, false},
		{"2001:db8::/120", "2001:db8::", "2001:db8::ff", 120, 6, 254, false},
		{"10.30.200.0", "", "", 0, 0, 0, true},
		{"10.30.200.0/33", "", "", 0, 0, 0, true},
		{"bogus/24", "", "", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			seg, err := ParseSegment(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSegment(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := seg.Network().String(); got != tt.network {
				t.Errorf("Network() = %s, want %s", got, tt.network)
			}
			if got := seg.Broadcast().String(); got != tt.broadcast {
				t.Errorf("Broadcast() = %s, want %s", got, tt.broadcast)
			}
			if seg.PrefixLen() != tt.prefix {
				t.Errorf("PrefixLen() = %d, want %d", seg.PrefixLen(), tt.prefix)
			}
			if seg.Version() != tt.version {
				t.Errorf("Version() = %d, want %d", seg.Version(), tt.version)
			}
			if seg.Capacity() != tt.capacity {
				t.Errorf("Capacity() = %d, want %d", seg.Capacity(), tt.capacity)
			}
		})
	}
}

func TestSegmentContains(t *testing.T) {
	seg := mustSegment(t, "10.30.200.0/24")

	tests := []struct {
		ip       string
		contains bool
		interior bool
	}{
		{"10.30.200.0", true, false},
		{"10.30.200.1", true, true},
		{"10.30.200.254", true, true},
		{"10.30.200.255", true, false},
		{"10.30.201.1", false, false},
		{"2001:db8::1", false, false},
	}
	for _, tt := range tests {
		ip := mustIP(t, tt.ip)
		if got := seg.Contains(ip); got != tt.contains {
			t.Errorf("Contains(%s) = %v, want %v", tt.ip, got, tt.contains)
		}
		if got := seg.Interior(ip); got != tt.interior {
			t.Errorf("Interior(%s) = %v, want %v", tt.ip, got, tt.interior)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"10.0.0.1", "10.0.0.2", -1},
		{"10.0.0.10", "10.0.0.9", 1},
		{"10.0.0.1", "10.0.0.1", 0},
		{"255.255.255.255", "::1", -1},
		{"2001:db8::2", "2001:db8::10", -1},
	}
	for _, tt := range tests {
		if got := Compare(mustIP(t, tt.a), mustIP(t, tt.b)); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParseV4(t *testing.T) {
	if _, err := ParseV4("10.0.0.1"); err != nil {
		t.Errorf("ParseV4(10.0.0.1) error: %v", err)
	}
	if _, err := ParseV4("2001:db8::1"); err == nil {
		t.Error("ParseV4 should reject IPv6")
	}
	if _, err := ParseV4("10.0.0.256"); err == nil {
		t.Error("ParseV4 should reject malformed input")
	}
}

func TestEqualNil(t *testing.T) {
	if !Equal(nil, nil) {
		t.Error("Equal(nil, nil) should be true")
	}
	if Equal(nil, mustIP(t, "10.0.0.1")) {
		t.Error("Equal(nil, ip) should be false")
	}
}
