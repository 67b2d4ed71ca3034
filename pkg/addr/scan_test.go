package addr

import (
	"testing"
)

func TestScanLiterals(t *testing.T) {
	text := `
host-a 10.0.0.12 up
host-b 10.0.0.2 up (dup 10.0.0.12)
version 1.2.3.4.5 is not an address
gw 2001:0db8:0000:0000:0000:0000:0000:0001 primary
gw 2001:db8:0:0:0:0:0:1 duplicate in short form
short ::1 is not matched
bad 999.1.1.1
`
	v4, v6 := ScanLiterals(text)

	var got4, got6 []string
	for _, ip := range v4 {
		got4 = append(got4, ip.String())
	}
	for _, ip := range v6 {
		got6 = append(got6, ip.String())
	}

	want4 := []string{"10.0.0.2", "10.0.0.12"}
	want6 := []string{"2001:db8::1"}
	if !equalStrings(got4, want4) {
		t.Errorf("v4 = %v, want %v", got4, want4)
	}
	if !equalStrings(got6, want6) {
		t.Errorf("v6 = %v, want %v", got6, want6)
	}
}

func TestScanLiterals_Empty(t *testing.T) {
	v4, v6 := ScanLiterals("nothing to see")
	if len(v4) != 0 || len(v6) != 0 {
		t.Errorf("expected no literals, got %v %v", v4, v6)
	}
}
