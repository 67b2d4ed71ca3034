package util

import (
	"reflect"
	"testing"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"10.0.0.1", []string{"10.0.0.1"}},
		{"10.0.0.1,10.0.0.2", []string{"10.0.0.1", "10.0.0.2"}},
		{"10.0.0.1 10.0.0.2", []string{"10.0.0.1", "10.0.0.2"}},
		{" 10.0.0.1 ,\t10.0.0.2\n", []string{"10.0.0.1", "10.0.0.2"}},
	}

	for _, tt := range tests {
		got := SplitList(tt.input)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitList(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"eth0", `"eth0"`},
		{"System eth0", `"System eth0"`},
		{`a"b`, `"a\"b"`},
		{`a\b`, `"a\\b"`},
	}
	for _, tt := range tests {
		if got := Quote(tt.input); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}
