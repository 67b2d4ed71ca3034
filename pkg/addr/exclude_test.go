package addr

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExclusionSet(t *testing.T) {
	e := mustExclude(t, 4, "10.0.0.1", "10.0.0.2", "10.0.0.1")
	if e.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (duplicates ignored)", e.Len())
	}
	if !e.Contains(mustIP(t, "10.0.0.2")) {
		t.Error("Contains(10.0.0.2) = false")
	}
	if e.Contains(mustIP(t, "10.0.0.3")) {
		t.Error("Contains(10.0.0.3) = true")
	}
	if err := e.Add(mustIP(t, "2001:db8::1")); err == nil {
		t.Error("Add should reject an address of the other family")
	}

	var nilSet *ExclusionSet
	if nilSet.Contains(mustIP(t, "10.0.0.1")) || nilSet.Len() != 0 {
		t.Error("nil set should be empty")
	}

	if _, err := NewExclusionSet(5); err == nil {
		t.Error("NewExclusionSet(5) should fail")
	}
}

func TestParseList(t *testing.T) {
	ips, err := ParseList("10.0.0.1,10.0.0.2 10.0.0.3")
	if err != nil {
		t.Fatalf("ParseList error: %v", err)
	}
	if len(ips) != 3 {
		t.Errorf("ParseList len = %d, want 3", len(ips))
	}
	if _, err := ParseList("10.0.0.1,nope"); err == nil {
		t.Error("ParseList should reject invalid entries")
	}
}

func TestReadListFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exclude.txt")
	data := "# reserved\n10.30.200.2\n\n10.30.200.3 10.30.200.4\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	ips, err := ReadListFile(path)
	if err != nil {
		t.Fatalf("ReadListFile error: %v", err)
	}
	if len(ips) != 3 {
		t.Errorf("ReadListFile len = %d, want 3", len(ips))
	}

	bad := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(bad, []byte("10.30.200.2\nnot-an-ip\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadListFile(bad); err == nil {
		t.Error("ReadListFile should fail on invalid line")
	}

	if _, err := ReadListFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("ReadListFile should fail on missing file")
	}
}
