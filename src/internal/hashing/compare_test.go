package hashing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsFileChanged(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "list.csv")

	changed, err := IsFileChanged(StaticChecksum(ChecksumOf([]byte("a"))), file)
	if err != nil || !changed {
		t.Errorf("Missing file must count as changed, got %v %v", changed, err)
	}

	if err := os.WriteFile(file, []byte("10.0.0.0/8"), 0644); err != nil {
		t.Fatal(err)
	}

	changed, err = IsFileChanged(StaticChecksum(ChecksumOf([]byte("10.0.0.0/8"))), file)
	if err != nil || changed {
		t.Errorf("Same content must not count as changed, got %v %v", changed, err)
	}

	changed, _ = IsFileChanged(StaticChecksum(ChecksumOf([]byte("10.0.0.0/16"))), file)
	if !changed {
		t.Errorf("Different content must count as changed")
	}

	sum, err := FileChecksum(file)
	if err != nil || sum != ChecksumOf([]byte("10.0.0.0/8")) {
		t.Errorf("FileChecksum() = %s, %v", sum, err)
	}

	if _, err := FileChecksum(dir + "/missing"); err == nil {
		t.Errorf("Expected error for missing file")
	}
}
