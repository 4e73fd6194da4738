package metrics

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.size); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.db"), make([]byte, 2048), 0644); err != nil {
		t.Fatal(err)
	}

	h := GetSysHealth(dir)
	if h.DataDiskSize != "2.0 KB" {
		t.Errorf("Expected 2.0 KB, got %s", h.DataDiskSize)
	}
	if h.Goroutines < 1 {
		t.Errorf("Expected at least one goroutine, got %d", h.Goroutines)
	}
}
