package preferences

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/johnrirwin/newsfeed/internal/testutil"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.json")
	exerciseStore(t, NewFileStore(path, testutil.NullLogger()))

	if _, err := os.Stat(path); err != nil {
		t.Errorf("preferences file not written: %v", err)
	}
}

func TestFileStore_CorruptFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileStore(path, testutil.NullLogger()).Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("Read() = %+v, want defaults", got)
	}
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "preferences.json"), nil)

	exerciseStore(t, s)

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".preferences-") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestDefaultPath(t *testing.T) {
	tests := []struct {
		profile string
		suffix  string
	}{
		{"", filepath.Join("newsfeed", "preferences.json")},
		{DefaultProfile, filepath.Join("newsfeed", "preferences.json")},
		{"work", filepath.Join("newsfeed", "preferences-work.json")},
	}

	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			got, err := DefaultPath(tt.profile)
			if err != nil {
				t.Skipf("no config directory available: %v", err)
			}
			if !strings.HasSuffix(got, tt.suffix) {
				t.Errorf("DefaultPath(%q) = %q, want suffix %q", tt.profile, got, tt.suffix)
			}
		})
	}
}
