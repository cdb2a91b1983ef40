package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func tempData(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func TestWriteAndRead(t *testing.T) {
	s := tempData(t)
	content := []byte("version: 1\nitems:\n  - Milk\n")
	if err := s.Write(42, content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(42)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "42.yaml")); err != nil {
		t.Errorf("expected 42.yaml on disk: %v", err)
	}
}

func TestRead_MissingIsNotExist(t *testing.T) {
	s := tempData(t)
	_, err := s.Read(7)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestWrite_NegativeID(t *testing.T) {
	s := tempData(t)
	if err := s.Write(-1001, []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "-1001.yaml")); err != nil {
		t.Errorf("expected -1001.yaml: %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempData(t)
	_ = s.Write(1, []byte("bye"))
	if err := s.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read(1); err == nil {
		t.Error("expected error reading deleted snapshot")
	}
}

func TestList(t *testing.T) {
	s := tempData(t)
	_ = s.Write(1, []byte("a"))
	_ = s.Write(-2, []byte("b"))
	_ = os.WriteFile(filepath.Join(s.Root(), "readme.txt"), []byte("not a snapshot"), 0o644)
	_ = os.WriteFile(filepath.Join(s.Root(), "abc.yaml"), []byte("bad name"), 0o644)

	metas, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("len = %d, want 2", len(metas))
	}
	ids := map[int64]string{}
	for _, m := range metas {
		ids[m.ChatID] = m.Checksum
	}
	if ids[1] != Checksum([]byte("a")) || ids[-2] != Checksum([]byte("b")) {
		t.Errorf("metas = %+v", metas)
	}
}

func TestChatIDFromName(t *testing.T) {
	cases := []struct {
		name string
		id   int64
		ok   bool
	}{
		{"42.yaml", 42, true},
		{"/data/-100123.yaml", -100123, true},
		{"42.yml", 0, false},
		{".martini-tmp-123", 0, false},
		{"chat.yaml", 0, false},
	}
	for _, c := range cases {
		id, ok := ChatIDFromName(c.name)
		if id != c.id || ok != c.ok {
			t.Errorf("ChatIDFromName(%q) = %d, %v; want %d, %v", c.name, id, ok, c.id, c.ok)
		}
	}
	if got, _ := ChatIDFromName(FileName(-5)); got != -5 {
		t.Errorf("round trip = %d", got)
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempData(t)
	_ = s.Write(3, []byte("original"))
	if err := s.Write(3, []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read(3)
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".martini-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "martini-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
