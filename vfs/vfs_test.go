package vfs

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestDirectoryDriverWalk(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Liz"), 0755); err != nil {
		t.Fatal(err)
	}
	for name, data := range map[string]string{
		"Liz.MorphemeAnimSet":           "set",
		"Liz/idle.MorphemeAnimSequence": "idle",
		"Liz/walk.MorphemeAnimSequence": "walk",
	} {
		if err := ioutil.WriteFile(filepath.Join(root, filepath.FromSlash(name)), []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}

	var paths []string
	err := Walk(NewDirectoryDriver(root), func(p string, f File) error {
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"Liz/idle.MorphemeAnimSequence", "Liz/walk.MorphemeAnimSequence", "Liz.MorphemeAnimSet"}
	if len(paths) != len(expected) {
		t.Fatalf("Walk found %v; expected %v", paths, expected)
	}
	for i := range expected {
		if paths[i] != expected[i] {
			t.Errorf("Walk path %d = %q; expected %q", i, paths[i], expected[i])
		}
	}

	f, err := GetFile(NewDirectoryDriver(root), "Liz/walk.MorphemeAnimSequence")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.ReadAt(make([]byte, 1), 0); err == nil {
		t.Errorf("ReadAt before Open succeeded")
	}
	if err := f.Open(); err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	buf := make([]byte, f.Size())
	if _, err := f.ReadAt(buf, 0); err != nil || string(buf) != "walk" {
		t.Errorf("ReadAt = %q,%v", buf, err)
	}
}

func TestGetFileRejectsEscape(t *testing.T) {
	root := NewDirectoryDriver(t.TempDir())
	for _, p := range []string{"../etc/passwd", "", "a//b", "./x"} {
		if _, err := GetFile(root, p); err == nil {
			t.Errorf("GetFile(%q) succeeded", p)
		}
	}
}
