package vfs

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DirectoryDriver exposes a host directory read only.
type DirectoryDriver struct {
	path string
}

func NewDirectoryDriver(path string) *DirectoryDriver {
	return &DirectoryDriver{path: path}
}

func (dd *DirectoryDriver) Name() string {
	return filepath.Base(dd.path)
}

func (dd *DirectoryDriver) IsDirectory() bool {
	return true
}

func (dd *DirectoryDriver) Path() string {
	return dd.path
}

func (dd *DirectoryDriver) List() ([]string, error) {
	fileinfos, err := ioutil.ReadDir(dd.path)
	if err != nil {
		return nil, errors.Wrapf(err, "Error getting directory %q info", dd.path)
	}
	result := make([]string, 0, len(fileinfos))
	for _, f := range fileinfos {
		result = append(result, f.Name())
	}
	return result, nil
}

func (dd *DirectoryDriver) GetElement(name string) (Element, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, errors.Errorf("Invalid element name %q", name)
	}
	newPath := filepath.Join(dd.path, name)
	s, err := os.Stat(newPath)
	if err != nil {
		return nil, errors.Wrapf(err, "Stat error")
	}
	if s.IsDir() {
		return NewDirectoryDriver(newPath), nil
	}
	return NewDirectoryDriverFile(newPath), nil
}

type DirectoryDriverFile struct {
	path string
	f    *os.File
}

func NewDirectoryDriverFile(path string) *DirectoryDriverFile {
	return &DirectoryDriverFile{path: path}
}

func (ddf *DirectoryDriverFile) Name() string {
	return filepath.Base(ddf.path)
}

func (ddf *DirectoryDriverFile) IsDirectory() bool {
	return false
}

func (ddf *DirectoryDriverFile) Size() int64 {
	if stat, err := os.Stat(ddf.path); err != nil {
		return 0
	} else {
		return stat.Size()
	}
}

func (ddf *DirectoryDriverFile) Open() error {
	if ddf.f != nil {
		return errors.Errorf("File %q already opened", ddf.path)
	}
	f, err := os.Open(ddf.path)
	if err != nil {
		return errors.Wrapf(err, "os.Open(%q)", ddf.path)
	}
	ddf.f = f
	return nil
}

func (ddf *DirectoryDriverFile) Close() error {
	if ddf.f == nil {
		return nil
	}
	err := ddf.f.Close()
	ddf.f = nil
	return errors.Wrapf(err, "os.File.Close()")
}

func (ddf *DirectoryDriverFile) ReadAt(b []byte, off int64) (n int, err error) {
	if ddf.f == nil {
		return 0, errors.Errorf("First you need to open file %q", ddf.path)
	}
	return ddf.f.ReadAt(b, off)
}
