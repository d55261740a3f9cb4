package vfs

import (
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

func DirectoryGetFile(d Directory, name string) (File, error) {
	f, err := d.GetElement(name)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open file %q", name)
	}
	if f.IsDirectory() {
		return nil, errors.Errorf("File %q is directory, not a file!", name)
	}
	return f.(File), nil
}

// GetFile resolves a slash separated path below d. Empty, "." and ".."
// components are rejected so a path can not leave d.
func GetFile(d Directory, p string) (File, error) {
	parts := strings.Split(p, "/")
	for i, name := range parts[:len(parts)-1] {
		e, err := d.GetElement(name)
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot resolve %q", path.Join(parts[:i+1]...))
		}
		dir, ok := e.(Directory)
		if !ok {
			return nil, errors.Errorf("%q is not a directory", path.Join(parts[:i+1]...))
		}
		d = dir
	}
	return DirectoryGetFile(d, parts[len(parts)-1])
}

// Walk calls fn for every file below d with its slash separated path,
// in sorted order.
func Walk(d Directory, fn func(p string, f File) error) error {
	return walk(d, "", fn)
}

func walk(d Directory, prefix string, fn func(p string, f File) error) error {
	names, err := d.List()
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		e, err := d.GetElement(name)
		if err != nil {
			return err
		}
		switch v := e.(type) {
		case Directory:
			if err := walk(v, path.Join(prefix, name), fn); err != nil {
				return err
			}
		case File:
			if err := fn(path.Join(prefix, name), v); err != nil {
				return err
			}
		}
	}
	return nil
}
