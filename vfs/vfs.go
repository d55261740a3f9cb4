package vfs

// Element carries only metadata until List, GetElement or Open is called.
type Element interface {
	Name() string
	IsDirectory() bool
}

// File must be opened before ReadAt.
type File interface {
	Element
	Size() int64
	Open() error
	Close() error
	ReadAt(b []byte, off int64) (n int, err error)
}

type Directory interface {
	Element
	List() ([]string, error)
	GetElement(name string) (Element, error)
}
