package readat

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Reader is a little-endian cursor over io.ReaderAt.
// Positions are relative to offset, so a Reader can address a region of a
// bigger source the same way it addresses a whole file.
type Reader struct {
	source io.ReaderAt
	offset int64
	pos    int64
}

func NewReader(source io.ReaderAt, offset int64) *Reader {
	return &Reader{
		source: source,
		offset: offset,
	}
}

func (r *Reader) Offset() int64 {
	return r.offset
}

func (r *Reader) Tell() int64 {
	return r.pos
}

func (r *Reader) Seek(pos int64) {
	r.pos = pos
}

func (r *Reader) Skip(delta int64) {
	r.pos += delta
}

// AlignTo rounds the position up to the next 4-byte boundary counted from base.
func (r *Reader) AlignTo(base int64) int64 {
	r.pos = base + ((r.pos - base + 3) &^ 3)
	return r.pos
}

func (r *Reader) ReadAt(p []byte, off int64) (n int, err error) {
	return r.source.ReadAt(p, r.offset+off)
}

// Read fills p completely or fails with io.ErrUnexpectedEOF.
func (r *Reader) Read(p []byte) error {
	n, err := r.ReadAt(p, r.pos)
	if n == len(p) {
		r.pos += int64(n)
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return errors.Wrapf(err, "read %d bytes at 0x%x", len(p), r.pos)
}

func (r *Reader) ReadU8() (uint8, error) {
	var b [1]byte
	if err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadU16LE() (uint16, error) {
	var b [2]byte
	if err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (r *Reader) ReadI16LE() (int16, error) {
	v, err := r.ReadU16LE()
	return int16(v), err
}

func (r *Reader) ReadU32LE() (uint32, error) {
	var b [4]byte
	if err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (r *Reader) ReadI32LE() (int32, error) {
	v, err := r.ReadU32LE()
	return int32(v), err
}

func (r *Reader) ReadF32LE() (float32, error) {
	v, err := r.ReadU32LE()
	return math.Float32frombits(v), err
}

// ReadF32ArrayLE reads len(out) floats widened to float64.
func (r *Reader) ReadF32ArrayLE(out []float64) error {
	for i := range out {
		v, err := r.ReadF32LE()
		if err != nil {
			return err
		}
		out[i] = float64(v)
	}
	return nil
}

func (r *Reader) ReadVec3F32LE() (mgl64.Vec3, error) {
	var v mgl64.Vec3
	err := r.ReadF32ArrayLE(v[:])
	return v, err
}

// ReadCString reads bytes up to a NUL terminator, consuming the terminator.
func (r *Reader) ReadCString() ([]byte, error) {
	s := make([]byte, 0, 32)
	for {
		b, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return s, nil
		}
		s = append(s, b)
	}
}
