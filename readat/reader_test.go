package readat

import (
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
)

func TestReaderPrimitives(t *testing.T) {
	data := []byte{
		0x7f,
		0x34, 0x12,
		0xfe, 0xff,
		0x78, 0x56, 0x34, 0x12,
		0xff, 0xff, 0xff, 0xff,
		0x00, 0x00, 0x80, 0x3f,
	}
	r := NewReader(bytes.NewReader(data), 0)

	if v, err := r.ReadU8(); err != nil || v != 0x7f {
		t.Errorf("ReadU8()=%v,%v; expected 0x7f", v, err)
	}
	if v, err := r.ReadU16LE(); err != nil || v != 0x1234 {
		t.Errorf("ReadU16LE()=%v,%v; expected 0x1234", v, err)
	}
	if v, err := r.ReadI16LE(); err != nil || v != -2 {
		t.Errorf("ReadI16LE()=%v,%v; expected -2", v, err)
	}
	if v, err := r.ReadU32LE(); err != nil || v != 0x12345678 {
		t.Errorf("ReadU32LE()=%v,%v; expected 0x12345678", v, err)
	}
	if v, err := r.ReadI32LE(); err != nil || v != -1 {
		t.Errorf("ReadI32LE()=%v,%v; expected -1", v, err)
	}
	if v, err := r.ReadF32LE(); err != nil || v != 1.0 {
		t.Errorf("ReadF32LE()=%v,%v; expected 1.0", v, err)
	}
	if r.Tell() != int64(len(data)) {
		t.Errorf("Tell()=%d; expected %d", r.Tell(), len(data))
	}
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2, 3}), 0)
	r.Seek(1)
	if _, err := r.ReadI32LE(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadI32LE() err=%v; expected io.ErrUnexpectedEOF", err)
	}
	if r.Tell() != 1 {
		t.Errorf("failed read moved cursor to %d", r.Tell())
	}
}

func TestReaderSeekAndSkip(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0, 1, 2, 3, 4, 5, 6, 7}), 2)
	r.Seek(3)
	if v, _ := r.ReadU8(); v != 5 {
		t.Errorf("ReadU8() after Seek(3) with offset 2 = %d; expected 5", v)
	}
	r.Skip(-3)
	if v, _ := r.ReadU8(); v != 3 {
		t.Errorf("ReadU8() after Skip(-3) = %d; expected 3", v)
	}
}

var alignTests = []struct {
	base, pos, out int64
}{
	{0, 0, 0},
	{0, 1, 4},
	{0, 4, 4},
	{0, 5, 8},
	{2, 2, 2},
	{2, 3, 6},
	{2, 6, 6},
	{2, 7, 10},
	{13, 14, 17},
}

func TestReaderAlignTo(t *testing.T) {
	r := NewReader(bytes.NewReader(nil), 0)
	for _, test := range alignTests {
		r.Seek(test.pos)
		if got := r.AlignTo(test.base); got != test.out || r.Tell() != test.out {
			t.Errorf("AlignTo(%d) from %d = %d; expected %d", test.base, test.pos, got, test.out)
		}
	}
}

func TestReaderCString(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("Root\x00Child\x00")), 0)
	for _, expected := range []string{"Root", "Child"} {
		s, err := r.ReadCString()
		if err != nil || string(s) != expected {
			t.Errorf("ReadCString()=%q,%v; expected %q", s, err, expected)
		}
	}
	if _, err := r.ReadCString(); err == nil {
		t.Errorf("ReadCString() at end of data succeeded")
	}
}
