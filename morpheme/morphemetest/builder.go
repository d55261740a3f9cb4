// Package morphemetest builds small synthetic .MorphemeAnimSet and
// .MorphemeAnimSequence files for tests.
package morphemetest

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
)

// Bounds is a min, max pair of vectors.
type Bounds [2][3]float32

type SetBone struct {
	Name string
	// ParentCode of bone 0 is always written as -1, it is the table sentinel.
	ParentCode  int32
	Rotation    [4]float32 // x, y, z, w
	Translation [3]float32
}

// Channel is a 9 byte channel descriptor.
type Channel struct {
	Bits   [3]uint8
	Coarse [3]uint8
	Bounds [3]uint8
}

type Group struct {
	Bounds   []Bounds
	Channels []Channel
	// FrameBytes defaults to the length of the first frame.
	FrameBytes int
	Frames     [][]byte
}

func (g *Group) frameBytes() int {
	if g.FrameBytes != 0 || len(g.Frames) == 0 {
		return g.FrameBytes
	}
	return len(g.Frames[0])
}

type Segment struct {
	StartFrame int
	FrameCount int
	Global     Bounds

	PositionFull   Group
	RotationFull   Group
	SparseKeys     []int
	PositionSparse Group
}

type BaseSample struct {
	Bone int
	Raw  [3]uint16
}

type Sequence struct {
	// AnimationType defaults to 3.
	AnimationType  int32
	RegionMismatch bool
	Duration       float32
	FPS            float32

	BoneCount      int
	PositionBounds Bounds
	RotationBounds Bounds
	BasePositions  []BaseSample
	BaseRotations  []BaseSample

	PositionFullBones   []int
	RotationFullBones   []int
	PositionSparseBones []int
	IndexedRotations    int

	Segments []Segment
}

type writer struct {
	bytes.Buffer
}

func (w *writer) i16(v int) {
	binary.Write(w, binary.LittleEndian, int16(v))
}

func (w *writer) u16(v uint16) {
	binary.Write(w, binary.LittleEndian, v)
}

func (w *writer) i32(v int32) {
	binary.Write(w, binary.LittleEndian, v)
}

func (w *writer) f32(v float32) {
	binary.Write(w, binary.LittleEndian, math.Float32bits(v))
}

func (w *writer) vec3(v [3]float32) {
	for _, f := range v {
		w.f32(f)
	}
}

func (w *writer) bounds(b Bounds) {
	w.vec3(b[0])
	w.vec3(b[1])
}

func (w *writer) zeros(n int) {
	w.Write(make([]byte, n))
}

func (w *writer) alignTo(base int) {
	for (w.Len()-base)%4 != 0 {
		w.WriteByte(0)
	}
}

func (w *writer) putI32(at int, v int32) {
	binary.LittleEndian.PutUint32(w.Bytes()[at:], uint32(v))
}

// BuildSet lays out a skeleton table:
// table header at 16, parent codes, names block, bind pose block.
func BuildSet(bones []SetBone) []byte {
	const tableStart = 16
	count := len(bones)

	var w writer
	w.zeros(tableStart)
	namesAt := w.Len()
	w.i32(0)
	poseAt := w.Len()
	w.i32(0)
	w.zeros(12)
	w.i32(int32(count))
	w.zeros(4)
	for i, b := range bones {
		if i == 0 {
			w.i32(-1)
		} else {
			w.i32(b.ParentCode)
		}
	}

	names := w.Len()
	w.putI32(namesAt, int32(names-tableStart+28))
	w.i32(24)
	w.zeros(4)
	for _, b := range bones {
		w.WriteString(b.Name)
		w.WriteByte(0)
	}
	w.alignTo(0)

	pose := w.Len()
	w.putI32(poseAt, int32(pose-tableStart+28))
	w.zeros(20)
	w.i32(24)
	w.i32(int32(32 + 16*count))
	w.i32(32)
	for _, b := range bones {
		for _, f := range b.Rotation {
			w.f32(f)
		}
	}
	for _, b := range bones {
		w.vec3(b.Translation)
		w.zeros(4)
	}
	return w.Bytes()
}

func writeGroup(w *writer, g *Group, dataStart int) {
	for _, b := range g.Bounds {
		w.bounds(b)
	}
	for _, c := range g.Channels {
		w.Write(c.Bits[:])
		w.Write(c.Coarse[:])
		w.Write(c.Bounds[:])
	}
	w.alignTo(dataStart)
	for _, f := range g.Frames {
		w.Write(f)
	}
	w.alignTo(dataStart)
}

func aligned6(n int) int {
	return (n*6 + 3) &^ 3
}

// BuildSequence lays out a sequence with a short text preamble, the data
// region header, the base pose and every segment.
func BuildSequence(s *Sequence) []byte {
	var w writer
	w.WriteString("seq\x00")
	w.zeros(32)
	w.WriteByte(1)
	w.zeros(7)

	regionAt := w.Len()
	w.i32(0)
	w.i32(0)
	w.zeros(4)
	dataStart := w.Len()

	animType := s.AnimationType
	if animType == 0 {
		animType = 3
	}
	w.i32(animType)
	w.zeros(20)
	w.f32(s.Duration)
	w.f32(s.FPS)
	w.zeros(12)
	w.i32(48)

	w.zeros(16 + 2)
	w.i16(s.BoneCount)
	w.i16(len(s.BasePositions))
	w.i16(len(s.BaseRotations))
	w.bounds(s.PositionBounds)
	w.bounds(s.RotationBounds)
	w.zeros(8)
	w.i16(len(s.PositionFullBones))
	w.i16(len(s.RotationFullBones))
	w.i16(len(s.PositionSparseBones))
	w.i16(s.IndexedRotations)
	w.zeros(8)

	for _, b := range s.BasePositions {
		for _, v := range b.Raw {
			w.u16(v)
		}
	}
	w.zeros(aligned6(len(s.BasePositions)) - 6*len(s.BasePositions))
	for _, b := range s.BaseRotations {
		for _, v := range b.Raw {
			w.u16(v)
		}
	}
	w.zeros(aligned6(len(s.BaseRotations)) - 6*len(s.BaseRotations))

	for _, b := range s.BasePositions {
		w.i16(b.Bone)
	}
	for _, b := range s.PositionFullBones {
		w.i16(b)
	}
	for _, b := range s.PositionSparseBones {
		w.i16(b)
	}
	w.alignTo(dataStart)
	for _, b := range s.BaseRotations {
		w.i16(b.Bone)
	}
	for _, b := range s.RotationFullBones {
		w.i16(b)
	}
	for i := 0; i < s.IndexedRotations; i++ {
		w.i16(0)
	}
	w.alignTo(dataStart)

	regionLength := int32(w.Len() - dataStart)
	w.putI32(regionAt, regionLength)
	if s.RegionMismatch {
		w.putI32(regionAt+4, regionLength+4)
	} else {
		w.putI32(regionAt+4, regionLength)
	}

	w.zeros(4)
	w.i32(0)
	w.zeros(40)
	w.i32(int32(len(s.Segments)))

	for i := range s.Segments {
		seg := &s.Segments[i]
		lengthAt := w.Len()
		w.i32(0)
		start := w.Len()

		w.zeros(4)
		w.i16(seg.StartFrame)
		w.i16(seg.FrameCount)
		w.zeros(4)
		w.i16(len(seg.SparseKeys))
		w.zeros(4)
		w.i16(seg.PositionFull.frameBytes())
		w.i16(seg.RotationFull.frameBytes())
		w.i16(seg.PositionSparse.frameBytes())
		w.zeros(6)
		w.i16(len(seg.PositionFull.Bounds))
		w.i16(len(seg.RotationFull.Bounds))
		w.i16(len(seg.PositionSparse.Bounds))
		w.zeros(4)
		w.bounds(seg.Global)
		w.zeros(92)

		writeGroup(&w, &seg.PositionFull, dataStart)
		writeGroup(&w, &seg.RotationFull, dataStart)
		for _, k := range seg.SparseKeys {
			w.i16(k)
		}
		w.alignTo(dataStart)
		writeGroup(&w, &seg.PositionSparse, dataStart)

		w.putI32(lengthAt, int32(w.Len()-start))
	}
	return w.Bytes()
}

type Field struct {
	Value uint64
	Bits  uint8
}

// PackBits packs fields least significant bit first into size bytes.
func PackBits(size int, fields ...Field) []byte {
	out := make([]byte, size)
	pos := 0
	for _, f := range fields {
		for i := uint8(0); i < f.Bits; i++ {
			if f.Value>>i&1 != 0 {
				out[pos>>3] |= 1 << (pos & 7)
			}
			pos++
		}
	}
	return out
}

// WriteFixture stores the pair the way the converter looks them up:
// <root>/<character>.MorphemeAnimSet and
// <root>/<character>/<name>.MorphemeAnimSequence. It returns the sequence path.
func WriteFixture(root, character, name string, set, seq []byte) (string, error) {
	dir := filepath.Join(root, character)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := ioutil.WriteFile(filepath.Join(root, character+".MorphemeAnimSet"), set, 0644); err != nil {
		return "", err
	}
	seqPath := filepath.Join(dir, name+".MorphemeAnimSequence")
	if err := ioutil.WriteFile(seqPath, seq, 0644); err != nil {
		return "", err
	}
	return seqPath, nil
}
