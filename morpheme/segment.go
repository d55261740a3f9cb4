package morpheme

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/morpheme_converter/readat"
)

// segmentHeaderTail is the unknown part of the segment header after the
// global bounds.
const segmentHeaderTail = 92

type SegmentHeader struct {
	Length int32
	End    int64

	StartFrame  int
	FrameCount  int
	SparseCount int

	PositionFullBytes   int
	RotationFullBytes   int
	PositionSparseBytes int

	PositionFullBounds   int
	RotationFullBounds   int
	PositionSparseBounds int

	Global Bounds

	// SparseKeys are absolute frame numbers of the sparse position keys.
	SparseKeys []int
}

// SegmentFunc receives every decoded segment. The table is reused for the
// next segment once fn returns.
type SegmentFunc func(index int, h *SegmentHeader, t *PoseTable) error

func (d *Decoder) DecodeSegments(fn SegmentFunc) error {
	d.r.Seek(d.segmentsStart)
	for i := 0; i < d.SegmentCount; i++ {
		h, err := d.decodeSegment()
		if err != nil {
			return errors.Wrapf(err, "segment %d", i)
		}
		if err := fn(i, h, d.table); err != nil {
			return err
		}
		d.r.Seek(h.End)
	}
	return nil
}

func readSegmentHeader(r *readat.Reader) (*SegmentHeader, error) {
	h := &SegmentHeader{}
	var err error
	if h.Length, err = r.ReadI32LE(); err != nil {
		return nil, err
	}
	h.End = r.Tell() + int64(h.Length)

	fields := []struct {
		skip int64
		out  *int
		name string
	}{
		{4, &h.StartFrame, "start frame"},
		{0, &h.FrameCount, "frame count"},
		{4, &h.SparseCount, "sparse key count"},
		{4, &h.PositionFullBytes, "position full frame size"},
		{0, &h.RotationFullBytes, "rotation full frame size"},
		{0, &h.PositionSparseBytes, "position sparse frame size"},
		{6, &h.PositionFullBounds, "position full bounds count"},
		{0, &h.RotationFullBounds, "rotation full bounds count"},
		{0, &h.PositionSparseBounds, "position sparse bounds count"},
	}
	for _, f := range fields {
		r.Skip(f.skip)
		if *f.out, err = readCount(r, f.name); err != nil {
			return nil, err
		}
	}
	if h.FrameCount > MaxSegmentFrames {
		return nil, &FormatError{Kind: KindFrameOutOfRange, Field: "frame count",
			Expected: MaxSegmentFrames, Actual: int64(h.FrameCount)}
	}

	r.Skip(4)
	if h.Global, err = readMinMax(r); err != nil {
		return nil, errors.Wrapf(err, "global bounds")
	}
	r.Skip(segmentHeaderTail)
	return h, nil
}

func (d *Decoder) decodeSegment() (*SegmentHeader, error) {
	r := d.r
	base := d.Header.DataStart

	h, err := readSegmentHeader(r)
	if err != nil {
		return nil, errors.Wrapf(err, "header")
	}
	d.log.Printf("segment at 0x%x: frames %d..%d, %d sparse keys, end 0x%x",
		r.Tell(), h.StartFrame, h.StartFrame+h.FrameCount, h.SparseCount, h.End)

	if err := d.decodePositionFull(h, base); err != nil {
		return nil, errors.Wrapf(err, "%v", GroupPositionFull)
	}
	if err := d.decodeRotationFull(h, base); err != nil {
		return nil, errors.Wrapf(err, "%v", GroupRotationFull)
	}
	if err := d.decodePositionSparse(h, base); err != nil {
		return nil, errors.Wrapf(err, "%v", GroupPositionSparse)
	}

	for frame := 0; frame < h.FrameCount; frame++ {
		if err := resolveHierarchy(d.table, frame, d.Base.DirectRotation, d.skel); err != nil {
			return nil, errors.Wrapf(err, "hierarchy at frame %d", frame)
		}
	}
	return h, nil
}

func (d *Decoder) decodePositionFull(h *SegmentHeader, base int64) error {
	r := d.r
	g, err := readGroup(r, GroupPositionFull, d.Base.PositionFullMap, h.PositionFullBounds, h.PositionFullBytes)
	if err != nil {
		return err
	}
	r.AlignTo(base)

	buf := make([]byte, g.FrameBytes)
	var u bitUnpacker
	for frame := 0; frame < h.FrameCount; frame++ {
		if err := r.Read(buf); err != nil {
			return errors.Wrapf(err, "frame %d", frame)
		}
		u.reset(buf)
		for ch, bone := range g.BoneMap {
			v, err := g.decodeFullPosition(&u, ch, &h.Global)
			if err != nil {
				return err
			}
			if err := d.table.SetPosition(frame, bone, v, SampleDirect); err != nil {
				return err
			}
		}
	}
	r.AlignTo(base)
	return nil
}

func (d *Decoder) decodeRotationFull(h *SegmentHeader, base int64) error {
	r := d.r
	g, err := readGroup(r, GroupRotationFull, d.Base.RotationFullMap, h.RotationFullBounds, h.RotationFullBytes)
	if err != nil {
		return err
	}
	r.AlignTo(base)

	buf := make([]byte, g.FrameBytes)
	var u bitUnpacker
	for frame := 0; frame < h.FrameCount; frame++ {
		if err := r.Read(buf); err != nil {
			return errors.Wrapf(err, "frame %d", frame)
		}
		u.reset(buf)
		for ch, bone := range g.BoneMap {
			q, err := g.decodeFullRotation(&u, ch)
			if err != nil {
				return err
			}
			if err := d.table.SetRotation(frame, bone, q, SampleDirect); err != nil {
				return err
			}
		}
	}
	r.AlignTo(base)
	return nil
}

func (d *Decoder) decodePositionSparse(h *SegmentHeader, base int64) error {
	r := d.r
	h.SparseKeys = make([]int, h.SparseCount)
	for i := range h.SparseKeys {
		k, err := r.ReadI16LE()
		if err != nil {
			return errors.Wrapf(err, "key %d", i)
		}
		h.SparseKeys[i] = int(k)
	}
	r.AlignTo(base)

	g, err := readGroup(r, GroupPositionSparse, d.Base.PositionSparseMap, h.PositionSparseBounds, h.PositionSparseBytes)
	if err != nil {
		return err
	}
	r.AlignTo(base)

	buf := make([]byte, g.FrameBytes)
	var u bitUnpacker
	for key, absolute := range h.SparseKeys {
		frame := absolute - h.StartFrame
		if frame < 0 || frame >= MaxSegmentFrames {
			return &FormatError{Kind: KindFrameOutOfRange, Field: "sparse key frame",
				Expected: MaxSegmentFrames, Actual: int64(frame)}
		}
		if err := r.Read(buf); err != nil {
			return errors.Wrapf(err, "key %d", key)
		}
		u.reset(buf)
		for ch, bone := range g.BoneMap {
			v, err := g.decodeSparsePosition(&u, ch, &h.Global)
			if err != nil {
				return err
			}
			if key > 0 {
				if err := d.fillSparseGap(bone, h.SparseKeys[key-1]-h.StartFrame, frame, v); err != nil {
					return err
				}
			}
			if err := d.table.SetPosition(frame, bone, v, SampleDirect); err != nil {
				return err
			}
		}
	}
	return nil
}

// fillSparseGap linearly interpolates the frames strictly between prev and
// next, where next has value v.
func (d *Decoder) fillSparseGap(bone, prev, next int, v mgl64.Vec3) error {
	from, err := d.table.Position(prev, bone)
	if err != nil {
		return err
	}
	gap := next - prev
	var slope mgl64.Vec3
	for axis := range slope {
		slope[axis] = (v[axis] - from[axis]) / float64(gap)
	}
	for step := 1; step < gap; step++ {
		if err := d.table.SetPosition(prev+step, bone, slope.Mul(float64(step)).Add(from), SampleInterpolated); err != nil {
			return err
		}
	}
	return nil
}
