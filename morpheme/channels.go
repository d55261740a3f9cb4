package morpheme

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/morpheme_converter/readat"
)

type GroupKind int

const (
	GroupPositionFull GroupKind = iota
	GroupRotationFull
	GroupPositionSparse
	GroupRotationIndexed
)

func (k GroupKind) String() string {
	switch k {
	case GroupPositionFull:
		return "position full"
	case GroupRotationFull:
		return "rotation full"
	case GroupPositionSparse:
		return "position sparse"
	case GroupRotationIndexed:
		return "rotation indexed"
	default:
		return fmt.Sprintf("group %d", int(k))
	}
}

// maxChannelBits keeps 2^bits exact in the fraction scale.
const maxChannelBits = 32

// ChannelDescriptor is the 9 byte per-channel record: bit widths, coarse
// quantized offsets and bounds table indices for x, y and z.
type ChannelDescriptor struct {
	Bits   [3]uint8
	Coarse [3]uint8
	Bounds [3]uint8
}

func (d *ChannelDescriptor) TotalBits() int {
	return int(d.Bits[0]) + int(d.Bits[1]) + int(d.Bits[2])
}

type Bounds struct {
	Min   mgl64.Vec3
	Delta mgl64.Vec3
}

type BoundsTable []Bounds

func (t BoundsTable) get(field string, i uint8) (*Bounds, error) {
	if err := checkRange(field, int(i), len(t)); err != nil {
		return nil, err
	}
	return &t[i], nil
}

// ChannelGroup is one compression group of a segment together with the
// channel to bone map from the base pose.
type ChannelGroup struct {
	Kind        GroupKind
	BoneMap     []int
	Bounds      BoundsTable
	Descriptors []ChannelDescriptor
	FrameBytes  int
}

func readBounds(r *readat.Reader, count int) (BoundsTable, error) {
	t := make(BoundsTable, count)
	for i := range t {
		var err error
		if t[i], err = readMinMax(r); err != nil {
			return nil, errors.Wrapf(err, "bounds %d", i)
		}
	}
	return t, nil
}

func readDescriptors(r *readat.Reader, count int) ([]ChannelDescriptor, error) {
	ds := make([]ChannelDescriptor, count)
	for i := range ds {
		var raw [9]byte
		if err := r.Read(raw[:]); err != nil {
			return nil, errors.Wrapf(err, "channel descriptor %d", i)
		}
		copy(ds[i].Bits[:], raw[0:3])
		copy(ds[i].Coarse[:], raw[3:6])
		copy(ds[i].Bounds[:], raw[6:9])
		for _, bits := range ds[i].Bits {
			if bits > maxChannelBits {
				return nil, &FormatError{Kind: KindBitWidthOutOfRange, Field: fmt.Sprintf("channel %d bits", i),
					Expected: maxChannelBits, Actual: int64(bits)}
			}
		}
	}
	return ds, nil
}

// readGroup reads bounds and descriptors and checks every frame fits the
// declared per-frame byte size.
func readGroup(r *readat.Reader, kind GroupKind, boneMap []int, boundsCount, frameBytes int) (*ChannelGroup, error) {
	g := &ChannelGroup{
		Kind:       kind,
		BoneMap:    boneMap,
		FrameBytes: frameBytes,
	}
	var err error
	if g.Bounds, err = readBounds(r, boundsCount); err != nil {
		return nil, errors.Wrapf(err, "%v", kind)
	}
	if g.Descriptors, err = readDescriptors(r, len(boneMap)); err != nil {
		return nil, errors.Wrapf(err, "%v", kind)
	}

	total := 0
	for i := range g.Descriptors {
		total += g.Descriptors[i].TotalBits()
	}
	if total > frameBytes*8 {
		return nil, &FormatError{Kind: KindTruncatedChannelData, Field: kind.String(),
			Expected: int64(frameBytes * 8), Actual: int64(total)}
	}
	return g, nil
}

// bitUnpacker reads little-endian bit fields, least significant bit first,
// across byte boundaries.
type bitUnpacker struct {
	data []byte
	pos  int
}

func (u *bitUnpacker) reset(data []byte) {
	u.data = data
	u.pos = 0
}

// unpack returns raw < 2^bits and scale = 2^bits.
func (u *bitUnpacker) unpack(bits uint8) (raw uint64, scale uint64) {
	scale = 1
	for i := uint8(0); i < bits; i++ {
		if (u.data[u.pos>>3]>>(u.pos&7))&1 != 0 {
			raw += scale
		}
		u.pos++
		scale <<= 1
	}
	return raw, scale
}

func fullFraction(raw, scale uint64) float64 {
	return float64(raw) / float64(scale)
}

// sparseFraction maps the top code to exactly 1.0 but leaves zero at 2^bits.
func sparseFraction(raw, scale uint64) float64 {
	if raw > 0 {
		scale--
	}
	return float64(raw) / float64(scale)
}

// SmallestThree expands a three component rotation encoding into a unit
// quaternion.
func SmallestThree(c mgl64.Vec3) mgl64.Quat {
	n := c.Dot(c)
	w := (1 - n) / 2
	s := 2 / (1 + n)
	return mgl64.Quat{W: w * s, V: c.Mul(s)}
}

func dequantize16(raw uint16, b *Bounds, axis int) float64 {
	return float64(raw)/65536*b.Delta[axis] + b.Min[axis]
}

func coarseRotation(d *ChannelDescriptor) mgl64.Quat {
	return SmallestThree(mgl64.Vec3{
		float64(d.Coarse[0])/127.5 - 1,
		float64(d.Coarse[1])/127.5 - 1,
		float64(d.Coarse[2])/127.5 - 1,
	})
}

func coarsePosition(d *ChannelDescriptor, global *Bounds, divisor float64) mgl64.Vec3 {
	var v mgl64.Vec3
	for axis := range v {
		v[axis] = float64(d.Coarse[axis])/divisor*global.Delta[axis] + global.Min[axis]
	}
	return v
}

// decodeFullPosition decodes one position-full channel. The y axis uses the
// x axis bounds index.
func (g *ChannelGroup) decodeFullPosition(u *bitUnpacker, ch int, global *Bounds) (mgl64.Vec3, error) {
	d := &g.Descriptors[ch]
	coarse := coarsePosition(d, global, 256)
	indices := [3]uint8{d.Bounds[0], d.Bounds[0], d.Bounds[2]}

	var v mgl64.Vec3
	for axis := range v {
		raw, scale := u.unpack(d.Bits[axis])
		b, err := g.Bounds.get("position full bounds index", indices[axis])
		if err != nil {
			return v, err
		}
		v[axis] = fullFraction(raw, scale)*b.Delta[axis] + b.Min[axis] + coarse[axis]
	}
	return v, nil
}

func (g *ChannelGroup) decodeFullRotation(u *bitUnpacker, ch int) (mgl64.Quat, error) {
	d := &g.Descriptors[ch]
	var fine mgl64.Vec3
	for axis := range fine {
		raw, scale := u.unpack(d.Bits[axis])
		b, err := g.Bounds.get("rotation full bounds index", d.Bounds[axis])
		if err != nil {
			return mgl64.Quat{}, err
		}
		fine[axis] = fullFraction(raw, scale)*b.Delta[axis] + b.Min[axis]
	}
	return coarseRotation(d).Mul(SmallestThree(fine)), nil
}

func (g *ChannelGroup) decodeSparsePosition(u *bitUnpacker, ch int, global *Bounds) (mgl64.Vec3, error) {
	d := &g.Descriptors[ch]
	coarse := coarsePosition(d, global, 255)

	var v mgl64.Vec3
	for axis := range v {
		raw, scale := u.unpack(d.Bits[axis])
		b, err := g.Bounds.get("position sparse bounds index", d.Bounds[axis])
		if err != nil {
			return v, err
		}
		v[axis] = sparseFraction(raw, scale)*b.Delta[axis] + b.Min[axis] + coarse[axis]
	}
	return v, nil
}
