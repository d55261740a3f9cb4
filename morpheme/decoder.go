package morpheme

import (
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/morpheme_converter/readat"
	"github.com/mogaika/morpheme_converter/utils"
)

const (
	SupportedAnimationType = 3

	// a run of this many zero bytes ends the textual metadata preamble
	preambleZeroRun = 25
)

type SequenceHeader struct {
	RegionLength  int32
	DataStart     int64
	AnimationType int32
	Duration      float64
	FPS           float64
}

func (h *SequenceHeader) RegionEnd() int64 {
	return h.DataStart + int64(h.RegionLength)
}

// BasePose is the sequence-wide part of the data region: channel to bone
// maps of every group and the quantization of the base pose itself.
type BasePose struct {
	BoneCount int

	PositionBounds Bounds
	RotationBounds Bounds

	PositionMap []int
	RotationMap []int

	PositionFullMap      []int
	RotationFullMap      []int
	PositionSparseMap    []int
	RotationIndexedCount int

	// DirectRotation marks bones whose rotation is sampled directly by the
	// rotation-full group. Bone 0 is always direct.
	DirectRotation []bool
}

type Decoder struct {
	r    *readat.Reader
	skel *Skeleton
	log  *utils.Logger

	Header       SequenceHeader
	Base         BasePose
	SegmentCount int

	table         *PoseTable
	segmentsStart int64
}

// NewDecoder parses the sequence header and base pose of src. Segments are
// decoded later by DecodeSegments.
func NewDecoder(src io.ReaderAt, skel *Skeleton, l *utils.Logger) (*Decoder, error) {
	d := &Decoder{
		r:    readat.NewReader(src, 0),
		skel: skel,
		log:  l,
	}
	if err := d.skipPreamble(); err != nil {
		return nil, errors.Wrapf(err, "preamble")
	}
	if err := d.readHeader(); err != nil {
		return nil, errors.Wrapf(err, "header")
	}
	if err := d.readBasePose(); err != nil {
		return nil, errors.Wrapf(err, "base pose")
	}
	if err := d.readSegmentCount(); err != nil {
		return nil, errors.Wrapf(err, "segment list")
	}
	// animation bone i is skeleton node i+1
	if nodes := len(skel.Bones); d.Base.BoneCount+1 > nodes {
		log.Printf("Warning: sequence animates %d bones, animset has only %d nodes", d.Base.BoneCount, nodes)
	}
	return d, nil
}

func (d *Decoder) Table() *PoseTable {
	return d.table
}

func (d *Decoder) Skeleton() *Skeleton {
	return d.skel
}

// skipPreamble skips NUL separated metadata strings up to the first run of
// at least preambleZeroRun zero bytes. The byte ending the run is consumed.
func (d *Decoder) skipPreamble() error {
	for {
		zeros := 0
		for {
			b, err := d.r.ReadU8()
			if err != nil {
				return err
			}
			if b != 0 {
				break
			}
			zeros++
		}
		if zeros >= preambleZeroRun {
			return nil
		}
		for {
			b, err := d.r.ReadU8()
			if err != nil {
				return err
			}
			if b == 0 {
				break
			}
		}
	}
}

func (d *Decoder) readHeader() error {
	r := d.r
	h := &d.Header

	r.Skip(7)
	var err error
	if h.RegionLength, err = r.ReadI32LE(); err != nil {
		return err
	}
	check, err := r.ReadI32LE()
	if err != nil {
		return err
	}
	if check != h.RegionLength {
		return &FormatError{Kind: KindHeaderMismatch, Field: "region length",
			Expected: int64(h.RegionLength), Actual: int64(check)}
	}
	r.Skip(4)
	h.DataStart = r.Tell()

	if h.AnimationType, err = r.ReadI32LE(); err != nil {
		return err
	}
	if h.AnimationType != SupportedAnimationType {
		return &FormatError{Kind: KindUnsupportedAnimationType, Field: "animation type",
			Expected: SupportedAnimationType, Actual: int64(h.AnimationType)}
	}

	r.Skip(20)
	duration, err := r.ReadF32LE()
	if err != nil {
		return err
	}
	fps, err := r.ReadF32LE()
	if err != nil {
		return err
	}
	h.Duration, h.FPS = float64(duration), float64(fps)

	r.Skip(12)
	rel, err := r.ReadI32LE()
	if err != nil {
		return err
	}
	r.Skip(int64(rel) - 48)

	d.log.Printf("region 0x%x+0x%x type %d %v sec %v fps", h.DataStart, h.RegionLength, h.AnimationType, h.Duration, h.FPS)
	return nil
}

func readBoneMap(r *readat.Reader, field string, count, boneCount int) ([]int, error) {
	m := make([]int, count)
	for i := range m {
		v, err := r.ReadI16LE()
		if err != nil {
			return nil, errors.Wrapf(err, "%s %d", field, i)
		}
		if err := checkRange(field, int(v), boneCount); err != nil {
			return nil, err
		}
		m[i] = int(v)
	}
	return m, nil
}

func readCount(r *readat.Reader, field string) (int, error) {
	v, err := r.ReadI16LE()
	if err != nil {
		return 0, errors.Wrapf(err, "%s", field)
	}
	if v < 0 {
		return 0, &FormatError{Kind: KindHeaderMismatch, Field: field, Expected: 0, Actual: int64(v)}
	}
	return int(v), nil
}

func alignedQuantizedSize(count int) int64 {
	return int64((count*6 + 3) &^ 3)
}

func (d *Decoder) readBasePose() error {
	r := d.r
	b := &d.Base
	dataStart := d.Header.DataStart

	// base orientation quaternion, unused
	r.Skip(16)
	r.Skip(2)

	var err error
	if b.BoneCount, err = readCount(r, "bone count"); err != nil {
		return err
	}
	if b.BoneCount == 0 {
		return &FormatError{Kind: KindHeaderMismatch, Field: "bone count", Expected: 1, Actual: 0}
	}
	basePositions, err := readCount(r, "base position count")
	if err != nil {
		return err
	}
	baseRotations, err := readCount(r, "base rotation count")
	if err != nil {
		return err
	}
	if b.PositionBounds, err = readMinMax(r); err != nil {
		return errors.Wrapf(err, "base position bounds")
	}
	if b.RotationBounds, err = readMinMax(r); err != nil {
		return errors.Wrapf(err, "base rotation bounds")
	}

	r.Skip(8)
	positionFull, err := readCount(r, "position full channels")
	if err != nil {
		return err
	}
	rotationFull, err := readCount(r, "rotation full channels")
	if err != nil {
		return err
	}
	positionSparse, err := readCount(r, "position sparse channels")
	if err != nil {
		return err
	}
	indexed, err := r.ReadI16LE()
	if err != nil {
		return errors.Wrapf(err, "rotation indexed channels")
	}
	if indexed > 0 {
		return &FormatError{Kind: KindUnsupportedIndexedRotation, Field: GroupRotationIndexed.String(),
			Expected: 0, Actual: int64(indexed)}
	}

	r.Skip(8)
	baseData := r.Tell()
	r.Skip(alignedQuantizedSize(basePositions) + alignedQuantizedSize(baseRotations))

	if b.PositionMap, err = readBoneMap(r, "base position bone", basePositions, b.BoneCount); err != nil {
		return err
	}
	if b.PositionFullMap, err = readBoneMap(r, "position full bone", positionFull, b.BoneCount); err != nil {
		return err
	}
	if b.PositionSparseMap, err = readBoneMap(r, "position sparse bone", positionSparse, b.BoneCount); err != nil {
		return err
	}
	r.AlignTo(dataStart)
	if b.RotationMap, err = readBoneMap(r, "base rotation bone", baseRotations, b.BoneCount); err != nil {
		return err
	}
	if b.RotationFullMap, err = readBoneMap(r, "rotation full bone", rotationFull, b.BoneCount); err != nil {
		return err
	}

	b.DirectRotation = make([]bool, b.BoneCount)
	b.DirectRotation[0] = true
	for _, bone := range b.RotationFullMap {
		b.DirectRotation[bone] = true
	}

	d.table = NewPoseTable(b.BoneCount)

	r.Seek(baseData)
	for _, bone := range b.PositionMap {
		v, err := readQuantized16(r, &b.PositionBounds)
		if err != nil {
			return errors.Wrapf(err, "base position of bone %d", bone)
		}
		if err := d.table.SetPosition(0, bone, v, SampleDirect); err != nil {
			return err
		}
	}
	r.AlignTo(dataStart)
	for _, bone := range b.RotationMap {
		v, err := readQuantized16(r, &b.RotationBounds)
		if err != nil {
			return errors.Wrapf(err, "base rotation of bone %d", bone)
		}
		if err := d.table.SetRotation(0, bone, SmallestThree(v), SampleDirect); err != nil {
			return err
		}
	}

	d.log.Printf("base pose: %d bones, %d positions, %d rotations; channels %d/%d/%d",
		b.BoneCount, basePositions, baseRotations, positionFull, rotationFull, positionSparse)
	return nil
}

func readMinMax(r *readat.Reader) (Bounds, error) {
	min, err := r.ReadVec3F32LE()
	if err != nil {
		return Bounds{}, err
	}
	max, err := r.ReadVec3F32LE()
	if err != nil {
		return Bounds{}, err
	}
	return Bounds{Min: min, Delta: max.Sub(min)}, nil
}

func readQuantized16(r *readat.Reader, b *Bounds) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	for axis := range v {
		raw, err := r.ReadU16LE()
		if err != nil {
			return v, err
		}
		v[axis] = dequantize16(raw, b, axis)
	}
	return v, nil
}

func (d *Decoder) readSegmentCount() error {
	r := d.r
	r.Seek(d.Header.RegionEnd() + 4)
	rel, err := r.ReadI32LE()
	if err != nil {
		return err
	}
	r.Skip(int64(rel) + 40)

	count, err := r.ReadI32LE()
	if err != nil {
		return err
	}
	if count < 0 {
		return &FormatError{Kind: KindHeaderMismatch, Field: "segment count", Expected: 0, Actual: int64(count)}
	}
	d.SegmentCount = int(count)
	d.segmentsStart = r.Tell()
	return nil
}
