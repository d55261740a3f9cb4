package morpheme

import (
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/morpheme_converter/readat"
	"github.com/mogaika/morpheme_converter/utils"
)

// PositionScale converts stored translations to SMD units.
const PositionScale = 50.0

type Bone struct {
	Index      int
	Name       string
	ParentCode int32
}

// Skeleton is the bone table of a .MorphemeAnimSet.
// Bind translations are kept in file units, see PositionScale.
type Skeleton struct {
	Bones            []Bone
	BindRotations    []mgl64.Quat
	BindTranslations []mgl64.Vec3
}

type SkeletonOptions struct {
	// Mirror remaps every bone name when set.
	Mirror MirrorTable
}

// ResolveParent maps animation bone index to the animation index of its
// parent. Animation bone i is skeleton node i+1, node 0 being the sentinel.
func (s *Skeleton) ResolveParent(bone int) (int, bool) {
	if bone < 0 || bone+1 >= len(s.Bones) {
		return -1, false
	}
	p := int(s.Bones[bone+1].ParentCode) - 1
	if p < 0 {
		return -1, false
	}
	return p, true
}

func findSentinel(r *readat.Reader) error {
	r.Seek(0)
	for {
		v, err := r.ReadI32LE()
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return &FormatError{Kind: KindSentinelNotFound, Field: "skeleton parent table"}
			}
			return err
		}
		if v == -1 {
			return nil
		}
		r.Skip(-3)
	}
}

func ParseSkeleton(src io.ReaderAt, opts SkeletonOptions) (*Skeleton, error) {
	r := readat.NewReader(src, 0)
	if err := findSentinel(r); err != nil {
		return nil, err
	}

	r.Skip(-32)
	tableStart := r.Tell()

	namesRel, err := r.ReadI32LE()
	if err != nil {
		return nil, errors.Wrapf(err, "names pointer")
	}
	namesOffset := int64(namesRel) + tableStart + 4 - 32

	poseRel, err := r.ReadI32LE()
	if err != nil {
		return nil, errors.Wrapf(err, "pose pointer")
	}
	poseBase := int64(poseRel) + tableStart + 8 - 36

	r.Skip(12)
	count, err := r.ReadI32LE()
	if err != nil {
		return nil, errors.Wrapf(err, "bone count")
	}
	if count < 0 {
		return nil, &FormatError{Kind: KindHeaderMismatch, Field: "bone count", Expected: 0, Actual: int64(count)}
	}
	r.Skip(4)

	s := &Skeleton{
		Bones:            make([]Bone, count),
		BindRotations:    make([]mgl64.Quat, count),
		BindTranslations: make([]mgl64.Vec3, count),
	}
	for i := range s.Bones {
		code, err := r.ReadI32LE()
		if err != nil {
			return nil, errors.Wrapf(err, "parent code %d", i)
		}
		s.Bones[i] = Bone{Index: i, ParentCode: code}
	}

	r.Seek(namesOffset)
	namesSkip, err := r.ReadI32LE()
	if err != nil {
		return nil, errors.Wrapf(err, "names header")
	}
	r.Skip(int64(namesSkip) - 20)
	for i := range s.Bones {
		raw, err := r.ReadCString()
		if err != nil {
			return nil, errors.Wrapf(err, "bone %d name", i)
		}
		name, err := utils.DecodeName(raw)
		if err != nil {
			return nil, &EncodingError{Bone: i, Raw: raw, Err: err}
		}
		if opts.Mirror != nil {
			if name, err = opts.Mirror.Mirror(name); err != nil {
				return nil, errors.Wrapf(err, "bone %d", i)
			}
		}
		s.Bones[i].Name = name
	}

	r.Seek(poseBase + 20)
	poseRel, err = r.ReadI32LE()
	if err != nil {
		return nil, errors.Wrapf(err, "bind pose pointer")
	}
	r.Seek(int64(poseRel) + poseBase)
	translationsRel, err := r.ReadI32LE()
	if err != nil {
		return nil, errors.Wrapf(err, "bind translations pointer")
	}
	rotationsRel, err := r.ReadI32LE()
	if err != nil {
		return nil, errors.Wrapf(err, "bind rotations pointer")
	}

	r.Seek(int64(rotationsRel) + poseBase)
	for i := range s.BindRotations {
		var xyzw [4]float64
		if err := r.ReadF32ArrayLE(xyzw[:]); err != nil {
			return nil, errors.Wrapf(err, "bind rotation %d", i)
		}
		s.BindRotations[i] = mgl64.Quat{W: xyzw[3], V: mgl64.Vec3{xyzw[0], xyzw[1], xyzw[2]}}
	}

	r.Seek(int64(translationsRel) + poseBase)
	for i := range s.BindTranslations {
		if s.BindTranslations[i], err = r.ReadVec3F32LE(); err != nil {
			return nil, errors.Wrapf(err, "bind translation %d", i)
		}
		r.Skip(4)
	}

	return s, nil
}
