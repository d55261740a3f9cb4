package morpheme

import (
	"github.com/go-gl/mathgl/mgl64"
)

// MaxSegmentFrames is the number of frame rows a segment may address.
const MaxSegmentFrames = 60

type SampleState uint8

const (
	SampleUnset SampleState = iota
	SampleDirect
	SampleInterpolated
)

func (s SampleState) IsSet() bool {
	return s != SampleUnset
}

type positionCell struct {
	State SampleState
	Value mgl64.Vec3
}

type rotationCell struct {
	State SampleState
	Value mgl64.Quat
}

// PoseTable holds per frame, per bone positions and rotations of the current
// segment. Row 0 doubles as the base pose for bones a segment does not touch.
type PoseTable struct {
	boneCount int
	positions [MaxSegmentFrames][]positionCell
	rotations [MaxSegmentFrames][]rotationCell
}

func NewPoseTable(boneCount int) *PoseTable {
	t := &PoseTable{boneCount: boneCount}
	for i := range t.positions {
		t.positions[i] = make([]positionCell, boneCount)
		t.rotations[i] = make([]rotationCell, boneCount)
	}
	return t
}

func (t *PoseTable) BoneCount() int {
	return t.boneCount
}

func (t *PoseTable) check(frame, bone int) error {
	if frame < 0 || frame >= MaxSegmentFrames {
		return &FormatError{Kind: KindFrameOutOfRange, Field: "frame", Expected: MaxSegmentFrames, Actual: int64(frame)}
	}
	return checkRange("bone", bone, t.boneCount)
}

func (t *PoseTable) SetPosition(frame, bone int, v mgl64.Vec3, state SampleState) error {
	if err := t.check(frame, bone); err != nil {
		return err
	}
	t.positions[frame][bone] = positionCell{State: state, Value: v}
	return nil
}

func (t *PoseTable) SetRotation(frame, bone int, q mgl64.Quat, state SampleState) error {
	if err := t.check(frame, bone); err != nil {
		return err
	}
	t.rotations[frame][bone] = rotationCell{State: state, Value: q}
	return nil
}

func (t *PoseTable) PositionState(frame, bone int) SampleState {
	if t.check(frame, bone) != nil {
		return SampleUnset
	}
	return t.positions[frame][bone].State
}

func (t *PoseTable) RotationState(frame, bone int) SampleState {
	if t.check(frame, bone) != nil {
		return SampleUnset
	}
	return t.rotations[frame][bone].State
}

func (t *PoseTable) Position(frame, bone int) (mgl64.Vec3, error) {
	if err := t.check(frame, bone); err != nil {
		return mgl64.Vec3{}, err
	}
	c := &t.positions[frame][bone]
	if !c.State.IsSet() {
		return mgl64.Vec3{}, &FormatError{Kind: KindMissingSample, Field: "position", Expected: int64(frame), Actual: int64(bone)}
	}
	return c.Value, nil
}

func (t *PoseTable) Rotation(frame, bone int) (mgl64.Quat, error) {
	if err := t.check(frame, bone); err != nil {
		return mgl64.Quat{}, err
	}
	c := &t.rotations[frame][bone]
	if !c.State.IsSet() {
		return mgl64.Quat{}, &FormatError{Kind: KindMissingSample, Field: "rotation", Expected: int64(frame), Actual: int64(bone)}
	}
	return c.Value, nil
}

// GetOrBindPose returns the pose of bone at frame, taking each channel from
// frame 0 when the frame itself has no value. ok is false when the bone has
// no base pose or nothing at this frame.
func (t *PoseTable) GetOrBindPose(frame, bone int) (pos mgl64.Vec3, rot mgl64.Quat, ok bool) {
	if t.check(frame, bone) != nil {
		return pos, rot, false
	}
	p0, r0 := &t.positions[0][bone], &t.rotations[0][bone]
	if !p0.State.IsSet() || !r0.State.IsSet() {
		return pos, rot, false
	}
	p, r := &t.positions[frame][bone], &t.rotations[frame][bone]
	if !p.State.IsSet() && !r.State.IsSet() {
		return pos, rot, false
	}
	if !p.State.IsSet() {
		p = p0
	}
	if !r.State.IsSet() {
		r = r0
	}
	return p.Value, r.Value, true
}
