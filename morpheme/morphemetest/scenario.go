package morphemetest

// TwoBoneSet is a root and one child. Both names are in the default mirror
// table; the child mirrors to GenericHumanRThigh.
func TwoBoneSet() []byte {
	return BuildSet([]SetBone{
		{Name: "Scene_Root", ParentCode: -1, Rotation: [4]float32{0, 0, 0, 1}},
		{Name: "GenericHumanLThigh", ParentCode: 0, Rotation: [4]float32{0, 0, 0, 1}, Translation: [3]float32{1, 2, 3}},
	})
}

// ChainSet is a root node followed by one node per animation bone of
// TwoBoneSequence, so animation bone 1 resolves its parent to bone 0.
func ChainSet() []byte {
	return BuildSet([]SetBone{
		{Name: "Scene_Root", ParentCode: -1, Rotation: [4]float32{0, 0, 0, 1}},
		{Name: "GenericHumanPelvis", ParentCode: 0, Rotation: [4]float32{0, 0, 0, 1}},
		{Name: "GenericHumanLThigh", ParentCode: 1, Rotation: [4]float32{0, 0, 0, 1}, Translation: [3]float32{1, 2, 3}},
	})
}

// TwoBoneSequence animates two bones over one segment of at most 4 frames:
//   - bone 0 has base position (-1,-1,-1) and no position channel
//   - bone 1 has position-full samples (f/4, f/4, f/4) at frame f
//   - both bones have rotation-full samples equal to the quaternion
//     (w,x,y,z) = (-0.5,-0.5,-0.5,-0.5), a 120 degree turn around (1,1,1)
//
// The parent of bone 1 resolves past the end of TwoBoneSet, so hierarchy
// resolution leaves both rotations unchanged.
func TwoBoneSequence(fps float32, frames int) *Sequence {
	unit := Bounds{{-1, -1, -1}, {1, 1, 1}}
	s := &Sequence{
		Duration:       float32(frames) / fps,
		FPS:            fps,
		BoneCount:      2,
		PositionBounds: unit,
		RotationBounds: unit,
		BasePositions: []BaseSample{
			{Bone: 0, Raw: [3]uint16{0, 0, 0}},
			{Bone: 1, Raw: [3]uint16{32768, 32768, 32768}},
		},
		BaseRotations: []BaseSample{
			{Bone: 0, Raw: [3]uint16{32768, 32768, 32768}},
			{Bone: 1, Raw: [3]uint16{32768, 32768, 32768}},
		},
		PositionFullBones: []int{1},
		RotationFullBones: []int{0, 1},
	}

	seg := Segment{
		StartFrame: 0,
		FrameCount: frames,
		PositionFull: Group{
			Bounds:   []Bounds{{{0, 0, 0}, {1, 1, 1}}},
			Channels: []Channel{{Bits: [3]uint8{8, 8, 8}}},
		},
		RotationFull: Group{
			Bounds:   []Bounds{{}},
			Channels: []Channel{{}, {}},
		},
	}
	for f := 0; f < frames; f++ {
		raw := uint64(64 * f)
		seg.PositionFull.Frames = append(seg.PositionFull.Frames, PackBits(3,
			Field{Value: raw, Bits: 8}, Field{Value: raw, Bits: 8}, Field{Value: raw, Bits: 8}))
	}
	s.Segments = []Segment{seg}
	return s
}
