package morpheme

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func quatNear(a, b mgl64.Quat) bool {
	return math.Abs(a.W-b.W) < 1e-9 && a.V.Sub(b.V).Len() < 1e-9
}

func negConj(q mgl64.Quat) mgl64.Quat {
	return mgl64.Quat{W: -q.W, V: q.V}
}

// chainSkeleton links animation bone i to bone i-1.
func chainSkeleton(boneCount int) *Skeleton {
	s := &Skeleton{Bones: make([]Bone, boneCount+1)}
	for i := range s.Bones {
		s.Bones[i] = Bone{Index: i, ParentCode: int32(i - 1)}
	}
	return s
}

func fillRotations(t *testing.T, table *PoseTable, frame int, bones []int) map[int]mgl64.Quat {
	out := make(map[int]mgl64.Quat)
	for _, b := range bones {
		q := mgl64.QuatRotate(0.1*float64(b+1)+0.05*float64(frame), mgl64.Vec3{1, 2, 3}.Normalize())
		if err := table.SetRotation(frame, b, q, SampleDirect); err != nil {
			t.Fatal(err)
		}
		out[b] = q
	}
	return out
}

func TestHierarchySkipsIndirectBones(t *testing.T) {
	table := NewPoseTable(4)
	direct := []bool{true, false, true, false}
	base := fillRotations(t, table, 0, []int{0, 1, 2, 3})
	frame := fillRotations(t, table, 1, []int{0, 2})

	if err := resolveHierarchy(table, 1, direct, chainSkeleton(4)); err != nil {
		t.Fatal(err)
	}

	for _, b := range []int{1, 3} {
		if table.RotationState(1, b).IsSet() {
			t.Errorf("bone %d gained a rotation at frame 1", b)
		}
		if q, _ := table.Rotation(0, b); q != base[b] {
			t.Errorf("bone %d frame 0 rotation changed", b)
		}
	}
	if q, _ := table.Rotation(1, 0); q != frame[0] {
		t.Errorf("root rotation changed")
	}

	// nearest direct ancestor of bone 2 is the root, so only the frame 0
	// rotation of bone 1 is composed
	expected := negConj(base[1]).Mul(frame[2])
	if q, _ := table.Rotation(1, 2); !quatNear(q, expected) {
		t.Errorf("bone 2 = %v; expected %v", q, expected)
	}
}

func TestHierarchyDirectAncestor(t *testing.T) {
	table := NewPoseTable(4)
	direct := []bool{true, true, false, true}
	base := fillRotations(t, table, 0, []int{0, 1, 2, 3})
	frame := fillRotations(t, table, 2, []int{0, 1, 3})

	if err := resolveHierarchy(table, 2, direct, chainSkeleton(4)); err != nil {
		t.Fatal(err)
	}

	expected3 := negConj(frame[1].Mul(base[2])).Mul(frame[3])
	if q, _ := table.Rotation(2, 3); !quatNear(q, expected3) {
		t.Errorf("bone 3 = %v; expected %v", q, expected3)
	}
	expected1 := negConj(frame[0]).Mul(frame[1])
	if q, _ := table.Rotation(2, 1); !quatNear(q, expected1) {
		t.Errorf("bone 1 = %v; expected %v", q, expected1)
	}
	if table.RotationState(2, 2).IsSet() {
		t.Errorf("indirect bone 2 gained a rotation")
	}
}

func TestHierarchyUnresolvedParent(t *testing.T) {
	table := NewPoseTable(2)
	direct := []bool{true, true}
	frame := fillRotations(t, table, 0, []int{0, 1})

	// skeleton has no node for animation bone 1
	if err := resolveHierarchy(table, 0, direct, chainSkeleton(1)); err != nil {
		t.Fatal(err)
	}
	if q, _ := table.Rotation(0, 1); q != frame[1] {
		t.Errorf("bone without parent node was modified")
	}
}

func TestHierarchyMissingParentSample(t *testing.T) {
	table := NewPoseTable(2)
	fillRotations(t, table, 1, []int{1})
	err := resolveHierarchy(table, 1, []bool{true, true}, chainSkeleton(2))
	if fe, ok := err.(*FormatError); !ok || fe.Kind != KindMissingSample {
		t.Errorf("err = %v; expected missing sample", err)
	}
}
