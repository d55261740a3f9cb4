package morpheme

import (
	"github.com/go-gl/mathgl/mgl64"
)

// resolveHierarchy turns the directly sampled rotations of frame into
// rotations local to their nearest directly sampled ancestor.
//
// Bones are visited from the highest index down so every parent is still
// in its sampled form when a child reads it. Non-direct ancestors between a
// bone and its nearest direct ancestor contribute their frame 0 rotation.
// Bones without direct samples are never modified. A bone whose parent
// chain leaves the skeleton is left unchanged.
func resolveHierarchy(t *PoseTable, frame int, direct []bool, skel *Skeleton) error {
	for bone := t.BoneCount() - 1; bone >= 1; bone-- {
		if !direct[bone] {
			continue
		}

		parent, ok := skel.ResolveParent(bone)
		if !ok || parent >= len(direct) {
			continue
		}

		var acc mgl64.Quat
		var err error
		if direct[parent] {
			if acc, err = t.Rotation(frame, parent); err != nil {
				return err
			}
		} else {
			if acc, err = t.Rotation(0, parent); err != nil {
				return err
			}
			for steps := 0; ; steps++ {
				if parent, ok = skel.ResolveParent(parent); !ok || parent >= len(direct) {
					break
				}
				if steps > len(direct) {
					// parent codes form a cycle
					ok = false
					break
				}
				if direct[parent] {
					break
				}
				q, err := t.Rotation(0, parent)
				if err != nil {
					return err
				}
				acc = q.Mul(acc)
			}
			if !ok || parent >= len(direct) {
				continue
			}
			if parent > 0 {
				q, err := t.Rotation(frame, parent)
				if err != nil {
					return err
				}
				acc = q.Mul(acc)
			}
		}

		rot, err := t.Rotation(frame, bone)
		if err != nil {
			return err
		}
		// negated conjugate, the same rotation as the inverse of a unit quaternion
		inverse := mgl64.Quat{W: -acc.W, V: acc.V}
		if err := t.SetRotation(frame, bone, inverse.Mul(rot), t.RotationState(frame, bone)); err != nil {
			return err
		}
	}
	return nil
}
