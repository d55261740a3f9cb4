package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const eulerGimbalEpsilon = 1e-6

// QuatToEuler returns (roll, pitch, yaw) in radians, extracted from the
// rotation matrix of q.
func QuatToEuler(q mgl64.Quat) mgl64.Vec3 {
	m := q.Mat4()
	m00, m10, m20 := m.At(0, 0), m.At(1, 0), m.At(2, 0)
	m11, m12 := m.At(1, 1), m.At(1, 2)
	m21, m22 := m.At(2, 1), m.At(2, 2)

	var e mgl64.Vec3
	sy := math.Sqrt(m00*m00 + m10*m10)
	if sy < eulerGimbalEpsilon {
		e = mgl64.Vec3{math.Atan2(-m12, m11), math.Atan2(-m20, sy), 0}
	} else {
		e = mgl64.Vec3{math.Atan2(m21, m22), math.Atan2(-m20, sy), math.Atan2(m10, m00)}
	}
	// negated zero matrix terms would print as -0.000000
	for i := range e {
		if e[i] == 0 {
			e[i] = 0
		}
	}
	return e
}

func Vec3ToFloat32(v mgl64.Vec3) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

// QuatToFloat32 returns xyzw order.
func QuatToFloat32(q mgl64.Quat) [4]float32 {
	return [4]float32{float32(q.V[0]), float32(q.V[1]), float32(q.V[2]), float32(q.W)}
}
