package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CorrectionMatrix turns z-up shapes into y-up space, a -90 degree turn about X.
// Written out so the zero terms stay exact. Column major.
var CorrectionMatrix = mgl32.Mat4{
	1, 0, 0, 0,
	0, 0, -1, 0,
	0, 1, 0, 0,
	0, 0, 0, 1,
}

// NormalizeQuat returns q scaled to unit length, or identity for a zero quaternion.
func NormalizeQuat(q mgl32.Quat) mgl32.Quat {
	l := q.Len()
	if l == 0 || math.IsNaN(float64(l)) {
		return mgl32.QuatIdent()
	}
	return q.Scale(1 / l)
}

// ComposeTRS builds translate * rotate * scale.
func ComposeTRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(NormalizeQuat(r).Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

func TransformPoint(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(v.Vec4(1)).Vec3()
}

// result in radians
func QuatToEuler(q mgl32.Quat) (e mgl32.Vec3) {
	sinr_cosp := float64(2 * (q.W*q.X() + q.Y()*q.Z()))
	cosr_cosp := float64(1 - 2*(q.X()*q.X()+q.Y()*q.Y()))

	e[0] = float32(math.Atan2(sinr_cosp, cosr_cosp))

	sinp := float64(2 * (q.W*q.Y() - q.Z()*q.X()))
	if math.Abs(sinp) >= 1 {
		e[1] = math.Pi / 2
		if sinp < 0 {
			e[1] *= -1
		}
	} else {
		e[1] = float32(math.Asin(sinp))
	}

	siny_cosp := float64(2 * (q.W*q.Z() + q.X()*q.Y()))
	cosy_cosp := float64(1 - 2*(q.Y()*q.Y()+q.Z()*q.Z()))
	e[2] = float32(math.Atan2(siny_cosp, cosy_cosp))

	return e
}

func RadiansToDegreeV3(v mgl32.Vec3) mgl32.Vec3 {
	return v.Mul(180.0 / math.Pi)
}
