package utils

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCorrectionMatrixIsExact(t *testing.T) {
	for _, test := range []struct {
		in, out mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 0, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 1, 0}, mgl32.Vec3{1, 0, -1}},
	} {
		if got := TransformPoint(CorrectionMatrix, test.in); got != test.out {
			t.Errorf("correction of %v = %v; expected exactly %v", test.in, got, test.out)
		}
	}
	if !CorrectionMatrix.ApproxEqualThreshold(mgl32.HomogRotate3DX(-math.Pi/2), 1e-6) {
		t.Errorf("correction is not a -90 degree turn about x: %v", CorrectionMatrix)
	}
}

func TestComposeTRS(t *testing.T) {
	m := ComposeTRS(mgl32.Vec3{1, 2, 3}, mgl32.Quat{}, mgl32.Vec3{2, 2, 2})
	if got := TransformPoint(m, mgl32.Vec3{1, 0, 0}); !got.ApproxEqual(mgl32.Vec3{3, 2, 3}) {
		t.Errorf("zero quat TRS moved (1,0,0) to %v", got)
	}
}
