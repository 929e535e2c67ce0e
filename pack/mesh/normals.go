package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const NORMAL_TABLE_SIZE = 256

// NormalTable holds the unit vectors a packed vertex normal index points at.
// Entries lie on a golden angle spiral from +Z to -Z, so the table is the
// same on every run and is never written after init.
var NormalTable [NORMAL_TABLE_SIZE]mgl32.Vec3

func init() {
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	for i := range NormalTable {
		z := 1 - (float64(i)+0.5)*2/NORMAL_TABLE_SIZE
		r := math.Sqrt(1 - z*z)
		phi := goldenAngle * float64(i)
		NormalTable[i] = mgl32.Vec3{
			float32(r * math.Cos(phi)),
			float32(r * math.Sin(phi)),
			float32(z),
		}
	}
}
