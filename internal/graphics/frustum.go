package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane is a*x + b*y + c*z + d = 0 with (a, b, c) pointing inside.
type Plane struct {
	A, B, C, D float32
}

// Frustum holds the six clip planes: left, right, bottom, top, near, far.
type Frustum [6]Plane

// NewFrustum extracts the planes of a projection*view matrix.
func NewFrustum(clip mgl32.Mat4) Frustum {
	// mgl32 is column-major
	row := func(i int) [4]float32 {
		return [4]float32{clip[i], clip[4+i], clip[8+i], clip[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)
	combine := func(a [4]float32, sign float32) Plane {
		return normalizePlane(Plane{r3[0] + sign*a[0], r3[1] + sign*a[1], r3[2] + sign*a[2], r3[3] + sign*a[3]})
	}
	return Frustum{
		combine(r0, 1), combine(r0, -1),
		combine(r1, 1), combine(r1, -1),
		combine(r2, 1), combine(r2, -1),
	}
}

func normalizePlane(p Plane) Plane {
	l := float32(math.Sqrt(float64(p.A*p.A + p.B*p.B + p.C*p.C)))
	if l == 0 {
		return p
	}
	return Plane{p.A / l, p.B / l, p.C / l, p.D / l}
}

// IntersectsAABB reports whether the box is at least partly inside. The
// test is conservative: some boxes just outside a corner pass.
func (f *Frustum) IntersectsAABB(lo, hi mgl32.Vec3) bool {
	for _, p := range f {
		// positive vertex for this plane normal
		px, py, pz := hi[0], hi[1], hi[2]
		if p.A < 0 {
			px = lo[0]
		}
		if p.B < 0 {
			py = lo[1]
		}
		if p.C < 0 {
			pz = lo[2]
		}
		if p.A*px+p.B*py+p.C*pz+p.D < 0 {
			return false
		}
	}
	return true
}
