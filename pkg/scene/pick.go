package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Hit is the nearest surface point under the pointer.
type Hit struct {
	Node     NodeID     `json:"node"`
	World    mgl32.Vec3 `json:"world"`
	Local    mgl32.Vec3 `json:"local"`
	UV       mgl32.Vec2 `json:"uv"`
	Distance float32    `json:"distance"`
	Triangle int        `json:"triangle"`
}

const pickEpsilon = 1e-7

// intersect casts ray (in world space) against n's mesh and returns the
// nearest hit.
func intersect(n *Node, ray Ray) (Hit, bool) {
	m := n.Mesh
	if m == nil || m.IsEmpty() {
		return Hit{}, false
	}

	inv := n.Transform.Matrix().Inv()
	origin := mgl32.TransformCoordinate(ray.Origin, inv)
	through := mgl32.TransformCoordinate(ray.Origin.Add(ray.Direction), inv)
	dir := through.Sub(origin)

	best := Hit{Triangle: -1}
	bestT := float32(math.MaxFloat32)

	for tri := 0; tri < m.TriangleCount(); tri++ {
		i0, i1, i2 := m.Indices[tri*3], m.Indices[tri*3+1], m.Indices[tri*3+2]
		v0, v1, v2 := mgl32.Vec3(m.Vertex(i0)), mgl32.Vec3(m.Vertex(i1)), mgl32.Vec3(m.Vertex(i2))

		t, u, v, ok := mollerTrumbore(origin, dir, v0, v1, v2)
		if !ok || t >= bestT {
			continue
		}
		bestT = t
		best.Triangle = tri
		best.Local = origin.Add(dir.Mul(t))

		uv0, uv1, uv2 := mgl32.Vec2(m.UV(i0)), mgl32.Vec2(m.UV(i1)), mgl32.Vec2(m.UV(i2))
		w := 1 - u - v
		best.UV = uv0.Mul(w).Add(uv1.Mul(u)).Add(uv2.Mul(v))
	}

	if best.Triangle < 0 {
		return Hit{}, false
	}
	best.Node = n.ID
	best.World = n.LocalToWorld(best.Local)
	best.Distance = best.World.Sub(ray.Origin).Len()
	return best, true
}

// mollerTrumbore intersects the ray origin+t*dir with triangle (v0,v1,v2)
// from either side. u and v are the barycentric weights of v1 and v2.
func mollerTrumbore(origin, dir, v0, v1, v2 mgl32.Vec3) (t, u, v float32, ok bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det > -pickEpsilon && det < pickEpsilon {
		return 0, 0, 0, false
	}
	invDet := 1 / det

	s := origin.Sub(v0)
	u = s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	q := s.Cross(e1)
	v = dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	t = e2.Dot(q) * invDet
	if t <= pickEpsilon {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
