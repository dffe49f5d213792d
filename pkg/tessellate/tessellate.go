// Package tessellate turns a vessel's shape parameters into a profile curve
// and revolves it into a triangle mesh. Generation is pure: the same shape
// always yields the same buffers.
package tessellate

import (
	"math"

	"github.com/chazu/kiln/pkg/kernel"
	"github.com/chazu/kiln/pkg/vessel"
)

const (
	// HeightSegments is the number of profile spans; the profile has
	// HeightSegments+1 samples.
	HeightSegments = 64
	// RadialSegments is the angular resolution of the revolved surface.
	RadialSegments = 32
	// Taper is how much narrower the rim is than the foot.
	Taper = 0.2
)

// VesselPart is the PartName given to lathed vessel meshes.
const VesselPart = "vessel"

// ProfilePoint is one sample of the wall profile: distance from the axis
// at a given height.
type ProfilePoint struct {
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
}

// Profile samples the tapering wall of s from the foot (y=0) to the rim
// (y=height).
func Profile(s vessel.Shape) []ProfilePoint {
	points := make([]ProfilePoint, 0, HeightSegments+1)
	for i := 0; i <= HeightSegments; i++ {
		y := float64(i) / HeightSegments * s.Height
		t := 0.0
		if s.Height > 0 {
			t = y / s.Height
		}
		r := s.Radius * (1 - t*Taper) * s.Smoothness
		points = append(points, ProfilePoint{Radius: r, Height: y})
	}
	return points
}

// Lathe revolves profile around the Y axis with the given number of
// segments. The seam column is duplicated so texture coordinates run
// cleanly from u=0 to u=1; v runs from 0 at the foot to 1 at the rim.
func Lathe(profile []ProfilePoint, segments int) *kernel.Mesh {
	if segments < 3 {
		segments = 3
	}
	n := len(profile)
	if n < 2 {
		return &kernel.Mesh{}
	}

	normals2d := profileNormals(profile)
	numVerts := (segments + 1) * n

	mesh := &kernel.Mesh{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		UVs:      make([]float32, 0, numVerts*2),
		Indices:  make([]uint32, 0, segments*(n-1)*6),
	}

	for i := 0; i <= segments; i++ {
		phi := float64(i) / float64(segments) * 2 * math.Pi
		sin, cos := math.Sincos(phi)
		for j, p := range profile {
			mesh.Vertices = append(mesh.Vertices,
				float32(p.Radius*sin), float32(p.Height), float32(p.Radius*cos))

			nr, ny := normals2d[j][0], normals2d[j][1]
			mesh.Normals = append(mesh.Normals,
				float32(nr*sin), float32(ny), float32(nr*cos))

			mesh.UVs = append(mesh.UVs,
				float32(i)/float32(segments), float32(j)/float32(n-1))
		}
	}

	for i := 0; i < segments; i++ {
		for j := 0; j < n-1; j++ {
			base := uint32(j + i*n)
			a := base
			b := base + uint32(n)
			c := base + uint32(n) + 1
			d := base + 1
			mesh.Indices = append(mesh.Indices, a, b, d, c, d, b)
		}
	}

	return mesh
}

// Vessel lathes the full vessel surface for s.
func Vessel(s vessel.Shape) *kernel.Mesh {
	m := Lathe(Profile(s), RadialSegments)
	m.PartName = VesselPart
	return m
}

// profileNormals returns outward unit normals (radial, vertical) for each
// profile sample, from central differences along the curve.
func profileNormals(profile []ProfilePoint) [][2]float64 {
	n := len(profile)
	out := make([][2]float64, n)
	for j := range profile {
		prev := profile[max(j-1, 0)]
		next := profile[min(j+1, n-1)]
		dr := next.Radius - prev.Radius
		dy := next.Height - prev.Height
		length := math.Hypot(dr, dy)
		if length == 0 {
			out[j] = [2]float64{1, 0}
			continue
		}
		out[j] = [2]float64{dy / length, -dr / length}
	}
	return out
}
