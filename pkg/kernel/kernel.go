// Package kernel defines the abstract geometry kernel interface used for the
// fixed props of the studio (the wheel head, trimming beads). The vessel
// itself is lathed directly by package tessellate; the kernel abstraction
// keeps the prop geometry swappable without touching the rest of the system.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives. Cylinders are built along the Z axis, centered on the origin.
	Cylinder(height, radius float64, segments int) Solid
	Sphere(radius float64) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
