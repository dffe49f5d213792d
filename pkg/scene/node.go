package scene

import (
	"github.com/chazu/kiln/pkg/kernel"
	"github.com/go-gl/mathgl/mgl32"
)

// NodeID identifies an object in the scene.
type NodeID string

// Well-known node IDs. Particles get generated IDs.
const (
	WheelID  NodeID = "wheel"
	VesselID NodeID = "vessel"
)

// Kind enumerates the objects a pottery scene can hold.
type Kind int

const (
	KindWheel    Kind = iota // spinning wheel head
	KindVessel               // the lathed clay body
	KindParticle             // trimming shaving
)

func (k Kind) String() string {
	switch k {
	case KindWheel:
		return "wheel"
	case KindVessel:
		return "vessel"
	case KindParticle:
		return "particle"
	default:
		return "unknown"
	}
}

// Transform places a node in the world: translate, then spin about Y,
// then uniform scale.
type Transform struct {
	Position  mgl32.Vec3 `json:"position"`
	RotationY float32    `json:"rotationY"` // radians
	Scale     float32    `json:"scale"`
}

// Identity is the transform of an object at the origin, unrotated, unit scale.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Matrix returns the local-to-world matrix.
func (t Transform) Matrix() mgl32.Mat4 {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(mgl32.HomogRotate3DY(t.RotationY)).
		Mul4(mgl32.Scale3D(s, s, s))
}

// Material is the surface appearance of a node.
type Material struct {
	Color    string `json:"color"`    // #rrggbb
	Textured bool   `json:"textured"` // sample the glaze color map
}

// Node is a single object in the scene.
type Node struct {
	ID        NodeID       `json:"id"`
	Kind      Kind         `json:"kind"`
	Name      string       `json:"name,omitempty"`
	Mesh      *kernel.Mesh `json:"mesh,omitempty"`
	Transform Transform    `json:"transform"`
	Material  Material     `json:"material"`
}

// WorldToLocal maps a world point into the node's frame.
func (n *Node) WorldToLocal(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, n.Transform.Matrix().Inv())
}

// LocalToWorld maps a point in the node's frame into the world.
func (n *Node) LocalToWorld(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, n.Transform.Matrix())
}
