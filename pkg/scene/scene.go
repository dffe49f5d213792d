// Package scene is the render-side object graph the pottery core talks to.
// The core never owns a renderer: it inserts, replaces and removes meshes
// through the Scene interface and asks it for ray picks. Graph is the
// in-memory implementation; it picks against the meshes it holds and
// notifies an Observer so a real renderer (the webview) can mirror it.
package scene

import "github.com/chazu/kiln/pkg/kernel"

// Scene is the render collaborator seen from the core.
type Scene interface {
	// Insert adds n, replacing any node with the same ID.
	Insert(n *Node)
	// Remove drops a node and releases its mesh. It reports whether the
	// node existed.
	Remove(id NodeID) bool
	// Replace swaps a node's mesh wholesale, releasing the old one.
	Replace(id NodeID, m *kernel.Mesh) bool
	// SetTransform moves a node.
	SetTransform(id NodeID, t Transform) bool
	// SetMaterial changes a node's surface appearance.
	SetMaterial(id NodeID, m Material) bool
	// Get returns the node with the given ID, or nil.
	Get(id NodeID) *Node
	// Pick casts a ray through screen pixel (x, y) against node target.
	Pick(x, y float64, target NodeID) (Hit, bool)
	// Resize changes the output size.
	Resize(width, height float64)
	// Viewport returns the output size.
	Viewport() Viewport
}

// Op is the kind of change an Observer is told about.
type Op int

const (
	OpInsert Op = iota
	OpRemove
	OpReplace
	OpTransform
	OpMaterial
	OpResize
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpReplace:
		return "replace"
	case OpTransform:
		return "transform"
	case OpMaterial:
		return "material"
	case OpResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Change describes one mutation of the graph. Node is nil for OpResize
// and holds only the ID for OpRemove.
type Change struct {
	Op   Op
	Node *Node
}

// Observer receives changes synchronously, in order.
type Observer interface {
	SceneChanged(c Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c Change)

// SceneChanged calls f(c).
func (f ObserverFunc) SceneChanged(c Change) { f(c) }

// Compile-time interface check.
var _ Scene = (*Graph)(nil)

// Graph is an in-memory Scene. It is not safe for concurrent use.
type Graph struct {
	Nodes  map[NodeID]*Node
	Camera Camera

	order     []NodeID
	viewport  Viewport
	observers []Observer
	released  int
}

// New creates an empty graph with the default camera and viewport size.
func New(width, height float64) *Graph {
	return &Graph{
		Nodes:    make(map[NodeID]*Node),
		Camera:   DefaultCamera(),
		viewport: Viewport{Width: width, Height: height},
	}
}

// Observe registers o for change notifications.
func (g *Graph) Observe(o Observer) {
	g.observers = append(g.observers, o)
}

func (g *Graph) notify(c Change) {
	for _, o := range g.observers {
		o.SceneChanged(c)
	}
}

// Insert adds n to the graph.
func (g *Graph) Insert(n *Node) {
	if old, ok := g.Nodes[n.ID]; ok {
		g.release(old.Mesh)
	} else {
		g.order = append(g.order, n.ID)
	}
	if n.Transform.Scale == 0 {
		n.Transform.Scale = 1
	}
	g.Nodes[n.ID] = n
	g.notify(Change{Op: OpInsert, Node: n})
}

// Remove drops the node with the given ID.
func (g *Graph) Remove(id NodeID) bool {
	n, ok := g.Nodes[id]
	if !ok {
		return false
	}
	delete(g.Nodes, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.release(n.Mesh)
	g.notify(Change{Op: OpRemove, Node: &Node{ID: id, Kind: n.Kind}})
	return true
}

// Replace swaps the mesh of the node with the given ID.
func (g *Graph) Replace(id NodeID, m *kernel.Mesh) bool {
	n, ok := g.Nodes[id]
	if !ok {
		return false
	}
	g.release(n.Mesh)
	n.Mesh = m
	g.notify(Change{Op: OpReplace, Node: n})
	return true
}

// SetTransform moves the node with the given ID.
func (g *Graph) SetTransform(id NodeID, t Transform) bool {
	n, ok := g.Nodes[id]
	if !ok {
		return false
	}
	if t.Scale == 0 {
		t.Scale = 1
	}
	n.Transform = t
	g.notify(Change{Op: OpTransform, Node: n})
	return true
}

// SetMaterial restyles the node with the given ID.
func (g *Graph) SetMaterial(id NodeID, m Material) bool {
	n, ok := g.Nodes[id]
	if !ok {
		return false
	}
	n.Material = m
	g.notify(Change{Op: OpMaterial, Node: n})
	return true
}

// Get returns the node with the given ID, or nil.
func (g *Graph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Ordered returns all nodes in insertion order.
func (g *Graph) Ordered() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.Nodes[id])
	}
	return nodes
}

// NodeCount returns the total number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// Released counts meshes dropped by Replace, Remove or re-Insert. A
// renderer mirroring the graph frees the GPU buffers for each of them.
func (g *Graph) Released() int {
	return g.released
}

// Pick casts a ray through screen pixel (x, y) against target.
func (g *Graph) Pick(x, y float64, target NodeID) (Hit, bool) {
	n, ok := g.Nodes[target]
	if !ok {
		return Hit{}, false
	}
	ray, ok := g.Camera.Ray(g.viewport, x, y)
	if !ok {
		return Hit{}, false
	}
	return intersect(n, ray)
}

// Resize changes the viewport; the camera aspect follows.
func (g *Graph) Resize(width, height float64) {
	g.viewport = Viewport{Width: width, Height: height}
	g.notify(Change{Op: OpResize})
}

// Viewport returns the output size.
func (g *Graph) Viewport() Viewport {
	return g.viewport
}

func (g *Graph) release(m *kernel.Mesh) {
	if m != nil {
		g.released++
	}
}
