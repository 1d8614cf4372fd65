package scene

import (
	"sprite-editor/core"
)

// Scene manages a collection of nodes and the active camera
type Scene struct {
	Root     *Node
	Camera   *Camera
	SkyColor core.Color
}

func NewScene() *Scene {
	return &Scene{
		Root:     NewNode("Root"),
		SkyColor: core.Color{R: 0.13, G: 0.14, B: 0.17, A: 1.0},
	}
}

func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

func (s *Scene) RemoveNode(node *Node) {
	s.Root.RemoveChild(node)
}

// Contains reports whether node is attached somewhere below the root.
func (s *Scene) Contains(node *Node) bool {
	return node.Ancestor(func(n *Node) bool { return n == s.Root }) != nil
}

// GetVisibleNodes returns all nodes with meshes whose whole ancestor chain
// is visible.
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node
	var walk func(*Node)
	walk = func(node *Node) {
		if !node.Visible {
			return
		}
		if node.Mesh != nil {
			visible = append(visible, node)
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(s.Root)
	return visible
}

// CountTagged returns how many nodes in the scene carry tag t.
func (s *Scene) CountTagged(t Tag) int {
	count := 0
	s.Root.Traverse(func(n *Node) {
		if n.HasTag(t) {
			count++
		}
	})
	return count
}
