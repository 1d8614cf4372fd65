package editor

import (
	"fmt"

	"sprite-editor/math"
	"sprite-editor/scene"
)

// ObjectID identifies a placed object inside its Objects collection.
// The zero value means "none".
type ObjectID uint32

const (
	// hullPadding is added to each side of the sprite to form its hull.
	hullPadding float32 = 0.1
	hullDepth   float32 = 0.2
)

// PlacedObject is a textured sprite the user has placed in the scene.
type PlacedObject struct {
	ID      ObjectID
	Root    *scene.Node // selectable group, carries the transform
	Sprite  *scene.Node // textured quad
	Hull    *scene.Node // invisible picking volume
	Outline *scene.Node // present only while selected
}

// NewPlacedObject builds the node hierarchy for a sprite of the given size.
func NewPlacedObject(name string, width, height float32, material *scene.Material) *PlacedObject {
	root := scene.NewNode(name)
	root.Tags = scene.TagSelectable

	sprite := scene.NewNode(name + ".sprite")
	sprite.Mesh = scene.CreateQuad(width, height)
	sprite.Mesh.Material = material
	root.AddChild(sprite)

	hull := scene.NewNode(name + ".hull")
	hull.Mesh = scene.CreateBox(width+2*hullPadding, height+2*hullPadding, hullDepth)
	hull.Visible = false
	hull.Tags = scene.TagHull
	root.AddChild(hull)

	return &PlacedObject{Root: root, Sprite: sprite, Hull: hull}
}

// Size returns the sprite quad's width and height.
func (o *PlacedObject) Size() (width, height float32) {
	size := o.Sprite.Mesh.LocalAABB.Size()
	return size.X, size.Y
}

// SetMaterial swaps the sprite material.
func (o *PlacedObject) SetMaterial(m *scene.Material) {
	o.Sprite.Mesh.Material = m
}

// Objects owns every placed object in insertion order.
type Objects struct {
	items  []*PlacedObject
	nextID ObjectID
}

func NewObjects() *Objects {
	return &Objects{}
}

func (c *Objects) Len() int { return len(c.items) }

// At returns the object at index i.
func (c *Objects) At(i int) *PlacedObject { return c.items[i] }

// All returns a snapshot of the collection.
func (c *Objects) All() []*PlacedObject {
	out := make([]*PlacedObject, len(c.items))
	copy(out, c.items)
	return out
}

// Add appends obj, assigning it an ID if it has none.
func (c *Objects) Add(obj *PlacedObject) ObjectID {
	return c.Insert(len(c.items), obj)
}

// Insert places obj at index i (clamped to the valid range).
func (c *Objects) Insert(i int, obj *PlacedObject) ObjectID {
	if obj.ID == 0 {
		c.nextID++
		obj.ID = c.nextID
	} else if obj.ID > c.nextID {
		c.nextID = obj.ID
	}
	i = max(0, min(i, len(c.items)))
	c.items = append(c.items, nil)
	copy(c.items[i+1:], c.items[i:])
	c.items[i] = obj
	return obj.ID
}

// Remove deletes the object with id and returns its former index, or -1.
func (c *Objects) Remove(id ObjectID) int {
	i := c.IndexOf(id)
	if i < 0 {
		return -1
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return i
}

// Clear drops every object.
func (c *Objects) Clear() {
	c.items = nil
}

// Get returns the object with id, or nil.
func (c *Objects) Get(id ObjectID) *PlacedObject {
	if i := c.IndexOf(id); i >= 0 {
		return c.items[i]
	}
	return nil
}

func (c *Objects) IndexOf(id ObjectID) int {
	if id == 0 {
		return -1
	}
	for i, obj := range c.items {
		if obj.ID == id {
			return i
		}
	}
	return -1
}

// ByRoot maps a selectable root node back to its object.
func (c *Objects) ByRoot(root *scene.Node) *PlacedObject {
	for _, obj := range c.items {
		if obj.Root == root {
			return obj
		}
	}
	return nil
}

// Hulls returns the picking volumes of every object.
func (c *Objects) Hulls() []*scene.Node {
	hulls := make([]*scene.Node, 0, len(c.items))
	for _, obj := range c.items {
		hulls = append(hulls, obj.Hull)
	}
	return hulls
}

// nextName returns a display name for a new object.
func (c *Objects) nextName() string {
	return fmt.Sprintf("Sprite %d", c.nextID+1)
}

// spawnPosition staggers new objects so they do not overlap exactly.
func (c *Objects) spawnPosition() math.Vec3 {
	n := float32(len(c.items) % 8)
	return math.NewVec3(n*0.25, 0, n*0.05)
}
