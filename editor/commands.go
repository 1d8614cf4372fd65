package editor

import (
	"sprite-editor/core"
	"sprite-editor/scene"
)

// Command represents an undoable editor action
type Command interface {
	Execute()
	Undo()
	Description() string
}

// History manages undo/redo stacks
type History struct {
	undoStack []Command
	redoStack []Command
	maxDepth  int
}

// NewHistory creates a new history with the given max undo depth
func NewHistory(maxDepth int) *History {
	return &History{
		undoStack: make([]Command, 0, maxDepth),
		redoStack: make([]Command, 0, maxDepth),
		maxDepth:  maxDepth,
	}
}

// Do executes a command and pushes it to the undo stack
func (h *History) Do(cmd Command) {
	cmd.Execute()
	h.Push(cmd)
}

// Push records a command whose effect has already been applied, such as
// a finished gizmo drag.
func (h *History) Push(cmd Command) {
	h.undoStack = append(h.undoStack, cmd)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[1:]
	}
	// Clear redo stack on new action
	h.redoStack = h.redoStack[:0]
}

// Undo reverts the last action and returns it, or nil if there is none.
func (h *History) Undo() Command {
	if len(h.undoStack) == 0 {
		return nil
	}
	cmd := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	cmd.Undo()
	h.redoStack = append(h.redoStack, cmd)
	return cmd
}

// Redo reapplies the last undone action and returns it, or nil.
func (h *History) Redo() Command {
	if len(h.redoStack) == 0 {
		return nil
	}
	cmd := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	return cmd
}

// CanUndo returns whether there are actions to undo
func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

// Clear wipes all undo/redo history
func (h *History) Clear() {
	h.undoStack = h.undoStack[:0]
	h.redoStack = h.redoStack[:0]
}

// --- Concrete Commands ---

// TransformCommand records a transform change on a node
type TransformCommand struct {
	Node         *scene.Node
	OldTransform core.Transform
	NewTransform core.Transform
	desc         string
}

func NewTransformCommand(node *scene.Node, oldTransform core.Transform, desc string) *TransformCommand {
	return &TransformCommand{
		Node:         node,
		OldTransform: oldTransform,
		NewTransform: node.Transform,
		desc:         desc,
	}
}

func (c *TransformCommand) Execute()            { c.Node.SetTransform(c.NewTransform) }
func (c *TransformCommand) Undo()               { c.Node.SetTransform(c.OldTransform) }
func (c *TransformCommand) Description() string { return c.desc }

// AddObjectCommand records placing an object in the scene
type AddObjectCommand struct {
	Scene   *scene.Scene
	Objects *Objects
	Object  *PlacedObject
	index   int
}

func NewAddObjectCommand(s *scene.Scene, objects *Objects, obj *PlacedObject) *AddObjectCommand {
	return &AddObjectCommand{Scene: s, Objects: objects, Object: obj, index: objects.Len()}
}

func (c *AddObjectCommand) Execute() {
	c.Objects.Insert(c.index, c.Object)
	c.Scene.AddNode(c.Object.Root)
}

func (c *AddObjectCommand) Undo() {
	c.Objects.Remove(c.Object.ID)
	c.Scene.RemoveNode(c.Object.Root)
}

func (c *AddObjectCommand) Description() string { return "Add " + c.Object.Root.Name }

// DeleteObjectCommand records removing an object from the scene and the
// collection. Undo puts it back at its old index.
type DeleteObjectCommand struct {
	Scene   *scene.Scene
	Objects *Objects
	Object  *PlacedObject
	index   int
}

func NewDeleteObjectCommand(s *scene.Scene, objects *Objects, obj *PlacedObject) *DeleteObjectCommand {
	return &DeleteObjectCommand{Scene: s, Objects: objects, Object: obj, index: -1}
}

func (c *DeleteObjectCommand) Execute() {
	c.index = c.Objects.Remove(c.Object.ID)
	c.Scene.RemoveNode(c.Object.Root)
}

func (c *DeleteObjectCommand) Undo() {
	c.Objects.Insert(c.index, c.Object)
	c.Scene.AddNode(c.Object.Root)
}

func (c *DeleteObjectCommand) Description() string { return "Delete " + c.Object.Root.Name }
