package editor

import (
	"log/slog"

	"sprite-editor/core"
	"sprite-editor/math"
	"sprite-editor/scene"
)

const (
	// OutlineOffset lifts the outline off the sprite plane towards the
	// camera so it does not z-fight with the quad.
	OutlineOffset float32 = 0.002
	// outlineAngle is the crease angle in degrees above which an edge
	// between two faces is outlined.
	outlineAngle float32 = 1
)

// Selection tracks the single selected object and the remembered gizmo
// mode. It holds an ObjectID, never a pointer, so a removed object cannot
// linger as a selection.
type Selection struct {
	OutlineColor core.Color

	scene   *scene.Scene
	objects *Objects
	gizmo   Gizmo
	logger  *slog.Logger

	selected ObjectID
	mode     GizmoMode
}

// NewSelection creates an idle selection over objects.
func NewSelection(s *scene.Scene, objects *Objects, gizmo Gizmo, logger *slog.Logger) *Selection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selection{
		OutlineColor: core.Color{R: 1, G: 0.8, B: 0.1, A: 1},
		scene:        s,
		objects:      objects,
		gizmo:        gizmo,
		logger:       logger,
		mode:         GizmoTranslate,
	}
}

// Selected returns the selected object's ID, or 0 when idle.
func (s *Selection) Selected() ObjectID { return s.selected }

// Object returns the selected object, or nil when idle.
func (s *Selection) Object() *PlacedObject { return s.objects.Get(s.selected) }

func (s *Selection) HasSelection() bool { return s.selected != 0 }

// Mode returns the remembered gizmo mode.
func (s *Selection) Mode() GizmoMode { return s.mode }

// PickHits selects the object owning the nearest hit. hits must be ordered
// front to back. Hits that do not belong to a placed object are skipped;
// if none does, the selection is cleared. Reports whether an object is
// selected afterwards.
func (s *Selection) PickHits(hits []scene.HitResult) bool {
	for _, hit := range hits {
		root := hit.Node.Ancestor(func(n *scene.Node) bool { return n.HasTag(scene.TagSelectable) })
		if root == nil {
			continue
		}
		obj := s.objects.ByRoot(root)
		if obj == nil {
			continue
		}
		if obj.ID == s.selected {
			return true
		}
		return s.Select(obj.ID)
	}
	s.Deselect()
	return false
}

// Select makes id the selection, replacing any previous outline. Unknown
// IDs leave the selection unchanged and return false.
func (s *Selection) Select(id ObjectID) bool {
	obj := s.objects.Get(id)
	if obj == nil {
		return false
	}
	s.leave()
	s.enter(obj)
	return true
}

// CycleNext selects the object after the current one, wrapping around.
// When idle it selects the first object.
func (s *Selection) CycleNext() {
	n := s.objects.Len()
	if n == 0 {
		return
	}
	next := 0
	if i := s.objects.IndexOf(s.selected); i >= 0 {
		next = (i + 1) % n
	}
	s.Select(s.objects.At(next).ID)
}

// Deselect returns to idle. It is a no-op when nothing is selected.
func (s *Selection) Deselect() {
	if s.selected == 0 {
		return
	}
	s.leave()
}

// CycleMode advances Translate, Rotate, Scale. Ignored while idle.
func (s *Selection) CycleMode() {
	if s.selected == 0 {
		return
	}
	s.mode = s.mode.Next()
	s.gizmo.SetMode(s.mode)
}

// SetMode remembers mode and applies it to the gizmo if an object is
// selected.
func (s *Selection) SetMode(mode GizmoMode) {
	s.mode = mode
	if s.selected != 0 {
		s.gizmo.SetMode(mode)
	}
}

func (s *Selection) enter(obj *PlacedObject) {
	s.selected = obj.ID
	s.gizmo.Attach(obj.Root)
	s.gizmo.SetMode(s.mode)

	outline := scene.NewNode(obj.Root.Name + ".outline")
	outline.Mesh = scene.CreateEdges(obj.Sprite.Mesh, outlineAngle, s.OutlineColor)
	outline.Tags = scene.TagOutline
	outline.SetPosition(math.NewVec3(0, 0, OutlineOffset))
	obj.Sprite.AddChild(outline)
	obj.Outline = outline

	s.logger.Debug("selected", "id", obj.ID, "name", obj.Root.Name)
}

// FaceCamera keeps the outline on the side of the sprite facing eye.
func (s *Selection) FaceCamera(eye math.Vec3) {
	obj := s.Object()
	if obj == nil || obj.Outline == nil {
		return
	}
	local := obj.Sprite.GetWorldMatrix().Inverse().MulVec3(eye)
	z := OutlineOffset
	if local.Z < 0 {
		z = -OutlineOffset
	}
	if obj.Outline.Transform.Position.Z != z {
		obj.Outline.SetPosition(math.NewVec3(0, 0, z))
	}
}

func (s *Selection) leave() {
	if obj := s.objects.Get(s.selected); obj != nil && obj.Outline != nil {
		if obj.Outline.Parent != nil {
			obj.Outline.Parent.RemoveChild(obj.Outline)
		}
		obj.Outline = nil
	}
	if s.selected != 0 {
		s.logger.Debug("deselected", "id", s.selected)
	}
	s.gizmo.Detach()
	s.selected = 0
}
