package editor

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/ed2d/ecs"
)

// Transform places an entity in the world.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// NewTransform returns a transform at (x, y) with no rotation and unit scale.
func NewTransform(x, y float32) Transform {
	return Transform{
		Translation: mgl32.Vec3{x, y, 0},
		Rotation:    mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
	}
}

// WithRotation returns a copy rotated by angle radians around the z axis.
func (t Transform) WithRotation(angle float32) Transform {
	t.Rotation = mgl32.QuatRotate(angle, mgl32.Vec3{0, 0, 1})
	return t
}

// Angle2D returns the rotation around the z axis in radians.
func (t Transform) Angle2D() float32 {
	x := t.rotation().Rotate(mgl32.Vec3{1, 0, 0})
	return float32(math.Atan2(float64(x.Y()), float64(x.X())))
}

// ToLocal maps a world point into the entity's local space.
func (t Transform) ToLocal(world mgl32.Vec3) mgl32.Vec3 {
	local := t.rotation().Inverse().Rotate(world.Sub(t.Translation))
	scale := t.Scale
	for i := range 3 {
		if scale[i] != 0 {
			local[i] /= scale[i]
		}
	}
	return local
}

func (t Transform) rotation() mgl32.Quat {
	if t.Rotation.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return t.Rotation
}

// Aabb is a local-space bounding box.
type Aabb struct {
	Center      mgl32.Vec3
	HalfExtents mgl32.Vec3
}

// Sprite is a colored quad centered on the entity's translation.
type Sprite struct {
	Color color.NRGBA
	Size  mgl32.Vec2
}

// Bounds returns the sprite's local bounding box.
func (s Sprite) Bounds() Aabb {
	return Aabb{HalfExtents: mgl32.Vec3{s.Size.X() / 2, s.Size.Y() / 2, 0}}
}

// Name is a human readable label shown in the hierarchy.
type Name string

// Pickable marks entities the picking backends may hit.
type Pickable struct{}

// PickSelection is the engine-side selection flag of a pickable entity.
type PickSelection struct {
	IsSelected bool
}

// NoDeselect marks entities whose clicks never change the selection, such
// as the UI context.
type NoDeselect struct{}

// UiContext marks the entity that stands in for the editor UI when the UI
// claims the pointer.
type UiContext struct{}

// RegisterComponents registers every editor component type.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Aabb](registry)
	ecs.RegisterComponent[Sprite](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Pickable](registry)
	ecs.RegisterComponent[PickSelection](registry)
	ecs.RegisterComponent[NoDeselect](registry)
	ecs.RegisterComponent[UiContext](registry)
	ecs.RegisterComponent[EditorCamera](registry)
	ecs.RegisterComponent[PanCam](registry)
}
