package dockui

import (
	"fmt"
	"image/color"
	"math"
	"reflect"
	"sync"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/ed2d/assets"
	"github.com/plus3/ed2d/ecs"
	"github.com/plus3/ed2d/editor"
)

// RenderFunc draws an editor for value, which is addressable, and reports
// whether it was changed.
type RenderFunc func(r *Registry, label string, value reflect.Value) bool

type fieldInfo struct {
	Name      string
	Index     int
	IsPointer bool
}

// Registry maps types to the widgets that edit them. Types without an entry
// are walked field by field.
type Registry struct {
	mu     sync.RWMutex
	funcs  map[reflect.Type]RenderFunc
	fields map[reflect.Type][]fieldInfo
}

// NewRegistry returns a registry with widgets for the math, color and
// editor types.
func NewRegistry() *Registry {
	r := &Registry{
		funcs:  make(map[reflect.Type]RenderFunc),
		fields: make(map[reflect.Type][]fieldInfo),
	}

	Register(r, func(label string, v *mgl32.Vec2) bool {
		return imgui.DragFloat2(label, (*[2]float32)(v))
	})
	Register(r, func(label string, v *mgl32.Vec3) bool {
		return imgui.DragFloat3(label, (*[3]float32)(v))
	})
	Register(r, func(label string, q *mgl32.Quat) bool {
		angle := quatAngle(*q)
		if !imgui.SliderAngle(label, &angle) {
			return false
		}
		*q = mgl32.QuatRotate(angle, mgl32.Vec3{0, 0, 1})
		return true
	})
	Register(r, func(label string, c *color.NRGBA) bool {
		rgba := nrgbaToFloats(*c)
		if !imgui.ColorEdit4(label, &rgba) {
			return false
		}
		*c = floatsToNRGBA(rgba)
		return true
	})
	Register(r, func(label string, id *ecs.EntityId) bool {
		imgui.Text(fmt.Sprintf("%s: %d", label, *id))
		return false
	})
	Register(r, func(label string, id *assets.AssetId) bool {
		imgui.Text(fmt.Sprintf("%s: %s", label, *id))
		return false
	})
	Register(r, func(label string, name *editor.Name) bool {
		s := string(*name)
		if !imgui.InputTextWithHint(label, "", &s, imgui.InputTextFlagsNone, nil) {
			return false
		}
		*name = editor.Name(s)
		return true
	})
	Register(r, func(label string, sel *editor.SelectedEntities) bool {
		imgui.Text(fmt.Sprintf("%s: %d selected", label, sel.Len()))
		return false
	})

	return r
}

// Register sets the widget for T, replacing any earlier one.
func Register[T any](r *Registry, fn func(label string, value *T) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[reflect.TypeFor[T]()] = func(_ *Registry, label string, value reflect.Value) bool {
		return fn(label, value.Addr().Interface().(*T))
	}
}

// RegisterFunc sets the widget for t.
func (r *Registry) RegisterFunc(t reflect.Type, fn RenderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[t] = fn
}

// Lookup returns the widget registered for t.
func (r *Registry) Lookup(t reflect.Type) (RenderFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[t]
	return fn, ok
}

// Render draws value with its registered widget or the reflective fallback.
func (r *Registry) Render(label string, value reflect.Value) bool {
	if !value.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", label))
		return false
	}
	if fn, ok := r.Lookup(value.Type()); ok && value.CanAddr() {
		return fn(r, label, value)
	}
	return r.renderReflect(label, value)
}

// RenderPtr draws the value ptr points to.
func (r *Registry) RenderPtr(label string, ptr any) bool {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		imgui.Text(fmt.Sprintf("%s: nil", label))
		return false
	}
	return r.Render(label, v.Elem())
}

func (r *Registry) renderReflect(label string, val reflect.Value) bool {
	id := "##" + label

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(label + ":")
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(id, &v) && val.CanSet() {
			val.SetInt(int64(v))
			return true
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(label + ":")
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(id, &v) && v >= 0 && val.CanSet() {
			val.SetUint(uint64(v))
			return true
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(label + ":")
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.DragFloat(id, &v) && val.CanSet() {
			val.SetFloat(float64(v))
			return true
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(label, &v) && val.CanSet() {
			val.SetBool(v)
			return true
		}

	case reflect.String:
		v := val.String()
		imgui.Text(label + ":")
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(id, "", &v, imgui.InputTextFlagsNone, nil) && val.CanSet() {
			val.SetString(v)
			return true
		}

	case reflect.Struct:
		fields := r.fieldsOf(val.Type())
		if len(fields) == 0 {
			imgui.TextDisabled(label)
			return false
		}
		changed := false
		if imgui.TreeNodeStr(label) {
			for _, f := range fields {
				fv := val.Field(f.Index)
				if f.IsPointer {
					if fv.IsNil() {
						imgui.Text(f.Name + ": nil")
						continue
					}
					fv = fv.Elem()
				}
				imgui.PushIDStr(f.Name)
				changed = r.Render(f.Name, fv) || changed
				imgui.PopID()
			}
			imgui.TreePop()
		}
		return changed

	case reflect.Ptr:
		if val.IsNil() {
			imgui.Text(label + ": nil")
			return false
		}
		return r.Render(label, val.Elem())

	case reflect.Slice, reflect.Array:
		changed := false
		if imgui.TreeNodeStr(fmt.Sprintf("%s [%d]", label, val.Len())) {
			for i := 0; i < val.Len(); i++ {
				imgui.PushIDInt(int32(i))
				changed = r.Render(fmt.Sprintf("[%d]", i), val.Index(i)) || changed
				imgui.PopID()
			}
			imgui.TreePop()
		}
		return changed

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", label, val.Len()))

	default:
		if val.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", label, val.Interface()))
		} else {
			imgui.TextDisabled(label)
		}
	}

	return false
}

// fieldsOf lists the exported fields of a struct type.
func (r *Registry) fieldsOf(t reflect.Type) []fieldInfo {
	r.mu.RLock()
	cached, ok := r.fields[t]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.fields[t]; ok {
		return cached
	}

	var fields []fieldInfo
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			fields = append(fields, fieldInfo{
				Name:      field.Name,
				Index:     i,
				IsPointer: field.Type.Kind() == reflect.Ptr,
			})
		}
	}

	r.fields[t] = fields
	return fields
}

func quatAngle(q mgl32.Quat) float32 {
	return editor.Transform{Rotation: q}.Angle2D()
}

func nrgbaToFloats(c color.NRGBA) [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

func floatsToNRGBA(f [4]float32) color.NRGBA {
	channel := func(v float32) uint8 {
		return uint8(math.Round(float64(mgl32.Clamp(v, 0, 1) * 255)))
	}
	return color.NRGBA{R: channel(f[0]), G: channel(f[1]), B: channel(f[2]), A: channel(f[3])}
}
