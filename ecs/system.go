package ecs

// System is a unit of per-frame work. Its Query, Singleton, EventReader and
// EventWriter fields are bound by the scheduler; other fields keep state
// between frames.
type System interface {
	Execute(frame *UpdateFrame)
}
