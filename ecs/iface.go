package ecs

import "unsafe"

// iface mirrors the runtime layout of an interface value so the
// data pointer of a stored *T can be read without reflection.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}
