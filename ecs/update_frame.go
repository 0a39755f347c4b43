package ecs

// UpdateFrame is passed to every system during one scheduler pass.
type UpdateFrame struct {
	// DeltaTime is the frame time in seconds.
	DeltaTime float64
	// Commands are applied after the current stage.
	Commands *Commands
	Storage  *Storage
}

func newUpdateFrame(dt float64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  newCommands(),
		Storage:   storage,
	}
}
