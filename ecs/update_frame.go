package ecs

// UpdateFrame is handed to every system during one scheduler pass.
type UpdateFrame struct {
	// DeltaTime is the elapsed time since the previous frame in seconds.
	DeltaTime float64
	// Index counts frames from zero.
	Index    uint64
	Commands *Commands
	Storage  *Storage
}

func newUpdateFrame(dt float64, index uint64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Index:     index,
		Commands:  newCommands(),
		Storage:   storage,
	}
}
