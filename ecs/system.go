package ecs

// System represents a behavior that operates on entities with specific components.
// Systems can declare tagged Query fields for accessing entities, as well as custom
// state fields that persist between frames. A returned error halts the frame.
type System interface {
	Execute(frame *UpdateFrame) error
}

// SystemFunc adapts a plain function to the System interface.
type SystemFunc func(frame *UpdateFrame) error

func (f SystemFunc) Execute(frame *UpdateFrame) error {
	return f(frame)
}
