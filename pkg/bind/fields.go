package bind

import "github.com/zoobzio/capitan"

// Field keys for binder events.
var (
	// KeyComponent is the component name given to Connect.
	KeyComponent = capitan.NewStringKey("component")

	// KeyBinding is the binding name.
	KeyBinding = capitan.NewStringKey("binding")

	// KeyAction is the action name.
	KeyAction = capitan.NewStringKey("action")

	// KeyReason is the render reason.
	KeyReason = capitan.NewStringKey("reason")

	// KeyPhase is the settled loadable phase.
	KeyPhase = capitan.NewStringKey("phase")

	// KeyError is the error message, if any.
	KeyError = capitan.NewStringKey("error")

	// KeyChanges is the number of props written.
	KeyChanges = capitan.NewIntKey("changes")

	// KeyDuration is the action duration.
	KeyDuration = capitan.NewDurationKey("duration")
)
