package bind

import "github.com/zoobzio/capitan"

// Instance lifecycle signals.
var (
	// InstanceMounted is emitted after an instance's subscriptions are registered.
	InstanceMounted = capitan.NewSignal(
		"statebind.instance.mounted",
		"Component instance mounted",
	)

	// InstanceDestroyed is emitted after an instance's subscriptions are released.
	InstanceDestroyed = capitan.NewSignal(
		"statebind.instance.destroyed",
		"Component instance destroyed",
	)
)

// Propagation signals.
var (
	// ActionFlushed is emitted when an action completes and its changes are flushed.
	ActionFlushed = capitan.NewSignal(
		"statebind.action.flushed",
		"Action changes flushed",
	)

	// RenderForced is emitted whenever the binder forces a render.
	RenderForced = capitan.NewSignal(
		"statebind.render.forced",
		"Render forced on instance",
	)

	// LoadableSettled is emitted when a watched loadable settles.
	LoadableSettled = capitan.NewSignal(
		"statebind.loadable.settled",
		"Loadable value settled",
	)
)
