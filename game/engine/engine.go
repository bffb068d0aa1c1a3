package engine

// Response is produced by every engine operation.
type Response interface {
	// ShutdownRequired reports whether the host should shut down. It must not
	// have side effects.
	ShutdownRequired() bool
}

// Engine provides the main contract for a hosted game engine.
type Engine[A any, R Response] interface {
	// InitialHTML renders the markup of the starting view.
	InitialHTML() (string, error)

	// Execute performs a user action and returns a fresh response.
	Execute(action A) (R, error)

	// HandleEvent reacts to a host lifecycle event. Unknown events must be
	// treated as a no-op returning a default response.
	HandleEvent(event Event) (R, error)

	// InterfaceType returns the kind of host the engine was built for.
	InterfaceType() InterfaceType
}

// Factory decodes caller payloads and constructs engines of one kind.
type Factory[C any, A any, R Response] interface {
	// Name identifies the engine kind in logs.
	Name() string

	// DecodeConfig decodes a configuration payload.
	DecodeConfig(data []byte) (C, error)

	// DecodeAction decodes an action payload.
	DecodeAction(data []byte) (A, error)

	// New builds an engine bound to the given host interface type.
	New(config C, interfaceType InterfaceType) (Engine[A, R], error)
}
