package boundary

import (
	"time"

	"github.com/wricardo/wumpus/game/engine"
	"github.com/wricardo/wumpus/game/handle"
)

// Service is the engine-agnostic view of a Boundary used by Go hosts.
// Every method that returns text copies it under the handle's lock.
type Service interface {
	InterfaceType() engine.InterfaceType
	Create(config []byte) (handle.Handle, error)
	Destroy(h handle.Handle) error
	Execute(h handle.Handle, action []byte) error
	HandleEvent(h handle.Handle, event []byte) error
	InitialHTMLText(h handle.Handle) (string, error)
	LastResponseText(h handle.Handle) (string, error)
	LastStringText(h handle.Handle) (string, error)
	LastErrorText(h handle.Handle) (string, error)
	IsShutdownRequired(h handle.Handle) (bool, error)
	List() []handle.Info
	Count() int
	Sweep(maxAge time.Duration) int
}
