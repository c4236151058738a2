package zeromq

import (
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/wire"
)

// EnvelopeRouter accepts decoded inbound envelopes.
// processing.MessageDirector implements it.
type EnvelopeRouter interface {
	RouteMessage(env *wire.Envelope) error
}

// RouterFunc adapts a function to EnvelopeRouter.
type RouterFunc func(env *wire.Envelope) error

// RouteMessage calls the function
func (f RouterFunc) RouteMessage(env *wire.Envelope) error {
	return f(env)
}
