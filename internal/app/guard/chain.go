package guard

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Chain executes guards in sequence.
type Chain struct {
	guards []Guard
}

// NewChain creates a new guard chain.
func NewChain() *Chain {
	return &Chain{
		guards: make([]Guard, 0),
	}
}

// NewDefaultChain builds a chain from the named registered guards, in order.
func NewDefaultChain(names ...string) (*Chain, error) {
	c := NewChain()
	for _, name := range names {
		factory, ok := registry[name]
		if !ok {
			return nil, errors.Newf("unknown guard: %s", name)
		}
		c.Add(factory())
	}
	return c, nil
}

// DefaultOrder is the evaluation order used by the session.
var DefaultOrder = []string{
	ConnectedName,
	AuthenticatedName,
	TrackSelectedName,
	CatalogNotTrivialName,
}

// Add adds a guard to the chain.
func (c *Chain) Add(g Guard) {
	c.guards = append(c.guards, g)
}

// Execute runs all guards that apply to the command.
// Returns immediately if any guard rejects the request.
func (c *Chain) Execute(req Request, s Subject) Result {
	for _, g := range c.guards {
		if !g.AppliesTo(req.Command) {
			continue
		}

		result := g.Check(req, s)
		if !result.Accepted {
			zlog.Debug().Msgf("guard: rejected: command=%s guard=%s code=%s", req.Command, g.Name(), result.Code)
			return result
		}
	}
	return Accept()
}

// Guards returns all guards in the chain.
func (c *Chain) Guards() []Guard {
	return c.guards
}
