// Package guard decides whether a protected command may run.
package guard

import (
	"context"

	"github.com/dmitrijs2005/agentdeck/internal/client/authstate"
)

type Outcome int

const (
	OutcomeLoading Outcome = iota
	OutcomeContent
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeContent:
		return "content"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decide maps auth state and store configuration to an outcome. Loading is
// checked first. An unconfigured deployment has no access control, so it
// gets content before the missing user is even considered.
func Decide(s authstate.State, configured bool) Outcome {
	switch {
	case s.Loading():
		return OutcomeLoading
	case !configured:
		return OutcomeContent
	case s.User == nil:
		return OutcomeRedirect
	default:
		return OutcomeContent
	}
}

// StateSource is satisfied by *authstate.Provider.
type StateSource interface {
	State() authstate.State
}

// Guard applies Decide to CLI commands.
type Guard struct {
	states     StateSource
	configured func() bool

	// OnLoading is shown instead of the command while the probe is running.
	OnLoading func(ctx context.Context)
	// OnRedirect sends the user to sign in. Nothing else is rendered.
	OnRedirect func(ctx context.Context) error
}

func New(states StateSource, configured func() bool) *Guard {
	return &Guard{states: states, configured: configured}
}

// Run executes protected when Decide allows it and reports the outcome.
func (g *Guard) Run(ctx context.Context, protected func(ctx context.Context) error) (Outcome, error) {
	outcome := Decide(g.states.State(), g.configured())
	switch outcome {
	case OutcomeLoading:
		if g.OnLoading != nil {
			g.OnLoading(ctx)
		}
		return outcome, nil
	case OutcomeRedirect:
		if g.OnRedirect != nil {
			return outcome, g.OnRedirect(ctx)
		}
		return outcome, nil
	default:
		return outcome, protected(ctx)
	}
}
