package authstate

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/agentdeck/internal/logging"
	"github.com/dmitrijs2005/agentdeck/internal/models"
)

// Sessions is the part of the session service the provider drives.
type Sessions interface {
	CurrentUser(ctx context.Context) *models.User
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Register(ctx context.Context, email, password string, fullName *string) (*models.Session, error)
	Logout(ctx context.Context) error
}

type Provider struct {
	sessions Sessions
	logger   logging.Logger

	mu     sync.Mutex
	state  State
	subs   map[int]chan State
	nextID int

	probed chan struct{}
}

// NewProvider starts the identity probe in the background and returns
// immediately in the loading state. The probe uses ctx, so cancelling it
// resolves the provider to anonymous.
func NewProvider(ctx context.Context, sessions Sessions, logger logging.Logger) *Provider {
	p := &Provider{
		sessions: sessions,
		logger:   logger.With("component", "authstate"),
		state:    State{Status: StatusLoading},
		subs:     make(map[int]chan State),
		probed:   make(chan struct{}),
	}
	go p.probe(ctx)
	return p
}

func (p *Provider) probe(ctx context.Context) {
	defer close(p.probed)
	user := p.sessions.CurrentUser(ctx)
	if !p.apply(eventProbed, user) {
		p.logger.Debug(ctx, "probe result discarded, state already settled")
	}
}

// State returns the current snapshot.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Wait blocks until the initial probe has resolved or ctx is done.
func (p *Provider) Wait(ctx context.Context) error {
	select {
	case <-p.probed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel that receives the current state right away and
// every later state. Only the newest undelivered state is kept, so a slow
// reader skips intermediate values. The returned func unsubscribes and
// closes the channel; calling it twice is safe.
func (p *Provider) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	ch <- p.state
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs, id)
			close(ch)
		})
	}
}

// Login signs in through the session service. Errors are returned as is
// and leave the state untouched.
func (p *Provider) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if err := p.Wait(ctx); err != nil {
		return nil, err
	}
	sess, err := p.sessions.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	p.apply(eventSignedIn, sess.User)
	return sess, nil
}

func (p *Provider) Register(ctx context.Context, email, password string, fullName *string) (*models.Session, error) {
	if err := p.Wait(ctx); err != nil {
		return nil, err
	}
	sess, err := p.sessions.Register(ctx, email, password, fullName)
	if err != nil {
		return nil, err
	}
	p.apply(eventSignedIn, sess.User)
	return sess, nil
}

// SignOut moves to anonymous at once. A failure to clear the durable token
// is logged; the in-memory session is gone either way.
func (p *Provider) SignOut(ctx context.Context) {
	if err := p.sessions.Logout(ctx); err != nil {
		p.logger.Error(ctx, "logout failed", "error", err)
	}
	p.apply(eventSignedOut, nil)
}

// Identity returns the signed-in user's id.
func (p *Provider) Identity(ctx context.Context) (string, bool) {
	s := p.State()
	if s.Status != StatusAuthenticated || s.User == nil {
		return "", false
	}
	return s.User.ID, true
}

func (p *Provider) apply(ev event, user *models.User) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, changed := reduce(p.state, ev, user)
	if !changed {
		return false
	}
	p.state = next
	for _, ch := range p.subs {
		publish(ch, next)
	}
	return true
}

// publish replaces whatever is buffered in ch with s. Callers hold p.mu,
// which makes the provider the only sender.
func publish(ch chan State, s State) {
	select {
	case <-ch:
	default:
	}
	ch <- s
}
