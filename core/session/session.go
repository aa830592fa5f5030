// Package session holds the identity of the signed-in student.
//
// A Provider is an explicit capability: it is created when a browser session starts,
// handed to whoever needs the current identity, and closed on sign-out. Subscribers are
// notified every time the identity changes.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// errors
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrNotAuthenticated   = errors.New("user not authenticated")
	ErrProviderClosed     = errors.New("session provider closed")
	ErrConfirmationSent   = errors.New("check your email to confirm your account")
)

// Identity is the authenticated subject as reported by the auth service.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a successful sign-in.
type Session struct {
	Identity
	AccessToken string
	ExpiresAt   time.Time
}

// AuthService is the external auth collaborator.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, accessToken string) (Identity, error)
}

// Listener is notified after every identity change; id is nil once signed out.
type Listener func(ctx context.Context, id *Identity)

type Provider struct {
	auth AuthService

	mu        sync.RWMutex
	current   *Session
	listeners map[int]Listener
	nextID    int
	closed    bool
}

func NewProvider(auth AuthService) *Provider {
	return &Provider{
		auth:      auth,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers l and returns a func removing it.
func (p *Provider) Subscribe(l Listener) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (Identity, error) {
	if p.isClosed() {
		return Identity{}, ErrProviderClosed
	}
	sess, err := p.auth.SignIn(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}
	p.set(ctx, &sess)
	return sess.Identity, nil
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (Identity, error) {
	if p.isClosed() {
		return Identity{}, ErrProviderClosed
	}
	sess, err := p.auth.SignUp(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}
	p.set(ctx, &sess)
	return sess.Identity, nil
}

// SignOut revokes the session upstream and clears the identity.
// The local identity is cleared even when the upstream call fails.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.RLock()
	sess := p.current
	p.mu.RUnlock()
	if sess == nil {
		return nil
	}

	err := p.auth.SignOut(ctx, sess.AccessToken)
	p.set(ctx, nil)
	return err
}

// CurrentUser returns the identity; ok is false when signed out.
func (p *Provider) CurrentUser() (id Identity, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return Identity{}, false
	}
	return p.current.Identity, true
}

// AccessToken is the upstream token of the current session ("" when signed out).
func (p *Provider) AccessToken() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return ""
	}
	return p.current.AccessToken
}

// Expired reports whether the upstream session is over at now. A signed-out provider is expired;
// a session without an expiry never is.
func (p *Provider) Expired(now time.Time) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return true
	}
	return !p.current.ExpiresAt.IsZero() && !now.Before(p.current.ExpiresAt)
}

// Refresh re-validates the current session against the auth service.
// A rejected token signs the provider out.
func (p *Provider) Refresh(ctx context.Context) (Identity, error) {
	token := p.AccessToken()
	if token == "" {
		return Identity{}, ErrNotAuthenticated
	}
	id, err := p.auth.CurrentUser(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			p.set(ctx, nil)
		}
		return Identity{}, err
	}
	return id, nil
}

// Close tears the provider down: it forgets the session and drops every listener.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.current = nil
	p.listeners = make(map[int]Listener)
}

func (p *Provider) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

func (p *Provider) set(ctx context.Context, sess *Session) {
	p.mu.Lock()
	p.current = sess
	listeners := make([]Listener, 0, len(p.listeners))
	for i := 0; i < p.nextID; i++ {
		if l, ok := p.listeners[i]; ok {
			listeners = append(listeners, l)
		}
	}
	p.mu.Unlock()

	var id *Identity
	if sess != nil {
		ident := sess.Identity
		id = &ident
	}
	for _, l := range listeners {
		l(ctx, id)
	}
}
