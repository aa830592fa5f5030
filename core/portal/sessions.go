package portal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/gateway"
	"github.com/edumedsolutions/edumed/core/session"
)

var (
	ErrSessionNotFound = errors.New("portal session not found")
	ErrSessionExpired  = errors.New("portal session expired")
)

type liveSession struct {
	vm       *ViewModel
	deadline time.Time // zero: no local limit
}

// expired reports whether the local lifetime or the upstream session is over.
func (ls liveSession) expired(now time.Time) bool {
	if !ls.deadline.IsZero() && now.After(ls.deadline) {
		return true
	}
	return ls.vm.provider.Expired(now)
}

// Sessions owns the live browser sessions: one session.Provider + ViewModel pair per session ID.
// A session lives at most maxAge (the lifetime of the portal token) and never past its upstream expiry.
type Sessions struct {
	auth    session.AuthService
	store   gateway.Gateway
	locks   *KeyedMutex
	logger  core.Logger
	timeout time.Duration
	maxAge  time.Duration

	mu       sync.RWMutex
	sessions map[string]liveSession
}

func NewSessions(auth session.AuthService, store gateway.Gateway, logger core.Logger, timeout, maxAge time.Duration) *Sessions {
	return &Sessions{
		auth:     auth,
		store:    store,
		locks:    NewKeyedMutex(),
		logger:   logger,
		timeout:  timeout,
		maxAge:   maxAge,
		sessions: make(map[string]liveSession),
	}
}

// SignIn opens a new session and signs it in. The returned view-model has already loaded.
func (s *Sessions) SignIn(ctx context.Context, email, password string) (string, *ViewModel, error) {
	return s.open(ctx, func(p *session.Provider) error {
		_, err := p.SignIn(ctx, email, password)
		return err
	})
}

// SignUp opens a new session for a freshly registered account.
func (s *Sessions) SignUp(ctx context.Context, email, password string) (string, *ViewModel, error) {
	return s.open(ctx, func(p *session.Provider) error {
		_, err := p.SignUp(ctx, email, password)
		return err
	})
}

func (s *Sessions) open(_ context.Context, signIn func(*session.Provider) error) (string, *ViewModel, error) {
	provider := session.NewProvider(s.auth)
	vm := NewViewModel(provider, s.store, s.locks, s.logger, s.timeout)
	if err := signIn(provider); err != nil {
		vm.Close()
		provider.Close()
		return "", nil, err
	}

	ls := liveSession{vm: vm}
	if s.maxAge > 0 {
		ls.deadline = NowFunc().Add(s.maxAge)
	}
	sid := uuid.New().String()
	s.mu.Lock()
	s.sessions[sid] = ls
	s.mu.Unlock()
	return sid, vm, nil
}

// Get returns the view-model of sid. An expired session is torn down and reported as ErrSessionExpired.
func (s *Sessions) Get(sid string) (*ViewModel, error) {
	s.mu.RLock()
	ls, ok := s.sessions[sid]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if ls.expired(NowFunc()) {
		s.drop(sid)
		return nil, ErrSessionExpired
	}
	return ls.vm, nil
}

// SignOut signs the session out and tears it down.
func (s *Sessions) SignOut(ctx context.Context, sid string) error {
	s.mu.Lock()
	ls, ok := s.sessions[sid]
	delete(s.sessions, sid)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	err := ls.vm.SignOut(ctx)
	teardown(ls.vm)
	return err
}

// Sweep tears down every expired session and returns how many were dropped.
// The upstream tokens are dead already, so nothing is revoked.
func (s *Sessions) Sweep() int {
	now := NowFunc()
	s.mu.Lock()
	var expired []*ViewModel
	for sid, ls := range s.sessions {
		if ls.expired(now) {
			expired = append(expired, ls.vm)
			delete(s.sessions, sid)
		}
	}
	s.mu.Unlock()

	for _, vm := range expired {
		teardown(vm)
	}
	return len(expired)
}

// StartJanitor sweeps every interval until the returned func is called; stop waits for the last sweep.
func (s *Sessions) StartJanitor(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					s.logger.Info(fmt.Sprintf("%d expired portal sessions dropped", n))
				}
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-stopped
	}
}

func (s *Sessions) drop(sid string) {
	s.mu.Lock()
	ls, ok := s.sessions[sid]
	delete(s.sessions, sid)
	s.mu.Unlock()
	if ok {
		teardown(ls.vm)
	}
}

func teardown(vm *ViewModel) {
	vm.Close()
	vm.provider.Close()
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
