// Package portal tracks a signed-in student's applications.
package portal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/gateway"
	"github.com/edumedsolutions/edumed/core/session"
)

// State of the portal screen.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateLoading         State = "loading"
	StateEmpty           State = "empty"
	StatePopulated       State = "populated"
	StateError           State = "error"
)

const (
	msgLoadFailed   = "Failed to load your applications. Please try again."
	msgCreateFailed = "Failed to create application"
)

var NowFunc = time.Now // mockable

// Snapshot is a consistent copy of the view-model state.
type Snapshot struct {
	State        State                 `json:"state"`
	Identity     *session.Identity     `json:"identity,omitempty"`
	Applications []gateway.Application `json:"applications"`
	Error        string                `json:"error,omitempty"`
}

type ViewModel struct {
	provider *session.Provider
	store    gateway.Gateway
	locks    *KeyedMutex
	logger   core.Logger
	timeout  time.Duration

	mu    sync.RWMutex
	state State
	apps  []gateway.Application
	err   string

	unsubscribe func()
}

// NewViewModel binds a view-model to its session provider: it loads as soon as an identity
// becomes available and drops back to StateUnauthenticated when it goes away.
// locks is shared by every view-model of the process so profile creation is serialised per identity.
func NewViewModel(provider *session.Provider, store gateway.Gateway, locks *KeyedMutex, logger core.Logger, timeout time.Duration) *ViewModel {
	vm := &ViewModel{
		provider: provider,
		store:    store,
		locks:    locks,
		logger:   logger,
		timeout:  timeout,
		state:    StateUnauthenticated,
	}
	vm.unsubscribe = provider.Subscribe(vm.onIdentityChange)
	if id, ok := provider.CurrentUser(); ok {
		_ = vm.LoadApplications(context.Background(), id.ID)
	}
	return vm
}

func (vm *ViewModel) onIdentityChange(ctx context.Context, id *session.Identity) {
	if id == nil {
		vm.mu.Lock()
		vm.state = StateUnauthenticated
		vm.apps = nil
		vm.err = ""
		vm.mu.Unlock()
		return
	}
	_ = vm.LoadApplications(ctx, id.ID)
}

// Snapshot returns the current state.
func (vm *ViewModel) Snapshot() Snapshot {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	snap := Snapshot{
		State:        vm.state,
		Applications: make([]gateway.Application, len(vm.apps)),
		Error:        vm.err,
	}
	copy(snap.Applications, vm.apps)
	if id, ok := vm.provider.CurrentUser(); ok {
		snap.Identity = &id
	}
	return snap
}

// LoadApplications fetches the student's applications. On failure the state becomes StateError
// and previously loaded applications are kept.
func (vm *ViewModel) LoadApplications(ctx context.Context, studentID string) error {
	vm.mu.Lock()
	vm.state = StateLoading
	vm.mu.Unlock()

	ctx, cancel := vm.withTimeout(ctx)
	defer cancel()

	apps, err := vm.store.QueryApplications(ctx, studentID)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if err != nil {
		vm.logger.Error(fmt.Sprintf("fetching applications: %v", err), errors.WithStack(err), vm.identity())
		vm.state = StateError
		vm.err = msgLoadFailed
		return errors.Wrap(err, "querying applications")
	}
	vm.apps = apps
	vm.err = ""
	if len(apps) == 0 {
		vm.state = StateEmpty
	} else {
		vm.state = StatePopulated
	}
	return nil
}

// Refresh reloads the applications of the signed-in student (the retry path out of StateError).
func (vm *ViewModel) Refresh(ctx context.Context) error {
	id, ok := vm.provider.CurrentUser()
	if !ok {
		return session.ErrNotAuthenticated
	}
	return vm.LoadApplications(ctx, id.ID)
}

// EnsureProfile returns the student's profile, creating it on first use with the local part
// of emailHint as first name. Calls for the same identity are serialised; the store insert
// is insert-if-absent as well, so concurrent processes cannot create a second row either.
func (vm *ViewModel) EnsureProfile(ctx context.Context, studentID, emailHint string) (gateway.Profile, error) {
	unlock := vm.locks.Lock(studentID)
	defer unlock()

	ctx, cancel := vm.withTimeout(ctx)
	defer cancel()

	prof, err := vm.store.GetProfile(ctx, studentID)
	if err == nil {
		return prof, nil
	}
	if errors.Cause(err) != gateway.ErrNotFound {
		return gateway.Profile{}, errors.Wrap(err, "querying profile")
	}

	prof = gateway.Profile{
		ID:        studentID,
		FirstName: emailLocalPart(emailHint),
		LastName:  "",
		Email:     emailHint,
		CreatedAt: NowFunc().UTC(),
	}
	created, err := vm.store.CreateProfileIfAbsent(ctx, prof)
	if err != nil {
		return gateway.Profile{}, errors.Wrap(err, "creating profile")
	}
	if created {
		return prof, nil
	}
	// another instance inserted it first
	stored, err := vm.store.GetProfile(ctx, studentID)
	if err != nil {
		return gateway.Profile{}, errors.Wrap(err, "querying profile")
	}
	return stored, nil
}

// CreateApplication ensures the profile, inserts a pending application and reloads the list.
func (vm *ViewModel) CreateApplication(ctx context.Context) error {
	id, ok := vm.provider.CurrentUser()
	if !ok {
		return session.ErrNotAuthenticated
	}

	vm.mu.Lock()
	vm.err = ""
	vm.mu.Unlock()

	if _, err := vm.EnsureProfile(ctx, id.ID, id.Email); err != nil {
		return vm.failCreate(err)
	}

	tctx, cancel := vm.withTimeout(ctx)
	_, err := vm.store.CreateApplication(tctx, gateway.NewApplication{
		StudentID: id.ID,
		Status:    gateway.ApplicationPending,
		CreatedAt: NowFunc().UTC(),
	})
	cancel()
	if err != nil {
		return vm.failCreate(errors.Wrap(err, "inserting application"))
	}

	return vm.LoadApplications(ctx, id.ID)
}

// SignOut signs the student out; the provider notification resets the state.
func (vm *ViewModel) SignOut(ctx context.Context) error {
	return vm.provider.SignOut(ctx)
}

// Close detaches the view-model from its provider.
func (vm *ViewModel) Close() {
	if vm.unsubscribe != nil {
		vm.unsubscribe()
	}
}

func (vm *ViewModel) failCreate(err error) error {
	vm.logger.Error(fmt.Sprintf("creating application: %v", err), err, vm.identity())

	msg := msgCreateFailed
	if rErr, ok := errors.Cause(err).(*gateway.RemoteError); ok && rErr.Message != "" {
		msg = rErr.Message
	}
	vm.mu.Lock()
	vm.err = msg
	vm.mu.Unlock()
	return err
}

func (vm *ViewModel) identity() session.Identity {
	id, _ := vm.provider.CurrentUser()
	return id
}

func (vm *ViewModel) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = gateway.WithAccessToken(ctx, vm.provider.AccessToken())
	if vm.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, vm.timeout)
}

func emailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
