package user

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/edumedsolutions/edumed/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound      = errors.New("user not found")
	ErrEmailExists   = errors.New("a user with this email already exists")
	ErrWrongPassword = errors.New("invalid login credentials")
	ErrInactiveUser  = errors.New("user is not active")
)

type (
	Repository interface {
		CreateUser(user User) (User, error) // fails with ErrEmailExists on a duplicate email
		GetUserByID(id string) (User, error)
		GetUserByEmail(email string) (User, error)
		UpdateLastLogin(id string, at time.Time) error
		SetPassword(id string, hash []byte) error // also reactivates the user
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new active account. nu is expected to be validated.
func (svc *Service) Create(nu NewUser) (User, error) {
	usr := User{
		ID:        uuid.New().String(),
		Email:     core.CleanString(nu.Email, true /* lower */),
		IsActive:  true,
		CreatedAt: NowFunc().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(usr)
	if err == ErrEmailExists {
		return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
	}
	return usr, err
}

// Authenticate checks the credentials and records the login.
func (svc *Service) Authenticate(email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrWrongPassword
		}
		return User{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrWrongPassword
	}
	if !usr.IsActive {
		return User{}, ErrInactiveUser
	}

	usr.LastLogin = NowFunc().UTC()
	if err = svc.repo.UpdateLastLogin(usr.ID, usr.LastLogin); err != nil {
		return User{}, err
	}
	return usr, nil
}

// SetPassword resets the password of the user registered with email.
func (svc *Service) SetPassword(email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	if err = svc.repo.SetPassword(usr.ID, usr.PasswordHash); err != nil {
		return User{}, err
	}
	usr.IsActive = true
	return usr, nil
}

func (svc *Service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}
