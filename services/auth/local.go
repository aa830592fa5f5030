// Package authsvc is the local auth backend: accounts live in our own store and sessions
// are HS256 JWTs. It mirrors the hosted auth service for DEV/TEST and self-hosted deployments.
package authsvc

import (
	"context"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/session"
	"github.com/edumedsolutions/edumed/core/user"
)

var NowFunc = time.Now // mockable

type claims struct {
	jwt.StandardClaims
	Email string `json:"email"`
}

type LocalService struct {
	users      *user.Service
	validate   *validator.Validate
	signingKey []byte
	issuer     string
	expiration time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> exp
}

var _ session.AuthService = (*LocalService)(nil)

func NewLocalService(users *user.Service, validate *validator.Validate, conf *core.Config) *LocalService {
	return &LocalService{
		users:      users,
		validate:   validate,
		signingKey: []byte(conf.SecretKey),
		issuer:     conf.AppName,
		expiration: conf.Server.JWTExpirationDelta,
		revoked:    make(map[string]time.Time),
	}
}

func (svc *LocalService) SignIn(ctx context.Context, email, password string) (session.Session, error) {
	if err := ctx.Err(); err != nil {
		return session.Session{}, err
	}
	usr, err := svc.users.Authenticate(email, password)
	if err != nil {
		if err == user.ErrWrongPassword || err == user.ErrInactiveUser {
			return session.Session{}, session.ErrInvalidCredentials
		}
		return session.Session{}, errors.Wrap(err, "authenticating")
	}
	return svc.newSession(usr)
}

func (svc *LocalService) SignUp(ctx context.Context, email, password string) (session.Session, error) {
	if err := ctx.Err(); err != nil {
		return session.Session{}, err
	}
	nu := user.NewUser{Email: email, Password: password}
	if err := nu.Validate(svc.validate); err != nil {
		return session.Session{}, err
	}
	usr, err := svc.users.Create(nu)
	if err != nil {
		if vErr, ok := err.(*core.ValidationError); ok && vErr.Err == user.ErrEmailExists {
			return session.Session{}, session.ErrEmailTaken
		}
		return session.Session{}, errors.Wrap(err, "creating user")
	}
	return svc.newSession(usr)
}

func (svc *LocalService) SignOut(ctx context.Context, accessToken string) error {
	c, err := svc.parse(accessToken)
	if err != nil {
		return nil // nothing to revoke
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	now := NowFunc()
	for jti, exp := range svc.revoked {
		if now.After(exp) {
			delete(svc.revoked, jti)
		}
	}
	svc.revoked[c.Id] = time.Unix(c.ExpiresAt, 0)
	return nil
}

func (svc *LocalService) CurrentUser(ctx context.Context, accessToken string) (session.Identity, error) {
	if err := ctx.Err(); err != nil {
		return session.Identity{}, err
	}
	c, err := svc.parse(accessToken)
	if err != nil {
		return session.Identity{}, session.ErrNotAuthenticated
	}
	svc.mu.Lock()
	_, revoked := svc.revoked[c.Id]
	svc.mu.Unlock()
	if revoked {
		return session.Identity{}, session.ErrNotAuthenticated
	}

	usr, err := svc.users.GetByID(c.Subject)
	if err != nil {
		if err == user.ErrNotFound {
			return session.Identity{}, session.ErrNotAuthenticated
		}
		return session.Identity{}, errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return session.Identity{}, session.ErrNotAuthenticated
	}
	return session.Identity{ID: usr.ID, Email: usr.Email}, nil
}

func (svc *LocalService) newSession(usr user.User) (session.Session, error) {
	now := NowFunc()
	exp := now.Add(svc.expiration)
	c := &claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    svc.issuer,
			Subject:   usr.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: exp.Unix(),
		},
		Email: usr.Email,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(svc.signingKey)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "signing token")
	}
	return session.Session{
		Identity:    session.Identity{ID: usr.ID, Email: usr.Email},
		AccessToken: token,
		ExpiresAt:   time.Unix(exp.Unix(), 0).UTC(),
	}, nil
}

func (svc *LocalService) parse(accessToken string) (*claims, error) {
	c := new(claims)
	_, err := jwt.ParseWithClaims(accessToken, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return svc.signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
