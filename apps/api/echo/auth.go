package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/portal"
	"github.com/edumedsolutions/edumed/core/session"
)

const (
	contextTokenKey  = "userToken"
	contextPortalKey = "portal"
)

// Claims represents the authorization claims transmitted via a JWT.
// A token is bound to one portal session (SessionID).
type Claims struct {
	jwt.StandardClaims
	Email     string `json:"email,omitempty"`
	SessionID string `json:"sid"`
}

type jwtIssuer struct {
	config middleware.JWTConfig
	issuer string
	ttl    time.Duration
}

func newJWTIssuer(conf *core.Config) *jwtIssuer {
	return &jwtIssuer{
		config: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
		},
		issuer: conf.AppName,
		ttl:    conf.Server.JWTExpirationDelta,
	}
}

func (iss *jwtIssuer) claims(sid string, id session.Identity) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    iss.issuer,
			Subject:   id.ID,
			Audience:  "Portal",
			ExpiresAt: now.Add(iss.ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email:     id.Email,
		SessionID: sid,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func (iss *jwtIssuer) GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(iss.config.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(iss.config.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// portalSessionMiddleware resolves the portal session of the token.
// It must run after the JWT middleware.
func portalSessionMiddleware(sessions *portal.Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			vm, err := sessions.Get(claims.SessionID)
			if err != nil {
				return errSessionExpired
			}
			if snap := vm.Snapshot(); snap.Identity == nil || snap.Identity.ID != claims.Subject {
				return errSessionExpired
			}
			ctx.Set(contextPortalKey, vm)
			return next(ctx)
		}
	}
}

func getContextPortal(ctx echo.Context) (*portal.ViewModel, error) {
	if vm, ok := ctx.Get(contextPortalKey).(*portal.ViewModel); ok {
		return vm, nil
	}
	return nil, errUnauthorized
}
