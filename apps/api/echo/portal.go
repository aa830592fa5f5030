package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/portal"
	"github.com/edumedsolutions/edumed/core/session"
	"github.com/edumedsolutions/edumed/core/user"
)

type (
	authResponse struct {
		Token  string          `json:"token"`
		Portal portal.Snapshot `json:"portal"`
	}

	messageResponse struct {
		Message string `json:"message"`
	}
)

type portalApi struct {
	sessions *portal.Sessions
	issuer   *jwtIssuer
	validate *validator.Validate
	logger   core.Logger
}

func registerPortalAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	issuer *jwtIssuer,
	sessions *portal.Sessions,
	validate *validator.Validate,
	logger core.Logger,
	signInLimit echo.MiddlewareFunc,
) {
	api := portalApi{
		sessions: sessions,
		issuer:   issuer,
		validate: validate,
		logger:   logger,
	}
	authed := portalSessionMiddleware(sessions)

	ag := g.Group("/auth")
	ag.POST("/signup", api.signUp, signInLimit)
	ag.POST("/signin", api.signIn, signInLimit)
	ag.POST("/signout", api.signOut, jwt, authed)

	pg := g.Group("/portal", jwt, authed)
	pg.GET("", api.snapshot)
	pg.POST("/refresh", api.refresh)
	pg.POST("/applications", api.createApplication)
}

// Handlers

func (api *portalApi) signUp(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sid, vm, err := api.sessions.SignUp(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == session.ErrConfirmationSent {
			return ctx.JSON(http.StatusAccepted, messageResponse{Message: err.Error()})
		}
		return errors.Wrap(err, "signing up")
	}
	return api.respondWithToken(ctx, http.StatusCreated, sid, vm)
}

func (api *portalApi) signIn(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sid, vm, err := api.sessions.SignIn(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "signing in")
	}
	return api.respondWithToken(ctx, http.StatusOK, sid, vm)
}

func (api *portalApi) signOut(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err = api.sessions.SignOut(ctx.Request().Context(), claims.SessionID); err != nil {
		if errors.Cause(err) == portal.ErrSessionNotFound {
			return err
		}
		// the local session is gone either way
		api.logger.Warn("signing out upstream: "+err.Error(), err, contextIdentity(ctx))
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *portalApi) snapshot(ctx echo.Context) error {
	vm, err := getContextPortal(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, vm.Snapshot())
}

func (api *portalApi) refresh(ctx echo.Context) error {
	vm, err := getContextPortal(ctx)
	if err != nil {
		return err
	}
	if err = vm.Refresh(ctx.Request().Context()); err != nil {
		return portalFailure(vm, err)
	}
	return ctx.JSON(http.StatusOK, vm.Snapshot())
}

func (api *portalApi) createApplication(ctx echo.Context) error {
	vm, err := getContextPortal(ctx)
	if err != nil {
		return err
	}
	if err = vm.CreateApplication(ctx.Request().Context()); err != nil {
		return portalFailure(vm, err)
	}
	return ctx.JSON(http.StatusCreated, vm.Snapshot())
}

func (api *portalApi) respondWithToken(ctx echo.Context, code int, sid string, vm *portal.ViewModel) error {
	snap := vm.Snapshot()
	if snap.Identity == nil {
		return errUnauthorized
	}
	token, err := api.issuer.GenerateToken(api.issuer.claims(sid, *snap.Identity))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(code, authResponse{Token: token, Portal: snap})
}

// portalFailure turns a failed view-model operation into the banner the portal shows.
func portalFailure(vm *portal.ViewModel, err error) error {
	if errors.Cause(err) == session.ErrNotAuthenticated {
		return errSessionExpired
	}
	msg := vm.Snapshot().Error
	if msg == "" {
		return err
	}
	return echo.NewHTTPError(http.StatusBadGateway, msg).SetInternal(err)
}
