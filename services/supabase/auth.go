package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/edumedsolutions/edumed/core/session"
)

var NowFunc = time.Now // mockable

type (
	authUser struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	authSession struct {
		AccessToken string    `json:"access_token"`
		ExpiresIn   int64     `json:"expires_in"`
		ExpiresAt   int64     `json:"expires_at"`
		User        *authUser `json:"user"`
	}

	// GoTrue has returned both shapes over time.
	authError struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error_code"`
		Msg              string `json:"msg"`
	}
)

func (e authError) message() string {
	for _, m := range []string{e.Msg, e.ErrorDescription, e.Error} {
		if m != "" {
			return m
		}
	}
	return ""
}

// AuthService is the hosted auth backend.
type AuthService struct {
	client *Client
}

var _ session.AuthService = (*AuthService)(nil)

func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

func (svc *AuthService) SignIn(ctx context.Context, email, password string) (session.Session, error) {
	res, err := svc.client.send(ctx, request{
		method: rest.Post,
		path:   authPath + "/token",
		query:  map[string]string{"grant_type": "password"},
		body:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return session.Session{}, err
	}
	if res.StatusCode >= http.StatusBadRequest {
		if res.StatusCode == http.StatusBadRequest {
			return session.Session{}, session.ErrInvalidCredentials
		}
		return session.Session{}, decodeAuthError(res)
	}
	return decodeSession(res)
}

func (svc *AuthService) SignUp(ctx context.Context, email, password string) (session.Session, error) {
	res, err := svc.client.send(ctx, request{
		method: rest.Post,
		path:   authPath + "/signup",
		body:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return session.Session{}, err
	}
	if res.StatusCode >= http.StatusBadRequest {
		aErr := decodeAuthError(res)
		if res.StatusCode == http.StatusUnprocessableEntity || strings.Contains(strings.ToLower(aErr.Error()), "already registered") {
			return session.Session{}, session.ErrEmailTaken
		}
		return session.Session{}, aErr
	}

	// without auto-confirm, only the user comes back and a confirmation email is sent
	var signed authSession
	if err = json.Unmarshal([]byte(res.Body), &signed); err != nil {
		return session.Session{}, errors.Wrap(err, "decoding signup response")
	}
	if signed.AccessToken == "" {
		return session.Session{}, session.ErrConfirmationSent
	}
	return decodeSession(res)
}

func (svc *AuthService) SignOut(ctx context.Context, accessToken string) error {
	res, err := svc.client.send(ctx, request{
		method: rest.Post,
		path:   authPath + "/logout",
		token:  accessToken,
	})
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest && res.StatusCode != http.StatusUnauthorized {
		return decodeAuthError(res)
	}
	return nil
}

func (svc *AuthService) CurrentUser(ctx context.Context, accessToken string) (session.Identity, error) {
	res, err := svc.client.send(ctx, request{
		method: rest.Get,
		path:   authPath + "/user",
		token:  accessToken,
	})
	if err != nil {
		return session.Identity{}, err
	}
	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return session.Identity{}, session.ErrNotAuthenticated
	case res.StatusCode >= http.StatusBadRequest:
		return session.Identity{}, decodeAuthError(res)
	}

	var usr authUser
	if err = json.Unmarshal([]byte(res.Body), &usr); err != nil {
		return session.Identity{}, errors.Wrap(err, "decoding user")
	}
	return session.Identity{ID: usr.ID, Email: usr.Email}, nil
}

func decodeSession(res *rest.Response) (session.Session, error) {
	var as authSession
	if err := json.Unmarshal([]byte(res.Body), &as); err != nil {
		return session.Session{}, errors.Wrap(err, "decoding session")
	}
	if as.AccessToken == "" || as.User == nil {
		return session.Session{}, errors.New("incomplete session in auth response")
	}

	expiresAt := time.Unix(as.ExpiresAt, 0).UTC()
	if as.ExpiresAt == 0 {
		expiresAt = NowFunc().UTC().Add(time.Duration(as.ExpiresIn) * time.Second)
	}
	return session.Session{
		Identity:    session.Identity{ID: as.User.ID, Email: as.User.Email},
		AccessToken: as.AccessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

func decodeAuthError(res *rest.Response) error {
	var ae authError
	_ = json.Unmarshal([]byte(res.Body), &ae)
	msg := ae.message()
	if msg == "" {
		msg = http.StatusText(res.StatusCode)
	}
	return errors.Errorf("auth service error (%d): %s", res.StatusCode, msg)
}
