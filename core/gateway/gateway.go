// Package gateway defines the typed surface of the remote record store:
// profiles, applications (with documents), courses, universities and messages.
package gateway

import (
	"context"
	"errors"
	"fmt"
)

var (
	// errors
	ErrNotFound = errors.New("record not found")
)

// RemoteError is a failure reported by the record store. It is never an empty result.
type RemoteError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (err *RemoteError) Error() string {
	if err.Code != "" {
		return fmt.Sprintf("remote store error %s: %s", err.Code, err.Message)
	}
	return "remote store error: " + err.Message
}

type accessTokenKey struct{}

// WithAccessToken attaches the signed-in student's upstream token to ctx.
// Stores enforcing row-level security forward it; the others ignore it.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessToken returns the token attached by WithAccessToken, if any.
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}

// Ordering of a select.
type Ordering struct {
	Field     string
	Ascending bool
}

func (ord Ordering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

type (
	ProfileStore interface {
		GetProfile(ctx context.Context, id string) (Profile, error)
		// CreateProfileIfAbsent inserts the profile unless one already exists for its ID.
		// It reports whether a row was created; it never creates a second row for the same ID.
		CreateProfileIfAbsent(ctx context.Context, p Profile) (bool, error)
	}

	ApplicationStore interface {
		// QueryApplications returns the student's applications joined with university name,
		// course name and documents, in store order.
		QueryApplications(ctx context.Context, studentID string) ([]Application, error)
		CreateApplication(ctx context.Context, na NewApplication) (Application, error)
	}

	UniversityStore interface {
		QueryUniversities(ctx context.Context, orderings ...Ordering) ([]University, error)
		CreateUniversities(ctx context.Context, univs ...University) ([]University, error)
		QueryCourses(ctx context.Context, universityID string) ([]Course, error)
	}

	MessageStore interface {
		CreateMessages(ctx context.Context, msgs ...Message) error
	}

	// Gateway is the full record store.
	Gateway interface {
		ProfileStore
		ApplicationStore
		UniversityStore
		MessageStore
	}
)
