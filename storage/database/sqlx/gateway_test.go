package sqlxrepos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumedsolutions/edumed/core/gateway"
	"github.com/edumedsolutions/edumed/core/user"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestGetProfile(t *testing.T) {
	db, mock := newMock(t)
	gw := NewGateway(db)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cols := []string{"id", "first_name", "last_name", "email", "created_at"}

	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id = \\$1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "jane", "", "jane@x.io", now))
	prof, err := gw.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, gateway.Profile{ID: "u1", FirstName: "jane", Email: "jane@x.io", CreatedAt: now}, prof)

	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id = \\$1").
		WithArgs("u2").
		WillReturnRows(sqlmock.NewRows(cols))
	_, err = gw.GetProfile(context.Background(), "u2")
	assert.Equal(t, gateway.ErrNotFound, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProfileIfAbsent(t *testing.T) {
	db, mock := newMock(t)
	gw := NewGateway(db)
	prof := gateway.Profile{ID: "u1", FirstName: "jane", Email: "jane@x.io", CreatedAt: time.Now().UTC()}

	mock.ExpectExec("INSERT INTO profiles (.+) ON CONFLICT \\(id\\) DO NOTHING").
		WithArgs(prof.ID, prof.FirstName, prof.LastName, prof.Email, prof.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	created, err := gw.CreateProfileIfAbsent(context.Background(), prof)
	require.NoError(t, err)
	assert.True(t, created)

	mock.ExpectExec("INSERT INTO profiles").WillReturnResult(sqlmock.NewResult(0, 0))
	created, err = gw.CreateProfileIfAbsent(context.Background(), prof)
	require.NoError(t, err)
	assert.False(t, created)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryApplications(t *testing.T) {
	db, mock := newMock(t)
	gw := NewGateway(db)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM applications a LEFT JOIN universities u (.+) WHERE a.student_id = \\$1").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "student_id", "university_id", "university_name", "course_id", "course_name", "status", "created_at",
		}).
			AddRow("a1", "s1", "u1", "Rice University", "c1", "Nursing", "submitted", now).
			AddRow("a2", "s1", nil, nil, nil, nil, "pending", now.Add(time.Hour)))
	mock.ExpectQuery("SELECT (.+) FROM documents WHERE application_id = ANY\\(\\$1\\)").
		WithArgs(pq.Array([]string{"a1", "a2"})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "name", "status"}).
			AddRow("d1", "a1", "Transcript", "approved").
			AddRow("d2", "a1", "Passport", "pending"))

	apps, err := gw.QueryApplications(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, apps, 2)

	assert.Equal(t, "Rice University", apps[0].UniversityName)
	assert.Equal(t, "Nursing", apps[0].CourseName)
	assert.Equal(t, gateway.ApplicationSubmitted, apps[0].Status)
	require.Len(t, apps[0].Documents, 2)
	assert.Equal(t, "Transcript", apps[0].Documents[0].Name)
	assert.Equal(t, gateway.DocumentApproved, apps[0].Documents[0].Status)

	assert.Empty(t, apps[1].UniversityID)
	assert.Empty(t, apps[1].UniversityName)
	assert.Equal(t, gateway.ApplicationPending, apps[1].Status)
	assert.NotNil(t, apps[1].Documents)
	assert.Empty(t, apps[1].Documents)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryApplications_Errors(t *testing.T) {
	db, mock := newMock(t)
	gw := NewGateway(db)

	mock.ExpectQuery("SELECT (.+) FROM applications").
		WillReturnError(&pq.Error{Code: "42501", Message: "permission denied for table applications"})
	_, err := gw.QueryApplications(context.Background(), "s1")
	rErr, ok := err.(*gateway.RemoteError)
	require.True(t, ok, "want *gateway.RemoteError, got %T", err)
	assert.Equal(t, "42501", rErr.Code)
	assert.Equal(t, "permission denied for table applications", rErr.Message)

	mock.ExpectQuery("SELECT (.+) FROM applications").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "status", "created_at"}).
			AddRow("a1", "s1", "lost", time.Now()))
	_, err = gw.QueryApplications(context.Background(), "s1")
	assert.EqualError(t, err, `application a1: invalid status "lost"`)

	mock.ExpectQuery("SELECT (.+) FROM applications").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	apps, err := gw.QueryApplications(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, apps)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplication(t *testing.T) {
	db, mock := newMock(t)
	gw := NewGateway(db)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO applications (.+) RETURNING id").
		WithArgs("s1", nil, nil, "pending", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a9"))
	app, err := gw.CreateApplication(context.Background(), gateway.NewApplication{
		StudentID: "s1",
		Status:    gateway.ApplicationPending,
		CreatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "a9", app.ID)
	assert.Equal(t, gateway.ApplicationPending, app.Status)

	_, err = gw.CreateApplication(context.Background(), gateway.NewApplication{StudentID: "s1", Status: "lost"})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryUniversities(t *testing.T) {
	db, mock := newMock(t)
	gw := NewGateway(db)

	mock.ExpectQuery("SELECT (.+) FROM universities ORDER BY ranking ASC$").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location_state", "ranking"}).
			AddRow("u1", "UT Austin", "Texas", 10).
			AddRow("u2", "Rice University", "Texas", 15))
	univs, err := gw.QueryUniversities(context.Background(),
		gateway.Ordering{Field: "ranking", Ascending: true},
		gateway.Ordering{Field: "id; DROP TABLE universities"},
	)
	require.NoError(t, err)
	require.Len(t, univs, 2)
	assert.Equal(t, "UT Austin", univs[0].Name)
	assert.Equal(t, 15, univs[1].Ranking)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUniversities(t *testing.T) {
	db, mock := newMock(t)
	gw := NewGateway(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO universities").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))
	mock.ExpectQuery("INSERT INTO universities").
		WillReturnError(errors.New("conn reset"))
	mock.ExpectRollback()

	_, err := gw.CreateUniversities(context.Background(),
		gateway.University{Name: "A", State: "Texas"},
		gateway.University{Name: "B", State: "Texas"},
	)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMessages(t *testing.T) {
	db, mock := newMock(t)
	gw := NewGateway(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO messages").
		WithArgs("hello", false, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, gw.CreateMessages(context.Background(), gateway.Message{Content: "hello"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()
	usr := user.User{ID: "u1", Email: "jane@x.io", IsActive: true, PasswordHash: []byte("hash"), CreatedAt: now}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(usr.ID, usr.Email, usr.IsActive, usr.PasswordHash, usr.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	_, err := repo.CreateUser(usr)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key"})
	_, err = repo.CreateUser(usr)
	assert.Equal(t, user.ErrEmailExists, err)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("nobody@x.io").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.GetUserByEmail("nobody@x.io")
	assert.Equal(t, user.ErrNotFound, err)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "is_active", "password_hash", "created_at", "last_login"}).
			AddRow("u1", "jane@x.io", true, []byte("hash"), now, nil))
	got, err := repo.GetUserByID("u1")
	require.NoError(t, err)
	assert.Equal(t, "jane@x.io", got.Email)
	assert.True(t, got.LastLogin.IsZero())

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("u2", []byte("new")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.Equal(t, user.ErrNotFound, repo.SetPassword("u2", []byte("new")))

	assert.NoError(t, mock.ExpectationsWereMet())
}
