package database

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumedsolutions/edumed/core"
)

func TestMigrate(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseRunContext
	defer func() { gooseRunContext = orig }()

	var gotCmd, gotDir string
	var gotArgs []string
	gooseRunContext = func(ctx context.Context, command string, db *sql.DB, dir string, args ...string) error {
		gotCmd, gotDir, gotArgs = command, dir, args
		if command == "boom" {
			return errors.New("boom")
		}
		return nil
	}

	require.NoError(t, Migrate(context.Background(), db, "up-to", "2"))
	assert.Equal(t, "up-to", gotCmd)
	assert.Equal(t, "migrations", gotDir)
	assert.Equal(t, []string{"2"}, gotArgs)

	err = Migrate(context.Background(), db, "boom")
	if assert.Error(t, err) {
		assert.Equal(t, "migrating database (boom): boom", err.Error())
	}
}

func TestDSN(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Database.Engine = "postgres"
	conf.Database.Host = "localhost"
	conf.Database.Port = "5432"
	conf.Database.User = "app"
	conf.Database.Password = "p@ss"
	conf.Database.AdminUser = "root"
	conf.Database.AdminPassword = "toor"
	conf.Database.DisableTLS = true

	u, err := url.Parse(dsn("edumed", false, conf))
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "app", u.User.Username())
	assert.Equal(t, "/edumed", u.Path)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))

	u, err = url.Parse(dsn("postgres", true, conf))
	require.NoError(t, err)
	assert.Equal(t, "root", u.User.Username())
}

func TestCreateDB(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "postgres")

	conf := core.NewTestConfig()
	conf.Database.Name = "edumed"

	mock.ExpectQuery("SELECT true FROM pg_database").
		WithArgs("edumed").
		WillReturnRows(sqlmock.NewRows([]string{"bool"}))
	mock.ExpectExec("CREATE DATABASE edumed").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, createDB(db, conf))

	mock.ExpectQuery("SELECT true FROM pg_database").
		WithArgs("edumed").
		WillReturnRows(sqlmock.NewRows([]string{"bool"}).AddRow(true))
	require.NoError(t, createDB(db, conf))

	assert.NoError(t, mock.ExpectationsWereMet())
}
