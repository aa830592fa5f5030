package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/gateway"
	"github.com/edumedsolutions/edumed/core/user"
	"github.com/edumedsolutions/edumed/storage/database/inmem"
	"github.com/edumedsolutions/edumed/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)

	mem := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(mem)

	return &commandLine{
		db:       db,
		usrSvc:   user.NewService(usrRepo),
		store:    inmemdb.NewGateway(mem),
		validate: validate,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func checkRunErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case err == nil:
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
		}
	case tt.wantErr != nil:
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	orig := migrateFunc
	defer func() { migrateFunc = orig }()
	migrateFunc = func(ctx context.Context, db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkRunErr(t, tt, cli.run(args))
		})
	}

	t.Run("without postgres", func(t *testing.T) {
		cli.db = nil
		assert.Equal(t, errNoSQL, cli.run([]string{"admin", "migrate", "up"}))
	})
}

func Test_commandLine_seedUniversities(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	require.NoError(t, cli.run([]string{"admin", "seeduniversities"}))
	univs, err := cli.store.QueryUniversities(ctx, gateway.Ordering{Field: "ranking", Ascending: true})
	require.NoError(t, err)
	require.Len(t, univs, 6)
	assert.Equal(t, "University of Texas at Austin", univs[0].Name)
	assert.NotEqual(t, "1", univs[0].ID)

	assert.Equal(t, errAlreadySeeded, cli.run([]string{"admin", "seeduniversities"}))

	require.NoError(t, cli.run([]string{"admin", "seeduniversities", "-force"}))
	univs, err = cli.store.QueryUniversities(ctx)
	require.NoError(t, err)
	assert.Len(t, univs, 12)

	assert.Equal(t, errHelp, cli.run([]string{"admin", "seeduniversities", "-lol"}))
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	defer mockPassword("")

	existing := testutil.CreateUser(t, usrRepo, "consultant@edumed.test", "old-passw0rd", false)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"adduser", "-email", "new@edumed.test"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-email", "New@EduMed.test"}, extra: extra{pwd: "s3cure-horse"}},
		{name: "existing", args: []string{"adduser", "-email", existing.Email}, extra: extra{pwd: "n3w-horse"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd := ""
		if e, ok := tt.extra.(extra); ok {
			pwd = e.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			checkRunErr(t, tt, cli.run(args))
		})
	}

	t.Run("weak password", func(t *testing.T) {
		mockPassword("1234")
		err := cli.run([]string{"admin", "adduser", "-email", "weak@edumed.test"})
		assert.IsType(t, validator.ValidationErrors{}, err)
	})

	created, err := cli.usrSvc.Authenticate("new@edumed.test", "s3cure-horse")
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	updated, err := cli.usrSvc.Authenticate(existing.Email, "n3w-horse")
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	defer mockPassword("")

	usr := testutil.CreateUser(t, usrRepo, "awe@test.cd", "mdr-mdr-mdr", true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lmao"}},
		{name: "reset with mixed case", args: []string{"resetpassword", "-email", "AWE@test.cd"}, extra: extra{pwd: "lmao-lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd := ""
		if e, ok := tt.extra.(extra); ok {
			pwd = e.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			checkRunErr(t, tt, err)
			if err != nil {
				return
			}
			refreshed, err := usrRepo.GetUserByID(usr.ID)
			require.NoError(t, err)
			if bytes.Equal(refreshed.PasswordHash, usr.PasswordHash) {
				t.Error("failed to update new password")
			}
			assert.NoError(t, refreshed.CheckPassword(pwd))
		})
	}
}
