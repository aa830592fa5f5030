package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edumedsolutions/edumed/core/user"
)

type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	LastLogin    null.Time `db:"last_login"`
}

func (row userRow) toUser() user.User {
	usr := user.User{
		ID:           row.ID,
		Email:        row.Email,
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
	}
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time.UTC()
	}
	return usr
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	q := `INSERT INTO users (id, email, is_active, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := repo.db.Exec(q, usr.ID, usr.Email, usr.IsActive, usr.PasswordHash, usr.CreatedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) get(q string, arg interface{}) (user.User, error) {
	var row userRow
	if err := repo.db.Get(&row, q, arg); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	return repo.get("SELECT id, email, is_active, password_hash, created_at, last_login FROM users WHERE id = $1", id)
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	return repo.get("SELECT id, email, is_active, password_hash, created_at, last_login FROM users WHERE email = $1", email)
}

func (repo *userRepository) UpdateLastLogin(id string, at time.Time) error {
	res, err := repo.db.Exec("UPDATE users SET last_login = $2 WHERE id = $1", id, at)
	if err != nil {
		return errors.Wrap(err, "updating last login")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) SetPassword(id string, hash []byte) error {
	res, err := repo.db.Exec("UPDATE users SET password_hash = $2, is_active = true WHERE id = $1", id, hash)
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}
