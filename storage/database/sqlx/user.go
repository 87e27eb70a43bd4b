package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/semsync/semsync/core/user"
)

const (
	userColumns = "id, name, username, email, is_active, password_hash, created_at, updated_at, last_login"

	checkUniqueness = `SELECT username, email FROM users
		WHERE ((username <> '' AND username = ?) OR (email <> '' AND email = ?))`

	insertUser = `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :name, :username, :email, :is_active, :password_hash, :created_at, :updated_at, :last_login)
		RETURNING ` + userColumns

	getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	getUserByUsernameOrEmail = `SELECT ` + userColumns + ` FROM users
		WHERE username = $1 OR email = $1
		ORDER BY username = $1 DESC
		LIMIT 1`

	updateUser = `UPDATE users SET
			name = :name,
			username = :username,
			email = :email,
			is_active = :is_active,
			password_hash = :password_hash,
			updated_at = :updated_at,
			last_login = :last_login
		WHERE id = :id
		RETURNING ` + userColumns
)

type userRow struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	Username     string       `db:"username"`
	Email        string       `db:"email"`
	IsActive     bool         `db:"is_active"`
	PasswordHash []byte       `db:"password_hash"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	LastLogin    sql.NullTime `db:"last_login"`
}

func newUserRow(usr user.User) userRow {
	if usr.PasswordHash == nil {
		usr.PasswordHash = []byte{} // unusable password
	}
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     usr.Username,
		Email:        usr.Email,
		IsActive:     usr.IsActive,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
		LastLogin:    sql.NullTime{Time: usr.LastLogin, Valid: !usr.LastLogin.IsZero()},
	}
}

func (r userRow) toUser() user.User {
	usr := user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.LastLogin.Valid {
		usr.LastLogin = r.LastLogin.Time.UTC()
	}
	return usr
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	query := checkUniqueness
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			if validID(usr.ID) {
				ids = append(ids, usr.ID)
			}
		}
		if len(ids) > 0 {
			query += " AND id NOT IN (?)"
			args = append(args, ids)
		}
	}

	query, args, err := sqlx.In(query+" LIMIT 1", args...)
	if err != nil {
		return errors.Wrap(err, "expanding uniqueness query")
	}

	var found struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	if err := repo.db.GetContext(ctx, &found, repo.db.Rebind(query), args...); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return errors.Wrap(err, "checking uniqueness")
	}
	if username != "" && found.Username == username {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := newUserRow(usr)
	row.ID = uuid.New().String()
	if err := namedGet(ctx, repo.db, &row, insertUser, row); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) getUser(ctx context.Context, query string, arg interface{}) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if !validID(id) {
		return user.User{}, user.ErrNotFound
	}
	return repo.getUser(ctx, getUserByID, id)
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, uname string) (user.User, error) {
	if uname == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.getUser(ctx, getUserByUsernameOrEmail, uname)
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if !validID(usr.ID) {
		return user.User{}, user.ErrNotFound
	}
	row := newUserRow(usr)
	if err := namedGet(ctx, repo.db, &row, updateUser, row); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return row.toUser(), nil
}
