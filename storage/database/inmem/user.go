package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/semsync/semsync/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded = append(excluded, usr.ID)
	}
	sort.Strings(excluded)

	for _, usr := range repo.query() {
		if isExcluded(usr.ID, excluded) {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.ID = uuid.New().String()
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(_ context.Context, uname string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if uname == "" {
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range repo.query() {
		if usr.Username == uname || usr.Email == uname {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origUsr, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.CreatedAt = origUsr.CreatedAt
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func isExcluded(id string, excluded []string) bool {
	idx := sort.SearchStrings(excluded, id)
	return idx < len(excluded) && excluded[idx] == id
}
