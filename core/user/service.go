package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/semsync/semsync/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type Repository interface {
	// CheckUsernameUniqueness returns ErrUsernameExists or ErrEmailExists when another user
	// (excluding excludedUsers) already holds username or email. Empty values are ignored.
	CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
	// CreateUser generates the user ID.
	CreateUser(ctx context.Context, usr User) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	// GetUserByUsernameOrEmail matches uname against both the username & the email.
	GetUserByUsernameOrEmail(ctx context.Context, uname string) (User, error)
	// UpdateUser overwrites every mutable field of the user identified by usr.ID.
	UpdateUser(ctx context.Context, usr User) (User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CheckUniqueness maps the repository uniqueness errors to field validation errors.
func (svc *Service) CheckUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, exclUsers...); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return errors.Wrap(err, "checking username uniqueness")
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: errors.Cause(err).Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := NowFunc().UTC()
	usr := User{
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = NowFunc().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// SetPassword hashes & stores pwd. The password policy is checked by SetUserPassword.Validate.
func (svc *Service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// SetActive activates or deactivates usr. Deactivated users cannot log in.
func (svc *Service) SetActive(ctx context.Context, usr User, active bool) (User, error) {
	usr.IsActive = active
	usr.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}
