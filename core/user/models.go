package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/semsync/semsync/core"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"isActive"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
	LastLogin    time.Time `json:"lastLogin"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required,notblank"`
	Username        string `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// SetUserPassword is used to change the password of an existing User (admin CLI).
type SetUserPassword struct {
	Password string `json:"password" validate:"required"`

	// user attributes the password is checked against, not bound
	usr User
}

func NewSetUserPassword(usr User, pwd string) SetUserPassword {
	return SetUserPassword{Password: pwd, usr: usr}
}

func (sp SetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(sp) }
