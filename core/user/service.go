package user

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrUserExists = errors.New("user with this username or email already exists")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByUsernameOrEmail(ctx context.Context, uname string) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
	}

	service struct {
		repo     Repository
		validate *validator.Validate
	}
)

var _ Service = (*service)(nil)

var nowFunc = time.Now // mockable

func NewService(repo Repository, validate *validator.Validate) Service {
	return &service{repo: repo, validate: validate}
}

// Create validates `nu` against the password policy and saves the new account.
func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	nu.Clean()
	if err := svc.validate.Struct(nu); err != nil {
		return User{}, err
	}

	for _, uname := range []string{nu.Username, nu.Email} {
		if _, err := svc.repo.GetUser(ctx, GetFilter{UsernameOrEmail: uname}); err == nil {
			return User{}, ErrUserExists
		} else if pkgerrors.Cause(err) != ErrNotFound {
			return User{}, pkgerrors.Wrap(err, "checking user uniqueness")
		}
	}

	now := nowFunc().UTC()
	usr := User{
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err := validatePassword(nu.Password, usr); err != nil {
		return User{}, err
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, pkgerrors.Wrap(err, "hashing password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, pkgerrors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = nowFunc().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// ResetPassword validates the new password against the password policy and saves it.
func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	rp.Clean()
	if err := svc.validate.Struct(rp); err != nil {
		return err
	}

	usr, err := svc.GetByUsernameOrEmail(ctx, rp.Username)
	if err != nil {
		return err
	}
	if err = validatePassword(rp.Password, usr); err != nil {
		return err
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return pkgerrors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = nowFunc().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return pkgerrors.Wrap(err, "updating user")
	}
	return nil
}
