package user

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
)

type repositoryMock struct {
	users map[string]User
}

func newRepositoryMock() *repositoryMock {
	return &repositoryMock{users: make(map[string]User)}
}

func (r *repositoryMock) CreateUser(_ context.Context, usr User) (User, error) {
	usr.ID = usr.Username
	r.users[usr.ID] = usr
	return usr, nil
}

func (r *repositoryMock) GetUser(_ context.Context, filter GetFilter) (User, error) {
	for _, usr := range r.users {
		if usr.ID == filter.ID || usr.Username == filter.UsernameOrEmail || usr.Email == filter.UsernameOrEmail {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *repositoryMock) UpdateUser(_ context.Context, usr User) (User, error) {
	if _, ok := r.users[usr.ID]; !ok {
		return User{}, ErrNotFound
	}
	r.users[usr.ID] = usr
	return usr, nil
}

func newTestService() (Service, *repositoryMock) {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())
	repo := newRepositoryMock()
	return NewService(repo, validate), repo
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	nu := NewUser{
		Name:            "Grace Hopper",
		Username:        " GHopper ",
		Email:           "grace@school.edu",
		Roles:           []string{RoleProfessor},
		Password:        "Cobol#1959x",
		PasswordConfirm: "Cobol#1959x",
	}
	usr, err := svc.Create(ctx, nu)
	require.NoError(t, err)
	assert.Equal(t, "ghopper", usr.Username)
	assert.True(t, usr.Active())
	assert.True(t, usr.IsProfessor())
	assert.NoError(t, usr.CheckPassword("Cobol#1959x"))

	_, err = svc.Create(ctx, nu)
	assert.Equal(t, ErrUserExists, err)

	nu.Username, nu.Email, nu.Roles = "other", "other@school.edu", []string{"janitor:"}
	_, err = svc.Create(ctx, nu)
	_, ok := errors.Cause(err).(validator.ValidationErrors)
	assert.True(t, ok, "unknown roles are rejected")
}

func TestService_ResetPassword(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	nowFunc = func() time.Time { return time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = time.Now }()

	repo.users["u1"] = User{ID: "u1", Username: "ada", Email: "ada@school.edu"}

	tests := []struct {
		name    string
		rp      ResetUserPassword
		wantErr error
	}{
		{name: "unknown user", rp: ResetUserPassword{Username: "nope", Password: "Gr4debook!Zx", PasswordConfirm: "Gr4debook!Zx"}, wantErr: ErrNotFound},
		{name: "valid", rp: ResetUserPassword{Username: " ADA ", Password: "Gr4debook!Zx", PasswordConfirm: "Gr4debook!Zx"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ResetPassword(ctx, tc.rp)
			if tc.wantErr != nil {
				assert.Equal(t, tc.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			usr := repo.users["u1"]
			assert.NoError(t, usr.CheckPassword(tc.rp.Password))
			assert.Equal(t, nowFunc(), usr.UpdatedAt)
		})
	}

	t.Run("confirmation mismatch", func(t *testing.T) {
		err := svc.ResetPassword(ctx, ResetUserPassword{Username: "ada", Password: "Gr4debook!Zx", PasswordConfirm: "other"})
		_, ok := errors.Cause(err).(validator.ValidationErrors)
		assert.True(t, ok)
	})

	t.Run("weak password", func(t *testing.T) {
		err := svc.ResetPassword(ctx, ResetUserPassword{Username: "ada", Password: "12345678", PasswordConfirm: "12345678"})
		_, ok := errors.Cause(err).(*core.ValidationError)
		assert.True(t, ok)
	})
}

func TestService_SetLastLogin(t *testing.T) {
	svc, repo := newTestService()
	login := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return login }
	defer func() { nowFunc = time.Now }()

	repo.users["u1"] = User{ID: "u1", Username: "ada"}
	usr, err := svc.SetLastLogin(context.Background(), repo.users["u1"])
	require.NoError(t, err)
	assert.Equal(t, login, usr.LastLogin)
	assert.Equal(t, login, repo.users["u1"].LastLogin)
}
