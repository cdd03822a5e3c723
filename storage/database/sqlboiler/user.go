package boiledrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"
	"github.com/volatiletech/sqlboiler/v4/types"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
)

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

var userColumns = []string{
	"id", "name", "username", "email", "password_hash", "is_active", "roles", "created_at", "updated_at", "last_login",
}

type userRow struct {
	ID           string            `boil:"id"`
	Name         string            `boil:"name"`
	Username     string            `boil:"username"`
	Email        string            `boil:"email"`
	PasswordHash []byte            `boil:"password_hash"`
	IsActive     bool              `boil:"is_active"`
	Roles        types.StringArray `boil:"roles"`
	CreatedAt    time.Time         `boil:"created_at"`
	UpdatedAt    time.Time         `boil:"updated_at"`
	LastLogin    null.Time         `boil:"last_login"`
}

func (repo userRepository) unboil(r userRow) user.User {
	isActive := r.IsActive
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		IsActive:     &isActive,
		Roles:        r.Roles,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if isNoRows(err) {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	roles := types.StringArray(usr.Roles)
	if roles == nil {
		roles = types.StringArray{}
	}
	q := queries.Raw(
		`INSERT INTO "users" (id, name, username, email, password_hash, is_active, roles, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		usr.ID, usr.Name, usr.Username, usr.Email, usr.PasswordHash, usr.Active(), roles,
		usr.CreatedAt.UTC(), usr.UpdatedAt.UTC(), null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	)
	if _, err := q.ExecContext(ctx, repo.exec); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	mods := []qm.QueryMod{qm.Select(userColumns...), qm.From(`"users"`)}
	switch {
	case filter.ID != "":
		if !validID(filter.ID) {
			return user.User{}, user.ErrNotFound
		}
		mods = append(mods, qm.Where("id = ?", filter.ID))
	case filter.UsernameOrEmail != "":
		mods = append(mods, qm.Where("username = ? OR email = ?", filter.UsernameOrEmail, filter.UsernameOrEmail))
	default:
		return user.User{}, user.ErrNotFound
	}
	mods = append(mods, qm.Limit(1))

	var row userRow
	if err := newQuery(mods...).Bind(ctx, repo.exec, &row); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if !validID(usr.ID) {
		return user.User{}, user.ErrNotFound
	}
	roles := types.StringArray(usr.Roles)
	if roles == nil {
		roles = types.StringArray{}
	}
	q := queries.Raw(
		`UPDATE "users" SET name = $1, username = $2, email = $3, password_hash = $4, is_active = $5, roles = $6,
		updated_at = $7, last_login = $8 WHERE id = $9`,
		usr.Name, usr.Username, usr.Email, usr.PasswordHash, usr.Active(), roles,
		usr.UpdatedAt.UTC(), null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()), usr.ID,
	)
	res, err := q.ExecContext(ctx, repo.exec)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
