package sqlxrepos

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

const userTable = `"user"`

var userColumns = []string{
	"id", "name", "username", "email", "is_active", "roles", "password_hash", "created_at", "updated_at", "last_login",
}

type userRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func toUserRow(usr user.User) userRow {
	roles := usr.Roles
	if roles == nil {
		roles = []string{}
	}
	return userRow{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		Roles:        roles,
		PasswordHash: null.NewBytes(usr.PasswordHash, usr.PasswordHash != nil),
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (r userRow) user() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name.String,
		Username:     r.Username.String,
		Email:        r.Email.String,
		IsActive:     r.IsActive.Ptr(),
		Roles:        r.Roles,
		PasswordHash: r.PasswordHash.Bytes,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		LastLogin:    r.LastLogin.Time.UTC(),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	or := sq.Or{}
	if username != "" {
		or = append(or, sq.Eq{"username": username})
	}
	if email != "" {
		or = append(or, sq.Eq{"email": email})
	}
	if len(or) == 0 {
		return nil
	}
	qb := psql.Select("username", "email").From(userTable).Where(or)
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		qb = qb.Where(sq.NotEq{"id": ids})
	}

	var rows []userRow
	if err := selectAll(ctx, repo.db, &rows, qb); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, r := range rows {
		if username != "" && r.Username.String == username {
			return user.ErrUsernameExists
		}
		if email != "" && r.Email.String == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) insert(ctx context.Context, db sqlx.ExecerContext, usr user.User) (user.User, error) {
	r := toUserRow(usr)
	qb := psql.Insert(userTable).Columns(userColumns...).Values(
		r.ID, r.Name, r.Username, r.Email, r.IsActive, r.Roles, r.PasswordHash, r.CreatedAt, r.UpdatedAt, r.LastLogin,
	)
	if _, err := exec(ctx, db, qb); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return r.user(), nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	return repo.insert(ctx, repo.db, usr)
}

// queryUsersBuilder applies AND on the set QueryFilter fields.
func queryUsersBuilder(filter *user.QueryFilter, ordering []core.DBOrdering) sq.SelectBuilder {
	qb := psql.Select(userColumns...).From(userTable)
	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			qb = qb.Where(sq.Or{sq.ILike{"name": val}, sq.ILike{"username": val}, sq.ILike{"email": val}})
		}
		// users with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			or := make(sq.Or, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				or = append(or, sq.Expr("EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role ILIKE ?)", role+"%"))
			}
			qb = qb.Where(or)
		}
		if filter.IsActive != nil {
			qb = qb.Where(sq.Eq{"is_active": *filter.IsActive})
		}
	}
	return orderBy(qb, ordering)
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	var rows []userRow
	if err := selectAll(ctx, repo.db, &rows, queryUsersBuilder(filter, ordering)); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.user())
	}
	return users, nil
}

func getUserBuilder(filter user.GetFilter) sq.SelectBuilder {
	qb := psql.Select(userColumns...).From(userTable)
	if filter.ID != "" {
		return qb.Where(sq.Eq{"id": filter.ID})
	}
	unames := make([]string, 0, len(filter.UsernameOrEmail))
	for _, u := range filter.UsernameOrEmail {
		if u = strings.TrimSpace(u); u != "" {
			unames = append(unames, u)
		}
	}
	return qb.Where(sq.Or{sq.Eq{"username": unames}, sq.Eq{"email": unames}})
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	if filter.ID == "" && len(filter.UsernameOrEmail) == 0 {
		return user.User{}, user.ErrNotFound
	}
	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
	}

	var r userRow
	if err := selectOne(ctx, repo.db, &r, getUserBuilder(filter)); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	return r.user(), nil
}

func (repo *userRepository) update(ctx context.Context, db sqlx.ExecerContext, usr user.User) error {
	r := toUserRow(usr)
	qb := psql.Update(userTable).
		Set("name", r.Name).
		Set("username", r.Username).
		Set("email", r.Email).
		Where(sq.Eq{"id": usr.ID})

	// only save set fields
	if usr.Roles != nil {
		qb = qb.Set("roles", r.Roles)
	}
	if usr.PasswordHash != nil {
		qb = qb.Set("password_hash", r.PasswordHash)
	}
	if usr.IsActive != nil {
		qb = qb.Set("is_active", r.IsActive)
	}
	if !usr.LastLogin.IsZero() {
		qb = qb.Set("last_login", r.LastLogin)
	}
	if !usr.UpdatedAt.IsZero() {
		qb = qb.Set("updated_at", r.UpdatedAt)
	}

	res, err := exec(ctx, db, qb)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return checkAffected(res, user.ErrNotFound)
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if err := repo.update(ctx, repo.db, usr); err != nil {
		return user.User{}, err
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	err := repo.update(ctx, repo.db, usr)
	if errors.Is(err, user.ErrNotFound) {
		return repo.insert(ctx, repo.db, usr)
	} else if err != nil {
		return user.User{}, err
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := exec(ctx, repo.db, psql.Delete(userTable).Where(sq.Eq{"id": ids})); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
