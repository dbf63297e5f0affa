package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) index(id string) int {
	for i, usr := range repo.db.rows {
		if usr.ID == id {
			return i
		}
	}
	return -1
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make([]string, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded = append(excluded, u.ID)
	}

	for _, usr := range repo.db.rows {
		if contains(excluded, usr.ID) {
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
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = uuid.New().String()
	repo.db.rows = append(repo.db.rows, usr)
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := make([]user.User, 0, len(repo.db.rows))
	for _, usr := range repo.db.rows {
		if filter == nil || filter.Match(usr) {
			users = append(users, usr)
		}
	}

	orderBy(users, ordering, func(field string, i, j int) int {
		a, b := users[i], users[j]
		switch field {
		case "name":
			return compareStrings(a.Name, b.Name)
		case "username":
			return compareStrings(a.Username, b.Username)
		case "email":
			return compareStrings(a.Email, b.Email)
		case "is_active":
			return compareBools(a.IsActive, b.IsActive)
		case "created_at":
			return compareTimes(a.CreatedAt, b.CreatedAt)
		case "last_login":
			return compareTimes(a.LastLogin, b.LastLogin)
		}
		return 0
	})
	return users, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.rows {
		if filter.ID != "" && usr.ID == filter.ID {
			return usr, nil
		}
		for _, uname := range filter.UsernameOrEmail {
			if uname != "" && (usr.Username == uname || usr.Email == uname) {
				return usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.index(usr.ID)
	if i < 0 {
		return user.User{}, user.ErrNotFound
	}

	// only save set fields
	orig := repo.db.rows[i]
	if usr.Roles != nil {
		orig.Roles = usr.Roles
	}
	if usr.PasswordHash != nil {
		orig.PasswordHash = usr.PasswordHash
	}
	if usr.IsActive != nil {
		orig.IsActive = usr.IsActive
	}
	if !usr.LastLogin.IsZero() {
		orig.LastLogin = usr.LastLogin
	}
	if !usr.UpdatedAt.IsZero() {
		orig.UpdatedAt = usr.UpdatedAt
	}
	orig.Name = usr.Name
	orig.Username = usr.Username
	orig.Email = usr.Email

	repo.db.rows[i] = orig
	return orig, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.RLock()
	exists := usr.ID != "" && repo.index(usr.ID) >= 0
	repo.db.mutex.RUnlock()

	if exists {
		return repo.UpdateUser(ctx, usr)
	}
	return repo.CreateUser(ctx, usr)
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	kept := repo.db.rows[:0]
	for _, usr := range repo.db.rows {
		if !contains(ids, usr.ID) {
			kept = append(kept, usr)
		}
	}
	repo.db.rows = kept
	return nil
}
