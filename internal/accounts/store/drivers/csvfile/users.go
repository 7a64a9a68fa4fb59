package csvfile

import (
	"context"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
)

type usersRepo struct {
	s *Store
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users, err := r.s.readAll()
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

// CreateUser appends u under both the in-process mutex and the lock file so
// concurrent registrations cannot lose each other's rows.
func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	unlock, err := r.s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	users, err := r.s.readAll()
	if err != nil {
		return err
	}
	for _, existing := range users {
		if existing.Username == u.Username {
			return store.ErrAlreadyExists
		}
	}
	return r.s.writeAll(append(users, u))
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users, err := r.s.readAll()
	if err != nil {
		return 0, err
	}
	return int64(len(users)), nil
}
