package memory

import (
	"context"
	"sort"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/usecase"
)

const rolesLockKey = "roles"

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func userLockKey(id string) string {
	return "user:" + id
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, taken := r.store.usernames[user.Username]; taken {
		return domain.ErrUserAlreadyExists
	}

	r.store.users[user.ID] = copyUser(user)
	r.store.usernames[user.Username] = user.ID
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.usernames[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(r.store.users[id]), nil
}

// GetByIDForUpdate locks and retrieves a user.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.User, error) {
	mt, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if err := mt.lock(ctx, userLockKey(id)); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Update buffers a user write. The caller must hold the user lock.
func (r *UserRepository) Update(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}

	if _, held := mt.held[userLockKey(user.ID)]; !held {
		return usecase.ErrLockContention
	}

	stored := copyUser(user)
	mt.buffer(func() {
		existing, ok := r.store.users[stored.ID]
		if !ok {
			return
		}
		// The password hash is kept when the caller passes a sanitized user.
		if stored.HashedPassword == "" {
			stored.HashedPassword = existing.HashedPassword
		}
		r.store.users[stored.ID] = stored
	})

	return nil
}

// List lists users ordered by creation time.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	r.store.mu.RLock()
	users := make([]*domain.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		users = append(users, copyUser(u))
	}
	r.store.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return paginate(users, limit, offset), nil
}

// LockRoles serializes role changes until tx ends.
func (r *UserRepository) LockRoles(ctx context.Context, tx usecase.Transaction) error {
	mt, err := asTx(tx)
	if err != nil {
		return err
	}
	return mt.lock(ctx, rolesLockKey)
}

// CountByRole counts committed users holding role.
func (r *UserRepository) CountByRole(ctx context.Context, tx usecase.Transaction, role domain.Role) (int64, error) {
	if _, err := asTx(tx); err != nil {
		return 0, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var n int64
	for _, u := range r.store.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}
