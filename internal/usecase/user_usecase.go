package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/infrastructure/metrics"
)

// UserUseCase handles user management operations
type UserUseCase struct {
	txManager   TransactionManager
	retrier     Retrier
	userRepo    UserRepository
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	hasher      PasswordHasher
	metrics     *metrics.Metrics
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(
	txManager TransactionManager,
	retrier Retrier,
	userRepo UserRepository,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	hasher PasswordHasher,
	m *metrics.Metrics,
) *UserUseCase {
	return &UserUseCase{
		txManager:   txManager,
		retrier:     retrier,
		userRepo:    userRepo,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		hasher:      hasher,
		metrics:     m,
	}
}

// RegisterInput represents input for registering a user
type RegisterInput struct {
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Register creates a new user with the ordinary role
func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, err
	}

	if err := domain.ValidateName(input.FirstName); err != nil {
		return nil, err
	}

	if err := domain.ValidateName(input.LastName); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:             uc.idGen.Generate(),
		Username:       input.Username,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		HashedPassword: hashedPassword,
		Role:           domain.RoleUser,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Uniqueness of the username is enforced by the repository.
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.UsersRegistered.Inc()
	}

	return sanitize(user), nil
}

// AuthenticateInput represents authentication input
type AuthenticateInput struct {
	Username string
	Password string
}

// Authenticate verifies user credentials
func (uc *UserUseCase) Authenticate(ctx context.Context, input AuthenticateInput) (*domain.User, error) {
	user, err := uc.authenticate(ctx, input)
	if uc.metrics != nil {
		status := "success"
		if err != nil {
			status = "failure"
		}
		uc.metrics.AuthAttempts.WithLabelValues(status).Inc()
	}
	return user, err
}

func (uc *UserUseCase) authenticate(ctx context.Context, input AuthenticateInput) (*domain.User, error) {
	user, err := uc.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := uc.hasher.Verify(user.HashedPassword, input.Password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, domain.ErrUserInactive
	}

	return sanitize(user), nil
}

// GetUser retrieves a user by ID
func (uc *UserUseCase) GetUser(ctx context.Context, principal domain.Principal, id string) (*domain.User, error) {
	if !principal.CanReadUser(id) {
		return nil, domain.ErrForbidden
	}

	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return sanitize(user), nil
}

// ListUsers lists all users with pagination. Admin only.
func (uc *UserUseCase) ListUsers(ctx context.Context, principal domain.Principal, limit, offset int) ([]*domain.User, error) {
	if !principal.CanReadAll() {
		return nil, domain.ErrForbidden
	}

	limit, offset, _ = domain.ValidatePagination(limit, offset)

	users, err := uc.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		sanitize(user)
	}

	return users, nil
}

// UpdateProfileInput represents the fields a user may change about themselves
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Password  *string
}

// UpdateProfile updates the caller's own names and password
func (uc *UserUseCase) UpdateProfile(ctx context.Context, principal domain.Principal, input UpdateProfileInput) (*domain.User, error) {
	if input.FirstName != nil {
		if err := domain.ValidateName(*input.FirstName); err != nil {
			return nil, err
		}
	}

	if input.LastName != nil {
		if err := domain.ValidateName(*input.LastName); err != nil {
			return nil, err
		}
	}

	var hashedPassword string
	if input.Password != nil {
		if err := domain.ValidatePassword(*input.Password); err != nil {
			return nil, err
		}
		var err error
		if hashedPassword, err = uc.hasher.Hash(*input.Password); err != nil {
			return nil, err
		}
	}

	var updated *domain.User
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		user, err := uc.userRepo.GetByIDForUpdate(ctx, tx, principal.UserID)
		if err != nil {
			return err
		}

		if input.FirstName != nil {
			user.FirstName = strings.TrimSpace(*input.FirstName)
		}
		if input.LastName != nil {
			user.LastName = strings.TrimSpace(*input.LastName)
		}
		if hashedPassword != "" {
			user.HashedPassword = hashedPassword
		}
		user.UpdatedAt = time.Now().UTC()

		if err := uc.userRepo.Update(ctx, tx, user); err != nil {
			return err
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sanitize(updated), nil
}

// Deactivate disables the caller's login. It is refused while the caller's
// account still holds money, so funds are never stranded.
func (uc *UserUseCase) Deactivate(ctx context.Context, principal domain.Principal) error {
	return runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		user, err := uc.userRepo.GetByIDForUpdate(ctx, tx, principal.UserID)
		if err != nil {
			return err
		}

		account, err := uc.accountRepo.GetByOwner(ctx, user.ID)
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
		case err != nil:
			return err
		default:
			locked, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, []string{account.ID})
			if err != nil {
				return err
			}
			if len(locked) == 1 && locked[0].Balance != 0 {
				return domain.ErrUserHasFunds
			}
		}

		user.Active = false
		user.UpdatedAt = time.Now().UTC()
		return uc.userRepo.Update(ctx, tx, user)
	})
}

// BootstrapAdmin promotes the caller to admin when no admin exists yet. Once an
// admin exists every further call fails with domain.ErrAdminAlreadyExists.
func (uc *UserUseCase) BootstrapAdmin(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	var promoted *domain.User

	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.userRepo.LockRoles(ctx, tx); err != nil {
			return err
		}

		admins, err := uc.userRepo.CountByRole(ctx, tx, domain.RoleAdmin)
		if err != nil {
			return err
		}
		if admins > 0 {
			return domain.ErrAdminAlreadyExists
		}

		user, err := uc.promote(ctx, tx, principal.UserID, principal.UserID, true)
		if err != nil {
			return err
		}

		promoted = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AdminPromotions.WithLabelValues("bootstrap").Inc()
	}

	return sanitize(promoted), nil
}

// PromoteUser grants the admin role to targetID. The caller must be an active
// admin according to the stored user, not only the token.
func (uc *UserUseCase) PromoteUser(ctx context.Context, principal domain.Principal, targetID string) (*domain.User, error) {
	if !principal.Role.CanPromote() {
		return nil, domain.ErrForbidden
	}

	var promoted *domain.User

	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.userRepo.LockRoles(ctx, tx); err != nil {
			return err
		}

		// The token may predate a deactivation, so the stored row decides.
		caller, err := uc.userRepo.GetByID(ctx, principal.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return domain.ErrForbidden
			}
			return err
		}
		if !caller.Active || !caller.Role.CanPromote() {
			return domain.ErrForbidden
		}

		user, err := uc.promote(ctx, tx, targetID, principal.UserID, false)
		if err != nil {
			return err
		}

		promoted = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AdminPromotions.WithLabelValues("admin").Inc()
	}

	return sanitize(promoted), nil
}

func (uc *UserUseCase) promote(ctx context.Context, tx Transaction, userID, promotedBy string, bootstrap bool) (*domain.User, error) {
	user, err := uc.userRepo.GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if user.Role == domain.RoleAdmin {
		return user, nil
	}

	now := time.Now().UTC()
	user.Role = domain.RoleAdmin
	user.UpdatedAt = now

	if err := uc.userRepo.Update(ctx, tx, user); err != nil {
		return nil, err
	}

	event := domain.NewUserPromotedEvent(uc.idGen.Generate(), user.ID, promotedBy, bootstrap, now)
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	return user, nil
}

// sanitize strips the password hash before a user leaves the use case layer.
func sanitize(user *domain.User) *domain.User {
	user.HashedPassword = ""
	return user
}
