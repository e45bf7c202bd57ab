package repository

import (
	"context"
	"time"

	"github.com/jkstudio99/DropStockAPI/internal/domain"
	"github.com/jkstudio99/DropStockAPI/pkg/pagination"
)

// UserRepository defines the interface for account persistence operations.
// Uniqueness of usernames and email addresses is enforced by the store's
// unique indexes; callers treat lookup-then-create as an early exit only.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by normalized username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by normalized email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdatePassword replaces the password hash and rotates the security
	// stamp in one statement.
	UpdatePassword(ctx context.Context, userID, passwordHash, securityStamp string) error

	// UpdateSecurityStamp rotates the security stamp only.
	UpdateSecurityStamp(ctx context.Context, userID, securityStamp string) error

	// SetEmailConfirmed marks the user's email address as confirmed.
	SetEmailConfirmed(ctx context.Context, userID string) error
}

// RoleRepository defines the interface for role and membership operations.
type RoleRepository interface {
	// Ensure creates the named role if it does not exist and returns its ID.
	Ensure(ctx context.Context, name string) (string, error)

	// AddToRole binds the user to the role. Adding an existing membership
	// is a no-op.
	AddToRole(ctx context.Context, userID, roleID string) error

	// RolesForUser returns the names of all roles the user holds.
	RolesForUser(ctx context.Context, userID string) ([]string, error)
}

// ActionTokenRepository stores single-use tokens for password reset and
// email confirmation. Only token hashes are persisted.
type ActionTokenRepository interface {
	// Create stores a new action token.
	Create(ctx context.Context, token *domain.ActionToken) error

	// Consume atomically marks the matching unconsumed, unexpired token as
	// used. It fails when the token is unknown, already consumed, or past
	// its expiry, so a token can never be redeemed twice.
	Consume(ctx context.Context, userID, purpose, tokenHash string, now time.Time) error
}

// CategoryRepository defines the interface for category persistence.
type CategoryRepository interface {
	// Create inserts a new category.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// List returns a page of categories, optionally filtered by a name
	// substring, together with the total match count.
	List(ctx context.Context, params pagination.Params, search string) ([]domain.Category, int, error)

	// Update modifies an existing category.
	Update(ctx context.Context, category *domain.Category) error

	// Delete removes a category by its identifier.
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines the interface for product persistence.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns a page of products, optionally filtered by a name
	// substring, together with the total match count.
	List(ctx context.Context, params pagination.Params, search string) ([]domain.Product, int, error)

	// Update modifies an existing product.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product by its identifier.
	Delete(ctx context.Context, id string) error
}
