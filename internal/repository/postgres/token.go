package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jkstudio99/DropStockAPI/internal/domain"
	apperrors "github.com/jkstudio99/DropStockAPI/pkg/errors"
)

// ActionTokenRepository implements repository.ActionTokenRepository using PostgreSQL.
type ActionTokenRepository struct {
	db DB
}

// NewActionTokenRepository creates a new PostgreSQL-backed action token repository.
func NewActionTokenRepository(db DB) *ActionTokenRepository {
	return &ActionTokenRepository{db: db}
}

// Create stores a new action token.
func (r *ActionTokenRepository) Create(ctx context.Context, t *domain.ActionToken) error {
	query := `
		INSERT INTO action_tokens (id, user_id, purpose, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.Purpose,
		t.TokenHash,
		t.ExpiresAt,
		t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("action token", "hash", t.Purpose)
		}
		return fmt.Errorf("insert action token: %w", err)
	}

	return nil
}

// Consume marks the matching unconsumed, unexpired token as used. The WHERE
// clause on consumed_at makes redemption atomic; two concurrent consumers
// cannot both see zero rows updated as success.
func (r *ActionTokenRepository) Consume(ctx context.Context, userID, purpose, tokenHash string, now time.Time) error {
	query := `
		UPDATE action_tokens
		SET consumed_at = $1
		WHERE user_id = $2 AND purpose = $3 AND token_hash = $4
		  AND consumed_at IS NULL AND expires_at > $1`

	ct, err := r.db.Exec(ctx, query, now, userID, purpose, tokenHash)
	if err != nil {
		return fmt.Errorf("consume action token: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
