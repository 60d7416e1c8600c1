package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"tartanmarket/internal/domain"
)

type FavoriteRepo struct {
	db *sql.DB
}

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo {
	return &FavoriteRepo{db: db}
}

var _ domain.FavoriteRepository = (*FavoriteRepo)(nil)

// Add is idempotent: favoriting an already-favorited item is a no-op.
func (r *FavoriteRepo) Add(ctx context.Context, userID string, ref domain.ItemRef) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO favorites (user_id, item_type, item_id, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`, userID, ref.Kind, ref.ID)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// Remove is idempotent: removing an absent favorite is a no-op.
func (r *FavoriteRepo) Remove(ctx context.Context, userID string, ref domain.ItemRef) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = ? AND item_type = ? AND item_id = ?
	`, userID, ref.Kind, ref.ID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepo) List(ctx context.Context, userID string) ([]domain.ItemRef, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT item_type, item_id
		FROM favorites
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var refs []domain.ItemRef
	for rows.Next() {
		var ref domain.ItemRef
		if err := rows.Scan(&ref.Kind, &ref.ID); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
