package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"tartanmarket/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

const userColumns = `id, external_id, email, andrew_id, display_name, avatar_url, shop_title, shop_description, shop_banner_url, created_at`

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, external_id, email, andrew_id, display_name, avatar_url, shop_title, shop_description, shop_banner_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.ExternalID,
		u.Email,
		u.AndrewID,
		u.DisplayName,
		u.AvatarURL,
		u.ShopTitle,
		u.ShopDescription,
		u.ShopBannerURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanUser(ctx, query, id)
}

func (r *UserRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = ?`
	return r.scanUser(ctx, query, externalID)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.scanUser(ctx, query, email)
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET external_id = ?, email = ?, andrew_id = ?, display_name = ?, avatar_url = ?, shop_title = ?, shop_description = ?, shop_banner_url = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ExternalID,
		u.Email,
		u.AndrewID,
		u.DisplayName,
		u.AvatarURL,
		u.ShopTitle,
		u.ShopDescription,
		u.ShopBannerURL,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.ExternalID,
		&u.Email,
		&u.AndrewID,
		&u.DisplayName,
		&u.AvatarURL,
		&u.ShopTitle,
		&u.ShopDescription,
		&u.ShopBannerURL,
		&u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
