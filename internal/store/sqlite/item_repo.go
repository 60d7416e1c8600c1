package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"tartanmarket/internal/domain"
)

type MarketplaceItemRepo struct {
	db *sql.DB
}

func NewMarketplaceItemRepo(db *sql.DB) *MarketplaceItemRepo {
	return &MarketplaceItemRepo{db: db}
}

var _ domain.MarketplaceItemRepository = (*MarketplaceItemRepo)(nil)

const mpItemColumns = `id, seller_id, title, description, price, category, condition, tags, images, status, created_at`

func (r *MarketplaceItemRepo) Create(ctx context.Context, it *domain.MarketplaceItem) error {
	query := `
		INSERT INTO marketplace_items (id, seller_id, title, description, price, category, condition, tags, images, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	_, err := r.db.ExecContext(ctx, query,
		it.ID,
		it.SellerID,
		it.Title,
		it.Description,
		it.Price,
		it.Category,
		it.Condition,
		marshalList(it.Tags),
		marshalList(it.Images),
		it.Status,
	)
	if err != nil {
		return fmt.Errorf("insert marketplace item: %w", err)
	}
	return nil
}

func (r *MarketplaceItemRepo) GetByID(ctx context.Context, id string) (*domain.MarketplaceItem, error) {
	query := `SELECT ` + mpItemColumns + ` FROM marketplace_items WHERE id = ?`
	it, err := scanMarketplaceItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get marketplace item: %w", err)
	}
	return it, nil
}

func (r *MarketplaceItemRepo) List(ctx context.Context, f domain.ItemFilter) ([]*domain.MarketplaceItem, error) {
	query := `SELECT ` + mpItemColumns + ` FROM marketplace_items WHERE 1=1`
	var args []any

	if !f.IncludeUnavailable {
		query += ` AND status = ?`
		args = append(args, domain.ItemStatusAvailable)
	}
	if f.SellerID != "" {
		query += ` AND seller_id = ?`
		args = append(args, f.SellerID)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Condition != "" {
		query += ` AND condition = ?`
		args = append(args, f.Condition)
	}
	if f.MinPrice != nil {
		query += ` AND price >= ?`
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query += ` AND price <= ?`
		args = append(args, *f.MaxPrice)
	}

	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list marketplace items: %w", err)
	}
	defer rows.Close()

	var items []*domain.MarketplaceItem
	for rows.Next() {
		it, err := scanMarketplaceItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan marketplace item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *MarketplaceItemRepo) Update(ctx context.Context, it *domain.MarketplaceItem) error {
	query := `
		UPDATE marketplace_items
		SET title = ?, description = ?, price = ?, category = ?, condition = ?, tags = ?, images = ?, status = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		it.Title,
		it.Description,
		it.Price,
		it.Category,
		it.Condition,
		marshalList(it.Tags),
		marshalList(it.Images),
		it.Status,
		it.ID,
	)
	if err != nil {
		return fmt.Errorf("update marketplace item: %w", err)
	}
	return requireRow(res)
}

func (r *MarketplaceItemRepo) UpdateStatus(ctx context.Context, id string, status domain.ItemStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE marketplace_items SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update item status: %w", err)
	}
	return requireRow(res)
}

func (r *MarketplaceItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM marketplace_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete marketplace item: %w", err)
	}
	return requireRow(res)
}

type CommissionItemRepo struct {
	db *sql.DB
}

func NewCommissionItemRepo(db *sql.DB) *CommissionItemRepo {
	return &CommissionItemRepo{db: db}
}

var _ domain.CommissionItemRepository = (*CommissionItemRepo)(nil)

const commItemColumns = `id, seller_id, title, description, price, category, tags, images, turnaround_days, is_available, created_at`

func (r *CommissionItemRepo) Create(ctx context.Context, it *domain.CommissionItem) error {
	query := `
		INSERT INTO commission_items (id, seller_id, title, description, price, category, tags, images, turnaround_days, is_available, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	_, err := r.db.ExecContext(ctx, query,
		it.ID,
		it.SellerID,
		it.Title,
		it.Description,
		it.Price,
		it.Category,
		marshalList(it.Tags),
		marshalList(it.Images),
		it.TurnaroundDays,
		it.IsAvailable,
	)
	if err != nil {
		return fmt.Errorf("insert commission item: %w", err)
	}
	return nil
}

func (r *CommissionItemRepo) GetByID(ctx context.Context, id string) (*domain.CommissionItem, error) {
	query := `SELECT ` + commItemColumns + ` FROM commission_items WHERE id = ?`
	it, err := scanCommissionItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get commission item: %w", err)
	}
	return it, nil
}

func (r *CommissionItemRepo) List(ctx context.Context, f domain.ItemFilter) ([]*domain.CommissionItem, error) {
	query := `SELECT ` + commItemColumns + ` FROM commission_items WHERE 1=1`
	var args []any

	if !f.IncludeUnavailable {
		query += ` AND is_available = 1`
	}
	if f.SellerID != "" {
		query += ` AND seller_id = ?`
		args = append(args, f.SellerID)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.MinPrice != nil {
		query += ` AND price >= ?`
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query += ` AND price <= ?`
		args = append(args, *f.MaxPrice)
	}
	if f.MaxTurnaround != nil {
		query += ` AND turnaround_days <= ?`
		args = append(args, *f.MaxTurnaround)
	}

	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list commission items: %w", err)
	}
	defer rows.Close()

	var items []*domain.CommissionItem
	for rows.Next() {
		it, err := scanCommissionItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commission item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *CommissionItemRepo) Update(ctx context.Context, it *domain.CommissionItem) error {
	query := `
		UPDATE commission_items
		SET title = ?, description = ?, price = ?, category = ?, tags = ?, images = ?, turnaround_days = ?, is_available = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		it.Title,
		it.Description,
		it.Price,
		it.Category,
		marshalList(it.Tags),
		marshalList(it.Images),
		it.TurnaroundDays,
		it.IsAvailable,
		it.ID,
	)
	if err != nil {
		return fmt.Errorf("update commission item: %w", err)
	}
	return requireRow(res)
}

func (r *CommissionItemRepo) SetAvailability(ctx context.Context, id string, isAvailable bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE commission_items SET is_available = ? WHERE id = ?`, isAvailable, id)
	if err != nil {
		return fmt.Errorf("set commission availability: %w", err)
	}
	return requireRow(res)
}

func (r *CommissionItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM commission_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete commission item: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMarketplaceItem(row rowScanner) (*domain.MarketplaceItem, error) {
	it := &domain.MarketplaceItem{}
	var tags, images string
	err := row.Scan(
		&it.ID,
		&it.SellerID,
		&it.Title,
		&it.Description,
		&it.Price,
		&it.Category,
		&it.Condition,
		&tags,
		&images,
		&it.Status,
		&it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Tags = unmarshalList(tags)
	it.Images = unmarshalList(images)
	return it, nil
}

func scanCommissionItem(row rowScanner) (*domain.CommissionItem, error) {
	it := &domain.CommissionItem{}
	var tags, images string
	err := row.Scan(
		&it.ID,
		&it.SellerID,
		&it.Title,
		&it.Description,
		&it.Price,
		&it.Category,
		&tags,
		&images,
		&it.TurnaroundDays,
		&it.IsAvailable,
		&it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Tags = unmarshalList(tags)
	it.Images = unmarshalList(images)
	return it, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
