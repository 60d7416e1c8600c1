package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"tartanmarket/internal/domain"
)

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

var _ domain.ConversationRepository = (*ConversationRepo)(nil)

const convColumns = `id, buyer_id, seller_id, item_type, item_id, last_message_text, last_message_at, last_message_sender_id, status, created_at`

func (r *ConversationRepo) Create(ctx context.Context, c *domain.Conversation) error {
	var itemType, itemID any
	if c.Item != nil {
		itemType = string(c.Item.Kind)
		itemID = c.Item.ID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversations (id, buyer_id, seller_id, item_type, item_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, c.ID, c.BuyerID, c.SellerID, itemType, itemID, c.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `SELECT ` + convColumns + ` FROM conversations WHERE id = ?`
	c, err := scanConversation(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

func (r *ConversationRepo) FindForItemAndBuyer(ctx context.Context, ref domain.ItemRef, buyerID string) (*domain.Conversation, error) {
	query := `
		SELECT ` + convColumns + `
		FROM conversations
		WHERE item_type = ? AND item_id = ? AND buyer_id = ?
		LIMIT 1
	`
	c, err := scanConversation(r.db.QueryRowContext(ctx, query, ref.Kind, ref.ID, buyerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item conversation: %w", err)
	}
	return c, nil
}

func (r *ConversationRepo) FindDirect(ctx context.Context, buyerID, sellerID string) (*domain.Conversation, error) {
	query := `
		SELECT ` + convColumns + `
		FROM conversations
		WHERE item_id IS NULL
		  AND ((buyer_id = ? AND seller_id = ?) OR (buyer_id = ? AND seller_id = ?))
		LIMIT 1
	`
	c, err := scanConversation(r.db.QueryRowContext(ctx, query, buyerID, sellerID, sellerID, buyerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find direct conversation: %w", err)
	}
	return c, nil
}

func (r *ConversationRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	// Unread counting is gated on the ongoing status so terminal
	// conversations never light up badges.
	query := `
		SELECT ` + convColumns + `,
			CASE WHEN c.status = 'ongoing' THEN (
				SELECT COUNT(*) FROM messages m
				WHERE m.conversation_id = c.id AND m.receiver_id = ? AND m.is_read = 0 AND m.is_system = 0
			) ELSE 0 END AS unread_count
		FROM conversations c
		WHERE c.buyer_id = ? OR c.seller_id = ?
		ORDER BY COALESCE(c.last_message_at, c.created_at) DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var res []*domain.Conversation
	for rows.Next() {
		c := &domain.Conversation{}
		var itemType, itemID sql.NullString
		var lastAt sql.NullTime
		if err := rows.Scan(
			&c.ID,
			&c.BuyerID,
			&c.SellerID,
			&itemType,
			&itemID,
			&c.LastMessageText,
			&lastAt,
			&c.LastMessageSenderID,
			&c.Status,
			&c.CreatedAt,
			&c.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		attachItemRef(c, itemType, itemID)
		if lastAt.Valid {
			t := lastAt.Time
			c.LastMessageAt = &t
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// UpdateStatus performs the single allowed transition, ongoing -> terminal,
// as a compare-and-set. A concurrent second transition loses the race and
// gets ErrConflict instead of double-applying.
func (r *ConversationRepo) UpdateStatus(ctx context.Context, id string, to domain.ConversationStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE conversations SET status = ? WHERE id = ? AND status = ?
	`, to, id, domain.ConversationOngoing)
	if err != nil {
		return fmt.Errorf("update conversation status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM conversations WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check conversation: %w", err)
	}
	return domain.ErrConflict
}

// AppendMessage inserts the message and refreshes the conversation's
// denormalized last-message projection in the same transaction, so the two
// can never drift.
func (r *ConversationRepo) AppendMessage(ctx context.Context, m *domain.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content, is_system, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, m.ID, m.ConversationID, m.SenderID, m.ReceiverID, m.Content, m.IsSystem, m.IsRead); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE conversations
		SET last_message_text = ?, last_message_at = CURRENT_TIMESTAMP, last_message_sender_id = ?
		WHERE id = ?
	`, m.Content, m.SenderID, m.ConversationID); err != nil {
		return fmt.Errorf("update last message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, receiver_id, content, is_system, is_read, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id ASC
	`
	var args []any
	args = append(args, conversationID)
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&m.SenderID,
			&m.ReceiverID,
			&m.Content,
			&m.IsSystem,
			&m.IsRead,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (r *ConversationRepo) MarkRead(ctx context.Context, conversationID, readerID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE messages SET is_read = 1
		WHERE conversation_id = ? AND receiver_id = ? AND is_read = 0
	`, conversationID, readerID)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}

func (r *ConversationRepo) UnreadCount(ctx context.Context, conversationID, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE conversation_id = ? AND receiver_id = ? AND is_read = 0 AND is_system = 0
	`, conversationID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func scanConversation(row rowScanner) (*domain.Conversation, error) {
	c := &domain.Conversation{}
	var itemType, itemID sql.NullString
	var lastAt sql.NullTime
	err := row.Scan(
		&c.ID,
		&c.BuyerID,
		&c.SellerID,
		&itemType,
		&itemID,
		&c.LastMessageText,
		&lastAt,
		&c.LastMessageSenderID,
		&c.Status,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	attachItemRef(c, itemType, itemID)
	if lastAt.Valid {
		t := lastAt.Time
		c.LastMessageAt = &t
	}
	return c, nil
}

func attachItemRef(c *domain.Conversation, itemType, itemID sql.NullString) {
	if itemType.Valid && itemID.Valid {
		c.Item = &domain.ItemRef{Kind: domain.ItemKind(itemType.String), ID: itemID.String}
	}
}
