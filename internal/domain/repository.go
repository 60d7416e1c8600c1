package domain

import (
	"context"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
}

// ItemFilter narrows item listings. Zero values mean "no constraint".
type ItemFilter struct {
	SellerID      string
	Category      string
	Condition     string
	MinPrice      *float64
	MaxPrice      *float64
	MaxTurnaround *int

	// IncludeUnavailable keeps sold/pending/unavailable items in the result,
	// used for owner shop views.
	IncludeUnavailable bool

	Limit int
}

// MarketplaceItemRepository defines persistence operations for marketplace items.
type MarketplaceItemRepository interface {
	Create(ctx context.Context, it *MarketplaceItem) error
	GetByID(ctx context.Context, id string) (*MarketplaceItem, error)
	List(ctx context.Context, f ItemFilter) ([]*MarketplaceItem, error)
	Update(ctx context.Context, it *MarketplaceItem) error
	UpdateStatus(ctx context.Context, id string, status ItemStatus) error
	Delete(ctx context.Context, id string) error
}

// CommissionItemRepository defines persistence operations for commission items.
type CommissionItemRepository interface {
	Create(ctx context.Context, it *CommissionItem) error
	GetByID(ctx context.Context, id string) (*CommissionItem, error)
	List(ctx context.Context, f ItemFilter) ([]*CommissionItem, error)
	Update(ctx context.Context, it *CommissionItem) error
	SetAvailability(ctx context.Context, id string, isAvailable bool) error
	Delete(ctx context.Context, id string) error
}

// FavoriteRepository stores item references favorited by users.
// Add and Remove are idempotent.
type FavoriteRepository interface {
	Add(ctx context.Context, userID string, ref ItemRef) error
	Remove(ctx context.Context, userID string, ref ItemRef) error
	List(ctx context.Context, userID string) ([]ItemRef, error)
}

// ConversationRepository defines persistence operations for conversations
// and their message logs.
type ConversationRepository interface {
	Create(ctx context.Context, c *Conversation) error
	GetByID(ctx context.Context, id string) (*Conversation, error)

	// FindForItemAndBuyer returns the conversation a buyer already has about
	// an item, or nil.
	FindForItemAndBuyer(ctx context.Context, ref ItemRef, buyerID string) (*Conversation, error)

	// FindDirect returns the item-less conversation between two users, or nil.
	FindDirect(ctx context.Context, buyerID, sellerID string) (*Conversation, error)

	// ListForUser returns conversations the user participates in, newest
	// activity first, with UnreadCount populated for that user.
	ListForUser(ctx context.Context, userID string) ([]*Conversation, error)

	// UpdateStatus transitions a conversation from ongoing to the given
	// status as a single compare-and-set. It returns ErrConflict when the
	// conversation is no longer ongoing and ErrNotFound when it is missing.
	UpdateStatus(ctx context.Context, id string, to ConversationStatus) error

	// AppendMessage inserts a message and refreshes the conversation's
	// denormalized last-message fields in one transaction.
	AppendMessage(ctx context.Context, m *Message) error

	ListMessages(ctx context.Context, conversationID string, limit int) ([]*Message, error)

	// MarkRead flags every message addressed to readerID in the conversation
	// as read.
	MarkRead(ctx context.Context, conversationID, readerID string) error

	UnreadCount(ctx context.Context, conversationID, userID string) (int, error)
}
