package domain

import "time"

// User represents an application user. Identity comes from the external
// auth provider; the andrew ID is derived from the institutional email's
// local part on first sign-in.
type User struct {
	ID              string    `db:"id" json:"id"`
	ExternalID      string    `db:"external_id" json:"-"`
	Email           string    `db:"email" json:"email"`
	AndrewID        string    `db:"andrew_id" json:"andrew_id"`
	DisplayName     string    `db:"display_name" json:"display_name"`
	AvatarURL       string    `db:"avatar_url" json:"avatar_url,omitempty"`
	ShopTitle       string    `db:"shop_title" json:"shop_title,omitempty"`
	ShopDescription string    `db:"shop_description" json:"shop_description,omitempty"`
	ShopBannerURL   string    `db:"shop_banner_url" json:"shop_banner_url,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ItemStatus is the lifecycle of a marketplace item.
type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "available"
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusSold      ItemStatus = "sold"
)

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusAvailable, ItemStatusPending, ItemStatusSold:
		return true
	}
	return false
}

// MarketplaceItem is a fixed-stock good with an explicit availability status.
type MarketplaceItem struct {
	ID          string     `db:"id" json:"id"`
	SellerID    string     `db:"seller_id" json:"seller_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Price       float64    `db:"price" json:"price"`
	Category    string     `db:"category" json:"category"`
	Condition   string     `db:"condition" json:"condition"`
	Tags        []string   `db:"tags" json:"tags"`
	Images      []string   `db:"images" json:"images"`
	Status      ItemStatus `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// CommissionItem is a service offering with a turnaround time, not a
// fixed-stock good. Availability is a plain boolean toggled by the owner.
type CommissionItem struct {
	ID             string    `db:"id" json:"id"`
	SellerID       string    `db:"seller_id" json:"seller_id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	Price          float64   `db:"price" json:"price"`
	Category       string    `db:"category" json:"category"`
	Tags           []string  `db:"tags" json:"tags"`
	Images         []string  `db:"images" json:"images"`
	TurnaroundDays int       `db:"turnaround_days" json:"turnaround_days"`
	IsAvailable    bool      `db:"is_available" json:"is_available"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ConversationStatus is the transaction lifecycle carried on a conversation.
// Every status other than ongoing is terminal.
type ConversationStatus string

const (
	ConversationOngoing         ConversationStatus = "ongoing"
	ConversationCompleted       ConversationStatus = "completed"
	ConversationBuyerCancelled  ConversationStatus = "buyer_cancelled"
	ConversationSellerCancelled ConversationStatus = "seller_cancelled"
)

// Valid reports whether s is a known conversation status.
func (s ConversationStatus) Valid() bool {
	switch s {
	case ConversationOngoing, ConversationCompleted, ConversationBuyerCancelled, ConversationSellerCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s ConversationStatus) Terminal() bool {
	return s != ConversationOngoing
}

// Conversation ties a buyer and seller together, optionally anchored to one
// item. The last_message_* fields are a denormalized projection of the
// message log, written in the same transaction as every message insert.
type Conversation struct {
	ID                  string             `db:"id" json:"id"`
	BuyerID             string             `db:"buyer_id" json:"buyer_id"`
	SellerID            string             `db:"seller_id" json:"seller_id"`
	Item                *ItemRef           `json:"item,omitempty"`
	LastMessageText     string             `db:"last_message_text" json:"last_message_text"`
	LastMessageAt       *time.Time         `db:"last_message_at" json:"last_message_at,omitempty"`
	LastMessageSenderID string             `db:"last_message_sender_id" json:"last_message_sender_id,omitempty"`
	Status              ConversationStatus `db:"status" json:"status"`
	CreatedAt           time.Time          `db:"created_at" json:"created_at"`

	// UnreadCount is computed per caller when listing; not persisted.
	UnreadCount int `db:"-" json:"unread_count"`
}

// Participant reports whether userID is one of the two conversation members.
func (c *Conversation) Participant(userID string) bool {
	return userID == c.BuyerID || userID == c.SellerID
}

// OtherParticipant returns the counterparty of userID.
func (c *Conversation) OtherParticipant(userID string) string {
	if userID == c.BuyerID {
		return c.SellerID
	}
	return c.BuyerID
}

// Message is a single entry in a conversation's append-only log. System
// messages announce status transitions and are never counted as unread.
type Message struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	SenderID       string    `db:"sender_id" json:"sender_id"`
	ReceiverID     string    `db:"receiver_id" json:"receiver_id"`
	Content        string    `db:"content" json:"content"`
	IsSystem       bool      `db:"is_system" json:"is_system"`
	IsRead         bool      `db:"is_read" json:"is_read"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
