package service

import (
	"context"
	"fmt"

	"tartanmarket/internal/domain"
	"tartanmarket/internal/ids"
)

const maxMessageLen = 2000

// System message contents appended on status transitions.
const (
	soldMessageText            = "This item has been marked as sold."
	sellerCancelledMessageText = "The seller has cancelled this transaction."
	buyerCancelledMessageText  = "The buyer has cancelled this transaction."
)

// EventPublisher fans conversation events out to connected clients.
// The websocket hub implements it; a nil publisher disables fan-out.
type EventPublisher interface {
	Publish(userIDs []string, event any)
}

// ConversationService owns the conversation lifecycle: creation with the
// one-thread-per-(item, buyer) rule, messaging, read state, and the status
// state machine with its item side effect.
type ConversationService struct {
	conversations domain.ConversationRepository
	mpItems       domain.MarketplaceItemRepository
	commItems     domain.CommissionItemRepository
	events        EventPublisher
}

func NewConversationService(
	conversations domain.ConversationRepository,
	mpItems domain.MarketplaceItemRepository,
	commItems domain.CommissionItemRepository,
	events EventPublisher,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		mpItems:       mpItems,
		commItems:     commItems,
		events:        events,
	}
}

// StartInput describes a buyer opening a thread. When Item is set the seller
// is resolved from the item; otherwise SellerID must be given.
type StartInput struct {
	SellerID     string
	Item         *domain.ItemRef
	FirstMessage string
}

func (s *ConversationService) Start(ctx context.Context, buyerID string, in StartInput) (*domain.Conversation, error) {
	sellerID := in.SellerID
	if in.Item != nil {
		if !in.Item.Valid() {
			return nil, fmt.Errorf("%w: bad item reference", domain.ErrInvalidInput)
		}
		resolved, err := s.itemSeller(ctx, *in.Item)
		if err != nil {
			return nil, err
		}
		sellerID = resolved
	}
	if sellerID == "" {
		return nil, fmt.Errorf("%w: seller is required", domain.ErrInvalidInput)
	}
	if sellerID == buyerID {
		return nil, fmt.Errorf("%w: cannot start a conversation with yourself", domain.ErrInvalidInput)
	}

	existing, err := s.findExisting(ctx, buyerID, sellerID, in.Item)
	if err != nil {
		return nil, err
	}

	conv := existing
	if conv == nil {
		conv = &domain.Conversation{
			ID:       ids.New(),
			BuyerID:  buyerID,
			SellerID: sellerID,
			Item:     in.Item,
			Status:   domain.ConversationOngoing,
		}
		if err := s.conversations.Create(ctx, conv); err != nil {
			// Lost a creation race; the unique index guarantees the winner
			// is the thread we wanted.
			if err == domain.ErrConflict {
				conv, err = s.findExisting(ctx, buyerID, sellerID, in.Item)
				if err != nil {
					return nil, err
				}
				if conv == nil {
					return nil, domain.ErrConflict
				}
			} else {
				return nil, err
			}
		}
	}

	if in.FirstMessage != "" {
		if _, err := s.appendUserMessage(ctx, conv, buyerID, in.FirstMessage); err != nil {
			return nil, err
		}
	}
	return conv, nil
}

func (s *ConversationService) findExisting(ctx context.Context, buyerID, sellerID string, ref *domain.ItemRef) (*domain.Conversation, error) {
	if ref != nil {
		return s.conversations.FindForItemAndBuyer(ctx, *ref, buyerID)
	}
	return s.conversations.FindDirect(ctx, buyerID, sellerID)
}

func (s *ConversationService) ListForUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	return s.conversations.ListForUser(ctx, userID)
}

func (s *ConversationService) Get(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, domain.ErrNotFound
	}
	if !conv.Participant(userID) {
		return nil, domain.ErrForbidden
	}
	return conv, nil
}

func (s *ConversationService) SendMessage(ctx context.Context, senderID, conversationID, content string) (*domain.Message, error) {
	conv, err := s.Get(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}
	return s.appendUserMessage(ctx, conv, senderID, content)
}

func (s *ConversationService) appendUserMessage(ctx context.Context, conv *domain.Conversation, senderID, content string) (*domain.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: message content cannot be empty", domain.ErrInvalidInput)
	}
	if len([]rune(content)) > maxMessageLen {
		return nil, fmt.Errorf("%w: message content exceeds %d characters", domain.ErrInvalidInput, maxMessageLen)
	}

	msg := &domain.Message{
		ID:             ids.New(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     conv.OtherParticipant(senderID),
		Content:        content,
	}
	if err := s.conversations.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	s.publish(conv, map[string]any{
		"type":    "message.created",
		"message": msg,
	})
	return msg, nil
}

func (s *ConversationService) ListMessages(ctx context.Context, conversationID, userID string, limit int) ([]*domain.Message, error) {
	if _, err := s.Get(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	return s.conversations.ListMessages(ctx, conversationID, limit)
}

func (s *ConversationService) MarkRead(ctx context.Context, conversationID, readerID string) error {
	conv, err := s.Get(ctx, conversationID, readerID)
	if err != nil {
		return err
	}
	if err := s.conversations.MarkRead(ctx, conversationID, readerID); err != nil {
		return err
	}
	s.publish(conv, map[string]any{
		"type":            "conversation.read",
		"conversation_id": conversationID,
		"reader_id":       readerID,
	})
	return nil
}

// Transition moves a conversation out of ongoing. Completion and seller
// cancellation are seller-only; buyer cancellation is buyer-only. The status
// write is a compare-and-set, so a racing duplicate action gets ErrConflict
// and applies no side effect. Completing a marketplace-item thread marks the
// item sold and appends exactly one system message.
func (s *ConversationService) Transition(ctx context.Context, callerID, conversationID string, to domain.ConversationStatus) (*domain.Conversation, error) {
	if !to.Valid() || to == domain.ConversationOngoing {
		return nil, fmt.Errorf("%w: invalid target status %q", domain.ErrInvalidInput, to)
	}

	conv, err := s.Get(ctx, conversationID, callerID)
	if err != nil {
		return nil, err
	}

	switch to {
	case domain.ConversationCompleted, domain.ConversationSellerCancelled:
		if callerID != conv.SellerID {
			return nil, domain.ErrForbidden
		}
	case domain.ConversationBuyerCancelled:
		if callerID != conv.BuyerID {
			return nil, domain.ErrForbidden
		}
	}

	if err := s.conversations.UpdateStatus(ctx, conversationID, to); err != nil {
		return nil, err
	}
	conv.Status = to

	if to == domain.ConversationCompleted && conv.Item != nil && conv.Item.Kind == domain.ItemKindMarketplace {
		if err := s.mpItems.UpdateStatus(ctx, conv.Item.ID, domain.ItemStatusSold); err != nil {
			return nil, fmt.Errorf("mark item sold: %w", err)
		}
	}

	sysMsg := &domain.Message{
		ID:             ids.New(),
		ConversationID: conv.ID,
		SenderID:       callerID,
		ReceiverID:     conv.OtherParticipant(callerID),
		Content:        systemMessageFor(to),
		IsSystem:       true,
	}
	if err := s.conversations.AppendMessage(ctx, sysMsg); err != nil {
		return nil, fmt.Errorf("append system message: %w", err)
	}

	s.publish(conv, map[string]any{
		"type":            "conversation.status",
		"conversation_id": conv.ID,
		"status":          to,
		"message":         sysMsg,
	})
	return conv, nil
}

func systemMessageFor(to domain.ConversationStatus) string {
	switch to {
	case domain.ConversationCompleted:
		return soldMessageText
	case domain.ConversationSellerCancelled:
		return sellerCancelledMessageText
	case domain.ConversationBuyerCancelled:
		return buyerCancelledMessageText
	}
	return ""
}

func (s *ConversationService) itemSeller(ctx context.Context, ref domain.ItemRef) (string, error) {
	switch ref.Kind {
	case domain.ItemKindMarketplace:
		it, err := s.mpItems.GetByID(ctx, ref.ID)
		if err != nil {
			return "", fmt.Errorf("get marketplace item: %w", err)
		}
		if it == nil {
			return "", domain.ErrNotFound
		}
		return it.SellerID, nil
	case domain.ItemKindCommission:
		it, err := s.commItems.GetByID(ctx, ref.ID)
		if err != nil {
			return "", fmt.Errorf("get commission item: %w", err)
		}
		if it == nil {
			return "", domain.ErrNotFound
		}
		return it.SellerID, nil
	default:
		return "", fmt.Errorf("%w: unknown item kind %q", domain.ErrInvalidInput, ref.Kind)
	}
}

func (s *ConversationService) publish(conv *domain.Conversation, event any) {
	if s.events == nil {
		return
	}
	s.events.Publish([]string{conv.BuyerID, conv.SellerID}, event)
}
