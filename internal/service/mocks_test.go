package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tartanmarket/internal/domain"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type MockMarketplaceItemRepo struct {
	mock.Mock
}

func (m *MockMarketplaceItemRepo) Create(ctx context.Context, it *domain.MarketplaceItem) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockMarketplaceItemRepo) GetByID(ctx context.Context, id string) (*domain.MarketplaceItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MarketplaceItem), args.Error(1)
}

func (m *MockMarketplaceItemRepo) List(ctx context.Context, f domain.ItemFilter) ([]*domain.MarketplaceItem, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MarketplaceItem), args.Error(1)
}

func (m *MockMarketplaceItemRepo) Update(ctx context.Context, it *domain.MarketplaceItem) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockMarketplaceItemRepo) UpdateStatus(ctx context.Context, id string, status domain.ItemStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockMarketplaceItemRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCommissionItemRepo struct {
	mock.Mock
}

func (m *MockCommissionItemRepo) Create(ctx context.Context, it *domain.CommissionItem) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockCommissionItemRepo) GetByID(ctx context.Context, id string) (*domain.CommissionItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionItem), args.Error(1)
}

func (m *MockCommissionItemRepo) List(ctx context.Context, f domain.ItemFilter) ([]*domain.CommissionItem, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CommissionItem), args.Error(1)
}

func (m *MockCommissionItemRepo) Update(ctx context.Context, it *domain.CommissionItem) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockCommissionItemRepo) SetAvailability(ctx context.Context, id string, isAvailable bool) error {
	args := m.Called(ctx, id, isAvailable)
	return args.Error(0)
}

func (m *MockCommissionItemRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockFavoriteRepo struct {
	mock.Mock
}

func (m *MockFavoriteRepo) Add(ctx context.Context, userID string, ref domain.ItemRef) error {
	args := m.Called(ctx, userID, ref)
	return args.Error(0)
}

func (m *MockFavoriteRepo) Remove(ctx context.Context, userID string, ref domain.ItemRef) error {
	args := m.Called(ctx, userID, ref)
	return args.Error(0)
}

func (m *MockFavoriteRepo) List(ctx context.Context, userID string) ([]domain.ItemRef, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ItemRef), args.Error(1)
}

type MockConversationRepo struct {
	mock.Mock
}

func (m *MockConversationRepo) Create(ctx context.Context, c *domain.Conversation) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockConversationRepo) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) FindForItemAndBuyer(ctx context.Context, ref domain.ItemRef, buyerID string) (*domain.Conversation, error) {
	args := m.Called(ctx, ref, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) FindDirect(ctx context.Context, buyerID, sellerID string) (*domain.Conversation, error) {
	args := m.Called(ctx, buyerID, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) UpdateStatus(ctx context.Context, id string, to domain.ConversationStatus) error {
	args := m.Called(ctx, id, to)
	return args.Error(0)
}

func (m *MockConversationRepo) AppendMessage(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockConversationRepo) ListMessages(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	args := m.Called(ctx, conversationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *MockConversationRepo) MarkRead(ctx context.Context, conversationID, readerID string) error {
	args := m.Called(ctx, conversationID, readerID)
	return args.Error(0)
}

func (m *MockConversationRepo) UnreadCount(ctx context.Context, conversationID, userID string) (int, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Int(0), args.Error(1)
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	events []capturedEvent
}

type capturedEvent struct {
	UserIDs []string
	Payload any
}

func (p *capturePublisher) Publish(userIDs []string, payload any) {
	p.events = append(p.events, capturedEvent{UserIDs: userIDs, Payload: payload})
}
