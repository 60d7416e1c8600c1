package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tartanmarket/internal/domain"
	"tartanmarket/internal/service"
)

func ongoingConversation(item *domain.ItemRef) *domain.Conversation {
	return &domain.Conversation{
		ID:       "conv1",
		BuyerID:  "buyer",
		SellerID: "seller",
		Item:     item,
		Status:   domain.ConversationOngoing,
	}
}

func TestTransitionCompleted(t *testing.T) {
	convRepo := new(MockConversationRepo)
	mpRepo := new(MockMarketplaceItemRepo)
	commRepo := new(MockCommissionItemRepo)
	pub := &capturePublisher{}
	svc := service.NewConversationService(convRepo, mpRepo, commRepo, pub)

	item := &domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "itemX"}
	convRepo.On("GetByID", mock.Anything, "conv1").Return(ongoingConversation(item), nil)
	convRepo.On("UpdateStatus", mock.Anything, "conv1", domain.ConversationCompleted).Return(nil)
	mpRepo.On("UpdateStatus", mock.Anything, "itemX", domain.ItemStatusSold).Return(nil)

	var sysMsg *domain.Message
	convRepo.On("AppendMessage", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		sysMsg = m
		return m.IsSystem
	})).Return(nil).Once()

	conv, err := svc.Transition(context.Background(), "seller", "conv1", domain.ConversationCompleted)
	assert.NoError(t, err)
	assert.Equal(t, domain.ConversationCompleted, conv.Status)

	// Exactly one system message, announcing the sale, sent by the seller.
	convRepo.AssertNumberOfCalls(t, "AppendMessage", 1)
	assert.NotNil(t, sysMsg)
	assert.Equal(t, "This item has been marked as sold.", sysMsg.Content)
	assert.Equal(t, "seller", sysMsg.SenderID)
	assert.Equal(t, "buyer", sysMsg.ReceiverID)
	assert.True(t, sysMsg.IsSystem)

	mpRepo.AssertCalled(t, "UpdateStatus", mock.Anything, "itemX", domain.ItemStatusSold)
	assert.Len(t, pub.events, 1)
	assert.ElementsMatch(t, []string{"buyer", "seller"}, pub.events[0].UserIDs)
}

func TestTransitionCompletedBuyerForbidden(t *testing.T) {
	convRepo := new(MockConversationRepo)
	mpRepo := new(MockMarketplaceItemRepo)
	commRepo := new(MockCommissionItemRepo)
	svc := service.NewConversationService(convRepo, mpRepo, commRepo, nil)

	convRepo.On("GetByID", mock.Anything, "conv1").Return(ongoingConversation(nil), nil)

	_, err := svc.Transition(context.Background(), "buyer", "conv1", domain.ConversationCompleted)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	convRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionBuyerCancelled(t *testing.T) {
	convRepo := new(MockConversationRepo)
	mpRepo := new(MockMarketplaceItemRepo)
	commRepo := new(MockCommissionItemRepo)
	svc := service.NewConversationService(convRepo, mpRepo, commRepo, nil)

	convRepo.On("GetByID", mock.Anything, "conv1").Return(ongoingConversation(nil), nil)
	convRepo.On("UpdateStatus", mock.Anything, "conv1", domain.ConversationBuyerCancelled).Return(nil)
	convRepo.On("AppendMessage", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		return m.IsSystem && m.Content == "The buyer has cancelled this transaction."
	})).Return(nil)

	conv, err := svc.Transition(context.Background(), "buyer", "conv1", domain.ConversationBuyerCancelled)
	assert.NoError(t, err)
	assert.Equal(t, domain.ConversationBuyerCancelled, conv.Status)
	// No item side effect on cancellation.
	mpRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionSellerCancelledByBuyerForbidden(t *testing.T) {
	convRepo := new(MockConversationRepo)
	svc := service.NewConversationService(convRepo, new(MockMarketplaceItemRepo), new(MockCommissionItemRepo), nil)

	convRepo.On("GetByID", mock.Anything, "conv1").Return(ongoingConversation(nil), nil)

	_, err := svc.Transition(context.Background(), "buyer", "conv1", domain.ConversationSellerCancelled)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTransitionLostRace(t *testing.T) {
	convRepo := new(MockConversationRepo)
	mpRepo := new(MockMarketplaceItemRepo)
	svc := service.NewConversationService(convRepo, mpRepo, new(MockCommissionItemRepo), nil)

	item := &domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "itemX"}
	convRepo.On("GetByID", mock.Anything, "conv1").Return(ongoingConversation(item), nil)
	convRepo.On("UpdateStatus", mock.Anything, "conv1", domain.ConversationCompleted).Return(domain.ErrConflict)

	_, err := svc.Transition(context.Background(), "seller", "conv1", domain.ConversationCompleted)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// The loser of the race applies no side effects.
	mpRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	convRepo.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything)
}

func TestTransitionInvalidTarget(t *testing.T) {
	svc := service.NewConversationService(new(MockConversationRepo), new(MockMarketplaceItemRepo), new(MockCommissionItemRepo), nil)

	_, err := svc.Transition(context.Background(), "seller", "conv1", domain.ConversationOngoing)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Transition(context.Background(), "seller", "conv1", domain.ConversationStatus("refunded"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStartDeduplicates(t *testing.T) {
	convRepo := new(MockConversationRepo)
	mpRepo := new(MockMarketplaceItemRepo)
	svc := service.NewConversationService(convRepo, mpRepo, new(MockCommissionItemRepo), nil)

	item := domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "itemX"}
	mpRepo.On("GetByID", mock.Anything, "itemX").Return(&domain.MarketplaceItem{ID: "itemX", SellerID: "seller"}, nil)

	existing := ongoingConversation(&item)
	convRepo.On("FindForItemAndBuyer", mock.Anything, item, "buyer").Return(existing, nil)

	conv, err := svc.Start(context.Background(), "buyer", service.StartInput{Item: &item})
	assert.NoError(t, err)
	assert.Equal(t, existing.ID, conv.ID)
	convRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestStartRejectsSelfConversation(t *testing.T) {
	convRepo := new(MockConversationRepo)
	mpRepo := new(MockMarketplaceItemRepo)
	svc := service.NewConversationService(convRepo, mpRepo, new(MockCommissionItemRepo), nil)

	item := domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "itemX"}
	mpRepo.On("GetByID", mock.Anything, "itemX").Return(&domain.MarketplaceItem{ID: "itemX", SellerID: "seller"}, nil)

	_, err := svc.Start(context.Background(), "seller", service.StartInput{Item: &item})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStartCreatesAndSendsFirstMessage(t *testing.T) {
	convRepo := new(MockConversationRepo)
	mpRepo := new(MockMarketplaceItemRepo)
	svc := service.NewConversationService(convRepo, mpRepo, new(MockCommissionItemRepo), nil)

	item := domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "itemX"}
	mpRepo.On("GetByID", mock.Anything, "itemX").Return(&domain.MarketplaceItem{ID: "itemX", SellerID: "seller"}, nil)
	convRepo.On("FindForItemAndBuyer", mock.Anything, item, "buyer").Return(nil, nil)

	var created *domain.Conversation
	convRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Conversation) bool {
		created = c
		return c.BuyerID == "buyer" && c.SellerID == "seller" && c.Status == domain.ConversationOngoing
	})).Return(nil)
	convRepo.On("AppendMessage", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		return !m.IsSystem && m.Content == "Hi, is this still available?" && m.SenderID == "buyer" && m.ReceiverID == "seller"
	})).Return(nil)

	conv, err := svc.Start(context.Background(), "buyer", service.StartInput{
		Item:         &item,
		FirstMessage: "Hi, is this still available?",
	})
	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, created.ID, conv.ID)
	convRepo.AssertCalled(t, "AppendMessage", mock.Anything, mock.Anything)
}

func TestSendMessageRequiresParticipant(t *testing.T) {
	convRepo := new(MockConversationRepo)
	svc := service.NewConversationService(convRepo, new(MockMarketplaceItemRepo), new(MockCommissionItemRepo), nil)

	convRepo.On("GetByID", mock.Anything, "conv1").Return(ongoingConversation(nil), nil)

	_, err := svc.SendMessage(context.Background(), "stranger", "conv1", "hello")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
