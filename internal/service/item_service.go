package service

import (
	"context"
	"fmt"

	"tartanmarket/internal/domain"
	"tartanmarket/internal/ids"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 2000
	maxTags           = 10
)

// ItemService owns CRUD and filtered listing for both item kinds. Items are
// exclusively owned by their seller; the only other status mutator is the
// conversation-completion side effect in ConversationService.
type ItemService struct {
	mpItems   domain.MarketplaceItemRepository
	commItems domain.CommissionItemRepository
}

func NewItemService(mpItems domain.MarketplaceItemRepository, commItems domain.CommissionItemRepository) *ItemService {
	return &ItemService{mpItems: mpItems, commItems: commItems}
}

// MarketplaceItemInput carries the fields a seller controls.
type MarketplaceItemInput struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Condition   string
	Tags        []string
	Images      []string
}

func (in MarketplaceItemInput) validate() error {
	if err := validateListing(in.Title, in.Description, in.Price, in.Tags); err != nil {
		return err
	}
	return nil
}

func (s *ItemService) CreateMarketplaceItem(ctx context.Context, sellerID string, in MarketplaceItemInput) (*domain.MarketplaceItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	it := &domain.MarketplaceItem{
		ID:          ids.New(),
		SellerID:    sellerID,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Condition:   in.Condition,
		Tags:        in.Tags,
		Images:      in.Images,
		Status:      domain.ItemStatusAvailable,
	}
	if err := s.mpItems.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *ItemService) GetMarketplaceItem(ctx context.Context, id string) (*domain.MarketplaceItem, error) {
	it, err := s.mpItems.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, domain.ErrNotFound
	}
	return it, nil
}

func (s *ItemService) ListMarketplaceItems(ctx context.Context, f domain.ItemFilter) ([]*domain.MarketplaceItem, error) {
	return s.mpItems.List(ctx, f)
}

func (s *ItemService) UpdateMarketplaceItem(ctx context.Context, callerID, id string, in MarketplaceItemInput) (*domain.MarketplaceItem, error) {
	it, err := s.GetMarketplaceItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.SellerID != callerID {
		return nil, domain.ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	it.Title = in.Title
	it.Description = in.Description
	it.Price = in.Price
	it.Category = in.Category
	it.Condition = in.Condition
	it.Tags = in.Tags
	it.Images = in.Images
	if err := s.mpItems.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// SetMarketplaceStatus lets the owner move an item through
// available/pending/sold directly, e.g. reserving an item for a buyer.
func (s *ItemService) SetMarketplaceStatus(ctx context.Context, callerID, id string, status domain.ItemStatus) (*domain.MarketplaceItem, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown item status %q", domain.ErrInvalidInput, status)
	}
	it, err := s.GetMarketplaceItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.SellerID != callerID {
		return nil, domain.ErrForbidden
	}
	if err := s.mpItems.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	it.Status = status
	return it, nil
}

func (s *ItemService) DeleteMarketplaceItem(ctx context.Context, callerID, id string) error {
	it, err := s.GetMarketplaceItem(ctx, id)
	if err != nil {
		return err
	}
	if it.SellerID != callerID {
		return domain.ErrForbidden
	}
	return s.mpItems.Delete(ctx, id)
}

// CommissionItemInput carries the fields a seller controls.
type CommissionItemInput struct {
	Title          string
	Description    string
	Price          float64
	Category       string
	Tags           []string
	Images         []string
	TurnaroundDays int
}

func (in CommissionItemInput) validate() error {
	if err := validateListing(in.Title, in.Description, in.Price, in.Tags); err != nil {
		return err
	}
	if in.TurnaroundDays <= 0 {
		return fmt.Errorf("%w: turnaround days must be positive", domain.ErrInvalidInput)
	}
	return nil
}

func (s *ItemService) CreateCommissionItem(ctx context.Context, sellerID string, in CommissionItemInput) (*domain.CommissionItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	it := &domain.CommissionItem{
		ID:             ids.New(),
		SellerID:       sellerID,
		Title:          in.Title,
		Description:    in.Description,
		Price:          in.Price,
		Category:       in.Category,
		Tags:           in.Tags,
		Images:         in.Images,
		TurnaroundDays: in.TurnaroundDays,
		IsAvailable:    true,
	}
	if err := s.commItems.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *ItemService) GetCommissionItem(ctx context.Context, id string) (*domain.CommissionItem, error) {
	it, err := s.commItems.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, domain.ErrNotFound
	}
	return it, nil
}

func (s *ItemService) ListCommissionItems(ctx context.Context, f domain.ItemFilter) ([]*domain.CommissionItem, error) {
	return s.commItems.List(ctx, f)
}

func (s *ItemService) UpdateCommissionItem(ctx context.Context, callerID, id string, in CommissionItemInput) (*domain.CommissionItem, error) {
	it, err := s.GetCommissionItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.SellerID != callerID {
		return nil, domain.ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	it.Title = in.Title
	it.Description = in.Description
	it.Price = in.Price
	it.Category = in.Category
	it.Tags = in.Tags
	it.Images = in.Images
	it.TurnaroundDays = in.TurnaroundDays
	if err := s.commItems.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// SetCommissionAvailability toggles commission availability directly; unlike
// marketplace status this is not gated by any workflow.
func (s *ItemService) SetCommissionAvailability(ctx context.Context, callerID, id string, isAvailable bool) (*domain.CommissionItem, error) {
	it, err := s.GetCommissionItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.SellerID != callerID {
		return nil, domain.ErrForbidden
	}
	if err := s.commItems.SetAvailability(ctx, id, isAvailable); err != nil {
		return nil, err
	}
	it.IsAvailable = isAvailable
	return it, nil
}

func (s *ItemService) DeleteCommissionItem(ctx context.Context, callerID, id string) error {
	it, err := s.GetCommissionItem(ctx, id)
	if err != nil {
		return err
	}
	if it.SellerID != callerID {
		return domain.ErrForbidden
	}
	return s.commItems.Delete(ctx, id)
}

func validateListing(title, description string, price float64, tags []string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if len([]rune(title)) > maxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", domain.ErrInvalidInput, maxTitleLen)
	}
	if len([]rune(description)) > maxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidInput, maxDescriptionLen)
	}
	if price <= 0 {
		return fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	}
	if len(tags) > maxTags {
		return fmt.Errorf("%w: at most %d tags allowed", domain.ErrInvalidInput, maxTags)
	}
	return nil
}
