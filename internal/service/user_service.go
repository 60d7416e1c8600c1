package service

import (
	"context"
	"fmt"
	"strings"

	"tartanmarket/internal/domain"
	"tartanmarket/internal/ids"
)

// UserService resolves external identities to user records and owns
// profile and favorites operations.
type UserService struct {
	users     domain.UserRepository
	favorites domain.FavoriteRepository
	mpItems   domain.MarketplaceItemRepository
	commItems domain.CommissionItemRepository
}

func NewUserService(
	users domain.UserRepository,
	favorites domain.FavoriteRepository,
	mpItems domain.MarketplaceItemRepository,
	commItems domain.CommissionItemRepository,
) *UserService {
	return &UserService{
		users:     users,
		favorites: favorites,
		mpItems:   mpItems,
		commItems: commItems,
	}
}

// Identity carries the claims the auth provider asserts about a user.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

// ResolveIdentity maps an external identity to the internal user record,
// creating it on first sign-in. Lookup is by external subject first, then by
// email so pre-provisioned accounts get linked instead of duplicated.
func (s *UserService) ResolveIdentity(ctx context.Context, id Identity) (*domain.User, error) {
	if id.Subject == "" {
		return nil, fmt.Errorf("%w: missing auth subject", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByExternalID(ctx, id.Subject)
	if err != nil {
		return nil, fmt.Errorf("lookup by subject: %w", err)
	}
	if user != nil {
		return user, nil
	}

	if id.Email != "" {
		user, err = s.users.GetByEmail(ctx, id.Email)
		if err != nil {
			return nil, fmt.Errorf("lookup by email: %w", err)
		}
		if user != nil {
			user.ExternalID = id.Subject
			if err := s.users.Update(ctx, user); err != nil {
				return nil, fmt.Errorf("link external id: %w", err)
			}
			return user, nil
		}
	}

	user = &domain.User{
		ID:          ids.New(),
		ExternalID:  id.Subject,
		Email:       id.Email,
		AndrewID:    andrewIDFromEmail(id.Email),
		DisplayName: id.Name,
		AvatarURL:   id.AvatarURL,
	}
	if user.DisplayName == "" {
		user.DisplayName = user.AndrewID
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// ProfileUpdateInput carries optional profile edits; nil fields are untouched.
type ProfileUpdateInput struct {
	DisplayName     *string
	AvatarURL       *string
	ShopTitle       *string
	ShopDescription *string
	ShopBannerURL   *string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdateInput) (*domain.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		if *in.DisplayName == "" {
			return nil, fmt.Errorf("%w: display name cannot be empty", domain.ErrInvalidInput)
		}
		user.DisplayName = *in.DisplayName
	}
	if in.AvatarURL != nil {
		user.AvatarURL = *in.AvatarURL
	}
	if in.ShopTitle != nil {
		if len([]rune(*in.ShopTitle)) > 100 {
			return nil, fmt.Errorf("%w: shop title exceeds 100 characters", domain.ErrInvalidInput)
		}
		user.ShopTitle = *in.ShopTitle
	}
	if in.ShopDescription != nil {
		user.ShopDescription = *in.ShopDescription
	}
	if in.ShopBannerURL != nil {
		user.ShopBannerURL = *in.ShopBannerURL
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// AddFavorite records the item in the user's favorites. Adding twice is the
// same as adding once.
func (s *UserService) AddFavorite(ctx context.Context, userID string, ref domain.ItemRef) error {
	if !ref.Valid() {
		return fmt.Errorf("%w: bad item reference", domain.ErrInvalidInput)
	}
	exists, err := s.itemExists(ctx, ref)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return s.favorites.Add(ctx, userID, ref)
}

// RemoveFavorite removes the item from the user's favorites. Removing an
// absent favorite is a no-op.
func (s *UserService) RemoveFavorite(ctx context.Context, userID string, ref domain.ItemRef) error {
	if !ref.Valid() {
		return fmt.Errorf("%w: bad item reference", domain.ErrInvalidInput)
	}
	return s.favorites.Remove(ctx, userID, ref)
}

func (s *UserService) ListFavorites(ctx context.Context, userID string) ([]domain.ItemRef, error) {
	return s.favorites.List(ctx, userID)
}

func (s *UserService) itemExists(ctx context.Context, ref domain.ItemRef) (bool, error) {
	switch ref.Kind {
	case domain.ItemKindMarketplace:
		it, err := s.mpItems.GetByID(ctx, ref.ID)
		if err != nil {
			return false, fmt.Errorf("check marketplace item: %w", err)
		}
		return it != nil, nil
	case domain.ItemKindCommission:
		it, err := s.commItems.GetByID(ctx, ref.ID)
		if err != nil {
			return false, fmt.Errorf("check commission item: %w", err)
		}
		return it != nil, nil
	default:
		return false, fmt.Errorf("%w: unknown item kind %q", domain.ErrInvalidInput, ref.Kind)
	}
}

// andrewIDFromEmail derives the campus handle from the institutional
// email's local part.
func andrewIDFromEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return ""
	}
	return strings.ToLower(email[:at])
}
