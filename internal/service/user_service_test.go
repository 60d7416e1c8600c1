package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tartanmarket/internal/domain"
	"tartanmarket/internal/service"
)

func newUserService(users *MockUserRepo, favs *MockFavoriteRepo, mp *MockMarketplaceItemRepo, comm *MockCommissionItemRepo) *service.UserService {
	if users == nil {
		users = new(MockUserRepo)
	}
	if favs == nil {
		favs = new(MockFavoriteRepo)
	}
	if mp == nil {
		mp = new(MockMarketplaceItemRepo)
	}
	if comm == nil {
		comm = new(MockCommissionItemRepo)
	}
	return service.NewUserService(users, favs, mp, comm)
}

func TestResolveIdentity(t *testing.T) {
	t.Run("FirstSignInCreatesUser", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := newUserService(users, nil, nil, nil)

		users.On("GetByExternalID", mock.Anything, "auth0|abc").Return(nil, nil)
		users.On("GetByEmail", mock.Anything, "mwang@andrew.cmu.edu").Return(nil, nil)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ExternalID == "auth0|abc" && u.AndrewID == "mwang" && u.ID != ""
		})).Return(nil)

		user, err := svc.ResolveIdentity(context.Background(), service.Identity{
			Subject: "auth0|abc",
			Email:   "mwang@andrew.cmu.edu",
			Name:    "Mei Wang",
		})
		assert.NoError(t, err)
		assert.Equal(t, "mwang", user.AndrewID)
		assert.Equal(t, "Mei Wang", user.DisplayName)
	})

	t.Run("ExistingUserReturnedAsIs", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := newUserService(users, nil, nil, nil)

		existing := &domain.User{ID: "u1", ExternalID: "auth0|abc"}
		users.On("GetByExternalID", mock.Anything, "auth0|abc").Return(existing, nil)

		user, err := svc.ResolveIdentity(context.Background(), service.Identity{Subject: "auth0|abc"})
		assert.NoError(t, err)
		assert.Equal(t, existing, user)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("EmailMatchLinksExternalID", func(t *testing.T) {
		users := new(MockUserRepo)
		svc := newUserService(users, nil, nil, nil)

		existing := &domain.User{ID: "u1", Email: "mwang@andrew.cmu.edu"}
		users.On("GetByExternalID", mock.Anything, "auth0|new").Return(nil, nil)
		users.On("GetByEmail", mock.Anything, "mwang@andrew.cmu.edu").Return(existing, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ID == "u1" && u.ExternalID == "auth0|new"
		})).Return(nil)

		user, err := svc.ResolveIdentity(context.Background(), service.Identity{
			Subject: "auth0|new",
			Email:   "mwang@andrew.cmu.edu",
		})
		assert.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("MissingSubject", func(t *testing.T) {
		svc := newUserService(nil, nil, nil, nil)
		_, err := svc.ResolveIdentity(context.Background(), service.Identity{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestAddFavorite(t *testing.T) {
	t.Run("ChecksItemExists", func(t *testing.T) {
		favs := new(MockFavoriteRepo)
		mp := new(MockMarketplaceItemRepo)
		svc := newUserService(nil, favs, mp, nil)

		mp.On("GetByID", mock.Anything, "itemX").Return(&domain.MarketplaceItem{ID: "itemX"}, nil)
		favs.On("Add", mock.Anything, "u1", domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "itemX"}).Return(nil)

		err := svc.AddFavorite(context.Background(), "u1", domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "itemX"})
		assert.NoError(t, err)
	})

	t.Run("MissingItem", func(t *testing.T) {
		favs := new(MockFavoriteRepo)
		mp := new(MockMarketplaceItemRepo)
		svc := newUserService(nil, favs, mp, nil)

		mp.On("GetByID", mock.Anything, "ghost").Return(nil, nil)

		err := svc.AddFavorite(context.Background(), "u1", domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "ghost"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		favs.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BadRef", func(t *testing.T) {
		svc := newUserService(nil, nil, nil, nil)
		err := svc.AddFavorite(context.Background(), "u1", domain.ItemRef{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestUpdateProfile(t *testing.T) {
	users := new(MockUserRepo)
	svc := newUserService(users, nil, nil, nil)

	users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", DisplayName: "Old"}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.DisplayName == "New" && u.ShopTitle == "Mei's prints"
	})).Return(nil)

	name := "New"
	title := "Mei's prints"
	user, err := svc.UpdateProfile(context.Background(), "u1", service.ProfileUpdateInput{
		DisplayName: &name,
		ShopTitle:   &title,
	})
	assert.NoError(t, err)
	assert.Equal(t, "New", user.DisplayName)
}
