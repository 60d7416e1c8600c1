package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tartanmarket/internal/domain"
	"tartanmarket/internal/service"
)

// handleResolveCurrentUser upserts the user record for the authenticated
// identity: created on first sign-in, returned as-is afterwards.
func handleResolveCurrentUser(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := CurrentIdentity(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		user, err := userSvc.ResolveIdentity(r.Context(), identity)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

type profileUpdateRequest struct {
	DisplayName     *string `json:"display_name"`
	AvatarURL       *string `json:"avatar_url"`
	ShopTitle       *string `json:"shop_title"`
	ShopDescription *string `json:"shop_description"`
	ShopBannerURL   *string `json:"shop_banner_url"`
}

func handleUpdateProfile(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		var req profileUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		user, err := userSvc.UpdateProfile(r.Context(), currentUser.ID, service.ProfileUpdateInput{
			DisplayName:     req.DisplayName,
			AvatarURL:       req.AvatarURL,
			ShopTitle:       req.ShopTitle,
			ShopDescription: req.ShopDescription,
			ShopBannerURL:   req.ShopBannerURL,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func handleGetUser(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "userID")
		user, err := userSvc.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

type favoriteRequest struct {
	ItemID string `json:"item_id"` // composite form, e.g. "mp_<id>"
	Action string `json:"action"`  // "add" | "remove"
}

func handleFavorites(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		var req favoriteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		ref, err := domain.ParseItemRef(req.ItemID)
		if err != nil {
			writeError(w, err)
			return
		}

		switch req.Action {
		case "add":
			err = userSvc.AddFavorite(r.Context(), currentUser.ID, ref)
		case "remove":
			err = userSvc.RemoveFavorite(r.Context(), currentUser.ID, ref)
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "action must be 'add' or 'remove'"})
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func handleListFavorites(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		refs, err := userSvc.ListFavorites(r.Context(), currentUser.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		composites := make([]string, 0, len(refs))
		for _, ref := range refs {
			composites = append(composites, ref.String())
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"favorites": composites,
			"refs":      refs,
		})
	}
}
