package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tartanmarket/internal/domain"
	"tartanmarket/internal/service"
)

func itemKindParam(r *http.Request) (domain.ItemKind, error) {
	kind := domain.ItemKind(chi.URLParam(r, "type"))
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown item type %q", domain.ErrInvalidInput, kind)
	}
	return kind, nil
}

// itemFilterFromQuery builds the declarative listing filter from query
// parameters shared by the browse and search endpoints.
func itemFilterFromQuery(r *http.Request) domain.ItemFilter {
	q := r.URL.Query()
	f := domain.ItemFilter{
		SellerID:  q.Get("seller_id"),
		Category:  q.Get("category"),
		Condition: q.Get("condition"),
	}
	if v := q.Get("min_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &p
		}
	}
	if v := q.Get("max_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &p
		}
	}
	if v := q.Get("max_turnaround"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			f.MaxTurnaround = &d
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}
	// Owner shop views include sold/pending/unavailable items.
	f.IncludeUnavailable = q.Get("include_unavailable") == "true" && f.SellerID != ""
	return f
}

type itemCreateRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	Category       string   `json:"category"`
	Condition      string   `json:"condition"`
	Tags           []string `json:"tags"`
	Images         []string `json:"images"`
	TurnaroundDays int      `json:"turnaround_days"`
}

func handleCreateItem(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		kind, err := itemKindParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		var req itemCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		switch kind {
		case domain.ItemKindMarketplace:
			it, err := itemSvc.CreateMarketplaceItem(r.Context(), currentUser.ID, service.MarketplaceItemInput{
				Title:       req.Title,
				Description: req.Description,
				Price:       req.Price,
				Category:    req.Category,
				Condition:   req.Condition,
				Tags:        req.Tags,
				Images:      req.Images,
			})
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, it)
		case domain.ItemKindCommission:
			it, err := itemSvc.CreateCommissionItem(r.Context(), currentUser.ID, service.CommissionItemInput{
				Title:          req.Title,
				Description:    req.Description,
				Price:          req.Price,
				Category:       req.Category,
				Tags:           req.Tags,
				Images:         req.Images,
				TurnaroundDays: req.TurnaroundDays,
			})
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, it)
		}
	}
}

func handleListItems(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := itemKindParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		f := itemFilterFromQuery(r)

		switch kind {
		case domain.ItemKindMarketplace:
			items, err := itemSvc.ListMarketplaceItems(r.Context(), f)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, items)
		case domain.ItemKindCommission:
			items, err := itemSvc.ListCommissionItems(r.Context(), f)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, items)
		}
	}
}

func handleGetItem(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := itemKindParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		id := chi.URLParam(r, "itemID")

		switch kind {
		case domain.ItemKindMarketplace:
			it, err := itemSvc.GetMarketplaceItem(r.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, it)
		case domain.ItemKindCommission:
			it, err := itemSvc.GetCommissionItem(r.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, it)
		}
	}
}

func handleUpdateItem(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		kind, err := itemKindParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		id := chi.URLParam(r, "itemID")
		var req itemCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		switch kind {
		case domain.ItemKindMarketplace:
			it, err := itemSvc.UpdateMarketplaceItem(r.Context(), currentUser.ID, id, service.MarketplaceItemInput{
				Title:       req.Title,
				Description: req.Description,
				Price:       req.Price,
				Category:    req.Category,
				Condition:   req.Condition,
				Tags:        req.Tags,
				Images:      req.Images,
			})
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, it)
		case domain.ItemKindCommission:
			it, err := itemSvc.UpdateCommissionItem(r.Context(), currentUser.ID, id, service.CommissionItemInput{
				Title:          req.Title,
				Description:    req.Description,
				Price:          req.Price,
				Category:       req.Category,
				Tags:           req.Tags,
				Images:         req.Images,
				TurnaroundDays: req.TurnaroundDays,
			})
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, it)
		}
	}
}

type itemStatusRequest struct {
	Status      string `json:"status"`       // marketplace items
	IsAvailable *bool  `json:"is_available"` // commission items
}

func handleSetItemStatus(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		kind, err := itemKindParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		id := chi.URLParam(r, "itemID")
		var req itemStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		switch kind {
		case domain.ItemKindMarketplace:
			it, err := itemSvc.SetMarketplaceStatus(r.Context(), currentUser.ID, id, domain.ItemStatus(req.Status))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, it)
		case domain.ItemKindCommission:
			if req.IsAvailable == nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "is_available is required"})
				return
			}
			it, err := itemSvc.SetCommissionAvailability(r.Context(), currentUser.ID, id, *req.IsAvailable)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, it)
		}
	}
}

func handleDeleteItem(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		kind, err := itemKindParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		id := chi.URLParam(r, "itemID")

		switch kind {
		case domain.ItemKindMarketplace:
			err = itemSvc.DeleteMarketplaceItem(r.Context(), currentUser.ID, id)
		case domain.ItemKindCommission:
			err = itemSvc.DeleteCommissionItem(r.Context(), currentUser.ID, id)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
