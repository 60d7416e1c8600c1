package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tartanmarket/internal/domain"
	"tartanmarket/internal/service"
)

func handleSearch(searchSvc *service.SearchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		f := itemFilterFromQuery(r)

		limit := 40
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		results, err := searchSvc.SearchItems(r.Context(), query, f, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func handleSimilarItems(searchSvc *service.SearchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := itemKindParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		ref := domain.ItemRef{Kind: kind, ID: chi.URLParam(r, "itemID")}

		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		results, err := searchSvc.SimilarItems(r.Context(), ref, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}
