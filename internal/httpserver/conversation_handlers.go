package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tartanmarket/internal/domain"
	"tartanmarket/internal/service"
)

type conversationCreateRequest struct {
	SellerID     string `json:"seller_id"`
	ItemID       string `json:"item_id"` // composite form, optional
	FirstMessage string `json:"first_message"`
}

func handleCreateConversation(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		var req conversationCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		in := service.StartInput{
			SellerID:     req.SellerID,
			FirstMessage: req.FirstMessage,
		}
		if req.ItemID != "" {
			ref, err := domain.ParseItemRef(req.ItemID)
			if err != nil {
				writeError(w, err)
				return
			}
			in.Item = &ref
		}

		conv, err := convSvc.Start(r.Context(), currentUser.ID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, conv)
	}
}

func handleListConversations(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		convs, err := convSvc.ListForUser(r.Context(), currentUser.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, convs)
	}
}

func handleGetConversation(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		id := chi.URLParam(r, "conversationID")
		conv, err := convSvc.Get(r.Context(), id, currentUser.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

type messageCreateRequest struct {
	Content string `json:"content"`
}

func handleCreateMessage(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		id := chi.URLParam(r, "conversationID")
		var req messageCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		msg, err := convSvc.SendMessage(r.Context(), currentUser.ID, id, req.Content)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

func handleListMessages(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		id := chi.URLParam(r, "conversationID")
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		msgs, err := convSvc.ListMessages(r.Context(), id, currentUser.ID, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

func handleMarkConversationRead(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		id := chi.URLParam(r, "conversationID")
		if err := convSvc.MarkRead(r.Context(), id, currentUser.ID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func handleUpdateConversationStatus(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := requireUser(w, r)
		if currentUser == nil {
			return
		}
		id := chi.URLParam(r, "conversationID")
		var req statusUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		conv, err := convSvc.Transition(r.Context(), currentUser.ID, id, domain.ConversationStatus(req.Status))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}
