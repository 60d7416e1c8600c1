package httpserver

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tartanmarket/internal/config"
	"tartanmarket/internal/security"
	"tartanmarket/internal/service"
	"tartanmarket/internal/store/sqlite"
	"tartanmarket/internal/ws"
)

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(cfg *config.Config, db *sql.DB, hub *ws.Hub, tokenSvc *security.TokenService) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Repositories
	userRepo := sqlite.NewUserRepo(db)
	mpItemRepo := sqlite.NewMarketplaceItemRepo(db)
	commItemRepo := sqlite.NewCommissionItemRepo(db)
	favRepo := sqlite.NewFavoriteRepo(db)
	convRepo := sqlite.NewConversationRepo(db)

	// Services
	userSvc := service.NewUserService(userRepo, favRepo, mpItemRepo, commItemRepo)
	itemSvc := service.NewItemService(mpItemRepo, commItemRepo)
	convSvc := service.NewConversationService(convRepo, mpItemRepo, commItemRepo, hub)
	searchSvc := service.NewSearchService(mpItemRepo, commItemRepo, cfg.SearchFetchLimit)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": cfg.AppName,
			"version": "1.0.0",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public browse/search endpoints
		r.Get("/items/{type}", handleListItems(itemSvc))
		r.Get("/items/{type}/{itemID}", handleGetItem(itemSvc))
		r.Get("/items/{type}/{itemID}/similar", handleSimilarItems(searchSvc))
		r.Get("/search", handleSearch(searchSvc))
		r.Get("/users/{userID}", handleGetUser(userSvc))

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokenSvc, userRepo))

			// Users
			r.Post("/users/current", handleResolveCurrentUser(userSvc))
			r.Put("/users/current", handleUpdateProfile(userSvc))
			r.Post("/users/favorites", handleFavorites(userSvc))
			r.Get("/users/favorites", handleListFavorites(userSvc))

			// Items
			r.Post("/items/{type}", handleCreateItem(itemSvc))
			r.Put("/items/{type}/{itemID}", handleUpdateItem(itemSvc))
			r.Put("/items/{type}/{itemID}/status", handleSetItemStatus(itemSvc))
			r.Delete("/items/{type}/{itemID}", handleDeleteItem(itemSvc))

			// Conversations and messages
			r.Route("/conversations", func(r chi.Router) {
				r.Post("/", handleCreateConversation(convSvc))
				r.Get("/", handleListConversations(convSvc))
				r.Get("/{conversationID}", handleGetConversation(convSvc))
				r.Put("/{conversationID}/status", handleUpdateConversationStatus(convSvc))
				r.Post("/{conversationID}/read", handleMarkConversationRead(convSvc))
				r.Get("/{conversationID}/messages", handleListMessages(convSvc))
				r.Post("/{conversationID}/messages", handleCreateMessage(convSvc))
			})

			// Uploads (implementation in separate file)
			r.Mount("/upload", UploadRoutes(cfg))
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(hub, tokenSvc, userRepo, cfg.CORSOrigins))

	return r
}
