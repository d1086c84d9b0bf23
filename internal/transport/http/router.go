package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketforum/internal/handler"
	"marketforum/internal/httputil"
	"marketforum/internal/metrics"
	authmw "marketforum/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler     *handler.AuthHandler
	ForumHandler    *handler.ForumHandler
	ReactionHandler *handler.ReactionHandler
	CatalogHandler  *handler.CatalogHandler
	ReviewHandler   *handler.ReviewHandler
	CartHandler     *handler.CartHandler
	FavoriteHandler *handler.FavoriteHandler
	JWTSecret       string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	optionalAuth := authmw.OptionalAuthMiddleware(cfg.JWTSecret)

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
		r.Post("/logout", cfg.AuthHandler.Logout)
	})

	r.With(optionalAuth).Get("/forum/", cfg.ForumHandler.ListPosts)
	r.With(optionalAuth).Get("/forum/posts/{id}", cfg.ForumHandler.GetPost)
	r.Get("/forum/posts/{id}/replies", cfg.ForumHandler.ListReplies)

	r.Get("/categories", cfg.CatalogHandler.ListCategories)
	r.Get("/categories/{id}", cfg.CatalogHandler.GetCategory)
	r.Get("/products", cfg.CatalogHandler.ListProducts)
	r.Get("/products/{id}", cfg.CatalogHandler.GetProduct)
	r.Get("/search", cfg.CatalogHandler.Search)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/me", cfg.AuthHandler.Me)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		r.Post("/forum/posts", cfg.ForumHandler.CreatePost)
		r.Post("/forum/reply", cfg.ForumHandler.CreateReply)
		r.Post("/forum/posts/{id}/replies", cfg.ForumHandler.CreatePostReply)
		r.Post("/like/{postId}/", cfg.ReactionHandler.Like)
		r.Post("/dislike/{postId}/", cfg.ReactionHandler.Dislike)

		// Admin checks happen in the catalog service
		r.Post("/categories", cfg.CatalogHandler.CreateCategory)
		r.Post("/products", cfg.CatalogHandler.CreateProduct)
		r.Post("/products/{id}/reviews", cfg.ReviewHandler.Create)

		r.Get("/cart", cfg.CartHandler.Get)
		r.Post("/cart/{productId}", cfg.CartHandler.Add)
		r.Delete("/cart/{productId}", cfg.CartHandler.Remove)

		r.Get("/favorites", cfg.FavoriteHandler.List)
		r.Post("/favorites/{productId}", cfg.FavoriteHandler.Add)
		r.Delete("/favorites/{productId}", cfg.FavoriteHandler.Remove)
	})

	return r
}
