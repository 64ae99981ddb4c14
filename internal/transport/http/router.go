package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tastebook/internal/handler"
	"tastebook/internal/httputil"
	authmw "tastebook/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	CatalogHandler    *handler.CatalogHandler
	RecipeHandler     *handler.RecipeHandler
	EngagementHandler *handler.EngagementHandler
	CommentHandler    *handler.CommentHandler
	MediaHandler      *handler.MediaHandler
	JWTSecret         string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	optional := authmw.OptionalAuthMiddleware(cfg.JWTSecret)

	// Public catalog endpoints with optional authentication
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", cfg.CatalogHandler.ListCategories)
		r.Get("/{slug}", cfg.CatalogHandler.GetCategory)
		r.With(optional).Get("/{slug}/recipes", cfg.CatalogHandler.ListCategoryRecipes)
	})

	// Public recipe endpoints with optional authentication
	r.Route("/recipes", func(r chi.Router) {
		r.With(optional).Get("/", cfg.RecipeHandler.ListFeed)
		r.With(optional).Get("/{id}", cfg.RecipeHandler.GetRecipe)
		r.With(optional).Get("/{id}/comments", cfg.CommentHandler.ListComments)
		r.Get("/{id}/comments/live", cfg.CommentHandler.StreamComments)
	})

	// Public user endpoints with optional authentication
	r.Route("/users", func(r chi.Router) {
		r.With(optional).Get("/search", cfg.UserHandler.Search)
		r.With(optional).Get("/{id}", cfg.UserHandler.GetProfile)
		r.With(optional).Get("/{id}/followers", cfg.UserHandler.GetFollowers)
		r.With(optional).Get("/{id}/following", cfg.UserHandler.GetFollowing)
		r.With(optional).Get("/{id}/recipes", cfg.RecipeHandler.ListByAuthor)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current user endpoints
		r.Get("/me", cfg.AuthHandler.Me)
		r.Patch("/me", cfg.UserHandler.UpdateProfile)
		r.Get("/me/saved-recipes", cfg.RecipeHandler.ListSaved)
		r.Get("/me/liked-recipes", cfg.RecipeHandler.ListLiked)

		// Auth actions that require authentication
		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		// Engagement toggles
		r.Post("/recipes/{id}/like", cfg.EngagementHandler.ToggleLike)
		r.Post("/recipes/{id}/save", cfg.EngagementHandler.ToggleSave)
		r.Post("/users/{id}/follow", cfg.EngagementHandler.ToggleFollow)

		// Recipe authoring
		r.Post("/recipes", cfg.RecipeHandler.CreateRecipe)
		r.Post("/recipes/{id}/comments", cfg.CommentHandler.CreateComment)

		// Media endpoints (direct-to-R2 uploads)
		r.Post("/media/recipe-image", cfg.MediaHandler.PresignRecipeImage)
	})

	return r
}
