package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tastebook/internal/httputil"
	"tastebook/internal/model"
	"tastebook/internal/service"
	"tastebook/internal/transport/http/middleware"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
	feedService   *service.FeedService
}

func NewRecipeHandler(recipeService *service.RecipeService, feedService *service.FeedService) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		feedService:   feedService,
	}
}

// ListFeed returns the latest recipes with cursor pagination.
// GET /recipes?cursor=...&limit=...
func (h *RecipeHandler) ListFeed(w http.ResponseWriter, r *http.Request) {
	var cursor *string
	if cursorStr := r.URL.Query().Get("cursor"); cursorStr != "" {
		cursor = &cursorStr
	}

	limit := service.FeedDefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > service.FeedMaxLimit {
			httputil.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	viewerID := middleware.GetViewerID(r.Context())

	result, err := h.feedService.ListRecipes(r.Context(), viewerID, cursor, limit)
	if err != nil {
		log.Printf("[ERROR] ListFeed handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list recipes")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetRecipe returns the full detail view of one recipe.
// GET /recipes/{id}
func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid recipe ID")
		return
	}

	viewerID := middleware.GetViewerID(r.Context())

	detail, err := h.recipeService.GetRecipe(r.Context(), recipeID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrRecipeNotFound) {
			httputil.WriteNotFound(w, "Recipe not found")
			return
		}
		log.Printf("[ERROR] GetRecipe handler: %v", err)
		httputil.WriteInternalError(w, "Failed to get recipe")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, detail)
}

// CreateRecipe publishes a new recipe authored by the authenticated user.
// POST /recipes
func (h *RecipeHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	authorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	recipe, err := h.recipeService.CreateRecipe(r.Context(), authorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCategoryNotFound):
			httputil.WriteNotFound(w, "Category not found")
		case isValidationError(err):
			httputil.WriteBadRequest(w, err.Error())
		default:
			log.Printf("[ERROR] CreateRecipe handler: %v", err)
			httputil.WriteInternalError(w, "Failed to create recipe")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, recipe)
}

// ListByAuthor returns the recipes published by a user.
// GET /users/{id}/recipes
func (h *RecipeHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	viewerID := middleware.GetViewerID(r.Context())

	recipes, err := h.recipeService.ListByAuthor(r.Context(), authorID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] ListByAuthor handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list recipes")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"recipes": recipes})
}

// ListSaved returns the authenticated user's saved recipes.
// GET /me/saved-recipes
func (h *RecipeHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	recipes, err := h.recipeService.ListSaved(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] ListSaved handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list saved recipes")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"recipes": recipes})
}

// ListLiked returns the authenticated user's liked recipes.
// GET /me/liked-recipes
func (h *RecipeHandler) ListLiked(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	recipes, err := h.recipeService.ListLiked(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] ListLiked handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list liked recipes")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"recipes": recipes})
}

// isValidationError reports whether the error is one of the recipe draft
// validation sentinels.
func isValidationError(err error) bool {
	for _, sentinel := range []error{
		model.ErrTitleRequired,
		model.ErrTitleTooLong,
		model.ErrDescriptionRequired,
		model.ErrImageURLRequired,
		model.ErrCategoryRequired,
		model.ErrInvalidCategory,
		model.ErrInvalidDifficulty,
		model.ErrInvalidPrepTime,
		model.ErrInvalidCookTime,
		model.ErrInvalidServings,
		model.ErrStepsRequired,
		model.ErrBlankStep,
		model.ErrTooManySteps,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
