package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tastebook/internal/httputil"
	"tastebook/internal/model"
	"tastebook/internal/service"
	"tastebook/internal/transport/http/middleware"
)

type EngagementHandler struct {
	engagementService *service.EngagementService
}

func NewEngagementHandler(engagementService *service.EngagementService) *EngagementHandler {
	return &EngagementHandler{
		engagementService: engagementService,
	}
}

// ToggleLike flips the viewer's like on a recipe.
// POST /recipes/{id}/like
func (h *EngagementHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	recipeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid recipe ID")
		return
	}

	result, err := h.engagementService.ToggleLike(r.Context(), recipeID, userID)
	if err != nil {
		if errors.Is(err, model.ErrRecipeNotFound) {
			httputil.WriteNotFound(w, "Recipe not found")
			return
		}
		log.Printf("[ERROR] ToggleLike handler: %v", err)
		httputil.WriteInternalError(w, "Failed to toggle like")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// ToggleSave flips the viewer's save on a recipe. The optional body carries
// meal-planning extras used only when the toggle creates the save.
// POST /recipes/{id}/save
func (h *EngagementHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	recipeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid recipe ID")
		return
	}

	var opts *model.SaveOptions
	if r.Body != nil {
		var body model.SaveOptions
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			opts = &body
		} else if err != io.EOF {
			httputil.WriteBadRequest(w, "Invalid request body")
			return
		}
	}

	result, err := h.engagementService.ToggleSave(r.Context(), recipeID, userID, opts)
	if err != nil {
		if errors.Is(err, model.ErrRecipeNotFound) {
			httputil.WriteNotFound(w, "Recipe not found")
			return
		}
		log.Printf("[ERROR] ToggleSave handler: %v", err)
		httputil.WriteInternalError(w, "Failed to toggle save")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// ToggleFollow flips the viewer's follow edge toward another user.
// POST /users/{id}/follow
func (h *EngagementHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followingID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	result, err := h.engagementService.ToggleFollow(r.Context(), followerID, followingID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[ERROR] ToggleFollow handler: %v", err)
			httputil.WriteInternalError(w, "Failed to toggle follow")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
