package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tastebook/internal/httputil"
	"tastebook/internal/model"
	"tastebook/internal/service"
	"tastebook/internal/transport/http/middleware"
)

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
	}
}

// PresignRecipeImage issues a presigned upload URL for a recipe image.
// POST /media/recipe-image
func (h *MediaHandler) PresignRecipeImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.PresignRecipeImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.mediaService.PresignRecipeImage(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 10MB limit")
		default:
			log.Printf("[ERROR] PresignRecipeImage handler: %v", err)
			httputil.WriteInternalError(w, "Failed to presign upload")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
