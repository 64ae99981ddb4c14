package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tastebook/internal/httputil"
	"tastebook/internal/model"
	"tastebook/internal/service"
	"tastebook/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// CreateComment appends a comment to a recipe.
// POST /recipes/{id}/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
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

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.AddComment(r.Context(), recipeID, userID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrContentRequired):
			httputil.WriteBadRequest(w, "Comment content is required")
		case errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, fmt.Sprintf("Comment exceeds %d characters", model.MaxCommentLength))
		case errors.Is(err, model.ErrRecipeNotFound):
			httputil.WriteNotFound(w, "Recipe not found")
		default:
			log.Printf("[ERROR] CreateComment handler: %v", err)
			httputil.WriteInternalError(w, "Failed to create comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// ListComments returns paginated comments for a recipe, newest first.
// GET /recipes/{id}/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	recipeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid recipe ID")
		return
	}

	var cursor *string
	if cursorStr := r.URL.Query().Get("cursor"); cursorStr != "" {
		cursor = &cursorStr
	}

	limit := service.CommentDefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > service.CommentMaxLimit {
			httputil.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	result, err := h.commentService.ListComments(r.Context(), recipeID, cursor, limit)
	if err != nil {
		if errors.Is(err, model.ErrRecipeNotFound) {
			httputil.WriteNotFound(w, "Recipe not found")
			return
		}
		log.Printf("[ERROR] ListComments handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// StreamComments streams new comments on a recipe over Server-Sent Events.
// Each event carries one comment as JSON. The stream stays open until the
// client disconnects.
// GET /recipes/{id}/comments/live
func (h *CommentHandler) StreamComments(w http.ResponseWriter, r *http.Request) {
	recipeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid recipe ID")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteInternalError(w, "Streaming not supported")
		return
	}

	sub, err := h.commentService.Subscribe(r.Context(), recipeID)
	if err != nil {
		if errors.Is(err, model.ErrRecipeNotFound) {
			httputil.WriteNotFound(w, "Recipe not found")
			return
		}
		log.Printf("[ERROR] StreamComments subscribe: %v", err)
		httputil.WriteInternalError(w, "Failed to open comment stream")
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Initial event so the client knows the stream is live
	fmt.Fprintf(w, "event: connected\ndata: {\"recipe_id\": %d}\n\n", recipeID)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			log.Printf("[SSE] Client disconnected: recipe=%d", recipeID)
			return
		case comment, ok := <-sub.C:
			if !ok {
				return
			}
			payload, err := json.Marshal(comment)
			if err != nil {
				log.Printf("[SSE] Marshal error: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: comment\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
