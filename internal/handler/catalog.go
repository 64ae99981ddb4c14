package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tastebook/internal/httputil"
	"tastebook/internal/model"
	"tastebook/internal/service"
	"tastebook/internal/transport/http/middleware"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// ListCategories returns all categories with derived recipe counts.
// GET /categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		log.Printf("[ERROR] ListCategories handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list categories")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// GetCategory returns a single category by slug.
// GET /categories/{slug}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	category, err := h.catalogService.GetCategory(r.Context(), slug)
	if err != nil {
		if errors.Is(err, model.ErrCategoryNotFound) {
			httputil.WriteNotFound(w, "Category not found")
			return
		}
		log.Printf("[ERROR] GetCategory handler: %v", err)
		httputil.WriteInternalError(w, "Failed to get category")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, category)
}

// ListCategoryRecipes returns the recipes in a category.
// GET /categories/{slug}/recipes
func (h *CatalogHandler) ListCategoryRecipes(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	viewerID := middleware.GetViewerID(r.Context())

	recipes, err := h.catalogService.ListRecipesByCategory(r.Context(), slug, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrCategoryNotFound) {
			httputil.WriteNotFound(w, "Category not found")
			return
		}
		log.Printf("[ERROR] ListCategoryRecipes handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list recipes")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"recipes": recipes})
}
