package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecipeAdvisor suggests a recipe from ingredient names.
type RecipeAdvisor interface {
	Suggest(ctx context.Context, ingredients []string) (string, error)
}

// ChefHandler exposes the recipe suggestion endpoint.
type ChefHandler struct {
	advisor RecipeAdvisor
	logger  *zap.Logger
}

// NewChefHandler constructs the HTTP handler adapter.
func NewChefHandler(advisor RecipeAdvisor, logger *zap.Logger) *ChefHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChefHandler{advisor: advisor, logger: logger}
}

type suggestRequest struct {
	Ingredients *[]string `json:"ingredients"`
}

// Suggest handles POST /chef/suggest.
func (h *ChefHandler) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Ingredients == nil {
		badRequest(c, "Ingredients list is required")
		return
	}

	recipe, err := h.advisor.Suggest(c.Request.Context(), *req.Ingredients)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}
