package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

// ItemService describes the item store operations the HTTP layer uses.
type ItemService interface {
	Create(ctx context.Context, input models.ItemInput) (models.ItemView, error)
	List(ctx context.Context) ([]models.ItemView, error)
	Get(ctx context.Context, id int64) (models.ItemView, error)
	Update(ctx context.Context, id int64, input models.ItemInput) (models.ItemView, error)
	Delete(ctx context.Context, id int64) error
}

// ItemHandler exposes the pantry CRUD endpoints.
type ItemHandler struct {
	svc    ItemService
	logger *zap.Logger
}

// NewItemHandler constructs the HTTP handler adapter.
func NewItemHandler(svc ItemService, logger *zap.Logger) *ItemHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemHandler{svc: svc, logger: logger}
}

type itemPayload struct {
	Name       *string         `json:"name"`
	Quantity   json.RawMessage `json:"quantity"`
	ExpiryDate *string         `json:"expiry_date"`
}

func (p itemPayload) input() (models.ItemInput, bool) {
	input := models.ItemInput{Name: p.Name, ExpiryDate: p.ExpiryDate}
	if isAbsent(p.Quantity) {
		return input, true
	}

	quantity, ok := parseInteger(p.Quantity)
	if !ok {
		return models.ItemInput{}, false
	}
	input.Quantity = &quantity
	return input, true
}

// Create handles POST /items.
func (h *ItemHandler) Create(c *gin.Context) {
	var payload itemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Debug("invalid item payload", zap.Error(err))
		badRequest(c, "Invalid data format")
		return
	}

	input, ok := payload.input()
	if !ok {
		badRequest(c, "Invalid data format")
		return
	}

	item, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Item added successfully", "item": item})
}

// List handles GET /items.
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// Get handles GET /items/:id.
func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Update handles PUT /items/:id.
func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var payload itemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Debug("invalid item payload", zap.Error(err))
		badRequest(c, "Invalid data format")
		return
	}

	input, ok := payload.input()
	if !ok {
		badRequest(c, "Invalid data format")
		return
	}

	item, err := h.svc.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item updated successfully", "item": item})
}

// Delete handles DELETE /items/:id.
func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// itemID parses the :id path segment. Anything but a positive integer is
// answered with 404, like an unknown id.
func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return 0, false
	}
	return id, true
}
