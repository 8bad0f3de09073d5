package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

// BarcodeResolver maps a barcode to an item draft.
type BarcodeResolver interface {
	Resolve(ctx context.Context, barcode string) (models.ProductDraft, error)
}

// BarcodeHandler exposes the barcode lookup endpoint.
type BarcodeHandler struct {
	resolver BarcodeResolver
	logger   *zap.Logger
}

// NewBarcodeHandler constructs the HTTP handler adapter.
func NewBarcodeHandler(resolver BarcodeResolver, logger *zap.Logger) *BarcodeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BarcodeHandler{resolver: resolver, logger: logger}
}

type lookupRequest struct {
	Barcode json.RawMessage `json:"barcode"`
}

// Lookup handles POST /lookup_barcode.
func (h *BarcodeHandler) Lookup(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil || isAbsent(req.Barcode) {
		badRequest(c, "Barcode not provided")
		return
	}

	code, ok := scalarString(req.Barcode)
	if !ok {
		badRequest(c, "Barcode not provided")
		return
	}

	draft, err := h.resolver.Resolve(c.Request.Context(), code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}
