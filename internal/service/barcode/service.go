package barcode

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

const (
	// SuggestedShelfLifeDays is a fixed placeholder, not derived from product data.
	SuggestedShelfLifeDays = 7

	unknownProductName = "Unknown Product"
)

// Product is the subset of a product-database answer the resolver needs.
type Product struct {
	Found bool
	Name  string
}

// ProductLookup queries an external product database by barcode.
type ProductLookup interface {
	LookupProduct(ctx context.Context, barcode string) (Product, error)
}

// Resolver turns barcodes into item drafts.
type Resolver struct {
	lookup   ProductLookup
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
}

// NewResolver wires a barcode resolver. A nil location means time.Local.
func NewResolver(lookup ProductLookup, loc *time.Location, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{lookup: lookup, logger: logger, location: loc, now: time.Now}
}

// Resolve looks the barcode up and proposes a name and expiry date.
func (r *Resolver) Resolve(ctx context.Context, barcode string) (models.ProductDraft, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return models.ProductDraft{}, models.NewValidationError("Barcode not provided")
	}

	product, err := r.lookup.LookupProduct(ctx, barcode)
	if err != nil {
		r.logger.Warn("barcode lookup failed", zap.String("barcode", barcode), zap.Error(err))
		return models.ProductDraft{}, models.NewUpstreamError("API request failed", err)
	}
	if !product.Found {
		return models.ProductDraft{}, models.NewNotFoundError("Product not found")
	}

	name := strings.TrimSpace(product.Name)
	if name == "" {
		name = unknownProductName
	}

	today := models.DateOf(r.now().In(r.location))
	return models.ProductDraft{
		Name:       name,
		ExpiryDate: today.AddDate(0, 0, SuggestedShelfLifeDays).Format(models.DateLayout),
	}, nil
}
