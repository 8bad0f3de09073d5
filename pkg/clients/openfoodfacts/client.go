package openfoodfacts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/pantry/internal/service/barcode"
)

const (
	productPath = "/api/v0/product/{barcode}.json"
	userAgent   = "pantry-backend/1.0"
	statusFound = 1
)

// ProductResponse mirrors the fields of the v0 product endpoint we read.
type ProductResponse struct {
	Code          string `json:"code"`
	Status        int    `json:"status"`
	StatusVerbose string `json:"status_verbose"`
	Product       struct {
		ProductName string `json:"product_name"`
		Brands      string `json:"brands"`
	} `json:"product"`
}

// Client is a resty-backed Open Food Facts client.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{httpClient: restyClient}
}

// Product fetches the raw product record for a barcode.
func (c *Client) Product(ctx context.Context, code string) (*ProductResponse, error) {
	result := new(ProductResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("barcode", code).
		SetResult(result).
		Get(productPath)
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("openfoodfacts returned %s", resp.Status())
	}

	return result, nil
}

// LookupProduct implements barcode.ProductLookup.
func (c *Client) LookupProduct(ctx context.Context, code string) (barcode.Product, error) {
	res, err := c.Product(ctx, code)
	if err != nil {
		return barcode.Product{}, err
	}
	return barcode.Product{
		Found: res.Status == statusFound,
		Name:  res.Product.ProductName,
	}, nil
}
