package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/metrics"
	"github.com/mamadbah2/pantry/internal/repository/sqlite"
	"github.com/mamadbah2/pantry/internal/server/handlers"
	"github.com/mamadbah2/pantry/internal/service/barcode"
	"github.com/mamadbah2/pantry/internal/service/chef"
	"github.com/mamadbah2/pantry/internal/service/items"
)

type stubGenerator struct {
	calls int
	text  string
	err   error
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	s.calls++
	return s.text, s.err
}

type stubLookup struct {
	product barcode.Product
	err     error
}

func (s *stubLookup) LookupProduct(context.Context, string) (barcode.Product, error) {
	return s.product, s.err
}

type testServer struct {
	handler   http.Handler
	generator *stubGenerator
	lookup    *stubLookup
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := sqlite.NewItemRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	gen := &stubGenerator{text: "Recipe Name: Pancakes\nInstructions: Mix."}
	lookup := &stubLookup{product: barcode.Product{Found: true, Name: "Oat milk"}}

	engine := New(Handlers{
		Items:   handlers.NewItemHandler(items.NewService(repo, nil, items.WithLocation(time.UTC)), nil),
		Chef:    handlers.NewChefHandler(chef.NewAdvisor(gen, nil), nil),
		Barcode: handlers.NewBarcodeHandler(barcode.NewResolver(lookup, time.UTC, nil), nil),
		Web:     handlers.NewWebHandler(),
	}, metrics.New(), nil)

	return &testServer{handler: WithCORS(engine, []string{"*"}), generator: gen, lookup: lookup}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type itemEnvelope struct {
	Message string          `json:"message"`
	Item    models.ItemView `json:"item"`
	Error   string          `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestCreateItemEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/items", `{"name":" milk ","quantity":2,"expiry_date":"2099-01-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decode[itemEnvelope](t, rec)
	assert.Equal(t, "Item added successfully", got.Message)
	assert.Equal(t, "Milk", got.Item.Name)
	assert.Equal(t, 2, got.Item.Quantity)
	assert.Equal(t, "2099-01-01", got.Item.ExpiryDate)
	assert.Equal(t, models.StatusOK, got.Item.ExpiryStatus)
	assert.NotZero(t, got.Item.ID)

	rec = srv.do(t, http.MethodGet, "/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.ItemView{got.Item}, decode[[]models.ItemView](t, rec))
}

func TestCreateItemValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := map[string]string{
		"missing name":      `{"expiry_date":"2099-01-01"}`,
		"missing expiry":    `{"name":"Milk"}`,
		"zero quantity":     `{"name":"Milk","quantity":0,"expiry_date":"2099-01-01"}`,
		"negative quantity": `{"name":"Milk","quantity":-1,"expiry_date":"2099-01-01"}`,
		"fractional":        `{"name":"Milk","quantity":1.5,"expiry_date":"2099-01-01"}`,
		"word quantity":     `{"name":"Milk","quantity":"two","expiry_date":"2099-01-01"}`,
		"boolean quantity":  `{"name":"Milk","quantity":true,"expiry_date":"2099-01-01"}`,
		"bad date":          `{"name":"Milk","expiry_date":"tomorrow"}`,
		"name not a string": `{"name":5,"expiry_date":"2099-01-01"}`,
		"malformed json":    `{"name":`,
		"empty name":        `{"name":"  ","expiry_date":"2099-01-01"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/items", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[itemEnvelope](t, rec).Error)
		})
	}

	rec := srv.do(t, http.MethodGet, "/items", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateItemQuantityCoercion(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/items", `{"name":"rice","quantity":"3","expiry_date":"2099-01-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 3, decode[itemEnvelope](t, rec).Item.Quantity)

	rec = srv.do(t, http.MethodPost, "/items", `{"name":"beans","expiry_date":"2099-01-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, decode[itemEnvelope](t, rec).Item.Quantity)
}

func TestUpdateAndDeleteItem(t *testing.T) {
	srv := newTestServer(t)

	created := decode[itemEnvelope](t, srv.do(t, http.MethodPost, "/items", `{"name":"eggs","quantity":6,"expiry_date":"2099-05-01"}`)).Item
	path := "/items/" + jsonNumber(created.ID)

	rec := srv.do(t, http.MethodPut, path, `{"quantity":12}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[itemEnvelope](t, rec)
	assert.Equal(t, "Item updated successfully", updated.Message)
	assert.Equal(t, 12, updated.Item.Quantity)
	assert.Equal(t, "Eggs", updated.Item.Name)
	assert.Equal(t, "2099-05-01", updated.Item.ExpiryDate)

	rec = srv.do(t, http.MethodPut, path, `{"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12, decode[models.ItemView](t, rec).Quantity)

	rec = srv.do(t, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Item deleted successfully"}`, rec.Body.String())

	rec = srv.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownItemIs404(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPut, "/items/999", `{"quantity":-5}`},
		{http.MethodPut, "/items/abc", `{"quantity":1}`},
		{http.MethodDelete, "/items/999", ""},
		{http.MethodGet, "/items/0", ""},
	} {
		rec := srv.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.method+" "+tc.path)
		assert.Equal(t, "Item not found", decode[itemEnvelope](t, rec).Error)
	}
}

func TestChefSuggest(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/chef/suggest", `{"ingredients":["Eggs","Flour"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"recipe":"Recipe Name: Pancakes<br>Instructions: Mix."}`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/chef/suggest", `{"ingredients":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"recipe":"Please select at least one ingredient."}`, rec.Body.String())
	assert.Equal(t, 1, srv.generator.calls)

	rec = srv.do(t, http.MethodPost, "/chef/suggest", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Ingredients list is required"}`, rec.Body.String())

	srv.generator.err = errors.New("model overloaded")
	rec = srv.do(t, http.MethodPost, "/chef/suggest", `{"ingredients":["Rice"]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error generating recipe: model overloaded"}`, rec.Body.String())
}

func TestLookupBarcode(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/lookup_barcode", `{"barcode":"737628064502"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	draft := decode[models.ProductDraft](t, rec)
	assert.Equal(t, "Oat milk", draft.Name)
	expiry, err := models.ParseDate(draft.ExpiryDate)
	require.NoError(t, err)
	assert.Equal(t, barcode.SuggestedShelfLifeDays, models.DaysBetween(models.DateOf(time.Now().UTC()), expiry))

	rec = srv.do(t, http.MethodPost, "/lookup_barcode", `{"barcode":737628064502}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/lookup_barcode", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Barcode not provided"}`, rec.Body.String())

	srv.lookup.product = barcode.Product{Found: false}
	rec = srv.do(t, http.MethodPost, "/lookup_barcode", `{"barcode":"1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, rec.Body.String())

	srv.lookup.err = errors.New("connection reset")
	rec = srv.do(t, http.MethodPost, "/lookup_barcode", `{"barcode":"1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"API request failed: connection reset"}`, rec.Body.String())
}

func TestHomeAndOperationalRoutes(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<title>Pantry</title>")

	rec = srv.do(t, http.MethodGet, "/static/script.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/healthz", "")
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = srv.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pantry_http_requests_total")
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/items", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
