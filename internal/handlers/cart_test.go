package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"southcoast-promotion/internal/models"
	"southcoast-promotion/internal/pricing"
	"southcoast-promotion/internal/services"
)

type cartTestEnv struct {
	router   *chi.Mux
	cookies  []*http.Cookie
	campaign *models.Campaign
	t        *testing.T
}

func newCartTestEnv(t *testing.T) *cartTestEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	campaigns := services.NewMockCampaignStore()
	campaign, err := campaigns.Create(&models.CampaignCreateRequest{
		Name:           "Brighton Seafront Circuit",
		Location:       "Brighton",
		RunDate:        time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		RunTime:        "09:00 - 17:00",
		TotalSlots:     8,
		AdvertsPerSlot: 40,
		PricePerSlot:   12500,
	})
	require.NoError(t, err)

	campaignService := services.NewCampaignService(campaigns, logger)
	bookingService := services.NewBookingService(
		services.NewMockBookingStore(),
		pricing.DefaultConfig(),
		services.NewMockEmailService(logger),
		logger,
	)

	store := sessions.NewCookieStore([]byte("test-secret"))
	handler := NewCartHandler(campaignService, bookingService, store)

	router := chi.NewRouter()
	router.Route("/api/cart", func(r chi.Router) {
		r.Get("/", handler.GetCart)
		r.Post("/items", handler.AddItem)
		r.Put("/items/{campaignID}", handler.UpdateItem)
		r.Delete("/items/{campaignID}", handler.RemoveItem)
		r.Delete("/", handler.ClearCart)
		r.Post("/phase", handler.AdvancePhase)
	})

	return &cartTestEnv{router: router, campaign: campaign, t: t}
}

// do performs a request, carrying session cookies between calls
func (env *cartTestEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	env.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(env.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range env.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		env.cookies = cookies
	}
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetCartStartsEmpty(t *testing.T) {
	env := newCartTestEnv(t)

	rec := env.do(http.MethodGet, "/api/cart/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeCart(t, rec)
	assert.Empty(t, out["items"])
	assert.Equal(t, "browsing", out["phase"])
	assert.Equal(t, "£0.00", out["formatted_total"])
}

func TestAddItemToCart(t *testing.T) {
	env := newCartTestEnv(t)

	rec := env.do(http.MethodPost, "/api/cart/items", map[string]interface{}{
		"campaign_id": env.campaign.ID,
		"slots":       2,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeCart(t, rec)
	items := out["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, float64(2), out["total_slots"])
	assert.Equal(t, "£300.00", out["formatted_total"], "£250.00 plus 20% VAT")

	// Cart persists across requests via the session
	rec = env.do(http.MethodGet, "/api/cart/", nil)
	out = decodeCart(t, rec)
	assert.Len(t, out["items"], 1)
}

func TestAddItemMergesExistingLine(t *testing.T) {
	env := newCartTestEnv(t)

	env.do(http.MethodPost, "/api/cart/items", map[string]interface{}{"campaign_id": env.campaign.ID, "slots": 1})
	rec := env.do(http.MethodPost, "/api/cart/items", map[string]interface{}{"campaign_id": env.campaign.ID, "slots": 2})

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeCart(t, rec)
	items := out["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, float64(3), out["total_slots"])
}

func TestAddItemUnknownCampaign(t *testing.T) {
	env := newCartTestEnv(t)

	rec := env.do(http.MethodPost, "/api/cart/items", map[string]interface{}{"campaign_id": 999, "slots": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddItemOverCapacity(t *testing.T) {
	env := newCartTestEnv(t)

	rec := env.do(http.MethodPost, "/api/cart/items", map[string]interface{}{
		"campaign_id": env.campaign.ID,
		"slots":       env.campaign.TotalSlots + 1,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateItemToZeroRemovesLine(t *testing.T) {
	env := newCartTestEnv(t)

	env.do(http.MethodPost, "/api/cart/items", map[string]interface{}{"campaign_id": env.campaign.ID, "slots": 2})
	rec := env.do(http.MethodPut, "/api/cart/items/1", map[string]interface{}{"slots": 0})

	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeCart(t, rec)
	assert.Empty(t, out["items"])
}

func TestAdvancePhaseEmptyCartRejected(t *testing.T) {
	env := newCartTestEnv(t)

	rec := env.do(http.MethodPost, "/api/cart/phase", map[string]interface{}{"phase": "checkout"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = env.do(http.MethodGet, "/api/cart/", nil)
	out := decodeCart(t, rec)
	assert.Equal(t, "browsing", out["phase"], "phase must stay put after a rejected move")
}

func TestAdvancePhaseHappyPath(t *testing.T) {
	env := newCartTestEnv(t)

	env.do(http.MethodPost, "/api/cart/items", map[string]interface{}{"campaign_id": env.campaign.ID, "slots": 1})

	rec := env.do(http.MethodPost, "/api/cart/phase", map[string]interface{}{"phase": "checkout"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "checkout", decodeCart(t, rec)["phase"])

	rec = env.do(http.MethodPost, "/api/cart/phase", map[string]interface{}{"phase": "customer_info"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "customer_info", decodeCart(t, rec)["phase"])
}

func TestAdvancePhaseInvalidJump(t *testing.T) {
	env := newCartTestEnv(t)

	env.do(http.MethodPost, "/api/cart/items", map[string]interface{}{"campaign_id": env.campaign.ID, "slots": 1})
	rec := env.do(http.MethodPost, "/api/cart/phase", map[string]interface{}{"phase": "confirmed"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestClearCartResetsPhase(t *testing.T) {
	env := newCartTestEnv(t)

	env.do(http.MethodPost, "/api/cart/items", map[string]interface{}{"campaign_id": env.campaign.ID, "slots": 1})
	env.do(http.MethodPost, "/api/cart/phase", map[string]interface{}{"phase": "checkout"})

	rec := env.do(http.MethodDelete, "/api/cart/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeCart(t, rec)
	assert.Empty(t, out["items"])
	assert.Equal(t, "browsing", out["phase"])
}
