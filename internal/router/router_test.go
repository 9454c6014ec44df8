package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cx-tal-miterani/ticket-checkout/internal/catalog"
	"github.com/cx-tal-miterani/ticket-checkout/internal/handlers"
	"github.com/cx-tal-miterani/ticket-checkout/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHealthCheck(t *testing.T) {
	r := SetupRouter(handlers.NewHandler(new(mocks.MockCheckoutService), nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	svc := new(mocks.MockCheckoutService)
	r := SetupRouter(handlers.NewHandler(svc, nil, nil))

	req := httptest.NewRequest(http.MethodOptions, "/api/sessions/sess-1/contact", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
	svc.AssertNotCalled(t, "SetContact", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEventsRoute(t *testing.T) {
	svc := new(mocks.MockCheckoutService)
	svc.On("ListEvents", mock.Anything).Return([]catalog.Event{{ID: "EV001"}})
	r := SetupRouter(handlers.NewHandler(svc, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	svc.AssertExpectations(t)
}

func TestUnknownMethod(t *testing.T) {
	r := SetupRouter(handlers.NewHandler(new(mocks.MockCheckoutService), nil, nil))

	req := httptest.NewRequest(http.MethodPatch, "/api/sessions/sess-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"method not allowed"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/health", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	r := SetupRouter(handlers.NewHandler(new(mocks.MockCheckoutService), nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
