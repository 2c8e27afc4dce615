package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/api/middleware"
)

func newRequestWithUUID(uuid string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rctx := chi.NewRouteContext()
	if uuid != "" {
		rctx.URLParams.Add("uuid", uuid)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestValidateUUIDMiddleware(t *testing.T) {
	t.Run("passes a valid UUID through", func(t *testing.T) {
		handlerCalled := false
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
			w.WriteHeader(http.StatusOK)
		})

		mw := middleware.ValidateUUIDMiddleware(testHandler)

		w := httptest.NewRecorder()
		mw.ServeHTTP(w, newRequestWithUUID("b3b7c8d0-0f1a-4a8e-9a3f-2f9d6f0a1b2c"))

		if !handlerCalled {
			t.Error("Expected request to reach the handler.")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("rejects a missing UUID", func(t *testing.T) {
		handlerCalled := false
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		})

		mw := middleware.ValidateUUIDMiddleware(testHandler)

		w := httptest.NewRecorder()
		mw.ServeHTTP(w, newRequestWithUUID(""))

		if handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("rejects a malformed UUID", func(t *testing.T) {
		handlerCalled := false
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		})

		mw := middleware.ValidateUUIDMiddleware(testHandler)

		w := httptest.NewRecorder()
		mw.ServeHTTP(w, newRequestWithUUID("not-a-uuid"))

		if handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}
