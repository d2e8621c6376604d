package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"near-expiry-api/services"

	"github.com/gin-gonic/gin"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation", &services.Error{Kind: services.ErrValidation, Message: "bad input"}, http.StatusBadRequest, "bad input"},
		{"unavailable", &services.Error{Kind: services.ErrUnavailable, Message: "gone"}, http.StatusBadRequest, "gone"},
		{"stock", &services.Error{Kind: services.ErrInsufficientStock, Message: "short"}, http.StatusBadRequest, "short"},
		{"transition", &services.Error{Kind: services.ErrInvalidTransition, Message: "no"}, http.StatusBadRequest, "no"},
		{"not found", &services.Error{Kind: services.ErrNotFound, Message: "missing"}, http.StatusNotFound, "missing"},
		{"conflict", &services.Error{Kind: services.ErrConflict, Message: "dup"}, http.StatusConflict, "dup"},
		{"unauthorized", &services.Error{Kind: services.ErrUnauthorized, Message: "who"}, http.StatusUnauthorized, "who"},
		{"forbidden", &services.Error{Kind: services.ErrForbidden, Message: "nope"}, http.StatusForbidden, "nope"},
		{"wrapped", fmt.Errorf("outer: %w", &services.Error{Kind: services.ErrNotFound, Message: "inner"}), http.StatusNotFound, "outer: inner"},
		{"internal", errors.New("database is locked"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err)

			if w.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", w.Code, tt.wantCode)
			}
			var body struct {
				Status  string `json:"status"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != "error" || body.Message != tt.wantMsg {
				t.Errorf("body = %+v, want message %q", body, tt.wantMsg)
			}
			if tt.wantCode == http.StatusInternalServerError && len(c.Errors) != 1 {
				t.Errorf("internal error not attached to context")
			}
		})
	}
}

func TestBindErrorMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("PATCH", "/", nil)
	c.Request.Body = http.NoBody

	var req updateOrderStatusRequest
	err := c.ShouldBindJSON(&req)
	if err == nil {
		t.Fatal("expected bind error for empty body")
	}
	bindError(c, err)
	if w.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", w.Code)
	}
}
