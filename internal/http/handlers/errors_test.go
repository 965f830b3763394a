package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tourbooking/internal/domain"

	"github.com/gin-gonic/gin"
)

func TestRespondDomainErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.ValidationError{Field: "id", Msg: "id tidak valid"}, http.StatusBadRequest, "validation_error"},
		{"invalid state", domain.InvalidStateError{Resource: "booking", Current: "expired", Wanted: "pending_payment"}, http.StatusBadRequest, "invalid_state"},
		{"not found", domain.NotFoundError{Resource: "booking"}, http.StatusNotFound, "not_found"},
		{"unauthorized", domain.UnauthorizedError{Msg: "bukan milik customer ini"}, http.StatusForbidden, "unauthorized"},
		{"conflict", domain.ConflictError{Resource: "payment", Msg: "sudah ada"}, http.StatusConflict, "conflict"},
		{"upstream", domain.UpstreamError{Op: "checkout", Err: errors.New("timeout")}, http.StatusBadGateway, "upstream_error"},
		{"internal", domain.InternalError{Err: errors.New("driver: bad connection")}, http.StatusInternalServerError, "internal_error"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "unknown_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondDomainError(c, tc.err)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if !strings.Contains(rec.Body.String(), tc.code) {
				t.Fatalf("body %q missing code %q", rec.Body.String(), tc.code)
			}
		})
	}
}

func TestRespondDomainErrorHidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondDomainError(c, domain.InternalError{Err: errors.New("dsn user:pass@tcp(db)/tour")})

	if strings.Contains(rec.Body.String(), "dsn") {
		t.Fatalf("response leaked the wrapped cause: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "terjadi kesalahan") {
		t.Fatalf("expected the generic message, got %s", rec.Body.String())
	}
}
