package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cesizen/internal/diagnostic"
	"cesizen/internal/service"
)

func TestWriteServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{diagnostic.ErrInvalidSubmission, http.StatusBadRequest, `{"error":"select at least one event"}`},
		{fmt.Errorf("%w: event 99", diagnostic.ErrUnknownEvent), http.StatusBadRequest, `{"error":"unknown stress event: event 99"}`},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, `{"error":"invalid credentials"}`},
		{service.ErrForbidden, http.StatusForbidden, ""},
		{service.ErrArticleNotFound, http.StatusNotFound, ""},
		{service.ErrEmailTaken, http.StatusConflict, ""},
		{service.ErrRateLimited, http.StatusTooManyRequests, ""},
		{fmt.Errorf("%w: smtp", service.ErrEmailSendFailure), http.StatusServiceUnavailable, `{"error":"email delivery unavailable"}`},
		{fmt.Errorf("%w: dial tcp", diagnostic.ErrCatalogUnavailable), http.StatusInternalServerError, `{"error":"stress event catalog unavailable"}`},
		{errors.New("boom"), http.StatusInternalServerError, `{"error":"internal error"}`},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		writeServiceError(c, zap.NewNop(), "test", tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		if tc.body != "" && rec.Body.String() != tc.body {
			t.Fatalf("%v: unexpected body %s", tc.err, rec.Body.String())
		}
	}
}

func TestQueryInt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=5&offset=abc", nil)

	if got := queryInt(c, "limit", 20); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := queryInt(c, "offset", 0); got != 0 {
		t.Fatalf("expected default for invalid value, got %d", got)
	}
	if got := queryInt(c, "missing", 7); got != 7 {
		t.Fatalf("expected default, got %d", got)
	}
}
