package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type routeFunc func(e *echo.Echo)

func (f routeFunc) RegisterRoutes(e *echo.Echo) { f(e) }

type pingRequest struct {
	Name  string `query:"name" validate:"required"`
	Count int    `query:"count" default:"3" validate:"gte=1,lte=10"`
}

func testServer() *Server {
	return NewServer(routeFunc(func(e *echo.Echo) {
		e.GET("/ping", func(c echo.Context) error {
			req := &pingRequest{}
			if verr := ReadAndValidateRequest(c, req); verr != nil {
				return BadRequestResponse(c, verr)
			}
			return SuccessResponse(c, req)
		})
		e.GET("/missing", func(c echo.Context) error {
			return AppErrorResponse(c, NotFoundError("nothing here"))
		})
		e.GET("/panic", func(c echo.Context) error {
			panic("boom")
		})
	}))
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServerBindsDefaultsAndValidates(t *testing.T) {
	s := testServer()

	rec := get(s, "/ping?name=x")
	if !strings.Contains(rec.Body.String(), `"Count":3`) {
		t.Fatalf("default not applied: %s", rec.Body.String())
	}

	rec = get(s, "/ping?count=20")
	body := rec.Body.String()
	if !strings.Contains(body, `"status":400`) || !strings.Contains(body, "ERR_REQUIRED") || !strings.Contains(body, "ERR_LTE") {
		t.Fatalf("unexpected validation body: %s", body)
	}
}

func TestServerErrorsAndRecovery(t *testing.T) {
	s := testServer()

	rec := get(s, "/missing")
	if !strings.Contains(rec.Body.String(), `"code":"ERR_NOT_FOUND"`) || !strings.Contains(rec.Body.String(), `"status":404`) {
		t.Fatalf("unexpected not-found body: %s", rec.Body.String())
	}

	rec = get(s, "/panic")
	body := rec.Body.String()
	if rec.Code != http.StatusOK || !strings.Contains(body, `"status":500`) || !strings.Contains(body, "ERR_INTERNAL") {
		t.Fatalf("panic should map to an internal envelope, got %d %s", rec.Code, body)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatalf("request id header missing on recovered response")
	}
}

func TestServerKeepsCallerRequestID(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/ping?name=x", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	if got := rec.Header().Get(echo.HeaderXRequestID); got != "abc-123" {
		t.Fatalf("request id = %q", got)
	}
}

func TestServerExposesMetrics(t *testing.T) {
	s := testServer()
	get(s, "/ping?name=x")

	rec := get(s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `http_requests_total{method="GET",route="/ping",status="200"}`) {
		t.Fatalf("route metric missing")
	}
}
