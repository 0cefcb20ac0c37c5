package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/learnhub/internal/gateway"
	"github.com/geocoder89/learnhub/internal/health"
	"github.com/geocoder89/learnhub/internal/http/handlers"
	"github.com/geocoder89/learnhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	results map[string]health.Result
}

func (f fakeChecker) CheckAll(context.Context) map[string]health.Result { return f.results }

func newGatewayEngine(urls map[string]string, checker handlers.HealthChecker) *gin.Engine {
	names := []string{"user-service", "course-service", "enrollment-service", "payment-service", "notification-service"}
	reg := gateway.NewRegistry(urls, names)
	fwd := gateway.NewForwarder(reg, time.Second, nil)
	h := handlers.NewGatewayHandler(names, fwd, checker)

	r := gin.New()
	r.GET("/", h.Index)
	r.GET("/services/health", h.ServicesHealth)
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)
	for _, route := range gateway.Routes {
		r.Handle(route.Method, route.Path, h.Proxy(route.Service))
	}
	return r
}

func TestGateway_Index(t *testing.T) {
	r := newGatewayEngine(nil, fakeChecker{})

	w := doJSON(r, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"services": ["user-service","course-service","enrollment-service","payment-service","notification-service"],
		"message": "Swagger UI Gateway running"
	}`, w.Body.String())
}

func TestGateway_RelaysCollaboratorAnswerVerbatim(t *testing.T) {
	courses := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/courses/c1" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"c1","title":"Go"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Course not found"}`))
	}))
	defer courses.Close()

	r := newGatewayEngine(map[string]string{"course-service": courses.URL}, fakeChecker{})

	w := doJSON(r, http.MethodGet, "/courses/c1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"c1","title":"Go"}`, w.Body.String())

	// a collaborator 404 stays a 404, not a 503
	w = doJSON(r, http.MethodGet, "/courses/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Course not found"}`, w.Body.String())
}

func TestGateway_ForwardsJSONBody(t *testing.T) {
	payments := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "/payments/initiate", r.URL.Path)
		assert.JSONEq(t, `{"enrollment_id":"e1","amount":50}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"payment_id":"p1","status":"success","amount":50}`))
	}))
	defer payments.Close()

	r := newGatewayEngine(map[string]string{"payment-service": payments.URL}, fakeChecker{})

	w := doJSON(r, http.MethodPost, "/payments/initiate", `{"enrollment_id":"e1","amount":50}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", decode(t, w)["status"])
}

func TestGateway_UnreachableCollaboratorIs503(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := newGatewayEngine(map[string]string{"user-service": url}, fakeChecker{})

	w := doJSON(r, http.MethodGet, "/users/list", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	detail, _ := decode(t, w)["detail"].(string)
	assert.Regexp(t, `^user-service unreachable: .+`, detail)
}

func TestGateway_ServicesHealthIsAlways200(t *testing.T) {
	r := newGatewayEngine(nil, fakeChecker{results: map[string]health.Result{
		"user-service":         {Status: health.StatusHealthy},
		"notification-service": {Status: health.StatusUnreachable, Detail: "connection refused"},
	}})

	w := doJSON(r, http.MethodGet, "/services/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"user-service": {"status":"healthy"},
		"notification-service": {"status":"unreachable","detail":"connection refused"}
	}`, w.Body.String())
}

func TestGateway_Docs(t *testing.T) {
	r := newGatewayEngine(nil, fakeChecker{})

	w := doJSON(r, http.MethodGet, "/docs", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/docs/openapi.yaml")

	w = doJSON(r, http.MethodGet, "/docs/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/services/health:")
}

type countingForwarder struct {
	calls int
}

func (f *countingForwarder) Forward(context.Context, string, gateway.Request) (*gateway.Response, error) {
	f.calls++
	return &gateway.Response{Status: http.StatusOK}, nil
}

func TestGateway_ChunkedBodyOverCapIs413(t *testing.T) {
	fwd := &countingForwarder{}
	h := handlers.NewGatewayHandler(nil, fwd, fakeChecker{})

	r := gin.New()
	r.Use(middlewares.MaxBodyBytes(8))
	r.POST("/payments/initiate", h.Proxy("payment-service"))

	req := httptest.NewRequest(http.MethodPost, "/payments/initiate",
		io.MultiReader(strings.NewReader(`{"enrollment_id":`), strings.NewReader(`"e1","amount":5}`)))
	req.Header.Set("Content-Type", "application/json")
	// no declared length, so only the read can catch the overrun
	req.ContentLength = -1

	w := serve(r, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "body_too_large", errorCode(t, w))
	assert.Zero(t, fwd.calls)
}
