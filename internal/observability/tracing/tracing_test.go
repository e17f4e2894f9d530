package tracing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func TestSafeAttributesDropsUnknownKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/bill/:public_uuid"),
		attribute.String("http.url", "/bill/5b0f1c1e"),
		attribute.Int("http.status_code", 200),
	)

	assert.Len(t, attrs, 2)
	for _, a := range attrs {
		assert.NotEqual(t, attribute.Key("http.url"), a.Key)
	}
}

func TestSafeErrorFlattensChain(t *testing.T) {
	inner := errors.New("password=secret")
	err := SafeError(errors.Join(errors.New("query failed"), inner))

	assert.False(t, errors.Is(err, inner))
	assert.Nil(t, SafeError(nil))
}

func TestGinMiddlewareAttachesSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())

	var hasSpan bool
	r.GET("/health", func(c *gin.Context) {
		hasSpan = trace.SpanFromContext(c.Request.Context()) != nil
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hasSpan)
}
