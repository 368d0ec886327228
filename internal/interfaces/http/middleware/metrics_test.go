package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	router := gin.New()
	router.Use(HTTPMetrics(provider.Meter("http.server")))
	router.GET("/products/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/products/1", "/products/2", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	var sawDuration bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if m.Name != "http_server_request_total" {
					continue
				}
				for _, dp := range data.DataPoints {
					route, _ := dp.Attributes.Value(attribute.Key("http.route"))
					counts[route.AsString()] += dp.Value
				}
			case metricdata.Histogram[float64]:
				if m.Name == "http_server_request_duration_seconds" {
					sawDuration = len(data.DataPoints) > 0
				}
			}
		}
	}

	assert.Equal(t, int64(2), counts["/products/:id"])
	assert.Equal(t, int64(1), counts["unknown"])
	assert.True(t, sawDuration)
}

func TestHTTPMetrics_NilMeter(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(nil))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
