package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_CountsRequestsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	p := NewPrometheus(NewPrometheusOptions{
		Subsystem:  "http",
		Registerer: reg,
		ReqCntURLLabelMappingFn: func(c *gin.Context) string {
			return c.FullPath()
		},
	})

	r := gin.New()
	r.Use(p.HandlerFunc())
	r.GET("/payments/:paymentId", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payments/"+id, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	counts := gathered(t, reg, "http_req_total")
	require.Len(t, counts, 1)
	require.Equal(t, 2.0, counts[0].GetCounter().GetValue())
	labels := map[string]string{}
	for _, l := range counts[0].GetLabel() {
		labels[l.GetName()] = l.GetValue()
	}
	require.Equal(t, "/payments/:paymentId", labels["url"])
	require.Equal(t, "204", labels["code"])
}
