package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsHandler(t *testing.T) {
	exporter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# HELP predictions_total\n"))
	})

	w := serve(NewMetricsHandler(exporter), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "predictions_total")

	w = serve(NewMetricsHandler(nil), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
