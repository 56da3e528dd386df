package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveMesh(36, 6, 0)
	c.ObserveMesh(30, 5, 1)
	c.ObservePass(3*time.Millisecond, 4, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.chunksMeshed))
	assert.Equal(t, 66.0, testutil.ToFloat64(c.vertices))
	assert.Equal(t, 11.0, testutil.ToFloat64(c.faces.WithLabelValues("emitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.faces.WithLabelValues("culled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.passes))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.loadedChunks))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.cachedChunks))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveMesh(1, 1, 1)
	c.ObservePass(time.Second, 1, 1)
}

func TestHandlerServesText(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).ObserveMesh(6, 1, 5)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "voxel_mesh_vertices_emitted_total 6")
	assert.Contains(t, rec.Body.String(), `voxel_mesh_faces_total{outcome="culled"} 5`)
}
