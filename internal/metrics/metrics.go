// Package metrics exports meshing counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the meshing metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	chunksMeshed prometheus.Counter
	vertices     prometheus.Counter
	faces        *prometheus.CounterVec
	passes       prometheus.Counter
	passDuration prometheus.Histogram
	cachedChunks prometheus.Gauge
	loadedChunks prometheus.Gauge
}

// New creates the collector and registers it with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		chunksMeshed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "mesh",
			Name:      "chunks_built_total",
			Help:      "Chunk meshes rebuilt.",
		}),
		vertices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "mesh",
			Name:      "vertices_emitted_total",
			Help:      "Vertices produced by rebuilt chunk meshes.",
		}),
		faces: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "mesh",
			Name:      "faces_total",
			Help:      "Block faces considered while meshing, by outcome.",
		}, []string{"outcome"}),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "render",
			Name:      "passes_total",
			Help:      "Render passes completed.",
		}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel",
			Subsystem: "render",
			Name:      "pass_duration_seconds",
			Help:      "Wall time of a render pass, meshing and backend hand-off included.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		cachedChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Subsystem: "render",
			Name:      "cached_chunks",
			Help:      "Chunks drawn from the mesh cache in the last pass.",
		}),
		loadedChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Subsystem: "world",
			Name:      "loaded_chunks",
			Help:      "Chunks loaded in the world at the last pass.",
		}),
	}
	reg.MustRegister(c.chunksMeshed, c.vertices, c.faces, c.passes, c.passDuration, c.cachedChunks, c.loadedChunks)
	return c
}

// ObserveMesh records one rebuilt chunk mesh.
func (c *Collector) ObserveMesh(vertices, faces, culled int) {
	if c == nil {
		return
	}
	c.chunksMeshed.Inc()
	c.vertices.Add(float64(vertices))
	c.faces.WithLabelValues("emitted").Add(float64(faces))
	c.faces.WithLabelValues("culled").Add(float64(culled))
}

// ObservePass records a completed render pass.
func (c *Collector) ObservePass(d time.Duration, loaded, cached int) {
	if c == nil {
		return
	}
	c.passes.Inc()
	c.passDuration.Observe(d.Seconds())
	c.loadedChunks.Set(float64(loaded))
	c.cachedChunks.Set(float64(cached))
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
