// Package metrics exports per-frame render statistics to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lixenwraith/tilegrid/render"
)

const namespace = "tilegrid"

// Exporter turns render.Stats into counters, gauges and a frame-time histogram
type Exporter struct {
	frames        prometheus.Counter
	cellsVisited  prometheus.Counter
	cellsDrawn    prometheus.Counter
	cellsMasked   prometheus.Counter
	entitiesDrawn prometheus.Counter
	drawCalls     prometheus.Counter
	frameSeconds  prometheus.Histogram
	layers        *prometheus.GaugeVec
	entities      prometheus.Gauge
}

// New registers the collectors with reg, or the default registry if nil
func New(reg prometheus.Registerer) (*Exporter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	e := &Exporter{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames drawn.",
		}),
		cellsVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_visited_total",
			Help:      "Grid cells examined by the layer renderer.",
		}),
		cellsDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_drawn_total",
			Help:      "Grid cells that produced draw calls.",
		}),
		cellsMasked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_masked_total",
			Help:      "Non-empty cells and entities hidden entirely by masks.",
		}),
		entitiesDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_drawn_total",
			Help:      "Entities drawn.",
		}),
		drawCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draw_calls_total",
			Help:      "Backend primitives issued.",
		}),
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent drawing one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10),
		}),
		layers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "layers",
			Help:      "Layers in each stack.",
		}, []string{"stack"}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Live entities in the pool.",
		}),
	}

	for _, c := range []prometheus.Collector{
		e.frames, e.cellsVisited, e.cellsDrawn, e.cellsMasked,
		e.entitiesDrawn, e.drawCalls, e.frameSeconds, e.layers, e.entities,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Attach records every frame of c once it has been presented
func (e *Exporter) Attach(c *render.Context) {
	c.Observe(render.PhasePostDraw, e.Record)
}

// Record adds the last frame's statistics
func (e *Exporter) Record(c *render.Context) {
	s := c.Stats()
	e.frames.Inc()
	e.cellsVisited.Add(float64(s.CellsVisited))
	e.cellsDrawn.Add(float64(s.CellsDrawn))
	e.cellsMasked.Add(float64(s.CellsMasked))
	e.entitiesDrawn.Add(float64(s.EntitiesDrawn))
	e.drawCalls.Add(float64(s.DrawCalls))
	e.frameSeconds.Observe(s.Duration.Seconds())

	e.layers.WithLabelValues("world").Set(float64(c.World.Len()))
	e.layers.WithLabelValues("ui").Set(float64(c.UI.Len()))
	e.entities.Set(float64(c.Entities.Len()))
}

// Handler serves the metrics gathered by g, or the default gatherer if nil
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

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
