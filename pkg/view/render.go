package view

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lucentlabs/lens/pkg/chart"
	"github.com/lucentlabs/lens/pkg/dataset"
	"github.com/lucentlabs/lens/pkg/metric"
	"github.com/lucentlabs/lens/pkg/metrics"
)

// PreviewResult is a raw row sample for tabular display.
type PreviewResult struct {
	Dataset   string           `json:"dataset"`
	Columns   []dataset.Column `json:"columns"`
	Rows      [][]string       `json:"rows"`
	TotalRows int              `json:"totalRows"`
	Available bool             `json:"available"`
}

// Result is one rendered view: everything the presentation shell
// needs to draw KPI cards, charts, and tables.
type Result struct {
	View       string          `json:"view"`
	Title      string          `json:"title"`
	Metrics    []metric.Result `json:"metrics"`
	Charts     []chart.Spec    `json:"charts"`
	Previews   []PreviewResult `json:"previews"`
	RenderedAt time.Time       `json:"renderedAt"`
}

// RendererConfig configures a Renderer.
type RendererConfig struct {
	Logger *slog.Logger
	Clock  clockwork.Clock
}

func (cfg *RendererConfig) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Renderer runs the pure pipeline (view id, snapshot) -> Result,
// caching results keyed by view id plus the fingerprints of the
// view's prerequisite datasets. Renders carry no state between
// selections beyond that cache.
type Renderer struct {
	log   *slog.Logger
	clock clockwork.Clock

	mu    sync.Mutex
	cache map[string]*Result
}

func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{
		log:   cfg.Logger,
		clock: cfg.Clock,
		cache: make(map[string]*Result),
	}, nil
}

// Render produces the Result for a view id over the given snapshot.
// Unknown ids fail with ErrViewNotFound; everything else degrades
// per-request instead of erroring.
func (r *Renderer) Render(id string, snap *dataset.Snapshot) (*Result, error) {
	def, err := Get(id)
	if err != nil {
		metrics.ViewRendersTotal.WithLabelValues(id, "not_found").Inc()
		return nil, err
	}

	key := def.ID + "#" + snap.FingerprintKey(def.Datasets)
	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		metrics.RenderCacheHitsTotal.WithLabelValues(def.ID).Inc()
		return cached, nil
	}
	r.mu.Unlock()

	start := r.clock.Now()
	result := &Result{
		View:       def.ID,
		Title:      def.Title,
		Metrics:    make([]metric.Result, 0, len(def.Metrics)),
		Charts:     make([]chart.Spec, 0, len(def.Charts)),
		Previews:   make([]PreviewResult, 0, len(def.Previews)),
		RenderedAt: start.UTC(),
	}

	for _, req := range def.Metrics {
		ds, _ := snap.Get(req.Dataset)
		result.Metrics = append(result.Metrics, metric.Evaluate(ds, req))
	}
	for _, req := range def.Charts {
		ds, _ := snap.Get(req.Dataset)
		result.Charts = append(result.Charts, chart.Build(ds, req))
	}
	for _, req := range def.Previews {
		result.Previews = append(result.Previews, buildPreview(snap, req))
	}

	r.mu.Lock()
	r.cache[key] = result
	r.mu.Unlock()

	metrics.ViewRendersTotal.WithLabelValues(def.ID, "ok").Inc()
	metrics.ViewRenderDuration.WithLabelValues(def.ID).Observe(r.clock.Since(start).Seconds())
	r.log.Debug("renderer: view rendered", "view", def.ID,
		"metrics", len(result.Metrics), "charts", len(result.Charts))
	return result, nil
}

// Invalidate drops every cached render. Called alongside loader
// invalidation on explicit reload.
func (r *Renderer) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*Result)
}

func buildPreview(snap *dataset.Snapshot, req Preview) PreviewResult {
	ds, ok := snap.Get(req.Dataset)
	if !ok {
		return PreviewResult{Dataset: req.Dataset}
	}
	return PreviewResult{
		Dataset:   req.Dataset,
		Columns:   ds.Columns,
		Rows:      ds.Head(req.Limit),
		TotalRows: ds.RowCount(),
		Available: true,
	}
}
