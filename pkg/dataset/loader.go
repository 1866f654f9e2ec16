package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/lucentlabs/lens/pkg/metrics"
)

var (
	// ErrNotFound means the source file is missing.
	ErrNotFound = errors.New("dataset not found")
	// ErrMalformed means the source file exists but could not be parsed.
	ErrMalformed = errors.New("dataset malformed")
	// ErrNoDatasets means not a single dataset loaded. This is the only
	// fatal load condition.
	ErrNoDatasets = errors.New("no datasets loaded")
)

// Status is the outcome of one dataset load attempt.
type Status string

const (
	StatusLoaded    Status = "loaded"
	StatusEmpty     Status = "empty" // header only, zero rows; not an error
	StatusNotFound  Status = "not_found"
	StatusMalformed Status = "malformed"
)

// OK reports whether the status yielded a usable Dataset.
func (s Status) OK() bool {
	return s == StatusLoaded || s == StatusEmpty
}

// Source names one dataset and where its CSV lives.
type Source struct {
	Name string
	Path string
}

// Outcome is the per-dataset load record surfaced to operators.
type Outcome struct {
	Dataset     string    `json:"dataset"`
	Status      Status    `json:"status"`
	Rows        int       `json:"rows"`
	Columns     int       `json:"columns"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	LoadedAt    time.Time `json:"loadedAt,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Config configures a Loader.
type Config struct {
	Logger      *slog.Logger
	Clock       clockwork.Clock
	Parallelism int
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}
	return nil
}

// Loader reads declared sources into Datasets. Repeated loads of a
// source whose content fingerprint is unchanged reuse the previously
// built Dataset instead of reparsing.
type Loader struct {
	log *slog.Logger
	cfg Config

	mu   sync.Mutex
	memo map[string]*memoEntry // keyed by source path
}

type memoEntry struct {
	fingerprint string
	ds          *Dataset
}

func NewLoader(cfg Config) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Loader{
		log:  cfg.Logger,
		cfg:  cfg,
		memo: make(map[string]*memoEntry),
	}, nil
}

// LoadAll loads every source, never stopping at the first failure.
// Each source gets exactly one Outcome. The returned error is non-nil
// only when zero sources produced a usable Dataset.
func (l *Loader) LoadAll(ctx context.Context, sources []Source) (*Snapshot, error) {
	results := make([]loadResult, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.Parallelism)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = l.loadOne(src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load interrupted: %w", err)
	}

	snap := &Snapshot{byName: make(map[string]*Dataset, len(sources))}
	loaded := 0
	for _, res := range results {
		snap.outcomes = append(snap.outcomes, res.outcome)
		metrics.DatasetLoadsTotal.WithLabelValues(res.outcome.Dataset, string(res.outcome.Status)).Inc()
		if res.outcome.Status.OK() {
			snap.byName[res.outcome.Dataset] = res.ds
			loaded++
		}
		l.logOutcome(res.outcome)
	}
	metrics.DatasetsLoaded.Set(float64(loaded))

	if loaded == 0 {
		return nil, fmt.Errorf("%w: all %d sources failed", ErrNoDatasets, len(sources))
	}
	return snap, nil
}

// Invalidate drops the fingerprint memo so the next LoadAll reparses
// every source from storage.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.memo = make(map[string]*memoEntry)
}

type loadResult struct {
	ds      *Dataset
	outcome Outcome
}

func (l *Loader) loadOne(src Source) loadResult {
	raw, err := os.ReadFile(src.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return loadResult{outcome: Outcome{
				Dataset: src.Name,
				Status:  StatusNotFound,
				Error:   fmt.Sprintf("%s: %v", ErrNotFound, filepath.Base(src.Path)),
			}}
		}
		return loadResult{outcome: Outcome{
			Dataset: src.Name,
			Status:  StatusMalformed,
			Error:   err.Error(),
		}}
	}

	fingerprint := fmt.Sprintf("%016x", xxhash.Sum64(raw))

	l.mu.Lock()
	if entry, ok := l.memo[src.Path]; ok && entry.fingerprint == fingerprint {
		ds := entry.ds
		l.mu.Unlock()
		metrics.DatasetLoadCacheHitsTotal.Inc()
		return loadResult{ds: ds, outcome: l.outcomeFor(ds)}
	}
	l.mu.Unlock()

	ds, err := ReadCSV(src.Name, bytes.NewReader(raw))
	if err != nil {
		return loadResult{outcome: Outcome{
			Dataset: src.Name,
			Status:  StatusMalformed,
			Error:   err.Error(),
		}}
	}
	ds.Fingerprint = fingerprint
	ds.LoadedAt = l.cfg.Clock.Now().UTC()

	l.mu.Lock()
	l.memo[src.Path] = &memoEntry{fingerprint: fingerprint, ds: ds}
	l.mu.Unlock()

	return loadResult{ds: ds, outcome: l.outcomeFor(ds)}
}

func (l *Loader) outcomeFor(ds *Dataset) Outcome {
	status := StatusLoaded
	if ds.RowCount() == 0 {
		status = StatusEmpty
	}
	return Outcome{
		Dataset:     ds.Name,
		Status:      status,
		Rows:        ds.RowCount(),
		Columns:     len(ds.Columns),
		Fingerprint: ds.Fingerprint,
		LoadedAt:    ds.LoadedAt,
	}
}

func (l *Loader) logOutcome(o Outcome) {
	switch o.Status {
	case StatusLoaded:
		l.log.Info("loader: dataset loaded", "dataset", o.Dataset, "rows", o.Rows, "columns", o.Columns, "fingerprint", o.Fingerprint)
	case StatusEmpty:
		l.log.Info("loader: dataset loaded empty", "dataset", o.Dataset, "columns", o.Columns)
	default:
		l.log.Warn("loader: dataset failed to load", "dataset", o.Dataset, "status", string(o.Status), "error", o.Error)
	}
}

// Snapshot is one immutable set of load results. Render requests
// share it read-only; a reload produces a fresh Snapshot rather than
// mutating this one.
type Snapshot struct {
	byName   map[string]*Dataset
	outcomes []Outcome
}

// Get returns the named Dataset, or nil and false if it did not load.
func (s *Snapshot) Get(name string) (*Dataset, bool) {
	ds, ok := s.byName[name]
	return ds, ok
}

// Outcomes returns the per-dataset load report in source order.
func (s *Snapshot) Outcomes() []Outcome {
	return s.outcomes
}

// LoadedCount returns how many datasets are usable.
func (s *Snapshot) LoadedCount() int {
	return len(s.byName)
}

// FingerprintKey builds a stable composite key over the named
// datasets' fingerprints. Missing datasets contribute a fixed marker
// so availability changes also change the key.
func (s *Snapshot) FingerprintKey(names []string) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if ds, ok := s.byName[name]; ok {
			parts = append(parts, name+"="+ds.Fingerprint)
		} else {
			parts = append(parts, name+"=absent")
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
