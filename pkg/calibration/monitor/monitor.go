// Package monitor watches a loaded calibration document for on-disk drift.
// Calibration follows a restart-only lifecycle: a running engine never
// reloads, so when the file changes underneath it the monitor marks the
// loaded bundle stale, logs the drift, and leaves the decision to restart to
// the operator.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Monitor watches one calibration document for changes. Events are debounced
// so editors that write in bursts flag drift once.
type Monitor struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
	onDrift  func(path string)
	registry prometheus.Registerer

	stale      atomic.Bool
	staleGauge prometheus.Gauge

	mu      sync.Mutex
	running bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithDebounce overrides the drift debounce interval (default: 250ms).
func WithDebounce(d time.Duration) Option {
	return func(m *Monitor) { m.debounce = d }
}

// WithDriftCallback registers a callback invoked once per debounced drift
// detection, after the stale flag is set.
func WithDriftCallback(fn func(path string)) Option {
	return func(m *Monitor) { m.onDrift = fn }
}

// WithMetricsRegistry registers the staleness gauge against a specific
// registry instead of the default one.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(m *Monitor) { m.registry = reg }
}

// New creates a monitor over the calibration document at path.
func New(path string, opts ...Option) (*Monitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	m := &Monitor{
		path:     path,
		watcher:  watcher,
		logger:   slog.Default().With("component", "calibration.monitor"),
		debounce: 250 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.DefaultRegisterer
	}
	m.staleGauge = promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Name:        "ganymede_calibration_stale",
		Help:        "1 when the calibration document has changed on disk since loading.",
		ConstLabels: prometheus.Labels{"path": path},
	})
	return m, nil
}

// Stale reports whether the document has changed on disk since loading.
func (m *Monitor) Stale() bool {
	return m.stale.Load()
}

// Watch blocks, watching for drift until the context is cancelled or Stop is
// called.
//
// The parent directory is watched rather than the file itself so atomic
// save patterns (write temp, rename over) are still seen.
func (m *Monitor) Watch(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("monitor already running")
	}
	m.running = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		close(m.doneCh)
	}()

	dir := filepath.Dir(m.path)
	if err := m.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	m.logger.Info("calibration drift monitor started",
		"path", m.path,
		"debounce_ms", m.debounce.Milliseconds(),
	)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("calibration drift monitor stopped (context cancelled)")
			return nil

		case <-m.stopCh:
			m.logger.Info("calibration drift monitor stopped")
			return nil

		case event, ok := <-m.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !m.isDrift(event) {
				continue
			}

			m.logger.Debug("calibration file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			if timer != nil {
				timer.Stop()
			}
			op := event.Op.String()
			timer = time.AfterFunc(m.debounce, func() {
				m.flagDrift(op)
			})

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			m.logger.Error("calibration drift monitor error", "error", err)
		}
	}
}

// Stop stops the monitor and waits for the watch loop to exit. Stop is safe
// to call more than once.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return m.watcher.Close()
	}
	alreadyStopped := m.stopped
	m.stopped = true
	m.mu.Unlock()

	if !alreadyStopped {
		close(m.stopCh)
	}
	<-m.doneCh
	return m.watcher.Close()
}

// isDrift filters directory events down to changes of the watched file.
func (m *Monitor) isDrift(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == filepath.Clean(m.path)
}

// flagDrift marks the bundle stale. The flag latches: once drift is seen the
// only way back is to restart with the new document.
func (m *Monitor) flagDrift(op string) {
	first := m.stale.CompareAndSwap(false, true)
	m.staleGauge.Set(1)
	if first {
		m.logger.Warn("calibration document changed on disk; loaded calibration is stale, restart to apply",
			"path", m.path,
			"op", op,
		)
	} else {
		m.logger.Debug("calibration document changed again while stale",
			"path", m.path,
			"op", op,
		)
	}
	if m.onDrift != nil {
		m.onDrift(m.path)
	}
}
