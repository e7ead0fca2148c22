// Package scheduler runs drain cycles on a cadence and on connectivity
// events. The engine itself stays callable on demand; this is only the
// caller that decides the cadence.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/tapresto/possync/internal/logging"
	syncpkg "github.com/tapresto/possync/internal/sync"
)

// Drainer is the single engine operation the scheduler needs.
type Drainer interface {
	Drain(ctx context.Context) (*syncpkg.DrainResult, error)
}

// Config holds scheduler configuration.
type Config struct {
	DrainInterval time.Duration // cadence while online (default: 1 minute)
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{DrainInterval: time.Minute}
}

// Scheduler triggers periodic drains while online and an immediate drain
// when connectivity is restored. Overlapping triggers are harmless: the
// engine's single-flight guard turns them into no-ops.
type Scheduler struct {
	engine   Drainer
	interval time.Duration

	mu        sync.Mutex
	isRunning bool
	isOnline  bool
	stopCh    chan struct{}
	trigger   chan struct{}
	wg        sync.WaitGroup
}

// New creates a scheduler for the given engine.
func New(engine Drainer, config *Config) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Scheduler{
		engine:   engine,
		interval: config.DrainInterval,
		isOnline: true,
	}
}

// Start launches the drain loop. Calling Start on a running scheduler is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.stopCh = make(chan struct{})
	s.trigger = make(chan struct{}, 1)
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	logging.Info("Drain scheduler started", map[string]interface{}{
		"interval": s.interval.String(),
	})
}

// Stop shuts the loop down and waits for it to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	logging.Info("Drain scheduler stopped")
}

// SetOnline records a connectivity change. Going from offline to online
// triggers an immediate drain so queued orders do not wait a full interval.
func (s *Scheduler) SetOnline(online bool) {
	s.mu.Lock()
	wasOnline := s.isOnline
	s.isOnline = online
	running := s.isRunning
	s.mu.Unlock()

	if running && online && !wasOnline {
		s.TriggerDrain()
	}
}

// IsOnline reports the recorded connectivity state.
func (s *Scheduler) IsOnline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOnline
}

// TriggerDrain requests an immediate drain. Requests arriving while one is
// already queued collapse into a single trigger.
func (s *Scheduler) TriggerDrain() {
	s.mu.Lock()
	trigger := s.trigger
	running := s.isRunning
	s.mu.Unlock()

	if !running {
		return
	}
	select {
	case trigger <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if !s.IsOnline() {
				continue
			}
			s.drain(ctx)
		case <-s.trigger:
			s.drain(ctx)
		}
	}
}

func (s *Scheduler) drain(ctx context.Context) {
	result, err := s.engine.Drain(ctx)
	if err != nil {
		logging.Warn("Scheduled drain failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if result.Skipped {
		logging.Debug("Drain already in progress, skipping")
		return
	}
	if result.Confirmed > 0 || result.Pending > 0 || result.DeadLettered > 0 {
		logging.Info("Scheduled drain completed", map[string]interface{}{
			"confirmed":     result.Confirmed,
			"pending":       result.Pending,
			"dead_lettered": result.DeadLettered,
		})
	}
}
