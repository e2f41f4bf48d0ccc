package dataservice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/logger"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/models"
	"github.com/synaptica-ai/transfusion-vitals/pkg/observability/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	EventPreloadCompleted = "preload.completed"
	EventCacheCleared     = "cache.cleared"
	EventDataRefreshed    = "data.refreshed"
)

// PreloadReport lists which datasets were warmed and which failed.
type PreloadReport struct {
	Loaded   []string          `json:"loaded"`
	Failed   map[string]string `json:"failed,omitempty"`
	Duration time.Duration     `json:"duration"`
}

type preloadTarget struct {
	name string
	load func(ctx context.Context) error
}

func (s *Service) preloadTargets() []preloadTarget {
	return []preloadTarget{
		{"viz_index", func(ctx context.Context) error { _, err := s.VizIndex(ctx); return err }},
		{"observed_summary", func(ctx context.Context) error { _, err := s.ObservedDataSummary(ctx); return err }},
		{"model_summary", func(ctx context.Context) error { _, err := s.ModelBasedSummary(ctx); return err }},
		{"loess", func(ctx context.Context) error { s.LoessData(ctx); return nil }},
		{"factor_observed_summary", func(ctx context.Context) error { _, err := s.FactorObservedSummary(ctx); return err }},
		{"factor_model_summary", func(ctx context.Context) error { _, err := s.FactorModelSummary(ctx); return err }},
	}
}

// Preload warms the reference datasets concurrently. It never fails: each
// target's error is logged and recorded in the report so startup can go on.
func (s *Service) Preload(ctx context.Context) PreloadReport {
	start := time.Now()
	targets := s.preloadTargets()

	var (
		mu     sync.Mutex
		failed = make(map[string]string)
		ok     = make([]bool, len(targets))
	)

	// Plain group: one failed target must not cancel the others.
	var g errgroup.Group
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			if err := t.load(ctx); err != nil {
				logger.Log.WithError(err).WithField("dataset", t.name).Warn("Preload failed")
				mu.Lock()
				failed[t.name] = err.Error()
				mu.Unlock()
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	report := PreloadReport{Duration: time.Since(start)}
	for i, t := range targets {
		if ok[i] {
			report.Loaded = append(report.Loaded, t.name)
		}
	}
	if len(failed) > 0 {
		report.Failed = failed
	}

	metrics.ObservePreload(len(failed), report.Duration)
	logger.Log.WithFields(logrus.Fields{
		"loaded":      len(report.Loaded),
		"failed":      len(failed),
		"duration_ms": report.Duration.Milliseconds(),
	}).Info("Preload finished")

	s.publish(ctx, EventPreloadCompleted, map[string]interface{}{
		"loaded": report.Loaded,
		"failed": len(failed),
	})
	return report
}

// ClearCache drops every cached dataset.
func (s *Service) ClearCache(ctx context.Context) {
	s.cache.Clear()
	logger.Log.Info("Dataset cache cleared")
	s.publish(ctx, EventCacheCleared, nil)
}

// HandleRefreshEvent reacts to upstream notices that new CSV files were
// published: shared mirror copies are purged, the cache is cleared and the
// reference datasets are loaded again. Other event types are ignored.
//
// A failed purge is returned, but only after the local cache has been cleared
// and reloaded.
func (s *Service) HandleRefreshEvent(ctx context.Context, event models.Event) error {
	if event.Type != EventDataRefreshed {
		logger.Log.WithField("event_type", event.Type).Debug("Ignoring event")
		return nil
	}

	var purgeErr error
	if s.purger != nil {
		n, err := s.purger.Purge(ctx)
		if err != nil {
			purgeErr = fmt.Errorf("purge csv mirror: %w", err)
		} else {
			logger.Log.WithField("keys", n).Info("Shared CSV mirror purged")
		}
	}

	s.ClearCache(ctx)
	s.Preload(ctx)
	return purgeErr
}
