// Package dataservice loads the dashboard's pre-computed CSV datasets, decodes
// them into typed rows and keeps them in the TTL cache.
package dataservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/transfusion-vitals/pkg/cache"
	"github.com/synaptica-ai/transfusion-vitals/pkg/catalog"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/logger"
	"github.com/synaptica-ai/transfusion-vitals/pkg/csvsource"
)

const (
	// IndexTTL applies to slow-changing reference data.
	IndexTTL = 30 * time.Minute
	// SeriesTTL applies to per-selection time series.
	SeriesTTL = 15 * time.Minute

	eventSource = "vitals-service"
)

var (
	ErrUnknownVital  = errors.New("unknown vital parameter")
	ErrUnknownFactor = errors.New("unknown comparison factor")
	ErrInvalidSpan   = errors.New("loess span must be between 10 and 90")
)

// Fetcher loads one CSV resource by logical file name.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (*csvsource.Resource, error)
}

// EventPublisher announces preload and cache lifecycle events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

// Purger drops any copies of the source files held outside this process.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

type Option func(*Service)

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithPurger(p Purger) Option {
	return func(s *Service) { s.purger = p }
}

func WithCatalog(c catalog.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// WithTTLs overrides the reference and series TTLs; zero keeps the default.
func WithTTLs(index, series time.Duration) Option {
	return func(s *Service) {
		if index > 0 {
			s.indexTTL = index
		}
		if series > 0 {
			s.seriesTTL = series
		}
	}
}

type Service struct {
	cache     *cache.Cache
	fetcher   Fetcher
	catalog   catalog.Catalog
	publisher EventPublisher
	purger    Purger
	indexTTL  time.Duration
	seriesTTL time.Duration
}

func New(c *cache.Cache, fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		cache:     c,
		fetcher:   fetcher,
		catalog:   catalog.DefaultCatalog(),
		indexTTL:  IndexTTL,
		seriesTTL: SeriesTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Catalog() catalog.Catalog {
	return s.catalog
}

func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// cached returns the value under key, or builds it, stores it for ttl and
// returns it. Failed builds are not cached.
func cached[T any](s *Service, key string, ttl time.Duration, build func() (T, error)) (T, error) {
	if v, ok := cache.GetAs[T](s.cache, key); ok {
		return v, nil
	}
	v, err := build()
	if err != nil {
		var zero T
		return zero, err
	}
	s.cache.Set(key, v, ttl)
	return v, nil
}

func (s *Service) fetchRows(ctx context.Context, dataset, name string) ([]csvsource.Row, error) {
	res, err := s.fetcher.Fetch(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dataset, err)
	}
	logger.Log.WithFields(logrus.Fields{
		"dataset": dataset,
		"path":    res.Path,
		"rows":    len(res.Rows),
	}).Debug("dataset fetched")
	return res.Rows, nil
}

func (s *Service) checkVital(vital string) error {
	if !s.catalog.IsVitalParam(vital) {
		return fmt.Errorf("%w: %q", ErrUnknownVital, vital)
	}
	return nil
}

func (s *Service) checkFactor(factor string) error {
	if !s.catalog.IsCompFactor(factor) {
		return fmt.Errorf("%w: %q", ErrUnknownFactor, factor)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, eventType, eventSource, data); err != nil {
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("event not published")
	}
}
