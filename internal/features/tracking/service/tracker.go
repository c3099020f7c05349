package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"package-tracker/internal/core/cache"
	"package-tracker/internal/core/logger"
	"package-tracker/internal/features/tracking/domain"

	"go.uber.org/zap"
)

// autoCarrierKey is the cache-key token used when no explicit carrier was
// supplied by the caller.
const autoCarrierKey = "auto"

// Failure messages surfaced in TrackResult. Kept as constants so handlers
// and tests can rely on them.
const (
	msgCarrierUndetectable = "could not detect carrier from tracking number, please specify manually"
	msgNoTrackingInfo      = "unable to retrieve tracking information"
)

// TrackerService orchestrates carrier detection, adapter dispatch, result
// caching and batch fan-out. It owns the result cache exclusively.
type TrackerService struct {
	registry *Registry
	cache    cache.Cache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewTrackerService creates the orchestrator with the given registry,
// cache backend and cache TTL.
func NewTrackerService(registry *Registry, c cache.Cache, ttl time.Duration) *TrackerService {
	return &TrackerService{
		registry: registry,
		cache:    c,
		ttl:      ttl,
		logger:   logger.Get(),
	}
}

// Track resolves the carrier (explicit or detected), serves from the cache
// when possible and otherwise dispatches to the carrier adapter. Every
// failure is converted into a TrackResult; no adapter error escapes.
func (s *TrackerService) Track(ctx context.Context, trackingNumber string, carrier domain.CarrierType) domain.TrackResult {
	cacheKey := s.cacheKey(trackingNumber, carrier)

	if pkg := s.cachedPackage(ctx, cacheKey); pkg != nil {
		return domain.TrackResult{Success: true, Package: pkg, Cached: true}
	}

	resolved := carrier
	detected := false
	if resolved == "" || resolved == domain.CarrierUnknown {
		resolved = s.registry.Detect(trackingNumber)
		detected = true
	}

	if resolved == domain.CarrierUnknown {
		return domain.TrackResult{Success: false, Error: msgCarrierUndetectable}
	}

	adapter := s.registry.Get(resolved)
	if adapter == nil {
		return domain.TrackResult{Success: false, Error: fmt.Sprintf("carrier %s not supported", resolved)}
	}

	pkg, err := adapter.Track(ctx, trackingNumber)
	if err != nil {
		s.logger.Warn("Carrier tracking call failed",
			zap.String("carrier", string(resolved)),
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return domain.TrackResult{Success: false, Error: fmt.Sprintf("tracking failed: %s", err)}
	}
	if pkg == nil {
		return domain.TrackResult{Success: false, Error: msgNoTrackingInfo}
	}

	pkg.CarrierDetected = detected
	s.storePackage(ctx, cacheKey, pkg)

	return domain.TrackResult{Success: true, Package: pkg}
}

// TrackBatch runs one independent lookup per input concurrently. Results
// keep the input order and one item's failure never affects the others;
// the cache is the only shared state.
func (s *TrackerService) TrackBatch(ctx context.Context, trackingNumbers []string) domain.BatchResult {
	results := make([]domain.TrackResult, len(trackingNumbers))

	var wg sync.WaitGroup
	for i, trackingNumber := range trackingNumbers {
		wg.Add(1)
		go func(i int, trackingNumber string) {
			defer wg.Done()
			results[i] = s.Track(ctx, trackingNumber, "")
		}(i, trackingNumber)
	}
	wg.Wait()

	batch := domain.BatchResult{Results: results}
	for _, result := range results {
		if result.Success {
			batch.Successful++
		} else {
			batch.Failed++
		}
	}
	return batch
}

// Detect exposes pattern-based carrier detection for the detect endpoint.
func (s *TrackerService) Detect(trackingNumber string) domain.CarrierType {
	return s.registry.Detect(trackingNumber)
}

// Carriers lists the registered carriers with their validation patterns
// and tracking-page templates.
func (s *TrackerService) Carriers() []domain.CarrierInfo {
	adapters := s.registry.All()
	infos := make([]domain.CarrierInfo, 0, len(adapters))
	for _, adapter := range adapters {
		infos = append(infos, domain.CarrierInfo{
			Type:                adapter.Type(),
			Name:                adapter.Type().DisplayName(),
			Patterns:            adapter.Patterns(),
			TrackingURLTemplate: adapter.TrackingURL("%s"),
		})
	}
	return infos
}

// cacheKey builds "{carrier|auto}_{trackingNumber}". An explicit carrier
// and an auto-detected one cache under different keys on purpose.
func (s *TrackerService) cacheKey(trackingNumber string, carrier domain.CarrierType) string {
	token := autoCarrierKey
	if carrier != "" && carrier != domain.CarrierUnknown {
		token = string(carrier)
	}
	return fmt.Sprintf("%s_%s", token, trackingNumber)
}

// cachedPackage returns the cached snapshot for the key, or nil. A cache
// hit is returned as-is; staleness within the TTL window is accepted.
func (s *TrackerService) cachedPackage(ctx context.Context, key string) *domain.Package {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}

	var pkg domain.Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		s.logger.Warn("Dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &pkg
}

// storePackage writes the snapshot into the cache. Cache write failures
// are logged, never surfaced: the lookup already succeeded.
func (s *TrackerService) storePackage(ctx context.Context, key string, pkg *domain.Package) {
	data, err := json.Marshal(pkg)
	if err != nil {
		s.logger.Warn("Failed to encode package for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}
