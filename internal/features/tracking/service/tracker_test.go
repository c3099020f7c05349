package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"package-tracker/internal/core/cache"
	"package-tracker/internal/features/tracking/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCarrier is a scriptable Carrier for orchestrator tests.
type fakeCarrier struct {
	carrierType domain.CarrierType
	pattern     *regexp.Regexp
	trackFn     func(ctx context.Context, trackingNumber string) (*domain.Package, error)
	trackCalls  int32
}

func newFakeCarrier(carrierType domain.CarrierType, pattern string) *fakeCarrier {
	f := &fakeCarrier{
		carrierType: carrierType,
		pattern:     regexp.MustCompile(pattern),
	}
	f.trackFn = func(ctx context.Context, trackingNumber string) (*domain.Package, error) {
		return &domain.Package{
			ID:             domain.PackageID(carrierType, trackingNumber),
			TrackingNumber: trackingNumber,
			Carrier:        carrierType,
			Status:         domain.StatusInTransit,
		}, nil
	}
	return f
}

func (f *fakeCarrier) Type() domain.CarrierType { return f.carrierType }
func (f *fakeCarrier) Validate(trackingNumber string) bool {
	return f.pattern.MatchString(trackingNumber)
}
func (f *fakeCarrier) Patterns() []string { return []string{f.pattern.String()} }
func (f *fakeCarrier) TrackingURL(trackingNumber string) string {
	return fmt.Sprintf("https://example.com/track/%s", trackingNumber)
}
func (f *fakeCarrier) ParseStatus(rawStatus string) domain.PackageStatus {
	return domain.StatusUnknown
}
func (f *fakeCarrier) Track(ctx context.Context, trackingNumber string) (*domain.Package, error) {
	atomic.AddInt32(&f.trackCalls, 1)
	return f.trackFn(ctx, trackingNumber)
}

func TestTracker_Track_DetectsAndCaches(t *testing.T) {
	carrier := newFakeCarrier(domain.CarrierUPS, `^1Z[A-Z0-9]{16}$`)
	registry := NewRegistry(carrier)
	svc := NewTrackerService(registry, cache.NewMemoryAdapter(10), 300*time.Second)

	first := svc.Track(context.Background(), "1Z999AA10123456784", "")

	require.True(t, first.Success)
	require.NotNil(t, first.Package)
	assert.False(t, first.Cached)
	assert.True(t, first.Package.CarrierDetected)
	assert.Equal(t, domain.CarrierUPS, first.Package.Carrier)

	second := svc.Track(context.Background(), "1Z999AA10123456784", "")

	require.True(t, second.Success)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Package.ID, second.Package.ID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&carrier.trackCalls), "cache hit must not reach the adapter")
}

func TestTracker_Track_ExplicitCarrierSkipsDetection(t *testing.T) {
	carrier := newFakeCarrier(domain.CarrierUPS, `^1Z[A-Z0-9]{16}$`)
	registry := NewRegistry(carrier)
	svc := NewTrackerService(registry, cache.NewMemoryAdapter(10), 300*time.Second)

	result := svc.Track(context.Background(), "1Z999AA10123456784", domain.CarrierUPS)

	require.True(t, result.Success)
	assert.False(t, result.Package.CarrierDetected)
}

// TestTracker_Track_ExplicitAndAutoCacheSeparately pins the cache-key scheme:
// the same number tracked explicitly and via detection occupies two entries.
func TestTracker_Track_ExplicitAndAutoCacheSeparately(t *testing.T) {
	carrier := newFakeCarrier(domain.CarrierUPS, `^1Z[A-Z0-9]{16}$`)
	registry := NewRegistry(carrier)
	memory := cache.NewMemoryAdapter(10)
	svc := NewTrackerService(registry, memory, 300*time.Second)

	svc.Track(context.Background(), "1Z999AA10123456784", domain.CarrierUPS)
	svc.Track(context.Background(), "1Z999AA10123456784", "")

	assert.Equal(t, 2, memory.Len())
	assert.Equal(t, int32(2), atomic.LoadInt32(&carrier.trackCalls))
}

func TestTracker_Track_UndetectableCarrier(t *testing.T) {
	registry := NewRegistry(newFakeCarrier(domain.CarrierUPS, `^1Z[A-Z0-9]{16}$`))
	svc := NewTrackerService(registry, cache.NewMemoryAdapter(10), 300*time.Second)

	result := svc.Track(context.Background(), "not-a-real-number", "")

	assert.False(t, result.Success)
	assert.Nil(t, result.Package)
	assert.Equal(t, msgCarrierUndetectable, result.Error)
}

func TestTracker_Track_UnsupportedCarrier(t *testing.T) {
	registry := NewRegistry(newFakeCarrier(domain.CarrierUPS, `^1Z[A-Z0-9]{16}$`))
	svc := NewTrackerService(registry, cache.NewMemoryAdapter(10), 300*time.Second)

	result := svc.Track(context.Background(), "1234567890", domain.CarrierDHL)

	assert.False(t, result.Success)
	assert.Equal(t, "carrier dhl not supported", result.Error)
}

func TestTracker_Track_AdapterError(t *testing.T) {
	carrier := newFakeCarrier(domain.CarrierUPS, `^1Z[A-Z0-9]{16}$`)
	carrier.trackFn = func(ctx context.Context, trackingNumber string) (*domain.Package, error) {
		return nil, errors.New("connection refused")
	}
	registry := NewRegistry(carrier)
	memory := cache.NewMemoryAdapter(10)
	svc := NewTrackerService(registry, memory, 300*time.Second)

	result := svc.Track(context.Background(), "1Z999AA10123456784", "")

	assert.False(t, result.Success)
	assert.Equal(t, "tracking failed: connection refused", result.Error)
	assert.Equal(t, 0, memory.Len(), "failures must not be cached")
}

func TestTracker_Track_UpstreamMiss(t *testing.T) {
	carrier := newFakeCarrier(domain.CarrierUPS, `^1Z[A-Z0-9]{16}$`)
	carrier.trackFn = func(ctx context.Context, trackingNumber string) (*domain.Package, error) {
		return nil, nil
	}
	registry := NewRegistry(carrier)
	svc := NewTrackerService(registry, cache.NewMemoryAdapter(10), 300*time.Second)

	result := svc.Track(context.Background(), "1Z999AA10123456784", "")

	assert.False(t, result.Success)
	assert.Equal(t, msgNoTrackingInfo, result.Error)
}

// TestTracker_Track_CacheExpiry runs against miniredis so the clock can be
// advanced past the TTL.
func TestTracker_Track_CacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	redisCache, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer redisCache.Close()

	carrier := newFakeCarrier(domain.CarrierUPS, `^1Z[A-Z0-9]{16}$`)
	registry := NewRegistry(carrier)
	svc := NewTrackerService(registry, redisCache, 300*time.Second)

	svc.Track(context.Background(), "1Z999AA10123456784", "")
	mr.FastForward(301 * time.Second)
	result := svc.Track(context.Background(), "1Z999AA10123456784", "")

	require.True(t, result.Success)
	assert.False(t, result.Cached)
	assert.Equal(t, int32(2), atomic.LoadInt32(&carrier.trackCalls))
}

// TestTracker_TrackBatch checks input-order results and per-item failure
// isolation.
func TestTracker_TrackBatch(t *testing.T) {
	ups := newFakeCarrier(domain.CarrierUPS, `^1Z[A-Z0-9]{16}$`)
	fedex := newFakeCarrier(domain.CarrierFedEx, `^[0-9]{12}$`)
	registry := NewRegistry(ups, fedex)
	svc := NewTrackerService(registry, cache.NewMemoryAdapter(10), 300*time.Second)

	batch := svc.TrackBatch(context.Background(), []string{
		"1Z999AA10123456784",
		"garbage!!",
		"123456789012",
	})

	require.Len(t, batch.Results, 3)
	assert.Equal(t, 2, batch.Successful)
	assert.Equal(t, 1, batch.Failed)

	assert.True(t, batch.Results[0].Success)
	assert.Equal(t, domain.CarrierUPS, batch.Results[0].Package.Carrier)

	assert.False(t, batch.Results[1].Success)
	assert.Equal(t, msgCarrierUndetectable, batch.Results[1].Error)

	assert.True(t, batch.Results[2].Success)
	assert.Equal(t, domain.CarrierFedEx, batch.Results[2].Package.Carrier)
}

func TestTracker_TrackBatch_Empty(t *testing.T) {
	registry := NewRegistry(newFakeCarrier(domain.CarrierUPS, `^1Z[A-Z0-9]{16}$`))
	svc := NewTrackerService(registry, cache.NewMemoryAdapter(10), 300*time.Second)

	batch := svc.TrackBatch(context.Background(), nil)

	assert.Empty(t, batch.Results)
	assert.Zero(t, batch.Successful)
	assert.Zero(t, batch.Failed)
}

func TestTracker_Carriers(t *testing.T) {
	ups := newFakeCarrier(domain.CarrierUPS, `^1Z[A-Z0-9]{16}$`)
	fedex := newFakeCarrier(domain.CarrierFedEx, `^[0-9]{12}$`)
	registry := NewRegistry(ups, fedex)
	svc := NewTrackerService(registry, cache.NewMemoryAdapter(10), 300*time.Second)

	infos := svc.Carriers()

	require.Len(t, infos, 2)
	assert.Equal(t, domain.CarrierUPS, infos[0].Type)
	assert.Equal(t, "UPS", infos[0].Name)
	assert.Equal(t, []string{`^1Z[A-Z0-9]{16}$`}, infos[0].Patterns)
	assert.Equal(t, "https://example.com/track/%s", infos[0].TrackingURLTemplate)
}
