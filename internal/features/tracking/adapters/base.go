package adapter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"package-tracker/internal/features/tracking/domain"
)

// carrierProfile supplies the pure half of the Carrier contract shared by
// every adapter: identity, pattern validation and tracking-page URLs.
type carrierProfile struct {
	carrierType domain.CarrierType
	urlTemplate string
	rawPatterns []string
	patterns    []*regexp.Regexp
}

// newCarrierProfile compiles the carrier's tracking-number patterns once at
// construction. Patterns are matched in order against the normalized number.
func newCarrierProfile(carrierType domain.CarrierType, urlTemplate string, patterns []string) carrierProfile {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return carrierProfile{
		carrierType: carrierType,
		urlTemplate: urlTemplate,
		rawPatterns: patterns,
		patterns:    compiled,
	}
}

// Type returns the carrier identity this adapter serves.
func (p carrierProfile) Type() domain.CarrierType {
	return p.carrierType
}

// Patterns returns the raw validation patterns.
func (p carrierProfile) Patterns() []string {
	return p.rawPatterns
}

// Validate normalizes the tracking number and tests it against the
// carrier's patterns in order.
func (p carrierProfile) Validate(trackingNumber string) bool {
	normalized := normalizeTrackingNumber(trackingNumber)
	for _, pattern := range p.patterns {
		if pattern.MatchString(normalized) {
			return true
		}
	}
	return false
}

// TrackingURL substitutes the tracking number into the carrier's public
// tracking page template.
func (p carrierProfile) TrackingURL(trackingNumber string) string {
	return fmt.Sprintf(p.urlTemplate, trackingNumber)
}

// newPackage assembles a snapshot with events sorted newest first and the
// fetch timestamps stamped. DeliveredAt is taken from the newest event when
// the package is delivered.
func (p carrierProfile) newPackage(trackingNumber string, status domain.PackageStatus, events []domain.TrackingEvent) *domain.Package {
	domain.SortEventsNewestFirst(events)
	now := time.Now().UTC()

	pkg := &domain.Package{
		ID:             domain.PackageID(p.carrierType, trackingNumber),
		TrackingNumber: trackingNumber,
		Carrier:        p.carrierType,
		Status:         status,
		Events:         events,
		LastUpdated:    now,
		CreatedAt:      now,
	}
	if status == domain.StatusDelivered && len(events) > 0 {
		delivered := events[0].Timestamp
		pkg.DeliveredAt = &delivered
	}
	return pkg
}

// demoPackage is the synthetic snapshot returned when a carrier has no
// credentials configured. Keeps the aggregator usable without upstream access.
func (p carrierProfile) demoPackage(trackingNumber string, status domain.PackageStatus, event domain.TrackingEvent) *domain.Package {
	pkg := p.newPackage(trackingNumber, status, []domain.TrackingEvent{event})
	pkg.Source = "demo"
	return pkg
}

// normalizeTrackingNumber uppercases the input and strips spaces and hyphens.
func normalizeTrackingNumber(trackingNumber string) string {
	cleaned := strings.ToUpper(trackingNumber)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	return strings.ReplaceAll(cleaned, "-", "")
}

// statusTable maps a carrier's raw status vocabulary onto the canonical
// statuses. Lookups are total: unmapped input yields StatusUnknown.
type statusTable map[string]domain.PackageStatus

func (t statusTable) lookup(rawStatus string) domain.PackageStatus {
	if status, ok := t[normalizeStatusKey(rawStatus)]; ok {
		return status
	}
	return domain.StatusUnknown
}

// normalizeStatusKey folds case and separators so table keys match the raw
// vocabulary regardless of spacing style ("Out for Delivery", "pre-transit").
func normalizeStatusKey(rawStatus string) string {
	key := strings.ToLower(strings.TrimSpace(rawStatus))
	key = strings.ReplaceAll(key, " ", "_")
	return strings.ReplaceAll(key, "-", "_")
}
