package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// CarrierType identifies a supported shipping carrier.
type CarrierType string

const (
	// CarrierUSPS is the United States Postal Service.
	CarrierUSPS CarrierType = "usps"
	// CarrierUPS is United Parcel Service.
	CarrierUPS CarrierType = "ups"
	// CarrierFedEx is FedEx.
	CarrierFedEx CarrierType = "fedex"
	// CarrierDHL is DHL.
	CarrierDHL CarrierType = "dhl"
	// CarrierAmazon is Amazon Logistics.
	CarrierAmazon CarrierType = "amazon"
	// CarrierOnTrac is OnTrac.
	CarrierOnTrac CarrierType = "ontrac"
	// CarrierLaserShip is LaserShip.
	CarrierLaserShip CarrierType = "lasership"
	// CarrierUnknown means no carrier could be resolved. It is never a
	// valid adapter target.
	CarrierUnknown CarrierType = "unknown"
)

// DisplayName returns the carrier name in its customary capitalization.
func (c CarrierType) DisplayName() string {
	switch c {
	case CarrierUSPS, CarrierUPS, CarrierDHL:
		return strings.ToUpper(string(c))
	case CarrierFedEx:
		return "FedEx"
	case CarrierAmazon:
		return "Amazon"
	case CarrierOnTrac:
		return "OnTrac"
	case CarrierLaserShip:
		return "LaserShip"
	default:
		return "Unknown"
	}
}

// PackageStatus is the canonical shipment status every carrier vocabulary
// is mapped onto.
type PackageStatus string

const (
	// StatusPreTransit indicates a label was created but the carrier has
	// not yet received the package.
	StatusPreTransit PackageStatus = "pre_transit"
	// StatusInTransit indicates the package is moving through the network.
	StatusInTransit PackageStatus = "in_transit"
	// StatusOutForDelivery indicates the package is on a delivery vehicle.
	StatusOutForDelivery PackageStatus = "out_for_delivery"
	// StatusDelivered indicates the package was delivered.
	StatusDelivered PackageStatus = "delivered"
	// StatusException indicates a delivery problem reported by the carrier.
	StatusException PackageStatus = "exception"
	// StatusReturned indicates the package was returned to sender.
	StatusReturned PackageStatus = "returned"
	// StatusUnknown is the fallback for unmapped carrier vocabulary.
	StatusUnknown PackageStatus = "unknown"
)

// TrackingEvent is a single scan in a shipment's history. Events are
// created while parsing one carrier response and never mutated afterwards.
type TrackingEvent struct {
	// Timestamp is the UTC instant the event occurred.
	Timestamp time.Time `json:"timestamp"`
	// Status is the carrier-facing status text.
	Status string `json:"status"`
	// Location is an optional human-readable place string.
	Location string `json:"location,omitempty"`
	// Description is the event description.
	Description string `json:"description"`
	// RawStatus is the carrier's original status code or text.
	RawStatus string `json:"raw_status,omitempty"`
}

// Package is a point-in-time snapshot of a shipment. It is replaced
// wholesale on every successful refetch, never merged incrementally.
type Package struct {
	// ID is globally unique per carrier+number pair ("usps_9400...").
	ID string `json:"id"`
	// TrackingNumber is the carrier-issued shipment identifier.
	TrackingNumber string `json:"tracking_number"`
	// Carrier is the carrier that produced this snapshot.
	Carrier CarrierType `json:"carrier"`
	// CarrierDetected reports whether the carrier was auto-resolved
	// rather than explicitly supplied by the caller.
	CarrierDetected bool `json:"carrier_detected"`
	// Nickname is an optional user-assigned label.
	Nickname string `json:"nickname,omitempty"`
	// Status is the canonical shipment status.
	Status PackageStatus `json:"status"`
	// EstimatedDelivery is the carrier's delivery estimate, if reported.
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	// Events holds the shipment history, newest first.
	Events []TrackingEvent `json:"events"`
	// LastUpdated is the instant of this fetch.
	LastUpdated time.Time `json:"last_updated"`
	// CreatedAt is the instant of the first fetch.
	CreatedAt time.Time `json:"created_at"`
	// Archived marks the package as hidden from active views.
	Archived bool `json:"archived"`
	// DeliveredAt is the delivery instant, if delivered.
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	// Source tags where the snapshot came from (e.g., "demo").
	Source string `json:"source,omitempty"`
}

// PackageID builds the canonical carrier-prefixed package identifier.
func PackageID(carrier CarrierType, trackingNumber string) string {
	return fmt.Sprintf("%s_%s", carrier, trackingNumber)
}

// SortEventsNewestFirst orders events descending by timestamp so the most
// recent scan is always first.
func SortEventsNewestFirst(events []TrackingEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
}

// TrackResult is the outcome of one tracking lookup.
type TrackResult struct {
	// Success reports whether a package snapshot was produced.
	Success bool `json:"success"`
	// Package holds the snapshot on success.
	Package *Package `json:"package,omitempty"`
	// Error is the failure description on failure.
	Error string `json:"error,omitempty"`
	// Cached reports whether the snapshot was served from the cache.
	Cached bool `json:"cached"`
}

// BatchResult aggregates the per-item outcomes of a batch lookup. Results
// keep the input order regardless of completion timing.
type BatchResult struct {
	Results    []TrackResult `json:"results"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
}

// CarrierInfo describes one registered carrier for the listing endpoint.
type CarrierInfo struct {
	// Type is the carrier identifier.
	Type CarrierType `json:"type"`
	// Name is the display name.
	Name string `json:"name"`
	// Patterns are the tracking-number validation patterns.
	Patterns []string `json:"patterns"`
	// TrackingURLTemplate is the carrier's public tracking page template.
	TrackingURLTemplate string `json:"tracking_url_template"`
}
