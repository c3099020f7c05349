package ports

import (
	"context"

	"package-tracker/internal/features/tracking/domain"
)

// Carrier is the per-carrier adapter contract. Implementations are
// stateless translators from a carrier's wire format to the canonical
// package model and are safe for concurrent use.
type Carrier interface {
	// Type returns the carrier identity this adapter serves.
	Type() domain.CarrierType

	// Validate reports whether the tracking number matches one of the
	// carrier's format patterns. Pure, no I/O.
	Validate(trackingNumber string) bool

	// Patterns returns the validation patterns for the carriers listing.
	Patterns() []string

	// TrackingURL returns the carrier's public tracking page for the
	// given number.
	TrackingURL(trackingNumber string) string

	// ParseStatus maps a carrier-specific raw status onto the canonical
	// vocabulary. Total: unmapped input yields StatusUnknown, never an error.
	ParseStatus(rawStatus string) domain.PackageStatus

	// Track fetches and normalizes the carrier's tracking document.
	// A (nil, nil) return means the carrier reported no such shipment or
	// the response could not be understood; errors are reserved for
	// transport-level faults.
	Track(ctx context.Context, trackingNumber string) (*domain.Package, error)
}
