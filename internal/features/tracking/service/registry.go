package service

import (
	"package-tracker/internal/features/tracking/domain"
	"package-tracker/internal/features/tracking/ports"
)

// Registry holds one adapter per carrier, constructed once at startup.
// Adapters are stateless and safe to share across requests.
type Registry struct {
	order  []ports.Carrier
	byType map[domain.CarrierType]ports.Carrier
}

// NewRegistry builds a registry from the given adapters. Registration
// order is preserved and decides detection tie-breaks.
func NewRegistry(carriers ...ports.Carrier) *Registry {
	byType := make(map[domain.CarrierType]ports.Carrier, len(carriers))
	for _, carrier := range carriers {
		byType[carrier.Type()] = carrier
	}
	return &Registry{
		order:  carriers,
		byType: byType,
	}
}

// Detect returns the first carrier whose validation patterns match the
// tracking number, or CarrierUnknown when none do. Patterns may overlap
// across carriers; detection is first-match in registration order, not
// best-match.
func (r *Registry) Detect(trackingNumber string) domain.CarrierType {
	for _, carrier := range r.order {
		if carrier.Validate(trackingNumber) {
			return carrier.Type()
		}
	}
	return domain.CarrierUnknown
}

// Get returns the adapter for the given carrier, or nil when none is
// registered.
func (r *Registry) Get(carrierType domain.CarrierType) ports.Carrier {
	return r.byType[carrierType]
}

// All returns the registered adapters in registration order.
func (r *Registry) All() []ports.Carrier {
	return r.order
}
