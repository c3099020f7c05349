package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestSortEventsNewestFirst verifies the descending event ordering invariant.
func TestSortEventsNewestFirst(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []TrackingEvent{
		{Timestamp: base.Add(-2 * time.Hour), Description: "origin scan"},
		{Timestamp: base, Description: "delivered"},
		{Timestamp: base.Add(-1 * time.Hour), Description: "out for delivery"},
	}

	SortEventsNewestFirst(events)

	for i := 0; i < len(events)-1; i++ {
		assert.False(t, events[i].Timestamp.Before(events[i+1].Timestamp),
			"events[%d] must not be older than events[%d]", i, i+1)
	}
	assert.Equal(t, "delivered", events[0].Description)
	assert.Equal(t, "origin scan", events[2].Description)
}

// TestSortEventsNewestFirst_StableForEqualTimestamps verifies ties keep
// their original relative order.
func TestSortEventsNewestFirst_StableForEqualTimestamps(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []TrackingEvent{
		{Timestamp: ts, Description: "first"},
		{Timestamp: ts, Description: "second"},
	}

	SortEventsNewestFirst(events)

	assert.Equal(t, "first", events[0].Description)
	assert.Equal(t, "second", events[1].Description)
}

func TestPackageID(t *testing.T) {
	assert.Equal(t, "usps_9400111899223197428431", PackageID(CarrierUSPS, "9400111899223197428431"))
	assert.Equal(t, "ups_1Z999AA10123456784", PackageID(CarrierUPS, "1Z999AA10123456784"))
}

func TestCarrierType_DisplayName(t *testing.T) {
	cases := map[CarrierType]string{
		CarrierUSPS:      "USPS",
		CarrierUPS:       "UPS",
		CarrierFedEx:     "FedEx",
		CarrierDHL:       "DHL",
		CarrierAmazon:    "Amazon",
		CarrierOnTrac:    "OnTrac",
		CarrierLaserShip: "LaserShip",
		CarrierUnknown:   "Unknown",
	}
	for carrier, want := range cases {
		assert.Equal(t, want, carrier.DisplayName())
	}
}
