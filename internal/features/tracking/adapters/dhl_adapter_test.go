package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"package-tracker/internal/core/config"
	"package-tracker/internal/features/tracking/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDHLAdapter_Validate(t *testing.T) {
	dhl := NewDHLAdapter(config.DHLConfig{})

	assert.True(t, dhl.Validate("1234567890"))
	assert.True(t, dhl.Validate("JJD0099999999999999"))
	assert.True(t, dhl.Validate("GM1234567890123456"))
	assert.False(t, dhl.Validate("12345678901"))
	assert.False(t, dhl.Validate("1Z999AA10123456784"))
}

func TestDHLAdapter_ParseStatus(t *testing.T) {
	dhl := NewDHLAdapter(config.DHLConfig{})

	assert.Equal(t, domain.StatusPreTransit, dhl.ParseStatus("pre-transit"))
	assert.Equal(t, domain.StatusInTransit, dhl.ParseStatus("transit"))
	assert.Equal(t, domain.StatusException, dhl.ParseStatus("failure"))
	assert.Equal(t, domain.StatusUnknown, dhl.ParseStatus("whatever"))
}

// TestDHLAdapter_Track checks the API-key header, query wiring and the
// estimated-delivery date parsing.
func TestDHLAdapter_Track(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.Header.Get("DHL-API-Key"))
		assert.Equal(t, "1234567890", r.URL.Query().Get("trackingNumber"))
		w.Write([]byte(`{
            "shipments": [{
                "status": {"statusCode": "transit"},
                "estimatedTimeOfDelivery": "2024-03-05",
                "events": [
                    {"timestamp": "2024-03-01T09:00:00", "statusCode": "pre-transit",
                     "description": "Shipment information received", "location": {"address": {"addressLocality": "BONN"}}},
                    {"timestamp": "2024-03-02T14:30:00", "statusCode": "transit",
                     "description": "Processed at DHL hub", "location": {"address": {"addressLocality": "LEIPZIG"}}}
                ]
            }]
        }`))
	}))
	defer server.Close()

	dhl := NewDHLAdapter(config.DHLConfig{APIKey: "secret-key"})
	dhl.baseURL = server.URL

	pkg, err := dhl.Track(context.Background(), "1234567890")

	require.NoError(t, err)
	require.NotNil(t, pkg)
	assert.Equal(t, "dhl_1234567890", pkg.ID)
	assert.Equal(t, domain.StatusInTransit, pkg.Status)
	require.Len(t, pkg.Events, 2)
	assert.Equal(t, "LEIPZIG", pkg.Events[0].Location)
	require.NotNil(t, pkg.EstimatedDelivery)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *pkg.EstimatedDelivery)
}

// TestDHLAdapter_Track_NoShipments verifies an empty shipment list degrades
// to a miss rather than an error.
func TestDHLAdapter_Track_NoShipments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"shipments": []}`))
	}))
	defer server.Close()

	dhl := NewDHLAdapter(config.DHLConfig{APIKey: "secret-key"})
	dhl.baseURL = server.URL

	pkg, err := dhl.Track(context.Background(), "1234567890")

	assert.NoError(t, err)
	assert.Nil(t, pkg)
}

func TestDHLAdapter_Track_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	dhl := NewDHLAdapter(config.DHLConfig{APIKey: "bad-key"})
	dhl.baseURL = server.URL

	pkg, err := dhl.Track(context.Background(), "1234567890")

	assert.NoError(t, err)
	assert.Nil(t, pkg)
}

func TestDHLAdapter_Track_DemoWithoutAPIKey(t *testing.T) {
	dhl := NewDHLAdapter(config.DHLConfig{})

	pkg, err := dhl.Track(context.Background(), "1234567890")

	require.NoError(t, err)
	require.NotNil(t, pkg)
	assert.Equal(t, "demo", pkg.Source)
	assert.Equal(t, domain.StatusInTransit, pkg.Status)
}
