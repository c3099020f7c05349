package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"package-tracker/internal/core/config"
	"package-tracker/internal/core/httpclient"
	"package-tracker/internal/core/logger"
	"package-tracker/internal/features/tracking/domain"

	"go.uber.org/zap"
)

// DHLAdapter tracks shipments through the DHL unified tracking API. The
// API uses a simple API-key header, no OAuth dance.
type DHLAdapter struct {
	carrierProfile
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

var dhlStatuses = statusTable{
	"pre_transit": domain.StatusPreTransit,
	"transit":     domain.StatusInTransit,
	"delivered":   domain.StatusDelivered,
	"failure":     domain.StatusException,
	"returned":    domain.StatusReturned,
	"unknown":     domain.StatusUnknown,
}

// NewDHLAdapter creates the DHL adapter. Without an API key the adapter
// serves demo responses.
func NewDHLAdapter(cfg config.DHLConfig) *DHLAdapter {
	return &DHLAdapter{
		carrierProfile: newCarrierProfile(
			domain.CarrierDHL,
			"https://www.dhl.com/en/express/tracking.html?AWB=%s",
			[]string{
				`^[0-9]{10}$`,       // Express waybill
				`^JJD[0-9]{16,20}$`, // Parcel
				`^GM[0-9]{16,18}$`,  // eCommerce
			},
		),
		apiKey:  cfg.APIKey,
		baseURL: "https://api-eu.dhl.com/track/shipments",
		client:  httpclient.NewClient(trackTimeout),
		logger:  logger.Get(),
	}
}

// ParseStatus maps DHL statusCode values onto the canonical statuses.
func (a *DHLAdapter) ParseStatus(rawStatus string) domain.PackageStatus {
	return dhlStatuses.lookup(rawStatus)
}

// dhlTrackResponse mirrors the unified tracking API payload.
type dhlTrackResponse struct {
	Shipments []struct {
		Status struct {
			StatusCode string `json:"statusCode"`
		} `json:"status"`
		EstimatedTimeOfDelivery string `json:"estimatedTimeOfDelivery"`
		Events                  []struct {
			Timestamp   string `json:"timestamp"`
			StatusCode  string `json:"statusCode"`
			Description string `json:"description"`
			Location    struct {
				Address struct {
					AddressLocality string `json:"addressLocality"`
				} `json:"address"`
			} `json:"location"`
		} `json:"events"`
	} `json:"shipments"`
}

// Track fetches the DHL tracking document and maps it onto the canonical model.
func (a *DHLAdapter) Track(ctx context.Context, trackingNumber string) (*domain.Package, error) {
	if a.apiKey == "" {
		return a.demoTrack(trackingNumber), nil
	}

	query := url.Values{}
	query.Set("trackingNumber", trackingNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create DHL request: %w", err)
	}
	req.Header.Set("DHL-API-Key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("DHL request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Warn("DHL returned non-success status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("tracking_number", trackingNumber),
		)
		return nil, nil
	}

	var payload dhlTrackResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		a.logger.Warn("Failed to parse DHL response",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return nil, nil
	}

	return a.mapResponse(payload, trackingNumber), nil
}

func (a *DHLAdapter) mapResponse(payload dhlTrackResponse, trackingNumber string) *domain.Package {
	if len(payload.Shipments) == 0 {
		return nil
	}
	shipment := payload.Shipments[0]

	events := make([]domain.TrackingEvent, 0, len(shipment.Events))
	for _, event := range shipment.Events {
		timestamp, err := time.Parse("2006-01-02T15:04:05", event.Timestamp)
		if err != nil {
			timestamp, err = time.Parse(time.RFC3339, event.Timestamp)
			if err != nil {
				a.logger.Debug("Skipping DHL event with unparsable timestamp",
					zap.String("timestamp", event.Timestamp),
				)
				continue
			}
		}

		events = append(events, domain.TrackingEvent{
			Timestamp:   timestamp.UTC(),
			Status:      event.Description,
			Location:    event.Location.Address.AddressLocality,
			Description: event.Description,
			RawStatus:   event.StatusCode,
		})
	}

	pkg := a.newPackage(trackingNumber, a.ParseStatus(shipment.Status.StatusCode), events)

	if shipment.EstimatedTimeOfDelivery != "" {
		if estimated, err := time.Parse("2006-01-02", shipment.EstimatedTimeOfDelivery); err == nil {
			estimated = estimated.UTC()
			pkg.EstimatedDelivery = &estimated
		}
	}

	return pkg
}

func (a *DHLAdapter) demoTrack(trackingNumber string) *domain.Package {
	return a.demoPackage(trackingNumber, domain.StatusInTransit, domain.TrackingEvent{
		Timestamp:   time.Now().UTC(),
		Status:      "Shipment in transit",
		Location:    "Leipzig",
		Description: "Processed at DHL hub",
		RawStatus:   "transit",
	})
}
