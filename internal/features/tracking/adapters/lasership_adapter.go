package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"package-tracker/internal/core/httpclient"
	"package-tracker/internal/core/logger"
	"package-tracker/internal/features/tracking/domain"

	"go.uber.org/zap"
)

// LaserShipAdapter tracks shipments through LaserShip's public JSON
// endpoint. No credentials are required, so there is no demo fallback.
type LaserShipAdapter struct {
	carrierProfile
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// LaserShip event types come in CamelCase ("OutForDelivery"), so the table
// carries the collapsed forms alongside the spelled-out ones.
var lasershipStatuses = statusTable{
	"order_created":    domain.StatusPreTransit,
	"ordercreated":     domain.StatusPreTransit,
	"data_received":    domain.StatusPreTransit,
	"datareceived":     domain.StatusPreTransit,
	"origin_scan":      domain.StatusInTransit,
	"originscan":       domain.StatusInTransit,
	"received":         domain.StatusInTransit,
	"in_transit":       domain.StatusInTransit,
	"intransit":        domain.StatusInTransit,
	"out_for_delivery": domain.StatusOutForDelivery,
	"outfordelivery":   domain.StatusOutForDelivery,
	"delivered":        domain.StatusDelivered,
	"release":          domain.StatusDelivered,
	"attempt":          domain.StatusException,
	"exception":        domain.StatusException,
	"returned":         domain.StatusReturned,
}

// NewLaserShipAdapter creates the LaserShip adapter.
func NewLaserShipAdapter() *LaserShipAdapter {
	return &LaserShipAdapter{
		carrierProfile: newCarrierProfile(
			domain.CarrierLaserShip,
			"https://www.lasership.com/track/%s",
			[]string{
				`^L[A-Z][0-9]{8}$`,
				`^1LS[0-9]{12}$`,
			},
		),
		baseURL: "https://t.lasership.com/Track",
		client:  httpclient.NewClient(trackTimeout),
		logger:  logger.Get(),
	}
}

// ParseStatus maps LaserShip event types onto the canonical statuses.
func (a *LaserShipAdapter) ParseStatus(rawStatus string) domain.PackageStatus {
	return lasershipStatuses.lookup(rawStatus)
}

// lasershipTrackResponse mirrors the public tracking JSON.
type lasershipTrackResponse struct {
	TrackingNumber        string `json:"TrackingNumber"`
	EstimatedDeliveryDate string `json:"EstimatedDeliveryDate"`
	Events                []struct {
		DateTime       string `json:"DateTime"`
		EventType      string `json:"EventType"`
		EventShortText string `json:"EventShortText"`
		City           string `json:"City"`
		State          string `json:"State"`
	} `json:"Events"`
}

// Track fetches the public tracking document and maps it onto the
// canonical model.
func (a *LaserShipAdapter) Track(ctx context.Context, trackingNumber string) (*domain.Package, error) {
	endpoint := fmt.Sprintf("%s/%s/json", a.baseURL, trackingNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create LaserShip request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("LaserShip request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Warn("LaserShip returned non-success status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("tracking_number", trackingNumber),
		)
		return nil, nil
	}

	var payload lasershipTrackResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		a.logger.Warn("Failed to parse LaserShip response",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return nil, nil
	}

	return a.mapResponse(payload, trackingNumber), nil
}

func (a *LaserShipAdapter) mapResponse(payload lasershipTrackResponse, trackingNumber string) *domain.Package {
	if len(payload.Events) == 0 {
		return nil
	}

	events := make([]domain.TrackingEvent, 0, len(payload.Events))
	for _, event := range payload.Events {
		timestamp, err := time.Parse("2006-01-02T15:04:05", event.DateTime)
		if err != nil {
			a.logger.Debug("Skipping LaserShip event with unparsable time",
				zap.String("date_time", event.DateTime),
			)
			continue
		}

		events = append(events, domain.TrackingEvent{
			Timestamp:   timestamp.UTC(),
			Status:      event.EventShortText,
			Location:    joinLocation(event.City, event.State, ""),
			Description: event.EventShortText,
			RawStatus:   event.EventType,
		})
	}

	// LaserShip reports no shipment-level status; the newest event decides.
	status := domain.StatusUnknown
	if len(events) > 0 {
		domain.SortEventsNewestFirst(events)
		status = a.ParseStatus(events[0].RawStatus)
	}

	pkg := a.newPackage(trackingNumber, status, events)

	if payload.EstimatedDeliveryDate != "" {
		if estimated, err := time.Parse("2006-01-02", payload.EstimatedDeliveryDate); err == nil {
			estimated = estimated.UTC()
			pkg.EstimatedDelivery = &estimated
		}
	}

	return pkg
}
