package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"package-tracker/internal/core/config"
	"package-tracker/internal/core/httpclient"
	"package-tracker/internal/core/logger"
	"package-tracker/internal/features/tracking/domain"

	"go.uber.org/zap"
)

// UPSAdapter tracks shipments through the UPS Track API using OAuth2
// client-credentials authentication.
type UPSAdapter struct {
	carrierProfile
	credentials *clientCredentials
	baseURL     string
	client      *http.Client
	logger      *zap.Logger
}

var upsStatuses = statusTable{
	"pickup":         domain.StatusPreTransit,
	"m":              domain.StatusPreTransit, // manifest
	"intransit":      domain.StatusInTransit,
	"i":              domain.StatusInTransit,
	"outfordelivery": domain.StatusOutForDelivery,
	"o":              domain.StatusOutForDelivery,
	"delivered":      domain.StatusDelivered,
	"d":              domain.StatusDelivered,
	"exception":      domain.StatusException,
	"x":              domain.StatusException,
	"returned":       domain.StatusReturned,
	"rs":             domain.StatusReturned,
}

// NewUPSAdapter creates the UPS adapter. Without client credentials the
// adapter serves demo responses.
func NewUPSAdapter(cfg config.UPSConfig) *UPSAdapter {
	a := &UPSAdapter{
		carrierProfile: newCarrierProfile(
			domain.CarrierUPS,
			"https://www.ups.com/track?tracknum=%s",
			[]string{
				`^1Z[A-Z0-9]{16}$`,     // standard
				`^[0-9]{9}$`,           // Mail Innovations
				`^[A-Z]{2}[0-9]{9}US$`, // SurePost
			},
		),
		baseURL: "https://onlinetools.ups.com/api/track/v1",
		client:  httpclient.NewClient(trackTimeout),
		logger:  logger.Get(),
	}
	if cfg.ClientID != "" {
		a.credentials = newClientCredentials(
			"https://onlinetools.ups.com/security/v1/oauth/token",
			cfg.ClientID, cfg.ClientSecret,
			true, // UPS wants Basic auth on the token call
		)
	}
	return a
}

// ParseStatus maps UPS activity status types onto the canonical statuses.
func (a *UPSAdapter) ParseStatus(rawStatus string) domain.PackageStatus {
	return upsStatuses.lookup(rawStatus)
}

// upsTrackResponse mirrors the parts of the Track API payload we consume.
type upsTrackResponse struct {
	TrackResponse struct {
		Shipment []struct {
			Package []struct {
				CurrentStatus string `json:"currentStatus"`
				Activity      []struct {
					Date     string `json:"date"`
					Location struct {
						Address struct {
							City          string `json:"city"`
							StateProvince string `json:"stateProvince"`
							Country       string `json:"country"`
						} `json:"address"`
					} `json:"location"`
					Status struct {
						Type        string `json:"type"`
						Description string `json:"description"`
					} `json:"status"`
				} `json:"activity"`
			} `json:"package"`
		} `json:"shipment"`
	} `json:"trackResponse"`
}

// Track acquires a bearer token, fetches the tracking document and maps it
// onto the canonical model. The token fetch must succeed before the
// tracking call is issued.
func (a *UPSAdapter) Track(ctx context.Context, trackingNumber string) (*domain.Package, error) {
	if a.credentials == nil {
		return a.demoTrack(trackingNumber), nil
	}

	token, err := a.credentials.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("UPS token acquisition failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/details/%s", a.baseURL, trackingNumber), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create UPS request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("UPS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Warn("UPS returned non-success status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("tracking_number", trackingNumber),
		)
		return nil, nil
	}

	var payload upsTrackResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		a.logger.Warn("Failed to parse UPS response",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return nil, nil
	}

	return a.mapResponse(payload, trackingNumber), nil
}

func (a *UPSAdapter) mapResponse(payload upsTrackResponse, trackingNumber string) *domain.Package {
	shipments := payload.TrackResponse.Shipment
	if len(shipments) == 0 || len(shipments[0].Package) == 0 {
		return nil
	}
	pkg := shipments[0].Package[0]

	events := make([]domain.TrackingEvent, 0, len(pkg.Activity))
	for _, activity := range pkg.Activity {
		timestamp, err := time.Parse(time.RFC3339, activity.Date)
		if err != nil {
			a.logger.Debug("Skipping UPS activity with unparsable date",
				zap.String("date", activity.Date),
			)
			continue
		}

		address := activity.Location.Address
		events = append(events, domain.TrackingEvent{
			Timestamp:   timestamp.UTC(),
			Status:      activity.Status.Description,
			Location:    joinLocation(address.City, address.StateProvince, address.Country),
			Description: activity.Status.Description,
			RawStatus:   activity.Status.Type,
		})
	}

	return a.newPackage(trackingNumber, a.ParseStatus(pkg.CurrentStatus), events)
}

func (a *UPSAdapter) demoTrack(trackingNumber string) *domain.Package {
	return a.demoPackage(trackingNumber, domain.StatusOutForDelivery, domain.TrackingEvent{
		Timestamp:   time.Now().UTC(),
		Status:      "Out for Delivery",
		Location:    "Local Facility",
		Description: "Out for delivery today by 9:00 PM",
		RawStatus:   "OutForDelivery",
	})
}
