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

// OnTracAdapter tracks shipments through the OnTrac shipment-details API
// using account/password credentials.
type OnTracAdapter struct {
	carrierProfile
	account  string
	password string
	baseURL  string
	client   *http.Client
	logger   *zap.Logger
}

var ontracStatuses = statusTable{
	"data_entry":       domain.StatusPreTransit,
	"picked_up":        domain.StatusPreTransit,
	"in_transit":       domain.StatusInTransit,
	"at_facility":      domain.StatusInTransit,
	"out_for_delivery": domain.StatusOutForDelivery,
	"delivered":        domain.StatusDelivered,
	"exception":        domain.StatusException,
	"delay":            domain.StatusException,
	"returned":         domain.StatusReturned,
}

// NewOnTracAdapter creates the OnTrac adapter. Without credentials the
// adapter serves demo responses.
func NewOnTracAdapter(cfg config.OnTracConfig) *OnTracAdapter {
	return &OnTracAdapter{
		carrierProfile: newCarrierProfile(
			domain.CarrierOnTrac,
			"https://www.ontrac.com/tracking/?number=%s",
			[]string{
				`^[CD][0-9]{14}$`,
			},
		),
		account:  cfg.Account,
		password: cfg.Password,
		baseURL:  "https://api.ontrac.com/V1",
		client:   httpclient.NewClient(trackTimeout),
		logger:   logger.Get(),
	}
}

// ParseStatus maps OnTrac delivery status vocabulary onto the canonical statuses.
func (a *OnTracAdapter) ParseStatus(rawStatus string) domain.PackageStatus {
	return ontracStatuses.lookup(rawStatus)
}

// ontracTrackResponse mirrors the shipment-details payload.
type ontracTrackResponse struct {
	Shipments []struct {
		Tracking       string `json:"Tracking"`
		DeliveryStatus string `json:"Del_Status"`
		ExpectedDate   string `json:"Exp_Del_Date"`
		Events         []struct {
			Status      string `json:"Status"`
			Description string `json:"Description"`
			EventTime   string `json:"EventTime"`
			City        string `json:"City"`
			State       string `json:"State"`
		} `json:"Events"`
	} `json:"Shipments"`
}

// Track fetches the OnTrac shipment details and maps them onto the
// canonical model.
func (a *OnTracAdapter) Track(ctx context.Context, trackingNumber string) (*domain.Package, error) {
	if a.account == "" || a.password == "" {
		return a.demoTrack(trackingNumber), nil
	}

	query := url.Values{}
	query.Set("pw", a.password)
	query.Set("tn", trackingNumber)
	query.Set("requestType", "details")

	endpoint := fmt.Sprintf("%s/%s/shipments?%s", a.baseURL, a.account, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create OnTrac request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OnTrac request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Warn("OnTrac returned non-success status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("tracking_number", trackingNumber),
		)
		return nil, nil
	}

	var payload ontracTrackResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		a.logger.Warn("Failed to parse OnTrac response",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return nil, nil
	}

	return a.mapResponse(payload, trackingNumber), nil
}

func (a *OnTracAdapter) mapResponse(payload ontracTrackResponse, trackingNumber string) *domain.Package {
	if len(payload.Shipments) == 0 {
		return nil
	}
	shipment := payload.Shipments[0]

	events := make([]domain.TrackingEvent, 0, len(shipment.Events))
	for _, event := range shipment.Events {
		timestamp, err := time.Parse("2006-01-02T15:04:05", event.EventTime)
		if err != nil {
			a.logger.Debug("Skipping OnTrac event with unparsable time",
				zap.String("event_time", event.EventTime),
			)
			continue
		}

		events = append(events, domain.TrackingEvent{
			Timestamp:   timestamp.UTC(),
			Status:      event.Description,
			Location:    joinLocation(event.City, event.State, ""),
			Description: event.Description,
			RawStatus:   event.Status,
		})
	}

	pkg := a.newPackage(trackingNumber, a.ParseStatus(shipment.DeliveryStatus), events)

	if shipment.ExpectedDate != "" {
		if estimated, err := time.Parse("2006-01-02", shipment.ExpectedDate); err == nil {
			estimated = estimated.UTC()
			pkg.EstimatedDelivery = &estimated
		}
	}

	return pkg
}

func (a *OnTracAdapter) demoTrack(trackingNumber string) *domain.Package {
	return a.demoPackage(trackingNumber, domain.StatusInTransit, domain.TrackingEvent{
		Timestamp:   time.Now().UTC(),
		Status:      "In Transit",
		Location:    "Commerce, CA",
		Description: "Package received at sort facility",
		RawStatus:   "IN TRANSIT",
	})
}
