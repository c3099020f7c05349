package adapter

import (
	"bytes"
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

// FedExAdapter tracks shipments through the FedEx Track API using OAuth2
// client-credentials authentication.
type FedExAdapter struct {
	carrierProfile
	credentials *clientCredentials
	baseURL     string
	client      *http.Client
	logger      *zap.Logger
}

var fedexStatuses = statusTable{
	"label_created":      domain.StatusPreTransit,
	"picked_up":          domain.StatusPreTransit,
	"in_transit":         domain.StatusInTransit,
	"on_the_way":         domain.StatusInTransit,
	"at_local_facility":  domain.StatusInTransit,
	"out_for_delivery":   domain.StatusOutForDelivery,
	"delivered":          domain.StatusDelivered,
	"exception":          domain.StatusException,
	"delivery_exception": domain.StatusException,
	"shipment_canceled":  domain.StatusException,
	"returned":           domain.StatusReturned,
}

// NewFedExAdapter creates the FedEx adapter. Without client credentials the
// adapter serves demo responses.
func NewFedExAdapter(cfg config.FedExConfig) *FedExAdapter {
	a := &FedExAdapter{
		carrierProfile: newCarrierProfile(
			domain.CarrierFedEx,
			"https://www.fedex.com/apps/fedextrack/?tracknumbers=%s",
			[]string{
				`^[0-9]{12}$`, // standard
				`^[0-9]{15}$`, // Ground
				`^[0-9]{20}$`, // SmartPost
				`^[0-9]{34}$`, // Express
			},
		),
		baseURL: "https://apis.fedex.com/track/v1",
		client:  httpclient.NewClient(trackTimeout),
		logger:  logger.Get(),
	}
	if cfg.ClientID != "" {
		a.credentials = newClientCredentials(
			"https://apis.fedex.com/oauth/token",
			cfg.ClientID, cfg.ClientSecret,
			false, // FedEx wants credentials in the form body
		)
	}
	return a
}

// ParseStatus maps FedEx status vocabulary onto the canonical statuses.
func (a *FedExAdapter) ParseStatus(rawStatus string) domain.PackageStatus {
	return fedexStatuses.lookup(rawStatus)
}

// fedexTrackRequest is the POST body for the trackingnumbers endpoint.
type fedexTrackRequest struct {
	IncludeDetailedScans bool                `json:"includeDetailedScans"`
	TrackingInfo         []fedexTrackingInfo `json:"trackingInfo"`
}

type fedexTrackingInfo struct {
	TrackingNumberInfo struct {
		TrackingNumber string `json:"trackingNumber"`
	} `json:"trackingNumberInfo"`
}

// fedexTrackResponse mirrors the parts of the Track API payload we consume.
type fedexTrackResponse struct {
	Output struct {
		CompleteTrackResults []struct {
			TrackResults []struct {
				LatestStatusDetail struct {
					StatusByLocale string `json:"statusByLocale"`
				} `json:"latestStatusDetail"`
				ScanEvents []struct {
					Date             string `json:"date"`
					Time             string `json:"time"`
					EventDescription string `json:"eventDescription"`
					EventType        string `json:"eventType"`
					ScanLocation     struct {
						City                string `json:"city"`
						StateOrProvinceCode string `json:"stateOrProvinceCode"`
						CountryCode         string `json:"countryCode"`
					} `json:"scanLocation"`
				} `json:"scanEvents"`
			} `json:"trackResults"`
		} `json:"completeTrackResults"`
	} `json:"output"`
}

// Track acquires a bearer token, posts the tracking request and maps the
// response onto the canonical model.
func (a *FedExAdapter) Track(ctx context.Context, trackingNumber string) (*domain.Package, error) {
	if a.credentials == nil {
		return a.demoTrack(trackingNumber), nil
	}

	token, err := a.credentials.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("FedEx token acquisition failed: %w", err)
	}

	request := fedexTrackRequest{
		IncludeDetailedScans: true,
		TrackingInfo:         make([]fedexTrackingInfo, 1),
	}
	request.TrackingInfo[0].TrackingNumberInfo.TrackingNumber = trackingNumber

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode FedEx request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/trackingnumbers", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create FedEx request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("FedEx request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Warn("FedEx returned non-success status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("tracking_number", trackingNumber),
		)
		return nil, nil
	}

	var payload fedexTrackResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		a.logger.Warn("Failed to parse FedEx response",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return nil, nil
	}

	return a.mapResponse(payload, trackingNumber), nil
}

func (a *FedExAdapter) mapResponse(payload fedexTrackResponse, trackingNumber string) *domain.Package {
	complete := payload.Output.CompleteTrackResults
	if len(complete) == 0 || len(complete[0].TrackResults) == 0 {
		return nil
	}
	result := complete[0].TrackResults[0]

	events := make([]domain.TrackingEvent, 0, len(result.ScanEvents))
	for _, scan := range result.ScanEvents {
		timestamp, err := time.Parse(time.RFC3339, scan.Date+"T"+scan.Time)
		if err != nil {
			// Some responses carry a full timestamp in the date field.
			timestamp, err = time.Parse(time.RFC3339, scan.Date)
			if err != nil {
				a.logger.Debug("Skipping FedEx scan with unparsable date",
					zap.String("date", scan.Date),
					zap.String("time", scan.Time),
				)
				continue
			}
		}

		location := scan.ScanLocation
		events = append(events, domain.TrackingEvent{
			Timestamp:   timestamp.UTC(),
			Status:      scan.EventDescription,
			Location:    joinLocation(location.City, location.StateOrProvinceCode, location.CountryCode),
			Description: scan.EventDescription,
			RawStatus:   scan.EventType,
		})
	}

	return a.newPackage(trackingNumber, a.ParseStatus(result.LatestStatusDetail.StatusByLocale), events)
}

func (a *FedExAdapter) demoTrack(trackingNumber string) *domain.Package {
	return a.demoPackage(trackingNumber, domain.StatusDelivered, domain.TrackingEvent{
		Timestamp:   time.Now().UTC(),
		Status:      "Delivered",
		Location:    "Front Porch",
		Description: "Left at front porch. Signature not required.",
		RawStatus:   "Delivered",
	})
}
