package adapter

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"package-tracker/internal/core/config"
	"package-tracker/internal/core/httpclient"
	"package-tracker/internal/core/logger"
	"package-tracker/internal/features/tracking/domain"

	"go.uber.org/zap"
)

// trackTimeout bounds every carrier tracking call.
const trackTimeout = 30 * time.Second

// USPSAdapter tracks shipments through the USPS Web Tools TrackV2 XML API.
type USPSAdapter struct {
	carrierProfile
	userID string
	apiURL string
	client *http.Client
	logger *zap.Logger
}

var uspsStatuses = statusTable{
	"pre_transit":        domain.StatusPreTransit,
	"accepted":           domain.StatusPreTransit,
	"transit":            domain.StatusInTransit,
	"in_transit":         domain.StatusInTransit,
	"out_for_delivery":   domain.StatusOutForDelivery,
	"delivered":          domain.StatusDelivered,
	"alert":              domain.StatusException,
	"exception":          domain.StatusException,
	"returned":           domain.StatusReturned,
	"return_to_sender":   domain.StatusReturned,
	"returned_to_sender": domain.StatusReturned,
}

// NewUSPSAdapter creates the USPS adapter. Without a Web Tools user ID the
// adapter serves demo responses.
func NewUSPSAdapter(cfg config.USPSConfig) *USPSAdapter {
	return &USPSAdapter{
		carrierProfile: newCarrierProfile(
			domain.CarrierUSPS,
			"https://tools.usps.com/go/TrackConfirmAction?tLabels=%s",
			[]string{
				`^(94|93|92|95|96)[0-9]{20}$`, // domestic
				`^[A-Z]{2}[0-9]{9}[A-Z]{2}$`,  // international
				`^(70|14|23|03)[0-9]{14}$`,    // Priority Mail Express
				`^(M0|82)[0-9]{8}$`,           // signature confirmation
			},
		),
		userID: cfg.UserID,
		apiURL: "https://secure.shippingapis.com/ShippingAPI.dll",
		client: httpclient.NewClient(trackTimeout),
		logger: logger.Get(),
	}
}

// ParseStatus maps USPS status vocabulary onto the canonical statuses.
func (a *USPSAdapter) ParseStatus(rawStatus string) domain.PackageStatus {
	return uspsStatuses.lookup(rawStatus)
}

// uspsTrackResponse mirrors the TrackV2 XML document.
type uspsTrackResponse struct {
	XMLName   xml.Name `xml:"TrackResponse"`
	TrackInfo struct {
		Status         string            `xml:"Status"`
		StatusCategory string            `xml:"StatusCategory"`
		Summary        uspsTrackDetail   `xml:"TrackSummary"`
		Details        []uspsTrackDetail `xml:"TrackDetail"`
	} `xml:"TrackInfo"`
}

type uspsTrackDetail struct {
	Event      string `xml:"Event"`
	EventDate  string `xml:"EventDate"`
	EventTime  string `xml:"EventTime"`
	EventCity  string `xml:"EventCity"`
	EventState string `xml:"EventState"`
}

// Track fetches the USPS tracking document and maps it onto the canonical model.
func (a *USPSAdapter) Track(ctx context.Context, trackingNumber string) (*domain.Package, error) {
	if a.userID == "" {
		return a.demoTrack(trackingNumber), nil
	}

	xmlRequest := fmt.Sprintf(
		`<?xml version="1.0" encoding="UTF-8"?><TrackRequest USERID="%s"><TrackID ID="%s"></TrackID></TrackRequest>`,
		a.userID, trackingNumber,
	)

	query := url.Values{}
	query.Set("API", "TrackV2")
	query.Set("XML", xmlRequest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create USPS request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("USPS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Warn("USPS returned non-success status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("tracking_number", trackingNumber),
		)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read USPS response: %w", err)
	}

	return a.parseResponse(body, trackingNumber), nil
}

// parseResponse converts the XML document into a Package. Malformed
// documents are logged and reported as a miss, never as an error.
func (a *USPSAdapter) parseResponse(body []byte, trackingNumber string) *domain.Package {
	var resp uspsTrackResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		a.logger.Warn("Failed to parse USPS response",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return nil
	}

	info := resp.TrackInfo
	if info.Status == "" && info.StatusCategory == "" && len(info.Details) == 0 {
		return nil
	}

	details := info.Details
	if info.Summary.Event != "" {
		details = append([]uspsTrackDetail{info.Summary}, details...)
	}

	events := make([]domain.TrackingEvent, 0, len(details))
	for _, detail := range details {
		events = append(events, domain.TrackingEvent{
			Timestamp:   parseUSPSEventTime(detail.EventDate, detail.EventTime),
			Status:      detail.Event,
			Location:    joinLocation(detail.EventCity, detail.EventState, ""),
			Description: detail.Event,
			RawStatus:   detail.Event,
		})
	}

	rawStatus := info.StatusCategory
	if rawStatus == "" {
		rawStatus = info.Status
	}

	return a.newPackage(trackingNumber, a.ParseStatus(rawStatus), events)
}

// parseUSPSEventTime parses the "January 2, 2006" / "3:04 pm" pair USPS
// reports. A missing or unparsable time degrades to midnight of the date.
func parseUSPSEventTime(date, clock string) time.Time {
	if ts, err := time.Parse("January 2, 2006 3:04 pm", date+" "+clock); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse("January 2, 2006", date); err == nil {
		return ts.UTC()
	}
	return time.Time{}
}

func (a *USPSAdapter) demoTrack(trackingNumber string) *domain.Package {
	return a.demoPackage(trackingNumber, domain.StatusInTransit, domain.TrackingEvent{
		Timestamp:   time.Now().UTC(),
		Status:      "In Transit",
		Location:    "Memphis, TN",
		Description: "Arrived at Regional Facility",
		RawStatus:   "In Transit",
	})
}

// joinLocation renders "City, ST" with a trailing "(CC)" for non-US
// countries, matching how carriers display scan locations.
func joinLocation(city, state, country string) string {
	location := city
	if state != "" {
		if location != "" {
			location += ", "
		}
		location += state
	}
	if country != "" && country != "US" {
		if location != "" {
			location += " "
		}
		location += "(" + country + ")"
	}
	return location
}
