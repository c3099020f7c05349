package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"package-tracker/internal/core/config"
	"package-tracker/internal/core/logger"
	"package-tracker/internal/core/proxy"
	"package-tracker/internal/features/tracking/domain"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
)

// AmazonAdapter tracks Amazon Logistics shipments. Amazon exposes no public
// tracking API, so when scraping is enabled the adapter drives a headless
// browser to the tracking page and captures the progress JSON the page
// loads. With scraping disabled it serves demo responses.
type AmazonAdapter struct {
	carrierProfile
	scrapeEnabled bool
	pageURL       string
	proxy         proxy.Settings
	logger        *zap.Logger
}

var amazonStatuses = statusTable{
	"created":            domain.StatusPreTransit,
	"label_created":      domain.StatusPreTransit,
	"shipped":            domain.StatusInTransit,
	"in_transit":         domain.StatusInTransit,
	"out_for_delivery":   domain.StatusOutForDelivery,
	"delivered":          domain.StatusDelivered,
	"undeliverable":      domain.StatusException,
	"delivery_attempted": domain.StatusException,
	"returning":          domain.StatusReturned,
	"returned":           domain.StatusReturned,
}

// NewAmazonAdapter creates the Amazon adapter.
func NewAmazonAdapter(cfg config.AmazonConfig, proxySettings proxy.Settings) *AmazonAdapter {
	return &AmazonAdapter{
		carrierProfile: newCarrierProfile(
			domain.CarrierAmazon,
			"https://track.amazon.com/tracking/%s",
			[]string{
				`^TB[AMC][0-9]{12}$`,
			},
		),
		scrapeEnabled: cfg.ScrapeEnabled,
		pageURL:       cfg.TrackingURL,
		proxy:         proxySettings,
		logger:        logger.Get(),
	}
}

// ParseStatus maps Amazon progress-tracker vocabulary onto the canonical statuses.
func (a *AmazonAdapter) ParseStatus(rawStatus string) domain.PackageStatus {
	return amazonStatuses.lookup(rawStatus)
}

// amazonProgressResponse mirrors the progress JSON the tracking page loads.
type amazonProgressResponse struct {
	ProgressTracker struct {
		Summary struct {
			Status string `json:"status"`
		} `json:"summary"`
		ExpectedDeliveryDate string `json:"expectedDeliveryDate"`
	} `json:"progressTracker"`
	EventHistory []struct {
		EventCode     string `json:"eventCode"`
		StatusSummary string `json:"statusSummary"`
		EventTime     string `json:"eventTime"`
		Location      struct {
			City    string `json:"city"`
			State   string `json:"stateProvince"`
			Country string `json:"countryCode"`
		} `json:"location"`
	} `json:"eventHistory"`
}

// Track captures the tracking page's progress JSON through a hijacked
// browser request and maps it onto the canonical model.
func (a *AmazonAdapter) Track(ctx context.Context, trackingNumber string) (*domain.Package, error) {
	if !a.scrapeEnabled {
		return a.demoTrack(trackingNumber), nil
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	pageURL := fmt.Sprintf(a.pageURL, trackingNumber)

	a.logger.Debug("Launching browser for Amazon tracking",
		zap.Bool("proxy_enabled", a.proxy.HasProxy()),
		zap.String("tracking_number", trackingNumber),
	)

	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)

	if a.proxy.HasProxy() {
		l = l.Proxy(a.proxy.HostPort())
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	if a.proxy.HasProxy() && a.proxy.Username != "" && a.proxy.Password != "" {
		go browser.MustHandleAuth(a.proxy.Username, a.proxy.Password)()
	}

	page := browser.MustPage(pageURL)

	router := page.HijackRequests()
	defer router.MustStop()

	done := make(chan []byte)

	router.MustAdd("*/progress-tracker/package/*", func(hctx *rod.Hijack) {
		if err := hctx.LoadResponse(http.DefaultClient, true); err != nil {
			return
		}
		done <- []byte(hctx.Response.Body())
	})

	go router.Run()

	select {
	case body := <-done:
		return a.parseResponse(body, trackingNumber), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout waiting for Amazon progress response: %w", ctx.Err())
	}
}

// parseResponse converts the progress JSON into a Package. Malformed
// payloads are logged and reported as a miss.
func (a *AmazonAdapter) parseResponse(body []byte, trackingNumber string) *domain.Package {
	var resp amazonProgressResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		a.logger.Warn("Failed to parse Amazon progress response",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return nil
	}

	if resp.ProgressTracker.Summary.Status == "" && len(resp.EventHistory) == 0 {
		return nil
	}

	events := make([]domain.TrackingEvent, 0, len(resp.EventHistory))
	for _, item := range resp.EventHistory {
		timestamp, err := time.Parse(time.RFC3339, item.EventTime)
		if err != nil {
			a.logger.Debug("Skipping Amazon event with unparsable time",
				zap.String("event_time", item.EventTime),
			)
			continue
		}

		events = append(events, domain.TrackingEvent{
			Timestamp:   timestamp.UTC(),
			Status:      item.StatusSummary,
			Location:    joinLocation(item.Location.City, item.Location.State, item.Location.Country),
			Description: item.StatusSummary,
			RawStatus:   item.EventCode,
		})
	}

	pkg := a.newPackage(trackingNumber, a.ParseStatus(resp.ProgressTracker.Summary.Status), events)

	if resp.ProgressTracker.ExpectedDeliveryDate != "" {
		if estimated, err := time.Parse("2006-01-02", resp.ProgressTracker.ExpectedDeliveryDate); err == nil {
			estimated = estimated.UTC()
			pkg.EstimatedDelivery = &estimated
		}
	}

	return pkg
}

func (a *AmazonAdapter) demoTrack(trackingNumber string) *domain.Package {
	return a.demoPackage(trackingNumber, domain.StatusInTransit, domain.TrackingEvent{
		Timestamp:   time.Now().UTC(),
		Status:      "Package arrived at a carrier facility",
		Location:    "Phoenix, AZ",
		Description: "Package arrived at an Amazon facility",
		RawStatus:   "in_transit",
	})
}
