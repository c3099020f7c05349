package adapter

import (
	"context"
	"testing"

	"package-tracker/internal/core/config"
	"package-tracker/internal/core/proxy"
	"package-tracker/internal/features/tracking/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAmazonAdapter(scrapeEnabled bool) *AmazonAdapter {
	return NewAmazonAdapter(config.AmazonConfig{
		ScrapeEnabled: scrapeEnabled,
		TrackingURL:   "https://track.amazon.com/tracking/%s",
	}, proxy.Settings{})
}

func TestAmazonAdapter_Validate(t *testing.T) {
	amazon := newTestAmazonAdapter(false)

	assert.True(t, amazon.Validate("TBA123456789012"))
	assert.True(t, amazon.Validate("TBM123456789012"))
	assert.True(t, amazon.Validate("TBC123456789012"))
	assert.False(t, amazon.Validate("TBX123456789012"))
	assert.False(t, amazon.Validate("TBA12345"))
}

func TestAmazonAdapter_ParseStatus(t *testing.T) {
	amazon := newTestAmazonAdapter(false)

	assert.Equal(t, domain.StatusInTransit, amazon.ParseStatus("Shipped"))
	assert.Equal(t, domain.StatusException, amazon.ParseStatus("delivery attempted"))
	assert.Equal(t, domain.StatusReturned, amazon.ParseStatus("RETURNING"))
	assert.Equal(t, domain.StatusUnknown, amazon.ParseStatus("??"))
}

func TestAmazonAdapter_ParseResponse(t *testing.T) {
	amazon := newTestAmazonAdapter(true)

	pkg := amazon.parseResponse([]byte(`{
        "progressTracker": {
            "summary": {"status": "OUT_FOR_DELIVERY"},
            "expectedDeliveryDate": "2024-03-02"
        },
        "eventHistory": [
            {"eventCode": "shipped", "statusSummary": "Package has shipped",
             "eventTime": "2024-03-01T05:00:00Z",
             "location": {"city": "Phoenix", "stateProvince": "AZ", "countryCode": "US"}},
            {"eventCode": "out_for_delivery", "statusSummary": "Out for delivery",
             "eventTime": "2024-03-02T08:30:00Z",
             "location": {"city": "Tempe", "stateProvince": "AZ", "countryCode": "US"}}
        ]
    }`), "TBA123456789012")

	require.NotNil(t, pkg)
	assert.Equal(t, "amazon_TBA123456789012", pkg.ID)
	assert.Equal(t, domain.StatusOutForDelivery, pkg.Status)
	require.Len(t, pkg.Events, 2)
	assert.Equal(t, "Out for delivery", pkg.Events[0].Description)
	assert.Equal(t, "Tempe, AZ", pkg.Events[0].Location)
	require.NotNil(t, pkg.EstimatedDelivery)
}

func TestAmazonAdapter_ParseResponse_Malformed(t *testing.T) {
	amazon := newTestAmazonAdapter(true)

	assert.Nil(t, amazon.parseResponse([]byte("<html>blocked</html>"), "TBA123456789012"))
	assert.Nil(t, amazon.parseResponse([]byte(`{}`), "TBA123456789012"))
}

func TestAmazonAdapter_Track_DemoWhenScrapingDisabled(t *testing.T) {
	amazon := newTestAmazonAdapter(false)

	pkg, err := amazon.Track(context.Background(), "TBA123456789012")

	require.NoError(t, err)
	require.NotNil(t, pkg)
	assert.Equal(t, "demo", pkg.Source)
	assert.Equal(t, domain.StatusInTransit, pkg.Status)
}
