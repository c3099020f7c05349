package adapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"package-tracker/internal/core/httpclient"
)

// tokenTimeout bounds the OAuth token call. It is deliberately shorter than
// the tracking call timeout: a slow token endpoint should fail fast.
const tokenTimeout = 10 * time.Second

// clientCredentials fetches OAuth2 bearer tokens using the
// client-credentials grant, as required by the UPS and FedEx tracking APIs.
type clientCredentials struct {
	tokenURL     string
	clientID     string
	clientSecret string
	// basicAuth selects whether credentials travel in the Authorization
	// header (UPS) or the form body (FedEx).
	basicAuth bool
	client    *http.Client
}

func newClientCredentials(tokenURL, clientID, clientSecret string, basicAuth bool) *clientCredentials {
	return &clientCredentials{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		basicAuth:    basicAuth,
		client:       httpclient.NewClient(tokenTimeout),
	}
}

// token performs one client-credentials exchange and returns the bearer token.
func (c *clientCredentials) token(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	if !c.basicAuth {
		form.Set("client_id", c.clientID)
		form.Set("client_secret", c.clientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.basicAuth {
		credentials := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
		req.Header.Set("Authorization", "Basic "+credentials)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty access token")
	}

	return payload.AccessToken, nil
}
