package salesforce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Config carries the connection constants for one run. Everything here used
// to be hard-coded in the original test scripts; it is injected now.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	JobID        string
}

// ConfigFromEnv builds a Config from the environment, falling back to the
// sandbox defaults where a variable is unset.
func ConfigFromEnv() Config {
	cfg := Config{
		BaseURL:      os.Getenv("SF_BASE_URL"),
		ClientID:     os.Getenv("SF_CLIENT_ID"),
		ClientSecret: os.Getenv("SF_CLIENT_SECRET"),
		JobID:        os.Getenv("SF_JOB_ID"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://recruiting--sandbox.sandbox.my.salesforce.com"
	}
	if cfg.JobID == "" {
		cfg.JobID = "a0B000000000001"
	}
	return cfg
}

// Client talks to the Salesforce recruiting org: the oauth2 token endpoint
// and the apexrest job Apply endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = ConfigFromEnv().BaseURL
	}
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 60 * time.Second}}
}

// Authenticate performs the client-credentials exchange and returns the
// bearer token. Any failure here is fatal for the run: nothing downstream
// is meaningful without a token, so no retry is attempted.
func (c *Client) Authenticate(ctx context.Context, clientID, clientSecret string) (string, error) {
	q := url.Values{}
	q.Set("grant_type", "client_credentials")
	q.Set("client_id", clientID)
	q.Set("client_secret", clientSecret)

	tokenURL := c.BaseURL + "/services/oauth2/token?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	fmt.Printf("salesforce: token response status=%d\n", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(respBytes, &tokenResp); err != nil {
		return "", err
	}
	if tokenResp.AccessToken == "" {
		return "", errors.New("token response contained no access_token")
	}
	return tokenResp.AccessToken, nil
}

// ApplyURL builds the job Apply endpoint URL. An empty domain omits the
// domain query parameter entirely rather than sending it blank.
func (c *Client) ApplyURL(jobID, domain string) string {
	q := url.Values{}
	q.Set("id", jobID)
	if domain != "" {
		q.Set("domain", domain)
	}
	return c.BaseURL + "/services/apexrest/msf/api/job/Apply?" + q.Encode()
}

// SubmitApplication issues exactly one authenticated POST with the given
// JSON body. It returns the HTTP status and raw response body; err is
// non-nil only for transport-level failures where no status exists.
func (c *Client) SubmitApplication(ctx context.Context, token, jobID, domain string, body []byte) (int, []byte, error) {
	applyURL := c.ApplyURL(jobID, domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, applyURL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	fmt.Printf("salesforce: POST %s\n", applyURL)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	fmt.Printf("salesforce: apply response status=%d body=%s\n", resp.StatusCode, string(respBytes))
	return resp.StatusCode, respBytes, nil
}
