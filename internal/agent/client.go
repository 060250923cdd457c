// Package agent implements the Veeam REST API collection pipeline: session
// handling, paginated bulk fetch, per-section caching, enrichment, and the
// section output written for the monitoring platform.
package agent

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fjacquet/veeam_agent/internal/models"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// apiVersion is the x-api-version header value for Veeam B&R 12+.
const apiVersion = "1.3-rev1"

const (
	headerAccept      = "Accept"
	headerAPIVersion  = "x-api-version"
	headerAuth        = "Authorization"
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
	contentTypeForm   = "application/x-www-form-urlencoded"
)

// Session holds a bearer token for one collection run. It is never persisted
// across runs.
type Session struct {
	Token     string
	ExpiresAt time.Time
	BaseURL   string
}

// Client handles HTTP communication with the Veeam REST API. It manages the
// TLS configuration, the OAuth2 session, and provides the request primitive
// used by the fetch engine.
type Client struct {
	client  *resty.Client
	cfg     models.Config
	session *Session
}

// NewClient creates a Veeam API client from the configuration. TLS
// verification follows cfg.Server.InsecureSkipVerify and every request is
// bounded by the configured timeout.
func NewClient(cfg models.Config) *Client {
	if cfg.Server.InsecureSkipVerify {
		log.Warn("TLS certificate verification disabled")
	}

	client := resty.New().
		SetTimeout(cfg.GetTimeout()).
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: cfg.Server.InsecureSkipVerify,
			MinVersion:         tls.VersionTLS12,
		})

	return &Client{
		client: client,
		cfg:    cfg,
	}
}

// Authenticate performs the OAuth2 password-grant token exchange and stores
// the resulting session on the client. Any non-2xx or malformed response
// yields an *AuthError; the call is never retried here, retry policy belongs
// to the caller.
func (c *Client) Authenticate(ctx context.Context) (*Session, error) {
	tokenURL := c.cfg.GetBaseURL() + "/api/oauth2/token"

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader(headerContentType, contentTypeForm).
		SetHeader(headerAPIVersion, apiVersion).
		SetFormData(map[string]string{
			"grant_type": "password",
			"username":   c.cfg.Server.Username,
			"password":   c.cfg.Server.Password,
		}).
		Post(tokenURL)
	if err != nil {
		return nil, &AuthError{Message: err.Error()}
	}

	if resp.IsError() {
		return nil, &AuthError{
			Status:  resp.StatusCode(),
			Message: bodyPreview(resp.Body()),
		}
	}

	var token models.TokenResponse
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		return nil, &AuthError{
			Status:  resp.StatusCode(),
			Message: fmt.Sprintf("malformed token response: %v", err),
		}
	}
	if token.AccessToken == "" {
		return nil, &AuthError{
			Status:  resp.StatusCode(),
			Message: "token response without access_token",
		}
	}

	c.session = &Session{
		Token:     token.AccessToken,
		ExpiresAt: time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
		BaseURL:   c.cfg.GetBaseURL(),
	}
	log.Debugf("Authenticated in %s, token expires in %ds", time.Since(start).Round(time.Millisecond), token.ExpiresIn)
	return c.session, nil
}

// FetchData sends a GET request to the endpoint (relative to the versioned
// API root) and unmarshals the JSON response into target. The current
// session's bearer token is attached; a 401 invalidates the session and
// triggers exactly one re-acquisition before the request is repeated.
func (c *Client) FetchData(ctx context.Context, endpoint string, queryParams map[string]string, target interface{}) error {
	if c.session == nil {
		if _, err := c.Authenticate(ctx); err != nil {
			return err
		}
	}

	url := c.cfg.BuildURL(endpoint, queryParams)
	resp, err := c.get(ctx, url)
	if err != nil {
		return fmt.Errorf("HTTP request to %s failed: %w", endpoint, err)
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		c.session = nil
		if _, err := c.Authenticate(ctx); err != nil {
			return err
		}
		if resp, err = c.get(ctx, url); err != nil {
			return fmt.Errorf("HTTP request to %s failed: %w", endpoint, err)
		}
	}

	if resp.IsError() {
		return fmt.Errorf("HTTP request failed: endpoint=%s, status=%d (%s)",
			endpoint, resp.StatusCode(), resp.Status())
	}

	if err := json.Unmarshal(resp.Body(), target); err != nil {
		return fmt.Errorf("failed to unmarshal response from %s: %w, preview: %s",
			endpoint, err, bodyPreview(resp.Body()))
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) (*resty.Response, error) {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader(headerAccept, contentTypeJSON).
		SetHeader(headerAPIVersion, apiVersion).
		SetHeader(headerAuth, "Bearer "+c.session.Token).
		Get(url)
	if err == nil {
		log.Debugf("GET %s: %d in %s", url, resp.StatusCode(), time.Since(start).Round(time.Millisecond))
	}
	return resp, err
}

func bodyPreview(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
