package alexa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// Client talks to the Alexa smart-home API with a captured session.
type Client struct {
	cfg     Config
	session *Session

	httpClient *http.Client
	metrics    *metrics
}

func NewClient(cfg Config, session *Session) (*Client, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	resolved, err := ResolveConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:        resolved,
		session:    session,
		httpClient: &http.Client{Timeout: resolved.Timeout},
		metrics:    newMetrics(),
	}, nil
}

// Enumerate fetches the listing for one source and parses every record
// at the boundary. The raw payload rides along for audit snapshots.
func (c *Client) Enumerate(ctx context.Context, src Source) (*Enumeration, error) {
	switch src {
	case SourceEntities:
		return c.enumerateEntities(ctx)
	case SourceEndpoints:
		return c.enumerateEndpoints(ctx)
	}
	return nil, fmt.Errorf("unknown source %q", src)
}

func (c *Client) enumerateEntities(ctx context.Context) (*Enumeration, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/behaviors/entities?skillId="+url.QueryEscape(c.cfg.SkillID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Routines-Version", routinesVersion)

	payload, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, fmt.Errorf("entities response was empty")
	}
	devices, err := ParseEntities(c.cfg.DeletePrefix, payload)
	if err != nil {
		return nil, err
	}
	return &Enumeration{Source: SourceEntities, Devices: devices, Raw: payload}, nil
}

func (c *Client) enumerateEndpoints(ctx context.Context) (*Enumeration, error) {
	body, err := json.Marshal(graphqlRequest{Query: customerSmartHomeQuery})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/nexus/v1/graphql", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("csrf", c.session.csrf)
	req.Header.Set("Content-Type", acceptHeader)
	req.Header.Set("x-amzn-RequestId", uuid.NewString())

	payload, err := c.do(req)
	if err != nil {
		return nil, err
	}
	devices, err := ParseEndpoints(payload)
	if err != nil {
		return nil, err
	}
	return &Enumeration{Source: SourceEndpoints, Devices: devices, Raw: payload}, nil
}

// DeleteAppliance asks the account to drop one appliance registration.
// The response body is discarded; only the status comes back. A 2xx
// does not prove the appliance is gone, only a fresh listing does.
func (c *Client) DeleteAppliance(ctx context.Context, id ApplianceID) (int, error) {
	if id == "" {
		return 0, fmt.Errorf("appliance id is empty")
	}
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/phoenix/appliance/"+id.PathSegment(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("csrf", c.session.csrf)
	req.Header.Set("x-amzn-RequestId", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	c.metrics.observe(req.Method, resp.StatusCode)
	return resp.StatusCode, nil
}

// DeviceGone probes the per-device control presentation. The app
// renders this view for every registered device; a 404 is the only
// reliable signal that a deletion actually landed.
func (c *Client) DeviceGone(ctx context.Context, entityID string) (bool, error) {
	if entityID == "" {
		return false, fmt.Errorf("entity id is empty")
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/smarthome/v1/presentation/devices/control/"+url.PathEscape(entityID), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Routines-Version", routinesVersion)
	req.Header.Set("x-amzn-RequestId", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	c.metrics.observe(req.Method, resp.StatusCode)
	return resp.StatusCode == http.StatusNotFound, nil
}

// BaseURL exposes the resolved endpoint for log lines.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// DeletePrefix exposes the configured prefix so callers can check it
// before attempting an entities run.
func (c *Client) DeletePrefix() string {
	return c.cfg.DeletePrefix
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	c.session.applyBase(req)
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	c.metrics.observe(req.Method, resp.StatusCode)
	if resp.StatusCode >= 300 {
		return nil, StatusError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
