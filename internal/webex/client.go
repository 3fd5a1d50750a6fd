// Package webex provides a client for the cloud conferencing API: device
// status for the cloud probe, and ephemeral meetings with per-participant
// quality metrics for test calls.
package webex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomwatch/roomwatch/internal/provider/resilience"
)

const (
	// ProviderName identifies this capability provider.
	ProviderName = "webex"

	// DefaultBaseURL is the cloud API base URL.
	DefaultBaseURL = "https://webexapis.com/v1"
)

// ClientConfig holds configuration for the cloud API client.
type ClientConfig struct {
	// AccessToken authenticates API requests (required).
	AccessToken string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional). If nil, a
	// resilient client with defaults is used.
	HTTPClient resilience.Doer

	// Timeout is the request timeout (optional, defaults to 30s).
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a cloud conferencing API client.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  resilience.Doer
	logger      zerolog.Logger
}

// NewClient creates a new cloud API client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.Config{
			Name:    ProviderName,
			Timeout: cfg.Timeout,
		})
	}

	return &Client{
		accessToken: cfg.AccessToken,
		baseURL:     baseURL,
		httpClient:  httpClient,
		logger:      cfg.Logger.With().Str("component", "webex").Logger(),
	}
}

// DeviceStatus is the cloud view of a registered device.
type DeviceStatus struct {
	ConnectionStatus string
	Software         string
}

// Connected reports whether the cloud considers the device online.
func (s *DeviceStatus) Connected() bool {
	return s.ConnectionStatus == "connected"
}

// GetDeviceStatus retrieves the cloud-side status of a device.
func (c *Client) GetDeviceStatus(ctx context.Context, deviceID string) (*DeviceStatus, error) {
	var payload struct {
		ConnectionStatus string `json:"connectionStatus"`
		Software         string `json:"software"`
	}
	if err := c.getJSON(ctx, "/devices/"+deviceID, &payload); err != nil {
		return nil, err
	}

	return &DeviceStatus{
		ConnectionStatus: payload.ConnectionStatus,
		Software:         payload.Software,
	}, nil
}

// Meeting is an ephemeral meeting created for a test call.
type Meeting struct {
	ID      string
	WebLink string
}

// CreateMeeting creates a meeting starting at start for the given duration.
func (c *Client) CreateMeeting(ctx context.Context, title string, start time.Time, duration time.Duration) (*Meeting, error) {
	body := map[string]interface{}{
		"title":    title,
		"start":    start.UTC().Format(time.RFC3339),
		"end":      start.Add(duration).UTC().Format(time.RFC3339),
		"timezone": "UTC",
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode meeting request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/meetings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var meeting struct {
		ID      string `json:"id"`
		WebLink string `json:"webLink"`
	}
	if err := c.doJSON(req, &meeting); err != nil {
		return nil, err
	}

	return &Meeting{ID: meeting.ID, WebLink: meeting.WebLink}, nil
}

// DeleteMeeting removes a meeting. Used to avoid leaking the ephemeral
// meetings test calls create.
func (c *Client) DeleteMeeting(ctx context.Context, meetingID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/meetings/"+meetingID, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("delete meeting: status %d", resp.StatusCode)
	}
	return nil
}

// ParticipantMetrics are the per-participant media metrics for one call.
type ParticipantMetrics struct {
	PacketLossPercent      float64
	JitterMs               float64
	LatencyMs              float64
	VideoPacketLossPercent float64
	VideoJitterMs          float64
	VideoLatencyMs         float64
}

// GetMeetingQuality fetches media quality metrics for every participant of
// a meeting. Participants whose quality endpoint fails are skipped.
func (c *Client) GetMeetingQuality(ctx context.Context, meetingID string) ([]ParticipantMetrics, error) {
	var participants struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := c.getJSON(ctx, "/meetings/"+meetingID+"/participants", &participants); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	var metrics []ParticipantMetrics
	for _, p := range participants.Items {
		if p.ID == "" {
			continue
		}

		var quality struct {
			Audio mediaMetrics `json:"audio"`
			Video mediaMetrics `json:"video"`
		}
		path := fmt.Sprintf("/meetings/%s/participants/%s/quality", meetingID, p.ID)
		if err := c.getJSON(ctx, path, &quality); err != nil {
			c.logger.Warn().Err(err).Str("participant", p.ID).Msg("participant quality fetch failed")
			continue
		}

		metrics = append(metrics, ParticipantMetrics{
			PacketLossPercent:      quality.Audio.PacketLossPercent,
			JitterMs:               quality.Audio.Jitter,
			LatencyMs:              quality.Audio.Latency,
			VideoPacketLossPercent: quality.Video.PacketLossPercent,
			VideoJitterMs:          quality.Video.Jitter,
			VideoLatencyMs:         quality.Video.Latency,
		})
	}

	if len(metrics) == 0 {
		return nil, fmt.Errorf("no quality metrics available for meeting %s", meetingID)
	}

	return metrics, nil
}

type mediaMetrics struct {
	PacketLossPercent float64 `json:"packetLossPercent"`
	Jitter            float64 `json:"jitter"`
	Latency           float64 `json:"latency"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
