// Package roomos provides a client for the HTTP xmlapi exposed by room
// devices, used for the direct probe and for driving test calls.
package roomos

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout is the transport timeout for device requests. Exceeding it
// is treated as the device being unreachable.
const DefaultTimeout = 30 * time.Second

// ClientConfig holds configuration for a device client.
type ClientConfig struct {
	// Address is the device IP address or hostname (required).
	Address string

	// Username and Password authenticate against the device. Devices ship
	// with an admin account.
	Username string
	Password string

	// Timeout is the request timeout (optional, defaults to 30s).
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client talks to a single room device.
//
// Device requests are deliberately not retried: a failed status request is
// itself the reachability signal the health assessor consumes.
type Client struct {
	address    string
	username   string
	password   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client for the device at cfg.Address.
func NewClient(cfg ClientConfig) *Client {
	username := cfg.Username
	if username == "" {
		username = "admin"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	// Devices use self-signed certificates.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // device certs are self-signed

	return &Client{
		address:  cfg.Address,
		username: username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: cfg.Logger.With().Str("component", "roomos").Str("device", cfg.Address).Logger(),
	}
}

// DeviceStatus is the live status snapshot read from a device.
type DeviceStatus struct {
	Online           bool
	CameraStatus     string // connected, disconnected, unknown
	MicrophoneStatus string
	SpeakerStatus    string
	SoftwareVersion  string
	UptimeHours      *int
	TemperatureC     *float64
}

// GetStatus reads the system unit and peripheral status from the device.
// An unreachable device is not an error: the failed connection is itself
// the offline signal, and yields a snapshot with Online false. The error
// return is reserved for anomalous responses (auth failure, bad status)
// and for a cancelled context.
func (c *Client) GetStatus(ctx context.Context) (*DeviceStatus, error) {
	status := &DeviceStatus{
		CameraStatus:     "unknown",
		MicrophoneStatus: "unknown",
		SpeakerStatus:    "unknown",
	}

	sysBody, err := c.get(ctx, "status.xml?location=/Status/SystemUnit")
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			// Connection refused or timed out: the device is offline.
			c.logger.Warn().Err(err).Msg("device unreachable")
			return status, nil
		}
		return nil, err
	}

	// The device answered, so it is up.
	status.Online = true
	parseSystemUnit(sysBody, status)

	// Peripheral status is secondary: a parse or fetch problem there must
	// not hide a responsive device.
	periphBody, err := c.get(ctx, "status.xml?location=/Status/Peripherals")
	if err != nil {
		c.logger.Warn().Err(err).Msg("peripheral status fetch failed")
		return status, nil
	}
	parsePeripherals(periphBody, status)

	return status, nil
}

// Dial instructs the device to join the given meeting link. Returns the
// device-local call id when the device reports one.
func (c *Client) Dial(ctx context.Context, number string) (string, error) {
	cmd := dialCommand{Dial: dialBody{Number: number}}
	body, err := c.post(ctx, "command/Dial", cmd)
	if err != nil {
		return "", err
	}

	var result dialResult
	if err := xml.Unmarshal(body, &result); err != nil {
		// The call may still have been placed; only the id is lost.
		return "", nil
	}
	return result.DialResultBody.CallID, nil
}

// Disconnect hangs up any active call on the device.
func (c *Client) Disconnect(ctx context.Context) error {
	cmd := disconnectCommand{Call: disconnectCall{}}
	_, err := c.post(ctx, "command/Call/Disconnect", cmd)
	return err
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

func (c *Client) post(ctx context.Context, endpoint string, cmd interface{}) ([]byte, error) {
	payload, err := xml.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	return c.do(ctx, http.MethodPost, endpoint, payload)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	url := fmt.Sprintf("https://%s/xmlapi/%s", c.address, endpoint)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	if body != nil {
		req.Header.Set("Content-Type", "text/xml")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("device request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read device response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("device returned status %d", resp.StatusCode)
	}

	return payload, nil
}

// xmlapi payloads.

type dialCommand struct {
	XMLName xml.Name `xml:"Command"`
	Dial    dialBody `xml:"Dial"`
}

type dialBody struct {
	Number string `xml:"Number"`
}

type dialResult struct {
	XMLName        xml.Name       `xml:"Command"`
	DialResultBody dialResultBody `xml:"DialResult"`
}

type dialResultBody struct {
	CallID string `xml:"CallId"`
}

type disconnectCommand struct {
	XMLName xml.Name       `xml:"Command"`
	Call    disconnectCall `xml:"Call"`
}

type disconnectCall struct {
	Disconnect struct{} `xml:"Disconnect"`
}

type systemUnitStatus struct {
	XMLName    xml.Name `xml:"Status"`
	SystemUnit struct {
		Software struct {
			Version string `xml:"Version"`
		} `xml:"Software"`
		Uptime   string `xml:"Uptime"`
		Hardware struct {
			Temperature string `xml:"Temperature"`
		} `xml:"Hardware"`
	} `xml:"SystemUnit"`
}

type peripheralsStatus struct {
	XMLName     xml.Name `xml:"Status"`
	Peripherals struct {
		ConnectedDevices []struct {
			Type   string `xml:"Type"`
			Status string `xml:"Status"`
		} `xml:"ConnectedDevice"`
	} `xml:"Peripherals"`
}

func parseSystemUnit(body []byte, status *DeviceStatus) {
	var sys systemUnitStatus
	if err := xml.Unmarshal(body, &sys); err != nil {
		return
	}

	status.SoftwareVersion = sys.SystemUnit.Software.Version

	if hours, ok := parseUptimeHours(sys.SystemUnit.Uptime); ok {
		status.UptimeHours = &hours
	}
	if temp, err := strconv.ParseFloat(strings.TrimSpace(sys.SystemUnit.Hardware.Temperature), 64); err == nil {
		status.TemperatureC = &temp
	}
}

func parsePeripherals(body []byte, status *DeviceStatus) {
	var periph peripheralsStatus
	if err := xml.Unmarshal(body, &periph); err != nil {
		return
	}

	for _, dev := range periph.Peripherals.ConnectedDevices {
		state := "disconnected"
		if strings.EqualFold(dev.Status, "Connected") || strings.EqualFold(dev.Status, "OK") {
			state = "connected"
		}

		switch strings.ToLower(dev.Type) {
		case "camera":
			status.CameraStatus = state
		case "microphone", "audiomicrophone":
			status.MicrophoneStatus = state
		case "speaker", "audiospeaker", "audioamplifier":
			status.SpeakerStatus = state
		}
	}
}

// parseUptimeHours converts a device uptime string to whole hours. Devices
// report either plain seconds or an ISO 8601 duration like "P2DT3H45M30S".
func parseUptimeHours(uptime string) (int, bool) {
	uptime = strings.TrimSpace(uptime)
	if uptime == "" {
		return 0, false
	}

	if secs, err := strconv.Atoi(uptime); err == nil {
		return secs / 3600, true
	}

	if !strings.HasPrefix(uptime, "P") {
		return 0, false
	}

	days, hours := 0, 0
	rest := uptime[1:]
	if i := strings.IndexByte(rest, 'D'); i >= 0 {
		if n, err := strconv.Atoi(rest[:i]); err == nil {
			days = n
		}
		rest = rest[i+1:]
	}
	rest = strings.TrimPrefix(rest, "T")
	if i := strings.IndexByte(rest, 'H'); i >= 0 {
		if n, err := strconv.Atoi(rest[:i]); err == nil {
			hours = n
		}
	}

	return days*24 + hours, true
}
