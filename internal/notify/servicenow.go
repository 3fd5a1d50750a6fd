package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/roomwatch/roomwatch/internal/alert"
	"github.com/roomwatch/roomwatch/internal/provider/resilience"
	"github.com/roomwatch/roomwatch/internal/room"
)

// ServiceNowSink files an incident per alert and reports the incident
// number back as the ticket id.
type ServiceNowSink struct {
	baseURL  string
	username string
	password string
	client   resilience.Doer
}

var _ alert.Notifier = (*ServiceNowSink)(nil)

// NewServiceNowSink creates a ServiceNow incident sink. instance is the
// instance name, e.g. "acme" for acme.service-now.com.
func NewServiceNowSink(instance, username, password string, client resilience.Doer) *ServiceNowSink {
	return &ServiceNowSink{
		baseURL:  fmt.Sprintf("https://%s.service-now.com", instance),
		username: username,
		password: password,
		client:   client,
	}
}

type incidentRequest struct {
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	Urgency          string `json:"urgency"`
	Impact           string `json:"impact"`
	Category         string `json:"category"`
}

type incidentResponse struct {
	Result struct {
		Number string `json:"number"`
		SysID  string `json:"sys_id"`
	} `json:"result"`
}

// Notify files the incident and returns its number.
func (s *ServiceNowSink) Notify(ctx context.Context, a *alert.Alert, rm *room.Room) (string, error) {
	urgency, impact := priority(a.Severity)
	payload := incidentRequest{
		ShortDescription: a.Title,
		Description:      fmt.Sprintf("Room: %s\n\n%s", rm.Name, a.Description),
		Urgency:          urgency,
		Impact:           impact,
		Category:         "hardware",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/now/table/incident", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(s.username, s.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create incident: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("create incident: status %d: %s", resp.StatusCode, snippet)
	}

	var out incidentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode incident response: %w", err)
	}
	return out.Result.Number, nil
}

// priority maps alert severity onto ServiceNow urgency and impact codes
// (1 high, 2 medium, 3 low).
func priority(severity alert.Severity) (urgency, impact string) {
	switch severity {
	case alert.SeverityCritical:
		return "1", "1"
	case alert.SeverityHigh:
		return "2", "1"
	case alert.SeverityMedium:
		return "2", "2"
	default:
		return "3", "3"
	}
}
