package models

import "github.com/roomwatch/roomwatch/internal/alert"

// Alert is the API representation of an alert.
type Alert struct {
	ID          string     `json:"id"`
	RoomID      string     `json:"roomId"`
	CreatedAt   Timestamp  `json:"createdAt"`
	Type        string     `json:"type"`
	Severity    string     `json:"severity"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	TicketID    *string    `json:"ticketId,omitempty"`
	ResolvedAt  *Timestamp `json:"resolvedAt,omitempty"`
	ResolvedBy  *string    `json:"resolvedBy,omitempty"`
}

// AlertFromDomain converts a domain alert.
func AlertFromDomain(a *alert.Alert) *Alert {
	return &Alert{
		ID:          a.ID,
		RoomID:      a.RoomID,
		CreatedAt:   Timestamp(a.CreatedAt),
		Type:        string(a.Type),
		Severity:    string(a.Severity),
		Title:       a.Title,
		Description: a.Description,
		Status:      string(a.Status),
		TicketID:    a.TicketID,
		ResolvedAt:  timestampPtr(a.ResolvedAt),
		ResolvedBy:  a.ResolvedBy,
	}
}

// AlertsFromDomain converts a slice of domain alerts.
func AlertsFromDomain(alerts []*alert.Alert) []*Alert {
	out := make([]*Alert, len(alerts))
	for i, a := range alerts {
		out[i] = AlertFromDomain(a)
	}
	return out
}

// AlertList is the list response body.
type AlertList struct {
	Items []*Alert `json:"items"`
}

// ResolveAlertRequest is the resolve request body.
type ResolveAlertRequest struct {
	ResolvedBy string `json:"resolvedBy"`
}
