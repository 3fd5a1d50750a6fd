package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomwatch/roomwatch/internal/alert"
	"github.com/roomwatch/roomwatch/internal/room"
)

func testAlert() *alert.Alert {
	return &alert.Alert{
		ID:          "al_1",
		RoomID:      "rm_1",
		CreatedAt:   time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC),
		Type:        alert.TypeHealthCheckFail,
		Severity:    alert.SeverityHigh,
		Title:       "Health Check Failed - Boardroom",
		Description: "Health check failed for room Boardroom. Error: timeout",
		Status:      alert.StatusOpen,
	}
}

func notifyRoom() *room.Room {
	loc := "Building 4"
	return &room.Room{ID: "rm_1", Name: "Boardroom", Location: &loc}
}

func TestEmailSink_Notify(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	sink := NewEmailSink("smtp.example.com:25", "monitor@example.com", []string{"ops@example.com"})
	sink.send = func(addr, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	ticketID, err := sink.Notify(context.Background(), testAlert(), notifyRoom())
	require.NoError(t, err)
	assert.Empty(t, ticketID)

	assert.Equal(t, "smtp.example.com:25", gotAddr)
	assert.Equal(t, "monitor@example.com", gotFrom)
	assert.Equal(t, []string{"ops@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: [VC Monitoring] Health Check Failed - Boardroom")
	assert.Contains(t, msg, "Room: Boardroom")
	assert.Contains(t, msg, "Location: Building 4")
	assert.Contains(t, msg, "Severity: high")
}

func TestEmailSink_SendFailure(t *testing.T) {
	sink := NewEmailSink("smtp.example.com:25", "monitor@example.com", []string{"ops@example.com"})
	sink.send = func(string, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	_, err := sink.Notify(context.Background(), testAlert(), notifyRoom())
	assert.Error(t, err)
}

type stubDoer struct {
	status int
	body   string
	req    *http.Request
}

func (s *stubDoer) Do(req *http.Request) (*http.Response, error) {
	s.req = req
	return &http.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Request:    req,
	}, nil
}

func TestServiceNowSink_Notify(t *testing.T) {
	doer := &stubDoer{status: http.StatusCreated, body: `{"result":{"number":"INC0012345","sys_id":"abc"}}`}
	sink := NewServiceNowSink("acme", "api-user", "secret", doer)

	ticketID, err := sink.Notify(context.Background(), testAlert(), notifyRoom())
	require.NoError(t, err)
	assert.Equal(t, "INC0012345", ticketID)

	require.NotNil(t, doer.req)
	assert.Equal(t, "https://acme.service-now.com/api/now/table/incident", doer.req.URL.String())
	user, _, ok := doer.req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "api-user", user)
}

func TestServiceNowSink_ErrorStatus(t *testing.T) {
	sink := NewServiceNowSink("acme", "api-user", "secret", &stubDoer{status: http.StatusForbidden})

	_, err := sink.Notify(context.Background(), testAlert(), notifyRoom())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "403"))
}

func TestPriority(t *testing.T) {
	tests := []struct {
		severity alert.Severity
		urgency  string
		impact   string
	}{
		{alert.SeverityCritical, "1", "1"},
		{alert.SeverityHigh, "2", "1"},
		{alert.SeverityMedium, "2", "2"},
		{alert.SeverityLow, "3", "3"},
	}
	for _, tt := range tests {
		urgency, impact := priority(tt.severity)
		if urgency != tt.urgency || impact != tt.impact {
			t.Errorf("priority(%s) = %s/%s, want %s/%s", tt.severity, urgency, impact, tt.urgency, tt.impact)
		}
	}
}

type fanoutSink struct {
	ticketID string
	err      error
	calls    int
}

func (s *fanoutSink) Notify(context.Context, *alert.Alert, *room.Room) (string, error) {
	s.calls++
	return s.ticketID, s.err
}

func TestFanout_AllSinksCalled(t *testing.T) {
	a := &fanoutSink{err: errors.New("smtp down")}
	b := &fanoutSink{ticketID: "INC0012345"}

	fanout := NewFanout(zerolog.Nop(), a, b)
	ticketID, err := fanout.Notify(context.Background(), testAlert(), notifyRoom())

	assert.Error(t, err)
	assert.Equal(t, "INC0012345", ticketID)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestFanout_NoSinks(t *testing.T) {
	assert.Nil(t, NewFanout(zerolog.Nop()))
}
