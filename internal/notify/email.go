package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/roomwatch/roomwatch/internal/alert"
	"github.com/roomwatch/roomwatch/internal/room"
)

// EmailSink sends one plain-text email per alert to the admin list.
type EmailSink struct {
	addr string
	from string
	to   []string

	// send is replaceable in tests.
	send func(addr, from string, to []string, msg []byte) error
}

var _ alert.Notifier = (*EmailSink)(nil)

// NewEmailSink creates an SMTP-backed sink. addr is host:port.
func NewEmailSink(addr, from string, to []string) *EmailSink {
	return &EmailSink{
		addr: addr,
		from: from,
		to:   to,
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

// Notify sends the alert email. Email carries no ticket system, so the
// returned ticket id is always empty.
func (s *EmailSink) Notify(ctx context.Context, a *alert.Alert, rm *room.Room) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(s.to, ", "))
	fmt.Fprintf(&b, "Subject: [VC Monitoring] %s\r\n", a.Title)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Room: %s\r\n", rm.Name)
	if rm.Location != nil {
		fmt.Fprintf(&b, "Location: %s\r\n", *rm.Location)
	}
	fmt.Fprintf(&b, "Severity: %s\r\n", a.Severity)
	fmt.Fprintf(&b, "Time: %s\r\n", a.CreatedAt.Format("2006-01-02 15:04:05 UTC"))
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "%s\r\n", a.Description)

	if err := s.send(s.addr, s.from, s.to, []byte(b.String())); err != nil {
		return "", fmt.Errorf("send alert email: %w", err)
	}
	return "", nil
}
