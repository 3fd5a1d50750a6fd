package health

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomwatch/roomwatch/internal/alert"
	"github.com/roomwatch/roomwatch/internal/monitoring"
	"github.com/roomwatch/roomwatch/internal/probe"
	"github.com/roomwatch/roomwatch/internal/room"
	"github.com/roomwatch/roomwatch/internal/roomos"
	"github.com/roomwatch/roomwatch/internal/webex"
)

type fakeDirect struct {
	status *roomos.DeviceStatus
	err    error
}

func (f *fakeDirect) GetStatus(context.Context) (*roomos.DeviceStatus, error) {
	return f.status, f.err
}

type fakeCloud struct {
	status *webex.DeviceStatus
	err    error
}

func (f *fakeCloud) GetDeviceStatus(context.Context, string) (*webex.DeviceStatus, error) {
	return f.status, f.err
}

type raisedAlert struct {
	typ         alert.Type
	severity    alert.Severity
	title       string
	description string
}

type alertRecorder struct {
	raised []raisedAlert
}

func (r *alertRecorder) Raise(_ context.Context, _ *room.Room, typ alert.Type, severity alert.Severity, title, description string) (*alert.Alert, error) {
	r.raised = append(r.raised, raisedAlert{typ: typ, severity: severity, title: title, description: description})
	return &alert.Alert{}, nil
}

type fixture struct {
	rooms  *room.InMemoryRepository
	checks *monitoring.InMemoryHealthCheckRepository
	alerts *alertRecorder
	assess *Assessor
}

func newFixture(t *testing.T, direct *fakeDirect, cloud *fakeCloud) *fixture {
	t.Helper()
	rooms := room.NewInMemoryRepository()
	checks := monitoring.NewInMemoryHealthCheckRepository()
	alerts := &alertRecorder{}

	var cloudProber probe.CloudProber
	if cloud != nil {
		cloudProber = cloud
	}
	selector := probe.NewSelector(
		func(string) probe.DirectProber { return direct },
		cloudProber,
	)

	return &fixture{
		rooms:  rooms,
		checks: checks,
		alerts: alerts,
		assess: NewAssessor(rooms, checks, selector, alerts, zerolog.Nop()),
	}
}

func (f *fixture) addRoom(t *testing.T, rm *room.Room) *room.Room {
	t.Helper()
	rm.CreatedAt = time.Now().UTC()
	rm.UpdatedAt = rm.CreatedAt
	if err := f.rooms.Create(context.Background(), rm); err != nil {
		t.Fatalf("create room: %v", err)
	}
	return rm
}

func strptr(s string) *string { return &s }

func TestCheck_UnconfiguredRoom(t *testing.T) {
	f := newFixture(t, &fakeDirect{}, nil)
	rm := f.addRoom(t, &room.Room{ID: "rm_1", Name: "Boardroom"})

	hc, err := f.assess.Check(context.Background(), rm.ID)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if hc.Status != monitoring.VerdictFail {
		t.Errorf("verdict = %q, want fail", hc.Status)
	}
	if hc.ErrorMessage == nil || *hc.ErrorMessage != "not configured" {
		t.Errorf("error message = %v, want %q", hc.ErrorMessage, "not configured")
	}

	stored, err := f.rooms.Get(context.Background(), rm.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if stored.Status != room.StatusError {
		t.Errorf("room status = %q, want error", stored.Status)
	}
	if stored.LastHealthCheck == nil {
		t.Error("last health check not recorded")
	}

	if len(f.alerts.raised) != 1 {
		t.Fatalf("alerts raised = %d, want 1", len(f.alerts.raised))
	}
	got := f.alerts.raised[0]
	if got.typ != alert.TypeHealthCheckFail || got.severity != alert.SeverityHigh {
		t.Errorf("alert = %s/%s, want health_check_fail/high", got.typ, got.severity)
	}
	if got.title != "Health Check Failed - Boardroom" {
		t.Errorf("title = %q", got.title)
	}
	if !strings.Contains(got.description, "not configured") {
		t.Errorf("description = %q, want the probe error included", got.description)
	}
}

func TestCheck_DirectAllPeripheralsConnected(t *testing.T) {
	f := newFixture(t, &fakeDirect{status: &roomos.DeviceStatus{
		Online:           true,
		CameraStatus:     "connected",
		MicrophoneStatus: "connected",
		SpeakerStatus:    "connected",
		SoftwareVersion:  "RoomOS 11.5",
	}}, nil)
	rm := f.addRoom(t, &room.Room{ID: "rm_1", Name: "Boardroom", IPAddress: strptr("10.0.0.5")})

	hc, err := f.assess.Check(context.Background(), rm.ID)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if hc.Status != monitoring.VerdictPass {
		t.Errorf("verdict = %q, want pass", hc.Status)
	}
	if hc.SoftwareVersion == nil || *hc.SoftwareVersion != "RoomOS 11.5" {
		t.Errorf("software version = %v", hc.SoftwareVersion)
	}

	stored, _ := f.rooms.Get(context.Background(), rm.ID)
	if stored.Status != room.StatusOnline {
		t.Errorf("room status = %q, want online", stored.Status)
	}
	if len(f.alerts.raised) != 0 {
		t.Errorf("alerts raised = %d, want 0", len(f.alerts.raised))
	}
}

func TestCheck_DirectPeripheralDisconnected(t *testing.T) {
	f := newFixture(t, &fakeDirect{status: &roomos.DeviceStatus{
		Online:           true,
		CameraStatus:     "connected",
		MicrophoneStatus: "disconnected",
		SpeakerStatus:    "connected",
	}}, nil)
	rm := f.addRoom(t, &room.Room{ID: "rm_1", Name: "Boardroom", IPAddress: strptr("10.0.0.5")})

	hc, err := f.assess.Check(context.Background(), rm.ID)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if hc.Status != monitoring.VerdictWarning {
		t.Errorf("verdict = %q, want warning", hc.Status)
	}
	stored, _ := f.rooms.Get(context.Background(), rm.ID)
	if stored.Status != room.StatusWarning {
		t.Errorf("room status = %q, want warning", stored.Status)
	}
	if len(f.alerts.raised) != 0 {
		t.Errorf("warning must not raise an alert, got %d", len(f.alerts.raised))
	}
}

func TestCheck_DirectDeviceOffline(t *testing.T) {
	f := newFixture(t, &fakeDirect{status: &roomos.DeviceStatus{Online: false}}, nil)
	rm := f.addRoom(t, &room.Room{ID: "rm_1", Name: "Boardroom", IPAddress: strptr("10.0.0.5")})

	hc, err := f.assess.Check(context.Background(), rm.ID)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if hc.Status != monitoring.VerdictFail {
		t.Errorf("verdict = %q, want fail", hc.Status)
	}
	stored, _ := f.rooms.Get(context.Background(), rm.ID)
	if stored.Status != room.StatusOffline {
		t.Errorf("room status = %q, want offline", stored.Status)
	}

	if len(f.alerts.raised) != 1 {
		t.Fatalf("alerts raised = %d, want 1", len(f.alerts.raised))
	}
	if !strings.Contains(f.alerts.raised[0].description, "Device offline or unreachable") {
		t.Errorf("description = %q", f.alerts.raised[0].description)
	}
}

// The direct probe reads reachability through the real device client: a
// dead address must land in the offline branch, not the error branch.
func TestCheck_DirectDeviceUnreachable(t *testing.T) {
	rooms := room.NewInMemoryRepository()
	checks := monitoring.NewInMemoryHealthCheckRepository()
	alerts := &alertRecorder{}

	selector := probe.NewSelector(func(address string) probe.DirectProber {
		return roomos.NewClient(roomos.ClientConfig{
			Address: address,
			Timeout: 2 * time.Second,
			Logger:  zerolog.Nop(),
		})
	}, nil)
	assess := NewAssessor(rooms, checks, selector, alerts, zerolog.Nop())

	// The discard port refuses connections.
	rm := &room.Room{ID: "rm_1", Name: "Boardroom", IPAddress: strptr("127.0.0.1:9")}
	rm.CreatedAt = time.Now().UTC()
	rm.UpdatedAt = rm.CreatedAt
	if err := rooms.Create(context.Background(), rm); err != nil {
		t.Fatalf("create room: %v", err)
	}

	hc, err := assess.Check(context.Background(), rm.ID)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if hc.Status != monitoring.VerdictFail {
		t.Errorf("verdict = %q, want fail", hc.Status)
	}
	if hc.DeviceOnline {
		t.Error("device must read as offline")
	}
	if hc.ErrorMessage != nil {
		t.Errorf("error message = %q, want none for a plain unreachable device", *hc.ErrorMessage)
	}

	stored, _ := rooms.Get(context.Background(), rm.ID)
	if stored.Status != room.StatusOffline {
		t.Errorf("room status = %q, want offline", stored.Status)
	}

	if len(alerts.raised) != 1 {
		t.Fatalf("alerts raised = %d, want 1", len(alerts.raised))
	}
	if !strings.Contains(alerts.raised[0].description, "Device offline or unreachable") {
		t.Errorf("description = %q", alerts.raised[0].description)
	}
}

func TestCheck_DirectProbeError(t *testing.T) {
	f := newFixture(t, &fakeDirect{err: errors.New("device returned status 401")}, nil)
	rm := f.addRoom(t, &room.Room{ID: "rm_1", Name: "Boardroom", IPAddress: strptr("10.0.0.5")})

	hc, err := f.assess.Check(context.Background(), rm.ID)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if hc.Status != monitoring.VerdictFail {
		t.Errorf("verdict = %q, want fail", hc.Status)
	}
	if hc.ErrorMessage == nil || *hc.ErrorMessage != "device returned status 401" {
		t.Errorf("error message = %v, want the probe error verbatim", hc.ErrorMessage)
	}
	stored, _ := f.rooms.Get(context.Background(), rm.ID)
	if stored.Status != room.StatusError {
		t.Errorf("room status = %q, want error", stored.Status)
	}
}

func TestCheck_CloudConnected(t *testing.T) {
	f := newFixture(t, &fakeDirect{}, &fakeCloud{status: &webex.DeviceStatus{ConnectionStatus: "connected", Software: "RoomOS 11.5"}})
	rm := f.addRoom(t, &room.Room{ID: "rm_1", Name: "Boardroom", WebexRoomID: strptr("dev-123")})

	hc, err := f.assess.Check(context.Background(), rm.ID)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if hc.Status != monitoring.VerdictPass {
		t.Errorf("verdict = %q, want pass", hc.Status)
	}
	if !hc.DeviceOnline {
		t.Error("device should be online")
	}
	stored, _ := f.rooms.Get(context.Background(), rm.ID)
	if stored.Status != room.StatusOnline {
		t.Errorf("room status = %q, want online", stored.Status)
	}
}

func TestCheck_CloudDisconnected(t *testing.T) {
	f := newFixture(t, &fakeDirect{}, &fakeCloud{status: &webex.DeviceStatus{ConnectionStatus: "disconnected"}})
	rm := f.addRoom(t, &room.Room{ID: "rm_1", Name: "Boardroom", WebexRoomID: strptr("dev-123")})

	hc, err := f.assess.Check(context.Background(), rm.ID)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}

	if hc.Status != monitoring.VerdictFail {
		t.Errorf("verdict = %q, want fail", hc.Status)
	}
	stored, _ := f.rooms.Get(context.Background(), rm.ID)
	if stored.Status != room.StatusOffline {
		t.Errorf("room status = %q, want offline", stored.Status)
	}
	if len(f.alerts.raised) != 1 {
		t.Errorf("alerts raised = %d, want 1", len(f.alerts.raised))
	}
}

func TestCheck_RoomNotFound(t *testing.T) {
	f := newFixture(t, &fakeDirect{}, nil)

	_, err := f.assess.Check(context.Background(), "rm_missing")
	if !errors.Is(err, room.ErrRoomNotFound) {
		t.Errorf("err = %v, want ErrRoomNotFound", err)
	}
}
