package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomwatch/roomwatch/internal/config"
	"github.com/roomwatch/roomwatch/internal/room"
)

type stubHealth struct {
	checked []string
	failOn  string
}

func (s *stubHealth) CheckRoom(_ context.Context, roomID string) error {
	s.checked = append(s.checked, roomID)
	if roomID == s.failOn {
		return errors.New("probe failed")
	}
	return nil
}

type stubCalls struct {
	started []string
	ended   chan string
}

func (s *stubCalls) StartCall(_ context.Context, roomID string) error {
	s.started = append(s.started, roomID)
	return nil
}

func (s *stubCalls) EndCall(_ context.Context, callID string) error {
	if s.ended != nil {
		s.ended <- callID
	}
	return nil
}

type stubCleanup struct{ swept int }

func (s *stubCleanup) Sweep(context.Context) error {
	s.swept++
	return nil
}

func newScheduler(t *testing.T) (*Scheduler, *room.InMemoryRepository, *stubHealth, *stubCalls) {
	t.Helper()
	rooms := room.NewInMemoryRepository()
	s := New(rooms, config.Default().Schedule, zerolog.Nop())
	health := &stubHealth{}
	calls := &stubCalls{}
	s.Bind(health, calls, &stubCleanup{})
	t.Cleanup(s.Stop)
	return s, rooms, health, calls
}

func addRoom(t *testing.T, rooms *room.InMemoryRepository, rm *room.Room) *room.Room {
	t.Helper()
	if err := rooms.Create(context.Background(), rm); err != nil {
		t.Fatalf("create room: %v", err)
	}
	return rm
}

func hasJob(s *Scheduler, id string) bool {
	for _, j := range s.Jobs() {
		if j == id {
			return true
		}
	}
	return false
}

func TestStart_RegistersFixedJobs(t *testing.T) {
	s, _, _, _ := newScheduler(t)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if !hasJob(s, "daily_health_checks") {
		t.Error("daily_health_checks not registered")
	}
	if !hasJob(s, "weekly_cleanup") {
		t.Error("weekly_cleanup not registered")
	}
}

func TestStart_SchedulesEnabledRooms(t *testing.T) {
	s, rooms, _, _ := newScheduler(t)
	addRoom(t, rooms, &room.Room{ID: "rm_1", Name: "A", TestCallEnabled: true, TestCallTime: "07:00"})
	addRoom(t, rooms, &room.Room{ID: "rm_2", Name: "B", TestCallEnabled: false, TestCallTime: "07:00"})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if !hasJob(s, "test_call_room_rm_1") {
		t.Error("enabled room has no job")
	}
	if hasJob(s, "test_call_room_rm_2") {
		t.Error("disabled room must not have a job")
	}
}

func TestReconcileRoom_InvalidTimeRemovesJob(t *testing.T) {
	s, _, _, _ := newScheduler(t)

	rm := &room.Room{ID: "rm_1", Name: "A", TestCallEnabled: true, TestCallTime: "07:00"}
	s.ReconcileRoom(rm)
	if !hasJob(s, "test_call_room_rm_1") {
		t.Fatal("job not registered")
	}

	rm.TestCallTime = "26:00"
	s.ReconcileRoom(rm)
	if hasJob(s, "test_call_room_rm_1") {
		t.Error("job must be dropped when the time is unparseable")
	}
}

func TestReconcileRoom_DisableThenEnable(t *testing.T) {
	s, _, _, _ := newScheduler(t)

	rm := &room.Room{ID: "rm_1", Name: "A", TestCallEnabled: true, TestCallTime: "07:00"}
	s.ReconcileRoom(rm)

	rm.TestCallEnabled = false
	s.ReconcileRoom(rm)
	if hasJob(s, "test_call_room_rm_1") {
		t.Error("job must be removed when test calls are disabled")
	}

	rm.TestCallEnabled = true
	s.ReconcileRoom(rm)
	if !hasJob(s, "test_call_room_rm_1") {
		t.Error("job must be restored when test calls are re-enabled")
	}
}

func TestReconcile_RemovesStaleJobs(t *testing.T) {
	s, rooms, _, _ := newScheduler(t)
	rm := addRoom(t, rooms, &room.Room{ID: "rm_1", Name: "A", TestCallEnabled: true, TestCallTime: "07:00"})

	if err := s.Reconcile(context.Background()); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !hasJob(s, "test_call_room_rm_1") {
		t.Fatal("job not registered")
	}

	rm.TestCallEnabled = false
	if err := rooms.Update(context.Background(), rm); err != nil {
		t.Fatalf("update room: %v", err)
	}

	if err := s.Reconcile(context.Background()); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if hasJob(s, "test_call_room_rm_1") {
		t.Error("stale job must be removed on reconcile")
	}
}

func TestScheduleTeardown_ReplacesPendingJob(t *testing.T) {
	s, _, _, _ := newScheduler(t)

	s.ScheduleTeardown("tc_1", time.Hour)
	s.ScheduleTeardown("tc_1", time.Hour)

	count := 0
	for _, id := range s.Jobs() {
		if id == "end_test_call_tc_1" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("teardown jobs for tc_1 = %d, want 1", count)
	}
}

func TestScheduleTeardown_FiresOnce(t *testing.T) {
	s, _, _, calls := newScheduler(t)
	calls.ended = make(chan string, 2)

	// Rescheduling replaces the pending timer, so only one firing happens.
	s.ScheduleTeardown("tc_1", 50*time.Millisecond)
	s.ScheduleTeardown("tc_1", 10*time.Millisecond)

	select {
	case id := <-calls.ended:
		if id != "tc_1" {
			t.Errorf("ended call = %q, want tc_1", id)
		}
	case <-time.After(time.Second):
		t.Fatal("teardown never fired")
	}

	select {
	case id := <-calls.ended:
		t.Errorf("teardown fired twice: %q", id)
	case <-time.After(100 * time.Millisecond):
	}

	if hasJob(s, "end_test_call_tc_1") {
		t.Error("fired teardown must leave the job table")
	}
}

func TestFleetSweep_IsolatesFailures(t *testing.T) {
	s, rooms, health, _ := newScheduler(t)
	health.failOn = "rm_1"
	addRoom(t, rooms, &room.Room{ID: "rm_1", Name: "A", HealthCheckEnabled: true})
	addRoom(t, rooms, &room.Room{ID: "rm_2", Name: "B", HealthCheckEnabled: true})
	addRoom(t, rooms, &room.Room{ID: "rm_3", Name: "C", HealthCheckEnabled: false})

	s.runFleetSweep()

	if len(health.checked) != 2 {
		t.Fatalf("rooms checked = %v, want the two enabled rooms", health.checked)
	}
}

func TestStop_CancelsPendingTeardowns(t *testing.T) {
	s, _, _, calls := newScheduler(t)
	calls.ended = make(chan string, 1)

	s.ScheduleTeardown("tc_1", 20*time.Millisecond)
	s.Stop()

	select {
	case id := <-calls.ended:
		t.Errorf("teardown fired after Stop: %q", id)
	case <-time.After(100 * time.Millisecond):
	}
	if len(s.Jobs()) != 0 {
		t.Errorf("jobs after Stop = %v, want none", s.Jobs())
	}
}
