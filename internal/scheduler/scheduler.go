// Package scheduler owns the background job table: the daily fleet health
// sweep, per-room test call crons, one-shot call teardowns and the weekly
// retention sweep.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/roomwatch/roomwatch/internal/config"
	"github.com/roomwatch/roomwatch/internal/room"
)

// Job ids for the fixed jobs. Per-room and per-call jobs derive their ids
// from the entity id, so re-registering is an idempotent replace.
const (
	jobDailyHealthChecks = "daily_health_checks"
	jobWeeklyCleanup     = "weekly_cleanup"
)

func testCallJobID(roomID string) string { return "test_call_room_" + roomID }
func teardownJobID(callID string) string { return "end_test_call_" + callID }

// HealthRunner runs one health check for a room.
type HealthRunner interface {
	CheckRoom(ctx context.Context, roomID string) error
}

// CallRunner starts and tears down test calls.
type CallRunner interface {
	StartCall(ctx context.Context, roomID string) error
	EndCall(ctx context.Context, callID string) error
}

// CleanupRunner runs the retention sweep.
type CleanupRunner interface {
	Sweep(ctx context.Context) error
}

// job is one entry in the job table. Cron-backed jobs carry an entry id,
// one-shots carry a timer; never both.
type job struct {
	entryID cron.EntryID
	timer   *time.Timer
	spec    string
}

// Scheduler maintains the job table. All jobs run in UTC.
//
// Runners are attached with Bind after construction so the call
// orchestrator can hold the scheduler for teardown scheduling without an
// initialization cycle.
type Scheduler struct {
	rooms    room.Repository
	schedule config.Schedule
	logger   zerolog.Logger

	health  HealthRunner
	calls   CallRunner
	cleanup CleanupRunner

	cron *cron.Cron

	mu   sync.Mutex
	jobs map[string]job
}

// New creates a scheduler. Call Bind and then Start before use.
func New(rooms room.Repository, schedule config.Schedule, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		rooms:    rooms,
		schedule: schedule,
		logger:   logger.With().Str("component", "scheduler").Logger(),
		cron:     cron.New(cron.WithLocation(time.UTC)),
		jobs:     make(map[string]job),
	}
}

// Bind attaches the job runners.
func (s *Scheduler) Bind(health HealthRunner, calls CallRunner, cleanup CleanupRunner) {
	s.health = health
	s.calls = calls
	s.cleanup = cleanup
}

// Start registers the fixed jobs, reconciles per-room jobs against the
// current fleet and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	daily := fmt.Sprintf("%d %d * * *", s.schedule.HealthCheckMinute, s.schedule.HealthCheckHour)
	if err := s.upsertCron(jobDailyHealthChecks, daily, s.runFleetSweep); err != nil {
		return fmt.Errorf("register daily health checks: %w", err)
	}

	weekly := fmt.Sprintf("%d %d * * %d", s.schedule.CleanupMinute, s.schedule.CleanupHour, int(s.schedule.CleanupDayOfWeek))
	if err := s.upsertCron(jobWeeklyCleanup, weekly, s.runCleanup); err != nil {
		return fmt.Errorf("register weekly cleanup: %w", err)
	}

	if err := s.Reconcile(ctx); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Str("daily_health_checks", daily).
		Str("weekly_cleanup", weekly).
		Msg("scheduler started")
	return nil
}

// Stop halts the cron loop and cancels every pending one-shot.
func (s *Scheduler) Stop() {
	s.cron.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, j := range s.jobs {
		if j.timer != nil {
			j.timer.Stop()
		}
		delete(s.jobs, id)
	}
	s.logger.Info().Msg("scheduler stopped")
}

// Reconcile aligns per-room test call jobs with the stored fleet: rooms
// with test calls enabled get a cron entry at their configured time, and
// jobs for rooms since disabled or deleted are removed.
func (s *Scheduler) Reconcile(ctx context.Context) error {
	rooms, err := s.rooms.ListTestCallEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list test call rooms: %w", err)
	}

	wanted := make(map[string]bool, len(rooms))
	for _, rm := range rooms {
		wanted[testCallJobID(rm.ID)] = true
		s.ReconcileRoom(rm)
	}

	s.mu.Lock()
	var stale []string
	for id := range s.jobs {
		if id == jobDailyHealthChecks || id == jobWeeklyCleanup {
			continue
		}
		if j := s.jobs[id]; j.timer != nil {
			continue // pending teardown, not room-derived
		}
		if !wanted[id] {
			stale = append(stale, id)
		}
	}
	s.mu.Unlock()

	for _, id := range stale {
		s.remove(id)
		s.logger.Info().Str("job_id", id).Msg("removed stale test call job")
	}
	return nil
}

// ReconcileRoom registers, replaces or removes the test call job for one
// room. A room with an unparseable test call time keeps no job.
func (s *Scheduler) ReconcileRoom(rm *room.Room) {
	id := testCallJobID(rm.ID)

	if !rm.TestCallEnabled {
		s.remove(id)
		return
	}

	hour, minute, err := config.ParseTimeOfDay(rm.TestCallTime)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("room_id", rm.ID).
			Str("test_call_time", rm.TestCallTime).
			Msg("invalid test call time, skipping schedule")
		s.remove(id)
		return
	}

	roomID := rm.ID
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	if err := s.upsertCron(id, spec, func() { s.runTestCall(roomID) }); err != nil {
		s.logger.Error().Err(err).Str("room_id", rm.ID).Msg("failed to schedule test call")
	}
}

// RemoveRoom drops the test call job for a deleted room.
func (s *Scheduler) RemoveRoom(roomID string) {
	s.remove(testCallJobID(roomID))
}

// ScheduleTeardown arms the one-shot teardown for a call. Re-arming the
// same call id replaces the pending timer, so at most one teardown fires
// per call.
func (s *Scheduler) ScheduleTeardown(callID string, delay time.Duration) {
	id := teardownJobID(callID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)

	timer := time.AfterFunc(delay, func() {
		s.remove(id)
		if err := s.calls.EndCall(context.Background(), callID); err != nil {
			s.logger.Error().Err(err).Str("call_id", callID).Msg("test call teardown failed")
		}
	})
	s.jobs[id] = job{timer: timer, spec: fmt.Sprintf("once +%s", delay)}
}

// Jobs returns the registered job ids, sorted.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// runFleetSweep checks every health-check-enabled room sequentially. A
// failing room never stops the sweep.
func (s *Scheduler) runFleetSweep() {
	ctx := context.Background()
	rooms, err := s.rooms.ListHealthCheckEnabled(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("fleet sweep: failed to list rooms")
		return
	}

	s.logger.Info().Int("rooms", len(rooms)).Msg("fleet health sweep starting")
	failed := 0
	for _, rm := range rooms {
		if err := s.health.CheckRoom(ctx, rm.ID); err != nil {
			failed++
			s.logger.Error().Err(err).Str("room_id", rm.ID).Msg("fleet sweep: health check failed")
		}
	}
	s.logger.Info().
		Int("rooms", len(rooms)).
		Int("failed", failed).
		Msg("fleet health sweep finished")
}

func (s *Scheduler) runTestCall(roomID string) {
	if err := s.calls.StartCall(context.Background(), roomID); err != nil {
		s.logger.Error().Err(err).Str("room_id", roomID).Msg("scheduled test call failed")
	}
}

func (s *Scheduler) runCleanup() {
	if err := s.cleanup.Sweep(context.Background()); err != nil {
		s.logger.Error().Err(err).Msg("retention sweep failed")
	}
}

// upsertCron registers a cron entry under the id, replacing any existing
// job with that id.
func (s *Scheduler) upsertCron(id, spec string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)

	entryID, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		return err
	}
	s.jobs[id] = job{entryID: entryID, spec: spec}
	return nil
}

func (s *Scheduler) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Scheduler) removeLocked(id string) {
	j, ok := s.jobs[id]
	if !ok {
		return
	}
	if j.timer != nil {
		j.timer.Stop()
	}
	if j.entryID != 0 {
		s.cron.Remove(j.entryID)
	}
	delete(s.jobs, id)
}
