package room

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roomwatch/roomwatch/internal/config"
)

// ChildPurger removes records that belong to a room. Rooms must not be
// deleted while dependent health checks, test calls or alerts still
// reference them.
type ChildPurger interface {
	DeleteByRoom(ctx context.Context, roomID string) error
}

// ValidationError describes an invalid room field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Service provides room configuration operations.
type Service struct {
	repo     Repository
	children []ChildPurger
}

// NewService creates a new room service. The purgers are invoked, in order,
// before a room row is deleted.
func NewService(repo Repository, children ...ChildPurger) *Service {
	return &Service{repo: repo, children: children}
}

// Input carries the operator-editable room fields.
type Input struct {
	Name               string
	Location           *string
	IPAddress          *string
	WebexRoomID        *string
	DeviceType         *string
	HealthCheckEnabled bool
	TestCallEnabled    bool
	TestCallTime       string
}

func (in *Input) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if len(in.Name) > 100 {
		return &ValidationError{Field: "name", Message: "must be at most 100 characters"}
	}
	if in.TestCallTime != "" {
		if _, _, err := config.ParseTimeOfDay(in.TestCallTime); err != nil {
			return &ValidationError{Field: "test_call_time", Message: "must be HH:MM 24h"}
		}
	}
	return nil
}

// Get retrieves a room by ID.
func (s *Service) Get(ctx context.Context, id string) (*Room, error) {
	return s.repo.Get(ctx, id)
}

// List retrieves rooms ordered by name.
func (s *Service) List(ctx context.Context, limit int) (*ListResult, error) {
	return s.repo.List(ctx, ListOptions{Limit: limit})
}

// Create creates a new room in the unknown status.
func (s *Service) Create(ctx context.Context, in *Input) (*Room, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	testCallTime := in.TestCallTime
	if testCallTime == "" {
		testCallTime = "07:00"
	}

	rm := &Room{
		ID:                 "rm_" + uuid.NewString(),
		Name:               in.Name,
		Location:           in.Location,
		IPAddress:          in.IPAddress,
		WebexRoomID:        in.WebexRoomID,
		DeviceType:         in.DeviceType,
		Status:             StatusUnknown,
		HealthCheckEnabled: in.HealthCheckEnabled,
		TestCallEnabled:    in.TestCallEnabled,
		TestCallTime:       testCallTime,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, rm); err != nil {
		return nil, err
	}

	return rm, nil
}

// Update replaces the operator-editable fields of a room.
func (s *Service) Update(ctx context.Context, id string, in *Input) (*Room, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	rm, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rm.Name = in.Name
	rm.Location = in.Location
	rm.IPAddress = in.IPAddress
	rm.WebexRoomID = in.WebexRoomID
	rm.DeviceType = in.DeviceType
	rm.HealthCheckEnabled = in.HealthCheckEnabled
	rm.TestCallEnabled = in.TestCallEnabled
	if in.TestCallTime != "" {
		rm.TestCallTime = in.TestCallTime
	}
	rm.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, rm); err != nil {
		return nil, err
	}

	return rm, nil
}

// Delete removes a room and all records that reference it. Children are
// purged first so no orphan rows are ever visible.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	for _, c := range s.children {
		if err := c.DeleteByRoom(ctx, id); err != nil {
			return fmt.Errorf("purge room records: %w", err)
		}
	}

	return s.repo.Delete(ctx, id)
}
