package service

import (
	"github.com/google/uuid"
	"github.com/veland/larder/larder-backend/internal/domain"
	"github.com/veland/larder/larder-backend/internal/websocket"
)

// ActivityService handles the per-space audit log
type ActivityService struct {
	activityRepo   domain.ActivityRepository
	eventPublisher websocket.EventPublisher
}

// NewActivityService creates a new ActivityService
func NewActivityService(activityRepo domain.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ActivityService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *ActivityService) publishEvent(spaceID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(spaceID, event)
	}
}

// Announce publishes an entry that was already persisted as part of a
// larger repository transaction.
func (s *ActivityService) Announce(activity *domain.Activity) {
	s.publishEvent(activity.SpaceID, websocket.NewEvent(websocket.EventTypeCreated, websocket.EntityTypeActivity, activity))
}

// Record appends one immutable entry to a space's log. The repository
// evicts entries beyond the per-space cap in the same transaction, so the
// log never exceeds domain.MaxActivitiesPerSpace.
func (s *ActivityService) Record(spaceID, actorID uuid.UUID, actorName string, activityType domain.ActivityType, payload map[string]string) (*domain.Activity, error) {
	if payload == nil {
		payload = map[string]string{}
	}
	activity := &domain.Activity{
		SpaceID:     spaceID,
		ActorUserID: actorID,
		ActorName:   actorName,
		Type:        activityType,
		Payload:     payload,
	}

	created, err := s.activityRepo.Create(activity)
	if err != nil {
		return nil, err
	}

	s.publishEvent(spaceID, websocket.NewEvent(websocket.EventTypeCreated, websocket.EntityTypeActivity, created))

	return created, nil
}

// RecordContent appends a content-layer entry (product or container events).
// Member events are produced internally and are rejected here.
func (s *ActivityService) RecordContent(spaceID, actorID uuid.UUID, actorName string, activityType domain.ActivityType, payload map[string]string) (*domain.Activity, error) {
	if !domain.ContentActivityTypes[activityType] {
		return nil, domain.ErrInvalidActivity
	}
	return s.Record(spaceID, actorID, actorName, activityType, payload)
}

// List returns a space's entries newest-first; limit <= 0 returns all
// retained entries. An unknown space yields an empty list, not an error.
func (s *ActivityService) List(spaceID uuid.UUID, limit int) ([]*domain.Activity, error) {
	return s.activityRepo.ListBySpace(spaceID, limit)
}
