package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/vrcface/server/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRoleChanged EventType = "account_role_changed"
	EventAccountUpdated     EventType = "account_updated"
	EventAccountDeleted     EventType = "account_deleted"
	EventTagCreated         EventType = "tag_created"
	EventTagRenamed         EventType = "tag_renamed"
	EventTagDeleted         EventType = "tag_deleted"
	EventModelRemoved       EventType = "model_removed"
	EventCompensationFailed EventType = "compensation_failed"
)

// Event represents an administrative or recovery action worth auditing.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id,omitempty"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, actorID, subjectID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// RoleChangedPayload payload.
type RoleChangedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}

// AccountDeletedPayload payload.
type AccountDeletedPayload struct {
	Username string `json:"username"`
}

// TagPayload payload.
type TagPayload struct {
	Name    string `json:"name"`
	OldName string `json:"old_name,omitempty"`
}

// ModelRemovedPayload payload.
type ModelRemovedPayload struct {
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
}

// CompensationFailedPayload payload.
type CompensationFailedPayload struct {
	Saga  string `json:"saga"`
	Step  string `json:"step"`
	Error string `json:"error"`
}
