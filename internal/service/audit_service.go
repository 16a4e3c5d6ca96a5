package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/vrcface/server/internal/events"
	"github.com/vrcface/server/internal/saga"
)

// AuditService writes administrative actions and failed recoveries to the
// audit log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service. logger should be a dedicated named
// logger so audit lines can be routed separately.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, t := range []events.EventType{
		events.EventAccountRoleChanged,
		events.EventAccountUpdated,
		events.EventAccountDeleted,
		events.EventTagCreated,
		events.EventTagRenamed,
		events.EventTagDeleted,
		events.EventModelRemoved,
	} {
		a.dispatcher.Subscribe(t, a.handleAdminAction)
	}
	a.dispatcher.Subscribe(events.EventCompensationFailed, a.handleCompensationFailed)
}

func (a *AuditService) handleAdminAction(_ context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("actor_id", event.ActorID),
		zap.String("subject_id", event.SubjectID),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleCompensationFailed(_ context.Context, event events.Event) error {
	a.logger.Error("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}

// CompensationFailureHook publishes a saga's unrecovered steps as audit events.
func (a *AuditService) CompensationFailureHook() saga.FailureHook {
	return func(ctx context.Context, sagaName, step string, err error) {
		event := events.New(events.EventCompensationFailed, "", sagaName,
			events.CompensationFailedPayload{Saga: sagaName, Step: step, Error: err.Error()})
		if perr := a.dispatcher.Publish(ctx, event); perr != nil {
			a.logger.Warn("audit publish failed", zap.Error(perr))
		}
	}
}
