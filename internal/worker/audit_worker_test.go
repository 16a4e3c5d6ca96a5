package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vrcface/server/internal/events"
	"github.com/vrcface/server/internal/service"
)

func TestStartAuditWorker(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	StartAuditWorker(service.NewAuditService(dispatcher, zap.New(core)))

	err := dispatcher.Publish(context.Background(), events.New(events.EventTagDeleted, "admin-1", "tag-1",
		events.TagPayload{Name: "blink"}))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("audit").Len())
}

func TestStartAuditWorkerNil(t *testing.T) {
	assert.NotPanics(t, func() { StartAuditWorker(nil) })
}
