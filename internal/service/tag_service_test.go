package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/events"
)

const tagID = "5e1f0000-0000-4000-8000-000000000001"

func TestTagLifecycle(t *testing.T) {
	d := &recordingDispatcher{}
	repo := &fakeTagRepo{getByID: func(_ context.Context, id string) (*domain.Tag, error) {
		if id != tagID {
			return nil, pgx.ErrNoRows
		}
		return &domain.Tag{ID: tagID, Name: "smile", UsageCount: 7}, nil
	}}
	svc := NewTagService(repo, d, zap.NewNop())
	ctx := context.Background()

	tag, err := svc.Create(ctx, adminActor, "  Wink ")
	require.NoError(t, err)
	assert.Equal(t, "wink", tag.Name)

	renamed, err := svc.Rename(ctx, adminActor, tagID, "Grin")
	require.NoError(t, err)
	assert.Equal(t, "grin", renamed.Name)
	assert.Equal(t, int64(7), renamed.UsageCount)

	require.NoError(t, svc.Delete(ctx, adminActor, tagID))

	assert.Equal(t, []events.EventType{events.EventTagCreated, events.EventTagRenamed, events.EventTagDeleted}, d.types())
	assert.Equal(t, events.TagPayload{Name: "grin", OldName: "smile"}, d.published[1].Payload)
}

func TestTagErrors(t *testing.T) {
	repo := &fakeTagRepo{create: func(context.Context, *domain.Tag) error {
		return &pgconn.PgError{Code: "23505"}
	}}
	svc := NewTagService(repo, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, adminActor, "   ")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = svc.Create(ctx, adminActor, "smile")
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	_, err = svc.Rename(ctx, adminActor, tagID, "grin")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	err = svc.Delete(ctx, adminActor, "bogus")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
