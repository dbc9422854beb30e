package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-settings/pkg/activity"
	"github.com/goliatone/go-settings/pkg/activity/usersink"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()

	event := activity.PersistEvent("myapp", "/home/me/myapp-1a2b-3c4d.cfg", true, 2, nil)
	event.ActorID = actorID.String()
	event.UserID = "not-a-uuid"
	event.TenantID = tenantID.String()
	event.Channel = "settings"
	event.DefinitionCode = "settings:save"
	event.Recipients = []string{"ops@example.com"}
	event.OccurredAt = now

	require.NoError(t, hook.Notify(context.Background(), event))
	require.Len(t, sink.records, 1)

	record := sink.records[0]
	assert.Equal(t, actorID, record.ActorID)
	assert.Equal(t, uuid.Nil, record.UserID)
	assert.Equal(t, tenantID, record.TenantID)
	assert.Equal(t, activity.VerbSaved, record.Verb)
	assert.Equal(t, activity.ObjectType, record.ObjectType)
	assert.Equal(t, "myapp", record.ObjectID)
	assert.Equal(t, "settings", record.Channel)
	assert.Equal(t, now, record.OccurredAt)
	assert.Equal(t, "/home/me/myapp-1a2b-3c4d.cfg", record.Data["path"])
	assert.Equal(t, "settings:save", record.Data["definition_code"])
	assert.Equal(t, []string{"ops@example.com"}, record.Data["recipients"])
}

func TestHookNotifySkipsInvalidEvents(t *testing.T) {
	sink := &recordingSink{}
	require.NoError(t, usersink.Hook{Sink: sink}.Notify(context.Background(), activity.Event{}))
	assert.Empty(t, sink.records)

	require.NoError(t, usersink.Hook{}.Notify(context.Background(), activity.KeyEvent("myapp", "a", false)))
}

func TestHookNotifyDefaultsTimestampAndPropagatesErrors(t *testing.T) {
	boom := errors.New("sink down")
	sink := &recordingSink{err: boom}

	err := usersink.Hook{Sink: sink}.Notify(context.Background(), activity.KeyEvent("myapp", "theme", true))
	assert.ErrorIs(t, err, boom)
	require.Len(t, sink.records, 1)
	assert.False(t, sink.records[0].OccurredAt.IsZero())
	assert.Equal(t, activity.VerbDeleted, sink.records[0].Verb)
	assert.Equal(t, "theme", sink.records[0].Data["key"])
}
