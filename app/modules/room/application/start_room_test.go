package roomservice

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	roomevents "github.com/katilkim/katilkim-server/app/modules/room/domain/events"
	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
)

func TestStartInvestigation(t *testing.T) {
	t.Run("host moves the lobby into investigation", func(t *testing.T) {
		env := newTestEnv()
		room, players := env.seedRoom(roomtypes.RoomStatusLobby, 2)

		got, err := env.svc.StartInvestigation(context.Background(), room.ID, players[0].ID)
		require.NoError(t, err)

		assert.Equal(t, roomtypes.RoomStatusInvestigation, got.Status)
		require.NotNil(t, got.StartedAt)
		assert.Equal(t, int64(2), got.Version)
		assert.Equal(t, 1, env.bus.topicCount(roomevents.RoomUpdated))
	})

	t.Run("non-host cannot start", func(t *testing.T) {
		env := newTestEnv()
		room, players := env.seedRoom(roomtypes.RoomStatusLobby, 2)

		_, err := env.svc.StartInvestigation(context.Background(), room.ID, players[1].ID)
		assert.ErrorIs(t, err, ErrNotHost)
	})

	t.Run("starting twice is rejected", func(t *testing.T) {
		env := newTestEnv()
		room, players := env.seedRoom(roomtypes.RoomStatusLobby, 2)

		_, err := env.svc.StartInvestigation(context.Background(), room.ID, players[0].ID)
		require.NoError(t, err)

		_, err = env.svc.StartInvestigation(context.Background(), room.ID, players[0].ID)
		assert.ErrorIs(t, err, ErrGameAlreadyStarted)
	})

	t.Run("starting a finished room is rejected", func(t *testing.T) {
		env := newTestEnv()
		room, players := env.seedRoom(roomtypes.RoomStatusFinished, 2)

		_, err := env.svc.StartInvestigation(context.Background(), room.ID, players[0].ID)
		assert.ErrorIs(t, err, ErrGameAlreadyFinished)
	})

	t.Run("a lost version race is retried from fresh state", func(t *testing.T) {
		env := newTestEnv()
		room, players := env.seedRoom(roomtypes.RoomStatusLobby, 2)
		env.roomDB.conflicts = 2

		got, err := env.svc.StartInvestigation(context.Background(), room.ID, players[0].ID)
		require.NoError(t, err)
		assert.Equal(t, roomtypes.RoomStatusInvestigation, got.Status)
	})

	t.Run("retry exhaustion surfaces as storage unavailable", func(t *testing.T) {
		env := newTestEnv()
		room, players := env.seedRoom(roomtypes.RoomStatusLobby, 2)
		env.roomDB.conflicts = maxWriteAttempts

		_, err := env.svc.StartInvestigation(context.Background(), room.ID, players[0].ID)
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})

	t.Run("unknown room", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.svc.StartInvestigation(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}
