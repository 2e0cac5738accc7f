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

func TestLeaveRoom(t *testing.T) {
	t.Run("removes the seat and announces the departure", func(t *testing.T) {
		env := newTestEnv()
		room, players := env.seedRoom(roomtypes.RoomStatusInvestigation, 3)

		err := env.svc.LeaveRoom(context.Background(), room.ID, players[1].ID)
		require.NoError(t, err)

		active, err := env.playerDB.ListActive(context.Background(), room.ID)
		require.NoError(t, err)
		assert.Len(t, active, 2)
		assert.Equal(t, 1, env.bus.topicCount(roomevents.PlayerLeft))
	})

	t.Run("leaving twice is a no-op", func(t *testing.T) {
		env := newTestEnv()
		room, players := env.seedRoom(roomtypes.RoomStatusInvestigation, 2)

		require.NoError(t, env.svc.LeaveRoom(context.Background(), room.ID, players[0].ID))
		require.NoError(t, env.svc.LeaveRoom(context.Background(), room.ID, players[0].ID))

		assert.Equal(t, 1, env.bus.topicCount(roomevents.PlayerLeft))
	})

	t.Run("the departed ballot stays on the row until the next tally", func(t *testing.T) {
		env := newTestEnv()
		room, players := env.seedRoom(roomtypes.RoomStatusInvestigation, 2)
		room.Votes = roomtypes.Votes{players[1].ID.String(): "s1"}
		env.roomDB.rooms[room.ID] = room

		require.NoError(t, env.svc.LeaveRoom(context.Background(), room.ID, players[1].ID))

		stored, err := env.roomDB.GetRoom(context.Background(), room.ID)
		require.NoError(t, err)
		assert.Contains(t, stored.Votes, players[1].ID.String())
	})

	t.Run("unknown room", func(t *testing.T) {
		env := newTestEnv()
		err := env.svc.LeaveRoom(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}
