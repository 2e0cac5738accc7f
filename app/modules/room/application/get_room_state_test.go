package roomservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
)

func TestGetRoomState(t *testing.T) {
	t.Run("returns the room and its players in join order", func(t *testing.T) {
		env := newTestEnv()
		room, players := env.seedRoom(roomtypes.RoomStatusInvestigation, 3)

		got, active, err := env.svc.GetRoomState(context.Background(), room.Code)
		require.NoError(t, err)

		assert.Equal(t, room.ID, got.ID)
		require.Len(t, active, 3)
		for i, p := range players {
			assert.Equal(t, p.ID, active[i].ID)
		}
	})

	t.Run("normalizes the code before lookup", func(t *testing.T) {
		env := newTestEnv()
		room, _ := env.seedRoom(roomtypes.RoomStatusLobby, 1)

		got, _, err := env.svc.GetRoomState(context.Background(), " abcd\n")
		require.NoError(t, err)
		assert.Equal(t, room.ID, got.ID)
	})

	t.Run("unknown code", func(t *testing.T) {
		env := newTestEnv()
		_, _, err := env.svc.GetRoomState(context.Background(), "ZZZZ")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}
