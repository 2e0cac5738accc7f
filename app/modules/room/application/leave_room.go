package roomservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	roomevents "github.com/katilkim/katilkim-server/app/modules/room/domain/events"
)

// LeaveRoom removes a player's seat. Deleting the row is the whole operation:
// activity is defined by row existence, so the consensus denominator shrinks
// the moment the delete commits and any ballot the player held becomes a ghost
// vote that the next tally filters out. Leaving twice is a no-op.
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, playerID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "room.leave")
	defer span.End()

	room, err := s.RoomDB.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("leave room: %w", ErrRoomNotFound)
		}
		return storageError("leave room", err)
	}

	removed, err := s.PlayerDB.RemovePlayer(ctx, roomID, playerID)
	if err != nil {
		return storageError("leave room", err)
	}
	if !removed {
		return nil
	}

	s.metrics.PlayersLeft.Inc()
	s.logger.Info("Player left",
		slog.String("room_id", roomID.String()),
		slog.String("player_id", playerID.String()),
	)

	s.publishEvent(roomevents.PlayerLeft, room.Code, roomevents.PlayerLeftPayload{
		RoomID:   roomID,
		Code:     room.Code,
		PlayerID: playerID,
	})

	return nil
}
