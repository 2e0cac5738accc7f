package roomservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	roomevents "github.com/katilkim/katilkim-server/app/modules/room/domain/events"
	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
)

// JoinRoom seats a player in a LOBBY room. The seat count is re-checked at
// insert time against the current player rows; a room that started or filled
// up between the caller reading the lobby and submitting the join is rejected.
func (s *RoomService) JoinRoom(ctx context.Context, code, playerName string) (*roomtypes.Room, *roomtypes.Player, error) {
	ctx, span := s.tracer.Start(ctx, "room.join")
	defer span.End()

	room, err := s.RoomDB.GetRoomByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("join room: %w", ErrRoomNotFound)
		}
		return nil, nil, storageError("join room", err)
	}

	switch room.Status {
	case roomtypes.RoomStatusLobby:
	case roomtypes.RoomStatusFinished:
		return nil, nil, fmt.Errorf("join room %s: %w", room.Code, ErrGameAlreadyFinished)
	default:
		return nil, nil, fmt.Errorf("join room %s: %w", room.Code, ErrGameAlreadyStarted)
	}

	active, err := s.PlayerDB.ListActive(ctx, room.ID)
	if err != nil {
		return nil, nil, storageError("join room", err)
	}
	if len(active) >= roomtypes.RoomCapacity {
		return nil, nil, fmt.Errorf("join room %s: %w", room.Code, ErrCapacityExceeded)
	}

	player := &roomtypes.Player{
		ID:       s.newID(),
		RoomID:   room.ID,
		Name:     playerName,
		Role:     balanceRole(active),
		JoinedAt: s.now(),
	}
	if err := s.PlayerDB.CreatePlayer(ctx, player); err != nil {
		return nil, nil, storageError("join room", err)
	}

	s.metrics.PlayersJoined.Inc()
	s.logger.Info("Player joined",
		slog.String("room_id", room.ID.String()),
		slog.String("code", room.Code),
		slog.String("player_id", player.ID.String()),
		slog.String("role", string(player.Role)),
	)

	s.publishEvent(roomevents.PlayerJoined, room.Code, roomevents.PlayerJoinedPayload{
		RoomID: room.ID,
		Code:   room.Code,
		Player: *player,
	})

	return room, player, nil
}

// balanceRole assigns the less occupied detective slot; a tie goes to slot A
// so the first two players always end up on opposite sides of the case.
func balanceRole(active []roomtypes.Player) roomtypes.Role {
	var a, b int
	for _, p := range active {
		if p.Role == roomtypes.RoleDetectiveA {
			a++
		} else {
			b++
		}
	}
	if b < a {
		return roomtypes.RoleDetectiveB
	}
	return roomtypes.RoleDetectiveA
}
