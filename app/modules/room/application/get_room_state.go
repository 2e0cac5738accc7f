package roomservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
)

// GetRoomState returns the current room record and its seated players. It is
// the poll fallback behind the push channel: clients that miss a push converge
// by re-reading here, and the version on the returned room lets them discard
// anything older than what they already applied.
func (s *RoomService) GetRoomState(ctx context.Context, code string) (*roomtypes.Room, []roomtypes.Player, error) {
	ctx, span := s.tracer.Start(ctx, "room.get_state")
	defer span.End()

	room, err := s.RoomDB.GetRoomByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("get room state: %w", ErrRoomNotFound)
		}
		return nil, nil, storageError("get room state", err)
	}

	players, err := s.PlayerDB.ListActive(ctx, room.ID)
	if err != nil {
		return nil, nil, storageError("get room state", err)
	}

	return room, players, nil
}
