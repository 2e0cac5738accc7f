package roomservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	roomevents "github.com/katilkim/katilkim-server/app/modules/room/domain/events"
	roomdb "github.com/katilkim/katilkim-server/app/modules/room/infrastructure/repositories"
	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
)

// StartInvestigation moves a LOBBY room to INVESTIGATION. Only the host may
// start; a second start is rejected against whichever phase the room is in by
// then. The write is guarded on the version read here, so a concurrent start
// (or a concurrent finish of some other kind) is re-read rather than clobbered.
func (s *RoomService) StartInvestigation(ctx context.Context, roomID, playerID uuid.UUID) (*roomtypes.Room, error) {
	ctx, span := s.tracer.Start(ctx, "room.start")
	defer span.End()

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		room, err := s.RoomDB.GetRoom(ctx, roomID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("start investigation: %w", ErrRoomNotFound)
			}
			return nil, storageError("start investigation", err)
		}

		if room.HostID != playerID {
			return nil, fmt.Errorf("start investigation: %w", ErrNotHost)
		}
		switch room.Status {
		case roomtypes.RoomStatusLobby:
		case roomtypes.RoomStatusFinished:
			return nil, fmt.Errorf("start investigation: %w", ErrGameAlreadyFinished)
		default:
			return nil, fmt.Errorf("start investigation: %w", ErrGameAlreadyStarted)
		}

		readVersion := room.Version
		startedAt := s.now()
		room.Status = roomtypes.RoomStatusInvestigation
		room.StartedAt = &startedAt

		err = s.RoomDB.UpdateRoomGuarded(ctx, room, readVersion)
		if errors.Is(err, roomdb.ErrVersionConflict) {
			s.metrics.VersionConflicts.Inc()
			s.logger.Debug("Start lost a version race, retrying",
				slog.String("room_id", roomID.String()),
				slog.Int("attempt", attempt+1),
			)
			continue
		}
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("start investigation: %w", ErrRoomNotFound)
			}
			return nil, storageError("start investigation", err)
		}

		s.logger.Info("Investigation started",
			slog.String("room_id", room.ID.String()),
			slog.String("code", room.Code),
			slog.Int64("version", room.Version),
		)

		players, err := s.PlayerDB.ListActive(ctx, room.ID)
		if err != nil {
			s.logger.Error("Failed to list players for start snapshot", slog.Any("error", err))
			players = nil
		}
		s.publishEvent(roomevents.RoomUpdated, room.Code, roomevents.Snapshot(room, players))

		return room, nil
	}

	return nil, fmt.Errorf("start investigation: %w: version conflict retries exhausted", ErrStorageUnavailable)
}
