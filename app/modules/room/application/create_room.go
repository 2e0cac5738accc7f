package roomservice

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"

	"github.com/katilkim/katilkim-server/app/modules/room/domain/casefile"
	roomevents "github.com/katilkim/katilkim-server/app/modules/room/domain/events"
	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
	roomdb "github.com/katilkim/katilkim-server/app/modules/room/infrastructure/repositories"
)

const (
	codeLength   = 4
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// codeAttempts bounds regeneration when a generated code collides with
	// an existing room. Uniqueness is enforced by the rooms.code constraint,
	// not by a pre-read, so two concurrent creators cannot both win.
	codeAttempts = 10
)

// CreateRoom opens a new session in LOBBY with the creator seated as host on
// the first detective slot. A custom case, when given, is attached immutably;
// rooms without one play the built-in case.
func (s *RoomService) CreateRoom(ctx context.Context, hostName string, customCase *casefile.Case) (*roomtypes.Room, *roomtypes.Player, error) {
	ctx, span := s.tracer.Start(ctx, "room.create")
	defer span.End()

	host := &roomtypes.Player{
		ID:       s.newID(),
		Name:     hostName,
		Role:     roomtypes.RoleDetectiveA,
		JoinedAt: s.now(),
	}

	var room *roomtypes.Room
	for attempt := 0; attempt < codeAttempts; attempt++ {
		candidate := &roomtypes.Room{
			ID:         s.newID(),
			Code:       generateJoinCode(),
			Status:     roomtypes.RoomStatusLobby,
			HostID:     host.ID,
			Votes:      roomtypes.Votes{},
			CustomCase: customCase,
			Version:    1,
			CreatedAt:  s.now(),
		}
		err := s.RoomDB.CreateRoom(ctx, candidate)
		if err == nil {
			room = candidate
			break
		}
		if errors.Is(err, roomdb.ErrDuplicateCode) {
			s.logger.Debug("Join code collision, regenerating",
				slog.String("code", candidate.Code),
				slog.Int("attempt", attempt+1),
			)
			continue
		}
		return nil, nil, storageError("create room", err)
	}
	if room == nil {
		return nil, nil, fmt.Errorf("create room: %w: could not find a free join code", ErrStorageUnavailable)
	}

	host.RoomID = room.ID
	if err := s.PlayerDB.CreatePlayer(ctx, host); err != nil {
		return nil, nil, storageError("create host player", err)
	}

	s.metrics.RoomsCreated.Inc()
	s.metrics.PlayersJoined.Inc()
	s.logger.Info("Room created",
		slog.String("room_id", room.ID.String()),
		slog.String("code", room.Code),
		slog.Bool("custom_case", customCase != nil),
	)

	s.publishEvent(roomevents.RoomCreated, room.Code, roomevents.Snapshot(room, []roomtypes.Player{*host}))
	s.publishEvent(roomevents.PlayerJoined, room.Code, roomevents.PlayerJoinedPayload{
		RoomID: room.ID,
		Code:   room.Code,
		Player: *host,
	})

	return room, host, nil
}

// generateJoinCode produces a short uppercase alphanumeric token. crypto/rand
// keeps codes unguessable enough that strangers cannot walk into a room.
func generateJoinCode() string {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}
