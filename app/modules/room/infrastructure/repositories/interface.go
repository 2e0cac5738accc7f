package roomdb

import (
	"context"
	"errors"

	"github.com/google/uuid"

	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
)

var (
	// ErrVersionConflict is returned by guarded updates when the room row
	// changed since it was read. Callers re-read and re-derive their write.
	ErrVersionConflict = errors.New("room version conflict")

	// ErrDuplicateCode is returned by CreateRoom when the generated join code
	// is already taken. Callers regenerate and retry.
	ErrDuplicateCode = errors.New("join code already taken")
)

// RoomDB is the persistence interface for room rows.
type RoomDB interface {
	CreateRoom(ctx context.Context, room *roomtypes.Room) error
	GetRoom(ctx context.Context, roomID uuid.UUID) (*roomtypes.Room, error)
	GetRoomByCode(ctx context.Context, code string) (*roomtypes.Room, error)
	// UpdateRoomGuarded writes votes, status, outcome, started_at and
	// finished_at in one statement, guarded by the version the caller read.
	// On success the room's Version is advanced in place; if the row moved
	// on, ErrVersionConflict is returned and nothing is written.
	UpdateRoomGuarded(ctx context.Context, room *roomtypes.Room, readVersion int64) error
}

// PlayerDB is the persistence interface for player rows. Row existence is the
// authoritative definition of an active player.
type PlayerDB interface {
	CreatePlayer(ctx context.Context, player *roomtypes.Player) error
	GetPlayer(ctx context.Context, playerID uuid.UUID) (*roomtypes.Player, error)
	ListActive(ctx context.Context, roomID uuid.UUID) ([]roomtypes.Player, error)
	// RemovePlayer deletes the row for an explicit exit, scoped to the room
	// so a stale player id cannot unseat someone elsewhere. Returns false
	// when no row existed (already gone), which is not an error.
	RemovePlayer(ctx context.Context, roomID, playerID uuid.UUID) (bool, error)
}
