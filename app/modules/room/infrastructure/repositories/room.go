package roomdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
)

// RoomDBImpl is the concrete implementation of the RoomDB interface using bun.
type RoomDBImpl struct {
	DB *bun.DB
}

// CreateRoom inserts a new room row. A collision on the join code's unique
// constraint is translated to ErrDuplicateCode so the caller can regenerate.
func (db *RoomDBImpl) CreateRoom(ctx context.Context, room *roomtypes.Room) error {
	slog.DebugContext(ctx, "Executing RoomDBImpl.CreateRoom", slog.String("code", room.Code))
	_, err := db.DB.NewInsert().
		Model(room).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("code %q: %w", room.Code, ErrDuplicateCode)
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}

// GetRoom retrieves a room by id.
func (db *RoomDBImpl) GetRoom(ctx context.Context, roomID uuid.UUID) (*roomtypes.Room, error) {
	room := new(roomtypes.Room)
	err := db.DB.NewSelect().
		Model(room).
		Where("id = ?", roomID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room: %w", err)
	}
	return room, nil
}

// GetRoomByCode retrieves a room by its join code.
func (db *RoomDBImpl) GetRoomByCode(ctx context.Context, code string) (*roomtypes.Room, error) {
	room := new(roomtypes.Room)
	err := db.DB.NewSelect().
		Model(room).
		Where("code = ?", code).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room by code: %w", err)
	}
	return room, nil
}

// UpdateRoomGuarded performs the compare-and-swap write at the heart of the
// consensus protocol: votes, status, outcome and the phase timestamps land in
// a single UPDATE guarded by the version the caller read, so observers never
// see a torn record and a racing writer loses cleanly instead of silently.
func (db *RoomDBImpl) UpdateRoomGuarded(ctx context.Context, room *roomtypes.Room, readVersion int64) error {
	res, err := db.DB.NewUpdate().
		Model(room).
		Set("votes = ?", room.Votes).
		Set("status = ?", room.Status).
		Set("outcome = ?", room.Outcome).
		Set("started_at = ?", room.StartedAt).
		Set("finished_at = ?", room.FinishedAt).
		Set("version = version + 1").
		Where("id = ?", room.ID).
		Where("version = ?", readVersion).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish a concurrent writer from a vanished row.
		exists, err := db.DB.NewSelect().
			Model((*roomtypes.Room)(nil)).
			Where("id = ?", room.ID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check room existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("room disappeared during update: %w", sql.ErrNoRows)
		}
		slog.DebugContext(ctx, "Room version conflict",
			slog.String("room_id", room.ID.String()),
			slog.Int64("read_version", readVersion),
		)
		return ErrVersionConflict
	}

	room.Version = readVersion + 1
	return nil
}
