package roomdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
)

// PlayerDBImpl is the concrete implementation of the PlayerDB interface using bun.
type PlayerDBImpl struct {
	DB *bun.DB
}

// CreatePlayer inserts a player row for a newly occupied seat.
func (db *PlayerDBImpl) CreatePlayer(ctx context.Context, player *roomtypes.Player) error {
	slog.DebugContext(ctx, "Executing PlayerDBImpl.CreatePlayer",
		slog.String("room_id", player.RoomID.String()),
		slog.String("role", string(player.Role)),
	)
	_, err := db.DB.NewInsert().
		Model(player).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

// GetPlayer retrieves a player by id.
func (db *PlayerDBImpl) GetPlayer(ctx context.Context, playerID uuid.UUID) (*roomtypes.Player, error) {
	player := new(roomtypes.Player)
	err := db.DB.NewSelect().
		Model(player).
		Where("id = ?", playerID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player: %w", err)
	}
	return player, nil
}

// ListActive returns every player row in the room, ordered by join time. Row
// existence is the only liveness signal there is.
func (db *PlayerDBImpl) ListActive(ctx context.Context, roomID uuid.UUID) ([]roomtypes.Player, error) {
	var players []roomtypes.Player
	err := db.DB.NewSelect().
		Model(&players).
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// RemovePlayer deletes the player row for an explicit exit.
func (db *PlayerDBImpl) RemovePlayer(ctx context.Context, roomID, playerID uuid.UUID) (bool, error) {
	res, err := db.DB.NewDelete().
		Model((*roomtypes.Player)(nil)).
		Where("id = ?", playerID).
		Where("room_id = ?", roomID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to remove player: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}
