// Package roomevents defines the topics and payloads published on the event
// bus whenever room state changes. The websocket gateway subscribes to these
// to fan state out to connected clients; the poll endpoint serves the same
// snapshot shape, so both transports feed one idempotent reducer on the
// client side.
package roomevents

import (
	"time"

	"github.com/google/uuid"

	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
)

const (
	RoomCreated  = "room.created"
	RoomUpdated  = "room.updated"
	RoomFinished = "room.finished"
	PlayerJoined = "room.player.joined"
	PlayerLeft   = "room.player.left"
)

// MetadataRoomCode keys the room join code in message metadata so subscribers
// can route without unmarshaling the payload.
const MetadataRoomCode = "room_code"

// RoomSnapshot is the versioned view of a room delivered to clients. Clients
// apply a snapshot only when its Version is not older than the last one they
// applied, which makes duplicate or out-of-order delivery harmless.
type RoomSnapshot struct {
	RoomID     uuid.UUID            `json:"room_id"`
	Code       string               `json:"code"`
	Status     roomtypes.RoomStatus `json:"status"`
	Votes      roomtypes.Votes      `json:"votes"`
	Outcome    *roomtypes.Outcome   `json:"outcome,omitempty"`
	Version    int64                `json:"version"`
	StartedAt  *time.Time           `json:"started_at,omitempty"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
	Players    []roomtypes.Player   `json:"players,omitempty"`
}

// Snapshot builds a RoomSnapshot from a room record and its player rows.
func Snapshot(room *roomtypes.Room, players []roomtypes.Player) RoomSnapshot {
	return RoomSnapshot{
		RoomID:     room.ID,
		Code:       room.Code,
		Status:     room.Status,
		Votes:      room.Votes,
		Outcome:    room.Outcome,
		Version:    room.Version,
		StartedAt:  room.StartedAt,
		FinishedAt: room.FinishedAt,
		Players:    players,
	}
}

// PlayerJoinedPayload is published after a player row is inserted.
type PlayerJoinedPayload struct {
	RoomID uuid.UUID        `json:"room_id"`
	Code   string           `json:"code"`
	Player roomtypes.Player `json:"player"`
}

// PlayerLeftPayload is published after a player row is removed.
type PlayerLeftPayload struct {
	RoomID   uuid.UUID `json:"room_id"`
	Code     string    `json:"code"`
	PlayerID uuid.UUID `json:"player_id"`
}

// RoomFinishedPayload is published once, alongside the final RoomUpdated
// snapshot, when consensus ends the game.
type RoomFinishedPayload struct {
	RoomID    uuid.UUID         `json:"room_id"`
	Code      string            `json:"code"`
	Outcome   roomtypes.Outcome `json:"outcome"`
	SuspectID string            `json:"suspect_id"`
}
