// Package roomtypes defines the persisted shapes and enums for a game room
// and its players. The structs carry bun tags because the repository layer
// scans them directly; everything above the repository treats them as plain
// domain values.
package roomtypes

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/katilkim/katilkim-server/app/modules/room/domain/casefile"
)

// RoomStatus is the lifecycle phase of a room.
type RoomStatus string

const (
	RoomStatusLobby         RoomStatus = "LOBBY"
	RoomStatusInvestigation RoomStatus = "INVESTIGATION"
	RoomStatusFinished      RoomStatus = "FINISHED"
)

// Outcome is the terminal verdict of a finished game. It is set exactly once,
// in the same write that moves the room to FINISHED, and never changes.
type Outcome string

const (
	OutcomeWon  Outcome = "WON"
	OutcomeLost Outcome = "LOST"
)

// Role is one of the two detective slots players are balanced across.
type Role string

const (
	RoleDetectiveA Role = "DETECTIVE_A"
	RoleDetectiveB Role = "DETECTIVE_B"
)

// RoomCapacity is the hard ceiling of active players per room.
const RoomCapacity = 4

// Votes maps player id to the suspect id of that player's current ballot.
// A player holds at most one ballot; re-casting overwrites it.
type Votes map[string]string

// Clone returns a copy safe to mutate.
func (v Votes) Clone() Votes {
	out := make(Votes, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Equal reports whether two ballot maps hold the same entries.
func (v Votes) Equal(other Votes) bool {
	if len(v) != len(other) {
		return false
	}
	for k, val := range v {
		if ov, ok := other[k]; !ok || ov != val {
			return false
		}
	}
	return true
}

// Room is one game session, identified by a shareable join code.
type Room struct {
	bun.BaseModel `bun:"table:rooms,alias:rm"`

	ID         uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	Code       string         `bun:"code,notnull,unique" json:"code"`
	Status     RoomStatus     `bun:"status,notnull" json:"status"`
	HostID     uuid.UUID      `bun:"host_id,type:uuid" json:"host_id"`
	Votes      Votes          `bun:"votes,type:jsonb" json:"votes"`
	Outcome    *Outcome       `bun:"outcome,nullzero" json:"outcome,omitempty"`
	CustomCase *casefile.Case `bun:"custom_case,type:jsonb,nullzero" json:"custom_case,omitempty"`
	Version    int64          `bun:"version,notnull,default:1" json:"version"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	StartedAt  *time.Time     `bun:"started_at,nullzero" json:"started_at,omitempty"`
	FinishedAt *time.Time     `bun:"finished_at,nullzero" json:"finished_at,omitempty"`
}

// Case returns the content this room plays: the embedded custom case when one
// was attached at creation, the built-in default case otherwise.
func (r *Room) Case() *casefile.Case {
	if r.CustomCase != nil {
		return r.CustomCase
	}
	return casefile.Default()
}

// Finished reports whether the room reached its terminal phase.
func (r *Room) Finished() bool {
	return r.Status == RoomStatusFinished
}

// Player is one occupied seat in a room. The existence of the row is the sole
// definition of "active"; there is no heartbeat.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:pl"`

	ID       uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	RoomID   uuid.UUID `bun:"room_id,notnull,type:uuid" json:"room_id"`
	Name     string    `bun:"name,notnull" json:"name"`
	Role     Role      `bun:"role,notnull" json:"role"`
	JoinedAt time.Time `bun:"joined_at,nullzero,notnull,default:current_timestamp" json:"joined_at"`
}

// VoteStatus describes where a cast ballot left the room.
type VoteStatus string

const (
	// VoteStatusPending means not every active player has voted yet, or the
	// ballots disagree. The room stays in INVESTIGATION.
	VoteStatusPending VoteStatus = "PENDING"
	// VoteStatusConsensus means every active player named the same suspect
	// and the game is over.
	VoteStatusConsensus VoteStatus = "CONSENSUS"
)

// VoteResult is what CastVote hands back to the caller.
type VoteResult struct {
	Room          *Room      `json:"room"`
	Status        VoteStatus `json:"status"`
	ActivePlayers int        `json:"active_players"`
	BallotsCast   int        `json:"ballots_cast"`
}
