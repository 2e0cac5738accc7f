package roomservice

import (
	"context"

	"github.com/google/uuid"

	"github.com/katilkim/katilkim-server/app/modules/room/domain/casefile"
	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
)

// Service is the room module's application interface.
type Service interface {
	CreateRoom(ctx context.Context, hostName string, customCase *casefile.Case) (*roomtypes.Room, *roomtypes.Player, error)
	JoinRoom(ctx context.Context, code string, playerName string) (*roomtypes.Room, *roomtypes.Player, error)
	LeaveRoom(ctx context.Context, roomID, playerID uuid.UUID) error
	StartInvestigation(ctx context.Context, roomID, playerID uuid.UUID) (*roomtypes.Room, error)
	CastVote(ctx context.Context, roomID, playerID uuid.UUID, suspectID string) (*roomtypes.VoteResult, error)
	GetRoomState(ctx context.Context, code string) (*roomtypes.Room, []roomtypes.Player, error)
}
