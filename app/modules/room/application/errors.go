package roomservice

import "errors"

var (
	// ErrRoomNotFound means the join code or room id resolves to nothing.
	ErrRoomNotFound = errors.New("room not found")
	// ErrGameAlreadyStarted rejects joins once the investigation began.
	ErrGameAlreadyStarted = errors.New("game has already started")
	// ErrGameAlreadyFinished rejects any mutation of a FINISHED room.
	ErrGameAlreadyFinished = errors.New("game has already finished")
	// ErrCapacityExceeded rejects a join against a full room.
	ErrCapacityExceeded = errors.New("room is full")
	// ErrInvalidVote is a precondition failure: the caster is not an active
	// player of the room, the room has no active players at all, or the
	// ballot names a suspect the case does not contain.
	ErrInvalidVote = errors.New("invalid vote")
	// ErrNotHost rejects lifecycle transitions from non-host players.
	ErrNotHost = errors.New("only the host can start the game")
	// ErrStorageUnavailable wraps transient store failures. The caller may
	// retry the whole operation; nothing was committed.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
