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

// CastVote records an accusation ballot and evaluates consensus. Each attempt
// re-reads the room and the active seats, drops ballots whose holders are no
// longer seated, overwrites the caster's previous ballot and tallies: when
// every active player names the same suspect the room is moved to FINISHED in
// the same guarded write, WON if that suspect is the case's killer, LOST
// otherwise. Losing the version race to a concurrent ballot re-derives from
// fresh state instead of overwriting it.
func (s *RoomService) CastVote(ctx context.Context, roomID, playerID uuid.UUID, suspectID string) (*roomtypes.VoteResult, error) {
	ctx, span := s.tracer.Start(ctx, "room.cast_vote")
	defer span.End()

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		room, err := s.RoomDB.GetRoom(ctx, roomID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("cast vote: %w", ErrRoomNotFound)
			}
			return nil, storageError("cast vote", err)
		}
		if room.Finished() {
			return nil, fmt.Errorf("cast vote: %w", ErrGameAlreadyFinished)
		}

		active, err := s.PlayerDB.ListActive(ctx, room.ID)
		if err != nil {
			return nil, storageError("cast vote", err)
		}
		if len(active) == 0 {
			return nil, fmt.Errorf("cast vote: %w: room has no active players", ErrInvalidVote)
		}

		activeSet := make(map[string]bool, len(active))
		for _, p := range active {
			activeSet[p.ID.String()] = true
		}
		if !activeSet[playerID.String()] {
			return nil, fmt.Errorf("cast vote: %w: caster is not seated in this room", ErrInvalidVote)
		}
		if room.Case().SuspectByID(suspectID) == nil {
			return nil, fmt.Errorf("cast vote: %w: unknown suspect %q", ErrInvalidVote, suspectID)
		}

		// Ballots left behind by departed players never count toward
		// consensus and are pruned from the stored map on the next write.
		next := make(roomtypes.Votes, len(active))
		for pid, sid := range room.Votes {
			if activeSet[pid] {
				next[pid] = sid
			}
		}
		next[playerID.String()] = suspectID

		readVersion := room.Version
		unchanged := next.Equal(room.Votes)
		room.Votes = next

		status := roomtypes.VoteStatusPending
		if accused, ok := unanimousSuspect(next, len(active)); ok {
			status = roomtypes.VoteStatusConsensus
			outcome := roomtypes.OutcomeLost
			if accused == room.Case().Solution.KillerID {
				outcome = roomtypes.OutcomeWon
			}
			finishedAt := s.now()
			room.Status = roomtypes.RoomStatusFinished
			room.Outcome = &outcome
			room.FinishedAt = &finishedAt
		}

		if unchanged && status == roomtypes.VoteStatusPending {
			// Re-casting the ballot already on record changes nothing;
			// skipping the write keeps the version stable for idempotent
			// retries from the client.
			return &roomtypes.VoteResult{
				Room:          room,
				Status:        status,
				ActivePlayers: len(active),
				BallotsCast:   len(next),
			}, nil
		}

		err = s.RoomDB.UpdateRoomGuarded(ctx, room, readVersion)
		if errors.Is(err, roomdb.ErrVersionConflict) {
			s.metrics.VersionConflicts.Inc()
			s.logger.Debug("Ballot lost a version race, re-deriving",
				slog.String("room_id", roomID.String()),
				slog.Int("attempt", attempt+1),
			)
			continue
		}
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("cast vote: %w", ErrRoomNotFound)
			}
			return nil, storageError("cast vote", err)
		}

		s.metrics.VotesCast.Inc()
		s.logger.Info("Ballot recorded",
			slog.String("room_id", room.ID.String()),
			slog.String("player_id", playerID.String()),
			slog.String("suspect_id", suspectID),
			slog.String("status", string(status)),
			slog.Int64("version", room.Version),
		)

		s.publishEvent(roomevents.RoomUpdated, room.Code, roomevents.Snapshot(room, active))
		if status == roomtypes.VoteStatusConsensus {
			s.metrics.ConsensusReached.WithLabelValues(string(*room.Outcome)).Inc()
			s.logger.Info("Consensus reached",
				slog.String("room_id", room.ID.String()),
				slog.String("suspect_id", suspectID),
				slog.String("outcome", string(*room.Outcome)),
			)
			s.publishEvent(roomevents.RoomFinished, room.Code, roomevents.RoomFinishedPayload{
				RoomID:    room.ID,
				Code:      room.Code,
				Outcome:   *room.Outcome,
				SuspectID: suspectID,
			})
		}

		return &roomtypes.VoteResult{
			Room:          room,
			Status:        status,
			ActivePlayers: len(active),
			BallotsCast:   len(next),
		}, nil
	}

	return nil, fmt.Errorf("cast vote: %w: version conflict retries exhausted", ErrStorageUnavailable)
}

// unanimousSuspect reports the single suspect named by every active player,
// if there is one. Consensus requires a ballot from each of the n active
// players and all n ballots agreeing.
func unanimousSuspect(votes roomtypes.Votes, activeCount int) (string, bool) {
	if activeCount == 0 || len(votes) < activeCount {
		return "", false
	}
	var accused string
	for _, sid := range votes {
		if accused == "" {
			accused = sid
			continue
		}
		if sid != accused {
			return "", false
		}
	}
	return accused, true
}
