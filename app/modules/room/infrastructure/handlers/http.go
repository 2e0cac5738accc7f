// Package roomhandlers exposes the room module over HTTP. The write endpoints
// are thin adapters onto the application service; the read endpoint doubles as
// the poll fallback for clients whose push channel dropped.
package roomhandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	roomservice "github.com/katilkim/katilkim-server/app/modules/room/application"
	"github.com/katilkim/katilkim-server/app/modules/room/domain/casefile"
	roomevents "github.com/katilkim/katilkim-server/app/modules/room/domain/events"
	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
)

// RoomHandlers serves the room HTTP API.
type RoomHandlers struct {
	service roomservice.Service
	logger  *slog.Logger
}

// NewRoomHandlers creates a new RoomHandlers instance.
func NewRoomHandlers(service roomservice.Service, logger *slog.Logger) *RoomHandlers {
	return &RoomHandlers{service: service, logger: logger}
}

// Routes mounts the room API onto a chi router.
func (h *RoomHandlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateRoom)
	r.Get("/{code}", h.GetRoom)
	r.Get("/{code}/case", h.GetCase)
	r.Post("/{code}/join", h.JoinRoom)
	r.Post("/{code}/leave", h.LeaveRoom)
	r.Post("/{code}/start", h.StartInvestigation)
	r.Post("/{code}/vote", h.CastVote)
	return r
}

type createRoomRequest struct {
	HostName   string         `json:"host_name"`
	CustomCase *casefile.Case `json:"custom_case,omitempty"`
}

type joinRoomRequest struct {
	PlayerName string `json:"player_name"`
}

type playerRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
}

type castVoteRequest struct {
	PlayerID  uuid.UUID `json:"player_id"`
	SuspectID string    `json:"suspect_id"`
}

type roomWithPlayerResponse struct {
	Room   *roomtypes.Room   `json:"room"`
	Player *roomtypes.Player `json:"player"`
}

// CreateRoom opens a new room and seats the host.
func (h *RoomHandlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.HostName == "" {
		http.Error(w, "host_name is required", http.StatusBadRequest)
		return
	}

	room, player, err := h.service.CreateRoom(r.Context(), req.HostName, req.CustomCase)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, roomWithPlayerResponse{Room: room, Player: player})
}

// JoinRoom seats a player in the room behind the join code.
func (h *RoomHandlers) JoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PlayerName == "" {
		http.Error(w, "player_name is required", http.StatusBadRequest)
		return
	}

	room, player, err := h.service.JoinRoom(r.Context(), chi.URLParam(r, "code"), req.PlayerName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, roomWithPlayerResponse{Room: room, Player: player})
}

// LeaveRoom gives up the caller's seat. Leaving an already-left room is OK.
func (h *RoomHandlers) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	room, err := h.resolveRoom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.service.LeaveRoom(r.Context(), room.ID, req.PlayerID); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StartInvestigation moves the lobby into the investigation phase.
func (h *RoomHandlers) StartInvestigation(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	room, err := h.resolveRoom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.service.StartInvestigation(r.Context(), room.ID, req.PlayerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

// CastVote records an accusation ballot and reports where it left the room.
func (h *RoomHandlers) CastVote(w http.ResponseWriter, r *http.Request) {
	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SuspectID == "" {
		http.Error(w, "suspect_id is required", http.StatusBadRequest)
		return
	}

	room, err := h.resolveRoom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.service.CastVote(r.Context(), room.ID, req.PlayerID, req.SuspectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// GetRoom is the poll fallback: the current versioned snapshot of the room and
// its seated players.
func (h *RoomHandlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, players, err := h.service.GetRoomState(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, roomevents.Snapshot(room, players))
}

// caseView is the case content without its solution. Clients never learn the
// killer from the API; only a finished room's outcome tells them whether the
// accusation was right.
type caseView struct {
	ID                   string                         `json:"id"`
	Title                string                         `json:"title"`
	Intro                string                         `json:"intro"`
	Suspects             []casefile.Suspect             `json:"suspects"`
	Clues                []casefile.Clue                `json:"clues"`
	TimelineEvents       []casefile.TimelineEvent       `json:"timeline_events"`
	EvidenceCombinations []casefile.EvidenceCombination `json:"evidence_combinations"`
}

// GetCase serves the mystery content the room plays.
func (h *RoomHandlers) GetCase(w http.ResponseWriter, r *http.Request) {
	room, _, err := h.service.GetRoomState(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	c := room.Case()
	h.writeJSON(w, http.StatusOK, caseView{
		ID:                   c.ID,
		Title:                c.Title,
		Intro:                c.Intro,
		Suspects:             c.Suspects,
		Clues:                c.Clues,
		TimelineEvents:       c.TimelineEvents,
		EvidenceCombinations: c.EvidenceCombinations,
	})
}

func (h *RoomHandlers) resolveRoom(r *http.Request) (*roomtypes.Room, error) {
	room, _, err := h.service.GetRoomState(r.Context(), chi.URLParam(r, "code"))
	return room, err
}

func (h *RoomHandlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", slog.Any("error", err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *RoomHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, roomservice.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, roomservice.ErrCapacityExceeded),
		errors.Is(err, roomservice.ErrGameAlreadyStarted):
		status = http.StatusConflict
	case errors.Is(err, roomservice.ErrGameAlreadyFinished):
		status = http.StatusGone
	case errors.Is(err, roomservice.ErrInvalidVote):
		status = http.StatusBadRequest
	case errors.Is(err, roomservice.ErrNotHost):
		status = http.StatusForbidden
	case errors.Is(err, roomservice.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		h.logger.Error("Request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}

	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}
