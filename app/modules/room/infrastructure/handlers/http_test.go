package roomhandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	roomservice "github.com/katilkim/katilkim-server/app/modules/room/application"
	"github.com/katilkim/katilkim-server/app/modules/room/domain/casefile"
	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
)

// stubService scripts the application layer per test case.
type stubService struct {
	room    *roomtypes.Room
	player  *roomtypes.Player
	players []roomtypes.Player
	result  *roomtypes.VoteResult
	err     error

	gotSuspect string
	gotPlayer  uuid.UUID
}

func (s *stubService) CreateRoom(context.Context, string, *casefile.Case) (*roomtypes.Room, *roomtypes.Player, error) {
	return s.room, s.player, s.err
}

func (s *stubService) JoinRoom(context.Context, string, string) (*roomtypes.Room, *roomtypes.Player, error) {
	return s.room, s.player, s.err
}

func (s *stubService) LeaveRoom(_ context.Context, _ uuid.UUID, playerID uuid.UUID) error {
	s.gotPlayer = playerID
	return s.err
}

func (s *stubService) StartInvestigation(context.Context, uuid.UUID, uuid.UUID) (*roomtypes.Room, error) {
	return s.room, s.err
}

func (s *stubService) CastVote(_ context.Context, _ uuid.UUID, playerID uuid.UUID, suspectID string) (*roomtypes.VoteResult, error) {
	s.gotPlayer = playerID
	s.gotSuspect = suspectID
	return s.result, s.err
}

func (s *stubService) GetRoomState(context.Context, string) (*roomtypes.Room, []roomtypes.Player, error) {
	// resolveRoom and the poll endpoint share this; scripted errors apply to
	// the target operation, so lookups succeed whenever a room is scripted.
	if s.room == nil {
		return nil, nil, s.err
	}
	return s.room, s.players, nil
}

func testRoom() *roomtypes.Room {
	return &roomtypes.Room{
		ID:      uuid.New(),
		Code:    "ABCD",
		Status:  roomtypes.RoomStatusLobby,
		Votes:   roomtypes.Votes{},
		Version: 1,
	}
}

func newServer(svc roomservice.Service) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httptest.NewServer(NewRoomHandlers(svc, logger).Routes())
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func TestCreateRoomHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		room := testRoom()
		svc := &stubService{room: room, player: &roomtypes.Player{ID: room.HostID}}
		srv := newServer(svc)
		defer srv.Close()

		resp := postJSON(t, srv.URL+"/", map[string]string{"host_name": "alice"})
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var got roomWithPlayerResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "ABCD", got.Room.Code)
	})

	t.Run("missing host name", func(t *testing.T) {
		srv := newServer(&stubService{})
		defer srv.Close()

		resp := postJSON(t, srv.URL+"/", map[string]string{})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newServer(&stubService{})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/", "application/json", bytes.NewReader([]byte("{")))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{roomservice.ErrRoomNotFound, http.StatusNotFound},
		{roomservice.ErrCapacityExceeded, http.StatusConflict},
		{roomservice.ErrGameAlreadyStarted, http.StatusConflict},
		{roomservice.ErrGameAlreadyFinished, http.StatusGone},
		{roomservice.ErrInvalidVote, http.StatusBadRequest},
		{roomservice.ErrNotHost, http.StatusForbidden},
		{roomservice.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			srv := newServer(&stubService{err: tt.err})
			defer srv.Close()

			resp := postJSON(t, srv.URL+"/ABCD/join", map[string]string{"player_name": "bob"})
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestCastVoteHandler(t *testing.T) {
	t.Run("forwards the ballot and returns the tally", func(t *testing.T) {
		room := testRoom()
		playerID := uuid.New()
		svc := &stubService{
			room: room,
			result: &roomtypes.VoteResult{
				Room:          room,
				Status:        roomtypes.VoteStatusPending,
				ActivePlayers: 2,
				BallotsCast:   1,
			},
		}
		srv := newServer(svc)
		defer srv.Close()

		resp := postJSON(t, srv.URL+"/ABCD/vote", map[string]interface{}{
			"player_id":  playerID,
			"suspect_id": "s3",
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Equal(t, "s3", svc.gotSuspect)
		assert.Equal(t, playerID, svc.gotPlayer)

		var got roomtypes.VoteResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, roomtypes.VoteStatusPending, got.Status)
	})

	t.Run("missing suspect", func(t *testing.T) {
		srv := newServer(&stubService{room: testRoom()})
		defer srv.Close()

		resp := postJSON(t, srv.URL+"/ABCD/vote", map[string]interface{}{
			"player_id": uuid.New(),
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLeaveRoomHandler(t *testing.T) {
	svc := &stubService{room: testRoom()}
	srv := newServer(svc)
	defer srv.Close()

	playerID := uuid.New()
	resp := postJSON(t, srv.URL+"/ABCD/leave", map[string]interface{}{"player_id": playerID})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, playerID, svc.gotPlayer)
}

func TestGetRoomHandler(t *testing.T) {
	room := testRoom()
	room.Version = 7
	svc := &stubService{
		room:    room,
		players: []roomtypes.Player{{ID: uuid.New(), Name: "alice"}},
	}
	srv := newServer(svc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ABCD")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Version int64              `json:"version"`
		Players []roomtypes.Player `json:"players"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, int64(7), got.Version)
	assert.Len(t, got.Players, 1)
}

func TestGetCaseHandler(t *testing.T) {
	svc := &stubService{room: testRoom()}
	srv := newServer(svc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ABCD/case")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Contains(t, got, "suspects")
	// The killer must never leak through the API.
	assert.NotContains(t, got, "solution")
}
