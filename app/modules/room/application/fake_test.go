package roomservice

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
	roomdb "github.com/katilkim/katilkim-server/app/modules/room/infrastructure/repositories"
	"github.com/katilkim/katilkim-server/internal/observability"
)

// fakeRoomDB is an in-memory RoomDB that enforces the same guarded-write
// contract as the postgres implementation, plus per-call error injection.
type fakeRoomDB struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*roomtypes.Room

	createErrs []error // popped per CreateRoom call
	getErr     error
	updateErr  error
	conflicts  int // UpdateRoomGuarded calls to reject before accepting

	updates int
}

func newFakeRoomDB() *fakeRoomDB {
	return &fakeRoomDB{rooms: make(map[uuid.UUID]*roomtypes.Room)}
}

func (f *fakeRoomDB) CreateRoom(_ context.Context, room *roomtypes.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, existing := range f.rooms {
		if existing.Code == room.Code {
			return fmt.Errorf("code %q: %w", room.Code, roomdb.ErrDuplicateCode)
		}
	}
	cp := *room
	f.rooms[room.ID] = &cp
	return nil
}

func (f *fakeRoomDB) GetRoom(_ context.Context, roomID uuid.UUID) (*roomtypes.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("fetch room: %w", sql.ErrNoRows)
	}
	cp := *room
	cp.Votes = room.Votes.Clone()
	return &cp, nil
}

func (f *fakeRoomDB) GetRoomByCode(_ context.Context, code string) (*roomtypes.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, room := range f.rooms {
		if room.Code == code {
			cp := *room
			cp.Votes = room.Votes.Clone()
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("fetch room by code: %w", sql.ErrNoRows)
}

func (f *fakeRoomDB) UpdateRoomGuarded(_ context.Context, room *roomtypes.Room, readVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.conflicts > 0 {
		f.conflicts--
		return roomdb.ErrVersionConflict
	}
	stored, ok := f.rooms[room.ID]
	if !ok {
		return fmt.Errorf("room disappeared during update: %w", sql.ErrNoRows)
	}
	if stored.Version != readVersion {
		return roomdb.ErrVersionConflict
	}
	stored.Votes = room.Votes.Clone()
	stored.Status = room.Status
	stored.Outcome = room.Outcome
	stored.StartedAt = room.StartedAt
	stored.FinishedAt = room.FinishedAt
	stored.Version = readVersion + 1
	room.Version = stored.Version
	f.updates++
	return nil
}

// fakePlayerDB is an in-memory PlayerDB.
type fakePlayerDB struct {
	mu      sync.Mutex
	players map[uuid.UUID]*roomtypes.Player

	createErr error
	listErr   error
	removeErr error
}

func newFakePlayerDB() *fakePlayerDB {
	return &fakePlayerDB{players: make(map[uuid.UUID]*roomtypes.Player)}
}

func (f *fakePlayerDB) CreatePlayer(_ context.Context, player *roomtypes.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *player
	f.players[player.ID] = &cp
	return nil
}

func (f *fakePlayerDB) GetPlayer(_ context.Context, playerID uuid.UUID) (*roomtypes.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	player, ok := f.players[playerID]
	if !ok {
		return nil, fmt.Errorf("fetch player: %w", sql.ErrNoRows)
	}
	cp := *player
	return &cp, nil
}

func (f *fakePlayerDB) ListActive(_ context.Context, roomID uuid.UUID) ([]roomtypes.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []roomtypes.Player
	for _, p := range f.players {
		if p.RoomID == roomID {
			out = append(out, *p)
		}
	}
	sortPlayersByJoin(out)
	return out, nil
}

func (f *fakePlayerDB) RemovePlayer(_ context.Context, roomID, playerID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return false, f.removeErr
	}
	p, ok := f.players[playerID]
	if !ok || p.RoomID != roomID {
		return false, nil
	}
	delete(f.players, playerID)
	return true, nil
}

func sortPlayersByJoin(players []roomtypes.Player) {
	for i := 1; i < len(players); i++ {
		for j := i; j > 0 && players[j].JoinedAt.Before(players[j-1].JoinedAt); j-- {
			players[j], players[j-1] = players[j-1], players[j]
		}
	}
}

// fakeBus records published messages per topic.
type fakeBus struct {
	mu        sync.Mutex
	published map[string][]*message.Message
	pubErr    error
}

func newFakeBus() *fakeBus {
	return &fakeBus{published: make(map[string][]*message.Message)}
}

func (f *fakeBus) Publish(topic string, messages ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pubErr != nil {
		return f.pubErr
	}
	f.published[topic] = append(f.published[topic], messages...)
	return nil
}

func (f *fakeBus) Subscribe(context.Context, string) (<-chan *message.Message, error) {
	return nil, nil
}

func (f *fakeBus) Close() error { return nil }

func (f *fakeBus) topicCount(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published[topic])
}

// testEnv wires a service against the fakes with a deterministic clock.
type testEnv struct {
	svc      *RoomService
	roomDB   *fakeRoomDB
	playerDB *fakePlayerDB
	bus      *fakeBus
	clock    time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		roomDB:   newFakeRoomDB(),
		playerDB: newFakePlayerDB(),
		bus:      newFakeBus(),
		clock:    time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	env.svc = NewRoomService(env.roomDB, env.playerDB, env.bus, logger, metrics, nil)
	env.svc.now = func() time.Time {
		env.clock = env.clock.Add(time.Second)
		return env.clock
	}
	return env
}

// seedRoom inserts a room with the given players already seated. The first
// player is the host.
func (env *testEnv) seedRoom(status roomtypes.RoomStatus, playerCount int) (*roomtypes.Room, []roomtypes.Player) {
	room := &roomtypes.Room{
		ID:        uuid.New(),
		Code:      "ABCD",
		Status:    status,
		Votes:     roomtypes.Votes{},
		Version:   1,
		CreatedAt: env.clock,
	}
	players := make([]roomtypes.Player, 0, playerCount)
	for i := 0; i < playerCount; i++ {
		role := roomtypes.RoleDetectiveA
		if i%2 == 1 {
			role = roomtypes.RoleDetectiveB
		}
		p := roomtypes.Player{
			ID:       uuid.New(),
			RoomID:   room.ID,
			Name:     fmt.Sprintf("player-%d", i+1),
			Role:     role,
			JoinedAt: env.clock.Add(time.Duration(i) * time.Minute),
		}
		players = append(players, p)
		cp := p
		env.playerDB.players[p.ID] = &cp
	}
	if len(players) > 0 {
		room.HostID = players[0].ID
	}
	env.roomDB.rooms[room.ID] = room
	return room, players
}
