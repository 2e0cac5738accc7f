package roomservice

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/katilkim/katilkim-server/app/eventbus"
	roomevents "github.com/katilkim/katilkim-server/app/modules/room/domain/events"
	roomdb "github.com/katilkim/katilkim-server/app/modules/room/infrastructure/repositories"
	"github.com/katilkim/katilkim-server/internal/observability"
)

// maxWriteAttempts bounds the re-read loop around guarded room writes. Each
// attempt re-reads the row and re-derives the write, so a lost race is
// absorbed here instead of silently dropping a concurrent ballot.
const maxWriteAttempts = 5

// RoomService implements the room module: membership, lifecycle and the
// accusation consensus protocol.
type RoomService struct {
	RoomDB   roomdb.RoomDB
	PlayerDB roomdb.PlayerDB
	EventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer

	now   func() time.Time
	newID func() uuid.UUID
}

// NewRoomService creates a new RoomService.
func NewRoomService(
	roomDB roomdb.RoomDB,
	playerDB roomdb.PlayerDB,
	bus eventbus.EventBus,
	logger *slog.Logger,
	metrics *observability.Metrics,
	tracer trace.Tracer,
) *RoomService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("room")
	}
	return &RoomService{
		RoomDB:   roomDB,
		PlayerDB: playerDB,
		EventBus: bus,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		now:      time.Now,
		newID:    uuid.New,
	}
}

// publishEvent marshals a payload and publishes it on the bus. Publishing
// happens after the state is committed, so a bus failure is logged and
// swallowed: subscribers converge through the poll fallback.
func (s *RoomService) publishEvent(topic, roomCode string, payload interface{}) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal event payload",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payloadBytes)
	msg.Metadata.Set(roomevents.MetadataRoomCode, roomCode)

	if err := s.EventBus.Publish(topic, msg); err != nil {
		s.logger.Error("Failed to publish event",
			slog.String("topic", topic),
			slog.String("room_code", roomCode),
			slog.Any("error", err),
		)
		return
	}

	s.logger.Debug("Event published",
		slog.String("topic", topic),
		slog.String("room_code", roomCode),
		slog.String("message_id", msg.UUID),
	)
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
