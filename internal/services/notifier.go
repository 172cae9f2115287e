package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RoomEventsChannel is the Redis pub/sub channel carrying room lifecycle
// events for other services to consume.
const RoomEventsChannel = "collaborate:rooms"

const publishTimeout = 2 * time.Second

// RoomEvent is the published payload.
type RoomEvent struct {
	Event      string    `json:"event"` // "room_created" | "room_closed"
	Roomcode   string    `json:"roomcode"`
	InstanceID string    `json:"instanceId"`
	Timestamp  time.Time `json:"timestamp"`
}

// RoomNotifier publishes room lifecycle events over Redis. Publishing is
// fire-and-forget; the in-memory room state is authoritative regardless.
type RoomNotifier struct {
	log        *zap.Logger
	rdb        *redis.Client
	instanceID string
}

func NewRoomNotifier(log *zap.Logger, redisAddr string) *RoomNotifier {
	return &RoomNotifier{
		log:        log,
		rdb:        redis.NewClient(&redis.Options{Addr: redisAddr}),
		instanceID: uuid.New().String(),
	}
}

func (n *RoomNotifier) RoomCreated(roomcode string) { n.publish("room_created", roomcode) }
func (n *RoomNotifier) RoomDeleted(roomcode string) { n.publish("room_closed", roomcode) }

func (n *RoomNotifier) publish(event, roomcode string) {
	payload, err := json.Marshal(RoomEvent{
		Event:      event,
		Roomcode:   roomcode,
		InstanceID: n.instanceID,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		n.log.Error("marshal room event failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := n.rdb.Publish(ctx, RoomEventsChannel, payload).Err(); err != nil {
		n.log.Warn("publish room event failed",
			zap.String("event", event),
			zap.String("roomcode", roomcode),
			zap.Error(err))
	}
}

func (n *RoomNotifier) Close() error { return n.rdb.Close() }
