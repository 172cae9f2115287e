package session

import (
	"errors"

	"go.uber.org/zap"

	"github.com/bensgilbert/Collaborate/internal/metrics"
	"github.com/bensgilbert/Collaborate/internal/models"
)

// ErrProtocolViolation reports an event that is not valid in the
// connection's current state.
var ErrProtocolViolation = errors.New("event not valid in current connection state")

// Notifier receives room lifecycle events. Implementations must not block.
type Notifier interface {
	RoomCreated(roomcode string)
	RoomDeleted(roomcode string)
}

// Conn tracks one connection's protocol state. A nil collaborator means the
// connection has not created or joined a room yet.
type Conn struct {
	client       *Client
	collaborator *Collaborator
}

// Joined reports whether the connection is past the unjoined state.
func (c *Conn) Joined() bool { return c.collaborator != nil }

// Dispatcher turns inbound client events into room mutations and outbound
// server events. Protocol violations and bad input get an error reply and
// leave the connection open; only a transport disconnect closes it.
type Dispatcher struct {
	log      *zap.Logger
	rooms    *Manager
	notifier Notifier // may be nil
}

func NewDispatcher(log *zap.Logger, rooms *Manager, notifier Notifier) *Dispatcher {
	return &Dispatcher{log: log, rooms: rooms, notifier: notifier}
}

// NewConn starts protocol state for one connection.
func (d *Dispatcher) NewConn(client *Client) *Conn {
	return &Conn{client: client}
}

// HandleMessage decodes one raw inbound frame and dispatches it.
func (d *Dispatcher) HandleMessage(conn *Conn, raw []byte) {
	evt, err := models.DecodeClientEvent(raw)
	if err != nil {
		d.log.Warn("malformed message", zap.Error(err))
		metrics.EventRejected("malformed_message")
		d.replyError(conn)
		return
	}
	d.HandleEvent(conn, evt)
}

// HandleEvent dispatches one typed client event against the connection state.
func (d *Dispatcher) HandleEvent(conn *Conn, evt models.ClientEvent) {
	metrics.EventReceived(evt.EventType())
	d.pruneStale(conn)
	switch e := evt.(type) {
	case models.ClientCreateEvent:
		d.handleCreate(conn, e)
	case models.ClientJoinEvent:
		d.handleJoin(conn, e)
	case models.ClientInfoEvent:
		d.handleInfo(conn, e)
	case models.ClientChatEvent:
		d.handleChat(conn, e)
	case models.ClientCursorEvent:
		d.handleCursor(conn, e)
	case models.ClientUpdateEvent:
		d.handleUpdate(conn, e)
	case models.ClientLeaveEvent:
		d.handleLeave(conn)
	default:
		metrics.EventRejected("unknown_event")
		d.replyError(conn)
	}
}

// HandleDisconnect treats a transport-level close as an implicit leave. It
// affects only this connection; other members' events proceed untouched.
func (d *Dispatcher) HandleDisconnect(conn *Conn) {
	if conn.collaborator == nil {
		return
	}
	d.leaveRoom(conn.collaborator)
	conn.collaborator = nil
}

func (d *Dispatcher) handleCreate(conn *Conn, e models.ClientCreateEvent) {
	if conn.collaborator != nil {
		d.violation(conn, "create")
		return
	}
	room, err := d.rooms.CreateRoom()
	if err != nil {
		d.log.Warn("create room failed", zap.Error(err))
		metrics.EventRejected("capacity_exhausted")
		d.replyError(conn)
		return
	}
	metrics.RoomOpened()
	if d.notifier != nil {
		d.notifier.RoomCreated(room.Roomcode)
	}

	c := NewCollaborator(e.Username, conn.client)
	c.setRoomcode(room.Roomcode)
	snapshot, _ := room.Join(c, nil)
	conn.collaborator = c
	metrics.MemberJoined()
	d.log.Info("room created",
		zap.String("roomcode", room.Roomcode),
		zap.String("collaborator", c.ID.String()),
		zap.String("username", c.Username))

	failed := room.Broadcast(models.ServerSyncEvent{Collaborator: c.State(), Room: snapshot})
	d.evict(room, failed)
}

func (d *Dispatcher) handleJoin(conn *Conn, e models.ClientJoinEvent) {
	if conn.collaborator != nil {
		d.violation(conn, "join")
		return
	}
	room, ok := d.rooms.Room(e.Roomcode)
	if !ok {
		d.log.Warn("join unknown room", zap.String("roomcode", e.Roomcode))
		metrics.EventRejected("unknown_room")
		d.replyError(conn)
		return
	}

	c := NewCollaborator(e.Username, conn.client)
	c.setRoomcode(room.Roomcode)
	snapshot, failed := room.Join(c, models.ServerJoinEvent{Collaborator: c.State()})
	conn.collaborator = c
	metrics.MemberJoined()
	d.log.Info("collaborator joined",
		zap.String("roomcode", room.Roomcode),
		zap.String("collaborator", c.ID.String()),
		zap.String("username", c.Username))

	// Reply first: the snapshot was taken inside Join, and eviction leaves
	// must reach the new member after the sync that still lists the evicted.
	d.reply(conn, models.ServerSyncEvent{Collaborator: c.State(), Room: snapshot})
	d.evict(room, failed)
}

func (d *Dispatcher) handleInfo(conn *Conn, e models.ClientInfoEvent) {
	var state *models.RoomState
	if room, ok := d.rooms.Room(e.Roomcode); ok {
		s := room.Snapshot()
		state = &s
	}
	d.reply(conn, models.ServerInfoEvent{Room: state})
}

func (d *Dispatcher) handleChat(conn *Conn, e models.ClientChatEvent) {
	c, room, ok := d.joinedRoom(conn, "chat")
	if !ok {
		return
	}
	failed := room.Broadcast(models.ServerChatEvent{Collaborator: c.State(), Message: e.Message})
	d.evict(room, failed)
}

func (d *Dispatcher) handleCursor(conn *Conn, e models.ClientCursorEvent) {
	c, room, ok := d.joinedRoom(conn, "cursor")
	if !ok {
		return
	}
	c.SetCursor(e.Position, e.SecondaryPositions)
	failed := room.Broadcast(models.ServerCursorEvent{Collaborator: c.State()})
	d.evict(room, failed)
}

func (d *Dispatcher) handleUpdate(conn *Conn, e models.ClientUpdateEvent) {
	c, room, ok := d.joinedRoom(conn, "update")
	if !ok {
		return
	}
	failed, err := room.Update(e.Changes, models.ServerUpdateEvent{Collaborator: c.State(), Changes: e.Changes})
	if err != nil {
		d.log.Warn("rejected edit batch",
			zap.String("roomcode", room.Roomcode),
			zap.String("collaborator", c.ID.String()),
			zap.Error(err))
		metrics.EventRejected("malformed_edit")
		d.replyError(conn)
		return
	}
	d.evict(room, failed)
}

func (d *Dispatcher) handleLeave(conn *Conn) {
	if conn.collaborator == nil {
		d.violation(conn, "leave")
		return
	}
	d.leaveRoom(conn.collaborator)
	conn.collaborator = nil
}

// leaveRoom announces and removes c from its room, deleting the room when it
// empties so the roomcode returns to the pool.
func (d *Dispatcher) leaveRoom(c *Collaborator) {
	room, ok := d.rooms.Room(c.Roomcode())
	if !ok {
		return
	}
	remaining, removed, failed := room.Leave(c, models.ServerLeaveEvent{Collaborator: c.State()})
	if !removed {
		return
	}
	metrics.MemberLeft()
	d.log.Info("collaborator left",
		zap.String("roomcode", room.Roomcode),
		zap.String("collaborator", c.ID.String()))
	if remaining == 0 {
		d.deleteRoom(room)
		return
	}
	d.evict(room, failed)
}

// evict drops members whose sends failed, each treated as an implicit leave:
// survivors get a leave event, and the room is deleted when it empties. Leave
// broadcasts may themselves surface further dead members; the queue drains
// them all since each member is removed at most once.
func (d *Dispatcher) evict(room *Room, failed []*Collaborator) {
	queue := failed
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		remaining, removed := room.RemoveMember(c)
		if !removed {
			continue
		}
		metrics.BroadcastFailure()
		metrics.MemberLeft()
		d.log.Warn("dropping unreachable collaborator",
			zap.String("roomcode", room.Roomcode),
			zap.String("collaborator", c.ID.String()))
		if remaining == 0 {
			d.deleteRoom(room)
			return
		}
		queue = append(queue, room.Broadcast(models.ServerLeaveEvent{Collaborator: c.State()})...)
	}
}

func (d *Dispatcher) deleteRoom(room *Room) {
	d.rooms.DeleteRoom(room.Roomcode)
	metrics.RoomClosed()
	if d.notifier != nil {
		d.notifier.RoomDeleted(room.Roomcode)
	}
	d.log.Info("room closed", zap.String("roomcode", room.Roomcode))
}

// pruneStale clears connection state left behind by an eviction. The
// collaborator was already removed from its room (whose code may since have
// been reallocated), so the connection is treated as unjoined from here on.
func (d *Dispatcher) pruneStale(conn *Conn) {
	c := conn.collaborator
	if c == nil {
		return
	}
	if room, ok := d.rooms.Room(c.Roomcode()); ok && room.IsMember(c) {
		return
	}
	d.log.Warn("clearing evicted connection state",
		zap.String("roomcode", c.Roomcode()),
		zap.String("collaborator", c.ID.String()))
	conn.collaborator = nil
}

// joinedRoom resolves the connection's collaborator and room for events that
// require the joined state.
func (d *Dispatcher) joinedRoom(conn *Conn, event string) (*Collaborator, *Room, bool) {
	c := conn.collaborator
	if c == nil {
		d.violation(conn, event)
		return nil, nil, false
	}
	room, ok := d.rooms.Room(c.Roomcode())
	if !ok {
		d.log.Error("collaborator references missing room",
			zap.String("roomcode", c.Roomcode()),
			zap.String("collaborator", c.ID.String()))
		d.replyError(conn)
		return nil, nil, false
	}
	return c, room, true
}

func (d *Dispatcher) violation(conn *Conn, event string) {
	state := "unjoined"
	if conn.collaborator != nil {
		state = "joined"
	}
	d.log.Warn("protocol violation", zap.String("event", event), zap.String("state", state))
	metrics.EventRejected("protocol_violation")
	d.replyError(conn)
}

func (d *Dispatcher) replyError(conn *Conn) {
	d.reply(conn, models.ServerErrorEvent{})
}

// reply sends an event privately to the originating connection.
func (d *Dispatcher) reply(conn *Conn, evt models.ServerEvent) {
	payload, err := models.EncodeServerEvent(evt)
	if err != nil {
		d.log.Error("encode reply failed", zap.Error(err))
		return
	}
	if err := conn.client.Send(payload); err != nil {
		d.log.Warn("reply send failed", zap.Error(err))
	}
}
