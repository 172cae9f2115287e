package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedMessage reports an envelope with an unknown type tag or data
// that does not match the variant's schema.
var ErrMalformedMessage = errors.New("malformed message")

// Envelope is the wire frame for every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ClientEvent is the closed set of messages a client may send. EventType
// returns the envelope tag of the variant.
type ClientEvent interface {
	EventType() string
}

type ClientChatEvent struct {
	Message string `json:"message"`
}

type ClientCreateEvent struct {
	Username string `json:"username"`
}

type ClientCursorEvent struct {
	Position           Position   `json:"position"`
	SecondaryPositions []Position `json:"secondaryPositions"`
}

type ClientInfoEvent struct {
	Roomcode string `json:"roomcode"`
}

type ClientJoinEvent struct {
	Username string `json:"username"`
	Roomcode string `json:"roomcode"`
}

type ClientLeaveEvent struct{}

type ClientUpdateEvent struct {
	Changes []Change `json:"changes"`
}

func (ClientChatEvent) EventType() string   { return "chat" }
func (ClientCreateEvent) EventType() string { return "create" }
func (ClientCursorEvent) EventType() string { return "cursor" }
func (ClientInfoEvent) EventType() string   { return "info" }
func (ClientJoinEvent) EventType() string   { return "join" }
func (ClientLeaveEvent) EventType() string  { return "leave" }
func (ClientUpdateEvent) EventType() string { return "update" }

// DecodeClientEvent parses a raw wire frame into its typed variant.
func DecodeClientEvent(raw []byte) (ClientEvent, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return DecodeClientEnvelope(env)
}

// DecodeClientEnvelope maps an envelope's type tag to its variant.
func DecodeClientEnvelope(env Envelope) (ClientEvent, error) {
	data := env.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	var (
		evt ClientEvent
		err error
	)
	switch env.Type {
	case "chat":
		var e ClientChatEvent
		err = json.Unmarshal(data, &e)
		evt = e
	case "create":
		var e ClientCreateEvent
		err = json.Unmarshal(data, &e)
		evt = e
	case "cursor":
		var e ClientCursorEvent
		err = json.Unmarshal(data, &e)
		evt = e
	case "info":
		var e ClientInfoEvent
		err = json.Unmarshal(data, &e)
		evt = e
	case "join":
		var e ClientJoinEvent
		err = json.Unmarshal(data, &e)
		evt = e
	case "leave":
		var e ClientLeaveEvent
		err = json.Unmarshal(data, &e)
		evt = e
	case "update":
		var e ClientUpdateEvent
		err = json.Unmarshal(data, &e)
		evt = e
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", ErrMalformedMessage, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s data: %v", ErrMalformedMessage, env.Type, err)
	}
	return evt, nil
}

// ServerEvent is the closed set of messages the server may send.
type ServerEvent interface {
	EventType() string
}

type ServerChatEvent struct {
	Collaborator CollaboratorState `json:"collaborator"`
	Message      string            `json:"message"`
}

type ServerCursorEvent struct {
	Collaborator CollaboratorState `json:"collaborator"`
}

type ServerErrorEvent struct{}

// ServerInfoEvent carries a room snapshot, or null for an unknown roomcode.
type ServerInfoEvent struct {
	Room *RoomState `json:"room"`
}

type ServerJoinEvent struct {
	Collaborator CollaboratorState `json:"collaborator"`
}

type ServerLeaveEvent struct {
	Collaborator CollaboratorState `json:"collaborator"`
}

type ServerSyncEvent struct {
	Collaborator CollaboratorState `json:"collaborator"`
	Room         RoomState         `json:"room"`
}

type ServerUpdateEvent struct {
	Collaborator CollaboratorState `json:"collaborator"`
	Changes      []Change          `json:"changes"`
}

func (ServerChatEvent) EventType() string   { return "chat" }
func (ServerCursorEvent) EventType() string { return "cursor" }
func (ServerErrorEvent) EventType() string  { return "error" }
func (ServerInfoEvent) EventType() string   { return "info" }
func (ServerJoinEvent) EventType() string   { return "join" }
func (ServerLeaveEvent) EventType() string  { return "leave" }
func (ServerSyncEvent) EventType() string   { return "sync" }
func (ServerUpdateEvent) EventType() string { return "update" }

// EncodeServerEvent serializes an event into its wire envelope.
func EncodeServerEvent(evt ServerEvent) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", evt.EventType(), err)
	}
	return json.Marshal(Envelope{Type: evt.EventType(), Data: data})
}
