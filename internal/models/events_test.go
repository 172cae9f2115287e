package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeClientEventVariants(t *testing.T) {
	evt, err := DecodeClientEvent([]byte(`{"type":"create","data":{"username":"alice"}}`))
	if err != nil {
		t.Fatalf("decode create: %v", err)
	}
	create, ok := evt.(ClientCreateEvent)
	if !ok || create.Username != "alice" {
		t.Fatalf("unexpected create event: %#v", evt)
	}

	evt, err = DecodeClientEvent([]byte(`{"type":"join","data":{"username":"bob","roomcode":"1234"}}`))
	if err != nil {
		t.Fatalf("decode join: %v", err)
	}
	join, ok := evt.(ClientJoinEvent)
	if !ok || join.Username != "bob" || join.Roomcode != "1234" {
		t.Fatalf("unexpected join event: %#v", evt)
	}

	evt, err = DecodeClientEvent([]byte(`{"type":"cursor","data":{"position":{"column":3,"lineNumber":1},"secondaryPositions":[{"column":0,"lineNumber":0}]}}`))
	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}
	cursor, ok := evt.(ClientCursorEvent)
	if !ok || cursor.Position.Column != 3 || cursor.Position.LineNumber != 1 || len(cursor.SecondaryPositions) != 1 {
		t.Fatalf("unexpected cursor event: %#v", evt)
	}

	evt, err = DecodeClientEvent([]byte(`{"type":"update","data":{"changes":[{"range":{"startLineNumber":0,"startColumn":0,"endLineNumber":0,"endColumn":0},"rangeOffset":2,"rangeLength":1,"text":"x"}]}}`))
	if err != nil {
		t.Fatalf("decode update: %v", err)
	}
	update, ok := evt.(ClientUpdateEvent)
	if !ok || len(update.Changes) != 1 {
		t.Fatalf("unexpected update event: %#v", evt)
	}
	if update.Changes[0].RangeOffset != 2 || update.Changes[0].RangeLength != 1 || update.Changes[0].Text != "x" {
		t.Fatalf("unexpected change: %#v", update.Changes[0])
	}
}

func TestDecodeClientEventLeaveWithoutData(t *testing.T) {
	evt, err := DecodeClientEvent([]byte(`{"type":"leave"}`))
	if err != nil {
		t.Fatalf("decode leave: %v", err)
	}
	if _, ok := evt.(ClientLeaveEvent); !ok {
		t.Fatalf("unexpected leave event: %#v", evt)
	}
}

func TestDecodeClientEventUnknownType(t *testing.T) {
	_, err := DecodeClientEvent([]byte(`{"type":"teleport","data":{}}`))
	if !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("expected ErrMalformedMessage, got %v", err)
	}
}

func TestDecodeClientEventInvalidJSON(t *testing.T) {
	_, err := DecodeClientEvent([]byte(`{"type":`))
	if !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("expected ErrMalformedMessage, got %v", err)
	}
}

func TestDecodeClientEventSchemaMismatch(t *testing.T) {
	_, err := DecodeClientEvent([]byte(`{"type":"update","data":{"changes":42}}`))
	if !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("expected ErrMalformedMessage, got %v", err)
	}
}

func TestEncodeServerErrorEvent(t *testing.T) {
	payload, err := EncodeServerEvent(ServerErrorEvent{})
	if err != nil {
		t.Fatalf("encode error event: %v", err)
	}
	if string(payload) != `{"type":"error","data":{}}` {
		t.Fatalf("unexpected payload: %s", payload)
	}
}

func TestEncodeServerInfoEventNullRoom(t *testing.T) {
	payload, err := EncodeServerEvent(ServerInfoEvent{Room: nil})
	if err != nil {
		t.Fatalf("encode info event: %v", err)
	}
	if string(payload) != `{"type":"info","data":{"room":null}}` {
		t.Fatalf("unexpected payload: %s", payload)
	}
}

func TestEncodeServerSyncEventWireShape(t *testing.T) {
	collab := CollaboratorState{
		ID:                       "id-1",
		Username:                 "alice",
		CursorSecondaryPositions: []Position{},
	}
	payload, err := EncodeServerEvent(ServerSyncEvent{
		Collaborator: collab,
		Room:         RoomState{Roomcode: "1234", Code: "", People: []CollaboratorState{collab}},
	})
	if err != nil {
		t.Fatalf("encode sync event: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != "sync" {
		t.Fatalf("expected sync envelope, got %q", env.Type)
	}

	var data struct {
		Collaborator map[string]json.RawMessage `json:"collaborator"`
		Room         map[string]json.RawMessage `json:"room"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	for _, key := range []string{"id", "username", "cursorPosition", "cursorSecondaryPositions"} {
		if _, ok := data.Collaborator[key]; !ok {
			t.Fatalf("collaborator missing wire field %q", key)
		}
	}
	for _, key := range []string{"roomcode", "code", "people"} {
		if _, ok := data.Room[key]; !ok {
			t.Fatalf("room missing wire field %q", key)
		}
	}
}
