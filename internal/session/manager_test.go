package session

import (
	"errors"
	"slices"
	"testing"
)

const poolSize = 9000

func TestCreateRoomCodesAreUniqueUntilExhaustion(t *testing.T) {
	m := NewManager(0)
	seen := make(map[string]bool, poolSize)

	for i := 0; i < poolSize; i++ {
		room, err := m.CreateRoom()
		if err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
		code := room.Roomcode
		if len(code) != 4 || code < "1000" || code > "9999" {
			t.Fatalf("invalid roomcode %q", code)
		}
		if seen[code] {
			t.Fatalf("duplicate roomcode %q", code)
		}
		seen[code] = true
	}

	if _, err := m.CreateRoom(); !errors.Is(err, ErrCapacityExhausted) {
		t.Fatalf("expected ErrCapacityExhausted, got %v", err)
	}
}

func TestDeleteRoomReturnsCodeToPool(t *testing.T) {
	m := NewManager(0)
	for i := 0; i < poolSize; i++ {
		if _, err := m.CreateRoom(); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	var freed string
	for code := range m.rooms {
		freed = code
		break
	}
	m.DeleteRoom(freed)

	if _, ok := m.Room(freed); ok {
		t.Fatalf("expected room %q to be gone", freed)
	}
	room, err := m.CreateRoom()
	if err != nil {
		t.Fatalf("create after delete failed: %v", err)
	}
	if room.Roomcode != freed {
		t.Fatalf("expected freed code %q to be reallocated, got %q", freed, room.Roomcode)
	}
}

func TestRoomLookup(t *testing.T) {
	m := NewManager(0)
	room, err := m.CreateRoom()
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, ok := m.Room(room.Roomcode)
	if !ok || got != room {
		t.Fatalf("expected lookup to return the created room")
	}
	if _, ok := m.Room("0000"); ok {
		t.Fatalf("expected lookup miss for unknown code")
	}
	if m.ActiveRooms() != 1 {
		t.Fatalf("expected 1 active room, got %d", m.ActiveRooms())
	}

	m.DeleteRoom(room.Roomcode)
	if _, ok := m.Room(room.Roomcode); ok {
		t.Fatalf("expected room gone after delete")
	}
	if !slices.Contains(m.pool, room.Roomcode) {
		t.Fatalf("expected code %q back in the pool", room.Roomcode)
	}
}

func TestDeleteUnknownCodeDoesNotGrowPool(t *testing.T) {
	m := NewManager(0)
	before := len(m.pool)
	m.DeleteRoom("abcd")
	if len(m.pool) != before {
		t.Fatalf("pool grew from %d to %d on unknown delete", before, len(m.pool))
	}
}
