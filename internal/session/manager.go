package session

import (
	"errors"
	"math/rand"
	"strconv"
	"sync"
)

// ErrCapacityExhausted is returned by CreateRoom when every roomcode is in use.
var ErrCapacityExhausted = errors.New("roomcode pool exhausted")

// Manager allocates roomcodes and indexes the live rooms. Codes are the 9000
// four-digit strings "1000".."9999", shuffled at startup so allocation order
// is not guessable.
type Manager struct {
	mu       sync.Mutex
	pool     []string
	rooms    map[string]*Room
	maxBytes int
}

func NewManager(maxDocumentBytes int) *Manager {
	pool := make([]string, 0, 9000)
	for i := 1000; i <= 9999; i++ {
		pool = append(pool, strconv.Itoa(i))
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return &Manager{
		pool:     pool,
		rooms:    make(map[string]*Room),
		maxBytes: maxDocumentBytes,
	}
}

// CreateRoom pops a code from the pool and registers an empty room under it.
func (m *Manager) CreateRoom() (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pool) == 0 {
		return nil, ErrCapacityExhausted
	}
	code := m.pool[len(m.pool)-1]
	m.pool = m.pool[:len(m.pool)-1]
	room := NewRoom(code, m.maxBytes)
	m.rooms[code] = room
	return room, nil
}

// Room looks up a live room by code.
func (m *Manager) Room(code string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[code]
	return room, ok
}

// DeleteRoom removes the room from the index and returns its code to the
// pool for reuse.
func (m *Manager) DeleteRoom(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[code]; !ok {
		return
	}
	delete(m.rooms, code)
	m.pool = append(m.pool, code)
}

func (m *Manager) ActiveRooms() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}
