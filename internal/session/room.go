package session

import (
	"sync"

	"github.com/bensgilbert/Collaborate/internal/models"
)

// Room holds the authoritative document text and the live member set. Its
// mutex is held for the full handling of any event that touches the room, so
// update offsets always apply against the current document and members never
// observe interleaved event orders.
type Room struct {
	Roomcode string

	mu       sync.Mutex
	code     string // document text; serialized as "code"
	members  []*Collaborator
	maxBytes int
}

func NewRoom(roomcode string, maxBytes int) *Room {
	return &Room{Roomcode: roomcode, maxBytes: maxBytes}
}

// Join broadcasts announce to the existing members (skipped when nil), then
// adds c and returns the room snapshot including c. New members therefore
// never miss an event that is absent from their snapshot.
func (r *Room) Join(c *Collaborator, announce models.ServerEvent) (models.RoomState, []*Collaborator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var failed []*Collaborator
	if announce != nil {
		failed = r.broadcastLocked(announce)
	}
	r.addMemberLocked(c)
	return r.snapshotLocked(), failed
}

// Leave broadcasts evt to every member, c included, then removes c. A
// non-member leave is a no-op with removed=false.
func (r *Room) Leave(c *Collaborator, evt models.ServerEvent) (remaining int, removed bool, failed []*Collaborator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isMemberLocked(c) {
		return len(r.members), false, nil
	}
	failed = r.broadcastLocked(evt)
	r.removeMemberLocked(c)
	return len(r.members), true, failed
}

// Update applies the change batch to the document and, only on success,
// broadcasts evt to all members. Rejection leaves the document untouched.
func (r *Room) Update(changes []models.Change, evt models.ServerEvent) ([]*Collaborator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, err := models.ApplyChanges(r.code, changes, r.maxBytes)
	if err != nil {
		return nil, err
	}
	r.code = next
	return r.broadcastLocked(evt), nil
}

// Broadcast delivers evt to every current member and returns the members
// whose sends failed. One dead connection never aborts delivery to the rest.
func (r *Room) Broadcast(evt models.ServerEvent) []*Collaborator {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.broadcastLocked(evt)
}

// RemoveMember drops c from the member set. Removing a non-member is a no-op.
func (r *Room) RemoveMember(c *Collaborator) (remaining int, removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isMemberLocked(c) {
		return len(r.members), false
	}
	r.removeMemberLocked(c)
	return len(r.members), true
}

// IsMember reports whether c currently belongs to the room.
func (r *Room) IsMember(c *Collaborator) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isMemberLocked(c)
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *Room) Document() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.code
}

// Snapshot returns the wire view of the room.
func (r *Room) Snapshot() models.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() models.RoomState {
	people := make([]models.CollaboratorState, 0, len(r.members))
	for _, m := range r.members {
		people = append(people, m.State())
	}
	return models.RoomState{Roomcode: r.Roomcode, Code: r.code, People: people}
}

func (r *Room) addMemberLocked(c *Collaborator) {
	if r.isMemberLocked(c) {
		return
	}
	r.members = append(r.members, c)
}

func (r *Room) removeMemberLocked(c *Collaborator) {
	for i, m := range r.members {
		if m.ID == c.ID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return
		}
	}
}

func (r *Room) isMemberLocked(c *Collaborator) bool {
	for _, m := range r.members {
		if m.ID == c.ID {
			return true
		}
	}
	return false
}

// broadcastLocked serializes evt once and sends it to every member
// concurrently. Individual send failures are collected, never propagated.
func (r *Room) broadcastLocked(evt models.ServerEvent) []*Collaborator {
	payload, err := models.EncodeServerEvent(evt)
	if err != nil {
		return nil
	}

	var (
		wg     sync.WaitGroup
		failMu sync.Mutex
		failed []*Collaborator
	)
	for _, m := range r.members {
		wg.Add(1)
		go func(m *Collaborator) {
			defer wg.Done()
			if err := m.Send(payload); err != nil {
				failMu.Lock()
				failed = append(failed, m)
				failMu.Unlock()
			}
		}(m)
	}
	wg.Wait()
	return failed
}
