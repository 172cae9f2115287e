package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/bensgilbert/Collaborate/internal/models"
)

// Collaborator is one connected editor session: a stable identity, cursor
// state, and the connection handle used to reach it. It keeps only the owning
// room's code, resolved through the Manager, never a room pointer.
type Collaborator struct {
	ID       uuid.UUID
	Username string

	mu                 sync.Mutex
	cursorPosition     models.Position
	secondaryPositions []models.Position
	roomcode           string

	client *Client
}

func NewCollaborator(username string, client *Client) *Collaborator {
	return &Collaborator{ID: uuid.New(), Username: username, client: client}
}

// Send enqueues one serialized event on the collaborator's connection.
func (c *Collaborator) Send(payload []byte) error {
	return c.client.Send(payload)
}

func (c *Collaborator) SetCursor(pos models.Position, secondary []models.Position) {
	c.mu.Lock()
	c.cursorPosition = pos
	c.secondaryPositions = secondary
	c.mu.Unlock()
}

func (c *Collaborator) Roomcode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomcode
}

func (c *Collaborator) setRoomcode(code string) {
	c.mu.Lock()
	c.roomcode = code
	c.mu.Unlock()
}

// State snapshots the collaborator for the wire.
func (c *Collaborator) State() models.CollaboratorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	secondary := make([]models.Position, len(c.secondaryPositions))
	copy(secondary, c.secondaryPositions)
	return models.CollaboratorState{
		ID:                       c.ID.String(),
		Username:                 c.Username,
		CursorPosition:           c.cursorPosition,
		CursorSecondaryPositions: secondary,
	}
}
