package session

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/bensgilbert/Collaborate/internal/models"
)

// payloadCapture records serialized events sent to one client. Broadcast
// sends run concurrently, so access is locked.
type payloadCapture struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *payloadCapture) hook(b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]byte, len(b))
	copy(cp, b)
	p.payloads = append(p.payloads, cp)
	return nil
}

func (p *payloadCapture) list() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.payloads))
	copy(out, p.payloads)
	return out
}

func (p *payloadCapture) envelopes(t *testing.T) []models.Envelope {
	t.Helper()
	raw := p.list()
	out := make([]models.Envelope, 0, len(raw))
	for _, b := range raw {
		var env models.Envelope
		if err := json.Unmarshal(b, &env); err != nil {
			t.Fatalf("unmarshal captured payload %s: %v", b, err)
		}
		out = append(out, env)
	}
	return out
}

func (p *payloadCapture) types(t *testing.T) []string {
	t.Helper()
	envs := p.envelopes(t)
	out := make([]string, 0, len(envs))
	for _, env := range envs {
		out = append(out, env.Type)
	}
	return out
}

func failingHook([]byte) error { return errors.New("send failed") }

func newTestCollaborator(username string) (*Collaborator, *payloadCapture) {
	client := NewClient(nil, 0)
	capture := &payloadCapture{}
	client.SetSendHook(capture.hook)
	return NewCollaborator(username, client), capture
}
