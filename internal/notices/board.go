// Package notices queues user-facing alerts until the player UI collects them.
package notices

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notice is a single alert shown to the user.
type Notice struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Board collects notices. The zero value is ready to use.
type Board struct {
	mu      sync.Mutex
	pending []Notice
}

// Alert posts a notice for the user.
func (b *Board) Alert(message string) {
	n := Notice{ID: uuid.NewString(), Message: message, CreatedAt: time.Now().UTC()}

	b.mu.Lock()
	b.pending = append(b.pending, n)
	b.mu.Unlock()

	log.Warn().Str("notice_id", n.ID).Msg(message)
}

// Drain returns pending notices in posting order and clears them.
func (b *Board) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.pending
	b.pending = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}
