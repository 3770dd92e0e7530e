package hub

import (
	"context"
	"time"

	"github.com/streamoverlay/relay/internal/audit"
	"github.com/streamoverlay/relay/pkg/log"
)

// Supervisor is a two-tick dead-peer detector for downstream connections.
// Each sweep terminates any client whose liveness flag is still cleared
// from the previous sweep, then clears the flag on the rest and probes
// them. A client that answers no probe for a full interval is gone within
// two intervals.
type Supervisor struct {
	hub      *Hub
	interval time.Duration
}

func NewSupervisor(h *Hub, interval time.Duration) *Supervisor {
	return &Supervisor{hub: h, interval: interval}
}

func (s *Supervisor) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep runs one supervision pass over all registered clients.
func (s *Supervisor) Sweep() {
	for _, c := range s.hub.Clients() {
		if !c.Session.Alive() {
			audit.Log(context.Background(), audit.ActionTerminate, c.ID, "terminating unresponsive client")
			c.Terminate()
			continue
		}
		c.Session.SetAlive(false)
		if err := c.Ping(); err != nil {
			l := log.L()
			l.Debug().Err(err).Str(log.FieldClientID, c.ID).Msg("ping failed")
		}
	}
}
