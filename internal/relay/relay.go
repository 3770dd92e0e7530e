// Package relay routes downstream joins to the hub and provisions the
// matching upstream adapter the first time a room comes into existence.
package relay

import (
	"context"

	"github.com/streamoverlay/relay/internal/audit"
	"github.com/streamoverlay/relay/internal/domain"
	"github.com/streamoverlay/relay/internal/hub"
	"github.com/streamoverlay/relay/pkg/log"
)

// Subscriber is the one action an upstream adapter exposes to the join
// path. Implementations must make repeated calls for the same channel
// no-ops.
type Subscriber interface {
	Subscribe(channel string)
}

type Relay struct {
	hub      *hub.Hub
	adapters map[string]Subscriber
}

// New wires the relay as the hub's provisioner. adapters maps platform
// identifiers to their upstream adapter.
func New(h *hub.Hub, adapters map[string]Subscriber) *Relay {
	r := &Relay{hub: h, adapters: adapters}
	h.SetProvisioner(r.Provision)
	return r
}

// Join records room membership. It returns as soon as membership is
// visible; upstream provisioning for a brand-new room proceeds in the
// background, so events arriving before the subscription completes are
// missed (best effort).
func (r *Relay) Join(ctx context.Context, c *hub.Client, key domain.RoomKey) {
	r.hub.Join(c, key)
	audit.LogWithRoom(ctx, audit.ActionJoinRoom, c.ID, key.String(), "viewer joined room")
}

// Provision starts the upstream subscription for a newly created room.
// Unknown platforms leave the room unprovisioned; dispatch to it simply
// never happens.
func (r *Relay) Provision(key domain.RoomKey) {
	sub, ok := r.adapters[key.Platform]
	if !ok {
		l := log.L()
		l.Warn().
			Str(log.FieldPlatform, key.Platform).
			Str(log.FieldChannel, key.Channel).
			Msg("no upstream adapter for platform")
		return
	}
	audit.LogWithRoom(context.Background(), audit.ActionProvision, "", key.String(), "provisioning upstream subscription")
	sub.Subscribe(key.Channel)
}
