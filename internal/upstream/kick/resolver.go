// Package kick adapts Kick chat into normalized relay events. Unlike the
// Twitch side there is no shared firehose: every channel gets its own
// pusher websocket, resolved and supervised independently.
package kick

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// Identity holds the identifiers resolved from a channel slug. The
// chatroom ID names the message topic, the channel ID the account-level
// topic.
type Identity struct {
	ChannelID  int64
	UserID     int64
	ChatroomID int64
}

// Resolver turns a channel slug into subscription identifiers.
type Resolver interface {
	Resolve(ctx context.Context, channel string) (Identity, error)
}

// APIResolver resolves against the Kick channels API.
type APIResolver struct {
	client *resty.Client
}

func NewAPIResolver(baseURL string) *APIResolver {
	return &APIResolver{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10*time.Second).
			SetHeader("Accept", "application/json"),
	}
}

func (r *APIResolver) Resolve(ctx context.Context, channel string) (Identity, error) {
	var out struct {
		ID       int64 `json:"id"`
		UserID   int64 `json:"user_id"`
		Chatroom struct {
			ID int64 `json:"id"`
		} `json:"chatroom"`
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v2/channels/" + url.PathEscape(channel))
	if err != nil {
		return Identity{}, fmt.Errorf("resolve channel %q: %w", channel, err)
	}
	if resp.IsError() {
		return Identity{}, fmt.Errorf("resolve channel %q: unexpected status %d", channel, resp.StatusCode())
	}
	if out.Chatroom.ID == 0 {
		return Identity{}, fmt.Errorf("resolve channel %q: response missing chatroom id", channel)
	}

	return Identity{
		ChannelID:  out.ID,
		UserID:     out.UserID,
		ChatroomID: out.Chatroom.ID,
	}, nil
}
