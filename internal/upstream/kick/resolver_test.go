package kick

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIResolverResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/channels/somechannel", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"user_id":11,"chatroom":{"id":42}}`))
	}))
	defer srv.Close()

	id, err := NewAPIResolver(srv.URL).Resolve(context.Background(), "somechannel")
	require.NoError(t, err)
	assert.Equal(t, Identity{ChannelID: 7, UserID: 11, ChatroomID: 42}, id)
}

func TestAPIResolverNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewAPIResolver(srv.URL).Resolve(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestAPIResolverMissingChatroom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"user_id":11}`))
	}))
	defer srv.Close()

	_, err := NewAPIResolver(srv.URL).Resolve(context.Background(), "broken")
	assert.Error(t, err)
}
