package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhook(t *testing.T, status int, received chan<- DiscordMessage) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg DiscordMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err == nil {
			received <- msg
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDiscordSend(t *testing.T) {
	t.Parallel()

	received := make(chan DiscordMessage, 3)
	server := webhook(t, http.StatusNoContent, received)
	d := &Discord{SuccessURL: server.URL, ErrorURL: server.URL, Client: server.Client()}

	require.NoError(t, d.SendSuccess("labeled 12 tiles"))
	msg := <-received
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "labeled 12 tiles", msg.Embeds[0].Description)
	assert.Equal(t, 65280, msg.Embeds[0].Color)

	require.NoError(t, d.SendWarn("3 rows skipped"))
	msg = <-received
	assert.Equal(t, 16776960, msg.Embeds[0].Color)

	require.NoError(t, d.SendError("boom"))
	msg = <-received
	assert.Contains(t, msg.Embeds[0].Description, "boom")
}

func TestDiscordEmptyURLIsNoop(t *testing.T) {
	t.Parallel()

	d := &Discord{}
	assert.NoError(t, d.SendSuccess("ok"))
	assert.NoError(t, d.SendError("fail"))
}

func TestDiscordBadStatus(t *testing.T) {
	t.Parallel()

	server := webhook(t, http.StatusInternalServerError, make(chan DiscordMessage, 1))
	d := &Discord{ErrorURL: server.URL, Client: server.Client()}

	err := d.SendError("fail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
