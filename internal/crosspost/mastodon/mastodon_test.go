package mastodon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blacktop/xfeed/internal/config"
	"github.com/blacktop/xfeed/internal/crosspost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresServerAndToken(t *testing.T) {
	_, err := New(context.Background(), config.MastodonConfig{Server: "https://mastodon.social"})
	var missing config.MissingConfigError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"access_token"}, missing.Keys)
}

func TestSharePostsStatus(t *testing.T) {
	var status, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/statuses", r.URL.Path)
		require.NoError(t, r.ParseForm())
		status = r.PostForm.Get("status")
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "1", "content": "ok"}`))
	}))
	defer srv.Close()

	target, err := New(context.Background(), config.MastodonConfig{Server: srv.URL, AccessToken: "tok"})
	require.NoError(t, err)

	require.NoError(t, target.Share(context.Background(), crosspost.Request{Text: "gm", Link: "https://warpcast.com/bob/0x1"}))
	assert.Equal(t, "gm\n\nhttps://warpcast.com/bob/0x1", status)
	assert.Equal(t, "Bearer tok", auth)
}

func TestShareMissingImage(t *testing.T) {
	target, err := New(context.Background(), config.MastodonConfig{Server: "http://127.0.0.1:0", AccessToken: "tok"})
	require.NoError(t, err)

	err = target.Share(context.Background(), crosspost.Request{Text: "gm", ImagePath: "/no/such/file.png"})
	var verr crosspost.ValidationError
	assert.ErrorAs(t, err, &verr)
}
