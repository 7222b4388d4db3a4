package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blacktop/xfeed/internal/config"
	"github.com/blacktop/xfeed/internal/social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const castJSON = `{
  "hash": "0xabc123", "threadHash": "0xabc123",
  "author": {"fid": 42, "username": "bob", "displayName": "Bob"},
  "text": "hello from bob", "timestamp": 1700000000000,
  "replies": {"count": 1}, "reactions": {"count": 4}, "recasts": {"count": 2}
}`

type fakeUpstream struct {
	srv    *httptest.Server
	writes atomic.Int32
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /default-recommended-feed", func(w http.ResponseWriter, r *http.Request) {
		next := `{"cursor": "page-2"}`
		if r.URL.Query().Get("cursor") == "page-2" {
			next = `null`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": {"feed": [` + castJSON + `]}, "next": ` + next + `}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.writes.Add(1)
		http.Error(w, `{"errors": [{"message": "unexpected"}]}`, http.StatusTeapot)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func writeConfig(t *testing.T, rootURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "platform: warpcast\n" +
		"warpcast:\n  root_url: " + rootURL + "\n" +
		"sessions:\n  path: " + filepath.Join(dir, "sessions.yaml") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDiscoverPrintsJSONPage(t *testing.T) {
	up := newFakeUpstream(t)
	cfgPath := writeConfig(t, up.srv.URL)

	out, err := run(t, "--config", cfgPath, "discover", "--json")
	require.NoError(t, err)

	var page struct {
		Items []postView `json:"items"`
		Next  string     `json:"next"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "0xabc123", page.Items[0].ID)
	assert.Equal(t, "bob", page.Items[0].Author.Handle)
	assert.Equal(t, 1, page.Items[0].Stats.Comments)
	assert.Equal(t, "https://warpcast.com/bob/0xabc123", page.Items[0].URL)
	assert.Equal(t, "page-2", page.Next)

	out, err = run(t, "--config", cfgPath, "discover", "--cursor", "page-2")
	require.NoError(t, err)
	assert.Contains(t, out, "hello from bob")
	assert.NotContains(t, out, "--cursor")
}

func TestPublishDryRunDoesNotWrite(t *testing.T) {
	up := newFakeUpstream(t)
	cfgPath := writeConfig(t, up.srv.URL)
	t.Setenv("XFEED_MASTODON_SERVER", "https://mastodon.example")
	t.Setenv("XFEED_MASTODON_ACCESS_TOKEN", "token")

	out, err := run(t, "--config", cfgPath, "post", "publish", "gm", "--crosspost", "mastodon", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, `[dry-run] would publish to warpcast: "gm"`)
	assert.Contains(t, out, `[dry-run] would share to mastodon: "gm"`)
	assert.Zero(t, up.writes.Load())
}

func TestPublishRejectsUnconfiguredTargetsFirst(t *testing.T) {
	up := newFakeUpstream(t)
	cfgPath := writeConfig(t, up.srv.URL)

	_, err := run(t, "--config", cfgPath, "post", "publish", "gm", "--crosspost", "twitter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "XFEED_TWITTER_CONSUMER_KEY")
	assert.Zero(t, up.writes.Load())
}

func TestPublishRequiresText(t *testing.T) {
	up := newFakeUpstream(t)
	cfgPath := writeConfig(t, up.srv.URL)

	_, err := run(t, "--config", cfgPath, "post", "publish")
	assert.EqualError(t, err, "text is required")

	_, err = run(t, "--config", cfgPath, "post", "publish", "a", "--message", "b")
	assert.ErrorContains(t, err, "not both")
}

func TestPostListActivityFlags(t *testing.T) {
	up := newFakeUpstream(t)
	cfgPath := writeConfig(t, up.srv.URL)

	_, err := run(t, "--config", cfgPath, "post", "list", "42", "--liked")
	assert.ErrorIs(t, err, social.ErrUnsupported)
	_, err = run(t, "--config", cfgPath, "post", "list", "42", "--replies")
	assert.ErrorIs(t, err, social.ErrUnsupported)

	_, err = run(t, "--config", cfgPath, "post", "list", "42", "--replies", "--liked")
	assert.ErrorContains(t, err, "none of the others can be")
	assert.Zero(t, up.writes.Load())
}

func TestStatusWithoutSession(t *testing.T) {
	up := newFakeUpstream(t)
	cfgPath := writeConfig(t, up.srv.URL)

	out, err := run(t, "--config", cfgPath, "status")
	require.NoError(t, err)
	assert.Equal(t, "warpcast: not signed in\n", out)
}

func TestUnknownPlatform(t *testing.T) {
	up := newFakeUpstream(t)
	cfgPath := writeConfig(t, up.srv.URL)

	_, err := run(t, "--config", cfgPath, "--platform", "myspace", "discover")
	assert.ErrorContains(t, err, `unsupported platform "myspace"`)
}

func TestBuildTargetsJoinsFailures(t *testing.T) {
	_, err := buildTargets(context.Background(), &config.Config{}, []string{"mastodon", "twitter"})
	require.Error(t, err)

	var missing config.MissingConfigError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, err.Error(), "mastodon: ")
	assert.Contains(t, err.Error(), "twitter: ")

	targets, err := buildTargets(context.Background(), &config.Config{}, nil)
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestIndicatorFor(t *testing.T) {
	assert.True(t, indicatorFor("").IsRoot())

	ind := indicatorFor(" abc ")
	assert.Equal(t, "abc", ind.Cursor())
	assert.Equal(t, 1, ind.Depth())
}

func TestPrintProfilesText(t *testing.T) {
	var out bytes.Buffer
	a := &app{out: &out}
	page := social.NewPageable([]social.Profile{
		{ProfileID: "42", Handle: "bob", DisplayName: "Bob"},
		{ProfileID: "43", Handle: "carol"},
	}, social.NewIndicator(), social.NextIndicator(social.NewIndicator(), "next-1"))

	require.NoError(t, a.printProfiles(page))
	assert.Equal(t, "42  @bob  Bob\n43  @carol  carol\n\nmore: --cursor next-1\n", out.String())
}

func TestViewNotification(t *testing.T) {
	post := &social.Post{PostID: "0x1", Timestamp: time.Unix(0, 0), Author: social.Profile{ProfileID: "0x01", Handle: "alice"}}
	v := viewNotification(&social.ReactionNotification{
		ID:      "n1",
		Reactor: social.Profile{ProfileID: "0x02", Handle: "bob"},
		Post:    post,
	})
	assert.Equal(t, social.NotificationReaction, v.Kind)
	assert.Equal(t, "bob", v.Actor.Handle)
	assert.Equal(t, "0x1", v.Post.ID)
}

const testKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestPromptWalletUsesConfiguredKey(t *testing.T) {
	w := newPromptWallet(config.WalletConfig{PrivateKey: testKey})
	w.prompt = func() (string, error) {
		t.Fatal("prompted despite a configured key")
		return "", nil
	}
	addr, err := w.Address(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", addr)
}

func TestPromptWalletWithoutKey(t *testing.T) {
	calls := 0
	w := newPromptWallet(config.WalletConfig{})
	w.prompt = func() (string, error) {
		calls++
		return "", errors.New("not a terminal")
	}
	_, err := w.SignMessage(context.Background(), "hi")
	assert.ErrorIs(t, err, social.ErrNoWalletConnected)
	_, err = w.Address(context.Background())
	assert.ErrorIs(t, err, social.ErrNoWalletConnected)
	assert.Equal(t, 1, calls)
}
