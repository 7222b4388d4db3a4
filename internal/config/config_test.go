package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, "lens", cfg.Platform)
	assert.Equal(t, "https://api-v2.lens.dev", cfg.Lens.Endpoint)
	assert.Equal(t, "https://client.warpcast.com/v2", cfg.Warpcast.RootURL)
	assert.Equal(t, 2*time.Second, cfg.Warpcast.PollInterval)
	assert.Equal(t, "https://bsky.social", cfg.Bluesky.PDSURL)
	assert.NotEmpty(t, cfg.Sessions.Path)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
platform: warpcast
wallet:
  private_key: " 0xabc "
warpcast:
  signin_url: https://example.com/api/warpcast/signin
  poll_interval: 500ms
mastodon:
  server: https://mastodon.social
  access_token: tok
`)
	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "warpcast", cfg.Platform)
	assert.Equal(t, "0xabc", cfg.Wallet.PrivateKey)
	assert.Equal(t, "https://example.com/api/warpcast/signin", cfg.Warpcast.SigninURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Warpcast.PollInterval)
	assert.Equal(t, "https://client.warpcast.com/v2", cfg.Warpcast.RootURL)
	assert.NoError(t, cfg.Mastodon.Require())
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "warpcast:\n  root_url: https://file.example\n")
	t.Setenv("XFEED_WARPCAST_ROOT_URL", "https://env.example")
	t.Setenv("XFEED_TWITTER_ACCESS_TOKEN_SECRET", "shh")
	t.Setenv("XFEED_PLATFORM", "warpcast")

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example", cfg.Warpcast.RootURL)
	assert.Equal(t, "shh", cfg.Twitter.AccessTokenSecret)
	assert.Equal(t, "warpcast", cfg.Platform)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "wallet.private_key", envKey("XFEED_WALLET_PRIVATE_KEY"))
	assert.Equal(t, "bluesky.pds_url", envKey("XFEED_BLUESKY_PDS_URL"))
	assert.Equal(t, "platform", envKey("XFEED_PLATFORM"))
}

func TestRequireNamesEnvVars(t *testing.T) {
	err := TwitterConfig{ConsumerKey: "k"}.Require()
	var missing MissingConfigError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "twitter", missing.Section)
	assert.Equal(t, []string{"consumer_secret", "access_token", "access_token_secret"}, missing.Keys)
	assert.Contains(t, err.Error(), "XFEED_TWITTER_ACCESS_TOKEN_SECRET")

	assert.Error(t, WalletConfig{}.Require())
	assert.Error(t, WarpcastConfig{}.RequireSignin())
	assert.Error(t, BlueskyConfig{Handle: "a"}.Require())
}
