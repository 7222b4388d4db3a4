package sessionstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blacktop/xfeed/internal/social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newSession(platform social.Platform, token string, ttl time.Duration) *social.Session {
	return social.NewSession(platform, nil, social.Credentials{
		ProfileID: "0x01",
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sessions.yaml")
	s := New(path)

	require.NoError(t, s.Save(newSession(social.PlatformLens, "lens-token", time.Hour)))
	require.NoError(t, s.Save(newSession(social.PlatformWarpcast, "wc-token", time.Hour)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	creds, ok, err := New(path).Load(social.PlatformLens, now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "lens-token", creds.Token)
	assert.Equal(t, "0x01", creds.ProfileID)
	assert.True(t, creds.ExpiresAt.Equal(now.Add(time.Hour)))

	creds, ok, err = s.Load(social.PlatformWarpcast, now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "wc-token", creds.Token)
}

func TestLoadIgnoresExpired(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "sessions.yaml"))
	require.NoError(t, s.Save(newSession(social.PlatformLens, "old", time.Minute)))

	_, ok, err := s.Load(social.PlatformLens, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "none.yaml"))
	_, ok, err := s.Load(social.PlatformLens, now)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, s.Delete(social.PlatformLens))
}

func TestDelete(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "sessions.yaml"))
	require.NoError(t, s.Save(newSession(social.PlatformLens, "a", time.Hour)))
	require.NoError(t, s.Save(newSession(social.PlatformWarpcast, "b", time.Hour)))

	require.NoError(t, s.Delete(social.PlatformLens))

	_, ok, err := s.Load(social.PlatformLens, now)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.Load(social.PlatformWarpcast, now)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sessions: [unclosed"), 0o600))

	_, _, err := New(path).Load(social.PlatformLens, now)
	assert.Error(t, err)
}
