// Package config loads xfeed settings with priority env > file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable, e.g. XFEED_WALLET_PRIVATE_KEY.
const EnvPrefix = "XFEED_"

type Config struct {
	Platform string         `koanf:"platform"`
	Wallet   WalletConfig   `koanf:"wallet"`
	Lens     LensConfig     `koanf:"lens"`
	Warpcast WarpcastConfig `koanf:"warpcast"`
	Sessions SessionsConfig `koanf:"sessions"`
	Bluesky  BlueskyConfig  `koanf:"bluesky"`
	Mastodon MastodonConfig `koanf:"mastodon"`
	Twitter  TwitterConfig  `koanf:"twitter"`
}

type WalletConfig struct {
	PrivateKey string `koanf:"private_key"`
}

type LensConfig struct {
	Endpoint string `koanf:"endpoint"`
}

type WarpcastConfig struct {
	RootURL      string        `koanf:"root_url"`
	SigninURL    string        `koanf:"signin_url"`
	PollInterval time.Duration `koanf:"poll_interval"`
}

type SessionsConfig struct {
	Path string `koanf:"path"`
}

type BlueskyConfig struct {
	Handle      string `koanf:"handle"`
	AppPassword string `koanf:"app_password"`
	PDSURL      string `koanf:"pds_url"`
}

type MastodonConfig struct {
	Server       string `koanf:"server"`
	AccessToken  string `koanf:"access_token"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
}

type TwitterConfig struct {
	ConsumerKey       string `koanf:"consumer_key"`
	ConsumerSecret    string `koanf:"consumer_secret"`
	AccessToken       string `koanf:"access_token"`
	AccessTokenSecret string `koanf:"access_token_secret"`
	Debug             bool   `koanf:"debug"`
}

func defaults() map[string]any {
	return map[string]any{
		"platform": "lens",
		"lens":     map[string]any{"endpoint": "https://api-v2.lens.dev"},
		"warpcast": map[string]any{
			"root_url":      "https://client.warpcast.com/v2",
			"poll_interval": "2s",
		},
		"bluesky":  map[string]any{"pds_url": "https://bsky.social"},
		"sessions": map[string]any{"path": DefaultSessionsPath()},
	}
}

// DefaultPath is the config file read when none is given.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultSessionsPath is where sessions persist between runs.
func DefaultSessionsPath() string {
	return filepath.Join(configDir(), "sessions.yaml")
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "xfeed")
}

// envKey maps XFEED_WARPCAST_ROOT_URL to warpcast.root_url. Only the first
// underscore after the prefix separates section from key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if section, key, ok := strings.Cut(s, "_"); ok {
		return section + "." + key
	}
	return s
}

// Load reads path (if non-empty) and the environment. A missing file is only
// an error when explicit is set.
func Load(path string, explicit bool) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(mapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.trim()
	return &cfg, nil
}

func (c *Config) trim() {
	for _, s := range []*string{
		&c.Platform, &c.Wallet.PrivateKey, &c.Lens.Endpoint,
		&c.Warpcast.RootURL, &c.Warpcast.SigninURL, &c.Sessions.Path,
		&c.Bluesky.Handle, &c.Bluesky.AppPassword, &c.Bluesky.PDSURL,
		&c.Mastodon.Server, &c.Mastodon.AccessToken, &c.Mastodon.ClientID, &c.Mastodon.ClientSecret,
		&c.Twitter.ConsumerKey, &c.Twitter.ConsumerSecret, &c.Twitter.AccessToken, &c.Twitter.AccessTokenSecret,
	} {
		*s = strings.TrimSpace(*s)
	}
}

// require reports the keys of section whose values are empty.
func require(section string, pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return MissingConfigError{Section: section, Keys: missing}
}

func (w WalletConfig) Require() error {
	return require("wallet", "private_key", w.PrivateKey)
}

func (w WarpcastConfig) RequireSignin() error {
	return require("warpcast", "signin_url", w.SigninURL)
}

func (b BlueskyConfig) Require() error {
	return require("bluesky", "handle", b.Handle, "app_password", b.AppPassword, "pds_url", b.PDSURL)
}

func (m MastodonConfig) Require() error {
	return require("mastodon", "server", m.Server, "access_token", m.AccessToken)
}

func (t TwitterConfig) Require() error {
	return require("twitter",
		"consumer_key", t.ConsumerKey,
		"consumer_secret", t.ConsumerSecret,
		"access_token", t.AccessToken,
		"access_token_secret", t.AccessTokenSecret,
	)
}
