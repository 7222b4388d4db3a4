// Package mastodon shares posts as toots.
package mastodon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/blacktop/xfeed/internal/config"
	"github.com/blacktop/xfeed/internal/crosspost"
	mastodonapi "github.com/mattn/go-mastodon"
)

const (
	targetName     = "mastodon"
	requestTimeout = 30 * time.Second
)

// Target shares to one Mastodon account.
type Target struct {
	client *mastodonapi.Client
}

func New(ctx context.Context, cfg config.MastodonConfig) (crosspost.Target, error) {
	if err := cfg.Require(); err != nil {
		return nil, err
	}
	client := mastodonapi.NewClient(&mastodonapi.Config{
		Server:       cfg.Server,
		AccessToken:  cfg.AccessToken,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	})
	client.Timeout = requestTimeout
	return &Target{client: client}, nil
}

func (t *Target) Name() string { return targetName }

func (t *Target) Share(ctx context.Context, req crosspost.Request) error {
	toot := &mastodonapi.Toot{Status: req.Status()}
	if req.ImagePath != "" {
		media, err := t.attach(ctx, req.ImagePath, req.ImageAlt)
		if err != nil {
			return err
		}
		toot.MediaIDs = []mastodonapi.ID{media.ID}
	}

	if _, err := t.client.PostStatus(ctx, toot); err != nil {
		return fmt.Errorf("post status: %w", err)
	}
	return nil
}

func (t *Target) attach(ctx context.Context, path, alt string) (*mastodonapi.Attachment, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, crosspost.ValidationError{Target: targetName, Reason: fmt.Sprintf("image %q not found", path)}
	}
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	media, err := t.client.UploadMediaFromMedia(ctx, &mastodonapi.Media{File: f, Description: alt})
	if err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}
	return media, nil
}
