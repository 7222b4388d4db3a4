// Package bluesky shares posts to a Bluesky PDS.
package bluesky

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/blacktop/xfeed/internal/config"
	"github.com/blacktop/xfeed/internal/crosspost"
	"github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"
)

const (
	targetName     = "bluesky"
	postCollection = "app.bsky.feed.post"
	requestTimeout = 30 * time.Second
	// Bluesky caps posts at 300 graphemes; bytes are a safe upper bound.
	maxPostLength = 300
)

// Target shares to Bluesky.
type Target struct {
	client *xrpc.Client
	now    func() time.Time
}

// New logs in with an app password.
func New(ctx context.Context, cfg config.BlueskyConfig) (crosspost.Target, error) {
	if err := cfg.Require(); err != nil {
		return nil, err
	}

	ua := "xfeed/1"
	client := &xrpc.Client{
		Client:    &http.Client{Timeout: requestTimeout},
		Host:      cfg.PDSURL,
		UserAgent: &ua,
	}
	if err := login(ctx, client, cfg.Handle, cfg.AppPassword); err != nil {
		return nil, err
	}
	return &Target{client: client, now: time.Now}, nil
}

func login(ctx context.Context, client *xrpc.Client, handle, password string) error {
	out, err := atproto.ServerCreateSession(ctx, client, &atproto.ServerCreateSession_Input{
		Identifier: handle,
		Password:   password,
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	client.Auth = &xrpc.AuthInfo{
		AccessJwt:  out.AccessJwt,
		RefreshJwt: out.RefreshJwt,
		Handle:     out.Handle,
		Did:        out.Did,
	}
	return nil
}

func (t *Target) Name() string { return targetName }

// Share creates a feed post, embedding the image when one is attached.
func (t *Target) Share(ctx context.Context, req crosspost.Request) error {
	status := req.Status()
	if len(status) > maxPostLength && req.Link != "" {
		// Keep the link; it points at the full text.
		status = req.Link
	}
	record := &bsky.FeedPost{
		CreatedAt: t.now().UTC().Format(time.RFC3339),
		Text:      status,
	}

	if req.ImagePath != "" {
		blob, err := t.upload(ctx, req.ImagePath)
		if err != nil {
			return err
		}
		record.Embed = &bsky.FeedPost_Embed{
			EmbedImages: &bsky.EmbedImages{
				Images: []*bsky.EmbedImages_Image{{Alt: req.ImageAlt, Image: blob}},
			},
		}
	}

	if _, err := atproto.RepoCreateRecord(ctx, t.client, &atproto.RepoCreateRecord_Input{
		Collection: postCollection,
		Repo:       t.client.Auth.Did,
		Record:     &util.LexiconTypeDecoder{Val: record},
	}); err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func (t *Target) upload(ctx context.Context, path string) (*util.LexBlob, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, crosspost.ValidationError{Target: targetName, Reason: fmt.Sprintf("image %q not found", path)}
	}
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	out, err := atproto.RepoUploadBlob(ctx, t.client, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}
	if out.Blob == nil {
		return nil, errors.New("upload blob: empty response")
	}
	return out.Blob, nil
}
