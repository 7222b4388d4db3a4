// Package twitter shares posts to X with OAuth 1.0a user-context credentials.
package twitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blacktop/xfeed/internal/config"
	"github.com/blacktop/xfeed/internal/crosspost"
	"github.com/blacktop/xfeed/internal/logutil"
	"github.com/michimani/gotwi"
	"github.com/michimani/gotwi/media/upload"
	uploadtypes "github.com/michimani/gotwi/media/upload/types"
	"github.com/michimani/gotwi/resources"
	"github.com/michimani/gotwi/tweet/managetweet"
	managetweettypes "github.com/michimani/gotwi/tweet/managetweet/types"
)

const (
	targetName = "twitter"
	maxTweet   = 280
)

var httpTimeout = 30 * time.Second

// Target shares to X.
type Target struct {
	api *gotwi.Client
}

func New(ctx context.Context, cfg config.TwitterConfig) (crosspost.Target, error) {
	if err := cfg.Require(); err != nil {
		return nil, err
	}

	api, err := gotwi.NewClient(&gotwi.NewClientInput{
		HTTPClient:           &http.Client{Timeout: httpTimeout},
		AuthenticationMethod: gotwi.AuthenMethodOAuth1UserContext,
		OAuthToken:           cfg.AccessToken,
		OAuthTokenSecret:     cfg.AccessTokenSecret,
		APIKey:               cfg.ConsumerKey,
		APIKeySecret:         cfg.ConsumerSecret,
		Debug:                cfg.Debug || logutil.Verbose(),
	})
	if err != nil {
		return nil, fmt.Errorf("create X client: %w", err)
	}
	if !api.IsReady() {
		return nil, errors.New("X client not ready")
	}
	return &Target{api: api}, nil
}

func (t *Target) Name() string { return targetName }

// tweetText fits req into one tweet, dropping the body before the link.
func tweetText(req crosspost.Request) string {
	status := req.Status()
	if utf8.RuneCountInString(status) <= maxTweet || req.Link == "" {
		return status
	}
	return req.Link
}

func (t *Target) Share(ctx context.Context, req crosspost.Request) error {
	input := &managetweettypes.CreateInput{Text: gotwi.String(tweetText(req))}

	if strings.TrimSpace(req.ImagePath) != "" {
		mediaID, err := t.uploadImage(ctx, req.ImagePath, req.ImageAlt)
		if err != nil {
			return err
		}
		input.Media = &managetweettypes.CreateInputMedia{MediaIDs: []string{mediaID}}
	}

	if _, err := managetweet.Create(ctx, t.api, input); err != nil {
		return fmt.Errorf("post tweet: %w", apiError(err))
	}
	logutil.Debugf("tweet posted")
	return nil
}

// uploadImage runs the chunked upload in a single segment.
func (t *Target) uploadImage(ctx context.Context, path, alt string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", crosspost.ValidationError{Target: targetName, Reason: fmt.Sprintf("image %q not found", path)}
	}
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	mediaType, category, err := mediaTypeOf(path, data)
	if err != nil {
		return "", err
	}

	started, err := upload.Initialize(ctx, t.api, &uploadtypes.InitializeInput{
		MediaType:     mediaType,
		TotalBytes:    len(data),
		MediaCategory: category,
	})
	if err != nil {
		return "", stageError("initialize upload", err, nil)
	}
	if err := stageError("initialize upload", nil, started.Errors); err != nil {
		return "", err
	}
	mediaID := started.Data.MediaID
	logutil.Debugf("upload initialized: media_id=%s bytes=%d", mediaID, len(data))

	chunk := &uploadtypes.AppendInput{MediaID: mediaID, Media: bytes.NewReader(data), SegmentIndex: 0}
	chunk.GenerateBoundary()
	appended, err := upload.Append(ctx, t.api, chunk)
	if err != nil {
		return "", stageError("append upload", err, nil)
	}
	if err := stageError("append upload", nil, appended.Errors); err != nil {
		return "", err
	}

	final, err := upload.Finalize(ctx, t.api, &uploadtypes.FinalizeInput{MediaID: mediaID})
	if err != nil {
		return "", stageError("finalize upload", err, nil)
	}
	if err := stageError("finalize upload", nil, final.Errors); err != nil {
		return "", err
	}
	// Images are usually ready once the check-after hint has elapsed.
	info := final.Data.ProcessingInfo
	switch info.State {
	case "", resources.ProcessingInfoStateSucceeded:
	case resources.ProcessingInfoStateInProgress, resources.ProcessingInfoStatePending:
		if err := sleepCtx(ctx, time.Duration(info.CheckAfterSecs)*time.Second); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("media processing failed: state=%s", info.State)
	}

	if alt = strings.TrimSpace(alt); alt != "" {
		if err := t.describe(ctx, mediaID, alt); err != nil {
			return "", err
		}
	}
	return mediaID, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var imageKinds = map[string]struct{}{"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}}

func mediaTypeOf(path string, data []byte) (uploadtypes.MediaType, uploadtypes.MediaCategory, error) {
	kind := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if _, ok := imageKinds[kind]; !ok {
		kind = strings.TrimPrefix(http.DetectContentType(data), "image/")
	}
	switch kind {
	case "jpg", "jpeg":
		return uploadtypes.MediaTypeJPEG, uploadtypes.MediaCategoryTweetImage, nil
	case "png":
		return uploadtypes.MediaTypePNG, uploadtypes.MediaCategoryTweetImage, nil
	case "gif":
		return uploadtypes.MediaTypeGIF, uploadtypes.MediaCategoryTweetGIF, nil
	case "webp":
		return uploadtypes.MediaTypeWebP, uploadtypes.MediaCategoryTweetImage, nil
	}
	return "", "", crosspost.ValidationError{Target: targetName, Reason: fmt.Sprintf("unsupported image type for %q", path)}
}

func stageError(stage string, err error, partials []resources.PartialError) error {
	if err != nil {
		return fmt.Errorf("%s: %w", stage, apiError(err))
	}
	var msgs []string
	for _, pe := range partials {
		switch {
		case pe.Detail != nil && *pe.Detail != "":
			msgs = append(msgs, *pe.Detail)
		case pe.Title != nil && *pe.Title != "":
			msgs = append(msgs, *pe.Title)
		default:
			msgs = append(msgs, "unknown error")
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %s", stage, strings.Join(msgs, "; "))
}

// apiError flattens a gotwi error into its human-readable parts.
func apiError(err error) error {
	var gwErr *gotwi.GotwiError
	if !errors.As(err, &gwErr) || gwErr == nil {
		return err
	}
	var parts []string
	for _, s := range []string{gwErr.Title, gwErr.Detail} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	for _, e := range gwErr.APIErrors {
		if e.Message != "" {
			parts = append(parts, e.Message)
		}
	}
	if len(parts) == 0 {
		return err
	}
	return errors.New(strings.Join(parts, "; "))
}
