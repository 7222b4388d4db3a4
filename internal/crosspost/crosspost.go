// Package crosspost shares a published post with legacy networks.
package crosspost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/blacktop/xfeed/internal/social"
)

// Names lists the supported targets.
var Names = []string{"bluesky", "mastodon", "twitter"}

// DefaultAltText describes attached images that came without alt text.
const DefaultAltText = "Image attached via xfeed"

// Request is what every target publishes.
type Request struct {
	Text      string
	Link      string
	ImagePath string
	ImageAlt  string
}

// Status returns the text followed by the link, if any.
func (r Request) Status() string {
	if r.Link == "" {
		return r.Text
	}
	if r.Text == "" {
		return r.Link
	}
	return r.Text + "\n\n" + r.Link
}

// Target is a network a post can be shared to.
type Target interface {
	Name() string
	Share(ctx context.Context, req Request) error
}

// ValidationError captures target-specific validation issues.
type ValidationError struct {
	Target string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Target, e.Reason)
}

// NewRequest shares post with a link back to it.
func NewRequest(post social.Post, imagePath, imageAlt string) Request {
	req := Request{
		Text:      strings.TrimSpace(post.Metadata.Content),
		Link:      Permalink(post),
		ImagePath: imagePath,
		ImageAlt:  strings.TrimSpace(imageAlt),
	}
	if req.ImageAlt == "" && req.ImagePath != "" {
		req.ImageAlt = DefaultAltText
	}
	return req
}

// Permalink returns the public web address of post, or "" when unknown.
func Permalink(post social.Post) string {
	if post.PostID == "" {
		return ""
	}
	switch post.Platform {
	case social.PlatformLens:
		return "https://hey.xyz/posts/" + post.PostID
	case social.PlatformWarpcast:
		if post.Author.Handle == "" {
			return ""
		}
		hash := post.PostID
		if len(hash) > 10 {
			hash = hash[:10]
		}
		return "https://warpcast.com/" + post.Author.Handle + "/" + hash
	}
	return ""
}

// NormalizeNames lowercases, dedupes and sorts target names; "all" selects
// every target.
func NormalizeNames(values []string) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, raw := range values {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case name == "":
			continue
		case name == "all":
			return slices.Clone(Names), nil
		case !slices.Contains(Names, name):
			return nil, fmt.Errorf("unsupported crosspost target %q", name)
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	slices.Sort(out)
	return out, nil
}

// Share publishes req to every target and reports progress to out. A failing
// target does not stop the others; all failures are joined.
func Share(ctx context.Context, targets []Target, req Request, out io.Writer, dryRun bool) error {
	if dryRun {
		for _, t := range targets {
			fmt.Fprintf(out, "[dry-run] would share to %s: %q\n", t.Name(), req.Status())
		}
		if req.ImagePath != "" {
			fmt.Fprintf(out, "[dry-run] image: %s (alt: %q)\n", req.ImagePath, req.ImageAlt)
		}
		return nil
	}

	var errs []error
	for _, t := range targets {
		fmt.Fprintf(out, "sharing to %s...\n", t.Name())
		if err := t.Share(ctx, req); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
			continue
		}
		fmt.Fprintf(out, "shared to %s\n", t.Name())
	}
	return errors.Join(errs...)
}
