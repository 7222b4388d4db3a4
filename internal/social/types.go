package social

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies an upstream social network.
type Platform string

const (
	PlatformLens     Platform = "lens"
	PlatformWarpcast Platform = "warpcast"
)

// Platforms lists every supported platform in a stable order.
var Platforms = []Platform{PlatformLens, PlatformWarpcast}

// ParsePlatform maps user input onto a known platform.
func ParsePlatform(raw string) (Platform, error) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "lens":
		return PlatformLens, nil
	case "warpcast", "farcaster":
		return PlatformWarpcast, nil
	}
	return "", fmt.Errorf("unsupported platform %q", raw)
}

func (p Platform) String() string { return string(p) }

// ProfileStatus is the normalized account state.
type ProfileStatus int

const (
	ProfileStatusActive ProfileStatus = iota
	ProfileStatusInactive
)

func (s ProfileStatus) String() string {
	switch s {
	case ProfileStatusActive:
		return "active"
	case ProfileStatusInactive:
		return "inactive"
	}
	return fmt.Sprintf("ProfileStatus(%d)", int(s))
}

// ViewerContext describes the relationship between the session owner and a profile.
type ViewerContext struct {
	Following  bool
	FollowedBy bool
}

// Profile is the platform-agnostic projection of an account.
type Profile struct {
	ProfileID      string
	Handle         string
	DisplayName    string
	Avatar         string
	Bio            string
	FollowerCount  int
	FollowingCount int
	Status         ProfileStatus
	Verified       bool
	ViewerContext  *ViewerContext
}

// Validate reports whether the required fields were populated.
func (p Profile) Validate() error {
	var missing []string
	if p.ProfileID == "" {
		missing = append(missing, "profile id")
	}
	if p.Handle == "" {
		missing = append(missing, "handle")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete profile: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Metadata carries the content of a post.
type Metadata struct {
	Locale string
	// Content is the plain text body.
	Content string
	// ContentURI points at externally hosted content metadata (Lens).
	ContentURI string
	Images     []string
}

// Stats are the engagement counters of a post.
type Stats struct {
	Comments  int
	Mirrors   int
	Quotes    int
	Reactions int
	Collects  int
}

// Post is the platform-agnostic projection of a publication or cast.
type Post struct {
	Platform     Platform
	PostID       string
	ParentPostID string
	Timestamp    time.Time
	Author       Profile
	Metadata     Metadata
	Stats        Stats
}

// Validate reports whether the required fields were populated.
func (p Post) Validate() error {
	if p.PostID == "" {
		return fmt.Errorf("incomplete post: missing post id")
	}
	if p.Timestamp.IsZero() {
		return fmt.Errorf("incomplete post %s: missing timestamp", p.PostID)
	}
	if err := p.Author.Validate(); err != nil {
		return fmt.Errorf("post %s: %w", p.PostID, err)
	}
	return nil
}

// ReactionType enumerates reactions understood by every platform.
type ReactionType int

const (
	ReactionUpvote ReactionType = iota
)

func (r ReactionType) String() string {
	if r == ReactionUpvote {
		return "upvote"
	}
	return fmt.Sprintf("ReactionType(%d)", int(r))
}

// Reaction is the acknowledgment of an upvote.
type Reaction struct {
	ReactionID string
	Type       ReactionType
	Timestamp  time.Time
}

// Comment is a reply as seen from a notification.
type Comment struct {
	CommentID string
	Timestamp time.Time
	Author    Profile
	For       *Post
}
