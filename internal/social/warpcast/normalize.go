package warpcast

import (
	"fmt"
	"time"

	"github.com/blacktop/xfeed/internal/social"
)

func invalid(format string, args ...any) error {
	return social.ValidationError{Platform: social.PlatformWarpcast, Reason: fmt.Sprintf(format, args...)}
}

func formatProfile(u User) (social.Profile, error) {
	profile := social.Profile{
		ProfileID:      string(u.FID),
		Handle:         u.Username,
		DisplayName:    u.DisplayName,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		Status:         social.ProfileStatusActive,
	}
	if profile.DisplayName == "" {
		profile.DisplayName = profile.Handle
	}
	if u.Pfp != nil {
		profile.Avatar = u.Pfp.URL
		profile.Verified = u.Pfp.Verified
	}
	if u.Profile != nil {
		profile.Bio = u.Profile.Bio.Text
	}
	if u.ViewerContext != nil {
		profile.ViewerContext = &social.ViewerContext{
			Following:  u.ViewerContext.Following,
			FollowedBy: u.ViewerContext.FollowedBy,
		}
	}
	if err := profile.Validate(); err != nil {
		return social.Profile{}, invalid("%v", err)
	}
	return profile, nil
}

func formatProfiles(users []User) ([]social.Profile, error) {
	out := make([]social.Profile, 0, len(users))
	for _, u := range users {
		profile, err := formatProfile(u)
		if err != nil {
			return nil, err
		}
		out = append(out, profile)
	}
	return out, nil
}

// formatPost projects a cast. A cast is a reply when it names a parent; thread
// roots carry their own hash as thread hash.
func formatPost(c Cast) (social.Post, error) {
	author, err := formatProfile(c.Author)
	if err != nil {
		return social.Post{}, err
	}
	post := social.Post{
		Platform: social.PlatformWarpcast,
		PostID:   c.Hash,
		Author:   author,
		Metadata: social.Metadata{Content: c.Text},
		Stats: social.Stats{
			Comments:  c.Replies.Count,
			Mirrors:   c.Recasts.Count,
			Reactions: c.Reactions.Count,
		},
	}
	if c.Timestamp > 0 {
		post.Timestamp = time.UnixMilli(c.Timestamp)
	}
	switch {
	case c.ParentHash != "":
		post.ParentPostID = c.ParentHash
	case c.ThreadHash != "" && c.ThreadHash != c.Hash:
		post.ParentPostID = c.ThreadHash
	}
	if c.Embeds != nil {
		for _, img := range c.Embeds.Images {
			post.Metadata.Images = append(post.Metadata.Images, img.URL)
		}
	}
	if err := post.Validate(); err != nil {
		return social.Post{}, invalid("%v", err)
	}
	return post, nil
}

func formatPosts(casts []Cast) ([]social.Post, error) {
	out := make([]social.Post, 0, len(casts))
	for _, c := range casts {
		post, err := formatPost(c)
		if err != nil {
			return nil, err
		}
		out = append(out, post)
	}
	return out, nil
}
