package lens

import (
	"fmt"
	"time"

	"github.com/blacktop/xfeed/internal/social"
)

func invalid(format string, args ...any) error {
	return social.ValidationError{Platform: social.PlatformLens, Reason: fmt.Sprintf(format, args...)}
}

func formatProfile(p ProfileData) (social.Profile, error) {
	profile := social.Profile{
		ProfileID:      p.ID,
		FollowerCount:  p.Stats.Followers,
		FollowingCount: p.Stats.Following,
		Status:         social.ProfileStatusActive,
	}
	if p.Handle != nil {
		profile.Handle = p.Handle.LocalName
	}
	// Profiles without a handle were minted but never claimed.
	if profile.Handle == "" {
		profile.Handle = p.ID
		profile.Status = social.ProfileStatusInactive
	}
	if p.Metadata != nil {
		profile.DisplayName = p.Metadata.DisplayName
		profile.Bio = p.Metadata.Bio
		profile.Avatar = p.Metadata.Picture.uri()
	}
	if profile.DisplayName == "" {
		profile.DisplayName = profile.Handle
	}
	if p.OnchainIdentity != nil {
		profile.Verified = p.OnchainIdentity.ProofOfHumanity
	}
	if p.Operations != nil {
		profile.ViewerContext = &social.ViewerContext{
			Following:  p.Operations.IsFollowedByMe.Value,
			FollowedBy: p.Operations.IsFollowingMe.Value,
		}
	}

	if err := profile.Validate(); err != nil {
		return social.Profile{}, invalid("%v", err)
	}
	return profile, nil
}

func formatProfiles(items []ProfileData) ([]social.Profile, error) {
	out := make([]social.Profile, 0, len(items))
	for _, item := range items {
		profile, err := formatProfile(item)
		if err != nil {
			return nil, err
		}
		out = append(out, profile)
	}
	return out, nil
}

// formatPost projects a publication. Mirrors carry no content of their own
// and are projected as the publication they mirror.
func formatPost(pub PublicationData) (social.Post, error) {
	if pub.Typename == "Mirror" {
		if pub.MirrorOn == nil {
			return social.Post{}, invalid("mirror %s has no mirrored publication", pub.ID)
		}
		return formatPost(*pub.MirrorOn)
	}

	author, err := formatProfile(pub.By)
	if err != nil {
		return social.Post{}, err
	}
	ts, err := time.Parse(time.RFC3339, pub.CreatedAt)
	if err != nil {
		return social.Post{}, invalid("publication %s has bad createdAt %q", pub.ID, pub.CreatedAt)
	}

	post := social.Post{
		Platform:  social.PlatformLens,
		PostID:    pub.ID,
		Timestamp: ts,
		Author:    author,
	}
	if pub.CommentOn != nil {
		post.ParentPostID = pub.CommentOn.ID
	}
	if m := pub.Metadata; m != nil {
		post.Metadata = social.Metadata{
			Locale:     m.Locale,
			Content:    m.Content,
			ContentURI: m.RawURI,
		}
		if m.Asset != nil {
			if uri := m.Asset.Image.uri(); uri != "" {
				post.Metadata.Images = []string{uri}
			}
		}
	}
	if s := pub.Stats; s != nil {
		post.Stats = social.Stats{
			Comments:  s.Comments,
			Mirrors:   s.Mirrors,
			Quotes:    s.Quotes,
			Reactions: s.Reactions,
			Collects:  s.CountOpenActions,
		}
	}

	if err := post.Validate(); err != nil {
		return social.Post{}, invalid("%v", err)
	}
	return post, nil
}

func formatPosts(items []PublicationData) ([]social.Post, error) {
	out := make([]social.Post, 0, len(items))
	for _, item := range items {
		post, err := formatPost(item)
		if err != nil {
			return nil, err
		}
		out = append(out, post)
	}
	return out, nil
}
