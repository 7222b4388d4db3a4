// Package lens implements the social provider contract on top of the Lens
// protocol API.
package lens

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/blacktop/xfeed/internal/logutil"
	"github.com/blacktop/xfeed/internal/social"
)

var _ social.Provider = (*Provider)(nil)

// Options configures a Provider.
type Options struct {
	Wallet social.Wallet
	// Now overrides time.Now.
	Now func() time.Time
	// OnSession runs after every new session, e.g. to persist it.
	OnSession func(*social.Session)
}

// Provider implements social.Provider for Lens.
type Provider struct {
	api    API
	keeper *social.Keeper
	caps   social.CapabilitySet
	now    func() time.Time
}

// New returns a Lens provider talking to api.
func New(api API, opts Options) *Provider {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	auth := &authenticator{api: api, wallet: opts.Wallet, now: now}
	return &Provider{
		api:    api,
		keeper: social.NewKeeper(social.PlatformLens, auth, social.WithClock(now), social.WithCreateHook(opts.OnSession)),
		caps:   social.NewCapabilitySet(social.CapGetReactors, social.CapUnmirrorPost),
		now:    now,
	}
}

func (p *Provider) Platform() social.Platform { return social.PlatformLens }

func (p *Provider) Supports(c social.Capability) bool { return p.caps.Has(c) }

func (p *Provider) unsupported(c social.Capability) error {
	return social.UnsupportedError{Platform: social.PlatformLens, Operation: c}
}

// Adopt installs stored credentials; expired ones, including those whose
// access token has lapsed, are ignored.
func (p *Provider) Adopt(creds social.Credentials) bool {
	creds.ExpiresAt = tokenDeadline(creds.Token, creds.ExpiresAt)
	s := p.keeper.Adopt(creds)
	if s == nil {
		return false
	}
	p.api.SetAccessToken(s.Token())
	return true
}

// Session returns the held session, if any.
func (p *Provider) Session() *social.Session { return p.keeper.Current() }

func (p *Provider) CreateSession(ctx context.Context) (*social.Session, error) {
	s, err := p.keeper.Create(ctx)
	if err != nil {
		return nil, err
	}
	p.api.SetAccessToken(s.Token())
	return s, nil
}

func (p *Provider) ResumeSession(ctx context.Context) (*social.Session, error) {
	s, err := p.keeper.Resume(ctx)
	if err != nil {
		return nil, err
	}
	p.api.SetAccessToken(s.Token())
	return s, nil
}

func (p *Provider) GetPostByID(ctx context.Context, postID string) (*social.Post, error) {
	pub, err := p.api.Publication(ctx, postID)
	if err != nil {
		return nil, err
	}
	if pub == nil {
		return nil, fmt.Errorf("lens publication %s: %w", postID, social.ErrNotFound)
	}
	post, err := formatPost(*pub)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetProfileByID accepts a profile id (0x-prefixed) or a handle.
func (p *Provider) GetProfileByID(ctx context.Context, profileID string) (*social.Profile, error) {
	req := ProfileRequest{Handle: profileID}
	if strings.HasPrefix(profileID, "0x") {
		req = ProfileRequest{ProfileID: profileID}
	}
	data, err := p.api.Profile(ctx, req)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("lens profile %s: %w", profileID, social.ErrNotFound)
	}
	profile, err := formatProfile(*data)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func postPage(page *PublicationPage, indicator *social.Indicator) (*social.Pageable[social.Post], error) {
	posts, err := formatPosts(page.Items)
	if err != nil {
		return nil, err
	}
	indicator = indicator.OrRoot()
	return social.NewPageable(posts, indicator, social.NextIndicator(indicator, page.PageInfo.NextCursor())), nil
}

func profilePage(page *ProfilePage, indicator *social.Indicator) (*social.Pageable[social.Profile], error) {
	profiles, err := formatProfiles(page.Items)
	if err != nil {
		return nil, err
	}
	indicator = indicator.OrRoot()
	return social.NewPageable(profiles, indicator, social.NextIndicator(indicator, page.PageInfo.NextCursor())), nil
}

// DiscoverPosts lists the curated explore feed; it needs no session.
func (p *Provider) DiscoverPosts(ctx context.Context, indicator *social.Indicator) (*social.Pageable[social.Post], error) {
	page, err := p.api.ExplorePublications(ctx, indicator.Cursor())
	if err != nil {
		return nil, err
	}
	return postPage(page, indicator)
}

func (p *Provider) GetPostsByProfileID(ctx context.Context, profileID string, indicator *social.Indicator) (*social.Pageable[social.Post], error) {
	page, err := p.api.Publications(ctx, PublicationsRequest{
		From:   []string{profileID},
		Types:  []PublicationType{PublicationTypePost},
		Cursor: indicator.Cursor(),
	})
	if err != nil {
		return nil, err
	}
	return postPage(page, indicator)
}

func (p *Provider) GetPostsLiked(ctx context.Context, profileID string, indicator *social.Indicator) (*social.Pageable[social.Post], error) {
	page, err := p.api.Publications(ctx, PublicationsRequest{ActedBy: profileID, Cursor: indicator.Cursor()})
	if err != nil {
		return nil, err
	}
	return postPage(page, indicator)
}

func (p *Provider) GetPostsReplies(ctx context.Context, profileID string, indicator *social.Indicator) (*social.Pageable[social.Post], error) {
	page, err := p.api.Publications(ctx, PublicationsRequest{
		From:   []string{profileID},
		Types:  []PublicationType{PublicationTypeComment},
		Cursor: indicator.Cursor(),
	})
	if err != nil {
		return nil, err
	}
	return postPage(page, indicator)
}

func (p *Provider) GetPostsByParentPostID(ctx context.Context, postID string, indicator *social.Indicator) (*social.Pageable[social.Post], error) {
	page, err := p.api.Publications(ctx, PublicationsRequest{CommentOn: postID, Cursor: indicator.Cursor()})
	if err != nil {
		return nil, err
	}
	return postPage(page, indicator)
}

func (p *Provider) GetFollowers(ctx context.Context, profileID string, indicator *social.Indicator) (*social.Pageable[social.Profile], error) {
	page, err := p.api.Followers(ctx, profileID, indicator.Cursor())
	if err != nil {
		return nil, err
	}
	return profilePage(page, indicator)
}

func (p *Provider) GetFollowings(ctx context.Context, profileID string, indicator *social.Indicator) (*social.Pageable[social.Profile], error) {
	page, err := p.api.Following(ctx, profileID, indicator.Cursor())
	if err != nil {
		return nil, err
	}
	return profilePage(page, indicator)
}

func (p *Provider) GetSuggestedFollows(ctx context.Context, indicator *social.Indicator) (*social.Pageable[social.Profile], error) {
	page, err := p.api.ExploreProfiles(ctx, indicator.Cursor())
	if err != nil {
		return nil, err
	}
	return profilePage(page, indicator)
}

func (p *Provider) GetReactors(ctx context.Context, postID string, indicator *social.Indicator) (*social.Pageable[social.Profile], error) {
	return nil, p.unsupported(social.CapGetReactors)
}

func (p *Provider) checkRelay(op social.Capability, res *RelayResult) error {
	if res.Success() {
		logutil.Debugf("lens %s relayed: tx=%s", op, res.TxHash)
		return nil
	}
	payload := "empty relay result"
	if res != nil {
		raw, err := json.Marshal(res)
		if err == nil {
			payload = string(raw)
		}
	}
	return social.OperationFailedError{Platform: social.PlatformLens, Operation: string(op), Payload: payload}
}

// PublishPost posts Metadata.ContentURI, or text-only metadata built from
// Metadata.Content when no URI is given.
func (p *Provider) PublishPost(ctx context.Context, post *social.Post) (*social.Post, error) {
	if post == nil {
		return nil, invalid("no post to publish")
	}
	uri, err := resolveContentURI(post.Metadata.ContentURI, post.Metadata.Content, post.Metadata.Locale)
	if err != nil {
		return nil, err
	}
	if _, err := p.ResumeSession(ctx); err != nil {
		return nil, err
	}

	res, err := p.api.PostOnchain(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := p.checkRelay(social.CapPublishPost, res); err != nil {
		return nil, err
	}

	published := *post
	published.Platform = social.PlatformLens
	published.Metadata.ContentURI = uri
	return &published, nil
}

func (p *Provider) MirrorPost(ctx context.Context, postID string) (*social.Post, error) {
	if _, err := p.ResumeSession(ctx); err != nil {
		return nil, err
	}
	res, err := p.api.MirrorOnchain(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := p.checkRelay(social.CapMirrorPost, res); err != nil {
		return nil, err
	}
	return p.GetPostByID(ctx, postID)
}

func (p *Provider) UnmirrorPost(ctx context.Context, postID string) error {
	return p.unsupported(social.CapUnmirrorPost)
}

// QuotePost quotes postID; intro is a content URI or plain text.
func (p *Provider) QuotePost(ctx context.Context, postID, intro string) (*social.Post, error) {
	uri, err := resolveContentURI("", intro, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.ResumeSession(ctx); err != nil {
		return nil, err
	}
	res, err := p.api.QuoteOnchain(ctx, postID, uri)
	if err != nil {
		return nil, err
	}
	if err := p.checkRelay(social.CapQuotePost, res); err != nil {
		return nil, err
	}
	return p.GetPostByID(ctx, postID)
}

// CommentPost replies to postID; comment is a content URI or plain text.
func (p *Provider) CommentPost(ctx context.Context, postID, comment string) error {
	uri, err := resolveContentURI("", comment, "")
	if err != nil {
		return err
	}
	if _, err := p.ResumeSession(ctx); err != nil {
		return err
	}
	res, err := p.api.CommentOnchain(ctx, postID, uri)
	if err != nil {
		return err
	}
	return p.checkRelay(social.CapCommentPost, res)
}

// CollectPost bookmarks postID.
func (p *Provider) CollectPost(ctx context.Context, postID string) error {
	if _, err := p.ResumeSession(ctx); err != nil {
		return err
	}
	return p.api.AddBookmark(ctx, postID)
}

func (p *Provider) UpvotePost(ctx context.Context, postID string) (*social.Reaction, error) {
	if _, err := p.ResumeSession(ctx); err != nil {
		return nil, err
	}
	if err := p.api.AddReaction(ctx, postID); err != nil {
		return nil, err
	}
	// Lens does not identify reactions.
	return &social.Reaction{Type: social.ReactionUpvote, Timestamp: p.now()}, nil
}

func (p *Provider) UnvotePost(ctx context.Context, postID string) error {
	if _, err := p.ResumeSession(ctx); err != nil {
		return err
	}
	return p.api.RemoveReaction(ctx, postID)
}

func (p *Provider) Follow(ctx context.Context, profileID string) error {
	if _, err := p.ResumeSession(ctx); err != nil {
		return err
	}
	res, err := p.api.Follow(ctx, profileID)
	if err != nil {
		return err
	}
	return p.checkRelay(social.CapFollow, res)
}

func (p *Provider) Unfollow(ctx context.Context, profileID string) error {
	if _, err := p.ResumeSession(ctx); err != nil {
		return err
	}
	res, err := p.api.Unfollow(ctx, profileID)
	if err != nil {
		return err
	}
	return p.checkRelay(social.CapUnfollow, res)
}

// GetNotifications lists the session owner's notifications. A notification
// that lacks the data its kind guarantees fails the whole page.
func (p *Provider) GetNotifications(ctx context.Context, indicator *social.Indicator) (*social.Pageable[social.Notification], error) {
	if _, err := p.ResumeSession(ctx); err != nil {
		return nil, err
	}
	page, err := p.api.Notifications(ctx, indicator.Cursor())
	if err != nil {
		return nil, err
	}

	items := make([]social.Notification, 0, len(page.Items))
	for _, raw := range page.Items {
		upstream, err := raw.Decode()
		if err != nil {
			return nil, err
		}
		if upstream == nil {
			logutil.Debugf("lens notification kind %s skipped", raw.Typename)
			continue
		}
		n, err := p.normalizeNotification(ctx, upstream)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}

	indicator = indicator.OrRoot()
	return social.NewPageable(items, indicator, social.NextIndicator(indicator, page.PageInfo.NextCursor())), nil
}

func malformed(id string, kind social.NotificationKind, reason string) error {
	return social.MalformedNotificationError{
		Platform:       social.PlatformLens,
		NotificationID: id,
		Kind:           kind,
		Reason:         reason,
	}
}

func (p *Provider) normalizeNotification(ctx context.Context, upstream UpstreamNotification) (social.Notification, error) {
	switch n := upstream.(type) {
	case *MirrorNotificationData:
		if len(n.Mirrors) == 0 {
			return nil, malformed(n.ID, social.NotificationMirror, "no mirror found")
		}
		mirror, err := p.GetPostByID(ctx, n.Mirrors[0].MirrorID)
		if err != nil {
			return nil, err
		}
		post, err := p.GetPostByID(ctx, n.Publication.ID)
		if err != nil {
			return nil, err
		}
		return &social.MirrorNotification{ID: n.ID, Mirror: mirror, Post: post}, nil

	case *QuoteNotificationData:
		if n.Quote.QuoteOn == nil {
			return nil, malformed(n.ID, social.NotificationQuote, "quote has no quoted publication")
		}
		quote, err := formatPost(n.Quote)
		if err != nil {
			return nil, err
		}
		post, err := p.GetPostByID(ctx, n.Quote.QuoteOn.ID)
		if err != nil {
			return nil, err
		}
		return &social.QuoteNotification{ID: n.ID, Quote: &quote, Post: post}, nil

	case *ReactionNotificationData:
		if len(n.Reactions) == 0 {
			return nil, malformed(n.ID, social.NotificationReaction, "no reaction found")
		}
		reactor, err := formatProfile(n.Reactions[0].Profile)
		if err != nil {
			return nil, err
		}
		post, err := p.GetPostByID(ctx, n.Publication.ID)
		if err != nil {
			return nil, err
		}
		return &social.ReactionNotification{ID: n.ID, Reaction: social.ReactionUpvote, Reactor: reactor, Post: post}, nil

	case *CommentNotificationData:
		if n.Comment.CommentOn == nil {
			return nil, malformed(n.ID, social.NotificationComment, "comment has no parent publication")
		}
		comment, err := formatPost(n.Comment)
		if err != nil {
			return nil, err
		}
		post, err := p.GetPostByID(ctx, n.Comment.CommentOn.ID)
		if err != nil {
			return nil, err
		}
		return &social.CommentNotification{
			ID: n.ID,
			Comment: social.Comment{
				CommentID: comment.PostID,
				Timestamp: comment.Timestamp,
				Author:    comment.Author,
				For:       post,
			},
			Post: post,
		}, nil

	case *FollowNotificationData:
		if len(n.Followers) == 0 {
			return nil, malformed(n.ID, social.NotificationFollow, "no follower found")
		}
		follower, err := formatProfile(n.Followers[0])
		if err != nil {
			return nil, err
		}
		return &social.FollowNotification{ID: n.ID, Follower: follower}, nil

	case *MentionNotificationData:
		post, err := formatPost(n.Publication)
		if err != nil {
			return nil, err
		}
		return &social.MentionNotification{ID: n.ID, Post: &post}, nil
	}
	return nil, fmt.Errorf("lens: unhandled notification type %T", upstream)
}
