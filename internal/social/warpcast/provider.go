// Package warpcast implements the social provider contract on top of the
// Warpcast REST API.
package warpcast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/blacktop/xfeed/internal/social"
)

var _ social.Provider = (*Provider)(nil)

// Options configures a Provider.
type Options struct {
	Wallet social.Wallet
	// SigninURL mints delegated key pairs for CreateSessionByGrantPermission.
	SigninURL string
	// PollInterval paces signed key request polling.
	PollInterval time.Duration
	// Now overrides time.Now.
	Now func() time.Time
	// OnSession runs after every new session, e.g. to persist it.
	OnSession func(*social.Session)
}

// Provider implements social.Provider for Warpcast.
type Provider struct {
	client    *Client
	keeper    *social.Keeper
	caps      social.CapabilitySet
	now       func() time.Time
	signinURL string
	interval  time.Duration
}

// New returns a Warpcast provider. Sessions default to the custody wallet path.
func New(client *Client, opts Options) *Provider {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	auth := &custodyAuth{client: client, wallet: opts.Wallet, now: now}
	return &Provider{
		client:    client,
		keeper:    social.NewKeeper(social.PlatformWarpcast, auth, social.WithClock(now), social.WithCreateHook(opts.OnSession)),
		caps:      social.NewCapabilitySet(
			social.CapQuotePost, social.CapCollectPost, social.CapGetNotifications,
			social.CapGetPostsLiked, social.CapGetPostsReplies,
		),
		now:       now,
		signinURL: opts.SigninURL,
		interval:  opts.PollInterval,
	}
}

func (p *Provider) Platform() social.Platform { return social.PlatformWarpcast }

func (p *Provider) Supports(c social.Capability) bool { return p.caps.Has(c) }

func (p *Provider) unsupported(c social.Capability) error {
	return social.UnsupportedError{Platform: social.PlatformWarpcast, Operation: c}
}

// Adopt installs stored credentials; expired ones are ignored.
func (p *Provider) Adopt(creds social.Credentials) bool {
	return p.keeper.Adopt(creds) != nil
}

// Session returns the held session, if any.
func (p *Provider) Session() *social.Session { return p.keeper.Current() }

// CreateSession signs in with the custody wallet.
func (p *Provider) CreateSession(ctx context.Context) (*social.Session, error) {
	return p.keeper.Create(ctx)
}

// CreateSessionByGrantPermission signs in with a delegated key pair. present
// receives the deep link the user must approve; the wait ends when the
// request completes or ctx is done.
func (p *Provider) CreateSessionByGrantPermission(ctx context.Context, present func(deeplinkURL string)) (*social.Session, error) {
	return p.keeper.CreateWith(ctx, &grantAuth{
		client:    p.client,
		signinURL: p.signinURL,
		interval:  p.interval,
		present:   present,
		now:       p.now,
	})
}

func (p *Provider) ResumeSession(ctx context.Context) (*social.Session, error) {
	return p.keeper.Resume(ctx)
}

// token resumes the session and returns its bearer token.
func (p *Provider) token(ctx context.Context) (string, error) {
	s, err := p.ResumeSession(ctx)
	if err != nil {
		return "", err
	}
	return s.Token(), nil
}

func (p *Provider) GetPostByID(ctx context.Context, postID string) (*social.Post, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}
	var resp castResponse
	if err := p.client.get(ctx, "cast", url.Values{"hash": {postID}}, token, &resp); err != nil {
		return nil, err
	}
	if resp.Result.Cast == nil {
		return nil, fmt.Errorf("warpcast cast %s: %w", postID, social.ErrNotFound)
	}
	post, err := formatPost(*resp.Result.Cast)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetProfileByID accepts a numeric fid or a username.
func (p *Provider) GetProfileByID(ctx context.Context, profileID string) (*social.Profile, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}
	path, query := "user", url.Values{"fid": {profileID}}
	if _, err := strconv.ParseUint(profileID, 10, 64); err != nil {
		path, query = "user-by-username", url.Values{"username": {profileID}}
	}

	var resp userResponse
	if err := p.client.get(ctx, path, query, token, &resp); err != nil {
		return nil, err
	}
	if resp.Result.User == nil {
		return nil, fmt.Errorf("warpcast user %s: %w", profileID, social.ErrNotFound)
	}
	profile, err := formatProfile(*resp.Result.User)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func postPage(casts []Cast, n *next, indicator *social.Indicator) (*social.Pageable[social.Post], error) {
	posts, err := formatPosts(casts)
	if err != nil {
		return nil, err
	}
	indicator = indicator.OrRoot()
	return social.NewPageable(posts, indicator, social.NextIndicator(indicator, n.cursor())), nil
}

func profilePage(users []User, n *next, indicator *social.Indicator) (*social.Pageable[social.Profile], error) {
	profiles, err := formatProfiles(users)
	if err != nil {
		return nil, err
	}
	indicator = indicator.OrRoot()
	return social.NewPageable(profiles, indicator, social.NextIndicator(indicator, n.cursor())), nil
}

// DiscoverPosts reads the public recommended feed without a session.
func (p *Provider) DiscoverPosts(ctx context.Context, indicator *social.Indicator) (*social.Pageable[social.Post], error) {
	var resp feedResponse
	if err := p.client.get(ctx, "default-recommended-feed", pageQuery(indicator.Cursor()), "", &resp); err != nil {
		return nil, err
	}
	return postPage(resp.Result.Feed, resp.Next, indicator)
}

func (p *Provider) GetPostsByProfileID(ctx context.Context, profileID string, indicator *social.Indicator) (*social.Pageable[social.Post], error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}
	var resp castsResponse
	if err := p.client.get(ctx, "casts", pageQuery(indicator.Cursor(), "fid", profileID), token, &resp); err != nil {
		return nil, err
	}
	return postPage(resp.Result.Casts, resp.Next, indicator)
}

// GetPostsByParentPostID lists every cast in the thread rooted at postID.
func (p *Provider) GetPostsByParentPostID(ctx context.Context, postID string, indicator *social.Indicator) (*social.Pageable[social.Post], error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}
	var resp castsResponse
	if err := p.client.get(ctx, "all-casts-in-thread", pageQuery(indicator.Cursor(), "threadHash", postID), token, &resp); err != nil {
		return nil, err
	}
	return postPage(resp.Result.Casts, resp.Next, indicator)
}

func (p *Provider) listUsers(ctx context.Context, path string, query url.Values, indicator *social.Indicator) (*social.Pageable[social.Profile], error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}
	var resp usersResponse
	if err := p.client.get(ctx, path, query, token, &resp); err != nil {
		return nil, err
	}
	return profilePage(resp.Result.Users, resp.Next, indicator)
}

func (p *Provider) GetFollowers(ctx context.Context, profileID string, indicator *social.Indicator) (*social.Pageable[social.Profile], error) {
	return p.listUsers(ctx, "followers", pageQuery(indicator.Cursor(), "fid", profileID), indicator)
}

func (p *Provider) GetFollowings(ctx context.Context, profileID string, indicator *social.Indicator) (*social.Pageable[social.Profile], error) {
	return p.listUsers(ctx, "following", pageQuery(indicator.Cursor(), "fid", profileID), indicator)
}

func (p *Provider) GetSuggestedFollows(ctx context.Context, indicator *social.Indicator) (*social.Pageable[social.Profile], error) {
	return p.listUsers(ctx, "suggested-users", pageQuery(indicator.Cursor()), indicator)
}

// GetReactors lists the profiles that liked postID.
func (p *Provider) GetReactors(ctx context.Context, postID string, indicator *social.Indicator) (*social.Pageable[social.Profile], error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}
	var resp likesResponse
	if err := p.client.get(ctx, "cast-likes", pageQuery(indicator.Cursor(), "castHash", postID), token, &resp); err != nil {
		return nil, err
	}
	users := make([]User, 0, len(resp.Result.Likes))
	for _, like := range resp.Result.Likes {
		users = append(users, like.Reactor)
	}
	return profilePage(users, resp.Next, indicator)
}

func (p *Provider) publish(ctx context.Context, body castBody) (*social.Post, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}
	var resp castResponse
	if err := p.client.do(ctx, http.MethodPost, "casts", nil, token, body, &resp); err != nil {
		return nil, err
	}
	if resp.Result.Cast == nil {
		return nil, failed(social.CapPublishPost, resp)
	}
	post, err := formatPost(*resp.Result.Cast)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// PublishPost casts Metadata.Content with Metadata.Images as embeds.
func (p *Provider) PublishPost(ctx context.Context, post *social.Post) (*social.Post, error) {
	if post == nil || post.Metadata.Content == "" {
		return nil, invalid("cast text is empty")
	}
	return p.publish(ctx, castBody{Text: post.Metadata.Content, Embeds: post.Metadata.Images})
}

func (p *Provider) CommentPost(ctx context.Context, postID, comment string) error {
	if comment == "" {
		return invalid("reply text is empty")
	}
	_, err := p.publish(ctx, castBody{Text: comment, Parent: &parentRef{Hash: postID}})
	return err
}

// failed reports a 2xx answer that does not carry the expected result.
func failed(op social.Capability, resp any) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		payload = []byte(fmt.Sprintf("%+v", resp))
	}
	return social.OperationFailedError{Platform: social.PlatformWarpcast, Operation: string(op), Payload: string(payload)}
}

// mutate sends a write whose answer is {result:{success}}.
func (p *Provider) mutate(ctx context.Context, op social.Capability, method, path string, body any) error {
	token, err := p.token(ctx)
	if err != nil {
		return err
	}
	var resp successResponse
	if err := p.client.do(ctx, method, path, nil, token, body, &resp); err != nil {
		return err
	}
	if !resp.Result.Success {
		return failed(op, resp)
	}
	return nil
}

// MirrorPost recasts postID and returns the recast cast.
func (p *Provider) MirrorPost(ctx context.Context, postID string) (*social.Post, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}
	var resp recastResponse
	if err := p.client.do(ctx, http.MethodPut, "recasts", nil, token, castHashBody{CastHash: postID}, &resp); err != nil {
		return nil, err
	}
	if resp.Result.CastHash == "" {
		return nil, failed(social.CapMirrorPost, resp)
	}
	return p.GetPostByID(ctx, resp.Result.CastHash)
}

func (p *Provider) UnmirrorPost(ctx context.Context, postID string) error {
	return p.mutate(ctx, social.CapUnmirrorPost, http.MethodDelete, "recasts", castHashBody{CastHash: postID})
}

func (p *Provider) QuotePost(ctx context.Context, postID, intro string) (*social.Post, error) {
	return nil, p.unsupported(social.CapQuotePost)
}

func (p *Provider) GetPostsLiked(ctx context.Context, profileID string, indicator *social.Indicator) (*social.Pageable[social.Post], error) {
	return nil, p.unsupported(social.CapGetPostsLiked)
}

func (p *Provider) GetPostsReplies(ctx context.Context, profileID string, indicator *social.Indicator) (*social.Pageable[social.Post], error) {
	return nil, p.unsupported(social.CapGetPostsReplies)
}

func (p *Provider) CollectPost(ctx context.Context, postID string) error {
	return p.unsupported(social.CapCollectPost)
}

func (p *Provider) UpvotePost(ctx context.Context, postID string) (*social.Reaction, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}
	var resp likeResponse
	if err := p.client.do(ctx, http.MethodPost, "cast-likes", nil, token, castHashBody{CastHash: postID}, &resp); err != nil {
		return nil, err
	}
	like := resp.Result.Like
	if like == nil {
		return nil, failed(social.CapUpvotePost, resp)
	}
	reaction := &social.Reaction{ReactionID: like.Hash, Type: social.ReactionUpvote, Timestamp: p.now()}
	if like.Timestamp > 0 {
		reaction.Timestamp = time.UnixMilli(like.Timestamp)
	}
	return reaction, nil
}

func (p *Provider) UnvotePost(ctx context.Context, postID string) error {
	return p.mutate(ctx, social.CapUnvotePost, http.MethodDelete, "cast-likes", castHashBody{CastHash: postID})
}

func fidBody(profileID string) (targetBody, error) {
	if _, err := strconv.ParseUint(profileID, 10, 64); err != nil {
		return targetBody{}, invalid("fid %q is not numeric", profileID)
	}
	return targetBody{TargetFID: json.Number(profileID)}, nil
}

func (p *Provider) Follow(ctx context.Context, profileID string) error {
	body, err := fidBody(profileID)
	if err != nil {
		return err
	}
	return p.mutate(ctx, social.CapFollow, http.MethodPut, "follows", body)
}

func (p *Provider) Unfollow(ctx context.Context, profileID string) error {
	body, err := fidBody(profileID)
	if err != nil {
		return err
	}
	return p.mutate(ctx, social.CapUnfollow, http.MethodDelete, "follows", body)
}

func (p *Provider) GetNotifications(ctx context.Context, indicator *social.Indicator) (*social.Pageable[social.Notification], error) {
	return nil, p.unsupported(social.CapGetNotifications)
}
