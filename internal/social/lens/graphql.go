package lens

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/blacktop/xfeed/internal/logutil"
	"github.com/blacktop/xfeed/internal/social"
	"github.com/machinebox/graphql"
)

const (
	// ProductionEndpoint is the public Lens v2 API.
	ProductionEndpoint = "https://api-v2.lens.dev"

	requestTimeout = 30 * time.Second
	userAgent      = "xfeed/1"
)

var errNotAuthenticated = errors.New("not authenticated")

// GraphQL implements API against the Lens GraphQL endpoint. It holds the
// access token the way the SDK does, so write mutations are authorized once
// a session was created or resumed.
type GraphQL struct {
	client *graphql.Client

	mu          sync.RWMutex
	accessToken string
}

// NewGraphQL returns a client for endpoint. A nil httpClient gets a default
// client with a request timeout.
func NewGraphQL(endpoint string, httpClient *http.Client) *GraphQL {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = ProductionEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &GraphQL{client: graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient))}
}

func (g *GraphQL) token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.accessToken
}

func (g *GraphQL) run(ctx context.Context, op operation, request map[string]any, out any) error {
	req := graphql.NewRequest(op.doc)
	if request != nil {
		req.Var("request", request)
	}
	req.Header.Set("User-Agent", userAgent)
	if token := g.token(); token != "" {
		req.Header.Set("x-access-token", "Bearer "+token)
	}

	logutil.Debugf("lens graphql: op=%s", op.name)
	if err := g.client.Run(ctx, req, out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return social.UpstreamRequestError{
			Platform:  social.PlatformLens,
			Operation: op.name,
			Message:   strings.TrimPrefix(err.Error(), "graphql: "),
			Err:       err,
		}
	}
	return nil
}

func withCursor(request map[string]any, cursor string) map[string]any {
	if cursor != "" {
		request["cursor"] = cursor
	}
	return request
}

func (g *GraphQL) DefaultProfile(ctx context.Context, address string) (*ProfileData, error) {
	var resp struct {
		DefaultProfile *ProfileData `json:"defaultProfile"`
	}
	if err := g.run(ctx, opDefaultProfile, map[string]any{"for": address}, &resp); err != nil {
		return nil, err
	}
	return resp.DefaultProfile, nil
}

func (g *GraphQL) Challenge(ctx context.Context, profileID, signedBy string) (*Challenge, error) {
	var resp struct {
		Challenge *Challenge `json:"challenge"`
	}
	if err := g.run(ctx, opChallenge, map[string]any{"for": profileID, "signedBy": signedBy}, &resp); err != nil {
		return nil, err
	}
	if resp.Challenge == nil {
		return nil, errors.New("empty challenge")
	}
	return resp.Challenge, nil
}

func (g *GraphQL) Authenticate(ctx context.Context, challengeID, signature string) error {
	var resp struct {
		Authenticate struct {
			AccessToken string `json:"accessToken"`
		} `json:"authenticate"`
	}
	if err := g.run(ctx, opAuthenticate, map[string]any{"id": challengeID, "signature": signature}, &resp); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.accessToken = resp.Authenticate.AccessToken
	return nil
}

func (g *GraphQL) AccessToken(ctx context.Context) (string, error) {
	if token := g.token(); token != "" {
		return token, nil
	}
	return "", errNotAuthenticated
}

func (g *GraphQL) SetAccessToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accessToken = token
}

// Logout forgets the held credentials. Lens access tokens are short-lived
// JWTs, so there is nothing to revoke upstream.
func (g *GraphQL) Logout(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accessToken = ""
	return nil
}

func (g *GraphQL) Profile(ctx context.Context, req ProfileRequest) (*ProfileData, error) {
	request := map[string]any{}
	switch {
	case req.ProfileID != "":
		request["forProfileId"] = req.ProfileID
	case req.Handle != "":
		request["forHandle"] = req.Handle
	default:
		return nil, errors.New("profile request needs an id or a handle")
	}

	var resp struct {
		Profile *ProfileData `json:"profile"`
	}
	if err := g.run(ctx, opProfile, request, &resp); err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

func (g *GraphQL) Publication(ctx context.Context, id string) (*PublicationData, error) {
	var resp struct {
		Publication *PublicationData `json:"publication"`
	}
	if err := g.run(ctx, opPublication, map[string]any{"forId": id}, &resp); err != nil {
		return nil, err
	}
	return resp.Publication, nil
}

func (g *GraphQL) ExplorePublications(ctx context.Context, cursor string) (*PublicationPage, error) {
	var resp struct {
		ExplorePublications PublicationPage `json:"explorePublications"`
	}
	request := withCursor(map[string]any{"orderBy": "LENS_CURATED"}, cursor)
	if err := g.run(ctx, opExplorePublications, request, &resp); err != nil {
		return nil, err
	}
	return &resp.ExplorePublications, nil
}

func (g *GraphQL) Publications(ctx context.Context, req PublicationsRequest) (*PublicationPage, error) {
	where := map[string]any{}
	if len(req.From) > 0 {
		where["from"] = req.From
	}
	if len(req.Types) > 0 {
		where["publicationTypes"] = req.Types
	}
	if req.CommentOn != "" {
		where["commentOn"] = map[string]any{"id": req.CommentOn}
	}
	if req.ActedBy != "" {
		where["actedBy"] = req.ActedBy
	}

	var resp struct {
		Publications PublicationPage `json:"publications"`
	}
	if err := g.run(ctx, opPublications, withCursor(map[string]any{"where": where}, req.Cursor), &resp); err != nil {
		return nil, err
	}
	return &resp.Publications, nil
}

func (g *GraphQL) Followers(ctx context.Context, profileID, cursor string) (*ProfilePage, error) {
	var resp struct {
		Followers ProfilePage `json:"followers"`
	}
	if err := g.run(ctx, opFollowers, withCursor(map[string]any{"of": profileID}, cursor), &resp); err != nil {
		return nil, err
	}
	return &resp.Followers, nil
}

func (g *GraphQL) Following(ctx context.Context, profileID, cursor string) (*ProfilePage, error) {
	var resp struct {
		Following ProfilePage `json:"following"`
	}
	if err := g.run(ctx, opFollowing, withCursor(map[string]any{"for": profileID}, cursor), &resp); err != nil {
		return nil, err
	}
	return &resp.Following, nil
}

func (g *GraphQL) ExploreProfiles(ctx context.Context, cursor string) (*ProfilePage, error) {
	var resp struct {
		ExploreProfiles ProfilePage `json:"exploreProfiles"`
	}
	request := withCursor(map[string]any{"orderBy": "MOST_FOLLOWERS"}, cursor)
	if err := g.run(ctx, opExploreProfiles, request, &resp); err != nil {
		return nil, err
	}
	return &resp.ExploreProfiles, nil
}

func (g *GraphQL) Notifications(ctx context.Context, cursor string) (*NotificationPage, error) {
	var resp struct {
		Notifications NotificationPage `json:"notifications"`
	}
	if err := g.run(ctx, opNotifications, withCursor(map[string]any{}, cursor), &resp); err != nil {
		return nil, err
	}
	return &resp.Notifications, nil
}

func (g *GraphQL) relay(ctx context.Context, op operation, field string, request map[string]any) (*RelayResult, error) {
	var resp map[string]*RelayResult
	if err := g.run(ctx, op, request, &resp); err != nil {
		return nil, err
	}
	return resp[field], nil
}

func (g *GraphQL) PostOnchain(ctx context.Context, contentURI string) (*RelayResult, error) {
	return g.relay(ctx, opPostOnchain, "postOnchain", map[string]any{"contentURI": contentURI})
}

func (g *GraphQL) MirrorOnchain(ctx context.Context, publicationID string) (*RelayResult, error) {
	return g.relay(ctx, opMirrorOnchain, "mirrorOnchain", map[string]any{"mirrorOn": publicationID})
}

func (g *GraphQL) QuoteOnchain(ctx context.Context, publicationID, contentURI string) (*RelayResult, error) {
	return g.relay(ctx, opQuoteOnchain, "quoteOnchain", map[string]any{"quoteOn": publicationID, "contentURI": contentURI})
}

func (g *GraphQL) CommentOnchain(ctx context.Context, publicationID, contentURI string) (*RelayResult, error) {
	return g.relay(ctx, opCommentOnchain, "commentOnchain", map[string]any{"commentOn": publicationID, "contentURI": contentURI})
}

func (g *GraphQL) Follow(ctx context.Context, profileID string) (*RelayResult, error) {
	return g.relay(ctx, opFollow, "follow", map[string]any{"follow": []map[string]any{{"profileId": profileID}}})
}

func (g *GraphQL) Unfollow(ctx context.Context, profileID string) (*RelayResult, error) {
	return g.relay(ctx, opUnfollow, "unfollow", map[string]any{"unfollow": []string{profileID}})
}

func (g *GraphQL) AddBookmark(ctx context.Context, publicationID string) error {
	return g.run(ctx, opAddBookmark, map[string]any{"on": publicationID}, &map[string]any{})
}

func (g *GraphQL) AddReaction(ctx context.Context, publicationID string) error {
	return g.run(ctx, opAddReaction, map[string]any{"for": publicationID, "reaction": "UPVOTE"}, &map[string]any{})
}

func (g *GraphQL) RemoveReaction(ctx context.Context, publicationID string) error {
	return g.run(ctx, opRemoveReaction, map[string]any{"for": publicationID, "reaction": "UPVOTE"}, &map[string]any{})
}
