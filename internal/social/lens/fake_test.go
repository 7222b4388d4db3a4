package lens

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func decode[T any](t *testing.T, raw string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

const profileJSON = `{
  "id": "0x01",
  "createdAt": "2024-01-02T03:04:05Z",
  "handle": {"localName": "alice", "fullHandle": "lens/alice"},
  "metadata": {"displayName": "Alice", "bio": "gm", "picture": {"optimized": {"uri": "https://img/alice.png"}}},
  "stats": {"followers": 10, "following": 3},
  "operations": {"isFollowedByMe": {"value": true}, "isFollowingMe": {"value": false}},
  "onchainIdentity": {"proofOfHumanity": true}
}`

func postJSON(id string) string {
	return `{
  "__typename": "Post",
  "id": "` + id + `",
  "createdAt": "2024-02-03T04:05:06Z",
  "by": ` + profileJSON + `,
  "metadata": {"__typename": "TextOnlyMetadataV3", "content": "hello ` + id + `", "locale": "en", "rawURI": "ipfs://` + id + `"},
  "stats": {"comments": 2, "mirrors": 1, "quotes": 0, "reactions": 5, "countOpenActions": 4}
}`
}

// fakeAPI records calls and serves canned answers.
type fakeAPI struct {
	t     *testing.T
	mu    sync.Mutex
	calls []string
	token string

	defaultProfile *ProfileData
	profileErr     error
	challengeErr   error
	authErr        error

	profiles      map[string]*ProfileData
	publications  map[string]*PublicationData
	explorePages  map[string]*PublicationPage
	notifications *NotificationPage
	relay         *RelayResult

	// tokenFor overrides the access token minted for a challenge.
	tokenFor func(challengeID string) string

	signature       string
	contentURIs     []string
	publicationReqs []PublicationsRequest
}

func newFakeAPI(t *testing.T) *fakeAPI {
	profile := decode[ProfileData](t, profileJSON)
	return &fakeAPI{
		t:              t,
		defaultProfile: &profile,
		profiles:       map[string]*ProfileData{},
		publications:   map[string]*PublicationData{},
		explorePages:   map[string]*PublicationPage{},
		relay:          &RelayResult{Typename: "RelaySuccess", TxHash: "0xtx"},
	}
}

func (f *fakeAPI) sawContent(uri string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contentURIs = append(f.contentURIs, uri)
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) addPublication(t *testing.T, id string) {
	pub := decode[PublicationData](t, postJSON(id))
	f.publications[id] = &pub
}

func (f *fakeAPI) DefaultProfile(ctx context.Context, address string) (*ProfileData, error) {
	f.record("DefaultProfile")
	return f.defaultProfile, f.profileErr
}

func (f *fakeAPI) Challenge(ctx context.Context, profileID, signedBy string) (*Challenge, error) {
	f.record("Challenge")
	if f.challengeErr != nil {
		return nil, f.challengeErr
	}
	return &Challenge{ID: "challenge-1", Text: "sign in as " + profileID + " with " + signedBy}, nil
}

func (f *fakeAPI) Authenticate(ctx context.Context, challengeID, signature string) error {
	f.record("Authenticate")
	if f.authErr != nil {
		return f.authErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signature = signature
	f.token = "access-" + challengeID
	if f.tokenFor != nil {
		f.token = f.tokenFor(challengeID)
	}
	return nil
}

func (f *fakeAPI) AccessToken(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" {
		return "", errNotAuthenticated
	}
	return f.token, nil
}

func (f *fakeAPI) SetAccessToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.record("Logout")
	f.SetAccessToken("")
	return nil
}

func (f *fakeAPI) Profile(ctx context.Context, req ProfileRequest) (*ProfileData, error) {
	f.record("Profile")
	if req.Handle != "" {
		return f.profiles["handle:"+req.Handle], nil
	}
	return f.profiles[req.ProfileID], nil
}

func (f *fakeAPI) Publication(ctx context.Context, id string) (*PublicationData, error) {
	f.record("Publication")
	return f.publications[id], nil
}

func (f *fakeAPI) ExplorePublications(ctx context.Context, cursor string) (*PublicationPage, error) {
	f.record("ExplorePublications")
	if page, ok := f.explorePages[cursor]; ok {
		return page, nil
	}
	return &PublicationPage{}, nil
}

func (f *fakeAPI) Publications(ctx context.Context, req PublicationsRequest) (*PublicationPage, error) {
	f.record("Publications")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publicationReqs = append(f.publicationReqs, req)
	return &PublicationPage{Items: []PublicationData{decode[PublicationData](f.t, postJSON("0x01-0x0a"))}}, nil
}

func (f *fakeAPI) Followers(ctx context.Context, profileID, cursor string) (*ProfilePage, error) {
	f.record("Followers")
	return &ProfilePage{Items: []ProfileData{*f.defaultProfile}}, nil
}

func (f *fakeAPI) Following(ctx context.Context, profileID, cursor string) (*ProfilePage, error) {
	f.record("Following")
	return &ProfilePage{}, nil
}

func (f *fakeAPI) ExploreProfiles(ctx context.Context, cursor string) (*ProfilePage, error) {
	f.record("ExploreProfiles")
	return &ProfilePage{}, nil
}

func (f *fakeAPI) Notifications(ctx context.Context, cursor string) (*NotificationPage, error) {
	f.record("Notifications")
	if f.notifications == nil {
		return &NotificationPage{}, nil
	}
	return f.notifications, nil
}

func (f *fakeAPI) PostOnchain(ctx context.Context, contentURI string) (*RelayResult, error) {
	f.record("PostOnchain")
	f.sawContent(contentURI)
	return f.relay, nil
}

func (f *fakeAPI) MirrorOnchain(ctx context.Context, publicationID string) (*RelayResult, error) {
	f.record("MirrorOnchain")
	return f.relay, nil
}

func (f *fakeAPI) QuoteOnchain(ctx context.Context, publicationID, contentURI string) (*RelayResult, error) {
	f.record("QuoteOnchain")
	f.sawContent(contentURI)
	return f.relay, nil
}

func (f *fakeAPI) CommentOnchain(ctx context.Context, publicationID, contentURI string) (*RelayResult, error) {
	f.record("CommentOnchain")
	f.sawContent(contentURI)
	return f.relay, nil
}

func (f *fakeAPI) Follow(ctx context.Context, profileID string) (*RelayResult, error) {
	f.record("Follow")
	return f.relay, nil
}

func (f *fakeAPI) Unfollow(ctx context.Context, profileID string) (*RelayResult, error) {
	f.record("Unfollow")
	return f.relay, nil
}

func (f *fakeAPI) AddBookmark(ctx context.Context, publicationID string) error {
	f.record("AddBookmark")
	return nil
}

func (f *fakeAPI) AddReaction(ctx context.Context, publicationID string) error {
	f.record("AddReaction")
	return nil
}

func (f *fakeAPI) RemoveReaction(ctx context.Context, publicationID string) error {
	f.record("RemoveReaction")
	return nil
}
