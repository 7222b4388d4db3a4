package lens

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/blacktop/xfeed/internal/social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatProfile(t *testing.T) {
	profile, err := formatProfile(decode[ProfileData](t, profileJSON))
	require.NoError(t, err)

	assert.Equal(t, "0x01", profile.ProfileID)
	assert.Equal(t, "alice", profile.Handle)
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.Equal(t, "https://img/alice.png", profile.Avatar)
	assert.Equal(t, 10, profile.FollowerCount)
	assert.Equal(t, social.ProfileStatusActive, profile.Status)
	require.NotNil(t, profile.ViewerContext)
	assert.True(t, profile.ViewerContext.Following)
	assert.False(t, profile.ViewerContext.FollowedBy)
}

func TestFormatProfileWithoutHandle(t *testing.T) {
	profile, err := formatProfile(decode[ProfileData](t, `{"id": "0x0a", "stats": {"followers": 0, "following": 0}}`))
	require.NoError(t, err)

	assert.Equal(t, "0x0a", profile.Handle)
	assert.Equal(t, "0x0a", profile.DisplayName)
	assert.Equal(t, social.ProfileStatusInactive, profile.Status)
	assert.Nil(t, profile.ViewerContext)

	_, err = formatProfile(ProfileData{})
	var verr social.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestFormatPost(t *testing.T) {
	post, err := formatPost(decode[PublicationData](t, postJSON("0x01-0x01")))
	require.NoError(t, err)

	assert.Equal(t, social.PlatformLens, post.Platform)
	assert.Equal(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC), post.Timestamp.UTC())
	assert.Equal(t, "ipfs://0x01-0x01", post.Metadata.ContentURI)
	assert.Equal(t, social.Stats{Comments: 2, Mirrors: 1, Reactions: 5, Collects: 4}, post.Stats)
	assert.Empty(t, post.ParentPostID)
}

func TestFormatPostProjectsMirror(t *testing.T) {
	mirror := decode[PublicationData](t, `{
  "__typename": "Mirror", "id": "0x02-0x09", "createdAt": "2024-03-01T00:00:00Z",
  "by": `+profileJSON+`,
  "mirrorOn": `+postJSON("0x01-0x01")+`
}`)
	post, err := formatPost(mirror)
	require.NoError(t, err)
	assert.Equal(t, "0x01-0x01", post.PostID)

	_, err = formatPost(PublicationData{Typename: "Mirror", ID: "0x02-0x0a"})
	assert.Error(t, err)
}

func TestFormatPostComment(t *testing.T) {
	raw := strings.Replace(postJSON("0x01-0x05"), `"__typename": "Post",`, `"__typename": "Comment", "commentOn": {"id": "0x01-0x01"},`, 1)
	post, err := formatPost(decode[PublicationData](t, raw))
	require.NoError(t, err)
	assert.Equal(t, "0x01-0x01", post.ParentPostID)
}

func TestFormatPostsFailsWholePage(t *testing.T) {
	good := decode[PublicationData](t, postJSON("0x01-0x01"))
	bad := good
	bad.CreatedAt = "yesterday"

	_, err := formatPosts([]PublicationData{good, bad})
	var verr social.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestTextContentURI(t *testing.T) {
	uri, err := TextContentURI("gm frens", "")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, dataURIPrefix))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, dataURIPrefix))
	require.NoError(t, err)
	var m textOnlyMetadata
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, textOnlySchema, m.Schema)
	assert.Equal(t, "gm frens", m.Lens.Content)
	assert.Equal(t, "en", m.Lens.Locale)
	assert.Equal(t, "TEXT_ONLY", m.Lens.MainContentFocus)
	assert.NotEmpty(t, m.Lens.ID)

	_, err = TextContentURI("   ", "en")
	assert.Error(t, err)
}

func decodeContentURI(t *testing.T, uri string) textOnlyMetadata {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, dataURIPrefix), uri)
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, dataURIPrefix))
	require.NoError(t, err)
	var m textOnlyMetadata
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestResolveContentURI(t *testing.T) {
	uri, err := resolveContentURI("ar://given", "ignored", "")
	require.NoError(t, err)
	assert.Equal(t, "ar://given", uri)

	uri, err = resolveContentURI(" ipfs://Qm ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "ipfs://Qm", uri)

	m := decodeContentURI(t, mustResolve(t, "", "plain words", "fr"))
	assert.Equal(t, "plain words", m.Lens.Content)
	assert.Equal(t, "fr", m.Lens.Locale)
}

func TestResolveContentURIKeepsLinksAsText(t *testing.T) {
	for _, text := range []string{"https://example.com is live", "ipfs://Qm", "data:hello"} {
		m := decodeContentURI(t, mustResolve(t, "", text, ""))
		assert.Equal(t, text, m.Lens.Content)
	}
}

func TestResolveContentURIRejectsBadURI(t *testing.T) {
	for _, uri := range []string{"https://example.com is live", "not a uri", "ftp://host/meta.json"} {
		_, err := resolveContentURI(uri, "", "")
		var verr social.ValidationError
		assert.ErrorAs(t, err, &verr, uri)
	}
}

func mustResolve(t *testing.T, uri, text, locale string) string {
	t.Helper()
	out, err := resolveContentURI(uri, text, locale)
	require.NoError(t, err)
	return out
}
