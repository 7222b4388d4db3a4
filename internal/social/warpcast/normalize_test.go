package warpcast

import (
	"encoding/json"
	"testing"

	"github.com/blacktop/xfeed/internal/social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIDAcceptsNumbersAndStrings(t *testing.T) {
	var v struct {
		A FID `json:"a"`
		B FID `json:"b"`
		C FID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 3, "b": "17", "c": null}`), &v))
	assert.Equal(t, FID("3"), v.A)
	assert.Equal(t, FID("17"), v.B)
	assert.Empty(t, v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a": "dwr"}`), &v))
}

func TestFIDDecodesByTokenType(t *testing.T) {
	var v struct {
		A FID `json:"a"`
	}
	v.A = "9"
	require.NoError(t, json.Unmarshal([]byte(`{"a": ""}`), &v))
	assert.Empty(t, v.A)

	for _, body := range []string{
		`{"a": "\"42\""}`,
		`{"a": true}`,
		`{"a": [1]}`,
		`{"a": -3}`,
		`{"a": 1.5}`,
	} {
		assert.Error(t, json.Unmarshal([]byte(body), &v), body)
	}
}

func TestFormatPostReplies(t *testing.T) {
	var root, reply, nested Cast
	require.NoError(t, json.Unmarshal([]byte(castJSON("0xroot", 1)), &root))
	reply = root
	reply.Hash = "0xreply"
	nested = reply
	nested.Hash = "0xnested"
	nested.ParentHash = "0xreply"

	post, err := formatPost(root)
	require.NoError(t, err)
	assert.Empty(t, post.ParentPostID)

	post, err = formatPost(reply)
	require.NoError(t, err)
	assert.Equal(t, "0xroot", post.ParentPostID)

	post, err = formatPost(nested)
	require.NoError(t, err)
	assert.Equal(t, "0xreply", post.ParentPostID)
}

func TestFormatProfileRequiresIdentity(t *testing.T) {
	_, err := formatProfile(User{Username: "anon"})
	var verr social.ValidationError
	assert.ErrorAs(t, err, &verr)

	profile, err := formatProfile(User{FID: "5", Username: "eve"})
	require.NoError(t, err)
	assert.Equal(t, "eve", profile.DisplayName)
	assert.Nil(t, profile.ViewerContext)
	assert.Equal(t, social.ProfileStatusActive, profile.Status)
}

func TestFormatPostsFailsWholePage(t *testing.T) {
	var good Cast
	require.NoError(t, json.Unmarshal([]byte(castJSON("0x1", 0)), &good))
	bad := good
	bad.Hash = ""

	_, err := formatPosts([]Cast{good, bad})
	assert.Error(t, err)
}
