package social

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnsupportedErrorIs(t *testing.T) {
	err := error(UnsupportedError{Platform: PlatformLens, Operation: CapGetReactors})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, "lens does not support getReactors", err.Error())
}

func TestAuthenticationErrorUnwrap(t *testing.T) {
	err := error(AuthenticationError{Platform: PlatformLens, Step: "profile", Err: ErrNoProfileFound})
	assert.ErrorIs(t, err, ErrNoProfileFound)
	assert.NotErrorIs(t, err, ErrNoWalletConnected)
}

func TestUpstreamRequestErrorMessage(t *testing.T) {
	err := UpstreamRequestError{Platform: PlatformWarpcast, Operation: "getPostById", StatusCode: 404, Message: "cast not found"}
	assert.Equal(t, "warpcast getPostById request failed (status 404): cast not found", err.Error())

	cause := errors.New("dial tcp: refused")
	err = UpstreamRequestError{Platform: PlatformWarpcast, Operation: "discoverPosts", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestCapabilitySet(t *testing.T) {
	set := NewCapabilitySet(CapGetReactors)
	assert.False(t, set.Has(CapGetReactors))
	assert.True(t, set.Has(CapDiscoverPosts))
	assert.Len(t, set, len(AllCapabilities)-1)
}

func TestParsePlatform(t *testing.T) {
	p, err := ParsePlatform(" Farcaster ")
	assert.NoError(t, err)
	assert.Equal(t, PlatformWarpcast, p)

	_, err = ParsePlatform("myspace")
	assert.Error(t, err)
}
