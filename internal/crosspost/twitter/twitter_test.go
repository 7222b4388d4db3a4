package twitter

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/blacktop/xfeed/internal/config"
	"github.com/blacktop/xfeed/internal/crosspost"
	uploadtypes "github.com/michimani/gotwi/media/upload/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresAllCredentials(t *testing.T) {
	_, err := New(context.Background(), config.TwitterConfig{ConsumerKey: "k", ConsumerSecret: "s"})
	var missing config.MissingConfigError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"access_token", "access_token_secret"}, missing.Keys)
}

func TestTweetText(t *testing.T) {
	short := crosspost.Request{Text: "gm", Link: "https://hey.xyz/posts/0x1"}
	assert.Equal(t, "gm\n\nhttps://hey.xyz/posts/0x1", tweetText(short))

	long := crosspost.Request{Text: strings.Repeat("a", 300), Link: "https://hey.xyz/posts/0x1"}
	assert.Equal(t, "https://hey.xyz/posts/0x1", tweetText(long))

	noLink := crosspost.Request{Text: strings.Repeat("a", 300)}
	assert.Len(t, tweetText(noLink), 300)
}

func TestMediaTypeOf(t *testing.T) {
	mt, cat, err := mediaTypeOf("shot.PNG", nil)
	require.NoError(t, err)
	assert.Equal(t, uploadtypes.MediaTypePNG, mt)
	assert.Equal(t, uploadtypes.MediaCategoryTweetImage, cat)

	mt, cat, err = mediaTypeOf("anim.gif", nil)
	require.NoError(t, err)
	assert.Equal(t, uploadtypes.MediaTypeGIF, mt)
	assert.Equal(t, uploadtypes.MediaCategoryTweetGIF, cat)

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F', 0}
	mt, _, err = mediaTypeOf("upload.bin", jpeg)
	require.NoError(t, err)
	assert.Equal(t, uploadtypes.MediaTypeJPEG, mt)

	_, _, err = mediaTypeOf("notes.txt", []byte("plain text"))
	var verr crosspost.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAltTextBody(t *testing.T) {
	p := &altTextParams{MediaID: "123"}
	p.AltText.Text = "a cat"
	p.SetAccessToken("secret")

	body, err := p.Body()
	require.NoError(t, err)
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"media_id": "123", "alt_text": {"text": "a cat"}}`, string(raw))
	assert.Equal(t, "secret", p.AccessToken())
}
