package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const metadataEndpoint = "https://upload.twitter.com/1.1/media/metadata/create.json"

// altTextParams implements gotwi's parameter contract for the v1.1 media
// metadata endpoint, which gotwi does not wrap.
type altTextParams struct {
	MediaID string `json:"media_id"`
	AltText struct {
		Text string `json:"text"`
	} `json:"alt_text"`

	token string
}

func (p *altTextParams) SetAccessToken(token string)                { p.token = token }
func (p *altTextParams) AccessToken() string                        { return p.token }
func (p *altTextParams) ResolveEndpoint(endpointBase string) string { return endpointBase }
func (p *altTextParams) ParameterMap() map[string]string            { return map[string]string{} }

func (p *altTextParams) Body() (io.Reader, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(raw), nil
}

type altTextResponse struct{}

func (altTextResponse) HasPartialError() bool { return false }

func (t *Target) describe(ctx context.Context, mediaID, alt string) error {
	params := &altTextParams{MediaID: mediaID}
	params.AltText.Text = alt

	ctx = context.WithValue(ctx, "Content-Type", "application/json;charset=UTF-8")
	if err := t.api.CallAPI(ctx, metadataEndpoint, http.MethodPost, params, &altTextResponse{}); err != nil {
		return fmt.Errorf("set alt text: %w", apiError(err))
	}
	return nil
}
