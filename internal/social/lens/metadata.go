package lens

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const (
	textOnlySchema = "https://json-schemas.lens.dev/publications/text-only/3.0.0.json"
	dataURIPrefix  = "data:application/json;base64,"
	defaultLocale  = "en"
	appID          = "xfeed"
)

type textOnlyMetadata struct {
	Schema string `json:"$schema"`
	Lens   struct {
		ID               string `json:"id"`
		Content          string `json:"content"`
		Locale           string `json:"locale"`
		MainContentFocus string `json:"mainContentFocus"`
		AppID            string `json:"appId"`
	} `json:"lens"`
}

// TextContentURI encodes content as text-only publication metadata in a data URI.
func TextContentURI(content, locale string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", invalid("publication content is empty")
	}
	if locale == "" {
		locale = defaultLocale
	}

	var m textOnlyMetadata
	m.Schema = textOnlySchema
	m.Lens.ID = uuid.NewString()
	m.Lens.Content = content
	m.Lens.Locale = locale
	m.Lens.MainContentFocus = "TEXT_ONLY"
	m.Lens.AppID = appID

	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode publication metadata: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(raw), nil
}

var contentSchemes = map[string]struct{}{
	"https": {}, "http": {}, "ipfs": {}, "ar": {}, "lens": {}, "data": {},
}

// checkContentURI accepts a single absolute URI on a scheme Lens can resolve.
func checkContentURI(uri string) error {
	if uri == "" || strings.ContainsAny(uri, " \t\r\n") {
		return invalid("content uri %q is not a single uri", uri)
	}
	u, err := url.ParseRequestURI(uri)
	if err != nil {
		return invalid("content uri %q: %v", uri, err)
	}
	if _, ok := contentSchemes[strings.ToLower(u.Scheme)]; !ok {
		return invalid("content uri %q: unsupported scheme %q", uri, u.Scheme)
	}
	return nil
}

// resolveContentURI returns uri when set and otherwise builds metadata from
// text. Text is always content, even when it looks like a link.
func resolveContentURI(uri, text, locale string) (string, error) {
	if uri = strings.TrimSpace(uri); uri != "" {
		if err := checkContentURI(uri); err != nil {
			return "", err
		}
		return uri, nil
	}
	return TextContentURI(text, locale)
}
