package lens

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blacktop/xfeed/internal/social"
)

// API is the boundary to the Lens SDK. GraphQL implements it against the
// public API; tests substitute fakes.
type API interface {
	DefaultProfile(ctx context.Context, address string) (*ProfileData, error)
	Challenge(ctx context.Context, profileID, signedBy string) (*Challenge, error)
	Authenticate(ctx context.Context, challengeID, signature string) error
	AccessToken(ctx context.Context) (string, error)
	SetAccessToken(token string)
	Logout(ctx context.Context) error

	Profile(ctx context.Context, req ProfileRequest) (*ProfileData, error)
	Publication(ctx context.Context, id string) (*PublicationData, error)
	ExplorePublications(ctx context.Context, cursor string) (*PublicationPage, error)
	Publications(ctx context.Context, req PublicationsRequest) (*PublicationPage, error)
	Followers(ctx context.Context, profileID, cursor string) (*ProfilePage, error)
	Following(ctx context.Context, profileID, cursor string) (*ProfilePage, error)
	ExploreProfiles(ctx context.Context, cursor string) (*ProfilePage, error)
	Notifications(ctx context.Context, cursor string) (*NotificationPage, error)

	PostOnchain(ctx context.Context, contentURI string) (*RelayResult, error)
	MirrorOnchain(ctx context.Context, publicationID string) (*RelayResult, error)
	QuoteOnchain(ctx context.Context, publicationID, contentURI string) (*RelayResult, error)
	CommentOnchain(ctx context.Context, publicationID, contentURI string) (*RelayResult, error)
	Follow(ctx context.Context, profileID string) (*RelayResult, error)
	Unfollow(ctx context.Context, profileID string) (*RelayResult, error)
	AddBookmark(ctx context.Context, publicationID string) error
	AddReaction(ctx context.Context, publicationID string) error
	RemoveReaction(ctx context.Context, publicationID string) error
}

// ProfileRequest selects a profile by id or by handle.
type ProfileRequest struct {
	ProfileID string
	Handle    string
}

// PublicationType filters publication listings.
type PublicationType string

const (
	PublicationTypePost    PublicationType = "POST"
	PublicationTypeComment PublicationType = "COMMENT"
	PublicationTypeMirror  PublicationType = "MIRROR"
	PublicationTypeQuote   PublicationType = "QUOTE"
)

// PublicationsRequest is the `where` clause of a publications query.
type PublicationsRequest struct {
	From      []string
	Types     []PublicationType
	CommentOn string
	// ActedBy selects publications the profile reacted to or collected.
	ActedBy   string
	Cursor    string
}

// Challenge is the text a wallet signs to prove profile ownership.
type Challenge struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Handle struct {
	LocalName  string `json:"localName"`
	FullHandle string `json:"fullHandle"`
}

type ImageURI struct {
	Optimized *struct {
		URI string `json:"uri"`
	} `json:"optimized"`
}

func (i *ImageURI) uri() string {
	if i == nil || i.Optimized == nil {
		return ""
	}
	return i.Optimized.URI
}

// Picture is the ProfilePicture union: ImageSet or NftImage.
type Picture struct {
	ImageURI
	Image *ImageURI `json:"image"`
}

func (p *Picture) uri() string {
	if p == nil {
		return ""
	}
	if u := p.ImageURI.uri(); u != "" {
		return u
	}
	return p.Image.uri()
}

type ProfileMetadata struct {
	DisplayName string   `json:"displayName"`
	Bio         string   `json:"bio"`
	Picture     *Picture `json:"picture"`
}

type OptionalBool struct {
	Value bool `json:"value"`
}

type ProfileData struct {
	ID        string           `json:"id"`
	CreatedAt string           `json:"createdAt"`
	Handle    *Handle          `json:"handle"`
	Metadata  *ProfileMetadata `json:"metadata"`
	Stats     struct {
		Followers int `json:"followers"`
		Following int `json:"following"`
	} `json:"stats"`
	Operations *struct {
		IsFollowedByMe OptionalBool `json:"isFollowedByMe"`
		IsFollowingMe  OptionalBool `json:"isFollowingMe"`
	} `json:"operations"`
	OnchainIdentity *struct {
		ProofOfHumanity bool `json:"proofOfHumanity"`
	} `json:"onchainIdentity"`
}

type PublicationMetadata struct {
	Typename string `json:"__typename"`
	Content  string `json:"content"`
	Locale   string `json:"locale"`
	RawURI   string `json:"rawURI"`
	Asset    *struct {
		Image *ImageURI `json:"image"`
	} `json:"asset"`
}

type PublicationStats struct {
	Comments         int `json:"comments"`
	Mirrors          int `json:"mirrors"`
	Quotes           int `json:"quotes"`
	Reactions        int `json:"reactions"`
	CountOpenActions int `json:"countOpenActions"`
}

type Ref struct {
	ID string `json:"id"`
}

// PublicationData is the AnyPublication union: Post, Comment, Quote or Mirror.
type PublicationData struct {
	Typename  string               `json:"__typename"`
	ID        string               `json:"id"`
	CreatedAt string               `json:"createdAt"`
	By        ProfileData          `json:"by"`
	Metadata  *PublicationMetadata `json:"metadata"`
	Stats     *PublicationStats    `json:"stats"`
	CommentOn *Ref                 `json:"commentOn"`
	QuoteOn   *Ref                 `json:"quoteOn"`
	MirrorOn  *PublicationData     `json:"mirrorOn"`
}

type PageInfo struct {
	Next *string `json:"next"`
	Prev *string `json:"prev"`
}

// NextCursor returns the cursor of the following page, or "".
func (p PageInfo) NextCursor() string {
	if p.Next == nil {
		return ""
	}
	return *p.Next
}

type PublicationPage struct {
	Items    []PublicationData `json:"items"`
	PageInfo PageInfo          `json:"pageInfo"`
}

type ProfilePage struct {
	Items    []ProfileData `json:"items"`
	PageInfo PageInfo      `json:"pageInfo"`
}

type NotificationPage struct {
	Items    []RawNotification `json:"items"`
	PageInfo PageInfo          `json:"pageInfo"`
}

// RelayResult is the RelayMutationResult union.
type RelayResult struct {
	Typename string `json:"__typename"`
	TxHash   string `json:"txHash,omitempty"`
	TxID     string `json:"txId,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Success reports whether the mutation was accepted for relay.
func (r *RelayResult) Success() bool {
	return r != nil && r.Typename == "RelaySuccess"
}

// RawNotification keeps a notification undecoded until its kind is known.
type RawNotification struct {
	Typename string
	raw      json.RawMessage
}

func (r *RawNotification) UnmarshalJSON(data []byte) error {
	var head struct {
		Typename string `json:"__typename"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	r.Typename = head.Typename
	r.raw = append(r.raw[:0], data...)
	return nil
}

func (r RawNotification) MarshalJSON() ([]byte, error) {
	if r.raw == nil {
		return json.Marshal(struct {
			Typename string `json:"__typename"`
		}{r.Typename})
	}
	return r.raw, nil
}

// UpstreamNotification is one of the *NotificationData types below.
type UpstreamNotification interface {
	notificationID() string
}

type MirrorNotificationData struct {
	ID      string `json:"id"`
	Mirrors []struct {
		MirrorID   string      `json:"mirrorId"`
		MirroredAt string      `json:"mirroredAt"`
		Profile    ProfileData `json:"profile"`
	} `json:"mirrors"`
	Publication Ref `json:"publication"`
}

type QuoteNotificationData struct {
	ID    string          `json:"id"`
	Quote PublicationData `json:"quote"`
}

type ReactionNotificationData struct {
	ID        string `json:"id"`
	Reactions []struct {
		Profile   ProfileData `json:"profile"`
		Reactions []struct {
			Reaction  string `json:"reaction"`
			ReactedAt string `json:"reactedAt"`
		} `json:"reactions"`
	} `json:"reactions"`
	Publication Ref `json:"publication"`
}

type CommentNotificationData struct {
	ID      string          `json:"id"`
	Comment PublicationData `json:"comment"`
}

type FollowNotificationData struct {
	ID        string        `json:"id"`
	Followers []ProfileData `json:"followers"`
}

type MentionNotificationData struct {
	ID          string          `json:"id"`
	Publication PublicationData `json:"publication"`
}

func (n *MirrorNotificationData) notificationID() string   { return n.ID }
func (n *QuoteNotificationData) notificationID() string    { return n.ID }
func (n *ReactionNotificationData) notificationID() string { return n.ID }
func (n *CommentNotificationData) notificationID() string  { return n.ID }
func (n *FollowNotificationData) notificationID() string   { return n.ID }
func (n *MentionNotificationData) notificationID() string  { return n.ID }

var notificationKinds = map[string]social.NotificationKind{
	"MirrorNotification":   social.NotificationMirror,
	"QuoteNotification":    social.NotificationQuote,
	"ReactionNotification": social.NotificationReaction,
	"CommentNotification":  social.NotificationComment,
	"FollowNotification":   social.NotificationFollow,
	"MentionNotification":  social.NotificationMention,
}

// Decode returns the typed notification, or nil for kinds that have no
// unified representation (e.g. acted-on notifications). A known kind whose
// body does not decode is a MalformedNotificationError.
func (r RawNotification) Decode() (UpstreamNotification, error) {
	kind, ok := notificationKinds[r.Typename]
	if !ok {
		return nil, nil
	}
	var target UpstreamNotification
	switch kind {
	case social.NotificationMirror:
		target = &MirrorNotificationData{}
	case social.NotificationQuote:
		target = &QuoteNotificationData{}
	case social.NotificationReaction:
		target = &ReactionNotificationData{}
	case social.NotificationComment:
		target = &CommentNotificationData{}
	case social.NotificationFollow:
		target = &FollowNotificationData{}
	case social.NotificationMention:
		target = &MentionNotificationData{}
	}
	if err := json.Unmarshal(r.raw, target); err != nil {
		var head struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(r.raw, &head)
		return nil, malformed(head.ID, kind, fmt.Sprintf("decode %s: %v", r.Typename, err))
	}
	return target, nil
}
