package warpcast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FID is a Farcaster id. Warpcast sends it as a number on most endpoints and
// as a string on a few.
type FID string

func (f *FID) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	var s string
	switch t := v.(type) {
	case nil:
		*f = ""
		return nil
	case json.Number:
		s = t.String()
	case string:
		if t == "" {
			*f = ""
			return nil
		}
		s = t
	default:
		return fmt.Errorf("fid must be a number or a string, got %s", data)
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return fmt.Errorf("invalid fid %q: %w", s, err)
	}
	*f = FID(s)
	return nil
}

type Pfp struct {
	URL      string `json:"url"`
	Verified bool   `json:"verified"`
}

type ViewerContext struct {
	Following  bool `json:"following"`
	FollowedBy bool `json:"followedBy"`
}

type User struct {
	FID         FID    `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Pfp         *Pfp   `json:"pfp"`
	Profile     *struct {
		Bio struct {
			Text string `json:"text"`
		} `json:"bio"`
	} `json:"profile"`
	FollowerCount  int            `json:"followerCount"`
	FollowingCount int            `json:"followingCount"`
	ViewerContext  *ViewerContext `json:"viewerContext"`
}

type counter struct {
	Count int `json:"count"`
}

type Cast struct {
	Hash       string `json:"hash"`
	ThreadHash string `json:"threadHash"`
	ParentHash string `json:"parentHash"`
	Author     User   `json:"author"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
	Embeds     *struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"embeds"`
	Replies   counter `json:"replies"`
	Reactions counter `json:"reactions"`
	Recasts   counter `json:"recasts"`
}

type Like struct {
	Type      string `json:"type"`
	Hash      string `json:"hash"`
	Reactor   User   `json:"reactor"`
	Timestamp int64  `json:"timestamp"`
	CastHash  string `json:"castHash"`
}

type next struct {
	Cursor string `json:"cursor"`
}

type castResponse struct {
	Result struct {
		Cast *Cast `json:"cast"`
	} `json:"result"`
}

type castsResponse struct {
	Result struct {
		Casts []Cast `json:"casts"`
	} `json:"result"`
	Next *next `json:"next"`
}

type feedResponse struct {
	Result struct {
		Feed []Cast `json:"feed"`
	} `json:"result"`
	Next *next `json:"next"`
}

type userResponse struct {
	Result struct {
		User *User `json:"user"`
	} `json:"result"`
}

type usersResponse struct {
	Result struct {
		Users []User `json:"users"`
	} `json:"result"`
	Next *next `json:"next"`
}

type likesResponse struct {
	Result struct {
		Likes []Like `json:"likes"`
	} `json:"result"`
	Next *next `json:"next"`
}

type likeResponse struct {
	Result struct {
		Like *Like `json:"like"`
	} `json:"result"`
}

type recastResponse struct {
	Result struct {
		CastHash string `json:"castHash"`
	} `json:"result"`
}

type successResponse struct {
	Result struct {
		Success bool `json:"success"`
	} `json:"result"`
}

type authResponse struct {
	Result struct {
		Token struct {
			Secret    string `json:"secret"`
			ExpiresAt int64  `json:"expiresAt"`
		} `json:"token"`
	} `json:"result"`
}

// Grant is a delegated key pair minted by the sign-in service. It becomes
// usable once the user approves the signed key request behind DeeplinkURL.
type Grant struct {
	PublicKey   string `json:"publicKey"`
	PrivateKey  string `json:"privateKey"`
	FID         FID    `json:"fid"`
	Token       string `json:"token"`
	Timestamp   int64  `json:"timestamp"`
	ExpiresAt   int64  `json:"expiresAt"`
	DeeplinkURL string `json:"deeplinkUrl"`
}

type grantResponse struct {
	Success bool   `json:"success"`
	Data    *Grant `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Signed key request states.
const (
	KeyRequestPending   = "pending"
	KeyRequestApproved  = "approved"
	KeyRequestCompleted = "completed"
)

type keyRequestResponse struct {
	Result struct {
		SignedKeyRequest struct {
			Token   string `json:"token"`
			State   string `json:"state"`
			UserFID FID    `json:"userFid"`
		} `json:"signedKeyRequest"`
	} `json:"result"`
}

func (n *next) cursor() string {
	if n == nil {
		return ""
	}
	return n.Cursor
}

// body helpers

type castHashBody struct {
	CastHash string `json:"castHash"`
}

type targetBody struct {
	TargetFID json.Number `json:"targetFid"`
}

type parentRef struct {
	Hash string `json:"hash"`
}

type castBody struct {
	Text   string     `json:"text"`
	Parent *parentRef `json:"parent,omitempty"`
	Embeds []string   `json:"embeds,omitempty"`
}
