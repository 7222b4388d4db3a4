// Package custody builds and verifies Farcaster custody bearer tokens: an
// EIP-191 wallet signature over a canonical, time-boxed JSON payload.
package custody

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blacktop/xfeed/internal/social"
	"github.com/blacktop/xfeed/internal/wallet"
	"github.com/gowebpki/jcs"
)

const (
	// Scheme prefixes every token.
	Scheme = "eip191"
	// Method is the only payload method the auth endpoint accepts.
	Method = "generateToken"
	// Lifetime is the validity window of a payload.
	Lifetime = 24 * time.Hour
)

// Signer produces EIP-191 signatures.
type Signer interface {
	SignMessage(ctx context.Context, message string) ([]byte, error)
}

// Params holds the payload timestamps in epoch milliseconds.
type Params struct {
	Timestamp int64 `json:"timestamp"`
	ExpiresAt int64 `json:"expiresAt"`
}

// Payload is the signed body of a custody bearer.
type Payload struct {
	Method string `json:"method"`
	Params Params `json:"params"`
}

// NewPayload returns a payload issued at now and expiring one day later.
func NewPayload(now time.Time) Payload {
	ts := now.UnixMilli()
	return Payload{
		Method: Method,
		Params: Params{
			Timestamp: ts,
			ExpiresAt: ts + Lifetime.Milliseconds(),
		},
	}
}

// IssuedAt returns the payload timestamp.
func (p Payload) IssuedAt() time.Time { return time.UnixMilli(p.Params.Timestamp) }

// Expiry returns the payload expiry.
func (p Payload) Expiry() time.Time { return time.UnixMilli(p.Params.ExpiresAt) }

// Canonicalize serializes p per RFC 8785. Generation and verification both
// go through here; any other serialization of a payload breaks every token.
func Canonicalize(p Payload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal custody payload: %w", err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize custody payload: %w", err)
	}
	return out, nil
}

// Generate signs a payload issued now.
func Generate(ctx context.Context, signer Signer) (string, Payload, error) {
	return GenerateAt(ctx, signer, time.Now())
}

// GenerateAt signs a payload issued at now and returns the token and payload.
func GenerateAt(ctx context.Context, signer Signer, now time.Time) (string, Payload, error) {
	if signer == nil {
		return "", Payload{}, social.SigningError{Err: social.ErrNoWalletConnected}
	}

	payload := NewPayload(now)
	message, err := Canonicalize(payload)
	if err != nil {
		return "", Payload{}, err
	}

	sig, err := signer.SignMessage(ctx, string(message))
	if err != nil {
		return "", Payload{}, social.SigningError{Err: err}
	}
	if len(sig) == 0 {
		return "", Payload{}, social.SigningError{Err: errors.New("wallet returned an empty signature")}
	}

	return Encode(sig), payload, nil
}

// Encode formats a raw signature as a bearer token.
func Encode(sig []byte) string {
	return Scheme + ":" + base64.StdEncoding.EncodeToString(sig)
}

// Decode splits token on its first colon and base64-decodes the signature.
func Decode(token string) ([]byte, error) {
	scheme, encoded, ok := strings.Cut(token, ":")
	if !ok {
		return nil, social.MalformedTokenError{Reason: "missing scheme separator"}
	}
	if scheme != Scheme {
		return nil, social.MalformedTokenError{Reason: fmt.Sprintf("unexpected scheme %q", scheme)}
	}
	sig, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, social.MalformedTokenError{Reason: "signature is not base64", Err: err}
	}
	if len(sig) != wallet.SignatureLength {
		return nil, social.MalformedTokenError{Reason: fmt.Sprintf("signature has %d bytes, want %d", len(sig), wallet.SignatureLength)}
	}
	return sig, nil
}

// Verify reports whether token is a signature of payload by address. An
// address mismatch yields false; an undecodable token yields a MalformedTokenError.
func Verify(token string, payload Payload, address string) (bool, error) {
	sig, err := Decode(token)
	if err != nil {
		return false, err
	}
	message, err := Canonicalize(payload)
	if err != nil {
		return false, err
	}

	recovered, err := wallet.RecoverAddress(message, sig)
	switch {
	case errors.Is(err, wallet.ErrInvalidRecoveryID):
		return false, social.MalformedTokenError{Reason: "invalid recovery id", Err: err}
	case err != nil:
		return false, nil
	}
	return wallet.SameAddress(recovered, address), nil
}
