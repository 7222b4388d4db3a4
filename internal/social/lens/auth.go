package lens

import (
	"context"
	"time"

	"github.com/blacktop/xfeed/internal/custody"
	"github.com/blacktop/xfeed/internal/logutil"
	"github.com/blacktop/xfeed/internal/social"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/golang-jwt/jwt/v5"
)

// authenticator runs the Lens exchange: default profile, challenge, wallet
// signature, authenticate, access token. Steps run strictly in order.
type authenticator struct {
	api    API
	wallet social.Wallet
	now    func() time.Time
}

func authFailed(step string, err error) error {
	return social.AuthenticationError{Platform: social.PlatformLens, Step: step, Err: err}
}

func (a *authenticator) Authenticate(ctx context.Context) (social.Credentials, error) {
	if a.wallet == nil {
		return social.Credentials{}, authFailed("wallet", social.ErrNoWalletConnected)
	}
	address, err := a.wallet.Address(ctx)
	if err != nil {
		return social.Credentials{}, authFailed("wallet", err)
	}

	profile, err := a.api.DefaultProfile(ctx, address)
	if err != nil {
		return social.Credentials{}, authFailed("profile", err)
	}
	if profile == nil {
		return social.Credentials{}, authFailed("profile", social.ErrNoProfileFound)
	}

	challenge, err := a.api.Challenge(ctx, profile.ID, address)
	if err != nil {
		return social.Credentials{}, authFailed("challenge", err)
	}

	sig, err := a.wallet.SignMessage(ctx, challenge.Text)
	if err != nil {
		return social.Credentials{}, authFailed("sign", social.SigningError{Err: err})
	}

	if err := a.api.Authenticate(ctx, challenge.ID, hexutil.Encode(sig)); err != nil {
		return social.Credentials{}, authFailed("authenticate", err)
	}

	token, err := a.api.AccessToken(ctx)
	if err != nil {
		return social.Credentials{}, authFailed("access token", err)
	}

	window := custody.NewPayload(a.now())
	creds := social.Credentials{
		ProfileID: profile.ID,
		Token:     token,
		CreatedAt: window.IssuedAt(),
		ExpiresAt: window.Expiry(),
	}
	creds.ExpiresAt = tokenDeadline(token, creds.ExpiresAt)
	logutil.Debugf("lens session created: profile=%s token=%s expires=%s", profile.ID, logutil.Redact(token), creds.ExpiresAt)
	return creds, nil
}

// tokenDeadline returns the exp claim of a Lens access token when it comes
// before fallback. The token is read, not verified; Lens verifies it on use.
func tokenDeadline(token string, fallback time.Time) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return fallback
	}
	if exp := claims.ExpiresAt.Time; exp.Before(fallback) {
		return exp
	}
	return fallback
}

func (a *authenticator) Invalidate(ctx context.Context, token string) error {
	return a.api.Logout(ctx)
}
