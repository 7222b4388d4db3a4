package warpcast

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/blacktop/xfeed/internal/custody"
	"github.com/blacktop/xfeed/internal/logutil"
	"github.com/blacktop/xfeed/internal/social"
	"golang.org/x/time/rate"
)

// DefaultPollInterval paces signed key request polling.
const DefaultPollInterval = 2 * time.Second

var errNoSigninURL = errors.New("no sign-in endpoint configured")

func authFailed(step string, err error) error {
	return social.AuthenticationError{Platform: social.PlatformWarpcast, Step: step, Err: err}
}

// custodyAuth proves custody of the account's wallet with a custody bearer,
// trades it for an API secret and resolves the account behind the secret.
type custodyAuth struct {
	client *Client
	wallet social.Wallet
	now    func() time.Time
}

func (a *custodyAuth) Authenticate(ctx context.Context) (social.Credentials, error) {
	if a.wallet == nil {
		return social.Credentials{}, authFailed("wallet", social.ErrNoWalletConnected)
	}

	token, payload, err := custody.GenerateAt(ctx, a.wallet, a.now())
	if err != nil {
		return social.Credentials{}, authFailed("sign", err)
	}

	var auth authResponse
	if err := a.client.do(ctx, http.MethodPut, "auth", nil, token, payload, &auth); err != nil {
		return social.Credentials{}, authFailed("auth", err)
	}
	secret := auth.Result.Token.Secret
	if secret == "" {
		return social.Credentials{}, authFailed("auth", errors.New("no secret in auth response"))
	}

	var me userResponse
	if err := a.client.get(ctx, "me", nil, secret, &me); err != nil {
		return social.Credentials{}, authFailed("me", err)
	}
	if me.Result.User == nil || me.Result.User.FID == "" {
		return social.Credentials{}, authFailed("me", social.ErrNoProfileFound)
	}

	logutil.Debugf("warpcast session created: fid=%s token=%s", me.Result.User.FID, logutil.Redact(secret))
	return social.Credentials{
		ProfileID: string(me.Result.User.FID),
		Token:     secret,
		CreatedAt: payload.IssuedAt(),
		ExpiresAt: payload.Expiry(),
	}, nil
}

// Invalidate revokes the API secret.
func (a *custodyAuth) Invalidate(ctx context.Context, token string) error {
	return a.client.do(ctx, http.MethodDelete, "auth", nil, token, nil, nil)
}

// grantAuth mints a session from a delegated key pair. The user approves the
// key request out of band by opening the deep link handed to present.
type grantAuth struct {
	client    *Client
	signinURL string
	interval  time.Duration
	present   func(deeplinkURL string)
	now       func() time.Time
}

func (a *grantAuth) Authenticate(ctx context.Context) (social.Credentials, error) {
	if a.signinURL == "" {
		return social.Credentials{}, authFailed("signin", errNoSigninURL)
	}

	var resp grantResponse
	if err := a.client.do(ctx, http.MethodPost, a.signinURL, nil, "", nil, &resp); err != nil {
		return social.Credentials{}, authFailed("signin", err)
	}
	if !resp.Success || resp.Data == nil {
		msg := "sign-in rejected"
		if resp.Error != nil && resp.Error.Message != "" {
			msg = resp.Error.Message
		}
		return social.Credentials{}, authFailed("signin", errors.New(msg))
	}
	grant := resp.Data

	if a.present != nil {
		a.present(grant.DeeplinkURL)
	}
	logutil.Debugf("warpcast signed key request pending: fid=%s deeplink=%t", grant.FID, grant.DeeplinkURL != "")

	if err := a.waitForApproval(ctx, grant.Token); err != nil {
		return social.Credentials{}, authFailed("approval", err)
	}

	creds := social.Credentials{
		ProfileID: string(grant.FID),
		Token:     grant.PrivateKey,
		CreatedAt: time.UnixMilli(grant.Timestamp),
		ExpiresAt: time.UnixMilli(grant.ExpiresAt),
	}
	if grant.Timestamp == 0 || grant.ExpiresAt == 0 {
		window := custody.NewPayload(a.now())
		creds.CreatedAt, creds.ExpiresAt = window.IssuedAt(), window.Expiry()
	}
	return creds, nil
}

// waitForApproval polls the signed key request until it completes or ctx ends.
func (a *grantAuth) waitForApproval(ctx context.Context, token string) error {
	interval := a.interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	query := url.Values{"token": {token}}

	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}

		var resp keyRequestResponse
		if err := a.client.get(ctx, "signed-key-request", query, "", &resp); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		state := resp.Result.SignedKeyRequest.State
		logutil.Debugf("warpcast signed key request state: %s", state)
		if state == KeyRequestCompleted {
			return nil
		}
	}
}

// Invalidate is a no-op. Delegated keys are revoked onchain by their owner.
func (a *grantAuth) Invalidate(ctx context.Context, token string) error {
	return nil
}
