package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/blacktop/xfeed/internal/logutil"
	"github.com/blacktop/xfeed/internal/social"
	"github.com/blacktop/xfeed/internal/social/warpcast"
	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
)

func newLoginCommand() *cobra.Command {
	var (
		grant   bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with your wallet and cache the session",
		Long: "login runs the platform's wallet-signature exchange. On Warpcast, --grant " +
			"instead requests a delegated key that you approve in the Warpcast app.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current
			ctx := cmd.Context()
			var (
				s   *social.Session
				err error
			)
			if grant {
				s, err = a.loginByGrant(ctx, timeout)
			} else {
				s, err = a.provider.CreateSession(ctx)
			}
			if err != nil {
				return err
			}
			return a.printSession(s)
		},
	}
	cmd.Flags().BoolVar(&grant, "grant", false, "Request a delegated signer key (warpcast only)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "How long to wait for approval with --grant")
	return cmd
}

func (a *app) loginByGrant(ctx context.Context, timeout time.Duration) (*social.Session, error) {
	wp, ok := a.provider.(*warpcast.Provider)
	if !ok {
		return nil, social.UnsupportedError{Platform: a.platform(), Operation: "createSessionByGrantPermission"}
	}
	if err := a.cfg.Warpcast.RequireSignin(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s, err := wp.CreateSessionByGrantPermission(ctx, func(url string) {
		showDeeplink(os.Stderr, url)
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("no approval within %s: %w", timeout, err)
	}
	return s, err
}

func showDeeplink(w io.Writer, url string) {
	fmt.Fprintln(w, "Scan with your phone or open the link to approve xfeed in Warpcast:")
	qrterminal.GenerateHalfBlock(url, qrterminal.L, w)
	fmt.Fprintf(w, "\n%s\n\nwaiting for approval...\n", url)
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the current session and forget it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current
			if s := a.provider.Session(); s != nil {
				if err := s.Destroy(cmd.Context()); err != nil {
					// The local copy is dropped either way.
					logutil.Warnf("upstream logout failed: %v", err)
				}
			}
			if err := a.store.Delete(a.platform()); err != nil {
				return err
			}
			return a.done("logged out of", a.platform().String())
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the cached session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return current.printSession(current.provider.Session())
		},
	}
}

func (a *app) printSession(s *social.Session) error {
	state := social.StateUninitialized
	var creds social.Credentials
	if s != nil {
		state = s.State(a.now())
		creds = s.Credentials()
	}
	if a.json {
		out := map[string]any{"platform": a.platform(), "state": state.String()}
		if s != nil {
			out["profile_id"] = creds.ProfileID
			out["created_at"] = creds.CreatedAt
			out["expires_at"] = creds.ExpiresAt
		}
		return a.emitJSON(out)
	}
	if s == nil {
		a.printf("%s: not signed in\n", a.platform())
		return nil
	}
	a.printf("%s: %s as %s (expires %s)\n", a.platform(), state, creds.ProfileID, creds.ExpiresAt.Local().Format(time.DateTime))
	return nil
}
