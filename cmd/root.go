/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/blacktop/xfeed/internal/config"
	"github.com/blacktop/xfeed/internal/logutil"
	"github.com/blacktop/xfeed/internal/sessionstore"
	"github.com/blacktop/xfeed/internal/social"
	"github.com/blacktop/xfeed/internal/social/lens"
	"github.com/blacktop/xfeed/internal/social/warpcast"
	"github.com/spf13/cobra"
)

var (
	platformFlag string
	configPath   string
	verboseFlag  bool
	jsonOutput   bool
)

// sessionProvider is a provider whose session can be persisted between runs.
type sessionProvider interface {
	social.Provider
	Adopt(creds social.Credentials) bool
	Session() *social.Session
}

// app is the state shared by every subcommand of one invocation.
type app struct {
	cfg      *config.Config
	provider sessionProvider
	store    *sessionstore.Store
	out      io.Writer
	json     bool
}

var current *app

// Execute runs the root command. An interrupt cancels in-flight requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xfeed",
		Short: "Read and publish on Lens and Farcaster from the terminal",
		Long: "xfeed talks to Lens and Warpcast through one set of commands. " +
			"Sessions are signed with your wallet and cached between runs.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		Example: `  xfeed discover
  xfeed --platform warpcast login --grant
  xfeed post publish "gm" --crosspost bluesky,mastodon
  xfeed profile followers 0x01 --json`,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&platformFlag, "platform", "p", "", "Platform to use (lens or warpcast)")
	flags.StringVarP(&configPath, "config", "c", "", "Config file (default "+config.DefaultPath()+")")
	flags.BoolVarP(&verboseFlag, "verbose", "V", false, "Enable debug logging")
	flags.BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	cmd.Flags().SortFlags = false

	cmd.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newStatusCommand(),
		newDiscoverCommand(),
		newPostCommand(),
		newProfileCommand(),
		newNotificationsCommand(),
		newCompletionCommand(),
	)
	return cmd
}

func setup(cmd *cobra.Command, _ []string) error {
	logutil.SetVerbose(verboseFlag)

	path, explicit := configPath, configPath != ""
	if !explicit {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return err
	}
	if platformFlag != "" {
		cfg.Platform = platformFlag
	}

	a, err := newApp(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	current = a
	return nil
}

func newApp(cfg *config.Config, out io.Writer) (*app, error) {
	platform, err := social.ParsePlatform(cfg.Platform)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:   cfg,
		store: sessionstore.New(cfg.Sessions.Path),
		out:   out,
		json:  jsonOutput,
	}
	save := func(s *social.Session) {
		if err := a.store.Save(s); err != nil {
			logutil.Warnf("failed to persist %s session: %v", s.Platform(), err)
		}
	}
	signer := newPromptWallet(cfg.Wallet)

	switch platform {
	case social.PlatformLens:
		a.provider = lens.New(lens.NewGraphQL(cfg.Lens.Endpoint, nil), lens.Options{
			Wallet:    signer,
			OnSession: save,
		})
	case social.PlatformWarpcast:
		a.provider = warpcast.New(warpcast.NewClient(cfg.Warpcast.RootURL, nil), warpcast.Options{
			Wallet:       signer,
			SigninURL:    cfg.Warpcast.SigninURL,
			PollInterval: cfg.Warpcast.PollInterval,
			OnSession:    save,
		})
	}

	creds, ok, err := a.store.Load(platform, a.now())
	if err != nil {
		logutil.Warnf("ignoring stored sessions: %v", err)
	} else if ok && a.provider.Adopt(creds) {
		logutil.Debugf("resumed %s session for %s", platform, creds.ProfileID)
	}
	return a, nil
}

func (a *app) now() time.Time { return time.Now() }

func (a *app) platform() social.Platform { return a.provider.Platform() }

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
