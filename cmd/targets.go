package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/blacktop/xfeed/internal/config"
	"github.com/blacktop/xfeed/internal/crosspost"
	"github.com/blacktop/xfeed/internal/crosspost/bluesky"
	"github.com/blacktop/xfeed/internal/crosspost/mastodon"
	"github.com/blacktop/xfeed/internal/crosspost/twitter"
)

type targetConstructor func(context.Context, *config.Config) (crosspost.Target, error)

var targetConstructors = map[string]targetConstructor{
	"bluesky": func(ctx context.Context, cfg *config.Config) (crosspost.Target, error) {
		return bluesky.New(ctx, cfg.Bluesky)
	},
	"mastodon": func(ctx context.Context, cfg *config.Config) (crosspost.Target, error) {
		return mastodon.New(ctx, cfg.Mastodon)
	},
	"twitter": func(ctx context.Context, cfg *config.Config) (crosspost.Target, error) {
		return twitter.New(ctx, cfg.Twitter)
	},
}

// buildTargets constructs every named target and reports all failures at once.
func buildTargets(ctx context.Context, cfg *config.Config, names []string) ([]crosspost.Target, error) {
	targets := make([]crosspost.Target, 0, len(names))
	var errs []error
	for _, name := range names {
		build, ok := targetConstructors[name]
		if !ok {
			errs = append(errs, fmt.Errorf("target %q is not implemented", name))
			continue
		}
		target, err := build(ctx, cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		targets = append(targets, target)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return targets, nil
}
