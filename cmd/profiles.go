package cmd

import (
	"context"

	"github.com/blacktop/xfeed/internal/social"
	"github.com/spf13/cobra"
)

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles", "user"},
		Short:   "Look up and follow profiles",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <profile-id|handle>",
			Short: "Show a profile",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				profile, err := current.provider.GetProfileByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return current.printProfile(profile)
			},
		},
		newProfileListCommand("followers <profile-id>", "List the followers of a profile", cobra.ExactArgs(1), byProfile(social.Provider.GetFollowers)),
		newProfileListCommand("following <profile-id>", "List the profiles a profile follows", cobra.ExactArgs(1), byProfile(social.Provider.GetFollowings)),
		newProfileListCommand("suggested", "List profiles worth following", cobra.NoArgs, func(ctx context.Context, _ []string, ind *social.Indicator) (*social.Pageable[social.Profile], error) {
			return current.provider.GetSuggestedFollows(ctx, ind)
		}),
		newFollowCommand("follow", "Follow a profile", "followed", social.Provider.Follow),
		newFollowCommand("unfollow", "Unfollow a profile", "unfollowed", social.Provider.Unfollow),
	)
	return cmd
}

type profileLister func(ctx context.Context, args []string, indicator *social.Indicator) (*social.Pageable[social.Profile], error)

// byProfile binds a per-profile listing method to the running provider; the
// profile id is the first argument.
func byProfile(list func(social.Provider, context.Context, string, *social.Indicator) (*social.Pageable[social.Profile], error)) profileLister {
	return func(ctx context.Context, args []string, ind *social.Indicator) (*social.Pageable[social.Profile], error) {
		return list(current.provider, ctx, args[0], ind)
	}
}

func newProfileListCommand(use, short string, args cobra.PositionalArgs, list profileLister) *cobra.Command {
	var cursor string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := list(cmd.Context(), args, indicatorFor(cursor))
			if err != nil {
				return err
			}
			return current.printProfiles(page)
		},
	}
	addCursorFlag(cmd, &cursor)
	return cmd
}

func newFollowCommand(use, short, verb string, act func(social.Provider, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <profile-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := act(current.provider, cmd.Context(), args[0]); err != nil {
				return err
			}
			return current.done(verb, args[0])
		},
	}
}

func newNotificationsCommand() *cobra.Command {
	var cursor string
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List your notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := current.provider.GetNotifications(cmd.Context(), indicatorFor(cursor))
			if err != nil {
				return err
			}
			return current.printNotifications(page)
		},
	}
	addCursorFlag(cmd, &cursor)
	return cmd
}
