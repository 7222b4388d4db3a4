package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blacktop/xfeed/internal/crosspost"
	"github.com/blacktop/xfeed/internal/social"
	"github.com/spf13/cobra"
)

// indicatorFor turns a --cursor value back into a page indicator. The chain
// of previous pages does not survive between runs.
func indicatorFor(cursor string) *social.Indicator {
	if cursor = strings.TrimSpace(cursor); cursor == "" {
		return social.NewIndicator()
	}
	return social.NextIndicator(social.NewIndicator(), cursor)
}

func addCursorFlag(cmd *cobra.Command, cursor *string) {
	cmd.Flags().StringVar(cursor, "cursor", "", "Cursor of the page to fetch, as printed by the previous page")
}

func newDiscoverCommand() *cobra.Command {
	var cursor string
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List recommended posts (no sign-in needed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := current.provider.DiscoverPosts(cmd.Context(), indicatorFor(cursor))
			if err != nil {
				return err
			}
			return current.printPosts(page)
		},
	}
	addCursorFlag(cmd, &cursor)
	return cmd
}

func newPostCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "post",
		Aliases: []string{"posts", "cast"},
		Short:   "Read and write posts",
	}
	cmd.AddCommand(
		newPostGetCommand(),
		newPostListCommand(),
		newPostThreadCommand(),
		newPublishCommand(),
		newPostCommentCommand(),
		newPostQuoteCommand(),
		newPostActionCommand("mirror", "Mirror (recast) a post", "mirrored"),
		newPostActionCommand("unmirror", "Undo a mirror", "unmirrored"),
		newPostActionCommand("collect", "Collect (bookmark) a post", "collected"),
		newPostActionCommand("like", "Upvote a post", "liked"),
		newPostActionCommand("unlike", "Remove an upvote", "unliked"),
		newPostReactorsCommand(),
	)
	return cmd
}

func newPostGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <post-id>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := current.provider.GetPostByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return current.printPost(post)
		},
	}
}

func newPostListCommand() *cobra.Command {
	var (
		cursor  string
		replies bool
		liked   bool
	)
	cmd := &cobra.Command{
		Use:   "list <profile-id>",
		Short: "List the posts of a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := postLister(replies, liked)(current.provider, cmd.Context(), args[0], indicatorFor(cursor))
			if err != nil {
				return err
			}
			return current.printPosts(page)
		},
	}
	addCursorFlag(cmd, &cursor)
	cmd.Flags().BoolVar(&replies, "replies", false, "list the comments the profile wrote")
	cmd.Flags().BoolVar(&liked, "liked", false, "list the posts the profile acted on")
	cmd.MarkFlagsMutuallyExclusive("replies", "liked")
	return cmd
}

// postLister picks the listing behind the post list flags.
func postLister(replies, liked bool) func(social.Provider, context.Context, string, *social.Indicator) (*social.Pageable[social.Post], error) {
	switch {
	case replies:
		return social.Provider.GetPostsReplies
	case liked:
		return social.Provider.GetPostsLiked
	default:
		return social.Provider.GetPostsByProfileID
	}
}

func newPostThreadCommand() *cobra.Command {
	var cursor string
	cmd := &cobra.Command{
		Use:   "thread <post-id>",
		Short: "List the replies to a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := current.provider.GetPostsByParentPostID(cmd.Context(), args[0], indicatorFor(cursor))
			if err != nil {
				return err
			}
			return current.printPosts(page)
		},
	}
	addCursorFlag(cmd, &cursor)
	return cmd
}

func newPostReactorsCommand() *cobra.Command {
	var cursor string
	cmd := &cobra.Command{
		Use:   "reactors <post-id>",
		Short: "List who upvoted a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := current.provider.GetReactors(cmd.Context(), args[0], indicatorFor(cursor))
			if err != nil {
				return err
			}
			return current.printProfiles(page)
		},
	}
	addCursorFlag(cmd, &cursor)
	return cmd
}

func newPostCommentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <text>",
		Short: "Reply to a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if err := current.provider.CommentPost(cmd.Context(), args[0], text); err != nil {
				return err
			}
			return current.done("commented on", args[0])
		},
	}
}

func newPostQuoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quote <post-id> <text>",
		Short: "Quote a post with your own text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := current.provider.QuotePost(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return current.printPost(post)
		},
	}
}

// newPostActionCommand builds the single-argument write commands.
func newPostActionCommand(use, short, verb string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <post-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, p, id := cmd.Context(), current.provider, args[0]
			switch use {
			case "mirror":
				post, err := p.MirrorPost(ctx, id)
				if err != nil {
					return err
				}
				return current.printPost(post)
			case "like":
				reaction, err := p.UpvotePost(ctx, id)
				if err != nil {
					return err
				}
				if reaction.ReactionID != "" {
					id = reaction.ReactionID
				}
				return current.done(verb, id)
			case "unmirror":
				return doneOr(p.UnmirrorPost(ctx, id), verb, id)
			case "collect":
				return doneOr(p.CollectPost(ctx, id), verb, id)
			case "unlike":
				return doneOr(p.UnvotePost(ctx, id), verb, id)
			}
			return fmt.Errorf("unknown post action %q", use)
		},
	}
}

func doneOr(err error, verb, id string) error {
	if err != nil {
		return err
	}
	return current.done(verb, id)
}

var (
	messageFlag   string
	imagePath     string
	imageAlt      string
	embedsFlag    []string
	crosspostFlag []string
	dryRun        bool
)

func newPublishCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [text]",
		Short: "Publish a post and optionally share it to other networks",
		Example: `  xfeed post publish "gm"
  xfeed post publish --message "shipped" --image ./shot.png --crosspost all
  echo "release notes" | xfeed --platform warpcast post publish --embed https://example.com`,
		RunE: runPublish,
	}
	cmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Text to publish")
	cmd.Flags().StringSliceVar(&embedsFlag, "embed", nil, "URL to embed in the post (warpcast)")
	cmd.Flags().StringSliceVar(&crosspostFlag, "crosspost", nil, "Also share to "+strings.Join(crosspost.Names, ", ")+" or all")
	cmd.Flags().StringVar(&imagePath, "image", "", "Image to attach when cross-posting")
	cmd.Flags().StringVar(&imageAlt, "alt-text", "", "Alternative text describing the image")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print actions without publishing")
	cmd.Flags().SortFlags = false
	return cmd
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx, a := cmd.Context(), current

	text, err := resolveMessage(cmd, args)
	if err != nil {
		return err
	}
	names, err := crosspost.NormalizeNames(crosspostFlag)
	if err != nil {
		return err
	}
	// Build targets up front so bad credentials fail before anything is published.
	targets, err := buildTargets(ctx, a.cfg, names)
	if err != nil {
		return err
	}

	draft := &social.Post{Platform: a.platform(), Metadata: social.Metadata{Content: text, Images: embedsFlag}}
	if dryRun {
		a.printf("[dry-run] would publish to %s: %q\n", a.platform(), text)
		return crosspost.Share(ctx, targets, crosspost.NewRequest(*draft, imagePath, imageAlt), a.out, true)
	}

	published, err := a.provider.PublishPost(ctx, draft)
	if err != nil {
		return err
	}
	if err := a.printPost(published); err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}
	if err := crosspost.Share(ctx, targets, crosspost.NewRequest(*published, imagePath, imageAlt), a.out, false); err != nil {
		return fmt.Errorf("published to %s, cross-posting failed: %w", a.platform(), err)
	}
	return nil
}

// resolveMessage takes the text from --message, the arguments or piped stdin.
func resolveMessage(cmd *cobra.Command, args []string) (string, error) {
	message := messageFlag
	if len(args) > 0 {
		if message != "" {
			return "", errors.New("provide the text either as an argument or with --message, not both")
		}
		message = strings.Join(args, " ")
	}
	if message = strings.TrimSpace(message); message != "" {
		return message, nil
	}

	stdin := cmd.InOrStdin()
	if file, ok := stdin.(*os.File); ok {
		info, err := file.Stat()
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			return "", errors.New("text is required")
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if message = strings.TrimSpace(string(data)); message == "" {
		return "", errors.New("text is required")
	}
	return message, nil
}
