package social

import "context"

// Capability names one operation of the Provider contract.
type Capability string

const (
	CapCreateSession          Capability = "createSession"
	CapResumeSession          Capability = "resumeSession"
	CapGetPostByID            Capability = "getPostById"
	CapGetProfileByID         Capability = "getProfileById"
	CapDiscoverPosts          Capability = "discoverPosts"
	CapGetPostsByProfileID    Capability = "getPostsByProfileId"
	CapGetPostsByParentPostID Capability = "getPostsByParentPostId"
	CapGetPostsLiked          Capability = "getPostsLiked"
	CapGetPostsReplies        Capability = "getPostsReplies"
	CapGetFollowers           Capability = "getFollowers"
	CapGetFollowings          Capability = "getFollowings"
	CapGetReactors            Capability = "getReactors"
	CapPublishPost            Capability = "publishPost"
	CapMirrorPost             Capability = "mirrorPost"
	CapUnmirrorPost           Capability = "unmirrorPost"
	CapQuotePost              Capability = "quotePost"
	CapCommentPost            Capability = "commentPost"
	CapCollectPost            Capability = "collectPost"
	CapUpvotePost             Capability = "upvotePost"
	CapUnvotePost             Capability = "unvotePost"
	CapFollow                 Capability = "follow"
	CapUnfollow               Capability = "unfollow"
	CapGetNotifications       Capability = "getNotifications"
	CapGetSuggestedFollows    Capability = "getSuggestedFollows"
)

// AllCapabilities lists the full contract in declaration order.
var AllCapabilities = []Capability{
	CapCreateSession, CapResumeSession, CapGetPostByID, CapGetProfileByID,
	CapDiscoverPosts, CapGetPostsByProfileID, CapGetPostsByParentPostID,
	CapGetPostsLiked, CapGetPostsReplies,
	CapGetFollowers, CapGetFollowings, CapGetReactors, CapPublishPost,
	CapMirrorPost, CapUnmirrorPost, CapQuotePost, CapCommentPost,
	CapCollectPost, CapUpvotePost, CapUnvotePost, CapFollow, CapUnfollow,
	CapGetNotifications, CapGetSuggestedFollows,
}

// CapabilitySet is the set of operations a provider implements.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet returns AllCapabilities minus the excluded ones.
func NewCapabilitySet(excluded ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(AllCapabilities))
	for _, c := range AllCapabilities {
		set[c] = struct{}{}
	}
	for _, c := range excluded {
		delete(set, c)
	}
	return set
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Provider is the unified contract implemented by every platform. Operations
// outside Supports return an UnsupportedError.
type Provider interface {
	Platform() Platform
	Supports(c Capability) bool

	CreateSession(ctx context.Context) (*Session, error)
	ResumeSession(ctx context.Context) (*Session, error)

	GetPostByID(ctx context.Context, postID string) (*Post, error)
	GetProfileByID(ctx context.Context, profileID string) (*Profile, error)
	DiscoverPosts(ctx context.Context, indicator *Indicator) (*Pageable[Post], error)
	GetPostsByProfileID(ctx context.Context, profileID string, indicator *Indicator) (*Pageable[Post], error)
	GetPostsByParentPostID(ctx context.Context, postID string, indicator *Indicator) (*Pageable[Post], error)
	// GetPostsLiked lists publications the profile acted on.
	GetPostsLiked(ctx context.Context, profileID string, indicator *Indicator) (*Pageable[Post], error)
	// GetPostsReplies lists the comments the profile wrote.
	GetPostsReplies(ctx context.Context, profileID string, indicator *Indicator) (*Pageable[Post], error)
	GetFollowers(ctx context.Context, profileID string, indicator *Indicator) (*Pageable[Profile], error)
	GetFollowings(ctx context.Context, profileID string, indicator *Indicator) (*Pageable[Profile], error)
	GetReactors(ctx context.Context, postID string, indicator *Indicator) (*Pageable[Profile], error)

	PublishPost(ctx context.Context, post *Post) (*Post, error)
	MirrorPost(ctx context.Context, postID string) (*Post, error)
	UnmirrorPost(ctx context.Context, postID string) error
	QuotePost(ctx context.Context, postID, intro string) (*Post, error)
	CommentPost(ctx context.Context, postID, comment string) error
	CollectPost(ctx context.Context, postID string) error
	UpvotePost(ctx context.Context, postID string) (*Reaction, error)
	UnvotePost(ctx context.Context, postID string) error
	Follow(ctx context.Context, profileID string) error
	Unfollow(ctx context.Context, profileID string) error

	GetNotifications(ctx context.Context, indicator *Indicator) (*Pageable[Notification], error)
	GetSuggestedFollows(ctx context.Context, indicator *Indicator) (*Pageable[Profile], error)
}

// Wallet is the injected signer boundary. Implementations never expose keys.
type Wallet interface {
	Address(ctx context.Context) (string, error)
	SignMessage(ctx context.Context, message string) ([]byte, error)
}
