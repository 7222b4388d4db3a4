package lens

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// operation is a parsed GraphQL document carrying exactly the fragments it uses.
type operation struct {
	name string
	doc  string
}

var fragments = map[string]string{
	"ProfileFields": `fragment ProfileFields on Profile {
  id
  createdAt
  handle { localName fullHandle }
  metadata {
    displayName
    bio
    picture {
      ... on ImageSet { optimized { uri } }
      ... on NftImage { image { optimized { uri } } }
    }
  }
  stats { followers following }
  operations {
    isFollowedByMe { value }
    isFollowingMe { value }
  }
  onchainIdentity { proofOfHumanity }
}`,
	"MetadataFields": `fragment MetadataFields on PublicationMetadata {
  __typename
  ... on TextOnlyMetadataV3 { content locale rawURI }
  ... on ArticleMetadataV3 { content locale rawURI }
  ... on ImageMetadataV3 { content locale rawURI asset { image { optimized { uri } } } }
}`,
	"StatsFields": `fragment StatsFields on PublicationStats {
  comments
  mirrors
  quotes
  reactions
  countOpenActions
}`,
	"PostFields": `fragment PostFields on Post {
  id
  createdAt
  by { ...ProfileFields }
  metadata { ...MetadataFields }
  stats { ...StatsFields }
}`,
	"CommentFields": `fragment CommentFields on Comment {
  id
  createdAt
  by { ...ProfileFields }
  metadata { ...MetadataFields }
  stats { ...StatsFields }
  commentOn { ... on Post { id } ... on Comment { id } ... on Quote { id } }
}`,
	"QuoteFields": `fragment QuoteFields on Quote {
  id
  createdAt
  by { ...ProfileFields }
  metadata { ...MetadataFields }
  stats { ...StatsFields }
  quoteOn { ... on Post { id } ... on Comment { id } ... on Quote { id } }
}`,
	"PrimaryPublicationFields": `fragment PrimaryPublicationFields on PrimaryPublication {
  __typename
  ... on Post { ...PostFields }
  ... on Comment { ...CommentFields }
  ... on Quote { ...QuoteFields }
}`,
	"AnyPublicationFields": `fragment AnyPublicationFields on AnyPublication {
  __typename
  ... on Post { ...PostFields }
  ... on Comment { ...CommentFields }
  ... on Quote { ...QuoteFields }
  ... on Mirror {
    id
    createdAt
    by { ...ProfileFields }
    mirrorOn { ...PrimaryPublicationFields }
  }
}`,
	"RelayResultFields": `fragment RelayResultFields on RelayMutationResult {
  __typename
  ... on RelaySuccess { txHash txId }
  ... on LensProfileManagerRelayError { reason }
}`,
}

// newOperation parses query, appends every fragment it references
// transitively and validates the final document. It panics on invalid
// documents since they are compile-time constants.
func newOperation(query string) operation {
	doc := mustParse(query)
	if len(doc.Operations) != 1 {
		panic(fmt.Sprintf("lens: document must hold one operation, got %d", len(doc.Operations)))
	}

	var b strings.Builder
	b.WriteString(query)

	seen := map[string]bool{}
	pending := spreads(doc.Operations[0].SelectionSet)
	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]
		if seen[name] {
			continue
		}
		seen[name] = true

		frag, ok := fragments[name]
		if !ok {
			panic(fmt.Sprintf("lens: operation %s references unknown fragment %s", doc.Operations[0].Name, name))
		}
		b.WriteString("\n")
		b.WriteString(frag)
		for _, def := range mustParse(frag).Fragments {
			pending = append(pending, spreads(def.SelectionSet)...)
		}
	}

	full := b.String()
	mustParse(full)
	return operation{name: doc.Operations[0].Name, doc: full}
}

func mustParse(doc string) *ast.QueryDocument {
	parsed, err := parser.ParseQuery(&ast.Source{Name: "lens", Input: doc})
	if err != nil {
		panic(fmt.Sprintf("lens: invalid graphql document: %v", err))
	}
	return parsed
}

func spreads(set ast.SelectionSet) []string {
	var out []string
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			out = append(out, spreads(s.SelectionSet)...)
		case *ast.InlineFragment:
			out = append(out, spreads(s.SelectionSet)...)
		case *ast.FragmentSpread:
			out = append(out, s.Name)
		}
	}
	return out
}

var (
	opDefaultProfile = newOperation(`query DefaultProfile($request: DefaultProfileRequest!) {
  defaultProfile(request: $request) { ...ProfileFields }
}`)
	opChallenge = newOperation(`query Challenge($request: ChallengeRequest!) {
  challenge(request: $request) { id text }
}`)
	opAuthenticate = newOperation(`mutation Authenticate($request: SignedAuthChallenge!) {
  authenticate(request: $request) { accessToken }
}`)
	opProfile = newOperation(`query Profile($request: ProfileRequest!) {
  profile(request: $request) { ...ProfileFields }
}`)
	opPublication = newOperation(`query Publication($request: PublicationRequest!) {
  publication(request: $request) { ...AnyPublicationFields }
}`)
	opExplorePublications = newOperation(`query ExplorePublications($request: ExplorePublicationRequest!) {
  explorePublications(request: $request) {
    items { ...PrimaryPublicationFields }
    pageInfo { next prev }
  }
}`)
	opPublications = newOperation(`query Publications($request: PublicationsRequest!) {
  publications(request: $request) {
    items { ...AnyPublicationFields }
    pageInfo { next prev }
  }
}`)
	opFollowers = newOperation(`query Followers($request: FollowersRequest!) {
  followers(request: $request) {
    items { ...ProfileFields }
    pageInfo { next prev }
  }
}`)
	opFollowing = newOperation(`query Following($request: FollowingRequest!) {
  following(request: $request) {
    items { ...ProfileFields }
    pageInfo { next prev }
  }
}`)
	opExploreProfiles = newOperation(`query ExploreProfiles($request: ExploreProfilesRequest!) {
  exploreProfiles(request: $request) {
    items { ...ProfileFields }
    pageInfo { next prev }
  }
}`)
	opNotifications = newOperation(`query Notifications($request: NotificationRequest!) {
  notifications(request: $request) {
    items {
      __typename
      ... on MirrorNotification {
        id
        mirrors { mirrorId mirroredAt profile { ...ProfileFields } }
        publication { ... on Post { id } ... on Comment { id } ... on Quote { id } }
      }
      ... on QuoteNotification { id quote { ...QuoteFields } }
      ... on ReactionNotification {
        id
        reactions { profile { ...ProfileFields } reactions { reaction reactedAt } }
        publication { ... on Post { id } ... on Comment { id } ... on Quote { id } }
      }
      ... on CommentNotification { id comment { ...CommentFields } }
      ... on FollowNotification { id followers { ...ProfileFields } }
      ... on MentionNotification { id publication { ...PrimaryPublicationFields } }
    }
    pageInfo { next prev }
  }
}`)
	opPostOnchain = newOperation(`mutation PostOnchain($request: OnchainPostRequest!) {
  postOnchain(request: $request) { ...RelayResultFields }
}`)
	opMirrorOnchain = newOperation(`mutation MirrorOnchain($request: OnchainMirrorRequest!) {
  mirrorOnchain(request: $request) { ...RelayResultFields }
}`)
	opQuoteOnchain = newOperation(`mutation QuoteOnchain($request: OnchainQuoteRequest!) {
  quoteOnchain(request: $request) { ...RelayResultFields }
}`)
	opCommentOnchain = newOperation(`mutation CommentOnchain($request: OnchainCommentRequest!) {
  commentOnchain(request: $request) { ...RelayResultFields }
}`)
	opFollow = newOperation(`mutation Follow($request: FollowLensManagerRequest!) {
  follow(request: $request) { ...RelayResultFields }
}`)
	opUnfollow = newOperation(`mutation Unfollow($request: UnfollowRequest!) {
  unfollow(request: $request) { ...RelayResultFields }
}`)
	opAddBookmark = newOperation(`mutation AddPublicationBookmark($request: PublicationBookmarkRequest!) {
  addPublicationBookmark(request: $request)
}`)
	opAddReaction = newOperation(`mutation AddReaction($request: ReactionRequest!) {
  addReaction(request: $request)
}`)
	opRemoveReaction = newOperation(`mutation RemoveReaction($request: ReactionRequest!) {
  removeReaction(request: $request)
}`)
)
