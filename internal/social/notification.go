package social

// NotificationKind names the variant of a Notification.
type NotificationKind string

const (
	NotificationMirror   NotificationKind = "mirror"
	NotificationQuote    NotificationKind = "quote"
	NotificationReaction NotificationKind = "reaction"
	NotificationComment  NotificationKind = "comment"
	NotificationFollow   NotificationKind = "follow"
	NotificationMention  NotificationKind = "mention"
)

// Notification is a closed sum type; the only implementations are the
// *Notification structs in this file.
type Notification interface {
	NotificationID() string
	Kind() NotificationKind
	isNotification()
}

// MirrorNotification reports that Post was mirrored.
type MirrorNotification struct {
	ID     string
	Mirror *Post
	Post   *Post
}

// QuoteNotification reports that Post was quoted by Quote.
type QuoteNotification struct {
	ID    string
	Quote *Post
	Post  *Post
}

// ReactionNotification reports a reaction to Post.
type ReactionNotification struct {
	ID       string
	Reaction ReactionType
	Reactor  Profile
	Post     *Post
}

// CommentNotification reports a reply to Post.
type CommentNotification struct {
	ID      string
	Comment Comment
	Post    *Post
}

// FollowNotification reports a new follower.
type FollowNotification struct {
	ID       string
	Follower Profile
}

// MentionNotification reports that the session owner was mentioned in Post.
type MentionNotification struct {
	ID   string
	Post *Post
}

func (n *MirrorNotification) NotificationID() string   { return n.ID }
func (n *QuoteNotification) NotificationID() string    { return n.ID }
func (n *ReactionNotification) NotificationID() string { return n.ID }
func (n *CommentNotification) NotificationID() string  { return n.ID }
func (n *FollowNotification) NotificationID() string   { return n.ID }
func (n *MentionNotification) NotificationID() string  { return n.ID }

func (*MirrorNotification) Kind() NotificationKind   { return NotificationMirror }
func (*QuoteNotification) Kind() NotificationKind    { return NotificationQuote }
func (*ReactionNotification) Kind() NotificationKind { return NotificationReaction }
func (*CommentNotification) Kind() NotificationKind  { return NotificationComment }
func (*FollowNotification) Kind() NotificationKind   { return NotificationFollow }
func (*MentionNotification) Kind() NotificationKind  { return NotificationMention }

func (*MirrorNotification) isNotification()   {}
func (*QuoteNotification) isNotification()    {}
func (*ReactionNotification) isNotification() {}
func (*CommentNotification) isNotification()  {}
func (*FollowNotification) isNotification()   {}
func (*MentionNotification) isNotification()  {}
