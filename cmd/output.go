package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/blacktop/xfeed/internal/crosspost"
	"github.com/blacktop/xfeed/internal/social"
)

type profileView struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	Status      string `json:"status"`
	Verified    bool   `json:"verified"`
	YouFollow   *bool  `json:"you_follow,omitempty"`
	FollowsYou  *bool  `json:"follows_you,omitempty"`
}

type postView struct {
	Platform   social.Platform `json:"platform"`
	ID         string          `json:"id"`
	ParentID   string          `json:"parent_id,omitempty"`
	URL        string          `json:"url,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Author     profileView     `json:"author"`
	Content    string          `json:"content"`
	ContentURI string          `json:"content_uri,omitempty"`
	Images     []string        `json:"images,omitempty"`
	Stats      statsView       `json:"stats"`
}

type statsView struct {
	Comments  int `json:"comments"`
	Mirrors   int `json:"mirrors"`
	Quotes    int `json:"quotes"`
	Reactions int `json:"reactions"`
	Collects  int `json:"collects"`
}

type notificationView struct {
	ID    string                  `json:"id"`
	Kind  social.NotificationKind `json:"kind"`
	Actor *profileView            `json:"actor,omitempty"`
	Post  *postView               `json:"post,omitempty"`
	By    *postView               `json:"by,omitempty"`
}

type pageView[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next,omitempty"`
}

func viewProfile(p social.Profile) profileView {
	v := profileView{
		ID:          p.ProfileID,
		Handle:      p.Handle,
		DisplayName: p.DisplayName,
		Avatar:      p.Avatar,
		Bio:         p.Bio,
		Followers:   p.FollowerCount,
		Following:   p.FollowingCount,
		Status:      p.Status.String(),
		Verified:    p.Verified,
	}
	if vc := p.ViewerContext; vc != nil {
		v.YouFollow, v.FollowsYou = &vc.Following, &vc.FollowedBy
	}
	return v
}

func viewPost(p *social.Post) *postView {
	if p == nil {
		return nil
	}
	return &postView{
		Platform:   p.Platform,
		ID:         p.PostID,
		ParentID:   p.ParentPostID,
		URL:        crosspost.Permalink(*p),
		Timestamp:  p.Timestamp,
		Author:     viewProfile(p.Author),
		Content:    p.Metadata.Content,
		ContentURI: p.Metadata.ContentURI,
		Images:     p.Metadata.Images,
		Stats:      statsView(p.Stats),
	}
}

func viewNotification(n social.Notification) notificationView {
	v := notificationView{ID: n.NotificationID(), Kind: n.Kind()}
	actor := func(p social.Profile) *profileView {
		pv := viewProfile(p)
		return &pv
	}
	switch n := n.(type) {
	case *social.MirrorNotification:
		v.Post, v.By = viewPost(n.Post), viewPost(n.Mirror)
		if n.Mirror != nil {
			v.Actor = actor(n.Mirror.Author)
		}
	case *social.QuoteNotification:
		v.Post, v.By = viewPost(n.Post), viewPost(n.Quote)
		if n.Quote != nil {
			v.Actor = actor(n.Quote.Author)
		}
	case *social.ReactionNotification:
		v.Post, v.Actor = viewPost(n.Post), actor(n.Reactor)
	case *social.CommentNotification:
		v.Post, v.Actor = viewPost(n.Post), actor(n.Comment.Author)
	case *social.FollowNotification:
		v.Actor = actor(n.Follower)
	case *social.MentionNotification:
		v.Post = viewPost(n.Post)
		if n.Post != nil {
			v.Actor = actor(n.Post.Author)
		}
	}
	return v
}

func nextCursor[T any](page *social.Pageable[T]) string {
	if !page.HasNext() {
		return ""
	}
	return page.NextIndicator.ID
}

func (a *app) emitJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printPost(p *social.Post) error {
	v := viewPost(p)
	if a.json {
		return a.emitJSON(v)
	}
	writePost(a.out, v)
	return nil
}

func (a *app) printPosts(page *social.Pageable[social.Post]) error {
	views := make([]postView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, *viewPost(&page.Items[i]))
	}
	if a.json {
		return a.emitJSON(pageView[postView]{Items: views, Next: nextCursor(page)})
	}
	for i := range views {
		writePost(a.out, &views[i])
	}
	a.printNext(page.HasNext(), nextCursor(page))
	return nil
}

func (a *app) printProfile(p *social.Profile) error {
	v := viewProfile(*p)
	if a.json {
		return a.emitJSON(v)
	}
	writeProfile(a.out, v, true)
	return nil
}

func (a *app) printProfiles(page *social.Pageable[social.Profile]) error {
	views := make([]profileView, 0, len(page.Items))
	for _, p := range page.Items {
		views = append(views, viewProfile(p))
	}
	if a.json {
		return a.emitJSON(pageView[profileView]{Items: views, Next: nextCursor(page)})
	}
	for _, v := range views {
		writeProfile(a.out, v, false)
	}
	a.printNext(page.HasNext(), nextCursor(page))
	return nil
}

func (a *app) printNotifications(page *social.Pageable[social.Notification]) error {
	views := make([]notificationView, 0, len(page.Items))
	for _, n := range page.Items {
		views = append(views, viewNotification(n))
	}
	if a.json {
		return a.emitJSON(pageView[notificationView]{Items: views, Next: nextCursor(page)})
	}
	for _, v := range views {
		who := "someone"
		if v.Actor != nil {
			who = "@" + v.Actor.Handle
		}
		line := fmt.Sprintf("%-8s %s", v.Kind, who)
		if v.Post != nil {
			line += " on " + v.Post.ID
		}
		fmt.Fprintln(a.out, line)
	}
	a.printNext(page.HasNext(), nextCursor(page))
	return nil
}

func (a *app) printNext(more bool, cursor string) {
	if more {
		fmt.Fprintf(a.out, "\nmore: --cursor %s\n", cursor)
	}
}

// done reports a write result.
func (a *app) done(action, id string) error {
	if a.json {
		return a.emitJSON(map[string]string{"status": "ok", "action": action, "id": id})
	}
	fmt.Fprintf(a.out, "%s %s\n", action, id)
	return nil
}

func writePost(w io.Writer, p *postView) {
	fmt.Fprintf(w, "%s  @%s  %s\n", p.ID, p.Author.Handle, p.Timestamp.Local().Format(time.DateTime))
	if body := strings.TrimSpace(p.Content); body != "" {
		for _, line := range strings.Split(body, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	for _, img := range p.Images {
		fmt.Fprintf(w, "  [image] %s\n", img)
	}
	fmt.Fprintf(w, "  comments=%d mirrors=%d quotes=%d reactions=%d collects=%d\n\n",
		p.Stats.Comments, p.Stats.Mirrors, p.Stats.Quotes, p.Stats.Reactions, p.Stats.Collects)
}

func writeProfile(w io.Writer, p profileView, long bool) {
	name := p.DisplayName
	if name == "" {
		name = p.Handle
	}
	fmt.Fprintf(w, "%s  @%s  %s\n", p.ID, p.Handle, name)
	if !long {
		return
	}
	if p.Bio != "" {
		fmt.Fprintf(w, "  %s\n", p.Bio)
	}
	fmt.Fprintf(w, "  followers=%d following=%d status=%s verified=%t\n", p.Followers, p.Following, p.Status, p.Verified)
	if p.YouFollow != nil {
		fmt.Fprintf(w, "  you follow: %t  follows you: %t\n", *p.YouFollow, *p.FollowsYou)
	}
}
