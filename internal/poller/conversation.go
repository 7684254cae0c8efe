package poller

import (
	"strings"

	"github.com/cognicore/tobot/internal/messaging"
)

// Turn is a run of guest posts followed by the host posts answering them.
type Turn struct {
	Guest []string
	Host  []string
}

// GuestText joins the guest posts, lowercased.
func (t Turn) GuestText() string {
	return strings.ToLower(strings.Join(t.Guest, " "))
}

// HostText joins the host posts, lowercased. Empty when the host has not
// answered yet.
func (t Turn) HostText() string {
	return strings.ToLower(strings.Join(t.Host, " "))
}

// Conversation rebuilds the turns of a thread in chronological order.
// posts are newest first, as the inbox returns them. A turn closes as soon
// as it holds both guest and host posts; the trailing open turn is kept.
// Empty posts are ignored.
func Conversation(posts []messaging.Post, guestID int64) (turns []Turn, guestPosts, hostPosts int) {
	var cur Turn
	for i := len(posts) - 1; i >= 0; i-- {
		p := posts[i]
		if p.Message == "" {
			continue
		}
		if p.UserID == guestID {
			cur.Guest = append(cur.Guest, p.Message)
			guestPosts++
		} else {
			cur.Host = append(cur.Host, p.Message)
			hostPosts++
		}
		if len(cur.Guest) > 0 && len(cur.Host) > 0 {
			turns = append(turns, cur)
			cur = Turn{}
		}
	}
	if len(cur.Guest) > 0 || len(cur.Host) > 0 {
		turns = append(turns, cur)
	}
	return turns, guestPosts, hostPosts
}
