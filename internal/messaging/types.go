package messaging

import "time"

// ThreadFilter selects which inbox threads ListThreads returns.
type ThreadFilter struct {
	Limit    int
	Offset   int
	Unread   bool
	Archived bool
}

// User is the other party of a thread.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
}

// Listing is the booked listing as seen from a thread.
type Listing struct {
	Name   string `json:"name"`
	Guests int    `json:"inquiry_number_of_guests"`
}

// ThreadSummary is one entry of the host inbox.
type ThreadSummary struct {
	ID               int64   `json:"id"`
	Unread           bool    `json:"unread"`
	SubType          string  `json:"thread_sub_type"`
	Status           string  `json:"status"`
	CheckinDate      string  `json:"inquiry_checkin_date"`
	CheckoutDate     string  `json:"inquiry_checkout_date"`
	Listing          Listing `json:"inquiry_listing"`
	PostsCount       int     `json:"posts_count"`
	RequiresResponse bool    `json:"requires_response"`
	Responded        bool    `json:"responded"`
	Guest            User    `json:"other_user"`
	ShouldTranslate  bool    `json:"should_translate"`
	Guests           int     `json:"inquiry_number_of_guests"`
}

// Booking statuses.
const (
	StatusAccepted  = "accepted"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
)

// SupportSubType marks threads with the platform's support team.
const SupportSubType = "support_messaging_thread"

// IsSupport reports whether the thread is a support conversation.
func (t ThreadSummary) IsSupport() bool {
	return t.SubType == SupportSubType
}

// NumGuests falls back to the listing's guest count.
func (t ThreadSummary) NumGuests() int {
	if t.Guests > 0 {
		return t.Guests
	}
	return t.Listing.Guests
}

// Checkout parses the checkout date in loc. The zero time is returned for
// a missing or malformed date.
func (t ThreadSummary) Checkout(loc *time.Location) time.Time {
	d, err := time.ParseInLocation("2006-01-02", t.CheckoutDate, loc)
	if err != nil {
		return time.Time{}
	}
	return d
}

// Post is one message of a thread. Message is plain text.
type Post struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// Thread is a thread with its posts, newest first.
type Thread struct {
	ID    int64  `json:"id"`
	Posts []Post `json:"posts"`
}
