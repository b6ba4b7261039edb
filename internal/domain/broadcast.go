package domain

// BroadcastItemType enumerates the content kinds an admin can queue up
// for a broadcast.
type BroadcastItemType string

const (
	BroadcastText     BroadcastItemType = "text"
	BroadcastPhoto    BroadcastItemType = "photo"
	BroadcastLocation BroadcastItemType = "location"
	BroadcastForward  BroadcastItemType = "forward"
)

// BroadcastItem is one queued message. Only the fields for its type are
// set: Text for text, FileID/Caption for photo, Latitude/Longitude for
// location, FromChat/MessageID for a forwarded post.
type BroadcastItem struct {
	Type BroadcastItemType

	Text string

	FileID  string
	Caption string

	Latitude  float64
	Longitude float64

	// FromChat is either "@username" or a numeric "-100..." chat id.
	FromChat  string
	MessageID int
}

// BroadcastResult tallies a completed fan-out.
type BroadcastResult struct {
	Total   int
	Sent    int
	Blocked int
}
