package ws

// Wire event names, matched by the client's subscriptions.
const (
	// EventNewMessage carries an enriched model.Message.
	EventNewMessage = "newMessage"
	// EventOnlineUsers carries the full snapshot of online user ids. It is
	// emitted to every connection on each connect and disconnect.
	EventOnlineUsers = "getOnlineUsers"
)

// Event is the frame pushed to clients over the live channel.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}
