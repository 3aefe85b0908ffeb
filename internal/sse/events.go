package sse

// Event names sent to subscribers
const (
	EventReady   = "ready"   // first event after subscribing
	EventMessage = "message" // a post in a game channel
	EventDirect  = "direct"  // a private message to one user
)

// Message is one event for a subscriber.
type Message struct {
	Event string `json:"event"`
	Topic string `json:"topic"`
	Data  string `json:"data"`
}

// ChannelTopic is the topic carrying a game channel's posts.
func ChannelTopic(channel string) string { return "channel:" + channel }

// UserTopic is the topic carrying a user's private messages.
func UserTopic(user string) string { return "user:" + user }
