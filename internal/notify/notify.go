// Package notify carries outbound chat messages to the transport.
package notify

import "context"

// Transport is the chat service boundary used for outbound messages.
type Transport interface {
	// Send posts text to a channel.
	Send(ctx context.Context, channelID, text string) error
	// SendDirect posts text privately to a user.
	SendDirect(ctx context.Context, userID, text string) error
}

// Notice is one outbound message. Exactly one of Channel or User is set.
type Notice struct {
	Channel string
	User    string
	Text    string
}

// ToChannel addresses a notice to a channel.
func ToChannel(channel, text string) Notice {
	return Notice{Channel: channel, Text: text}
}

// ToUser addresses a notice privately to a user.
func ToUser(user, text string) Notice {
	return Notice{User: user, Text: text}
}

// Direct reports whether the notice is a private message.
func (n Notice) Direct() bool {
	return n.User != ""
}

// Target returns the channel or user the notice is addressed to.
func (n Notice) Target() string {
	if n.Direct() {
		return "user:" + n.User
	}
	return "channel:" + n.Channel
}

// Deliverer accepts notices for delivery once the caller holds no locks.
type Deliverer interface {
	Deliver(ctx context.Context, notices ...Notice)
}
