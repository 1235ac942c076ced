package bot

import "context"

// Message is one inbound chat message as seen by the dispatcher.
type Message interface {
	SenderID() int64
	Text() string
	// Reply answers the message itself.
	Reply(ctx context.Context, text string) error
	// Send posts a new message into the sender's chat.
	Send(ctx context.Context, text string) error
}

type OutFunc func(ctx context.Context, text string) error

type message struct {
	senderID int64
	text     string
	reply    OutFunc
	send     OutFunc
}

// NewMessage builds a Message for a transport. A nil send falls back to
// reply.
func NewMessage(senderID int64, text string, reply, send OutFunc) Message {
	if send == nil {
		send = reply
	}
	return message{senderID: senderID, text: text, reply: reply, send: send}
}

func (m message) SenderID() int64 { return m.senderID }
func (m message) Text() string    { return m.text }

func (m message) Reply(ctx context.Context, text string) error {
	return m.reply(ctx, text)
}

func (m message) Send(ctx context.Context, text string) error {
	return m.send(ctx, text)
}

// ActionLogger records completed task actions. Implementations must not
// block the dispatcher.
type ActionLogger interface {
	LogAction(userID int64, action, detail string)
}

const (
	ActionAdd      = "add"
	ActionComplete = "complete"
	ActionDelete   = "delete"
	ActionEdit     = "edit"
)
