package bot

import "sync"

type pendingKind int

const (
	pendingAdd pendingKind = iota + 1
	pendingComplete
	pendingDelete
	pendingEditNumber
	pendingEditText
)

func (k pendingKind) String() string {
	switch k {
	case pendingAdd:
		return "add"
	case pendingComplete:
		return "complete"
	case pendingDelete:
		return "delete"
	case pendingEditNumber:
		return "edit:awaiting_number"
	case pendingEditText:
		return "edit:awaiting_text"
	default:
		return ""
	}
}

// pending is an armed flow waiting for exactly one more message.
// taskID is set only for pendingEditText.
type pending struct {
	kind   pendingKind
	taskID int64
}

// conversations maps a sender to its armed flow. Entries live until the
// next message from that sender or process exit.
type conversations struct {
	mu      sync.Mutex
	pending map[int64]pending
}

func newConversations() *conversations {
	return &conversations{pending: make(map[int64]pending)}
}

func (c *conversations) arm(sender int64, p pending) {
	c.mu.Lock()
	c.pending[sender] = p
	c.mu.Unlock()
}

// take removes and returns the sender's armed flow.
func (c *conversations) take(sender int64) (pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[sender]
	if ok {
		delete(c.pending, sender)
	}
	return p, ok
}

func (c *conversations) peek(sender int64) (pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[sender]
	return p, ok
}
