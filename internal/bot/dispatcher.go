package bot

import (
	"context"

	"todobot/internal/storage"
)

// TaskStore opens one storage session per action.
type TaskStore interface {
	WithSession(ctx context.Context, fn func(*storage.Session) error) error
}

// Dispatcher routes inbound messages to task actions and owns the
// per-sender conversation state.
type Dispatcher struct {
	store TaskStore
	log   ActionLogger
	convs *conversations
}

func NewDispatcher(store TaskStore, log ActionLogger) *Dispatcher {
	return &Dispatcher{
		store: store,
		log:   log,
		convs: newConversations(),
	}
}

// Handle processes one message. A sender with an armed flow always gets
// that flow's continuation, even when the text is a menu label. Text
// that matches nothing is ignored. Errors are storage or transport
// failures; validation problems are answered in chat and return nil.
func (d *Dispatcher) Handle(ctx context.Context, m Message) error {
	if p, ok := d.convs.take(m.SenderID()); ok {
		return d.resume(ctx, m, p)
	}

	switch m.Text() {
	case LabelList:
		return d.listTasks(ctx, m)
	case LabelAdd:
		return d.prompt(ctx, m, pending{kind: pendingAdd}, promptAdd)
	case LabelComplete:
		return d.prompt(ctx, m, pending{kind: pendingComplete}, promptComplete)
	case LabelDelete:
		return d.prompt(ctx, m, pending{kind: pendingDelete}, promptDelete)
	case LabelEdit:
		return d.prompt(ctx, m, pending{kind: pendingEditNumber}, promptEdit)
	case cmdStart, cmdHelp:
		return m.Send(ctx, replyGreeting)
	}
	return nil
}

// Pending names the flow the sender is in the middle of, or "" if none.
func (d *Dispatcher) Pending(senderID int64) string {
	p, ok := d.convs.peek(senderID)
	if !ok {
		return ""
	}
	return p.kind.String()
}

func (d *Dispatcher) prompt(ctx context.Context, m Message, p pending, text string) error {
	if err := m.Send(ctx, text); err != nil {
		return err
	}
	d.convs.arm(m.SenderID(), p)
	return nil
}

func (d *Dispatcher) resume(ctx context.Context, m Message, p pending) error {
	switch p.kind {
	case pendingAdd:
		return d.addTask(ctx, m)
	case pendingComplete:
		return d.completeTask(ctx, m)
	case pendingDelete:
		return d.deleteTask(ctx, m)
	case pendingEditNumber:
		return d.selectEditTarget(ctx, m)
	case pendingEditText:
		return d.editTask(ctx, m, p.taskID)
	}
	return nil
}
