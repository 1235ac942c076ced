package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"todobot/internal/storage"
)

func (d *Dispatcher) addTask(ctx context.Context, m Message) error {
	uid := m.SenderID()
	text := strings.TrimSpace(m.Text())
	if text == "" {
		d.convs.arm(uid, pending{kind: pendingAdd})
		return m.Reply(ctx, replyEmptyText)
	}

	err := d.store.WithSession(ctx, func(s *storage.Session) error {
		_, err := s.InsertTask(ctx, uid, text)
		return err
	})
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	d.log.LogAction(uid, ActionAdd, text)
	return m.Reply(ctx, fmt.Sprintf(replyAdded, text))
}

func (d *Dispatcher) listTasks(ctx context.Context, m Message) error {
	var tasks []storage.Task
	err := d.store.WithSession(ctx, func(s *storage.Session) error {
		var err error
		tasks, err = s.ListTasks(ctx, m.SenderID())
		return err
	})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return m.Reply(ctx, replyNoTasks)
	}
	return m.Reply(ctx, formatTasks(tasks))
}

func formatTasks(tasks []storage.Task) string {
	var b strings.Builder
	b.WriteString(replyListHeader)
	for i, t := range tasks {
		mark := markPending
		if t.Completed {
			mark = markDone
		}
		fmt.Fprintf(&b, "\n%d. %s - %s", i+1, t.Text, mark)
	}
	return b.String()
}

// Unparsable input re-arms the prompt; an out-of-range number ends the
// flow. deleteTask and selectEditTarget follow the same rule.
func (d *Dispatcher) completeTask(ctx context.Context, m Message) error {
	uid := m.SenderID()
	n, err := parseNumber(m.Text())
	if err != nil {
		d.convs.arm(uid, pending{kind: pendingComplete})
		return m.Reply(ctx, replyNotANumber)
	}

	var (
		task    storage.Task
		found   bool
		already bool
	)
	err = d.store.WithSession(ctx, func(s *storage.Session) error {
		tasks, err := s.ListTasks(ctx, uid)
		if err != nil {
			return err
		}
		task, found = taskAt(tasks, n)
		if !found {
			return nil
		}
		if task.Completed {
			already = true
			return nil
		}
		task.Completed = true
		return s.UpdateTask(ctx, task)
	})
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}

	switch {
	case !found:
		return m.Reply(ctx, replyInvalidNumber)
	case already:
		return m.Reply(ctx, fmt.Sprintf(replyAlreadyCompleted, task.Text))
	}
	d.log.LogAction(uid, ActionComplete, task.Text)
	return m.Reply(ctx, fmt.Sprintf(replyCompleted, task.Text))
}

func (d *Dispatcher) deleteTask(ctx context.Context, m Message) error {
	uid := m.SenderID()
	n, err := parseNumber(m.Text())
	if err != nil {
		d.convs.arm(uid, pending{kind: pendingDelete})
		return m.Reply(ctx, replyNotANumber)
	}

	var (
		task  storage.Task
		found bool
	)
	err = d.store.WithSession(ctx, func(s *storage.Session) error {
		tasks, err := s.ListTasks(ctx, uid)
		if err != nil {
			return err
		}
		task, found = taskAt(tasks, n)
		if !found {
			return nil
		}
		return s.DeleteTask(ctx, task)
	})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if !found {
		return m.Reply(ctx, replyInvalidNumber)
	}
	d.log.LogAction(uid, ActionDelete, task.Text)
	return m.Reply(ctx, fmt.Sprintf(replyDeleted, task.Text))
}

// selectEditTarget pins the display number to the task's stored id so a
// later renumbering cannot redirect the edit.
func (d *Dispatcher) selectEditTarget(ctx context.Context, m Message) error {
	uid := m.SenderID()
	n, err := parseNumber(m.Text())
	if err != nil {
		d.convs.arm(uid, pending{kind: pendingEditNumber})
		return m.Reply(ctx, replyNotANumber)
	}

	var (
		task  storage.Task
		found bool
	)
	err = d.store.WithSession(ctx, func(s *storage.Session) error {
		tasks, err := s.ListTasks(ctx, uid)
		if err != nil {
			return err
		}
		task, found = taskAt(tasks, n)
		return nil
	})
	if err != nil {
		return fmt.Errorf("edit task: %w", err)
	}
	if !found {
		return m.Reply(ctx, replyInvalidNumber)
	}
	return d.prompt(ctx, m, pending{kind: pendingEditText, taskID: task.ID}, promptEditText)
}

func (d *Dispatcher) editTask(ctx context.Context, m Message, taskID int64) error {
	uid := m.SenderID()
	text := strings.TrimSpace(m.Text())
	if text == "" {
		d.convs.arm(uid, pending{kind: pendingEditText, taskID: taskID})
		return m.Reply(ctx, replyEmptyText)
	}

	err := d.store.WithSession(ctx, func(s *storage.Session) error {
		task, err := s.GetTask(ctx, uid, taskID)
		if err != nil {
			return err
		}
		task.Text = text
		return s.UpdateTask(ctx, task)
	})
	if errors.Is(err, storage.ErrNotFound) {
		return m.Reply(ctx, replyNotFound)
	}
	if err != nil {
		return fmt.Errorf("edit task: %w", err)
	}
	d.log.LogAction(uid, ActionEdit, text)
	return m.Reply(ctx, fmt.Sprintf(replyEdited, text))
}

// parseNumber reads a display number. Integers too large for int map to 0
// so they fail the bounds check instead of counting as non-numeric.
func parseNumber(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if errors.Is(err, strconv.ErrRange) {
		return 0, nil
	}
	return n, err
}

// taskAt resolves a 1-based display number against a list ordered by id.
func taskAt(tasks []storage.Task, n int) (storage.Task, bool) {
	if n < 1 || n > len(tasks) {
		return storage.Task{}, false
	}
	return tasks[n-1], true
}
