package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Session is one unit of work against the task table. It is only valid
// inside the callback passed to WithSession.
type Session struct {
	tx  *sql.Tx
	now func() time.Time
}

// WithSession begins a transaction, runs fn and commits it. Any error from
// fn rolls the transaction back and is returned unchanged.
func (s *Store) WithSession(ctx context.Context, fn func(*Session) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	if err := fn(&Session{tx: tx, now: s.now}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

func (s *Session) InsertTask(ctx context.Context, userID int64, text string) (Task, error) {
	t := Task{
		UserID:    userID,
		Text:      text,
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	res, err := s.tx.ExecContext(ctx,
		`INSERT INTO tasks (user_id, text, completed, created_at) VALUES (?, ?, 0, ?);`,
		userID, text, t.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return Task{}, err
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

// ListTasks returns the user's tasks ordered by id. Display numbers are
// positions in this slice plus one.
func (s *Session) ListTasks(ctx context.Context, userID int64) ([]Task, error) {
	rows, err := s.tx.QueryContext(ctx,
		`SELECT id, user_id, text, completed, created_at FROM tasks WHERE user_id = ? ORDER BY id;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask looks a task up by its stored id. It returns ErrNotFound when
// the row is gone or belongs to another user.
func (s *Session) GetTask(ctx context.Context, userID, id int64) (Task, error) {
	row := s.tx.QueryRowContext(ctx,
		`SELECT id, user_id, text, completed, created_at FROM tasks WHERE id = ? AND user_id = ?;`, id, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

// UpdateTask persists the mutable fields of t: text and completed.
func (s *Session) UpdateTask(ctx context.Context, t Task) error {
	completed := 0
	if t.Completed {
		completed = 1
	}
	res, err := s.tx.ExecContext(ctx,
		`UPDATE tasks SET text = ?, completed = ? WHERE id = ? AND user_id = ?;`,
		t.Text, completed, t.ID, t.UserID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s *Session) DeleteTask(ctx context.Context, t Task) error {
	res, err := s.tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?;`, t.ID, t.UserID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (Task, error) {
	var t Task
	var completed int
	var createdStr string
	if err := sc.Scan(&t.ID, &t.UserID, &t.Text, &completed, &createdStr); err != nil {
		return Task{}, err
	}
	t.Completed = completed == 1
	if created, err := time.Parse(time.RFC3339, createdStr); err == nil {
		t.CreatedAt = created
	}
	return t, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
