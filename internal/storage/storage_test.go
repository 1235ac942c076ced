package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}

func TestOpen_SQLiteURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.db")
	s, err := Open("sqlite:///" + path)
	require.NoError(t, err)
	defer s.Close()
	assert.FileExists(t, path)
}

func TestTrimURLScheme(t *testing.T) {
	assert.Equal(t, "/var/lib/tasks.db", trimURLScheme("sqlite:////var/lib/tasks.db"))
	assert.Equal(t, "tasks.db", trimURLScheme("sqlite:///tasks.db"))
	assert.Equal(t, "tasks.db", trimURLScheme("tasks.db"))
}

func TestSession_InsertAndList(t *testing.T) {
	s := openTestStore(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	err := s.WithSession(ctx, func(sess *Session) error {
		for _, text := range []string{"A", "B", "C"} {
			if _, err := sess.InsertTask(ctx, 1, text); err != nil {
				return err
			}
		}
		_, err := sess.InsertTask(ctx, 2, "other user")
		return err
	})
	require.NoError(t, err)

	var tasks []Task
	err = s.WithSession(ctx, func(sess *Session) error {
		var err error
		tasks, err = sess.ListTasks(ctx, 1)
		return err
	})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for i, want := range []string{"A", "B", "C"} {
		assert.Equal(t, want, tasks[i].Text)
		assert.Equal(t, int64(1), tasks[i].UserID)
		assert.False(t, tasks[i].Completed)
		assert.True(t, fixed.Equal(tasks[i].CreatedAt))
	}
	assert.Less(t, tasks[0].ID, tasks[1].ID)
	assert.Less(t, tasks[1].ID, tasks[2].ID)
}

func TestSession_UpdateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var task Task
	require.NoError(t, s.WithSession(ctx, func(sess *Session) error {
		var err error
		task, err = sess.InsertTask(ctx, 7, "draft")
		return err
	}))

	task.Text = "final"
	task.Completed = true
	require.NoError(t, s.WithSession(ctx, func(sess *Session) error {
		return sess.UpdateTask(ctx, task)
	}))

	require.NoError(t, s.WithSession(ctx, func(sess *Session) error {
		got, err := sess.GetTask(ctx, 7, task.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "final", got.Text)
		assert.True(t, got.Completed)
		return nil
	}))
}

func TestSession_GetTaskScopedToOwner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var task Task
	require.NoError(t, s.WithSession(ctx, func(sess *Session) error {
		var err error
		task, err = sess.InsertTask(ctx, 1, "mine")
		return err
	}))

	err := s.WithSession(ctx, func(sess *Session) error {
		_, err := sess.GetTask(ctx, 2, task.ID)
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSession_DeleteKeepsOtherIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var a, b Task
	require.NoError(t, s.WithSession(ctx, func(sess *Session) error {
		var err error
		if a, err = sess.InsertTask(ctx, 1, "A"); err != nil {
			return err
		}
		b, err = sess.InsertTask(ctx, 1, "B")
		return err
	}))

	require.NoError(t, s.WithSession(ctx, func(sess *Session) error {
		return sess.DeleteTask(ctx, a)
	}))

	err := s.WithSession(ctx, func(sess *Session) error {
		tasks, err := sess.ListTasks(ctx, 1)
		if err != nil {
			return err
		}
		require.Len(t, tasks, 1)
		assert.Equal(t, b.ID, tasks[0].ID)
		_, err = sess.GetTask(ctx, 1, a.ID)
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.WithSession(ctx, func(sess *Session) error {
		return sess.DeleteTask(ctx, a)
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithSession_RollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithSession(ctx, func(sess *Session) error {
		if _, err := sess.InsertTask(ctx, 1, "lost"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, s.WithSession(ctx, func(sess *Session) error {
		tasks, err := sess.ListTasks(ctx, 1)
		assert.Empty(t, tasks)
		return err
	}))
}

func TestEnsureTaskColumns_UpgradesOldTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", sqliteDSN(path))
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE tasks (id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL, text TEXT NOT NULL);`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tasks (user_id, text) VALUES (1, 'legacy');`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.WithSession(ctx, func(sess *Session) error {
		tasks, err := sess.ListTasks(ctx, 1)
		if err != nil {
			return err
		}
		require.Len(t, tasks, 1)
		assert.Equal(t, "legacy", tasks[0].Text)
		assert.False(t, tasks[0].Completed)
		return nil
	}))
}

func TestPing(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
