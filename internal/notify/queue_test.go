package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gizetz/gbairai/internal/models"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1"}, nil
}

func TestQueueEmitter(t *testing.T) {
	enq := &fakeEnqueuer{}
	q := NewQueueEmitter(enq, "")
	ctx := context.Background()

	require.NoError(t, q.Notify(ctx, Event{Type: EventConversationStarted, RecipientID: 2}))
	assert.Empty(t, enq.tasks, "only message events become email jobs")

	event := Event{Type: EventMessageCreated, RecipientID: 2, ActorID: 1, ConversationID: 100, MessageID: 5}
	require.NoError(t, q.Notify(ctx, event))
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TypeMessageEmail, enq.tasks[0].Type())

	var decoded Event
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &decoded))
	assert.Equal(t, event, decoded)

	enq.err = errors.New("redis down")
	assert.Error(t, q.Notify(ctx, event))
}

type fakePresence map[int64]bool

func (p fakePresence) IsOnline(id int64) bool { return p[id] }

type fakeDirectory map[int64]*models.User

func (d fakeDirectory) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := d[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

type sentMail struct{ to, username, sender string }

type fakeMailer struct{ sent []sentMail }

func (m *fakeMailer) SendMessageNotification(to, username, senderName string) error {
	m.sent = append(m.sent, sentMail{to, username, senderName})
	return nil
}

func newTask(t *testing.T, e Event) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(e)
	require.NoError(t, err)
	return asynq.NewTask(TypeMessageEmail, payload)
}

func TestWorker_HandleMessageEmail(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := fakeDirectory{
		1: {ID: 1, Username: "kofi", Email: "kofi@example.com", IsVerified: true},
		2: {ID: 2, Username: "awa", Email: "awa@example.com", IsVerified: true},
		3: {ID: 3, Username: "new", Email: "new@example.com"},
	}
	event := Event{Type: EventMessageCreated, RecipientID: 2, ActorID: 1, ConversationID: 100}
	ctx := context.Background()

	t.Run("offline recipient gets an email", func(t *testing.T) {
		mailer := &fakeMailer{}
		w := NewWorker(fakePresence{}, users, mailer, logger)
		require.NoError(t, w.HandleMessageEmail(ctx, newTask(t, event)))
		assert.Equal(t, []sentMail{{"awa@example.com", "awa", "kofi"}}, mailer.sent)
	})

	t.Run("online recipient is skipped", func(t *testing.T) {
		mailer := &fakeMailer{}
		w := NewWorker(fakePresence{2: true}, users, mailer, logger)
		require.NoError(t, w.HandleMessageEmail(ctx, newTask(t, event)))
		assert.Empty(t, mailer.sent)
	})

	t.Run("unverified recipient is skipped", func(t *testing.T) {
		mailer := &fakeMailer{}
		w := NewWorker(fakePresence{}, users, mailer, logger)
		e := event
		e.RecipientID = 3
		require.NoError(t, w.HandleMessageEmail(ctx, newTask(t, e)))
		assert.Empty(t, mailer.sent)
	})

	t.Run("bad payload is not retried", func(t *testing.T) {
		w := NewWorker(fakePresence{}, users, &fakeMailer{}, logger)
		err := w.HandleMessageEmail(ctx, asynq.NewTask(TypeMessageEmail, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})
}
