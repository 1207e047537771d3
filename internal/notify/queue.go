package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/gizetz/gbairai/internal/models"
)

const TypeMessageEmail = "notify:message_email"

// Enqueuer is the subset of *asynq.Client used by QueueEmitter.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueEmitter turns message events into background email jobs.
type QueueEmitter struct {
	client Enqueuer
	queue  string
}

func NewQueueEmitter(client Enqueuer, queue string) *QueueEmitter {
	if queue == "" {
		queue = "default"
	}
	return &QueueEmitter{client: client, queue: queue}
}

func (q *QueueEmitter) Notify(ctx context.Context, event Event) error {
	if event.Type != EventMessageCreated {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}
	task := asynq.NewTask(TypeMessageEmail, payload)
	if _, err := q.client.EnqueueContext(ctx, task, asynq.Queue(q.queue), asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("notify: enqueue %s: %w", TypeMessageEmail, err)
	}
	return nil
}

type Presence interface {
	IsOnline(userID int64) bool
}

type Directory interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type Mailer interface {
	SendMessageNotification(to, username, senderName string) error
}

// Worker emails recipients who had no live session when a message
// arrived.
type Worker struct {
	presence Presence
	users    Directory
	mailer   Mailer
	logger   *slog.Logger
}

func NewWorker(presence Presence, users Directory, mailer Mailer, logger *slog.Logger) *Worker {
	return &Worker{presence: presence, users: users, mailer: mailer, logger: logger}
}

func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeMessageEmail, w.HandleMessageEmail)
}

func (w *Worker) HandleMessageEmail(ctx context.Context, t *asynq.Task) error {
	var event Event
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return fmt.Errorf("notify: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if w.presence != nil && w.presence.IsOnline(event.RecipientID) {
		return nil
	}

	recipient, err := w.users.GetUserByID(ctx, event.RecipientID)
	if err != nil {
		return fmt.Errorf("notify: load recipient %d: %w", event.RecipientID, err)
	}
	if !recipient.IsVerified || recipient.IsSystem {
		w.logger.Debug("skipping message email", "recipient_id", recipient.ID)
		return nil
	}
	sender, err := w.users.GetUserByID(ctx, event.ActorID)
	if err != nil {
		return fmt.Errorf("notify: load sender %d: %w", event.ActorID, err)
	}

	if err := w.mailer.SendMessageNotification(recipient.Email, recipient.Username, sender.Username); err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}
	w.logger.Info("message email sent", "recipient_id", recipient.ID, "conversation_id", event.ConversationID)
	return nil
}
