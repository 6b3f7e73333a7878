package activity

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"academia/internal/directory"
	"academia/internal/mailer"
	"academia/internal/metrics"
	"academia/internal/queue"
)

// EventRecorder appends decision events to the audit log.
type EventRecorder interface {
	RecordEvent(ctx context.Context, e Event) error
}

// Students looks up the recipient of a notification.
type Students interface {
	GetStudent(ctx context.Context, id string) (*directory.Student, error)
}

// Notifier handles decision events on the worker side: it writes the audit
// row and mails the student.
type Notifier struct {
	events   EventRecorder
	students Students
	mail     mailer.Mailer
	log      *zap.Logger
}

func NewNotifier(events EventRecorder, students Students, m mailer.Mailer, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{events: events, students: students, mail: m, log: log}
}

const mailTimeout = 15 * time.Second

// Handle processes one queue message. Messages of other types are ignored.
func (n *Notifier) Handle(ctx context.Context, msg queue.Message) error {
	if msg.Type != EventDecided {
		metrics.QueueEvents.WithLabelValues(msg.Type, "ignored").Inc()
		return nil
	}
	err := n.handle(ctx, msg)
	result := "ok"
	if err != nil {
		result = "failed"
	}
	metrics.QueueEvents.WithLabelValues(msg.Type, result).Inc()
	return err
}

func (n *Notifier) handle(ctx context.Context, msg queue.Message) error {
	var evt Event
	if err := msg.Decode(&evt); err != nil {
		return errors.Wrap(err, "decode event")
	}
	if err := n.events.RecordEvent(ctx, evt); err != nil {
		return errors.Wrapf(err, "record event %s", evt.ID)
	}
	st, err := n.students.GetStudent(ctx, evt.StudentID)
	if err != nil {
		return errors.Wrapf(err, "lookup student %s", evt.StudentID)
	}
	if st == nil {
		n.log.Warn("decision for unknown student", zap.String("student_id", evt.StudentID), zap.String("activity_id", evt.ActivityID))
		return nil
	}
	mctx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	if err := n.mail.Send(mctx, decisionMail(*st, evt)); err != nil {
		return errors.Wrapf(err, "notify student %s", st.ID)
	}
	return nil
}

func decisionMail(st directory.Student, evt Event) mailer.Message {
	what := evt.Type
	if evt.Title != "" {
		what = fmt.Sprintf("%s %q", evt.Type, evt.Title)
	}
	text := fmt.Sprintf("Hello %s,\n\nYour %s submission was %s.", st.Name, what, evt.Status)
	if evt.Status == StatusRejected && evt.Reason != "" {
		text += "\nReason: " + evt.Reason
	}
	return mailer.Message{
		To:      mail.Address{Name: st.Name, Address: st.Email},
		Subject: "Your submission was " + evt.Status,
		Text:    text,
	}
}

// Run consumes q until ctx is cancelled. Failed messages are logged and
// dropped.
func (n *Notifier) Run(ctx context.Context, q queue.Queue) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return errors.Wrap(err, "consume queue")
	}
	for msg := range messages {
		if err := n.Handle(ctx, msg); err != nil {
			n.log.Error("handle queue message", zap.String("type", msg.Type), zap.Error(err))
		}
	}
	return nil
}
