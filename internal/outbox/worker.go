package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/kamaudev/dukashop/internal/models"
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, payload []byte) error
}

type Sender interface {
	Send(to, subject, body string) error
}

const (
	DefaultInterval    = 10 * time.Second
	DefaultMaxAttempts = 5
	batchSize          = 50
)

// Worker drains the outbox table: due pending rows are dispatched to kafka
// or SMTP, failures retry with backoff until MaxAttempts, then the row is
// parked as dead for manual inspection.
type Worker struct {
	DB          *gorm.DB
	Publisher   Publisher
	Sender      Sender
	Interval    time.Duration
	MaxAttempts uint
	Log         *slog.Logger
}

func (w *Worker) Start(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce processes one batch of due messages and reports how many were
// dispatched successfully.
func (w *Worker) RunOnce(ctx context.Context) int {
	var msgs []models.OutboxMessage
	err := w.DB.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", models.OutboxStatusPending, time.Now()).
		Order("id ASC").
		Limit(batchSize).
		Find(&msgs).Error
	if err != nil {
		w.Log.Error("outbox fetch failed", "error", err)
		return 0
	}

	sent := 0
	for i := range msgs {
		if err := w.dispatch(ctx, &msgs[i]); err != nil {
			w.fail(ctx, &msgs[i], err)
			continue
		}
		w.DB.WithContext(ctx).Model(&msgs[i]).Updates(map[string]any{
			"status":   models.OutboxStatusSent,
			"attempts": msgs[i].Attempts + 1,
		})
		sent++
	}
	return sent
}

func (w *Worker) dispatch(ctx context.Context, msg *models.OutboxMessage) error {
	switch msg.Kind {
	case models.OutboxKindEvent:
		if w.Publisher == nil {
			return fmt.Errorf("no event publisher configured")
		}
		return w.Publisher.PublishEvent(ctx, msg.Topic, msg.Key, msg.Payload)
	case models.OutboxKindEmail:
		if w.Sender == nil {
			return fmt.Errorf("no mail sender configured")
		}
		var email EmailPayload
		if err := json.Unmarshal(msg.Payload, &email); err != nil {
			return fmt.Errorf("bad email payload: %w", err)
		}
		return w.Sender.Send(email.To, email.Subject, email.Body)
	default:
		return fmt.Errorf("unknown outbox kind %q", msg.Kind)
	}
}

func (w *Worker) fail(ctx context.Context, msg *models.OutboxMessage, cause error) {
	maxAttempts := w.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}
	attempts := msg.Attempts + 1
	updates := map[string]any{
		"attempts":        attempts,
		"last_error":      cause.Error(),
		"next_attempt_at": time.Now().Add(backoff(attempts)),
	}
	if attempts >= maxAttempts {
		updates["status"] = models.OutboxStatusDead
		w.Log.Error("outbox message dead-lettered", "id", msg.ID, "kind", msg.Kind, "attempts", attempts, "error", cause)
	} else {
		w.Log.Warn("outbox dispatch failed", "id", msg.ID, "kind", msg.Kind, "attempts", attempts, "error", cause)
	}
	w.DB.WithContext(ctx).Model(msg).Updates(updates)
}

func backoff(attempts uint) time.Duration {
	d := time.Duration(1<<attempts) * time.Second
	if d > 10*time.Minute {
		return 10 * time.Minute
	}
	return d
}
