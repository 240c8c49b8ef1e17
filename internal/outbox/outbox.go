package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kamaudev/dukashop/internal/models"
)

// Queue persists side-effect intents (domain events, emails) for the worker
// to dispatch asynchronously.
type Queue struct {
	DB *gorm.DB
}

func (q *Queue) EnqueueEvent(ctx context.Context, topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("outbox: marshal event: %w", err)
	}
	return q.insert(ctx, models.OutboxKindEvent, topic, key, payload)
}

type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (q *Queue) EnqueueEmail(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(EmailPayload{To: to, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("outbox: marshal email: %w", err)
	}
	return q.insert(ctx, models.OutboxKindEmail, "", to, payload)
}

func (q *Queue) insert(ctx context.Context, kind, topic, key string, payload []byte) error {
	msg := models.OutboxMessage{
		Kind:          kind,
		Topic:         topic,
		Key:           key,
		Payload:       payload,
		Status:        models.OutboxStatusPending,
		NextAttemptAt: time.Now(),
	}
	return q.DB.WithContext(ctx).Create(&msg).Error
}
