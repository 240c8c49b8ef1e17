package outbox

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kamaudev/dukashop/internal/config"
	"github.com/kamaudev/dukashop/internal/models"
)

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishEvent(ctx context.Context, topic, key string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, topic)
	return nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func newTestWorker(t *testing.T) (*Worker, *Queue, *fakePublisher, *fakeSender) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	publisher := &fakePublisher{}
	sender := &fakeSender{}
	worker := &Worker{
		DB:          db,
		Publisher:   publisher,
		Sender:      sender,
		MaxAttempts: 3,
		Log:         slog.Default(),
	}
	return worker, &Queue{DB: db}, publisher, sender
}

func TestWorkerDispatchesEventAndEmail(t *testing.T) {
	worker, queue, publisher, sender := newTestWorker(t)
	ctx := context.Background()

	require.NoError(t, queue.EnqueueEvent(ctx, "order_events", "1", map[string]any{"type": "order_created"}))
	require.NoError(t, queue.EnqueueEmail(ctx, "wanjiku@example.com", "Order received", "hello"))

	sent := worker.RunOnce(ctx)
	require.Equal(t, 2, sent)
	require.Equal(t, []string{"order_events"}, publisher.published)
	require.Equal(t, []string{"wanjiku@example.com"}, sender.sent)

	var msgs []models.OutboxMessage
	require.NoError(t, worker.DB.Find(&msgs).Error)
	for _, m := range msgs {
		require.Equal(t, models.OutboxStatusSent, m.Status)
	}

	// nothing left to do
	require.Zero(t, worker.RunOnce(ctx))
}

func TestWorkerRetriesThenDeadLetters(t *testing.T) {
	worker, queue, publisher, _ := newTestWorker(t)
	ctx := context.Background()
	publisher.err = errors.New("broker down")

	require.NoError(t, queue.EnqueueEvent(ctx, "order_events", "1", map[string]any{"type": "order_created"}))

	for attempt := 1; attempt <= 3; attempt++ {
		// make the row due regardless of backoff
		require.NoError(t, worker.DB.Model(&models.OutboxMessage{}).
			Where("status = ?", models.OutboxStatusPending).
			Update("next_attempt_at", time.Now().Add(-time.Second)).Error)
		require.Zero(t, worker.RunOnce(ctx))
	}

	var msg models.OutboxMessage
	require.NoError(t, worker.DB.First(&msg).Error)
	require.Equal(t, models.OutboxStatusDead, msg.Status)
	require.Equal(t, uint(3), msg.Attempts)
	require.Contains(t, msg.LastError, "broker down")

	// dead rows are never retried
	publisher.err = nil
	require.Zero(t, worker.RunOnce(ctx))
	require.Empty(t, publisher.published)
}

func TestWorkerRecoversAfterTransientFailure(t *testing.T) {
	worker, queue, publisher, _ := newTestWorker(t)
	ctx := context.Background()
	publisher.err = errors.New("timeout")

	require.NoError(t, queue.EnqueueEvent(ctx, "order_events", "1", map[string]any{"type": "order_created"}))
	require.Zero(t, worker.RunOnce(ctx))

	publisher.err = nil
	require.NoError(t, worker.DB.Model(&models.OutboxMessage{}).
		Where("status = ?", models.OutboxStatusPending).
		Update("next_attempt_at", time.Now().Add(-time.Second)).Error)
	require.Equal(t, 1, worker.RunOnce(ctx))

	var msg models.OutboxMessage
	require.NoError(t, worker.DB.First(&msg).Error)
	require.Equal(t, models.OutboxStatusSent, msg.Status)
}

func TestWorkerBackoffRespectsNextAttempt(t *testing.T) {
	worker, queue, publisher, _ := newTestWorker(t)
	ctx := context.Background()
	publisher.err = errors.New("down")

	require.NoError(t, queue.EnqueueEvent(ctx, "order_events", "1", map[string]any{"type": "x"}))
	require.Zero(t, worker.RunOnce(ctx))

	// failed row is scheduled in the future, so an immediate run skips it
	publisher.err = nil
	require.Zero(t, worker.RunOnce(ctx))
}
