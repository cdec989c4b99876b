package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/facialanalyzer/pkg/api"
)

type fakeWriter struct {
	err      error
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

// fakeReader отдает сообщения из очереди, затем io.EOF
type fakeReader struct {
	queue     []kafka.Message
	committed []kafka.Message
	mu        sync.Mutex
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}
	if len(r.queue) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestKafkaConfig_Validate(t *testing.T) {
	_, err := NewKafkaPublisher(KafkaConfig{Topic: "t"}, time.Hour, time.Hour)
	assert.ErrorContains(t, err, "brokers are required")

	_, err = NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}}, time.Hour, time.Hour)
	assert.ErrorContains(t, err, "topic is required")

	_, err = NewConsumer(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "t"}, &recordingNotifier{}, setupTestLogger())
	assert.ErrorContains(t, err, "group id is required")
}

func TestKafkaPublisher_Events(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	w := &fakeWriter{}
	p := newKafkaPublisher(w, 24*time.Hour, time.Hour)
	p.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, p.SendVerificationEmail(ctx, "alice@example.com", "tok1", "Alice"))
	require.NoError(t, p.SendPasswordResetEmail(ctx, "alice@example.com", "tok2", "Alice"))

	require.Len(t, w.messages, 2)

	var verify api.NotificationEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &verify))
	assert.Equal(t, api.EventVerifyEmail, verify.Type)
	assert.Equal(t, "alice@example.com", verify.Email)
	assert.Equal(t, "tok1", verify.Token)
	assert.Equal(t, "Alice", verify.Name)
	assert.True(t, now.Add(24*time.Hour).Equal(verify.ExpiresAt))
	assert.Equal(t, []byte("alice@example.com"), w.messages[0].Key)

	var reset api.NotificationEvent
	require.NoError(t, json.Unmarshal(w.messages[1].Value, &reset))
	assert.Equal(t, api.EventPasswordReset, reset.Type)
	assert.True(t, now.Add(time.Hour).Equal(reset.ExpiresAt))

	// формат на проводе
	assert.Contains(t, string(w.messages[0].Value), `"type":"verify_email"`)
	assert.Contains(t, string(w.messages[0].Value), `"expiresAt":"2025-01-02T00:00:00Z"`)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := newKafkaPublisher(w, time.Hour, time.Hour)

	err := p.SendVerificationEmail(context.Background(), "alice@example.com", "tok", "Alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}

func eventMessage(t *testing.T, offset int64, event api.NotificationEvent) kafka.Message {
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: value}
}

func TestConsumer_Dispatch(t *testing.T) {
	future := time.Now().Add(time.Hour)
	reader := &fakeReader{queue: []kafka.Message{
		eventMessage(t, 1, api.NotificationEvent{Type: api.EventVerifyEmail, Email: "a@example.com", Token: "t1", Name: "A", ExpiresAt: future}),
		eventMessage(t, 2, api.NotificationEvent{Type: api.EventPasswordReset, Email: "b@example.com", Token: "t2", Name: "B", ExpiresAt: future}),
		{Offset: 3, Value: []byte("not json")},
		eventMessage(t, 4, api.NotificationEvent{Type: "unknown", Email: "c@example.com", ExpiresAt: future}),
		eventMessage(t, 5, api.NotificationEvent{Type: api.EventVerifyEmail, Email: "d@example.com", ExpiresAt: time.Now().Add(-time.Minute)}),
	}}
	notifier := &recordingNotifier{}
	c := newConsumer(reader, notifier, setupTestLogger())

	require.NoError(t, c.Run(context.Background()))

	calls := notifier.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, sentMail{kind: api.EventVerifyEmail, email: "a@example.com", token: "t1", name: "A"}, calls[0])
	assert.Equal(t, sentMail{kind: api.EventPasswordReset, email: "b@example.com", token: "t2", name: "B"}, calls[1])

	// все сообщения закоммичены, включая пропущенные
	assert.Len(t, reader.committed, 5)
}

func TestConsumer_RetriesThenCommits(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		eventMessage(t, 1, api.NotificationEvent{Type: api.EventVerifyEmail, Email: "a@example.com", Token: "t1", ExpiresAt: time.Now().Add(time.Hour)}),
	}}
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	c := newConsumer(reader, notifier, setupTestLogger())
	c.retryDelay = 0

	require.NoError(t, c.Run(context.Background()))

	assert.Len(t, notifier.calls(), defaultMaxAttempts)
	assert.Len(t, reader.committed, 1)
}

func TestConsumer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newConsumer(&fakeReader{}, &recordingNotifier{}, setupTestLogger())
	assert.NoError(t, c.Run(ctx))
}
