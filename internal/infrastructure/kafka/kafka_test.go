package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// fakeReader replays messages, then blocks until the context ends.
type fakeReader struct {
	messages []kafka.Message
	errs     []error
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return kafka.Message{}, err
	}
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		return msg, nil
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) Close() error { return nil }

type samplePayload struct {
	OrderID string `json:"order_id"`
	Total   string `json:"total"`
}

// ============================================
// Producer Tests
// ============================================

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}

	err := p.Publish(context.Background(), "default", "CheckoutCompleted", samplePayload{OrderID: "o-1", Total: "12.10"})

	require.NoError(t, err)
	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "default", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "CheckoutCompleted", string(msg.Headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, "CheckoutCompleted", env.Type)
	assert.Equal(t, "default", env.Key)

	var got samplePayload
	require.NoError(t, env.Decode(&got))
	assert.Equal(t, "o-1", got.OrderID)
	assert.Equal(t, "12.10", got.Total)
}

func TestProducer_PublishWriterError(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("no brokers")}}

	err := p.Publish(context.Background(), "k", "T", samplePayload{})

	assert.EqualError(t, err, "no brokers")
}

func TestProducer_PublishUnmarshalablePayload(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}

	err := p.Publish(context.Background(), "k", "T", make(chan int))

	assert.Error(t, err)
	assert.Empty(t, w.messages)
}

// ============================================
// Consumer Tests
// ============================================

func TestConsumer_DispatchesAndSkipsBadMessages(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}
	require.NoError(t, p.Publish(context.Background(), "a", "First", samplePayload{OrderID: "1"}))
	require.NoError(t, p.Publish(context.Background(), "b", "Second", samplePayload{OrderID: "2"}))

	r := &fakeReader{
		errs:     []error{errors.New("transient")},
		messages: append([]kafka.Message{{Value: []byte("not json")}}, w.messages...),
	}
	c := newConsumer(r)

	ctx, cancel := context.WithCancel(context.Background())
	var seen []string
	err := c.Consume(ctx, func(ctx context.Context, env Envelope) error {
		seen = append(seen, env.Type)
		if len(seen) == 1 {
			return errors.New("handler failed")
		}
		cancel()
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"First", "Second"}, seen)
}
