package mq

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu         sync.Mutex
	activities []*Activity
	got        chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{got: make(chan struct{}, 16)}
}

func (s *recordingSink) Deliver(activity *Activity) {
	s.mu.Lock()
	s.activities = append(s.activities, activity)
	s.mu.Unlock()
	s.got <- struct{}{}
}

func (s *recordingSink) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.got:
	case <-time.After(2 * time.Second):
		t.Fatal("activity was not delivered")
	}
}

func TestChannelBrokerDelivers(t *testing.T) {
	sink := newRecordingSink()
	broker := NewChannelBroker(sink)
	broker.Start()
	defer broker.Close()

	err := broker.Publish(context.Background(), &Activity{Type: ActivityPostCreated, ActorID: "u1", Recipients: []string{"u2"}})
	require.NoError(t, err)
	sink.wait(t)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.activities, 1)
	assert.Equal(t, ActivityPostCreated, sink.activities[0].Type)
	assert.False(t, sink.activities[0].CreatedAt.IsZero())
}

func TestChannelBrokerRejectsAfterClose(t *testing.T) {
	broker := NewChannelBroker(newRecordingSink())
	broker.Start()
	broker.Close()

	err := broker.Publish(context.Background(), &Activity{Type: ActivityPostCreated})
	assert.Error(t, err)
}

// fakeKafka 把写入的消息直接交给读取端
type fakeKafka struct {
	msgs chan kafka.Message
}

func (f *fakeKafka) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		f.msgs <- m
	}
	return nil
}

func (f *fakeKafka) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-f.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (f *fakeKafka) Close() error { return nil }

func TestKafkaBrokerRoundTrip(t *testing.T) {
	fake := &fakeKafka{msgs: make(chan kafka.Message, 4)}
	sink := newRecordingSink()
	broker := newKafkaBroker(fake, fake, sink)
	broker.Start()
	defer broker.Close()

	// 无法解析的消息被丢弃
	fake.msgs <- kafka.Message{Value: []byte("not json")}

	err := broker.Publish(context.Background(), &Activity{
		Type:       ActivityEventCreated,
		ActorID:    "u1",
		FamilyID:   "f1",
		Recipients: []string{"u2", "u3"},
		Payload:    map[string]any{"title": "Picnic"},
	})
	require.NoError(t, err)
	sink.wait(t)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.activities, 1)
	got := sink.activities[0]
	assert.Equal(t, "f1", got.FamilyID)
	assert.Equal(t, []string{"u2", "u3"}, got.Recipients)
	raw, _ := json.Marshal(got.Payload)
	assert.JSONEq(t, `{"title":"Picnic"}`, string(raw))
}
