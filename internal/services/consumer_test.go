package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueMessage(t *testing.T, handle string, inner map[string]string) QueueMessage {
	t.Helper()
	innerJSON, err := json.Marshal(inner)
	require.NoError(t, err)
	body, err := json.Marshal(map[string]string{"Message": string(innerJSON)})
	require.NoError(t, err)
	return QueueMessage{Body: string(body), ReceiptHandle: handle}
}

func runConsumer(queue *scriptedQueue, manager *SessionManager) (stop func()) {
	consumer := NewReplyConsumer(queue, manager, "dude-1", time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.Run(ctx)
		close(done)
	}()
	return func() {
		cancel()
		<-done
	}
}

func TestConsumerPublishesLatestReplyAndAcksEverything(t *testing.T) {
	queue := &scriptedQueue{
		messages: []QueueMessage{
			queueMessage(t, "h1", map[string]string{"ts": "a", "reply_author": "one", "reply_text": "first"}),
			queueMessage(t, "h2", map[string]string{"ts": "a", "event": "reaction_added"}),
			queueMessage(t, "h3", map[string]string{"ts": "b", "reply_author": "two", "reply_text": "second"}),
		},
	}
	manager := NewSessionManager()

	stop := runConsumer(queue, manager)
	defer stop()

	eventually(t, func() bool { return len(queue.ackedHandles()) == 3 }, "all messages acked")
	assert.Equal(t, []string{"h1", "h2", "h3"}, queue.ackedHandles(),
		"non-reply events are acked too")

	manager.mu.Lock()
	reply := manager.takeSlotLocked()
	manager.mu.Unlock()
	require.NotNil(t, reply)
	assert.Equal(t, "b", reply.MessageTS, "slot holds the most recent reply")
}

func TestConsumerSurvivesReceiveAndDecodeFailures(t *testing.T) {
	queue := &scriptedQueue{
		recvErrs: []error{errors.New("transport hiccup")},
		messages: []QueueMessage{
			{Body: "not json at all", ReceiptHandle: "h1"},
			queueMessage(t, "h2", map[string]string{"ts": "a", "reply_author": "one", "reply_text": "hello"}),
		},
	}
	manager := NewSessionManager()

	stop := runConsumer(queue, manager)
	defer stop()

	eventually(t, func() bool { return len(queue.ackedHandles()) == 2 }, "loop keeps going past failures")

	manager.mu.Lock()
	reply := manager.takeSlotLocked()
	manager.mu.Unlock()
	require.NotNil(t, reply)
	assert.Equal(t, "hello", reply.Text)
	assert.True(t, queue.drained())
}

func TestConsumerStopsOnCancel(t *testing.T) {
	queue := &scriptedQueue{}
	manager := NewSessionManager()

	consumer := NewReplyConsumer(queue, manager, "dude-1", time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop on cancel")
	}
}
