package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesEvents(t *testing.T) {
	t.Parallel()

	broker := NewBroker[string]()
	t.Cleanup(broker.Shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := broker.Subscribe(ctx)

	broker.Publish(CreatedEvent, "第一条")
	broker.Publish(UpdatedEvent, "第二条")

	event := <-events
	require.Equal(t, CreatedEvent, event.Type)
	require.Equal(t, "第一条", event.Payload)

	event = <-events
	require.Equal(t, UpdatedEvent, event.Type)
}

func TestContextCancelUnsubscribes(t *testing.T) {
	t.Parallel()

	broker := NewBroker[int]()
	t.Cleanup(broker.Shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	events := broker.Subscribe(ctx)
	cancel()

	// 取消后通道最终被关闭
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestPublishDropsWhenSubscriberFull(t *testing.T) {
	t.Parallel()

	broker := NewBroker[int]()
	t.Cleanup(broker.Shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := broker.Subscribe(ctx)

	// 缓冲区满之后的事件被丢弃，发布方不阻塞
	for i := 0; i < bufferSize*2; i++ {
		broker.Publish(CreatedEvent, i)
	}
	require.Len(t, events, bufferSize)
}

func TestShutdownClosesSubscribers(t *testing.T) {
	t.Parallel()

	broker := NewBroker[string]()
	events := broker.Subscribe(context.Background())

	broker.Shutdown()
	broker.Shutdown() // 重复关闭安全

	_, ok := <-events
	require.False(t, ok)

	// 关闭后订阅得到已关闭的通道
	_, ok = <-broker.Subscribe(context.Background())
	require.False(t, ok)
}
