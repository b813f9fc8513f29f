package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopic_ReplayOnSubscribe(t *testing.T) {
	topic := NewTopic(false)
	topic.Publish(true)

	sub := topic.Subscribe()
	defer topic.Unsubscribe(sub)

	require.Len(t, sub.C, 1)
	assert.True(t, <-sub.C)
}

func TestTopic_PublishFansOut(t *testing.T) {
	topic := NewTopic(0)
	a := topic.Subscribe()
	b := topic.Subscribe()
	<-a.C
	<-b.C

	topic.Publish(7)

	assert.Equal(t, 7, <-a.C)
	assert.Equal(t, 7, <-b.C)
	assert.Equal(t, 7, topic.Current())
	assert.Equal(t, 2, topic.Len())
}

func TestTopic_SlowSubscriberDropsOldest(t *testing.T) {
	topic := NewTopic(0)
	sub := topic.Subscribe()

	for i := 1; i <= DefaultBuffer+5; i++ {
		topic.Publish(i)
	}

	require.Len(t, sub.C, DefaultBuffer)
	var last int
	for len(sub.C) > 0 {
		last = <-sub.C
	}
	assert.Equal(t, DefaultBuffer+5, last)
}

func TestTopic_UnsubscribeClosesChannel(t *testing.T) {
	topic := NewTopic("idle")
	sub := topic.Subscribe()
	<-sub.C

	topic.Unsubscribe(sub)
	topic.Unsubscribe(sub)

	_, ok := <-sub.C
	assert.False(t, ok)
	assert.Equal(t, 0, topic.Len())

	require.NotPanics(t, func() { topic.Publish("running") })
}
