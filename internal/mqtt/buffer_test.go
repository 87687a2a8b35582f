package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(b byte) queuedMsg {
	return queuedMsg{topic: DefaultTopic, payload: []byte{b}, qos: 1}
}

func TestOfflineQueueEmptyDrain(t *testing.T) {
	q := newOfflineQueue(4)
	assert.Nil(t, q.drain())
}

func TestOfflineQueueZeroCapacityBecomesOne(t *testing.T) {
	q := newOfflineQueue(0)
	q.push(msg(1))
	q.push(msg(2))

	got := q.drain()
	require.Len(t, got, 1)
	assert.Equal(t, byte(2), got[0].payload[0])
}

func TestOfflineQueueDefaultKeepsLatest(t *testing.T) {
	// Capacity 1: each new status replaces the queued one.
	q := newOfflineQueue(1)
	for i := 0; i < 5; i++ {
		q.push(msg(byte(i)))
	}
	assert.Equal(t, 4, q.dropped)

	got := q.drain()
	require.Len(t, got, 1)
	assert.Equal(t, byte(4), got[0].payload[0])
	assert.Equal(t, 0, q.dropped)
}

func TestOfflineQueueOverflowDropsOldest(t *testing.T) {
	q := newOfflineQueue(3)
	for i := 0; i < 5; i++ {
		q.push(msg(byte(i)))
	}

	got := q.drain()
	require.Len(t, got, 3)
	for i, m := range got {
		assert.Equal(t, byte(i+2), m.payload[0], "item %d", i)
	}
}

func TestOfflineQueueMultipleCycles(t *testing.T) {
	q := newOfflineQueue(5)

	q.push(msg(1))
	q.push(msg(2))
	require.Len(t, q.drain(), 2)

	for i := 10; i < 14; i++ {
		q.push(msg(byte(i)))
	}
	got := q.drain()
	require.Len(t, got, 4)
	for i, m := range got {
		assert.Equal(t, byte(10+i), m.payload[0])
	}
	assert.Nil(t, q.drain())
}

func TestOfflineQueueLen(t *testing.T) {
	q := newOfflineQueue(2)
	assert.Equal(t, 0, q.len())

	q.push(msg(1))
	q.push(msg(2))
	q.push(msg(3))
	assert.Equal(t, 2, q.len())

	q.drain()
	assert.Equal(t, 0, q.len())
}

func TestOfflineQueuePreservesFields(t *testing.T) {
	q := newOfflineQueue(1)
	q.push(queuedMsg{
		topic:    "studio/seating/system",
		payload:  []byte(`{"test":true}`),
		qos:      1,
		retained: true,
	})

	got := q.drain()
	require.Len(t, got, 1)
	assert.Equal(t, "studio/seating/system", got[0].topic)
	assert.Equal(t, `{"test":true}`, string(got[0].payload))
	assert.Equal(t, byte(1), got[0].qos)
	assert.True(t, got[0].retained)
}
