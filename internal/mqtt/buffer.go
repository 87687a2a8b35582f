package mqtt

import "log/slog"

// queuedMsg is a serialized publish held while the broker is unreachable.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineQueue is a fixed-capacity FIFO that keeps the most recent messages
// while disconnected; when full the oldest is dropped. It holds system
// events only; the retained event that matters is the latest, so the
// default capacity is 1.
// Not safe for concurrent use; caller must synchronize.
type offlineQueue struct {
	buf     []queuedMsg
	head    int // next write position
	count   int
	dropped int // messages dropped since the last drain
}

func newOfflineQueue(capacity int) *offlineQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &offlineQueue{buf: make([]queuedMsg, capacity)}
}

func (q *offlineQueue) push(msg queuedMsg) {
	n := len(q.buf)
	if q.count == n {
		if q.dropped == 0 {
			slog.Debug("mqtt offline queue full, dropping oldest", "capacity", n)
		}
		q.dropped++
		// head already points at the oldest entry
		q.buf[q.head] = msg
		q.head = (q.head + 1) % n
		return
	}
	q.buf[q.head] = msg
	q.head = (q.head + 1) % n
	q.count++
}

// drain returns queued messages oldest first and empties the queue.
func (q *offlineQueue) drain() []queuedMsg {
	if q.count == 0 {
		return nil
	}

	n := len(q.buf)
	out := make([]queuedMsg, q.count)
	start := (q.head - q.count + n) % n
	for i := range out {
		out[i] = q.buf[(start+i)%n]
	}

	q.count = 0
	q.head = 0
	q.dropped = 0
	return out
}

func (q *offlineQueue) len() int {
	return q.count
}
