package notify

// Notification is a short user-facing message produced by background work
// (run progress, sweep results) and drained by the presentation layer.
// Percent is only meaningful for LevelProgress.
type Notification struct {
	Level   Level
	Message string
	Percent int
}

type Level string

const (
	LevelInfo     Level = "info"
	LevelWarn     Level = "warn"
	LevelError    Level = "error"
	LevelProgress Level = "progress"
)

// Queue is a bounded notification queue. Producers publish without blocking;
// when the queue is full the message is dropped and Publish reports false.
// The consumer side (the UI event loop) polls with Next.
type Queue struct {
	ch chan Notification
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 64
	}
	return &Queue{ch: make(chan Notification, capacity)}
}

func (q *Queue) Publish(n Notification) bool {
	select {
	case q.ch <- n:
		return true
	default:
		return false
	}
}

// Next returns the oldest pending notification without blocking.
func (q *Queue) Next() (Notification, bool) {
	select {
	case n := <-q.ch:
		return n, true
	default:
		return Notification{}, false
	}
}
