package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"image-tagger/internal/logging"
	"image-tagger/internal/metrics"
)

// DefaultThrottle is the pause after each processed save.
const DefaultThrottle = 100 * time.Millisecond

// ErrClosed is returned when tasks are enqueued after shutdown.
var ErrClosed = errors.New("persist: queue closed")

// Options configures a Queue.
type Options struct {
	// Throttle is the pause after each processed save. Zero selects
	// DefaultThrottle; a negative value disables the pause.
	Throttle time.Duration
}

// Queue is an unbounded FIFO of persistence tasks drained by one worker.
type Queue struct {
	sink     Sink
	throttle time.Duration

	mu      sync.Mutex
	items   []Task
	pending int
	closed  bool
	wake    chan struct{}

	startOnce sync.Once
	done      chan struct{}
}

// New creates a queue that writes through sink. Call Start to launch the worker.
func New(sink Sink, opts Options) *Queue {
	throttle := opts.Throttle
	switch {
	case throttle == 0:
		throttle = DefaultThrottle
	case throttle < 0:
		throttle = 0
	}

	return &Queue{
		sink:     sink,
		throttle: throttle,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start launches the worker goroutine. Calling it more than once has no effect.
func (q *Queue) Start() {
	q.startOnce.Do(func() {
		metrics.SaveWorkerRunning.Set(1)
		go q.run()
	})
}

// Enqueue appends a task. A Shutdown task closes the queue to further tasks.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, task)
	switch task.Kind {
	case KindSave:
		q.pending++
		metrics.SaveQueueDepth.Set(float64(q.pending))
	case KindShutdown:
		q.closed = true
	}
	q.mu.Unlock()

	q.signal()
	return nil
}

// SaveTags enqueues a save of a copy of tags for image.
func (q *Queue) SaveTags(image string, tags []string) error {
	return q.Enqueue(Save(image, tags))
}

// Pending returns the number of saves not yet picked up by the worker.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Flush blocks until every task enqueued before the call has been processed
// or ctx is done. The worker must have been started.
func (q *Queue) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	if err := q.Enqueue(Task{Kind: kindBarrier, ack: ack}); err != nil {
		if errors.Is(err, ErrClosed) {
			return q.wait(ctx)
		}
		return err
	}

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close enqueues a Shutdown task and blocks until the worker has drained the
// queue and exited. It is safe to call more than once.
func (q *Queue) Close() error {
	q.Start()
	if err := q.Enqueue(Shutdown()); err != nil && !errors.Is(err, ErrClosed) {
		return err
	}
	<-q.done
	return nil
}

// Done is closed once the worker has exited.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

func (q *Queue) wait(ctx context.Context) error {
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// next blocks until a task is available and removes it from the head.
func (q *Queue) next() Task {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			task := q.items[0]
			q.items[0] = Task{}
			q.items = q.items[1:]
			if task.Kind == KindSave {
				q.pending--
				metrics.SaveQueueDepth.Set(float64(q.pending))
			}
			q.mu.Unlock()
			return task
		}
		q.mu.Unlock()
		<-q.wake
	}
}

func (q *Queue) run() {
	defer close(q.done)
	defer metrics.SaveWorkerRunning.Set(0)

	logging.Debug("Persistence worker started (throttle %v)", q.throttle)

	for {
		task := q.next()
		switch task.Kind {
		case kindBarrier:
			close(task.ack)
			continue
		case KindShutdown:
			logging.Debug("Persistence worker stopped")
			return
		case KindSave:
			q.process(task)
		}

		if q.throttle > 0 {
			time.Sleep(q.throttle)
		}
	}
}

// process hands one save to every sink. Errors are logged and counted but
// never returned to the caller that enqueued the task.
func (q *Queue) process(task Task) {
	for _, s := range expand(q.sink) {
		start := time.Now()
		err := s.Save(context.Background(), task.Image, task.Tags)
		metrics.SaveDuration.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())

		if err != nil {
			logging.Error("Failed to save tags for %s via %s: %v", task.Image, s.Name(), err)
			metrics.SavesTotal.WithLabelValues(s.Name(), "error").Inc()
			continue
		}
		metrics.SavesTotal.WithLabelValues(s.Name(), "success").Inc()
	}
}
