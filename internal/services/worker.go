package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"go.uber.org/zap"
)

var ErrWriterStopped = errors.New("profile writer is stopped")

// ProfileWriter runs profile mutations one at a time per user. A user id
// always hashes onto the same shard, and each shard drains its queue on a
// single goroutine.
type ProfileWriter interface {
	Start(ctx context.Context)
	Stop()
	// Do runs fn on userID's shard and waits for it to finish.
	Do(ctx context.Context, userID string, fn func(ctx context.Context) error) error
}

type writeJob struct {
	ctx    context.Context
	userID string
	fn     func(ctx context.Context) error
	done   chan error
}

type profileWriter struct {
	shards   []chan writeJob
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopChan chan struct{}
	stopOnce sync.Once
	log      *zap.Logger
}

func NewProfileWriter(shards int, log *zap.Logger) ProfileWriter {
	if shards <= 0 {
		shards = 1
	}

	w := &profileWriter{
		shards:   make([]chan writeJob, shards),
		stopChan: make(chan struct{}),
		log:      log,
	}
	for i := range w.shards {
		w.shards[i] = make(chan writeJob, 100)
	}
	return w
}

func (w *profileWriter) Start(ctx context.Context) {
	for i := range w.shards {
		w.wg.Add(1)
		go w.processJobs(i)
	}

	go func() {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-w.stopChan:
		}
	}()

	w.log.Info("✅ Profile writer started", zap.Int("shards", len(w.shards)))
}

func (w *profileWriter) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("🛑 Stopping profile writer...")
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()

		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("✅ Profile writer stopped")
	})
}

func (w *profileWriter) Do(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	job := writeJob{
		ctx:    ctx,
		userID: userID,
		fn:     fn,
		done:   make(chan error, 1),
	}

	if err := w.enqueue(ctx, job); err != nil {
		return err
	}

	select {
	case err := <-job.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *profileWriter) enqueue(ctx context.Context, job writeJob) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return ErrWriterStopped
	}

	select {
	case w.shards[w.shardFor(job.userID)] <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *profileWriter) shardFor(userID string) int {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(w.shards)))
}

func (w *profileWriter) processJobs(shard int) {
	defer w.wg.Done()

	queue := w.shards[shard]
	for {
		select {
		case <-w.stopChan:
			w.drain(queue)
			return
		case job := <-queue:
			job.done <- w.run(job)
		}
	}
}

func (w *profileWriter) run(job writeJob) (err error) {
	if err := job.ctx.Err(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			w.log.Error("❌ Profile write panicked", zap.String("user_id", job.userID), zap.Any("panic", r))
			err = fmt.Errorf("profile write panicked: %v", r)
		}
	}()

	return job.fn(job.ctx)
}

// drain fails whatever is still queued so no caller waits forever.
func (w *profileWriter) drain(queue chan writeJob) {
	for {
		select {
		case job := <-queue:
			job.done <- ErrWriterStopped
		default:
			return
		}
	}
}
