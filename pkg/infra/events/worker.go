package events

import (
	"context"
	"sync"
	"time"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	DefaultQueueSize      = 1000
	defaultPublishTimeout = 10 * time.Second
)

// Worker hands prediction events to a Publisher from a fixed pool of
// goroutines. Publish never blocks; a full queue drops the event.
type Worker struct {
	logger    *logrus.Logger
	publisher Publisher
	taskChan  chan model.PredictionEvent

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewWorker(logger *logrus.Logger, publisher Publisher, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Worker{
		logger:    logger,
		publisher: publisher,
		taskChan:  make(chan model.PredictionEvent, queueSize),
	}
}

func (w *Worker) StartWorkers(n int) {
	w.logger.WithField("workers", n).Info("starting prediction event workers")
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for evt := range w.taskChan {
				w.deliver(evt)
			}
		}()
	}
}

func (w *Worker) deliver(evt model.PredictionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultPublishTimeout)
	defer cancel()
	if err := w.publisher.Publish(ctx, evt); err != nil {
		prometheus.EventsPublished.WithLabelValues("error").Inc()
		w.logger.WithError(err).WithField("run_id", evt.Run).Error("failed to publish prediction event")
		return
	}
	prometheus.EventsPublished.WithLabelValues("ok").Inc()
}

func (w *Worker) Publish(evt model.PredictionEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.taskChan <- evt:
	default:
		prometheus.EventsDropped.Inc()
		w.logger.WithField("run_id", evt.Run).Warn("event queue is full, dropping prediction event")
	}
}

// Shutdown stops accepting events, drains the queue and closes the publisher.
func (w *Worker) Shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.taskChan)
	w.mu.Unlock()

	w.logger.Info("shutting down prediction event workers")
	w.wg.Wait()
	w.publisher.Close()
	w.logger.Info("prediction event workers stopped")
}
