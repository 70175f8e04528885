package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/pkg/metrics"
)

const (
	defaultWorkers   = 3
	defaultQueueSize = 50
	deliveryTimeout  = 30 * time.Second
)

// ErrQueueFull is returned by Enqueue when the queue has no free slot.
var ErrQueueFull = errors.New("reminder queue is full")

// Deliverer performs the actual work for one reminder.
type Deliverer interface {
	Deliver(ctx context.Context, r domain.Reminder) error
}

// Dispatcher is a fixed pool of numWorkers goroutines draining one shared
// buffer of queueSize reminders. It never grows and Enqueue never blocks.
type Dispatcher struct {
	queue      chan domain.Reminder
	numWorkers int
	deliverer  Deliverer
	log        zerolog.Logger
	wg         sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers workers and room for
// queueSize pending reminders. Non-positive values use the defaults.
func NewDispatcher(numWorkers, queueSize int, deliverer Deliverer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	return &Dispatcher{
		queue:      make(chan domain.Reminder, queueSize),
		numWorkers: numWorkers,
		deliverer:  deliverer,
		log:        log,
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// reminders still buffered at that point are discarded.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
}

// Wait blocks until every worker started by Start has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue buffers r for the next free worker. It returns ErrQueueFull
// instead of blocking when every slot is taken.
func (d *Dispatcher) Enqueue(r domain.Reminder) error {
	select {
	case d.queue <- r:
		metrics.ReminderQueueDepth.Set(float64(len(d.queue)))
		return nil
	default:
		metrics.RemindersTotal.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-d.queue:
			if !ok {
				return
			}
			metrics.ReminderQueueDepth.Set(float64(len(d.queue)))
			d.deliver(ctx, id, r)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, worker int, r domain.Reminder) {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := d.deliverer.Deliver(ctx, r); err != nil {
		metrics.RemindersTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("task_id", r.TaskID).
			Str("user_id", r.UserID).
			Int("worker_id", worker).
			Msg("reminder delivery failed")
		return
	}
	metrics.RemindersTotal.WithLabelValues("sent").Inc()
}
