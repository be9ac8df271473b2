package realtime

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// delivery is one event fanned out to a snapshot of listeners.
type delivery struct {
	event     string
	payload   Payload
	listeners []Listener
}

// Dispatcher runs listener callbacks on a fixed set of workers. Deliveries are
// sharded by event name, so listeners of one event observe events in the
// order they were fired.
type Dispatcher struct {
	workers []chan delivery
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan delivery, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan delivery, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) enqueue(dl delivery) {
	idx := d.shardIndex(dl.event)
	metrics.ChannelQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	d.workers[idx] <- dl
}

// shardIndex maps an event name deterministically to a worker index.
func (d *Dispatcher) shardIndex(event string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(event))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan delivery) {
	depth := metrics.ChannelQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case dl, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.deliver(id, dl)
		}
	}
}

func (d *Dispatcher) deliver(id int, dl delivery) {
	metrics.ChannelEventsTotal.WithLabelValues(dl.event).Inc()
	for _, fn := range dl.listeners {
		d.call(id, dl.event, fn, dl.payload.clone())
	}
}

// call runs one listener. A panicking listener is logged and does not stop
// the others.
func (d *Dispatcher) call(id int, event string, fn Listener, p Payload) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("event", event).Int("worker_id", id).Msg("listener panicked")
		}
	}()
	fn(p)
}
