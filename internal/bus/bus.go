package bus

import (
	"context"
	"sync"
)

// Handler receives published messages. Handlers run on the publisher's
// goroutine and must not block.
type Handler func(Message)

type subscription struct {
	kinds   map[Kind]bool
	handler Handler
}

func (s *subscription) wants(k Kind) bool {
	return len(s.kinds) == 0 || s.kinds[k]
}

// Bus fans messages out to subscribers in publish order.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]*subscription
	nextID int
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[int]*subscription)}
}

// Subscribe registers h for the given kinds, or for every kind when none are
// given. The returned function removes the subscription.
func (b *Bus) Subscribe(h Handler, kinds ...Kind) (cancel func()) {
	s := &subscription{handler: h}
	if len(kinds) > 0 {
		s.kinds = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = true
		}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = s
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers msg to every matching subscriber.
func (b *Bus) Publish(msg Message) {
	b.mu.Lock()
	targets := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.wants(msg.Kind()) {
			targets = append(targets, s.handler)
		}
	}
	b.mu.Unlock()

	for _, h := range targets {
		h(msg)
	}
}

// Waiter captures the first message matching an expectation.
type Waiter struct {
	ch     chan Message
	cancel func()
}

// Expect registers interest in the next message of the given kinds for which
// match returns true (match may be nil). Call it before triggering the
// action whose reply is awaited.
func (b *Bus) Expect(match func(Message) bool, kinds ...Kind) *Waiter {
	w := &Waiter{ch: make(chan Message, 1)}
	var once sync.Once
	w.cancel = b.Subscribe(func(m Message) {
		if match != nil && !match(m) {
			return
		}
		once.Do(func() { w.ch <- m })
	}, kinds...)
	return w
}

// Wait blocks until the expected message arrives or ctx is done.
func (w *Waiter) Wait(ctx context.Context) (Message, error) {
	defer w.cancel()
	select {
	case m := <-w.ch:
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel abandons the expectation.
func (w *Waiter) Cancel() {
	w.cancel()
}
